package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "stockdash",
	Short: "stockdash - stock analytics, crossover backtesting, and trade ledger",
	Long: `stockdash fetches price history with technical indicators, evaluates a
moving-average crossover strategy against historical data, and tracks a
personal trade ledger with cost-basis P&L.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
