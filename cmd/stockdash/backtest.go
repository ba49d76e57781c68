package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stockdash/stockdash/internal/backtest"
	"github.com/stockdash/stockdash/internal/collector/yahoo"
)

var (
	backtestSymbol   string
	backtestPeriod   string
	backtestInterval string
	backtestFast     int
	backtestSlow     int
	backtestCSV      string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a moving-average crossover backtest",
	Long:  "Fetch price history for a symbol and evaluate the crossover strategy against it",
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "Symbol to backtest (required)")
	backtestCmd.Flags().StringVar(&backtestPeriod, "period", "1y", "Look-back period (1mo, 6mo, 1y, 5y, max)")
	backtestCmd.Flags().StringVar(&backtestInterval, "interval", "1d", "Bar interval (1d, 1h, 1wk)")
	backtestCmd.Flags().IntVar(&backtestFast, "fast", 20, "Fast moving average window")
	backtestCmd.Flags().IntVar(&backtestSlow, "slow", 50, "Slow moving average window")
	backtestCmd.Flags().StringVar(&backtestCSV, "csv", "", "Write the equity curve to a CSV file")

	backtestCmd.MarkFlagRequired("symbol")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	series, err := yahoo.New().FetchHistory(ctx, backtestSymbol, backtestPeriod, backtestInterval)
	if err != nil {
		return fmt.Errorf("fetching history: %w", err)
	}

	result, err := backtest.Run(series, backtestFast, backtestSlow)
	if err != nil {
		return err
	}
	result.Symbol = backtestSymbol

	first := result.Frame[0]
	last := result.Frame[len(result.Frame)-1]
	fmt.Println("=== stockdash backtest ===")
	fmt.Printf("Symbol:   %s\n", backtestSymbol)
	fmt.Printf("Windows:  MA%d / MA%d\n", backtestFast, backtestSlow)
	fmt.Printf("Bars:     %d (%s to %s)\n", len(result.Frame),
		first.Time.Format("2006-01-02"), last.Time.Format("2006-01-02"))
	fmt.Println()

	stats := result.Stats
	fmt.Printf("Total trades:     %d\n", stats.TotalTrades)
	fmt.Printf("Strategy return:  %+.2f%%\n", stats.StrategyReturnPct)
	fmt.Printf("Market return:    %+.2f%%\n", stats.MarketReturnPct)
	fmt.Printf("Max drawdown:     %.2f%%\n", stats.MaxDrawdownPct)
	fmt.Printf("Win rate:         %.1f%%\n", stats.WinRate*100)
	fmt.Printf("Sharpe ratio:     %.2f\n", stats.SharpeRatio)

	if backtestCSV != "" {
		f, err := os.Create(backtestCSV)
		if err != nil {
			return fmt.Errorf("creating CSV file: %w", err)
		}
		defer f.Close()
		if err := backtest.WriteCSV(f, result.Frame); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		fmt.Printf("\nEquity curve written to %s\n", backtestCSV)
	}

	return nil
}
