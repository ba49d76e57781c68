package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stockdash/stockdash/internal/collector/yahoo"
	"github.com/stockdash/stockdash/internal/ledger"
	"github.com/stockdash/stockdash/internal/logger"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show per-symbol position summaries from the trade ledger",
	RunE:  runPortfolio,
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	trades, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening trade store: %w", err)
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	all, err := trades.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("listing trades: %w", err)
	}
	if len(all) == 0 {
		fmt.Println("ledger is empty")
		return nil
	}

	client := yahoo.New()
	summary := ledger.Portfolio(ctx, all, nil, func(ctx context.Context, symbol string) (float64, error) {
		quote, err := client.FetchQuote(ctx, symbol)
		if err != nil {
			return 0, err
		}
		return quote.Price, nil
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNET QTY\tAVG COST\tPRICE\tMKT VALUE\tREALIZED\tUNREALIZED\tTOTAL P&L")
	for _, pos := range summary {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%s\t%s\t%.2f\t%s\t%s\n",
			pos.Symbol, pos.NetQuantity, pos.AverageCost,
			money(pos.MarketPrice), money(pos.MarketValue),
			pos.RealizedPL, money(pos.UnrealizedPL), money(pos.TotalPL))
	}
	return w.Flush()
}

// money formats an optional currency amount; a missing price renders as "-".
func money(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
