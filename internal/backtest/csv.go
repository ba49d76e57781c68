package backtest

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// WriteCSV streams the equity curve frame as CSV.
func WriteCSV(w io.Writer, frame []Row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{
		"time", "close", "fast_ma", "slow_ma", "signal", "position",
		"market_return", "strategy_return", "cumulative_market", "cumulative_strategy",
	}); err != nil {
		return err
	}
	for _, row := range frame {
		if err := cw.Write([]string{
			row.Time.Format(time.RFC3339),
			formatF(row.Close), formatF(row.FastMA), formatF(row.SlowMA),
			strconv.Itoa(row.Signal), strconv.Itoa(row.Position),
			formatF(row.MarketReturn), formatF(row.StrategyReturn),
			formatF(row.CumMarket), formatF(row.CumStrategy),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
