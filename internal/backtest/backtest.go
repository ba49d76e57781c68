// Package backtest implements a long-only moving-average crossover backtest.
package backtest

import (
	"fmt"

	"github.com/stockdash/stockdash/internal/core"
	"github.com/stockdash/stockdash/internal/indicator"
)

// Run executes a crossover backtest over the series using simple moving
// averages of the two windows. The position holds the previous bar's signal,
// so no bar trades on information from its own close.
//
// It is a pure function: the same series and windows always produce the same
// frame and statistics.
func Run(series core.Series, fastWindow, slowWindow int) (*Result, error) {
	if fastWindow < 1 {
		return nil, core.WrapError(core.ErrInvalidParameter,
			fmt.Errorf("fast window must be positive, got %d", fastWindow))
	}
	if fastWindow >= slowWindow {
		return nil, core.WrapError(core.ErrInvalidParameter,
			fmt.Errorf("fast window %d must be smaller than slow window %d", fastWindow, slowWindow))
	}

	closes := series.Closes()
	fastMA := indicator.SMA(closes, fastWindow)
	slowMA := indicator.SMA(closes, slowWindow)

	// Drop leading bars where either average is still warming up.
	start := 0
	for start < len(closes) && !(indicator.Defined(fastMA[start]) && indicator.Defined(slowMA[start])) {
		start++
	}
	if start == len(closes) {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("need at least %d bars to compute the moving averages, got %d", slowWindow, len(series)))
	}

	frame := make([]Row, 0, len(closes)-start)
	cumMarket, cumStrategy := 1.0, 1.0
	for i := start; i < len(closes); i++ {
		row := Row{
			Time:   series[i].Time,
			Close:  closes[i],
			FastMA: fastMA[i],
			SlowMA: slowMA[i],
		}
		if fastMA[i] > slowMA[i] { // tie stays flat
			row.Signal = 1
		}
		if i > start {
			row.Position = frame[len(frame)-1].Signal
			row.MarketReturn = closes[i]/closes[i-1] - 1
		}
		row.StrategyReturn = float64(row.Position) * row.MarketReturn

		cumMarket *= 1 + row.MarketReturn
		cumStrategy *= 1 + row.StrategyReturn
		row.CumMarket = cumMarket
		row.CumStrategy = cumStrategy

		frame = append(frame, row)
	}

	return &Result{
		FastWindow: fastWindow,
		SlowWindow: slowWindow,
		Frame:      frame,
		Stats:      CalculateStats(frame),
	}, nil
}
