package backtest

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/stockdash/stockdash/internal/core"
)

func seriesFrom(closes []float64) core.Series {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(core.Series, len(closes))
	for i, c := range closes {
		series[i] = core.Bar{
			Time:  base.AddDate(0, 0, i),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return series
}

func TestRun_FastMustBeSmallerThanSlow(t *testing.T) {
	series := seriesFrom([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	for _, tc := range []struct{ fast, slow int }{
		{5, 5},
		{10, 5},
	} {
		_, err := Run(series, tc.fast, tc.slow)
		if !errors.Is(err, core.ErrInvalidParameter) {
			t.Errorf("Run(fast=%d, slow=%d): expected invalid parameter, got %v", tc.fast, tc.slow, err)
		}
	}
}

func TestRun_NonPositiveFastWindow(t *testing.T) {
	series := seriesFrom([]float64{1, 2, 3, 4, 5})

	_, err := Run(series, 0, 3)
	if !errors.Is(err, core.ErrInvalidParameter) {
		t.Errorf("expected invalid parameter, got %v", err)
	}
}

func TestRun_InsufficientData(t *testing.T) {
	series := seriesFrom([]float64{1, 2, 3, 4, 5})

	_, err := Run(series, 20, 50)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("expected insufficient data, got %v", err)
	}

	_, err = Run(nil, 2, 3)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("empty series: expected insufficient data, got %v", err)
	}
}

func TestRun_SmallFrameByHand(t *testing.T) {
	// closes 1..5 with MA(2)/MA(3): both averages defined from index 2,
	// the fast average leads the slow one on every retained bar.
	series := seriesFrom([]float64{1, 2, 3, 4, 5})

	result, err := Run(series, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Frame) != 3 {
		t.Fatalf("expected 3 retained bars, got %d", len(result.Frame))
	}

	first := result.Frame[0]
	if first.FastMA != 2.5 || first.SlowMA != 2 {
		t.Errorf("first bar MAs = %f/%f, want 2.5/2", first.FastMA, first.SlowMA)
	}
	if first.Signal != 1 || first.Position != 0 {
		t.Errorf("first bar signal/position = %d/%d, want 1/0", first.Signal, first.Position)
	}
	if first.MarketReturn != 0 || first.StrategyReturn != 0 {
		t.Errorf("first bar returns must be zero, got %f/%f", first.MarketReturn, first.StrategyReturn)
	}
	if first.CumMarket != 1 || first.CumStrategy != 1 {
		t.Errorf("first bar cumulatives = %f/%f, want 1/1", first.CumMarket, first.CumStrategy)
	}

	second := result.Frame[1]
	if second.Position != 1 {
		t.Errorf("second bar position = %d, want 1", second.Position)
	}
	if math.Abs(second.MarketReturn-(4.0/3.0-1)) > 1e-12 {
		t.Errorf("second bar market return = %f, want %f", second.MarketReturn, 4.0/3.0-1)
	}
	if second.StrategyReturn != second.MarketReturn {
		t.Errorf("long position must track the market return")
	}

	last := result.Frame[2]
	if math.Abs(last.CumMarket-5.0/3.0) > 1e-12 {
		t.Errorf("cumulative market = %f, want %f", last.CumMarket, 5.0/3.0)
	}
	if math.Abs(last.CumStrategy-5.0/3.0) > 1e-12 {
		t.Errorf("cumulative strategy = %f, want %f", last.CumStrategy, 5.0/3.0)
	}

	stats := result.Stats
	if stats.TotalTrades != 1 {
		t.Errorf("total trades = %d, want 1", stats.TotalTrades)
	}
	if stats.WinRate != 1 {
		t.Errorf("win rate = %f, want 1", stats.WinRate)
	}
	if stats.MaxDrawdownPct != 0 {
		t.Errorf("max drawdown = %f, want 0 for a rising curve", stats.MaxDrawdownPct)
	}
	if math.Abs(stats.StrategyReturnPct-(5.0/3.0-1)*100) > 1e-9 {
		t.Errorf("strategy return = %f%%, want %f%%", stats.StrategyReturnPct, (5.0/3.0-1)*100)
	}
}

func TestRun_PositionLagsSignal(t *testing.T) {
	// Oscillating closes force the signal to flip; the position must always
	// hold the previous bar's signal.
	closes := []float64{10, 12, 9, 13, 8, 14, 7, 15, 6, 16, 5, 17, 4, 18}
	series := seriesFrom(closes)

	result, err := Run(series, 2, 4)
	if err != nil {
		t.Fatal(err)
	}

	if result.Frame[0].Position != 0 {
		t.Errorf("first retained bar must start flat, got %d", result.Frame[0].Position)
	}
	for i := 1; i < len(result.Frame); i++ {
		if result.Frame[i].Position != result.Frame[i-1].Signal {
			t.Errorf("bar %d: position %d does not lag signal %d",
				i, result.Frame[i].Position, result.Frame[i-1].Signal)
		}
	}
}

func TestRun_TieStaysFlat(t *testing.T) {
	// A constant series keeps both averages equal; equality must not signal.
	series := seriesFrom([]float64{5, 5, 5, 5, 5, 5})

	result, err := Run(series, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, row := range result.Frame {
		if row.Signal != 0 {
			t.Errorf("bar %d: expected no signal on equal averages, got %d", i, row.Signal)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	closes := []float64{10, 12, 9, 13, 8, 14, 7, 15, 6, 16}
	series := seriesFrom(closes)

	a, err := Run(series, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(series, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must produce identical results")
	}
}
