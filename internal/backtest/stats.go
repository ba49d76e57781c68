package backtest

import "math"

// CalculateStats computes performance statistics from an equity curve frame.
func CalculateStats(frame []Row) Stats {
	if len(frame) == 0 {
		return Stats{}
	}

	var trades, activeBars, winningBars int
	returns := make([]float64, 0, len(frame))
	for i, row := range frame {
		if i > 0 {
			if d := row.Position - frame[i-1].Position; d > 0 {
				trades += d
			} else {
				trades -= d
			}
		}
		returns = append(returns, row.StrategyReturn)
		if row.Position != 0 {
			activeBars++
			if row.StrategyReturn > 0 {
				winningBars++
			}
		}
	}

	var winRate float64
	if activeBars > 0 {
		winRate = float64(winningBars) / float64(activeBars)
	}

	last := frame[len(frame)-1]
	return Stats{
		TotalTrades:       trades,
		StrategyReturnPct: (last.CumStrategy - 1) * 100,
		MarketReturnPct:   (last.CumMarket - 1) * 100,
		MaxDrawdownPct:    maxDrawdown(frame) * 100,
		WinRate:           winRate,
		SharpeRatio:       sharpeRatio(returns),
	}
}

// maxDrawdown returns the deepest peak-to-trough decline of the strategy
// equity curve as a non-positive fraction. A non-decreasing curve yields 0.
func maxDrawdown(frame []Row) float64 {
	if len(frame) == 0 {
		return 0
	}

	peak := math.Inf(-1)
	var minDD float64
	for _, row := range frame {
		if row.CumStrategy > peak {
			peak = row.CumStrategy
		}
		if dd := row.CumStrategy/peak - 1; dd < minDD {
			minDD = dd
		}
	}
	return minDD
}

// sharpeRatio annualizes mean over sample standard deviation assuming 252
// trading days and a zero risk-free rate. Zero variance yields 0, not NaN.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)-1))
	if stdDev == 0 {
		return 0
	}

	return mean / stdDev * math.Sqrt(252)
}
