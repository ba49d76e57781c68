package backtest

import "time"

// Row is one bar of the crossover equity curve, aligned with the retained
// portion of the input series.
type Row struct {
	Time           time.Time `json:"time"`
	Close          float64   `json:"close"`
	FastMA         float64   `json:"fast_ma"`
	SlowMA         float64   `json:"slow_ma"`
	Signal         int       `json:"signal"`
	Position       int       `json:"position"`
	MarketReturn   float64   `json:"market_return"`
	StrategyReturn float64   `json:"strategy_return"`
	CumMarket      float64   `json:"cumulative_market"`
	CumStrategy    float64   `json:"cumulative_strategy"`
}

// Stats holds performance statistics for a completed run. Return figures are
// percentages, win rate is a fraction in [0, 1], and the drawdown is never
// positive.
type Stats struct {
	TotalTrades       int     `json:"total_trades"`
	StrategyReturnPct float64 `json:"strategy_return_pct"`
	MarketReturnPct   float64 `json:"market_return_pct"`
	MaxDrawdownPct    float64 `json:"max_drawdown_pct"`
	WinRate           float64 `json:"win_rate"`
	SharpeRatio       float64 `json:"sharpe_ratio"`
}

// Result holds the complete backtest output.
type Result struct {
	Symbol     string `json:"symbol,omitempty"`
	FastWindow int    `json:"fast_window"`
	SlowWindow int    `json:"slow_window"`
	Frame      []Row  `json:"frame"`
	Stats      Stats  `json:"stats"`
}
