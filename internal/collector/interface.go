// Package collector defines the market-data provider contracts.
package collector

import (
	"context"

	"github.com/stockdash/stockdash/internal/core"
)

// HistoryProvider fetches historical OHLCV bars for a look-back period.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol, period, interval string) (core.Series, error)
}

// QuoteProvider fetches the latest traded price for a symbol.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, symbol string) (*core.Quote, error)
}

// Provider combines history and quote retrieval.
type Provider interface {
	HistoryProvider
	QuoteProvider
}
