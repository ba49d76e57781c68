// Package store persists the trade ledger.
package store

import (
	"context"

	"github.com/stockdash/stockdash/internal/core"
)

// Store is an ordered trade ledger. Trades are append-only; the only way to
// remove entries is a full clear.
type Store interface {
	// Append validates, normalizes, and stores a trade, returning the
	// stored copy with its assigned ID.
	Append(ctx context.Context, trade core.Trade) (core.Trade, error)

	// ListAll returns every trade ordered by trade date, with insertion
	// order breaking ties.
	ListAll(ctx context.Context) ([]core.Trade, error)

	// Clear removes all trades.
	Clear(ctx context.Context) error
}
