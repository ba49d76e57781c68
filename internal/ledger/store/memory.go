package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/stockdash/stockdash/internal/core"
)

// Memory is an in-memory trade store.
type Memory struct {
	trades []core.Trade
	mu     sync.RWMutex
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Append validates and stores a trade.
func (m *Memory) Append(ctx context.Context, trade core.Trade) (core.Trade, error) {
	trade = trade.Normalize()
	if err := trade.Validate(); err != nil {
		return core.Trade{}, err
	}
	trade.ID = uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, trade)
	return trade, nil
}

// ListAll returns all trades ordered by trade date; the stable sort keeps
// insertion order for same-day trades.
func (m *Memory) ListAll(ctx context.Context) ([]core.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Trade, len(m.trades))
	copy(out, m.trades)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// Clear removes all trades.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = nil
	return nil
}
