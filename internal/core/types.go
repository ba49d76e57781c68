package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Bar represents a single OHLCV candlestick.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is a price history ordered by strictly increasing timestamps.
type Series []Bar

// Closes returns the closing prices in bar order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}
	return closes
}

// Validate checks that timestamps are strictly increasing with no duplicates.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Time.After(s[i-1].Time) {
			return WrapError(ErrInvalidParameter,
				fmt.Errorf("bars out of order at index %d: %s does not follow %s",
					i, s[i].Time.Format(time.RFC3339), s[i-1].Time.Format(time.RFC3339)))
		}
	}
	return nil
}

// Quote represents the latest traded price for a symbol.
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Volume int64     `json:"volume"`
	Time   time.Time `json:"time"`
	Source string    `json:"source"`
}

// IsValid checks if the quote has required fields.
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.Price > 0
}

// Side represents the direction of a trade.
type Side string

const (
	// SideBuy represents a purchase.
	SideBuy Side = "BUY"
	// SideSell represents a sale.
	SideSell Side = "SELL"
)

// Trade is a single ledger entry. Trades are immutable once stored and are
// removed only through a full ledger clear.
type Trade struct {
	ID       string    `json:"id,omitempty"`
	Symbol   string    `json:"symbol"`
	Date     time.Time `json:"trade_date"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Side     Side      `json:"side"`
	Fees     float64   `json:"fees"`
}

// Normalize returns a copy with the symbol and side upper-cased and trimmed.
func (t Trade) Normalize() Trade {
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	t.Side = Side(strings.ToUpper(strings.TrimSpace(string(t.Side))))
	return t
}

// Validate checks the trade fields. It assumes Normalize has been applied.
func (t Trade) Validate() error {
	if t.Symbol == "" {
		return WrapError(ErrInvalidParameter, errors.New("symbol is required"))
	}
	if t.Side != SideBuy && t.Side != SideSell {
		return WrapError(ErrInvalidParameter, fmt.Errorf("unrecognized side %q", t.Side))
	}
	if t.Quantity <= 0 {
		return WrapError(ErrInvalidParameter, fmt.Errorf("quantity must be positive, got %v", t.Quantity))
	}
	if t.Price <= 0 {
		return WrapError(ErrInvalidParameter, fmt.Errorf("price must be positive, got %v", t.Price))
	}
	if t.Fees < 0 {
		return WrapError(ErrInvalidParameter, fmt.Errorf("fees cannot be negative, got %v", t.Fees))
	}
	if t.Date.IsZero() {
		return WrapError(ErrInvalidParameter, errors.New("trade date is required"))
	}
	return nil
}
