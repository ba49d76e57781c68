// Package ledger implements cost-basis position accounting over an ordered
// trade history.
//
// Summaries are recomputed from the full trade list on every call, so the
// ledger and its derived state can never drift apart. Short positions use a
// simplified convention: the cost basis resets to the latest sale price
// rather than averaging across short entries.
package ledger

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/stockdash/stockdash/internal/core"
)

// PositionState is the derived snapshot for one symbol. Market-dependent
// fields are nil when no market price is available; zero is a valid P&L
// value and must not stand in for "unknown".
type PositionState struct {
	Symbol       string   `json:"symbol"`
	NetQuantity  float64  `json:"net_quantity"`
	AverageCost  float64  `json:"average_cost"`
	RealizedPL   float64  `json:"realized_pl"`
	MarketPrice  *float64 `json:"market_price"`
	MarketValue  *float64 `json:"market_value"`
	UnrealizedPL *float64 `json:"unrealized_pl"`
	TotalPL      *float64 `json:"total_pl"`
}

// Summarize replays the trades of a single symbol in date order (insertion
// order breaks ties) and returns the resulting position state. currentPrice
// may be nil when no market price is known.
//
// BUY recomputes the weighted-average cost with fees capitalized into the
// basis and never touches realized P&L. SELL against a long realizes
// (price - cost) per unit sold minus the whole fee; selling more than the
// long position flips the remainder short at the sale price. SELL while flat
// or short extends the short and resets the basis to the sale price.
func Summarize(trades []core.Trade, currentPrice *float64) PositionState {
	ordered := make([]core.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	var state PositionState
	if len(ordered) > 0 {
		state.Symbol = ordered[0].Symbol
	}

	var netQty, avgCost, realized float64
	for _, t := range ordered {
		qty, price, fees := t.Quantity, t.Price, t.Fees

		switch t.Side {
		case core.SideBuy:
			totalCost := avgCost*netQty + price*qty + fees
			netQty += qty
			if netQty != 0 {
				avgCost = totalCost / netQty
			} else {
				avgCost = 0
			}

		case core.SideSell:
			if netQty <= 0 {
				// Opening or extending a short: basis resets to the sale
				// price, fees reduce realized P&L immediately.
				netQty -= qty
				avgCost = price
				realized -= fees
				continue
			}

			sellQty := math.Min(qty, netQty)
			// The whole fee lands on the long side even when the sale
			// flips the position short.
			realized += (price-avgCost)*sellQty - fees
			netQty -= sellQty
			if netQty == 0 {
				avgCost = 0
			}
			if qty > sellQty {
				netQty -= qty - sellQty
				avgCost = price
			}
		}
	}

	state.NetQuantity = netQty
	state.AverageCost = avgCost
	state.RealizedPL = realized

	if currentPrice != nil {
		price := *currentPrice
		marketValue := price * netQty
		unrealized := (price - avgCost) * netQty
		total := realized + unrealized
		state.MarketPrice = &price
		state.MarketValue = &marketValue
		state.UnrealizedPL = &unrealized
		state.TotalPL = &total
	}
	return state
}

// QuoteFunc returns the latest market price for a symbol.
type QuoteFunc func(ctx context.Context, symbol string) (float64, error)

// Portfolio summarizes every symbol present in the ledger, one row per
// symbol in order of first appearance. Prices missing from the overrides map
// are fetched concurrently through latest; a failed or non-positive quote
// leaves the symbol without a market price instead of failing the summary.
func Portfolio(ctx context.Context, trades []core.Trade, prices map[string]float64, latest QuoteFunc) []PositionState {
	if len(trades) == 0 {
		return []PositionState{}
	}

	bySymbol := make(map[string][]core.Trade)
	var symbols []string
	for _, t := range trades {
		if _, seen := bySymbol[t.Symbol]; !seen {
			symbols = append(symbols, t.Symbol)
		}
		bySymbol[t.Symbol] = append(bySymbol[t.Symbol], t)
	}

	lookup := make(map[string]*float64, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, symbol := range symbols {
		if price, ok := prices[symbol]; ok {
			p := price
			lookup[symbol] = &p
			continue
		}
		if latest == nil {
			continue
		}
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			price, err := latest(ctx, symbol)
			if err != nil || price <= 0 {
				return
			}
			mu.Lock()
			lookup[symbol] = &price
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	out := make([]PositionState, 0, len(symbols))
	for _, symbol := range symbols {
		state := Summarize(bySymbol[symbol], lookup[symbol])
		state.Symbol = symbol
		out = append(out, state)
	}
	return out
}
