package api

import (
	"context"
	"net/http"
	"time"

	"github.com/stockdash/stockdash/internal/api/response"
	"github.com/stockdash/stockdash/internal/ledger"
)

const quoteTimeout = 10 * time.Second

// handlePortfolio summarizes every symbol in the ledger, fetching a live
// quote for each. A quote failure leaves that symbol's market fields null
// rather than failing the whole summary.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	trades, err := s.deps.Trades.ListAll(r.Context())
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), quoteTimeout)
	defer cancel()

	summary := ledger.Portfolio(ctx, trades, nil, s.latestPrice)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordPortfolioSummary()
	}
	response.JSON(w, http.StatusOK, summary)
}

func (s *Server) latestPrice(ctx context.Context, symbol string) (float64, error) {
	quote, err := s.deps.Quotes.FetchQuote(ctx, symbol)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordFetch("quote", err)
	}
	if err != nil {
		return 0, err
	}
	return quote.Price, nil
}
