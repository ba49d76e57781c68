package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stockdash/stockdash/internal/api/response"
	"github.com/stockdash/stockdash/internal/core"
)

// tradeRequest is the request body for recording a trade. The trade date
// uses the YYYY-MM-DD format.
type tradeRequest struct {
	Symbol   string  `json:"symbol"`
	Date     string  `json:"trade_date"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Side     string  `json:"side"`
	Fees     float64 `json:"fees"`
}

func (s *Server) handleTradeCreate(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		wrapped := core.WrapError(core.ErrInvalidParameter, err)
		response.Error(w, response.StatusFor(wrapped), wrapped)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		wrapped := core.WrapError(core.ErrInvalidParameter,
			fmt.Errorf("trade_date must be YYYY-MM-DD: %w", err))
		response.Error(w, response.StatusFor(wrapped), wrapped)
		return
	}

	trade, err := s.deps.Trades.Append(r.Context(), core.Trade{
		Symbol:   req.Symbol,
		Date:     date,
		Quantity: req.Quantity,
		Price:    req.Price,
		Side:     core.Side(req.Side),
		Fees:     req.Fees,
	})
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordTrade(string(trade.Side))
	}
	response.JSON(w, http.StatusCreated, trade)
}

func (s *Server) handleTradeList(w http.ResponseWriter, r *http.Request) {
	trades, err := s.deps.Trades.ListAll(r.Context())
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	if trades == nil {
		trades = []core.Trade{}
	}
	response.JSON(w, http.StatusOK, trades)
}

func (s *Server) handleTradeClear(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Trades.Clear(r.Context()); err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
