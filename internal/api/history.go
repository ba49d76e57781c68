package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/stockdash/stockdash/internal/api/response"
	"github.com/stockdash/stockdash/internal/core"
	"github.com/stockdash/stockdash/internal/indicator"
)

// historyResponse carries price bars plus aligned indicator columns.
// Undefined indicator positions are encoded as JSON null.
type historyResponse struct {
	Symbol     string     `json:"symbol"`
	Period     string     `json:"period"`
	Interval   string     `json:"interval"`
	Bars       []core.Bar `json:"bars"`
	SMAWindow  int        `json:"sma_window"`
	EMAWindow  int        `json:"ema_window"`
	RSIPeriod  int        `json:"rsi_period"`
	SMA        []*float64 `json:"sma"`
	EMA        []*float64 `json:"ema"`
	RSI        []*float64 `json:"rsi"`
	MACD       []*float64 `json:"macd"`
	MACDSignal []*float64 `json:"macd_signal"`
	MACDHist   []*float64 `json:"macd_hist"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		err := core.WrapError(core.ErrInvalidParameter, fmt.Errorf("symbol query parameter is required"))
		response.Error(w, response.StatusFor(err), err)
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = s.cfg.DefaultPeriod
	}
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = s.cfg.DefaultInterval
	}

	smaWindow, err := queryInt(r, "sma", s.cfg.SMAWindow)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	emaWindow, err := queryInt(r, "ema", s.cfg.EMAWindow)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	rsiPeriod, err := queryInt(r, "rsi", s.cfg.RSIPeriod)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	series, fetchErr := s.deps.History.FetchHistory(r.Context(), symbol, period, interval)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordFetch("history", fetchErr)
	}
	if fetchErr != nil {
		response.Error(w, response.StatusFor(fetchErr), fetchErr)
		return
	}

	closes := series.Closes()
	macd := indicator.MACD(closes, indicator.DefaultMACDFast, indicator.DefaultMACDSlow, indicator.DefaultMACDSignal)

	response.JSON(w, http.StatusOK, historyResponse{
		Symbol:     symbol,
		Period:     period,
		Interval:   interval,
		Bars:       series,
		SMAWindow:  smaWindow,
		EMAWindow:  emaWindow,
		RSIPeriod:  rsiPeriod,
		SMA:        nullable(indicator.SMA(closes, smaWindow)),
		EMA:        nullable(indicator.EMA(closes, emaWindow)),
		RSI:        nullable(indicator.RSI(closes, rsiPeriod)),
		MACD:       nullable(macd.Line),
		MACDSignal: nullable(macd.Signal),
		MACDHist:   nullable(macd.Histogram),
	})
}

// nullable converts an indicator series to pointers, mapping undefined
// positions to nil so they marshal as JSON null instead of NaN.
func nullable(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if indicator.Defined(v) {
			value := v
			out[i] = &value
		}
	}
	return out
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("%s must be an integer, got %q", key, raw))
	}
	return n, nil
}
