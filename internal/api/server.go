// Package api serves the stockdash HTTP API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stockdash/stockdash/internal/api/job"
	"github.com/stockdash/stockdash/internal/collector"
	"github.com/stockdash/stockdash/internal/ledger/store"
	"github.com/stockdash/stockdash/internal/metrics"
	"github.com/stockdash/stockdash/internal/storage/archive"
)

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	MetricsPath string

	// Request defaults applied when query/body parameters are omitted.
	DefaultPeriod   string
	DefaultInterval string
	SMAWindow       int
	EMAWindow       int
	RSIPeriod       int
	FastWindow      int
	SlowWindow      int
}

// Dependencies holds the collaborators the handlers need. Archive and
// Metrics are optional.
type Dependencies struct {
	History collector.HistoryProvider
	Quotes  collector.QuoteProvider
	Trades  store.Store
	Jobs    *job.Store
	Archive archive.Storage
	Metrics *metrics.Registry
}

// Server represents the stockdash HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	cfg        Config
	deps       Dependencies
}

// NewServer creates a new HTTP server.
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
		cfg:    cfg,
		deps:   deps,
	}
	s.setupRoutes()

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(mux)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)

	s.mux.HandleFunc("POST /api/backtest", s.handleBacktestCreate)
	s.mux.HandleFunc("GET /api/backtest/{id}", s.handleBacktestStatus)
	s.mux.HandleFunc("GET /api/backtest/{id}/export", s.handleBacktestExport)

	s.mux.HandleFunc("POST /api/trades", s.handleTradeCreate)
	s.mux.HandleFunc("GET /api/trades", s.handleTradeList)
	s.mux.HandleFunc("DELETE /api/trades", s.handleTradeClear)

	s.mux.HandleFunc("GET /api/portfolio", s.handlePortfolio)

	if s.deps.Metrics != nil && s.cfg.MetricsPath != "" {
		s.mux.Handle("GET "+s.cfg.MetricsPath,
			promhttp.HandlerFor(s.deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
