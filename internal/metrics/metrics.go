package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	fetchesTotal       *prometheus.CounterVec
	backtestsTotal     *prometheus.CounterVec
	backtestDuration   prometheus.Histogram
	tradesRecorded     *prometheus.CounterVec
	portfolioSummaries prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),

		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_fetches_total",
				Help: "Total number of market data fetches",
			},
			[]string{"kind", "status"},
		),
		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_backtests_total",
				Help: "Total number of backtest runs",
			},
			[]string{"status"},
		),
		backtestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stockdash_backtest_duration_seconds",
				Help:    "Backtest duration in seconds including data fetch",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
		tradesRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_trades_recorded_total",
				Help: "Total number of trades appended to the ledger",
			},
			[]string{"side"},
		),
		portfolioSummaries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stockdash_portfolio_summaries_total",
				Help: "Total number of portfolio summaries computed",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)
	reg.MustRegister(r.fetchesTotal)
	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.tradesRecorded)
	reg.MustRegister(r.portfolioSummaries)

	return r
}

// RecordRequest records an HTTP request with its outcome.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	r.httpRequestsTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments the in-flight request gauge.
func (r *Registry) InFlightInc() { r.httpRequestsInFlight.Inc() }

// InFlightDec decrements the in-flight request gauge.
func (r *Registry) InFlightDec() { r.httpRequestsInFlight.Dec() }

// RecordFetch records a market data fetch. kind is "history" or "quote".
func (r *Registry) RecordFetch(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.fetchesTotal.WithLabelValues(kind, status).Inc()
}

// RecordBacktest records a completed backtest run.
func (r *Registry) RecordBacktest(err error, seconds float64) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.backtestsTotal.WithLabelValues(status).Inc()
	r.backtestDuration.Observe(seconds)
}

// RecordTrade records a trade appended to the ledger.
func (r *Registry) RecordTrade(side string) {
	r.tradesRecorded.WithLabelValues(side).Inc()
}

// RecordPortfolioSummary records a portfolio summary computation.
func (r *Registry) RecordPortfolioSummary() {
	r.portfolioSummaries.Inc()
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
