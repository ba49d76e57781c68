package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/stockdash/stockdash/internal/api/job"
	"github.com/stockdash/stockdash/internal/api/response"
	"github.com/stockdash/stockdash/internal/backtest"
	"github.com/stockdash/stockdash/internal/core"
)

const backtestTimeout = 2 * time.Minute

// backtestRequest is the request body for starting a backtest.
type backtestRequest struct {
	Symbol     string `json:"symbol"`
	Period     string `json:"period,omitempty"`
	Interval   string `json:"interval,omitempty"`
	FastWindow int    `json:"fast_window,omitempty"`
	SlowWindow int    `json:"slow_window,omitempty"`
}

// handleBacktestCreate starts a backtest job and returns its ID; clients
// poll the status endpoint for the result.
func (s *Server) handleBacktestCreate(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		wrapped := core.WrapError(core.ErrInvalidParameter, err)
		response.Error(w, response.StatusFor(wrapped), wrapped)
		return
	}
	if req.Symbol == "" {
		err := core.WrapError(core.ErrInvalidParameter, fmt.Errorf("symbol is required"))
		response.Error(w, response.StatusFor(err), err)
		return
	}
	if req.Period == "" {
		req.Period = s.cfg.DefaultPeriod
	}
	if req.Interval == "" {
		req.Interval = s.cfg.DefaultInterval
	}
	if req.FastWindow == 0 {
		req.FastWindow = s.cfg.FastWindow
	}
	if req.SlowWindow == 0 {
		req.SlowWindow = s.cfg.SlowWindow
	}
	if req.FastWindow < 1 || req.FastWindow >= req.SlowWindow {
		err := core.WrapError(core.ErrInvalidParameter,
			fmt.Errorf("fast window %d must be positive and smaller than slow window %d",
				req.FastWindow, req.SlowWindow))
		response.Error(w, response.StatusFor(err), err)
		return
	}

	j := s.deps.Jobs.Create("backtest")
	go s.runBacktest(j.ID, req)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	})
}

// runBacktest executes the backtest and updates job status.
func (s *Server) runBacktest(jobID string, req backtestRequest) {
	if err := s.deps.Jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	}); err != nil {
		s.logger.Warn("marking backtest job running",
			zap.String("job_id", jobID), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), backtestTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.fetchAndRun(ctx, req)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordBacktest(err, time.Since(start).Seconds())
	}

	if err != nil {
		if updateErr := s.deps.Jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = asCoreError(err)
		}); updateErr != nil {
			s.logger.Warn("recording backtest job failure",
				zap.String("job_id", jobID), zap.Error(updateErr))
		}
		return
	}

	s.archiveResult(ctx, jobID, result)
	if err := s.deps.Jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Result = result
	}); err != nil {
		s.logger.Warn("recording backtest job result",
			zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *Server) fetchAndRun(ctx context.Context, req backtestRequest) (*backtest.Result, error) {
	series, err := s.deps.History.FetchHistory(ctx, req.Symbol, req.Period, req.Interval)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordFetch("history", err)
	}
	if err != nil {
		return nil, err
	}

	result, err := backtest.Run(series, req.FastWindow, req.SlowWindow)
	if err != nil {
		return nil, err
	}
	result.Symbol = req.Symbol
	return result, nil
}

// archiveResult writes the result to cold storage when configured.
// Archiving is best effort; a failure is logged, not surfaced.
func (s *Server) archiveResult(ctx context.Context, jobID string, result *backtest.Result) {
	if s.deps.Archive == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("encoding backtest result for archive", zap.Error(err))
		return
	}
	path := fmt.Sprintf("backtests/%s/%s.json", result.Symbol, jobID)
	if err := s.deps.Archive.Write(ctx, path, data); err != nil {
		s.logger.Warn("archiving backtest result",
			zap.String("path", path), zap.Error(err))
	}
}

// handleBacktestStatus returns the status of a backtest job.
func (s *Server) handleBacktestStatus(w http.ResponseWriter, r *http.Request) {
	j, err := s.deps.Jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	resp := map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	}
	if j.Status == job.StatusComplete {
		resp["result"] = j.Result
	}
	if j.Status == job.StatusFailed && j.Error != nil {
		resp["error"] = map[string]string{
			"code":    j.Error.Code,
			"message": j.Error.Message,
		}
	}

	response.JSON(w, http.StatusOK, resp)
}

// handleBacktestExport streams the equity curve of a completed backtest as CSV.
func (s *Server) handleBacktestExport(w http.ResponseWriter, r *http.Request) {
	j, err := s.deps.Jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	result, ok := j.Result.(*backtest.Result)
	if j.Status != job.StatusComplete || !ok {
		notReady := core.WrapError(core.ErrNoData, fmt.Errorf("backtest %s is not complete", j.ID))
		response.Error(w, http.StatusConflict, notReady)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s_backtest.csv", result.Symbol))
	if err := backtest.WriteCSV(w, result.Frame); err != nil {
		s.logger.Warn("streaming backtest CSV", zap.Error(err))
	}
}

// asCoreError returns err as a *core.Error, wrapping unknown errors as an
// upstream failure.
func asCoreError(err error) *core.Error {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return coreErr
	}
	return core.WrapError(core.ErrUpstreamUnavailable, err)
}
