// internal/delivery/httpapi/handlers.go
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"rsi-radar/application/scheduler"
	"rsi-radar/internal/core/domain/scanner"
	"rsi-radar/internal/types/market"

	"github.com/gin-gonic/gin"
)

// resultView - строка результата с производными полями для клиента
type resultView struct {
	market.ScanResult
	RankLabel            string  `json:"rankLabel"`
	AnnualizedFundingPct float64 `json:"annualizedFundingPct"`
	TradeURL             string  `json:"tradeUrl"`
}

// reportView - отчет в формате API
type reportView struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	DurationMs int64        `json:"durationMs"`
	Total      int          `json:"total"`
	Scanned    int          `json:"scanned"`
	Partial    bool         `json:"partial"`
	Matches    int          `json:"matches"`
	Results    []resultView `json:"results"`
}

// progressView - прогресс пула воркеров (done из total кандидатов)
type progressView struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

type stateView struct {
	State        string                `json:"state"`
	Progress     progressView          `json:"progress"`
	LastReportID string                `json:"lastReportId,omitempty"`
	LastFinished *time.Time            `json:"lastFinishedAt,omitempty"`
	Jobs         []scheduler.JobStatus `json:"jobs,omitempty"`
}

func newReportView(r *market.ScanReport) reportView {
	results := make([]resultView, len(r.Results))
	for i, res := range r.Results {
		results[i] = resultView{
			ScanResult:           res,
			RankLabel:            res.RankLabel(),
			AnnualizedFundingPct: res.AnnualizedFundingPct(),
			TradeURL:             res.TradeURL(),
		}
	}
	return reportView{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DurationMs: r.Duration().Milliseconds(),
		Total:      r.Total,
		Scanned:    r.Scanned,
		Partial:    r.Partial,
		Matches:    len(r.Results),
		Results:    results,
	}
}

func (s *Server) health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "state": s.runner.State().String()})
}

func (s *Server) latest(c *gin.Context) {
	report := s.runner.LastReport()
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scan completed yet"})
		return
	}
	c.JSON(http.StatusOK, newReportView(report))
}

func (s *Server) state(c *gin.Context) {
	done, total := s.runner.Progress()
	view := stateView{
		State:    s.runner.State().String(),
		Progress: progressView{Done: done, Total: total},
	}
	if report := s.runner.LastReport(); report != nil {
		view.LastReportID = report.ID
		finished := report.FinishedAt
		view.LastFinished = &finished
	}
	if s.jobs != nil {
		view.Jobs = s.jobs.Jobs()
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) trigger(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.scanTimeout)
	defer cancel()

	report, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, scanner.ErrScanInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": s.runner.State().String()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newReportView(report))
}
