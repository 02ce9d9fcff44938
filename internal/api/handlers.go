package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/review-triage/internal/database"
	"github.com/jonesrussell/review-triage/internal/domain"
	"github.com/jonesrussell/review-triage/internal/logger"
	"github.com/jonesrussell/review-triage/internal/processor"
	"github.com/jonesrussell/review-triage/internal/telemetry"
)

// RunHistory reads recorded run summaries.
type RunHistory interface {
	GetByID(ctx context.Context, runID string) (*domain.RunSummary, error)
	Totals(ctx context.Context) (*domain.RunSummary, error)
}

// TicketStats aggregates ticket counters.
type TicketStats interface {
	CountByCategory(ctx context.Context) (map[string]int, error)
	CountSpam(ctx context.Context) (int, error)
}

// Handler serves the triage API.
type Handler struct {
	runner       *processor.Runner
	runs         RunHistory
	tickets      TicketStats
	telemetry    *telemetry.Provider
	readiness    func(ctx context.Context) error
	service      string
	version      string
	batchSize    int
	maxBatchSize int
	logger       logger.Logger
}

// HandlerConfig collects the Handler's collaborators.
type HandlerConfig struct {
	Runner       *processor.Runner
	Runs         RunHistory
	Tickets      TicketStats
	Telemetry    *telemetry.Provider
	Readiness    func(ctx context.Context) error
	Service      string
	Version      string
	BatchSize    int
	MaxBatchSize int
	Logger       logger.Logger
}

// NewHandler creates the API handler.
func NewHandler(cfg HandlerConfig) *Handler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	maxBatchSize := cfg.MaxBatchSize
	if maxBatchSize <= 0 {
		maxBatchSize = 100
	}
	return &Handler{
		runner:       cfg.Runner,
		runs:         cfg.Runs,
		tickets:      cfg.Tickets,
		telemetry:    cfg.Telemetry,
		readiness:    cfg.Readiness,
		service:      cfg.Service,
		version:      cfg.Version,
		batchSize:    batchSize,
		maxBatchSize: maxBatchSize,
		logger:       cfg.Logger,
	}
}

// TriageBatch triages a batch of reviews supplied inline.
// POST /api/v1/triage
func (h *Handler) TriageBatch(c *gin.Context) {
	var req TriageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if len(req.Reviews) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "reviews must not be empty"})
		return
	}
	if len(req.Reviews) > h.maxBatchSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("batch too large: %d reviews, maximum is %d", len(req.Reviews), h.maxBatchSize),
		})
		return
	}

	summary, results, err := h.runner.Process(c.Request.Context(), len(req.Reviews), req.Reviews)
	if err != nil {
		h.logger.Error("inline triage failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "triage failed"})
		return
	}

	c.JSON(http.StatusOK, TriageResponse{
		RunID:   summary.RunID,
		Summary: summary,
		Results: results,
	})
}

// StartRun fetches reviews from the source and triages them.
// POST /api/v1/runs
func (h *Handler) StartRun(c *gin.Context) {
	var req StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	count := req.Count
	if count <= 0 {
		count = h.batchSize
	}

	summary, results, err := h.runner.RunFromSource(c.Request.Context(), count)
	if err != nil {
		h.logger.Error("run failed", logger.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "run failed"})
		return
	}

	c.JSON(http.StatusOK, TriageResponse{
		RunID:   summary.RunID,
		Summary: summary,
		Results: results,
	})
}

// GetRun returns one recorded run summary.
// GET /api/v1/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	summary, err := h.runs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "run not found"})
			return
		}
		h.logger.Error("failed to load run", logger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load run"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetStats returns aggregate ticket and run counters.
// GET /api/v1/stats
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	categories, err := h.tickets.CountByCategory(ctx)
	if err != nil {
		h.logger.Error("failed to count categories", logger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load stats"})
		return
	}

	spamTotal, err := h.tickets.CountSpam(ctx)
	if err != nil {
		h.logger.Error("failed to count spam", logger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load stats"})
		return
	}

	totals, err := h.runs.Totals(ctx)
	if err != nil {
		h.logger.Error("failed to aggregate runs", logger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Categories: categories,
		SpamTotal:  spamTotal,
		Runs:       totals,
	})
}

// HealthCheck reports liveness.
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
	})
}

// ReadyCheck reports readiness, including backing-store connectivity.
// GET /ready
func (h *Handler) ReadyCheck(c *gin.Context) {
	if h.readiness != nil {
		if err := h.readiness(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
