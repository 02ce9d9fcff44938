package api

import (
	"github.com/jonesrussell/review-triage/internal/domain"
)

// TriageRequest is the body for POST /api/v1/triage.
type TriageRequest struct {
	Reviews []domain.Review `json:"reviews" binding:"required"`
}

// TriageResponse is the reply for POST /api/v1/triage.
type TriageResponse struct {
	RunID   string                `json:"run_id"`
	Summary *domain.RunSummary    `json:"summary"`
	Results []domain.TriageResult `json:"results"`
}

// StartRunRequest is the body for POST /api/v1/runs. Count 0 means the
// configured default batch size.
type StartRunRequest struct {
	Count int `json:"count"`
}

// StatsResponse aggregates ticket and run counters across all runs.
type StatsResponse struct {
	Categories map[string]int     `json:"categories"`
	SpamTotal  int                `json:"spam_total"`
	Runs       *domain.RunSummary `json:"runs"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
