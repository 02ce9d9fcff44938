package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/review-triage/internal/domain"
)

// ErrRunNotFound is returned when a run does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunsRepository handles database operations for run history.
type RunsRepository struct {
	db *sqlx.DB
}

// NewRunsRepository creates a new runs repository.
func NewRunsRepository(db *sqlx.DB) *RunsRepository {
	return &RunsRepository{db: db}
}

// Create records a finished run.
func (r *RunsRepository) Create(ctx context.Context, summary *domain.RunSummary) error {
	query := r.db.Rebind(`
		INSERT INTO runs (run_id, requested, fetched, classified, spam, skipped, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(
		ctx,
		query,
		summary.RunID,
		summary.Requested,
		summary.Fetched,
		summary.Classified,
		summary.Spam,
		summary.Skipped,
		summary.StartedAt,
		summary.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// GetByID retrieves a run summary by its run ID.
func (r *RunsRepository) GetByID(ctx context.Context, runID string) (*domain.RunSummary, error) {
	var summary domain.RunSummary
	query := r.db.Rebind(`
		SELECT run_id, requested, fetched, classified, spam, skipped, started_at, finished_at
		FROM runs
		WHERE run_id = ?
	`)

	err := r.db.GetContext(ctx, &summary, query, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &summary, nil
}

// Totals aggregates outcome counts across all recorded runs.
func (r *RunsRepository) Totals(ctx context.Context) (*domain.RunSummary, error) {
	var totals domain.RunSummary
	query := `
		SELECT COALESCE(SUM(requested), 0)  AS requested,
		       COALESCE(SUM(fetched), 0)    AS fetched,
		       COALESCE(SUM(classified), 0) AS classified,
		       COALESCE(SUM(spam), 0)       AS spam,
		       COALESCE(SUM(skipped), 0)    AS skipped
		FROM runs
	`

	row := r.db.QueryRowContext(ctx, query)
	err := row.Scan(&totals.Requested, &totals.Fetched, &totals.Classified, &totals.Spam, &totals.Skipped)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate runs: %w", err)
	}

	return &totals, nil
}
