// Package processor runs triage batches end to end: fetch, triage, ticket
// creation, progress posts, archiving and run history.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/review-triage/internal/domain"
	"github.com/jonesrussell/review-triage/internal/logger"
	"github.com/jonesrussell/review-triage/internal/progress"
	"github.com/jonesrussell/review-triage/internal/source"
	"github.com/jonesrussell/review-triage/internal/storage"
	"github.com/jonesrussell/review-triage/internal/telemetry"
	"github.com/jonesrussell/review-triage/internal/triage"
)

// Registry supplies the category set valid for label overrides.
type Registry interface {
	AllowedSet(ctx context.Context) (map[string]struct{}, error)
}

// RunStore records finished run summaries.
type RunStore interface {
	Create(ctx context.Context, summary *domain.RunSummary) error
}

// Archiver indexes triage results for later search.
type Archiver interface {
	IndexResult(ctx context.Context, runID string, result *domain.TriageResult) error
}

// Runner orchestrates one triage run. Collaborator failures are logged and
// skip only the affected review; a run fails outright only when the source
// fetch or the category registry is unavailable.
type Runner struct {
	src       source.ReviewSource
	pipeline  *triage.Pipeline
	registry  Registry
	sink      storage.TicketSink
	archive   Archiver // nil disables archiving
	runs      RunStore // nil disables run history
	notifier  progress.Notifier
	telemetry *telemetry.Provider
	logger    logger.Logger
}

// Config collects the Runner's collaborators.
type Config struct {
	Source    source.ReviewSource
	Pipeline  *triage.Pipeline
	Registry  Registry
	Sink      storage.TicketSink
	Archive   Archiver
	Runs      RunStore
	Notifier  progress.Notifier
	Telemetry *telemetry.Provider
	Logger    logger.Logger
}

// NewRunner creates a batch runner.
func NewRunner(cfg Config) *Runner {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = progress.NewLogNotifier(cfg.Logger)
	}
	return &Runner{
		src:       cfg.Source,
		pipeline:  cfg.Pipeline,
		registry:  cfg.Registry,
		sink:      cfg.Sink,
		archive:   cfg.Archive,
		runs:      cfg.Runs,
		notifier:  notifier,
		telemetry: cfg.Telemetry,
		logger:    cfg.Logger,
	}
}

// RunFromSource fetches up to n reviews and triages them.
func (r *Runner) RunFromSource(ctx context.Context, n int) (*domain.RunSummary, []domain.TriageResult, error) {
	if r.src == nil {
		return nil, nil, fmt.Errorf("no review source configured")
	}

	r.post(ctx, "Fetching reviews...")

	reviews, err := r.src.Fetch(ctx, n)
	if err != nil {
		if r.telemetry != nil {
			r.telemetry.Metrics.SourceFetchErrors.Inc()
		}
		return nil, nil, fmt.Errorf("fetch reviews: %w", err)
	}
	if r.telemetry != nil {
		r.telemetry.Metrics.SourceFetches.Inc()
	}

	r.post(ctx, fmt.Sprintf("Fetched %d reviews, creating tickets now.", len(reviews)))

	return r.Process(ctx, n, reviews)
}

// Process triages the given reviews as one run: per-run triage state, one
// ticket per result, progress posts, archiving, and a persisted summary.
func (r *Runner) Process(ctx context.Context, requested int, reviews []domain.Review) (*domain.RunSummary, []domain.TriageResult, error) {
	runID := uuid.NewString()
	startedAt := time.Now().UTC()

	ctx, runSpan := r.startSpan(ctx, runID, len(reviews))
	defer runSpan()

	allowed, err := r.registry.AllowedSet(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load category registry: %w", err)
	}

	r.logger.Info("starting triage run",
		logger.String("run_id", runID),
		logger.Int("reviews", len(reviews)))

	out := r.pipeline.Run(ctx, reviews, allowed)

	summary := &domain.RunSummary{
		RunID:     runID,
		Requested: requested,
		Fetched:   len(reviews),
		Skipped:   len(out.Skipped),
		StartedAt: startedAt,
	}

	for i := range out.Results {
		result := &out.Results[i]
		if result.IsSpam() {
			summary.Spam++
		} else {
			summary.Classified++
			r.post(ctx, fmt.Sprintf("Creating ticket for review: %s", result.Review.URL))
		}

		r.createTicket(ctx, runID, result)
		r.archiveResult(ctx, runID, result)
	}

	summary.FinishedAt = time.Now().UTC()

	if r.runs != nil {
		if storeErr := r.runs.Create(ctx, summary); storeErr != nil {
			r.logger.Error("failed to record run summary",
				logger.String("run_id", runID),
				logger.Error(storeErr))
		}
	}

	r.logger.Info("triage run complete",
		logger.String("run_id", runID),
		logger.Int("classified", summary.Classified),
		logger.Int("spam", summary.Spam),
		logger.Int("skipped", summary.Skipped),
		logger.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)))

	return summary, out.Results, nil
}

func (r *Runner) createTicket(ctx context.Context, runID string, result *domain.TriageResult) {
	if r.sink == nil {
		return
	}

	ticket := storage.BuildTicket(runID, result)
	if err := r.sink.Create(ctx, ticket); err != nil {
		r.logger.Error("failed to create ticket",
			logger.String("run_id", runID),
			logger.String("review_id", result.Review.ID),
			logger.Error(err))
		if r.telemetry != nil {
			r.telemetry.Metrics.TicketFailures.WithLabelValues("database").Inc()
		}
		return
	}

	if r.telemetry != nil {
		r.telemetry.Metrics.TicketsCreated.WithLabelValues("database").Inc()
	}

	if !result.IsSpam() {
		msg := fmt.Sprintf("Created ticket: <%d> and it is categorized as %s", ticket.ID, result.Category)
		if result.Category == domain.CategoryUnknown {
			msg = fmt.Sprintf("Created ticket: <%d> and it failed to be categorized", ticket.ID)
		}
		r.post(ctx, msg)
	}
}

func (r *Runner) archiveResult(ctx context.Context, runID string, result *domain.TriageResult) {
	if r.archive == nil {
		return
	}

	if err := r.archive.IndexResult(ctx, runID, result); err != nil {
		r.logger.Warn("failed to archive triage result",
			logger.String("run_id", runID),
			logger.String("review_id", result.Review.ID),
			logger.Error(err))
		if r.telemetry != nil {
			r.telemetry.Metrics.TicketFailures.WithLabelValues("elasticsearch").Inc()
		}
		return
	}
	if r.telemetry != nil {
		r.telemetry.Metrics.TicketsCreated.WithLabelValues("elasticsearch").Inc()
	}
}

func (r *Runner) post(ctx context.Context, message string) {
	if err := r.notifier.Post(ctx, message); err != nil {
		r.logger.Warn("failed to post progress", logger.Error(err))
		if r.telemetry != nil {
			r.telemetry.Metrics.ProgressPostErrors.Inc()
		}
	}
}

func (r *Runner) startSpan(ctx context.Context, runID string, size int) (context.Context, func()) {
	if r.telemetry == nil {
		return ctx, func() {}
	}
	ctx, span := r.telemetry.StartRunSpan(ctx, runID, size)
	return ctx, func() { span.End() }
}
