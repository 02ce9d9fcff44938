package triage

import (
	"context"
	"time"

	"github.com/jonesrussell/review-triage/internal/domain"
	"github.com/jonesrussell/review-triage/internal/logger"
	"github.com/jonesrussell/review-triage/internal/telemetry"
)

// Labeler is the optional external labeling capability. Implementations may
// fail or time out; the pipeline treats any error as "no label".
type Labeler interface {
	Label(ctx context.Context, title, text string) (*domain.ExternalLabel, error)
}

// Pipeline wires the spam detector, category classifier and frequency
// tracker into the per-review triage state machine. The Pipeline itself is
// stateless and safe to share; all per-run state lives inside Run, so
// concurrent batches never share reviewer counters, the rating accumulator
// or the frequency table.
type Pipeline struct {
	classifier *CategoryClassifier
	labeler    Labeler // nil disables external labeling
	telemetry  *telemetry.Provider
	logger     logger.Logger
}

// RunResult is the outcome of triaging one batch.
type RunResult struct {
	Results []domain.TriageResult
	// Skipped holds reviews that failed validation, paired with the error.
	Skipped []SkippedReview
	// Frequencies is the final per-category frequency table for the run.
	Frequencies map[string]int
}

// SkippedReview pairs an invalid review with its validation error.
type SkippedReview struct {
	Review domain.Review
	Err    error
}

// NewPipeline creates a triage pipeline. labeler and tp may be nil.
func NewPipeline(classifier *CategoryClassifier, labeler Labeler, tp *telemetry.Provider, log logger.Logger) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		labeler:    labeler,
		telemetry:  tp,
		logger:     log,
	}
}

// Run triages a batch of reviews in caller order. Each review is visited
// exactly once: the spam detector first, and on a spam verdict the review
// short-circuits; otherwise it is classified and its category recorded.
// allowed is the category registry valid for external-label overrides.
//
// Reviews that fail validation are skipped and reported in RunResult.Skipped;
// they never reach the detector and do not abort the batch.
func (p *Pipeline) Run(ctx context.Context, reviews []domain.Review, allowed map[string]struct{}) *RunResult {
	detector := NewSpamDetector(p.logger)
	freq := NewFrequencyTracker()

	out := &RunResult{
		Results: make([]domain.TriageResult, 0, len(reviews)),
	}

	for i := range reviews {
		rev := reviews[i]

		if err := rev.Validate(); err != nil {
			p.logger.Warn("skipping malformed review",
				logger.String("review_id", rev.ID),
				logger.Error(err))
			if p.telemetry != nil {
				p.telemetry.Metrics.ReviewsSkipped.Inc()
			}
			out.Skipped = append(out.Skipped, SkippedReview{Review: rev, Err: err})
			continue
		}

		out.Results = append(out.Results, p.triageOne(ctx, &rev, detector, freq, allowed))
	}

	out.Frequencies = freq.Counts()
	return out
}

func (p *Pipeline) triageOne(
	ctx context.Context,
	rev *domain.Review,
	detector *SpamDetector,
	freq *FrequencyTracker,
	allowed map[string]struct{},
) domain.TriageResult {
	start := time.Now()

	result := domain.TriageResult{
		Review:    *rev,
		TriagedAt: start,
	}

	verdict := detector.Evaluate(rev)
	result.Verdict = verdict

	if verdict != domain.VerdictNotSpam {
		result.Outcome = domain.OutcomeSpam
		p.logger.Info("review flagged as spam",
			logger.String("review_id", rev.ID),
			logger.String("reviewer", rev.Reviewer),
			logger.String("verdict", string(verdict)))
		p.recordResult(&result, start)
		return result
	}

	ext := p.label(ctx, rev)
	category, reason := p.classifier.Classify(rev.Text, ext, allowed)
	result.Outcome = domain.OutcomeClassified
	result.Category = category
	result.ExternalReason = reason

	count, tracked := freq.Record(category)
	result.CategoryCount = count
	result.CategoryTracked = tracked
	if !tracked {
		p.logger.Debug("category not tracked in frequency table",
			logger.String("review_id", rev.ID),
			logger.String("category", category))
	}

	p.logger.Info("review classified",
		logger.String("review_id", rev.ID),
		logger.String("category", category),
		logger.Int("category_count", count))
	p.recordResult(&result, start)
	return result
}

// label asks the external labeler, best effort. Failures fall back to the
// cascade and are never fatal.
func (p *Pipeline) label(ctx context.Context, rev *domain.Review) *domain.ExternalLabel {
	if p.labeler == nil {
		return nil
	}

	ext, err := p.labeler.Label(ctx, rev.Title, rev.Text)
	if err != nil {
		p.logger.Warn("external labeler failed, falling back to keyword cascade",
			logger.String("review_id", rev.ID),
			logger.Error(err))
		if p.telemetry != nil {
			p.telemetry.Metrics.LabelerFailures.Inc()
		}
		return nil
	}
	return ext
}

func (p *Pipeline) recordResult(result *domain.TriageResult, start time.Time) {
	if p.telemetry == nil {
		return
	}
	p.telemetry.RecordResult(
		string(result.Outcome),
		string(result.Verdict),
		result.Category,
		time.Since(start),
	)
}
