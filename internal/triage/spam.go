package triage

import (
	"math"

	"github.com/jonesrussell/review-triage/internal/domain"
	"github.com/jonesrussell/review-triage/internal/logger"
)

// Spam detection constants.
const (
	// dailyReviewLimit is the accepted-review count above which further
	// reviews from the same reviewer are flagged. Strictly greater-than:
	// six accepted reviews pass, the seventh is flagged.
	dailyReviewLimit = 5

	// ratingDeviationThreshold flags scores that sit further than this from
	// the provisional batch mean. Strict inequality: a deviation of exactly
	// 1.5 passes.
	ratingDeviationThreshold = 1.5
)

// reviewerState tracks one reviewer's accepted reviews within a single run.
type reviewerState struct {
	dailyCount int
	seenTexts  map[string]struct{}
}

// SpamDetector evaluates reviews against per-reviewer and batch-level spam
// signals. All state is scoped to one run: construct a fresh detector per
// batch and discard it afterwards. Not safe for concurrent use; the pipeline
// is strictly sequential within a run.
type SpamDetector struct {
	reviewers map[string]*reviewerState

	// Rating accumulator over accepted reviews only.
	totalRating   float64
	acceptedCount int

	logger logger.Logger
}

// NewSpamDetector creates a detector with empty per-run state.
func NewSpamDetector(log logger.Logger) *SpamDetector {
	return &SpamDetector{
		reviewers: make(map[string]*reviewerState),
		logger:    log,
	}
}

// Evaluate applies the spam rules in order and returns the first applicable
// verdict. On VerdictNotSpam the review is committed to the detector state
// (text remembered, daily count incremented, rating folded into the
// accumulator); on any spam verdict state is left untouched, so flagged
// reviews never influence later mean or duplicate comparisons.
func (d *SpamDetector) Evaluate(rev *domain.Review) domain.SpamVerdict {
	// Anonymous reviews cannot be checked for per-reviewer abuse. They are
	// never spam from this detector's point of view, but their ratings still
	// feed the accumulator.
	if rev.Reviewer == "" {
		d.accept(nil, rev)
		return domain.VerdictNotSpam
	}

	state := d.reviewers[rev.Reviewer]

	if state != nil && state.dailyCount > dailyReviewLimit {
		d.logf("reviewer over daily review limit", rev)
		return domain.VerdictDailyLimit
	}

	if state != nil {
		if _, seen := state.seenTexts[rev.Text]; seen {
			d.logf("duplicate review text from reviewer", rev)
			return domain.VerdictDuplicateContent
		}
	}

	// Provisional mean includes the current review's score alongside all
	// previously accepted ratings. The first accepted review of a run
	// therefore always has deviation 0.
	provisionalMean := (d.totalRating + rev.Score) / float64(d.acceptedCount+1)
	if math.Abs(rev.Score-provisionalMean) > ratingDeviationThreshold {
		d.logf("review score deviates from batch mean", rev)
		return domain.VerdictRatingDeviation
	}

	if state == nil {
		state = &reviewerState{seenTexts: make(map[string]struct{})}
		d.reviewers[rev.Reviewer] = state
	}
	d.accept(state, rev)
	return domain.VerdictNotSpam
}

// accept commits an accepted review. state is nil for anonymous reviews,
// which only contribute to the rating accumulator.
func (d *SpamDetector) accept(state *reviewerState, rev *domain.Review) {
	if state != nil {
		state.seenTexts[rev.Text] = struct{}{}
		state.dailyCount++
	}
	d.totalRating += rev.Score
	d.acceptedCount++
}

// AcceptedCount returns the number of reviews accepted so far this run.
func (d *SpamDetector) AcceptedCount() int {
	return d.acceptedCount
}

// DailyCount returns the accepted-review count for a reviewer this run.
func (d *SpamDetector) DailyCount(reviewer string) int {
	if state, ok := d.reviewers[reviewer]; ok {
		return state.dailyCount
	}
	return 0
}

func (d *SpamDetector) logf(msg string, rev *domain.Review) {
	if d.logger != nil {
		d.logger.Debug(msg,
			logger.String("review_id", rev.ID),
			logger.String("reviewer", rev.Reviewer),
			logger.Float64("score", rev.Score))
	}
}
