// Package domain holds the core types of the review triage pipeline.
package domain

import (
	"errors"
	"time"
)

// Review represents a single user-submitted product review. It is immutable
// for the duration of a triage run.
type Review struct {
	ID    string  `json:"id"`
	URL   string  `json:"url"`
	Title string  `json:"title,omitempty"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`

	// Reviewer is the reviewer identifier. When empty, per-reviewer spam
	// checks are skipped for this review.
	Reviewer string `json:"reviewer,omitempty"`

	FetchedAt time.Time `json:"fetched_at,omitempty"`
}

// Validation errors for malformed reviews.
var (
	ErrMissingID   = errors.New("review missing id")
	ErrMissingText = errors.New("review missing text")
)

// Validate reports whether the review carries the fields the pipeline
// requires. A failing review is skipped, not fatal.
func (r *Review) Validate() error {
	if r.ID == "" {
		return ErrMissingID
	}
	if r.Text == "" {
		return ErrMissingText
	}
	return nil
}

// SpamVerdict is the outcome of the spam detector for one review.
type SpamVerdict string

const (
	VerdictNotSpam          SpamVerdict = "not_spam"
	VerdictDailyLimit       SpamVerdict = "daily_limit"
	VerdictDuplicateContent SpamVerdict = "duplicate_content"
	VerdictRatingDeviation  SpamVerdict = "rating_deviation"
)

// Outcome is the terminal state of triaging one review.
type Outcome string

const (
	OutcomeSpam       Outcome = "spam"
	OutcomeClassified Outcome = "classified"
)

// Review categories. The cascade in the classifier assigns exactly one of
// these; CategoryUnknown is the sentinel for text no rule matched.
const (
	CategoryDiscountsOffers = "discounts_offers"
	CategoryAppInterface    = "app_interface"
	CategoryCustomerSupport = "customer_support"
	CategoryEaseOfReturn    = "ease_of_return"
	CategoryBug             = "bug"
	CategoryFeatureRequest  = "feature_request"
	CategoryQuestion        = "question"
	CategoryFeedback        = "feedback"
	CategoryUnknown         = "failed_to_infer_category"
)

// Categories returns the tracked category vocabulary, in cascade order.
// CategoryUnknown is deliberately not part of it.
func Categories() []string {
	return []string{
		CategoryDiscountsOffers,
		CategoryAppInterface,
		CategoryCustomerSupport,
		CategoryEaseOfReturn,
		CategoryBug,
		CategoryFeatureRequest,
		CategoryQuestion,
		CategoryFeedback,
	}
}

// ExternalLabel is a category suggestion from an external labeler, with an
// optional free-text rationale.
type ExternalLabel struct {
	Category string `json:"category"`
	Reason   string `json:"reason,omitempty"`
}

// TriageResult is the decision record emitted for each triaged review.
type TriageResult struct {
	Review  Review  `json:"review"`
	Outcome Outcome `json:"outcome"`

	// Verdict is set for both outcomes; VerdictNotSpam for classified reviews.
	Verdict SpamVerdict `json:"verdict"`

	// Classification fields, set when Outcome is OutcomeClassified.
	Category string `json:"category,omitempty"`
	// CategoryCount is the running per-batch count for Category after this
	// review, 0 when the category is untracked.
	CategoryCount   int    `json:"category_count,omitempty"`
	CategoryTracked bool   `json:"category_tracked,omitempty"`
	ExternalReason  string `json:"external_reason,omitempty"`

	TriagedAt time.Time `json:"triaged_at"`
}

// IsSpam reports whether the review was short-circuited by the spam detector.
func (t *TriageResult) IsSpam() bool {
	return t.Outcome == OutcomeSpam
}
