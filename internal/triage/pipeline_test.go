package triage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jonesrussell/review-triage/internal/domain"
	"github.com/jonesrussell/review-triage/internal/logger"
	"github.com/jonesrussell/review-triage/internal/triage"
)

type stubLabeler struct {
	label *domain.ExternalLabel
	err   error
	calls int
}

func (s *stubLabeler) Label(_ context.Context, _, _ string) (*domain.ExternalLabel, error) {
	s.calls++
	return s.label, s.err
}

func allowedCategories() map[string]struct{} {
	allowed := make(map[string]struct{}, len(domain.Categories()))
	for _, c := range domain.Categories() {
		allowed[c] = struct{}{}
	}
	return allowed
}

func newTestPipeline(labeler triage.Labeler) *triage.Pipeline {
	log := logger.NewNop()
	return triage.NewPipeline(triage.NewCategoryClassifier(log), labeler, nil, log)
}

func TestPipeline_Run(t *testing.T) {
	pipeline := newTestPipeline(nil)

	reviews := make([]domain.Review, 0, 10)
	// Seven distinct reviews from alice: six accepted, the seventh over the
	// daily limit.
	for i := 1; i <= 7; i++ {
		reviews = append(reviews, domain.Review{
			ID:       fmt.Sprintf("a%d", i),
			Text:     fmt.Sprintf("I love this application, version %d", i),
			Score:    5,
			Reviewer: "alice",
		})
	}
	// Bob repeats himself verbatim.
	reviews = append(reviews,
		domain.Review{ID: "b1", Text: "Great app!", Score: 5, Reviewer: "bob"},
		domain.Review{ID: "b2", Text: "Great app!", Score: 5, Reviewer: "bob"},
	)
	// A bug report that the cascade should pick up.
	reviews = append(reviews, domain.Review{
		ID:       "c1",
		Text:     "The app keeps showing a loading error",
		Score:    2,
		Reviewer: "carol",
	})

	out := pipeline.Run(context.Background(), reviews, allowedCategories())

	if len(out.Results) != 10 {
		t.Fatalf("len(Results) = %d, want 10", len(out.Results))
	}
	if len(out.Skipped) != 0 {
		t.Fatalf("len(Skipped) = %d, want 0", len(out.Skipped))
	}

	byID := make(map[string]domain.TriageResult, len(out.Results))
	for _, r := range out.Results {
		byID[r.Review.ID] = r
	}

	for i := 1; i <= 6; i++ {
		r := byID[fmt.Sprintf("a%d", i)]
		if r.Outcome != domain.OutcomeClassified {
			t.Errorf("a%d: outcome = %q, want classified", i, r.Outcome)
		}
	}
	if r := byID["a7"]; r.Outcome != domain.OutcomeSpam || r.Verdict != domain.VerdictDailyLimit {
		t.Errorf("a7: got (%q, %q), want (spam, daily_limit)", r.Outcome, r.Verdict)
	}

	if r := byID["b1"]; r.Outcome != domain.OutcomeClassified {
		t.Errorf("b1: outcome = %q, want classified", r.Outcome)
	}
	if r := byID["b2"]; r.Verdict != domain.VerdictDuplicateContent {
		t.Errorf("b2: verdict = %q, want duplicate_content", r.Verdict)
	}

	bug := byID["c1"]
	if bug.Category != domain.CategoryBug {
		t.Errorf("c1: category = %q, want bug", bug.Category)
	}
	if bug.CategoryCount != 1 || !bug.CategoryTracked {
		t.Errorf("c1: count = (%d, %v), want (1, true)", bug.CategoryCount, bug.CategoryTracked)
	}

	if got := out.Frequencies[domain.CategoryBug]; got != 1 {
		t.Errorf("final bug frequency = %d, want 1", got)
	}
}

func TestPipeline_RunSkipsInvalidReviews(t *testing.T) {
	pipeline := newTestPipeline(nil)

	reviews := []domain.Review{
		{ID: "r1", Text: "works as expected", Score: 4, Reviewer: "alice"},
		{ID: "", Text: "no identifier", Score: 3, Reviewer: "bob"},
		{ID: "r3", Text: "", Score: 3, Reviewer: "carol"},
		{ID: "r4", Text: "a dark mode feature would help", Score: 4, Reviewer: "dave"},
	}

	out := pipeline.Run(context.Background(), reviews, allowedCategories())

	if len(out.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(out.Results))
	}
	if len(out.Skipped) != 2 {
		t.Fatalf("len(Skipped) = %d, want 2", len(out.Skipped))
	}
	if !errors.Is(out.Skipped[0].Err, domain.ErrMissingID) {
		t.Errorf("skipped[0] err = %v, want ErrMissingID", out.Skipped[0].Err)
	}
	if !errors.Is(out.Skipped[1].Err, domain.ErrMissingText) {
		t.Errorf("skipped[1] err = %v, want ErrMissingText", out.Skipped[1].Err)
	}
	if out.Results[1].Category != domain.CategoryFeatureRequest {
		t.Errorf("r4 category = %q, want feature_request", out.Results[1].Category)
	}
}

func TestPipeline_ExternalLabelOverridesCascade(t *testing.T) {
	labeler := &stubLabeler{
		label: &domain.ExternalLabel{Category: domain.CategoryBug, Reason: "crash reported"},
	}
	pipeline := newTestPipeline(labeler)

	reviews := []domain.Review{
		{ID: "r1", Text: "amazing deals this weekend", Score: 5, Reviewer: "alice"},
	}

	out := pipeline.Run(context.Background(), reviews, allowedCategories())

	if labeler.calls != 1 {
		t.Fatalf("labeler called %d times, want 1", labeler.calls)
	}
	r := out.Results[0]
	if r.Category != domain.CategoryBug {
		t.Errorf("category = %q, want bug (external override)", r.Category)
	}
	if r.ExternalReason != "crash reported" {
		t.Errorf("external reason = %q, want %q", r.ExternalReason, "crash reported")
	}
	if got := out.Frequencies[domain.CategoryBug]; got != 1 {
		t.Errorf("bug frequency = %d, want 1", got)
	}
}

func TestPipeline_LabelerFailureFallsBackToCascade(t *testing.T) {
	labeler := &stubLabeler{err: errors.New("labeler unavailable")}
	pipeline := newTestPipeline(labeler)

	reviews := []domain.Review{
		{ID: "r1", Text: "amazing deals this weekend", Score: 5, Reviewer: "alice"},
	}

	out := pipeline.Run(context.Background(), reviews, allowedCategories())

	r := out.Results[0]
	if r.Outcome != domain.OutcomeClassified {
		t.Fatalf("outcome = %q, want classified", r.Outcome)
	}
	if r.Category != domain.CategoryDiscountsOffers {
		t.Errorf("category = %q, want discounts_offers (cascade fallback)", r.Category)
	}
	if r.ExternalReason != "" {
		t.Errorf("external reason = %q, want empty after labeler failure", r.ExternalReason)
	}
}

func TestPipeline_LabelerSkippedForSpam(t *testing.T) {
	labeler := &stubLabeler{
		label: &domain.ExternalLabel{Category: domain.CategoryBug},
	}
	pipeline := newTestPipeline(labeler)

	reviews := []domain.Review{
		{ID: "r1", Text: "Great app!", Score: 5, Reviewer: "bob"},
		{ID: "r2", Text: "Great app!", Score: 5, Reviewer: "bob"},
	}

	out := pipeline.Run(context.Background(), reviews, allowedCategories())

	if out.Results[1].Verdict != domain.VerdictDuplicateContent {
		t.Fatalf("r2 verdict = %q, want duplicate_content", out.Results[1].Verdict)
	}
	if labeler.calls != 1 {
		t.Errorf("labeler called %d times, want 1 (spam reviews are never labeled)", labeler.calls)
	}
}

func TestPipeline_RunsAreIsolated(t *testing.T) {
	pipeline := newTestPipeline(nil)

	reviews := []domain.Review{
		{ID: "r1", Text: "Great app!", Score: 5, Reviewer: "bob"},
	}

	first := pipeline.Run(context.Background(), reviews, allowedCategories())
	second := pipeline.Run(context.Background(), reviews, allowedCategories())

	// The same review in a fresh run is not a duplicate; reviewer state and
	// frequency counts never leak across runs.
	if first.Results[0].Verdict != domain.VerdictNotSpam {
		t.Errorf("first run verdict = %q, want not_spam", first.Results[0].Verdict)
	}
	if second.Results[0].Verdict != domain.VerdictNotSpam {
		t.Errorf("second run verdict = %q, want not_spam", second.Results[0].Verdict)
	}
	if second.Results[0].CategoryCount != first.Results[0].CategoryCount {
		t.Errorf("category count leaked across runs: %d vs %d",
			first.Results[0].CategoryCount, second.Results[0].CategoryCount)
	}
}
