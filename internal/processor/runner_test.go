package processor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jonesrussell/review-triage/internal/database"
	"github.com/jonesrussell/review-triage/internal/domain"
	"github.com/jonesrussell/review-triage/internal/logger"
	"github.com/jonesrussell/review-triage/internal/processor"
	"github.com/jonesrussell/review-triage/internal/triage"
)

type fakeSource struct {
	reviews []domain.Review
	err     error
	gotN    int
}

func (f *fakeSource) Fetch(_ context.Context, n int) ([]domain.Review, error) {
	f.gotN = n
	return f.reviews, f.err
}

type fakeRegistry struct {
	err error
}

func (f *fakeRegistry) AllowedSet(context.Context) (map[string]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	return database.BuiltinAllowedSet(), nil
}

type recordingSink struct {
	tickets []*domain.Ticket
	failFor string // review ID whose ticket creation fails
}

func (s *recordingSink) Create(_ context.Context, ticket *domain.Ticket) error {
	if s.failFor != "" && ticket.ReviewID == s.failFor {
		return errors.New("sink down")
	}
	ticket.ID = int64(len(s.tickets) + 1)
	s.tickets = append(s.tickets, ticket)
	return nil
}

type recordingRunStore struct {
	summaries []*domain.RunSummary
}

func (s *recordingRunStore) Create(_ context.Context, summary *domain.RunSummary) error {
	s.summaries = append(s.summaries, summary)
	return nil
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Post(_ context.Context, message string) error {
	n.messages = append(n.messages, message)
	return nil
}

func newRunner(src *fakeSource, sink *recordingSink, runs *recordingRunStore, notifier *recordingNotifier) *processor.Runner {
	log := logger.NewNop()
	return processor.NewRunner(processor.Config{
		Source:   src,
		Pipeline: triage.NewPipeline(triage.NewCategoryClassifier(log), nil, nil, log),
		Registry: &fakeRegistry{},
		Sink:     sink,
		Runs:     runs,
		Notifier: notifier,
		Logger:   log,
	})
}

func TestRunner_RunFromSource(t *testing.T) {
	src := &fakeSource{reviews: []domain.Review{
		{ID: "r1", URL: "https://play.example/r1", Text: "The app keeps showing a loading error", Score: 2, Reviewer: "carol"},
		{ID: "r2", URL: "https://play.example/r2", Text: "Great app!", Score: 5, Reviewer: "bob"},
		{ID: "r3", URL: "https://play.example/r3", Text: "Great app!", Score: 5, Reviewer: "bob"},
	}}
	sink := &recordingSink{}
	runs := &recordingRunStore{}
	notifier := &recordingNotifier{}

	runner := newRunner(src, sink, runs, notifier)
	summary, results, err := runner.RunFromSource(context.Background(), 3)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.gotN != 3 {
		t.Errorf("fetch n = %d, want 3", src.gotN)
	}
	if summary.Fetched != 3 || summary.Classified != 2 || summary.Spam != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}

	// One ticket per triage result, spam included.
	if len(sink.tickets) != 3 {
		t.Fatalf("len(tickets) = %d, want 3", len(sink.tickets))
	}
	spamTickets := 0
	for _, ticket := range sink.tickets {
		if ticket.RunID != summary.RunID {
			t.Errorf("ticket run_id = %q, want %q", ticket.RunID, summary.RunID)
		}
		if ticket.Spam {
			spamTickets++
		}
	}
	if spamTickets != 1 {
		t.Errorf("spam tickets = %d, want 1", spamTickets)
	}

	if len(runs.summaries) != 1 {
		t.Fatalf("run summaries recorded = %d, want 1", len(runs.summaries))
	}

	if len(notifier.messages) == 0 || notifier.messages[0] != "Fetching reviews..." {
		t.Fatalf("first progress message = %v", notifier.messages)
	}
	if notifier.messages[1] != "Fetched 3 reviews, creating tickets now." {
		t.Errorf("second progress message = %q", notifier.messages[1])
	}
}

func TestRunner_SinkFailureSkipsOnlyThatReview(t *testing.T) {
	src := &fakeSource{reviews: []domain.Review{
		{ID: "r1", Text: "amazing deals today", Score: 5, Reviewer: "alice"},
		{ID: "r2", Text: "worst customer service", Score: 1, Reviewer: "bob"},
	}}
	sink := &recordingSink{failFor: "r1"}
	runs := &recordingRunStore{}
	notifier := &recordingNotifier{}

	runner := newRunner(src, sink, runs, notifier)
	summary, results, err := runner.RunFromSource(context.Background(), 2)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2 (sink failure must not drop results)", len(results))
	}
	if len(sink.tickets) != 1 || sink.tickets[0].ReviewID != "r2" {
		t.Errorf("unexpected tickets %+v", sink.tickets)
	}
	if summary.Classified != 2 {
		t.Errorf("classified = %d, want 2", summary.Classified)
	}
}

func TestRunner_SourceFailureFailsRun(t *testing.T) {
	src := &fakeSource{err: errors.New("scraper down")}
	runner := newRunner(src, &recordingSink{}, &recordingRunStore{}, &recordingNotifier{})

	if _, _, err := runner.RunFromSource(context.Background(), 10); err == nil {
		t.Fatal("expected error when the source is unavailable")
	}
}

func TestRunner_ProcessIsolatesRuns(t *testing.T) {
	reviews := []domain.Review{
		{ID: "r1", Text: "Great app!", Score: 5, Reviewer: "bob"},
	}
	runner := newRunner(&fakeSource{}, &recordingSink{}, &recordingRunStore{}, &recordingNotifier{})

	first, firstResults, err := runner.Process(context.Background(), 1, reviews)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, secondResults, err := runner.Process(context.Background(), 1, reviews)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.RunID == second.RunID {
		t.Error("run IDs must be unique")
	}
	for i, results := range [][]domain.TriageResult{firstResults, secondResults} {
		if results[0].Verdict != domain.VerdictNotSpam {
			t.Errorf("run %d: verdict = %q, want not_spam (no cross-run duplicate state)", i+1, results[0].Verdict)
		}
	}
}

func TestRunner_ProgressMessages(t *testing.T) {
	src := &fakeSource{reviews: []domain.Review{
		{ID: "r1", URL: "https://play.example/r1", Text: "mmmm", Score: 3, Reviewer: "alice"},
	}}
	sink := &recordingSink{}
	notifier := &recordingNotifier{}

	runner := newRunner(src, sink, &recordingRunStore{}, notifier)
	if _, _, err := runner.RunFromSource(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCreating := "Creating ticket for review: https://play.example/r1"
	wantCreated := fmt.Sprintf("Created ticket: <%d> and it failed to be categorized", sink.tickets[0].ID)

	var sawCreating, sawCreated bool
	for _, msg := range notifier.messages {
		switch msg {
		case wantCreating:
			sawCreating = true
		case wantCreated:
			sawCreated = true
		}
	}
	if !sawCreating {
		t.Errorf("missing %q in %v", wantCreating, notifier.messages)
	}
	if !sawCreated {
		t.Errorf("missing %q in %v", wantCreated, notifier.messages)
	}
}
