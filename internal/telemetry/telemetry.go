// Package telemetry provides OpenTelemetry instrumentation for the
// review-triage service. It exports Prometheus metrics and a tracer.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "review-triage"

// Metrics holds all triage Prometheus metrics.
type Metrics struct {
	// Pipeline metrics
	ReviewsProcessed *prometheus.CounterVec // by outcome
	ReviewsSkipped   prometheus.Counter
	SpamVerdicts     *prometheus.CounterVec // by verdict
	CategoryTotal    *prometheus.CounterVec // by category
	TriageDuration   prometheus.Histogram
	BatchSize        prometheus.Histogram

	// Collaborator metrics
	LabelerFailures    prometheus.Counter
	TicketsCreated     *prometheus.CounterVec // by sink
	TicketFailures     *prometheus.CounterVec // by sink
	ProgressPostErrors prometheus.Counter
	SourceFetches      prometheus.Counter
	SourceFetchErrors  prometheus.Counter
}

// Provider wraps the tracer and metrics used across the service.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initPipelineMetrics(m)
	initCollaboratorMetrics(m)
	return m
}

func initPipelineMetrics(m *Metrics) {
	m.ReviewsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_reviews_processed_total",
		Help: "Total reviews triaged, by outcome (classified, spam)",
	}, []string{"outcome"})

	m.ReviewsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triage_reviews_skipped_total",
		Help: "Total reviews skipped because validation failed",
	})

	m.SpamVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_spam_verdicts_total",
		Help: "Total spam verdicts, by verdict kind",
	}, []string{"verdict"})

	m.CategoryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_category_total",
		Help: "Total classified reviews, by category",
	}, []string{"category"})

	m.TriageDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "triage_review_duration_seconds",
		Help:    "Time to triage a single review",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	})

	m.BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "triage_batch_size",
		Help:    "Number of reviews per triage run",
		Buckets: []float64{1, 5, 10, 25, 50, 100},
	})
}

func initCollaboratorMetrics(m *Metrics) {
	m.LabelerFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triage_labeler_failures_total",
		Help: "Total external labeler calls that failed or timed out",
	})

	m.TicketsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_tickets_created_total",
		Help: "Total tickets created, by sink",
	}, []string{"sink"})

	m.TicketFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_ticket_failures_total",
		Help: "Total ticket creation failures, by sink",
	}, []string{"sink"})

	m.ProgressPostErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triage_progress_post_errors_total",
		Help: "Total progress notifications that failed to post",
	})

	m.SourceFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triage_source_fetches_total",
		Help: "Total review source fetches",
	})

	m.SourceFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triage_source_fetch_errors_total",
		Help: "Total review source fetches that failed",
	})
}

// RecordResult records the metrics for one triaged review.
func (p *Provider) RecordResult(outcome, verdict, category string, duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.ReviewsProcessed.WithLabelValues(outcome).Inc()
	p.Metrics.TriageDuration.Observe(duration.Seconds())
	if verdict != "" && verdict != "not_spam" {
		p.Metrics.SpamVerdicts.WithLabelValues(verdict).Inc()
	}
	if category != "" {
		p.Metrics.CategoryTotal.WithLabelValues(category).Inc()
	}
}

// StartRunSpan opens a span covering one triage run.
func (p *Provider) StartRunSpan(ctx context.Context, runID string, size int) (context.Context, trace.Span) {
	if p == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	p.Metrics.BatchSize.Observe(float64(size))
	return p.Tracer.Start(ctx, "triage.run",
		trace.WithAttributes(
			attribute.String("triage.run_id", runID),
			attribute.Int("triage.batch_size", size),
		))
}
