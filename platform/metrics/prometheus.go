// Package metrics provides Prometheus metrics for feedback ingestion and analytics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes used as the outcome label.
const (
	OutcomeSuccess          = "success"
	OutcomeDuplicate        = "duplicate"
	OutcomeInvalidReference = "invalid_reference"
	OutcomeValidation       = "validation"
	OutcomeTransient        = "transient"
	OutcomeInternal         = "internal"
)

// Manager owns the application's Prometheus collectors. A nil *Manager is
// valid and records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	submissions          *prometheus.CounterVec
	submissionDuration   prometheus.Histogram
	placeholdersCreated  *prometheus.CounterVec
	analyticsDuration    *prometheus.HistogramVec
	brokerStatsReconcile prometheus.Counter
}

// NewManager creates a metrics manager registered on its own registry, with
// Go runtime and process collectors included.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lead_feedback",
		histogramBuckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.submissions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "feedback_submissions_total",
		Help:      "Feedback submissions by outcome.",
	}, []string{"outcome"})

	m.submissionDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "feedback_submission_duration_seconds",
		Help:      "Latency of the feedback submission transaction.",
		Buckets:   m.histogramBuckets,
	})

	m.placeholdersCreated = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "feedback_placeholders_created_total",
		Help:      "Placeholder leads and brokers created for unknown external ids.",
	}, []string{"kind"})

	m.analyticsDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "analytics_query_duration_seconds",
		Help:      "Latency of analytics operations.",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.brokerStatsReconcile = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "broker_stats_reconciled_total",
		Help:      "Broker aggregates recomputed by the reconciliation job.",
	})
}

// RecordSubmission records one submission attempt.
func (m *Manager) RecordSubmission(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
	m.submissionDuration.Observe(elapsed.Seconds())
}

// RecordPlaceholder records a placeholder row of kind "lead" or "broker".
func (m *Manager) RecordPlaceholder(kind string) {
	if m == nil {
		return
	}
	m.placeholdersCreated.WithLabelValues(kind).Inc()
}

// RecordAnalytics records the duration of one analytics operation.
func (m *Manager) RecordAnalytics(operation string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.analyticsDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordBrokerStatsReconciled adds n recomputed broker aggregates.
func (m *Manager) RecordBrokerStatsReconciled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.brokerStatsReconcile.Add(float64(n))
}

// Registry returns the registry backing this manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
