package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks degraded listings, workflow outcomes and teardown deletions.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	DegradedFetches  *prometheus.CounterVec
	WorkflowRuns     *prometheus.CounterVec
	WorkflowDuration *prometheus.HistogramVec
	TeardownItems    *prometheus.CounterVec
	TeardownDuration prometheus.Histogram
	SeedRecords      *prometheus.CounterVec
}

// New registers every metric on reg. Pass prometheus.DefaultRegisterer in production and a
// fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DegradedFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sigdef_degraded_fetches_total",
			Help: "Collection fetches that failed and were replaced by an empty list",
		}, []string{"collection"}),
		WorkflowRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sigdef_workflow_runs_total",
			Help: "Relationship workflow runs by workflow and outcome",
		}, []string{"workflow", "outcome"}),
		WorkflowDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sigdef_workflow_duration_seconds",
			Help:    "Duration of relationship workflow runs",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"workflow"}),
		TeardownItems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sigdef_teardown_items_total",
			Help: "Records processed by bulk teardown by collection and outcome",
		}, []string{"collection", "outcome"}),
		TeardownDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sigdef_teardown_duration_seconds",
			Help:    "Duration of full teardown runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		SeedRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sigdef_seed_records_total",
			Help: "Seeded records by collection and outcome",
		}, []string{"collection", "outcome"}),
	}
}

func (m *Metrics) IncDegradedFetch(collection string) {
	if m == nil {
		return
	}
	m.DegradedFetches.WithLabelValues(collection).Inc()
}

// ObserveWorkflow records a finished workflow run. Call with time.Now() taken at the start.
func (m *Metrics) ObserveWorkflow(workflow, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.WorkflowRuns.WithLabelValues(workflow, outcome).Inc()
	m.WorkflowDuration.WithLabelValues(workflow).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncTeardownItem(collection string, ok bool) {
	if m == nil {
		return
	}
	m.TeardownItems.WithLabelValues(collection, outcomeLabel(ok)).Inc()
}

func (m *Metrics) ObserveTeardown(start time.Time) {
	if m == nil {
		return
	}
	m.TeardownDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncSeedRecord(collection, outcome string) {
	if m == nil {
		return
	}
	m.SeedRecords.WithLabelValues(collection, outcome).Inc()
}

func outcomeLabel(ok bool) string {
	if ok {
		return "succeeded"
	}
	return "failed"
}
