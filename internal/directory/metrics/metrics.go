package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for directory fetches.
type Metrics struct {
	// Upstream fetch latency by outcome
	FetchLatency *prometheus.HistogramVec

	// Fetch outcomes by result and error category
	FetchOutcome *prometheus.CounterVec

	// Raw records skipped during normalization by reason
	RecordDefects *prometheus.CounterVec

	// Size of the last served snapshot
	SnapshotSize prometheus.Gauge
}

// New creates and registers the directory metrics with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		FetchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notify_directory_fetch_duration_seconds",
			Help:    "Duration of upstream supervisor directory fetches",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"result"}),

		FetchOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_directory_fetch_total",
			Help: "Total upstream directory fetches by result and error category",
		}, []string{"result", "category"}),

		RecordDefects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_directory_record_defects_total",
			Help: "Total raw supervisor records skipped during normalization",
		}, []string{"reason"}),

		SnapshotSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "notify_directory_snapshot_size",
			Help: "Number of supervisors in the most recently served snapshot",
		}),
	}
}

// ObserveFetch records one upstream fetch. category is empty on success.
func (m *Metrics) ObserveFetch(category string, d time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if category != "" {
		result = "failure"
	}
	m.FetchLatency.WithLabelValues(result).Observe(d.Seconds())
	m.FetchOutcome.WithLabelValues(result, category).Inc()
}

// IncrementDefect records a skipped raw record.
func (m *Metrics) IncrementDefect(reason string) {
	if m != nil {
		m.RecordDefects.WithLabelValues(reason).Inc()
	}
}

// SetSnapshotSize records the size of a served snapshot.
func (m *Metrics) SetSnapshotSize(n int) {
	if m != nil {
		m.SnapshotSize.Set(float64(n))
	}
}
