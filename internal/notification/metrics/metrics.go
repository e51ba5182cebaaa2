package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeAccepted   = "accepted"
	OutcomeInvalid    = "invalid"
	OutcomeUnresolved = "unresolved"
	OutcomeFailed     = "failed"
)

// Metrics provides observability for notification submissions.
type Metrics struct {
	Submissions     *prometheus.CounterVec
	DeliveryLatency prometheus.Histogram
}

// New creates and registers the submission metrics with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_submissions_total",
			Help: "Total notification request submissions by outcome",
		}, []string{"outcome"}),

		DeliveryLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "notify_delivery_duration_seconds",
			Help:    "Duration of handing accepted requests to the delivery sink",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementOutcome records a submission outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.Submissions.WithLabelValues(outcome).Inc()
	}
}

// ObserveDelivery records the sink hand-off duration.
func (m *Metrics) ObserveDelivery(d time.Duration) {
	if m != nil {
		m.DeliveryLatency.Observe(d.Seconds())
	}
}
