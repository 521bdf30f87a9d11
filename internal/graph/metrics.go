package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the evaluation engine. All methods
// are nil-safe so metrics stay optional.
type Metrics struct {
	// Full fixed-point evaluation latency per material
	EvaluateLatency prometheus.Histogram

	// Quantities derived, by model
	DerivedQuantities *prometheus.CounterVec

	// Per-combination model failures, by model
	ComputationFailures *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance with all engine metrics registered.
func NewMetrics() *Metrics {
	return &Metrics{
		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "propgraph_evaluate_duration_seconds",
			Help:    "Duration of full fixed-point material evaluation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		DerivedQuantities: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "propgraph_derived_quantities_total",
			Help: "Total quantities derived during evaluation, by model",
		}, []string{"model"}),

		ComputationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "propgraph_computation_failures_total",
			Help: "Total per-combination model computation failures, by model",
		}, []string{"model"}),
	}
}

// ObserveEvaluateLatency records the duration of one evaluation pass.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementDerived records a successfully derived quantity.
func (m *Metrics) IncrementDerived(model string) {
	if m != nil {
		m.DerivedQuantities.WithLabelValues(model).Inc()
	}
}

// IncrementFailure records a per-combination model failure.
func (m *Metrics) IncrementFailure(model string) {
	if m != nil {
		m.ComputationFailures.WithLabelValues(model).Inc()
	}
}
