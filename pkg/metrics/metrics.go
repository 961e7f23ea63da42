// metrics.go — Prometheus metrics for the layout engine.
// All metrics are registered against the default Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EvaluationsTotal counts evaluate() calls, labeled by outcome.
	EvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "layout_evaluations_total",
		Help: "Total number of layout evaluations, by outcome (ok|error).",
	}, []string{"outcome"})

	// EvaluationDuration tracks evaluate() wall-clock latency.
	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "layout_evaluation_duration_seconds",
		Help:    "Duration of layout evaluations in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	// PackerRetriesTotal counts reduction-and-retry rounds consumed by the packer.
	PackerRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "layout_packer_retries_total",
		Help: "Total number of packer reduction-and-retry rounds, by context.",
	}, []string{"context_id"})

	// NotPlacedTotal counts components that failed to place, by reason.
	NotPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "layout_not_placed_total",
		Help: "Total number of components that failed to place, by reason.",
	}, []string{"reason"})

	// ActiveContexts tracks the number of contexts currently held by the manager.
	ActiveContexts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "layout_active_contexts",
		Help: "Number of contexts currently tracked by the layout manager.",
	})
)

// RecordEvaluation updates the evaluation counters and histogram for one call.
func RecordEvaluation(outcome string, seconds float64) {
	EvaluationsTotal.WithLabelValues(outcome).Inc()
	EvaluationDuration.Observe(seconds)
}

// RecordPackerRetry increments the retry counter for a context.
func RecordPackerRetry(contextID string) {
	PackerRetriesTotal.WithLabelValues(contextID).Inc()
}

// RecordNotPlaced increments the not-placed counter for a reason, once per component.
func RecordNotPlaced(reason string) {
	NotPlacedTotal.WithLabelValues(reason).Inc()
}
