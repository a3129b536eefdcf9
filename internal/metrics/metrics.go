// Package metrics defines the Prometheus collectors exposed by the API
// server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScheduleComputations counts schedule computations by endpoint and outcome.
	ScheduleComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mortgage_schedule_computations_total",
			Help: "Total number of amortization schedule computations",
		},
		[]string{"endpoint", "status"},
	)

	// ComputationErrors counts failed computations by error type.
	ComputationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mortgage_computation_errors_total",
			Help: "Number of schedule computation errors",
		},
		[]string{"endpoint", "error_type"},
	)

	// ComputeDuration observes how long schedule computations take.
	ComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mortgage_schedule_compute_duration_seconds",
			Help:    "Duration of amortization schedule computations",
			Buckets: prometheus.DefBuckets,
		},
	)
)
