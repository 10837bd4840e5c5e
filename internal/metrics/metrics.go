// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taiga"

var (
	// RunsStarted counts optimization runs accepted by the service.
	RunsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_started_total",
		Help:      "Number of optimization runs started.",
	}, []string{"algorithm"})

	// RunsCompleted counts finished runs by terminal status (completed,
	// failed, cancelled).
	RunsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_completed_total",
		Help:      "Number of optimization runs finished, by terminal status.",
	}, []string{"algorithm", "status"})

	// Evaluations counts objective function evaluations performed.
	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "objective_evaluations_total",
		Help:      "Number of objective function evaluations performed.",
	}, []string{"algorithm"})

	// RunDuration observes wall-clock run durations in seconds.
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of optimization runs.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"algorithm"})
)
