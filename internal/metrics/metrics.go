// Package metrics exposes Prometheus instrumentation for composition
// operations.
//
// A nil *Recorder is valid and records nothing, so callers never need to
// check whether metrics are enabled.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation results.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Recorder holds the collectors for one registry.
type Recorder struct {
	operations   *prometheus.CounterVec
	cycleChecks  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	visitedNodes prometheus.Histogram
}

// New creates the collectors and registers them with reg.
// Passing prometheus.NewRegistry() keeps tests isolated.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bomgraph_operations_total",
				Help: "Number of composition operations by operation and result.",
			},
			[]string{"operation", "result"},
		),
		cycleChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bomgraph_cycle_checks_total",
				Help: "Number of cycle checks by outcome (acyclic, cycle, error).",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bomgraph_operation_duration_seconds",
				Help:    "Time taken by composition operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		visitedNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bomgraph_cycle_check_visited_nodes",
				Help:    "Distinct products visited by a single cycle check.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}
	reg.MustRegister(r.operations, r.cycleChecks, r.duration, r.visitedNodes)
	return r
}

// Observe records one finished operation.
func (r *Recorder) Observe(operation, result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, result).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// CycleCheck records one cycle check. err takes precedence over cycle.
func (r *Recorder) CycleCheck(cycle bool, visited int, err error) {
	if r == nil {
		return
	}
	switch {
	case err != nil:
		r.cycleChecks.WithLabelValues("error").Inc()
		return
	case cycle:
		r.cycleChecks.WithLabelValues("cycle").Inc()
	default:
		r.cycleChecks.WithLabelValues("acyclic").Inc()
	}
	r.visitedNodes.Observe(float64(visited))
}
