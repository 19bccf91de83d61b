// Package metrics exposes simulation and comparison counters in the
// Prometheus text format.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nvandessel/selfsim/internal/analysis"
	"github.com/nvandessel/selfsim/internal/interpretation"
)

const namespace = "selfsim"

// Recorder aggregates operation outcomes on its own registry so several
// servers in one process (tests included) do not collide.
// A nil Recorder is safe to use; all methods are no-ops.
type Recorder struct {
	registry    *prometheus.Registry
	simulations *prometheus.CounterVec
	comparisons *prometheus.CounterVec
	operations  *prometheus.CounterVec
	durations   *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with Go runtime collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Simulator runs by interpretation.",
		}, []string{"interpretation"}),
		comparisons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Comparator reports by interpretation and convergence verdict.",
		}, []string{"interpretation", "verdict"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "API operations by name and status.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "API operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation"}),
	}
	r.registry.MustRegister(
		r.simulations,
		r.comparisons,
		r.operations,
		r.durations,
		collectors.NewGoCollector(),
	)
	return r
}

// Simulated counts one simulator run.
func (r *Recorder) Simulated(id interpretation.ID) {
	if r == nil {
		return
	}
	r.simulations.WithLabelValues(string(id)).Inc()
}

// Compared counts one report. An empty verdict is recorded as "none".
func (r *Recorder) Compared(report analysis.Report) {
	if r == nil {
		return
	}
	verdict := string(report.Verdict)
	if verdict == "" {
		verdict = "none"
	}
	r.comparisons.WithLabelValues(string(report.Interpretation), verdict).Inc()
}

// Observe records an operation outcome and its latency.
func (r *Recorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if r == nil || operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
