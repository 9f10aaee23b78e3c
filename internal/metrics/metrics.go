// Package metrics exports invocation metrics in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"docsummarizer/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docsummarizer"

var latencyBuckets = []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Recorder owns a private registry so tests can create as many as they need.
type Recorder struct {
	registry *prometheus.Registry

	invocations        *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	completions        *prometheus.CounterVec
	completionDuration prometheus.Histogram
}

func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.invocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Total number of handler invocations by outcome",
		},
		[]string{"outcome", "state"},
	)

	r.invocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Handler invocation latency in seconds",
			Buckets:   latencyBuckets,
		},
		[]string{"outcome"},
	)

	r.completions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Total number of completion API calls by status",
		},
		[]string{"status"},
	)

	r.completionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Completion API latency in seconds",
			Buckets:   latencyBuckets,
		},
	)

	r.registry.MustRegister(
		r.invocations,
		r.invocationDuration,
		r.completions,
		r.completionDuration,
	)

	return r
}

// ObserveInvocation records the terminal state of one invocation. For
// failures the state label is the last state reached.
func (r *Recorder) ObserveInvocation(outcome domain.Outcome, elapsed time.Duration) {
	label := string(outcome.State)
	state := outcome.State
	if outcome.State == domain.StateFailed {
		state = outcome.FailedAt
	}

	r.invocations.WithLabelValues(label, string(state)).Inc()
	r.invocationDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveCompletion(elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	r.completions.WithLabelValues(status).Inc()
	r.completionDuration.Observe(elapsed.Seconds())
}

// Handler serves the registry over HTTP.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
