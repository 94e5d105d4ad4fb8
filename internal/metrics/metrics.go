// Package metrics provides Prometheus metrics for issue generation and submission.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	SkippedFramesTotal prometheus.Counter
	SubmissionsTotal   *prometheus.CounterVec
	StoreFallbacks     *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "issuehelper_generations_total",
				Help: "Draft generations by outcome.",
			},
			[]string{"result"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "issuehelper_generation_duration_seconds",
				Help:    "Time from request to end of the completion stream.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
		),
		SkippedFramesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "llm_stream_skipped_frames_total",
				Help: "Malformed completion stream frames that were skipped.",
			},
		),
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "issuehelper_submissions_total",
				Help: "GitLab issue submissions by outcome.",
			},
			[]string{"result"},
		),
		StoreFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "issuehelper_store_fallbacks_total",
				Help: "Writes that landed on a lower-priority storage backend.",
			},
			[]string{"backend"},
		),
		registry: reg,
	}

	reg.MustRegister(m.GenerationsTotal)
	reg.MustRegister(m.GenerationDuration)
	reg.MustRegister(m.SkippedFramesTotal)
	reg.MustRegister(m.SubmissionsTotal)
	reg.MustRegister(m.StoreFallbacks)
	reg.MustRegister(collectors.NewGoCollector())

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordGeneration counts one finished generation and its skipped frames.
func (m *Metrics) RecordGeneration(result string, seconds float64, skipped int) {
	m.GenerationsTotal.WithLabelValues(result).Inc()
	m.GenerationDuration.Observe(seconds)
	if skipped > 0 {
		m.SkippedFramesTotal.Add(float64(skipped))
	}
}

func (m *Metrics) RecordSubmission(result string) {
	m.SubmissionsTotal.WithLabelValues(result).Inc()
}

// RecordStoreFallback matches the store.Options.OnFallback signature.
func (m *Metrics) RecordStoreFallback(_ string, backend string) {
	m.StoreFallbacks.WithLabelValues(backend).Inc()
}
