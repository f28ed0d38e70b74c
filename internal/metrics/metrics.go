// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the organizer service.
type Metrics struct {
	RequestCounter    *prometheus.CounterVec
	LatencyHistogram  *prometheus.HistogramVec
	PatternsRecorded  *prometheus.CounterVec
	SuggestionsServed prometheus.Counter
	FeedbackApplied   *prometheus.CounterVec
	EventsDropped     prometheus.Counter
	RateLimitHits     prometheus.Counter

	registry *prometheus.Registry
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics (singleton to avoid duplicate
// registration in tests).
func Get() *Metrics {
	once.Do(func() {
		registry := prometheus.NewRegistry()

		m := &Metrics{
			RequestCounter: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "filebox_organizer_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			LatencyHistogram: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "filebox_organizer_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "path"},
			),
			PatternsRecorded: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "filebox_organizer_patterns_recorded_total",
					Help: "Patterns created or reinforced from move events",
				},
				[]string{"kind", "outcome"},
			),
			SuggestionsServed: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "filebox_organizer_suggestions_served_total",
					Help: "Suggestion lists computed",
				},
			),
			FeedbackApplied: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "filebox_organizer_feedback_total",
					Help: "User feedback events applied to patterns",
				},
				[]string{"action"},
			),
			EventsDropped: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "filebox_organizer_events_dropped_total",
					Help: "Move events dropped because the buffer was full",
				},
			),
			RateLimitHits: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "filebox_organizer_rate_limit_hits_total",
					Help: "Requests rejected by the per-owner rate limiter",
				},
			),
			registry: registry,
		}

		registry.MustRegister(m.RequestCounter)
		registry.MustRegister(m.LatencyHistogram)
		registry.MustRegister(m.PatternsRecorded)
		registry.MustRegister(m.SuggestionsServed)
		registry.MustRegister(m.FeedbackApplied)
		registry.MustRegister(m.EventsDropped)
		registry.MustRegister(m.RateLimitHits)

		instance = m
	})
	return instance
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
