// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Enrichment outcome per catalog id: fresh, refreshed, inserted, duplicate, failed.
	EnrichmentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_enrichment_total",
			Help: "Enrichment outcomes per catalog id",
		},
		[]string{"kind", "outcome"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_upstream_requests_total",
			Help: "Outbound requests to catalog, rating and generative services",
		},
		[]string{"service", "result"}, // result: "success", "error", "rejected"
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_upstream_request_duration_seconds",
			Help:    "Latency of outbound requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	ChatIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_chat_intents_total",
			Help: "Classified chat intents",
		},
		[]string{"intent"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_api_requests_total",
			Help: "HTTP API requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)

// RecordUpstream counts one outbound call and its latency.
func RecordUpstream(service string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	UpstreamRequests.WithLabelValues(service, result).Inc()
	UpstreamDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordRejected counts a call short-circuited by a breaker.
func RecordRejected(service string) {
	UpstreamRequests.WithLabelValues(service, "rejected").Inc()
}

// RecordEnrichment adds n outcomes for the kind.
func RecordEnrichment(kind, outcome string, n int) {
	if n <= 0 {
		return
	}
	EnrichmentTotal.WithLabelValues(kind, outcome).Add(float64(n))
}

// RecordIntent counts a classified chat intent.
func RecordIntent(intent string) {
	ChatIntents.WithLabelValues(intent).Inc()
}

// SetBreakerState publishes a breaker state as 0, 1 or 2.
func SetBreakerState(name string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordAPIRequest counts one HTTP API request.
func RecordAPIRequest(method, route, status string) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
}
