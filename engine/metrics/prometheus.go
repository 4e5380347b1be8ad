// Package metrics provides Prometheus metrics export for the enrichment
// and routing engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qazfin/fireroute/engine/model"
)

// Exporter exports engine metrics in Prometheus format.
type Exporter struct {
	registry *prometheus.Registry

	// Enrichment metrics
	ticketsProcessed  *prometheus.CounterVec
	enrichmentLatency prometheus.Histogram

	// LLM metrics
	llmRequests *prometheus.CounterVec
	llmLatency  prometheus.Histogram

	// Routing metrics
	assignments    *prometheus.CounterVec
	escalations    prometheus.Counter
	routingLatency prometheus.Histogram
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default exporter configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}
}

// NewExporter creates a new Prometheus metrics exporter.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.ticketsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fireroute",
			Subsystem: "enrich",
			Name:      "tickets_total",
			Help:      "Total number of enriched tickets",
		},
		[]string{"category", "language", "sentiment"},
	)

	e.enrichmentLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fireroute",
			Subsystem: "enrich",
			Name:      "latency_seconds",
			Help:      "Per-ticket enrichment latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
	)

	e.llmRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fireroute",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Total number of LLM analysis attempts",
		},
		[]string{"status"},
	)

	e.llmLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fireroute",
			Subsystem: "llm",
			Name:      "latency_seconds",
			Help:      "LLM request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
	)

	e.assignments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fireroute",
			Subsystem: "route",
			Name:      "assignments_total",
			Help:      "Total number of routed tickets by office selection reason",
		},
		[]string{"reason"},
	)

	e.escalations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fireroute",
			Subsystem: "route",
			Name:      "escalations_total",
			Help:      "Total number of tickets escalated to the capital",
		},
	)

	e.routingLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fireroute",
			Subsystem: "route",
			Name:      "latency_seconds",
			Help:      "Per-ticket routing latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
	)

	registry.MustRegister(
		e.ticketsProcessed,
		e.enrichmentLatency,
		e.llmRequests,
		e.llmLatency,
		e.assignments,
		e.escalations,
		e.routingLatency,
	)

	return e
}

// RecordEnrichment records one enriched ticket.
func (e *Exporter) RecordEnrichment(et model.EnrichedTicket, latency time.Duration) {
	e.ticketsProcessed.WithLabelValues(
		string(et.Enrichment.Category),
		string(et.Enrichment.Language),
		string(et.Enrichment.Sentiment),
	).Inc()
	e.enrichmentLatency.Observe(latency.Seconds())
}

// RecordLLMRequest records an LLM analysis attempt.
func (e *Exporter) RecordLLMRequest(latency time.Duration, success bool) {
	status := "success"
	if !success {
		status = "fallback"
	}
	e.llmRequests.WithLabelValues(status).Inc()
	e.llmLatency.Observe(latency.Seconds())
}

// RecordAssignment records one routed ticket.
func (e *Exporter) RecordAssignment(a model.Assignment, latency time.Duration) {
	e.assignments.WithLabelValues(string(a.OfficeReason)).Inc()
	if a.Escalated() {
		e.escalations.Inc()
	}
	e.routingLatency.Observe(latency.Seconds())
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for test scraping.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}
