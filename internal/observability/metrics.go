package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the query service.
type Metrics struct {
	// Upstream client metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,error,timeout}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint

	// Station directory cache metrics.
	StationCache *prometheus.CounterVec // labels: result={hit,miss}

	// Forecast probe metrics.
	ProbeAttempts prometheus.Histogram
	ProbeOutcomes *prometheus.CounterVec // labels: outcome={accepted,exhausted}

	// Tool boundary metrics.
	ToolRequests *prometheus.CounterVec // labels: tool, outcome={ok,no_data,error}

	// Usage event publishing.
	UsageEvents *prometheus.CounterVec // labels: result={published,error}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.StationCache,
		m.ProbeAttempts,
		m.ProbeOutcomes,
		m.ToolRequests,
		m.UsageEvents,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry,
// avoiding "already registered" panics across test packages.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agroclimate",
			Name:      "upstream_requests_total",
			Help:      "Upstream data-service requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agroclimate",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream data-service request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		StationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agroclimate",
			Name:      "station_cache_total",
			Help:      "Station directory cache lookups by result.",
		}, []string{"result"}),
		ProbeAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agroclimate",
			Name:      "probe_attempts",
			Help:      "Stations attempted per forecast probe.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		ProbeOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agroclimate",
			Name:      "probe_outcomes_total",
			Help:      "Forecast probe outcomes.",
		}, []string{"outcome"}),
		ToolRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agroclimate",
			Name:      "tool_requests_total",
			Help:      "MCP tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		UsageEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agroclimate",
			Name:      "usage_events_total",
			Help:      "Usage events published to Kafka by result.",
		}, []string{"result"}),
	}
}
