package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRegistry is the scrape registry served at /metrics
type PrometheusRegistry struct {
	registry *prometheus.Registry

	dispatchSubmissions *prometheus.CounterVec
	directionsRequests  *prometheus.CounterVec
	cacheLookups        *prometheus.CounterVec
	lowStockItems       prometheus.Gauge
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// NewPrometheusRegistry creates a registry with Go runtime, process and console collectors
func NewPrometheusRegistry(namespace string) *PrometheusRegistry {
	r := &PrometheusRegistry{
		registry: prometheus.NewRegistry(),
		dispatchSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_submissions_total",
			Help:      "Dispatch form submissions by outcome.",
		}, []string{"outcome"}),
		directionsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directions_requests_total",
			Help:      "Directions requests by provider status.",
		}, []string{"status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_cache_lookups_total",
			Help:      "Inventory view cache lookups by result.",
		}, []string{"result"}),
		lowStockItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_low_stock_items",
			Help:      "Items at or below their reorder level in the last fetched list.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   HTTPDurationBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.dispatchSubmissions,
		r.directionsRequests,
		r.cacheLookups,
		r.lowStockItems,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *PrometheusRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveHTTP records one served request
func (r *PrometheusRegistry) ObserveHTTP(method, route, status string, seconds float64) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, status).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// HTTPRequests exposes the request counter for assertions
func (r *PrometheusRegistry) HTTPRequests() *prometheus.CounterVec {
	return r.httpRequests
}
