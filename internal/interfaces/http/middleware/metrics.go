package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/logistics/console/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetricsConfig holds configuration for HTTP metrics middleware.
type HTTPMetricsConfig struct {
	// Meter records OTLP instruments; nil disables them
	Meter metric.Meter
	// Prometheus mirrors request counts and latency for /metrics; may be nil
	Prometheus *telemetry.PrometheusRegistry
}

type httpMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	in := telemetry.NewInstruments(meter)
	m := &httpMetrics{
		requests: in.Counter("http_server_request_total", "Total number of HTTP requests", "{request}"),
		latency: in.Seconds("http_server_request_duration_seconds",
			"HTTP request latency distribution in seconds", telemetry.HTTPDurationBuckets),
		active: in.UpDownCounter("http_server_active_requests", "Number of currently active HTTP requests", "{request}"),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// HTTPMetrics returns a middleware recording request count, latency and
// concurrency, labelled by route pattern rather than raw path.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	var otelMetrics *httpMetrics
	if cfg.Meter != nil {
		// A failed instrument setup leaves only the Prometheus side
		otelMetrics, _ = newHTTPMetrics(cfg.Meter)
	}
	if otelMetrics == nil && cfg.Prometheus == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		if otelMetrics != nil {
			otelMetrics.active.Add(ctx, 1)
		}

		c.Next()

		duration := time.Since(start)
		route := getRoutePattern(c)
		method := c.Request.Method
		status := c.Writer.Status()

		if otelMetrics != nil {
			routeAttrs := []attribute.KeyValue{
				telemetry.AttrHTTPMethod.String(method),
				telemetry.AttrHTTPRoute.String(route),
			}
			otelMetrics.active.Add(ctx, -1)
			otelMetrics.requests.Add(ctx, 1, metric.WithAttributes(
				append(routeAttrs, telemetry.AttrHTTPStatusCode.Int(status))...))
			otelMetrics.latency.Record(ctx, duration.Seconds(), metric.WithAttributes(routeAttrs...))
		}
		cfg.Prometheus.ObserveHTTP(method, route, strconv.Itoa(status), duration.Seconds())
	}
}

// getRoutePattern returns the matched route pattern to keep label
// cardinality bounded.
func getRoutePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}
