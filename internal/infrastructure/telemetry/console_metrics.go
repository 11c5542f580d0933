package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// DispatchOutcome labels a dispatch submission
type DispatchOutcome string

const (
	OutcomeSucceeded DispatchOutcome = "succeeded"
	OutcomeFailed    DispatchOutcome = "failed"
	OutcomeRejected  DispatchOutcome = "rejected" // another submission in flight
	OutcomeInvalid   DispatchOutcome = "invalid"
)

// CacheResult labels an inventory view cache lookup
type CacheResult string

const (
	CacheHit   CacheResult = "hit"
	CacheMiss  CacheResult = "miss"
	CacheError CacheResult = "error"
)

// ConsoleMetrics records console business metrics to the OTel meter and,
// when a registry is given, to Prometheus.
// A nil *ConsoleMetrics records nothing.
type ConsoleMetrics struct {
	prom *PrometheusRegistry

	dispatchSubmissions metric.Int64Counter
	dispatchDuration    metric.Float64Histogram
	directionsRequests  metric.Int64Counter
	cacheLookups        metric.Int64Counter
	lowStockItems       metric.Int64Gauge
}

// NewConsoleMetrics creates the console instruments on meter. prom may be nil.
func NewConsoleMetrics(meter metric.Meter, prom *PrometheusRegistry) (*ConsoleMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	in := NewInstruments(meter)
	m := &ConsoleMetrics{
		prom: prom,
		dispatchSubmissions: in.Counter("dispatch_submissions_total",
			"Dispatch form submissions by outcome", "{submissions}"),
		dispatchDuration: in.Seconds("dispatch_backend_duration_seconds",
			"Time spent waiting for the backend to create a dispatch", BackendDurationBuckets),
		directionsRequests: in.Counter("directions_requests_total",
			"Directions requests by provider status", "{requests}"),
		cacheLookups: in.Counter("inventory_cache_lookups_total",
			"Inventory view cache lookups by result", "{lookups}"),
		lowStockItems: in.Gauge("inventory_low_stock_items",
			"Items at or below their reorder level in the last fetched list", "{items}"),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordDispatch counts a submission and, when elapsed > 0, its backend latency
func (m *ConsoleMetrics) RecordDispatch(ctx context.Context, outcome DispatchOutcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcomeAttr := metric.WithAttributes(AttrOutcome.String(string(outcome)))
	m.dispatchSubmissions.Add(ctx, 1, outcomeAttr)
	if m.prom != nil {
		m.prom.dispatchSubmissions.WithLabelValues(string(outcome)).Inc()
	}
	if elapsed > 0 {
		m.dispatchDuration.Record(ctx, elapsed.Seconds(), outcomeAttr)
	}
}

// RecordDirections counts a provider request. status is the provider status,
// or "error" when the provider could not be reached.
func (m *ConsoleMetrics) RecordDirections(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.directionsRequests.Add(ctx, 1, metric.WithAttributes(AttrStatus.String(status)))
	if m.prom != nil {
		m.prom.directionsRequests.WithLabelValues(status).Inc()
	}
}

// RecordCacheLookup counts an inventory cache lookup
func (m *ConsoleMetrics) RecordCacheLookup(ctx context.Context, result CacheResult) {
	if m == nil {
		return
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(AttrResult.String(string(result))))
	if m.prom != nil {
		m.prom.cacheLookups.WithLabelValues(string(result)).Inc()
	}
}

// RecordLowStock sets the low-stock gauge
func (m *ConsoleMetrics) RecordLowStock(ctx context.Context, count int) {
	if m == nil {
		return
	}
	m.lowStockItems.Record(ctx, int64(count))
	if m.prom != nil {
		m.prom.lowStockItems.Set(float64(count))
	}
}
