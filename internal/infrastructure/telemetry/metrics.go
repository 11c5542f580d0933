package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments creates instruments on one meter and remembers the first
// failure, so a block of definitions is checked once through Err.
type Instruments struct {
	meter metric.Meter
	err   error
}

// NewInstruments returns a builder for instruments on meter
func NewInstruments(meter metric.Meter) *Instruments {
	return &Instruments{meter: meter}
}

// Counter creates a monotonic int64 counter
func (in *Instruments) Counter(name, description, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	in.keep(name, err)
	return c
}

// UpDownCounter creates an int64 counter that may decrease
func (in *Instruments) UpDownCounter(name, description, unit string) metric.Int64UpDownCounter {
	c, err := in.meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	in.keep(name, err)
	return c
}

// Seconds creates a float64 histogram in seconds over buckets
func (in *Instruments) Seconds(name, description string, buckets []float64) metric.Float64Histogram {
	h, err := in.meter.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	in.keep(name, err)
	return h
}

// Gauge creates an int64 gauge
func (in *Instruments) Gauge(name, description, unit string) metric.Int64Gauge {
	g, err := in.meter.Int64Gauge(name, metric.WithDescription(description), metric.WithUnit(unit))
	in.keep(name, err)
	return g
}

func (in *Instruments) keep(name string, err error) {
	if err != nil && in.err == nil {
		in.err = fmt.Errorf("create instrument %s: %w", name, err)
	}
}

// Err returns the first instrument creation failure
func (in *Instruments) Err() error {
	return in.err
}

// Metric attribute keys
var (
	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrHTTPRoute      = attribute.Key("http.route")

	AttrOutcome = attribute.Key("outcome")
	AttrStatus  = attribute.Key("status")
	AttrResult  = attribute.Key("result")
)

// Histogram bucket boundaries in seconds
var (
	HTTPDurationBuckets    = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	BackendDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 1.5, 3, 5, 10, 30}
)
