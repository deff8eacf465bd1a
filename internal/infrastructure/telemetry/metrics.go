package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("meter cannot be nil")

// Common attribute keys
var (
	AttrRentalType    = attribute.Key("rental_type")
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrCurrency      = attribute.Key("currency")
	AttrUrgency       = attribute.Key("urgency")
	AttrOutOfOrder    = attribute.Key("out_of_order")
)

// Counter wraps a monotonically increasing int64 instrument
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new Counter metric
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return &Counter{counter: c}, nil
}

// Inc increments the counter by 1
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Gauge wraps a point-in-time int64 instrument
type Gauge struct {
	gauge metric.Int64Gauge
}

// NewGauge creates a new Gauge metric
func NewGauge(meter metric.Meter, name, description, unit string) (*Gauge, error) {
	g, err := meter.Int64Gauge(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge %s: %w", name, err)
	}
	return &Gauge{gauge: g}, nil
}

// Record records the current value
func (g *Gauge) Record(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	g.gauge.Record(ctx, value, metric.WithAttributes(attrs...))
}
