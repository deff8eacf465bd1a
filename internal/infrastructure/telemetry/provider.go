// Package telemetry wires OpenTelemetry metrics, traces and logs for the
// front desk. With telemetry disabled every accessor falls back to the
// global no-op providers, so callers never need to branch.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceVersion is reported as service.version on every signal
const ServiceVersion = "1.0.0"

// Config holds telemetry configuration
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	Insecure          bool
	ExportInterval    time.Duration // metric export interval, default 15s
}

// Providers owns the SDK providers exporting to the OTLP collector
type Providers struct {
	config Config
	logger *zap.Logger

	meters  *sdkmetric.MeterProvider
	tracers *sdktrace.TracerProvider
	logs    *sdklog.LoggerProvider
}

// Setup creates OTLP/gRPC exporters for metrics, traces and logs and installs
// the providers globally. When cfg.Enabled is false it returns an empty
// Providers whose accessors use the global no-op implementations.
func Setup(ctx context.Context, cfg Config, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Providers{config: cfg, logger: logger}

	if !cfg.Enabled {
		logger.Info("Telemetry disabled, using no-op providers")
		return p, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	traceExporter, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	logExporter, err := otlploggrpc.New(ctx, logOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP logs exporter: %w", err)
	}

	p.meters = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval))),
	)
	p.tracers = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
	)
	p.logs = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
	)

	otel.SetMeterProvider(p.meters)
	otel.SetTracerProvider(p.tracers)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	global.SetLoggerProvider(p.logs)

	logger.Info("OpenTelemetry initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
		zap.String("service_name", cfg.ServiceName),
	)
	return p, nil
}

// IsEnabled reports whether signals are exported
func (p *Providers) IsEnabled() bool {
	return p.meters != nil
}

// Meter returns a named meter
func (p *Providers) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if p.meters == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return p.meters.Meter(name, opts...)
}

// Tracer returns a named tracer
func (p *Providers) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if p.tracers == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return p.tracers.Tracer(name, opts...)
}

// ZapCore returns a zap core forwarding entries at or above level to the
// OpenTelemetry log pipeline, or a no-op core when telemetry is disabled.
func (p *Providers) ZapCore(level zapcore.Level) zapcore.Core {
	if p.logs == nil {
		return zapcore.NewNopCore()
	}
	core := otelzap.NewCore(p.config.ServiceName, otelzap.WithLoggerProvider(p.logs))
	return &levelFilterCore{Core: core, minLevel: level}
}

// Shutdown flushes and stops every provider
func (p *Providers) Shutdown(ctx context.Context) error {
	if !p.IsEnabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := errors.Join(
		p.meters.Shutdown(ctx),
		p.tracers.Shutdown(ctx),
		p.logs.Shutdown(ctx),
	)
	if err != nil {
		p.logger.Error("Error shutting down telemetry", zap.Error(err))
		return fmt.Errorf("failed to shutdown telemetry: %w", err)
	}
	p.logger.Info("OpenTelemetry shutdown complete")
	return nil
}

// levelFilterCore adds a minimum level to the otelzap core, which has none
type levelFilterCore struct {
	zapcore.Core
	minLevel zapcore.Level
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.minLevel && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{Core: c.Core.With(fields), minLevel: c.minLevel}
}
