package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	operatorKey  contextKey = "operator"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID tags the context with a request (or CLI invocation) ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithOperator tags the context with the clerk performing the operation
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey, operator)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetOperator retrieves the clerk name from context
func GetOperator(ctx context.Context) string {
	if op, ok := ctx.Value(operatorKey).(string); ok {
		return op
	}
	return ""
}

// Fields returns the correlation fields carried by ctx: trace and span IDs
// from an active OpenTelemetry span, request ID and operator.
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		fields = append(fields,
			zap.String("trace_id", spanCtx.TraceID().String()),
			zap.String("span_id", spanCtx.SpanID().String()),
		)
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if op := GetOperator(ctx); op != "" {
		fields = append(fields, zap.String("operator", op))
	}
	return fields
}

// L returns the context's logger enriched with its correlation fields.
// Usage: logger.L(ctx).Info("room checked out", zap.String("room", "101"))
func L(ctx context.Context) *zap.Logger {
	return FromContext(ctx).With(Fields(ctx)...)
}

// Enrich returns base enriched with ctx's correlation fields
func Enrich(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return base.With(Fields(ctx)...)
}
