package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const loggerKey contextKey = "logger"

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger.
// The result carries trace_id and span_id when ctx holds a valid span.
func FromContext(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok {
		logger = zap.NewNop()
	}
	return WithTraceContext(ctx, logger)
}

// WithRun attaches the run identifier and platform to the context logger
func WithRun(ctx context.Context, logger *zap.Logger, runID, platform string) (context.Context, *zap.Logger) {
	enriched := logger.With(zap.String("run_id", runID), zap.String("platform", platform))
	return WithContext(ctx, enriched), enriched
}

// WithTarget attaches a marketplace target (account or campaign) to the context logger
func WithTarget(ctx context.Context, target string) (context.Context, *zap.Logger) {
	logger, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok {
		logger = zap.NewNop()
	}
	enriched := logger.With(zap.String("target", target))
	return WithContext(ctx, enriched), enriched
}

// WithTraceContext adds trace_id and span_id from the context's span.
// Without a valid span the logger is returned unchanged.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
