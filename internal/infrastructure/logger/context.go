package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	sessionIDKey
)

// WithContext stores logger in ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID tags ctx and its logger with the request ID
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return tag(ctx, logger, requestIDKey, "request_id", requestID)
}

// WithSessionID tags ctx and its logger with the console session ID
func WithSessionID(ctx context.Context, logger *zap.Logger, sessionID string) (context.Context, *zap.Logger) {
	return tag(ctx, logger, sessionIDKey, "session_id", sessionID)
}

func tag(ctx context.Context, logger *zap.Logger, key ctxKey, field, value string) (context.Context, *zap.Logger) {
	tagged := logger.With(zap.String(field, value))
	return WithContext(context.WithValue(ctx, key, value), tagged), tagged
}

// GetRequestID returns the request ID carried by ctx
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetSessionID returns the console session ID carried by ctx
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// GetTraceID returns the trace ID of the active span, or "".
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// ContextLogger writes entries enriched with the trace, request and session
// of a context. A logger taken from the context already carries request and
// session fields, so only an explicitly supplied logger gets them added.
type ContextLogger struct {
	ctx      context.Context
	base     *zap.Logger
	explicit bool
}

// L returns a ContextLogger for the logger stored in ctx.
//
//	logger.L(ctx).Info("Inventory cache hit", zap.Int("items", n))
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, base: FromContext(ctx)}
}

// WithLogger returns a ContextLogger that writes to logger instead of the
// one stored in ctx. Services use it with the logger they were built with.
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextLogger{ctx: ctx, base: logger, explicit: true}
}

func (cl *ContextLogger) zap() *zap.Logger {
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(cl.ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if cl.explicit {
		if id := GetRequestID(cl.ctx); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if id := GetSessionID(cl.ctx); id != "" {
			fields = append(fields, zap.String("session_id", id))
		}
	}
	if len(fields) == 0 {
		return cl.base
	}
	return cl.base.With(fields...)
}

// With returns a child ContextLogger carrying fields
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, base: cl.base.With(fields...), explicit: cl.explicit}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) { cl.zap().Debug(msg, fields...) }
func (cl *ContextLogger) Info(msg string, fields ...zap.Field)  { cl.zap().Info(msg, fields...) }
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field)  { cl.zap().Warn(msg, fields...) }
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) { cl.zap().Error(msg, fields...) }

// Zap returns the enriched zap logger
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.zap()
}
