// Package requestctx carries request-scoped values (logger, trace, signed-in user) through context.
package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type (
	loggerKey struct{}
	traceKey  struct{}
	userKey   struct{}
)

var noopLogger = zap.NewNop()

// TraceInfo is the Cloud Trace context of the current request.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

func with(ctx context.Context, key, value any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

func lookup[T any](ctx context.Context, key any) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

// WithLogger attaches logger; nil stores the noop logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = noopLogger
	}
	return with(ctx, loggerKey{}, logger)
}

// Logger never returns nil.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := lookup[*zap.Logger](ctx, loggerKey{}); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger is the fallback returned by Logger.
func NoopLogger() *zap.Logger { return noopLogger }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	return with(ctx, traceKey{}, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	return lookup[TraceInfo](ctx, traceKey{})
}

// TraceID is "" outside a traced request.
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// WithUserID records the signed-in user's id.
func WithUserID(ctx context.Context, uid string) context.Context {
	return with(ctx, userKey{}, uid)
}

// UserID returns the signed-in user's id, or "".
func UserID(ctx context.Context) string {
	uid, _ := lookup[string](ctx, userKey{})
	return uid
}
