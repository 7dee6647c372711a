// Package reqctx carries request-scoped values through context.Context.
package reqctx

import (
	"context"

	"go.uber.org/zap"
)

type contextkey string

const (
	loggerKey contextkey = "logger"
)

// WithLogger binds a request-scoped logger to ctx.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the logger bound to ctx, or fallback when there is none.
// A nil fallback yields a no-op logger.
func Logger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}
