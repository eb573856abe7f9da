package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from the context.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithCycle returns a context whose logger carries the listen cycle ID.
func WithCycle(ctx context.Context, base *zap.Logger, cycleID string) (context.Context, *zap.Logger) {
	l := base.With(zap.String("cycle_id", cycleID))
	return ContextWithLogger(ctx, l), l
}
