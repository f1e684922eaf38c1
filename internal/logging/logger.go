// Package logging defines the structured-logging interface used across the
// project and its slog implementation. Key/value pairs stored in a context
// with WithAttrs are added to every record logged with that context.
package logging

import (
	"context"
	"slices"
)

// Logger is a context-aware, structured logger. args are key/value pairs:
//
//	log.Info(ctx, "mission completed", "user_id", uid, "energy", acct.Energy)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn is for degraded operation, e.g. serving cached data.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger
}

type attrsKey struct{}

// WithAttrs returns a copy of ctx whose log records carry args in addition
// to any pairs ctx already carries.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	prev := attrs(ctx)
	return context.WithValue(ctx, attrsKey{}, append(slices.Clip(prev), args...))
}

func attrs(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	a, _ := ctx.Value(attrsKey{}).([]any)
	return a
}
