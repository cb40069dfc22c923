// Package requestctx carries request-scoped identity across the HTTP boundary.
//
// Only transport code reads these values; domain entry points receive the
// character id as an explicit argument.
package requestctx

import "context"

type characterIDContextKey struct{}

type requestIDContextKey struct{}

// WithCharacterID stores the acting character identifier in context.
func WithCharacterID(ctx context.Context, characterID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, characterIDContextKey{}, characterID)
}

// CharacterIDFromContext returns the character identifier stored in context.
func CharacterIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(characterIDContextKey{}).(string)
	return value
}

// WithRequestID stores the correlation id for log lines.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the correlation id, or "-" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return "-"
	}
	value, _ := ctx.Value(requestIDContextKey{}).(string)
	if value == "" {
		return "-"
	}
	return value
}
