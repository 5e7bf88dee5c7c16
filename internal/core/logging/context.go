package logging

import "context"

type contextKey string

const (
	surfaceKey   contextKey = "surface"
	requestIDKey contextKey = "request_id"
)

// WithSurface adds a surface key to the context.
func WithSurface(ctx context.Context, surface string) context.Context {
	return context.WithValue(ctx, surfaceKey, surface)
}

// WithRequestID adds an HTTP request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetSurface retrieves the surface key from the context.
// Returns empty string if not present.
func GetSurface(ctx context.Context) string {
	if key, ok := ctx.Value(surfaceKey).(string); ok {
		return key
	}
	return ""
}

// GetRequestID retrieves the request ID from the context.
// Returns empty string if not present.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
