package context

import (
	"context"
)

type contextKey string

const contextKeyRequestID = contextKey("requestID")

// RequestIDFromContext extracts the request ID from the context.
// Returns the request ID and true if present, or empty string and false if not present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(contextKeyRequestID).(string)

	return requestID, ok && requestID != ""
}

// WithRequestID returns a context carrying the given request ID. Outgoing API calls made
// with this context reuse the ID instead of minting a new one, so one CLI invocation or
// one inbound request can be followed across retries and the token refresh.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}
