package http

import (
	"net/http"

	"github.com/google/uuid"

	context_ "github.com/mkrupp/luxclient/internal/infra/context"
)

// RequestIDHeader carries the request ID between client and server.
const RequestIDHeader = "X-Request-ID"

// TracingMiddleware adds the request ID to the request context and echoes it in the
// response. It uses the X-Request-ID header if present, otherwise generates a new UUIDv7.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = NewRequestID()
		}

		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(context_.WithRequestID(r.Context(), requestID)))
	})
}

// NewRequestID returns a time-ordered request ID. Falls back to a random v4 UUID
// when the v7 generator fails.
func NewRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
