package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	context_ "github.com/mkrupp/luxclient/internal/infra/context"
	"github.com/mkrupp/luxclient/internal/infra/logging"
)

// PanicError is handed to the fallback when a handler panics.
type PanicError struct {
	Value     any
	RequestID string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// RescueFunc answers a request whose handler failed unexpectedly.
type RescueFunc func(w http.ResponseWriter, r *http.Request, err error)

// RescueingMiddleware recovers from panics in HTTP handlers. The panic is logged with
// its stack and the request ID, then fallback writes the response, typically a
// failure envelope the API client can decode.
func RescueingMiddleware(next http.Handler, fallback RescueFunc, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			p := recover()
			if p == nil {
				return
			}

			requestID, _ := context_.RequestIDFromContext(ctx)

			log.ErrorContext(ctx, "request panic", slog.Group("http",
				"uri", r.RequestURI,
				"method", r.Method,
				"request_id", requestID,
			), slog.Group("error",
				"panic", p,
				"stack", string(debug.Stack()),
			))

			fallback(w, r, &PanicError{Value: p, RequestID: requestID})
		}(r.Context())
		next.ServeHTTP(w, r)
	})
}
