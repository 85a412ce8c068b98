package http

import (
	"log/slog"
	"net/http"
	"time"

	context_ "github.com/mkrupp/luxclient/internal/infra/context"
	"github.com/mkrupp/luxclient/internal/infra/logging"
)

// HTTPClientConfig contains connection settings for outgoing HTTP requests.
// Request deadlines are not configured here; callers bound requests via context.
type HTTPClientConfig struct {
	// MaxIdleConnsPerHost bounds the keep-alive pool per backend host
	MaxIdleConnsPerHost int `env:"MAX_IDLE_CONNS_PER_HOST" default:"8"`
	// IdleConnTimeout is the keep-alive timeout in seconds
	IdleConnTimeout int64 `env:"IDLE_CONN_TIMEOUT" default:"90"`
}

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// TracingRoundTripper stamps outgoing requests with X-Request-ID, reusing the ID from
// the request context when there is one.
func TracingRoundTripper(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get(RequestIDHeader) != "" {
			return next.RoundTrip(r)
		}

		requestID, ok := context_.RequestIDFromContext(r.Context())
		if !ok {
			requestID = NewRequestID()
		}

		r = r.Clone(r.Context())
		r.Header.Set(RequestIDHeader, requestID)

		return next.RoundTrip(r)
	})
}

// LoggingRoundTripper logs outgoing requests at DEBUG and their outcome at a level
// derived from the response status. Headers are never logged.
func LoggingRoundTripper(next http.RoundTripper, log logging.Logger) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		group := func(extra ...any) slog.Attr {
			return slog.Group("http", append([]any{
				"method", r.Method,
				"url", r.URL.Redacted(),
				"request_id", r.Header.Get(RequestIDHeader),
			}, extra...)...)
		}

		log.DebugContext(r.Context(), "outgoing request", group())

		resp, err := next.RoundTrip(r)
		if err != nil {
			log.WarnContext(r.Context(), "outgoing request failed", group(
				"duration", time.Since(start),
				"error", err,
			))

			//nolint:wrapcheck
			return nil, err
		}

		log.Log(r.Context(), levelForStatus(resp.StatusCode), "incoming response", group(
			"status", resp.StatusCode,
			"duration", time.Since(start),
		))

		return resp, nil
	})
}

// NewHTTPClient builds the *http.Client used for API calls: a pooled transport wrapped
// with request-ID tracing (outermost) and logging.
func NewHTTPClient(cfg HTTPClientConfig, log logging.Logger) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert
	transport.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	transport.IdleConnTimeout = time.Duration(cfg.IdleConnTimeout) * time.Second

	return &http.Client{
		Transport: TracingRoundTripper(LoggingRoundTripper(transport, log)),
	}
}
