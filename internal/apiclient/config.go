package apiclient

import (
	"strings"
	"time"
)

// APIPrefix is the versioned path prefix every request path is appended to.
const APIPrefix = "/api/v1"

// AuthPathPrefix marks authentication endpoints. A 401 from one of them never triggers
// a refresh.
const AuthPathPrefix = "/auth/"

// RefreshPath is the refresh endpoint relative to APIPrefix.
const RefreshPath = "/auth/refresh"

const (
	defaultTimeout        = 30 * time.Second
	defaultRefreshTimeout = 10 * time.Second
)

// Config holds the settings of the API client.
type Config struct {
	// BaseURL is the backend origin, without the versioned prefix
	BaseURL string `env:"URL" default:"http://localhost:8088"`

	// TimeoutMS bounds each request attempt when the caller's context cannot be cancelled
	TimeoutMS int64 `env:"TIMEOUT_MS" default:"30000"`

	// RefreshTimeoutMS bounds a refresh call
	RefreshTimeoutMS int64 `env:"REFRESH_TIMEOUT_MS" default:"10000"`

	// DefaultHeaders are sent with every request, including the refresh call
	DefaultHeaders map[string]string `env:"DEFAULT_HEADERS" default:"Content-Type:application/json,Accept:application/json"`
}

// DefaultConfig returns the configuration used when no environment is available.
func DefaultConfig() Config {
	return Config{
		BaseURL:          "http://localhost:8088",
		TimeoutMS:        defaultTimeout.Milliseconds(),
		RefreshTimeoutMS: defaultRefreshTimeout.Milliseconds(),
		DefaultHeaders: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
	}
}

func (c Config) timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return defaultTimeout
	}

	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c Config) refreshTimeout() time.Duration {
	if c.RefreshTimeoutMS <= 0 {
		return defaultRefreshTimeout
	}

	return time.Duration(c.RefreshTimeoutMS) * time.Millisecond
}

func (c Config) url(path, query string) string {
	u := strings.TrimRight(c.BaseURL, "/") + APIPrefix + normalizePath(path)
	if query != "" {
		u += "?" + query
	}

	return u
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}

	return path
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(normalizePath(path), AuthPathPrefix)
}
