package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/mkrupp/luxclient/internal/domain"
)

// ErrorCode is the machine-readable kind of an API error.
type ErrorCode string

const (
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeNetwork      ErrorCode = "NETWORK_ERROR"
	CodeTimeout      ErrorCode = "TIMEOUT"
	CodeRateLimit    ErrorCode = "RATE_LIMIT"
)

// Sentinels for errors.Is. An *Error matches a sentinel when the codes are equal.
var (
	ErrUnauthorized = &Error{Code: CodeUnauthorized}
	ErrForbidden    = &Error{Code: CodeForbidden}
	ErrNotFound     = &Error{Code: CodeNotFound}
	ErrValidation   = &Error{Code: CodeValidation}
	ErrInternal     = &Error{Code: CodeInternal}
	ErrNetwork      = &Error{Code: CodeNetwork}
	ErrTimeout      = &Error{Code: CodeTimeout}
	ErrRateLimit    = &Error{Code: CodeRateLimit}
)

const (
	msgNetwork        = "Network error. Please check your connection."
	msgTimeout        = "Request timed out. Please try again."
	msgSessionExpired = "Session expired"
	msgNoRefreshToken = "No refresh token available"
)

// Error is the error type of every failed API call. Message is suitable for display;
// Details carries field level validation messages when the backend sent them.
type Error struct {
	Code    ErrorCode
	Message string
	Status  int
	Details map[string][]string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(string(e.Code))

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.Code == e.Code
}

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

func codeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	case http.StatusTooManyRequests:
		return CodeRateLimit
	default:
		return CodeInternal
	}
}

// errorFromEnvelope translates a failure response. Codes sent by the backend are
// passed through verbatim; otherwise the code is derived from the status.
func errorFromEnvelope(status int, env domain.RawEnvelope) *Error {
	apiErr := &Error{
		Code:    codeForStatus(status),
		Message: env.Message,
		Status:  status,
	}

	if env.Error != nil {
		if env.Error.Code != "" {
			apiErr.Code = ErrorCode(env.Error.Code)
		}

		if env.Error.Message != "" {
			apiErr.Message = env.Error.Message
		}

		apiErr.Details = env.Error.Details
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}

	if apiErr.Message == "" {
		apiErr.Message = "Request failed"
	}

	return apiErr
}

// transportError classifies a failure that happened before any response was read.
func transportError(err error) *Error {
	var netErr net.Error

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Code: CodeTimeout, Message: msgTimeout, Status: http.StatusRequestTimeout, Cause: err}
	}

	return &Error{Code: CodeNetwork, Message: msgNetwork, Cause: err}
}

func internalError(message string, err error) *Error {
	return &Error{Code: CodeInternal, Message: message, Cause: err}
}

func sessionExpired(err error) *Error {
	return &Error{Code: CodeUnauthorized, Message: msgSessionExpired, Status: http.StatusUnauthorized, Cause: err}
}
