package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mkrupp/luxclient/internal/domain"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// httpError is a failure that is written as a failure envelope.
type httpError struct {
	status  int
	code    string
	message string
	details map[string][]string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.status, e.code, e.message)
}

func errBadRequest(code, message string) *httpError {
	return &httpError{status: http.StatusBadRequest, code: code, message: message}
}

func errValidation(details map[string][]string) *httpError {
	return &httpError{
		status:  http.StatusBadRequest,
		code:    "VALIDATION_ERROR",
		message: "Validation failed",
		details: details,
	}
}

func errUnauthorized(code, message string) *httpError {
	return &httpError{status: http.StatusUnauthorized, code: code, message: message}
}

func errForbidden(message string) *httpError {
	return &httpError{status: http.StatusForbidden, code: "FORBIDDEN", message: message}
}

func errNotFound(what string) *httpError {
	return &httpError{status: http.StatusNotFound, code: "NOT_FOUND", message: what + " not found"}
}

func errConflict(code, message string) *httpError {
	return &httpError{status: http.StatusConflict, code: code, message: message}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func writeEnvelope[T any](w http.ResponseWriter, status int, env domain.Envelope[T]) {
	env.Timestamp = timestamp()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeData[T any](w http.ResponseWriter, status int, data T, message string) {
	writeEnvelope(w, status, domain.Envelope[T]{Success: true, Data: data, Message: message})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeData(w, http.StatusOK, domain.MessageResponse{Message: message}, message)
}

func writeError(w http.ResponseWriter, err error) {
	var he *httpError
	if !errors.As(err, &he) {
		he = &httpError{status: http.StatusInternalServerError, code: "INTERNAL_ERROR", message: "Internal server error"}
	}

	writeEnvelope(w, he.status, domain.Envelope[any]{
		Error: &domain.EnvelopeError{Code: he.code, Message: he.message, Details: he.details},
	})
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errBadRequest("INVALID_JSON", "Request body is not valid JSON")
	}

	return nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return fallback
	}

	return v
}

func paginate[T any](r *http.Request, items []T) domain.Paginated[T] {
	page := queryInt(r, "page", 1)
	limit := min(queryInt(r, "limit", defaultPageLimit), maxPageLimit)

	total := len(items)
	totalPages := (total + limit - 1) / limit

	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	data := make([]T, end-start)
	copy(data, items[start:end])

	return domain.Paginated[T]{
		Data: data,
		Meta: domain.PaginationMeta{
			Total:           total,
			Page:            page,
			Limit:           limit,
			TotalPages:      totalPages,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}
}
