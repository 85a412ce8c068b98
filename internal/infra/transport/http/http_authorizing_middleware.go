package http

import (
	"context"
	"net/http"
	"strings"

	context_ "github.com/mkrupp/luxclient/internal/infra/context"
	"github.com/mkrupp/luxclient/internal/infra/logging"
)

// TokenValidator resolves a bearer token to the subject it was issued for.
type TokenValidator interface {
	// ValidateAccessToken returns the subject of a valid token, or false if the token
	// is invalid or expired. An error means validation itself could not be performed.
	ValidateAccessToken(ctx context.Context, token string) (string, bool, error)
}

// UnauthorizedFunc writes the rejection response for a request without a valid token.
type UnauthorizedFunc func(w http.ResponseWriter, r *http.Request)

// AuthorizingMiddleware rejects requests that lack a valid "Authorization: Bearer" token.
// On success the token subject is added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	validator TokenValidator,
	unauthorized UnauthorizedFunc,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			log.DebugContext(r.Context(), "no bearer token provided")
			unauthorized(w, r)

			return
		}

		subject, ok, err := validator.ValidateAccessToken(r.Context(), token)
		if err != nil {
			log.ErrorContext(r.Context(), "validate token failed", "error", err)
			unauthorized(w, r)

			return
		} else if !ok {
			log.DebugContext(r.Context(), "invalid token")
			unauthorized(w, r)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithSubject(r.Context(), subject)))
	})
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}

	return strings.TrimSpace(token), true
}
