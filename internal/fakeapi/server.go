package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	context_ "github.com/mkrupp/luxclient/internal/infra/context"
	"github.com/mkrupp/luxclient/internal/infra/logging"
	http_ "github.com/mkrupp/luxclient/internal/infra/transport/http"
)

// Server is an in-memory implementation of the backend REST API. It issues real JWT
// access tokens and rotating opaque refresh tokens, and keeps every entity in memory.
type Server struct {
	cfg          Config
	tokens       *tokenIssuer
	state        *state
	router       *mux.Router
	refreshCalls atomic.Int64
	log          logging.Logger
}

// New creates a Server and seeds the configured account.
func New(cfg Config) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		tokens: newTokenIssuer(cfg.SigningKey, time.Duration(cfg.AccessTTL)*time.Second),
		state:  newState(),
		log:    logging.GetLogger("fakeapi.server"),
	}

	s.router = s.routes()

	if cfg.SeedEmail != "" {
		if _, err := s.AddUser(cfg.SeedEmail, cfg.SeedPassword, cfg.SeedName); err != nil {
			return nil, fmt.Errorf("seed user: %w", err)
		}
	}

	return s, nil
}

// Router returns the API routes without the server middleware chain.
func (s *Server) Router() http.Handler {
	return s.router
}

// Handler returns the API routes wrapped with tracing, logging and panic rescue.
func (s *Server) Handler() http.Handler {
	return http_.Middleware(s.router, s.HandleInternalError, s.log)
}

// ListenAndServe serves the API until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, cfg http_.HTTPTransportConfig) error {
	//nolint:wrapcheck
	return http_.ListenAndServe(ctx, s.router, s.HandleInternalError, cfg)
}

// HandleInternalError writes the INTERNAL_ERROR envelope of an unexpected server error.
// A rescued panic names its request ID so the client log can be matched to the server's.
func (s *Server) HandleInternalError(w http.ResponseWriter, _ *http.Request, err error) {
	message := "Internal server error"

	var panicErr *http_.PanicError
	if errors.As(err, &panicErr) && panicErr.RequestID != "" {
		message += " (request " + panicErr.RequestID + ")"
	}

	writeError(w, &httpError{status: http.StatusInternalServerError, code: "INTERNAL_ERROR", message: message})
}

// RefreshCalls returns the number of requests served by the refresh endpoint.
func (s *Server) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}

// ExpireAccessTokens invalidates every access token issued so far. Refresh tokens
// stay valid, so clients recover through the refresh endpoint.
func (s *Server) ExpireAccessTokens() {
	s.tokens.revokeAll()
}

// RevokeRefreshTokens invalidates every refresh token, ending all sessions.
func (s *Server) RevokeRefreshTokens() {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	clear(s.state.refreshTokens)
}

// ResetToken returns the outstanding password reset token of the account.
func (s *Server) ResetToken(email string) (string, bool) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, ok := s.state.accountByEmail(email)
	if !ok {
		return "", false
	}

	return tokenFor(s.state.resetTokens, acc.user.ID)
}

// VerificationToken returns the outstanding email verification token of the account.
func (s *Server) VerificationToken(email string) (string, bool) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, ok := s.state.accountByEmail(email)
	if !ok {
		return "", false
	}

	return tokenFor(s.state.verifyTokens, acc.user.ID)
}

// InvitationToken returns the public token of an invitation, as sent by email.
func (s *Server) InvitationToken(invitationID string) (string, bool) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	for token, id := range s.state.invitationTokens {
		if id == invitationID {
			return token, true
		}
	}

	return "", false
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a handlerFunc, writing its error as a failure envelope.
func (s *Server) handle(h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			var he *httpError
			if !errors.As(err, &he) {
				s.log.ErrorContext(r.Context(), "handler failed", "error", err)
			}

			writeError(w, err)
		}
	})
}

// authed additionally requires a valid access token.
func (s *Server) authed(h handlerFunc) http.Handler {
	return http_.AuthorizingMiddleware(s.handle(h), s.tokens, func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, errUnauthorized("UNAUTHORIZED", "Invalid or expired token"))
	}, s.log)
}

// currentAccount resolves the authenticated account. Callers must hold state.mu.
func (s *Server) currentAccount(r *http.Request) (*account, error) {
	subject, ok := context_.SubjectFromContext(r.Context())
	if !ok {
		return nil, errUnauthorized("UNAUTHORIZED", "Authentication required")
	}

	acc, ok := s.state.accounts[subject]
	if !ok {
		return nil, errUnauthorized("UNAUTHORIZED", "User no longer exists")
	}

	return acc, nil
}

//nolint:funlen
func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = s.handle(func(http.ResponseWriter, *http.Request) error {
		return errNotFound("Route")
	})
	router.MethodNotAllowedHandler = s.handle(func(http.ResponseWriter, *http.Request) error {
		return &httpError{status: http.StatusMethodNotAllowed, code: "METHOD_NOT_ALLOWED", message: "Method not allowed"}
	})

	api := router.PathPrefix("/api/v1").Subrouter()

	api.Handle("/auth/login", s.handle(s.handleLogin)).Methods(http.MethodPost)
	api.Handle("/auth/register", s.handle(s.handleRegister)).Methods(http.MethodPost)
	api.Handle("/auth/refresh", s.handle(s.handleRefresh)).Methods(http.MethodPost)
	api.Handle("/auth/logout", s.authed(s.handleLogout)).Methods(http.MethodPost)
	api.Handle("/auth/forgot-password", s.handle(s.handleForgotPassword)).Methods(http.MethodPost)
	api.Handle("/auth/reset-password", s.handle(s.handleResetPassword)).Methods(http.MethodPost)
	api.Handle("/auth/verify-email", s.handle(s.handleVerifyEmail)).Methods(http.MethodPost)
	api.Handle("/auth/resend-verification", s.authed(s.handleResendVerification)).Methods(http.MethodPost)
	api.Handle("/auth/change-password", s.authed(s.handleChangePassword)).Methods(http.MethodPost)

	api.Handle("/users/me", s.authed(s.handleGetMe)).Methods(http.MethodGet)
	api.Handle("/users/me", s.authed(s.handleUpdateMe)).Methods(http.MethodPatch)
	api.Handle("/users/me/invitations", s.authed(s.handleReceivedInvitations)).Methods(http.MethodGet)
	api.Handle("/users/me/invitations/sent", s.authed(s.handleSentInvitations)).Methods(http.MethodGet)

	api.Handle("/events", s.handle(s.handleListEvents)).Methods(http.MethodGet)
	api.Handle("/events", s.authed(s.handleCreateEvent)).Methods(http.MethodPost)
	api.Handle("/events/my", s.authed(s.handleMyEvents)).Methods(http.MethodGet)
	api.Handle("/events/attending", s.authed(s.handleAttendingEvents)).Methods(http.MethodGet)
	api.Handle("/events/upcoming", s.handle(s.handleUpcomingEvents)).Methods(http.MethodGet)
	api.Handle("/events/search", s.handle(s.handleSearchEvents)).Methods(http.MethodGet)
	api.Handle("/events/{id}", s.handle(s.handleGetEvent)).Methods(http.MethodGet)
	api.Handle("/events/{id}", s.authed(s.handleUpdateEvent)).Methods(http.MethodPatch)
	api.Handle("/events/{id}", s.authed(s.handleDeleteEvent)).Methods(http.MethodDelete)
	api.Handle("/events/{id}/publish", s.authed(s.handlePublishEvent)).Methods(http.MethodPost)
	api.Handle("/events/{id}/cancel", s.authed(s.handleCancelEvent)).Methods(http.MethodPost)
	api.Handle("/events/{id}/attendees", s.authed(s.handleListAttendees)).Methods(http.MethodGet)
	api.Handle("/events/{id}/attendees/{attendeeId}/check-in", s.authed(s.handleCheckIn)).Methods(http.MethodPost)
	api.Handle("/events/{id}/register", s.authed(s.handleRegisterForEvent)).Methods(http.MethodPost)
	api.Handle("/events/{id}/register", s.authed(s.handleUnregisterFromEvent)).Methods(http.MethodDelete)
	api.Handle("/events/{id}/invitations", s.authed(s.handleSendInvitations)).Methods(http.MethodPost)
	api.Handle("/events/{id}/posts", s.handle(s.handleListPosts)).Methods(http.MethodGet)
	api.Handle("/events/{id}/posts", s.authed(s.handleCreatePost)).Methods(http.MethodPost)

	api.Handle("/invitations", s.authed(s.handleListInvitations)).Methods(http.MethodGet)
	api.Handle("/invitations", s.authed(s.handleCreateInvitation)).Methods(http.MethodPost)
	api.Handle("/invitations/pending/count", s.authed(s.handlePendingCount)).Methods(http.MethodGet)
	api.Handle("/invitations/token/{token}", s.handle(s.handleGetInvitationByToken)).Methods(http.MethodGet)
	api.Handle("/invitations/token/{token}/respond", s.handle(s.handleRespondByToken)).Methods(http.MethodPost)
	api.Handle("/invitations/{id}", s.authed(s.handleGetInvitation)).Methods(http.MethodGet)
	api.Handle("/invitations/{id}", s.authed(s.handleCancelInvitation)).Methods(http.MethodDelete)
	api.Handle("/invitations/{id}/respond", s.authed(s.handleRespondInvitation)).Methods(http.MethodPut)
	api.Handle("/invitations/{id}/resend", s.authed(s.handleResendInvitation)).Methods(http.MethodPost)

	api.Handle("/posts/{id}", s.handle(s.handleGetPost)).Methods(http.MethodGet)
	api.Handle("/posts/{id}", s.authed(s.handleUpdatePost)).Methods(http.MethodPut)
	api.Handle("/posts/{id}", s.authed(s.handleDeletePost)).Methods(http.MethodDelete)
	api.Handle("/posts/{id}/pin", s.authed(s.handlePinPost)).Methods(http.MethodPost)
	api.Handle("/posts/{id}/pin", s.authed(s.handleUnpinPost)).Methods(http.MethodDelete)

	return router
}
