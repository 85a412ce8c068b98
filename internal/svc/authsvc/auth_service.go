package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/luxclient/internal/apiclient"
	"github.com/mkrupp/luxclient/internal/domain"
	"github.com/mkrupp/luxclient/internal/infra/logging"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	ProfileImage ProfileImageConfig `envPrefix:"PROFILE_IMAGE_"`
}

// AuthService wraps the authentication and profile endpoints of the backend.
// It is the only writer of the credential store besides the client's refresher.
type AuthService struct {
	Config AuthConfig
	Client *apiclient.Client
	Log    logging.Logger
}

// NewAuthService creates a new AuthService on top of client.
func NewAuthService(client *apiclient.Client, cfg AuthConfig) *AuthService {
	return &AuthService{
		Config: cfg,
		Client: client,
		Log:    logging.GetLogger("svc.authsvc.auth_service"),
	}
}

// storePair persists the tokens of a login or registration response.
func (s *AuthService) storePair(ctx context.Context, tokens domain.TokenPayload) error {
	pair, err := tokens.Pair()
	if err != nil {
		return fmt.Errorf("token pair: %w", err)
	}

	if err := s.Client.Store().SetPair(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}

	return nil
}

// Login authenticates with email and password and stores the returned credential pair.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (_ domain.LoginResponse, err error) {
	log := s.Log.With(logging.Group("user", "email", req.Email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	env, err := apiclient.Post[domain.LoginResponse](ctx, s.Client, "/auth/login", req)
	if err != nil {
		return domain.LoginResponse{}, fmt.Errorf("login: %w", err)
	}

	if err := s.storePair(ctx, env.Data.TokenPayload); err != nil {
		return domain.LoginResponse{}, err
	}

	return env.Data, nil
}

// Register creates an account. When the backend signs the user in right away, the
// returned tokens are stored.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (_ domain.RegisterResponse, err error) {
	log := s.Log.With(logging.Group("user", "email", req.Email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	env, err := apiclient.Post[domain.RegisterResponse](ctx, s.Client, "/auth/register", req)
	if err != nil {
		return domain.RegisterResponse{}, fmt.Errorf("register: %w", err)
	}

	if _, pairErr := env.Data.Pair(); pairErr == nil {
		if err := s.storePair(ctx, env.Data.TokenPayload); err != nil {
			return domain.RegisterResponse{}, err
		}
	}

	return env.Data, nil
}

// Logout ends the session on the backend. The local credentials are cleared even
// when the backend call fails.
func (s *AuthService) Logout(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			s.Log.WarnContext(ctx, "logout failed", "error", err)
		} else {
			s.Log.DebugContext(ctx, "logged out")
		}
	}()

	_, reqErr := s.Client.Post(ctx, "/auth/logout", apiclient.RequestOptions{})
	if reqErr != nil {
		reqErr = fmt.Errorf("logout: %w", reqErr)
	}

	if clearErr := s.Client.Store().Clear(ctx); clearErr != nil {
		return errors.Join(reqErr, fmt.Errorf("clear tokens: %w", clearErr))
	}

	return reqErr
}

// ForgotPassword requests a password reset email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return s.acknowledge(ctx, "/auth/forgot-password", domain.ForgotPasswordRequest{Email: email})
}

// ResetPassword sets a new password using the token from the reset email.
func (s *AuthService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) (string, error) {
	return s.acknowledge(ctx, "/auth/reset-password", req)
}

// VerifyEmail confirms the email address using the token from the verification email.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (string, error) {
	return s.acknowledge(ctx, "/auth/verify-email", domain.VerifyEmailRequest{Token: token})
}

// ResendVerificationEmail asks the backend to send a new verification email.
func (s *AuthService) ResendVerificationEmail(ctx context.Context) (string, error) {
	return s.acknowledge(ctx, "/auth/resend-verification", nil)
}

// ChangePassword changes the password of the signed-in user.
func (s *AuthService) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) (string, error) {
	return s.acknowledge(ctx, "/auth/change-password", req)
}

// acknowledge posts body to path and returns the confirmation message.
func (s *AuthService) acknowledge(ctx context.Context, path string, body any) (string, error) {
	env, err := apiclient.Post[domain.MessageResponse](ctx, s.Client, path, body)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", path, err)
	}

	if env.Data.Message != "" {
		return env.Data.Message, nil
	}

	return env.Message, nil
}

// CurrentUser returns the signed-in user.
func (s *AuthService) CurrentUser(ctx context.Context) (domain.User, error) {
	env, err := apiclient.Get[domain.User](ctx, s.Client, "/users/me", nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("get current user: %w", err)
	}

	return env.Data, nil
}

// UpdateProfile applies a partial update to the signed-in user.
func (s *AuthService) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (domain.User, error) {
	env, err := apiclient.Patch[domain.User](ctx, s.Client, "/users/me", req)
	if err != nil {
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}

	return env.Data, nil
}

// RefreshTokens rotates the credential pair, joining a refresh already in flight.
func (s *AuthService) RefreshTokens(ctx context.Context) error {
	if err := s.Client.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh tokens: %w", err)
	}

	return nil
}

// IsAuthenticated reports whether a complete credential pair is stored. It does not
// check the tokens with the backend.
func (s *AuthService) IsAuthenticated(ctx context.Context) (bool, error) {
	ok, err := s.Client.Store().HasPair(ctx)
	if err != nil {
		return false, fmt.Errorf("has pair: %w", err)
	}

	return ok, nil
}

// AccessExpiry returns the expiry of the stored access token, for display only.
func (s *AuthService) AccessExpiry(ctx context.Context) (time.Time, error) {
	access, _, err := s.Client.Store().GetAccess(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("get access token: %w", err)
	}

	expiry, err := domain.CredentialPair{AccessToken: access}.AccessExpiry()
	if err != nil {
		return time.Time{}, fmt.Errorf("access expiry: %w", err)
	}

	return expiry, nil
}

// Close releases the credential store.
func (s *AuthService) Close() error {
	if err := s.Client.Store().Close(); err != nil {
		return fmt.Errorf("close credential store: %w", err)
	}

	return nil
}
