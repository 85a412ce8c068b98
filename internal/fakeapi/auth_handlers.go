package fakeapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mkrupp/luxclient/internal/domain"
)

const minPasswordLength = 8

// AddUser creates a verified account directly, bypassing registration.
func (s *Server) AddUser(email, password, name string) (domain.User, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.state.createAccount(email, password, name, "")
	if err != nil {
		return domain.User{}, err
	}

	acc.user.IsVerified = true

	return acc.user, nil
}

// issuePair mints a new access token and an opaque refresh token. Callers must hold state.mu.
func (s *Server) issuePair(userID string) (domain.TokenPayload, error) {
	access, err := s.tokens.issue(userID)
	if err != nil {
		return domain.TokenPayload{}, fmt.Errorf("issue access token: %w", err)
	}

	refresh := newOpaqueToken("rt")
	s.state.refreshTokens[refresh] = userID

	return domain.TokenPayload{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.tokens.expiresIn(),
		TokenType:    "Bearer",
	}, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req domain.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, ok := s.state.accountByEmail(req.Email)
	if !ok || !acc.checkPassword(req.Password) {
		return errUnauthorized("INVALID_CREDENTIALS", "Invalid email or password")
	}

	tokens, err := s.issuePair(acc.user.ID)
	if err != nil {
		return err
	}

	acc.user.LastLoginAt = timestamp()

	writeData(w, http.StatusOK, domain.LoginResponse{User: acc.user, TokenPayload: tokens}, "Login successful")

	return nil
}

func validateRegistration(req domain.RegisterRequest) map[string][]string {
	details := map[string][]string{}

	if !strings.Contains(req.Email, "@") {
		details["email"] = append(details["email"], "Invalid email address")
	}

	if len(req.Password) < minPasswordLength {
		details["password"] = append(details["password"], fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	if strings.TrimSpace(req.Name) == "" {
		details["name"] = append(details["name"], "Name is required")
	}

	if !req.AgreeToTerms {
		details["agreeToTerms"] = append(details["agreeToTerms"], "You must agree to the terms")
	}

	return details
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var req domain.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	if details := validateRegistration(req); len(details) > 0 {
		return errValidation(details)
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.state.createAccount(req.Email, req.Password, strings.TrimSpace(req.Name), req.Phone)
	if err != nil {
		return err
	}

	tokens, err := s.issuePair(acc.user.ID)
	if err != nil {
		return err
	}

	const message = "Registration successful. Please verify your email."

	writeData(w, http.StatusCreated, domain.RegisterResponse{
		User:         acc.user,
		Message:      message,
		TokenPayload: tokens,
	}, message)

	return nil
}

// handleRefresh rotates the pair: the presented refresh token is consumed and can
// never be used again.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) error {
	s.refreshCalls.Add(1)

	var req domain.RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	userID, ok := s.state.refreshTokens[req.RefreshToken]
	if !ok || req.RefreshToken == "" {
		return errUnauthorized("INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	}

	delete(s.state.refreshTokens, req.RefreshToken)

	tokens, err := s.issuePair(userID)
	if err != nil {
		return err
	}

	writeData(w, http.StatusOK, tokens, "")

	return nil
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	s.state.revokeRefreshTokens(acc.user.ID)

	writeMessage(w, "Logged out successfully")

	return nil
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) error {
	var req domain.ForgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if acc, ok := s.state.accountByEmail(req.Email); ok {
		s.state.resetTokens[newOpaqueToken("pr")] = acc.user.ID
	}

	writeMessage(w, "If an account exists for this email, a reset link has been sent")

	return nil
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) error {
	var req domain.ResetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	if len(req.Password) < minPasswordLength {
		return errValidation(map[string][]string{
			"password": {fmt.Sprintf("Password must be at least %d characters", minPasswordLength)},
		})
	}

	if req.Password != req.ConfirmPassword {
		return errValidation(map[string][]string{"confirmPassword": {"Passwords do not match"}})
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	userID, ok := s.state.resetTokens[req.Token]
	if !ok {
		return errBadRequest("INVALID_TOKEN", "Invalid or expired reset token")
	}

	delete(s.state.resetTokens, req.Token)

	if acc, ok := s.state.accounts[userID]; ok {
		acc.passwordHash = hashPassword(req.Password)
		acc.user.UpdatedAt = timestamp()
	}

	s.state.revokeRefreshTokens(userID)

	writeMessage(w, "Password has been reset")

	return nil
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) error {
	var req domain.VerifyEmailRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	userID, ok := s.state.verifyTokens[req.Token]
	if !ok {
		return errBadRequest("INVALID_TOKEN", "Invalid or expired verification token")
	}

	delete(s.state.verifyTokens, req.Token)

	if acc, ok := s.state.accounts[userID]; ok {
		acc.user.IsVerified = true
		acc.user.UpdatedAt = timestamp()
	}

	writeMessage(w, "Email verified successfully")

	return nil
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	if acc.user.IsVerified {
		return errBadRequest("ALREADY_VERIFIED", "Email is already verified")
	}

	for token, owner := range s.state.verifyTokens {
		if owner == acc.user.ID {
			delete(s.state.verifyTokens, token)
		}
	}

	s.state.verifyTokens[newOpaqueToken("vt")] = acc.user.ID

	writeMessage(w, "Verification email sent")

	return nil
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) error {
	var req domain.ChangePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	if !acc.checkPassword(req.CurrentPassword) {
		return errValidation(map[string][]string{"currentPassword": {"Current password is incorrect"}})
	}

	if len(req.NewPassword) < minPasswordLength {
		return errValidation(map[string][]string{
			"newPassword": {fmt.Sprintf("Password must be at least %d characters", minPasswordLength)},
		})
	}

	acc.passwordHash = hashPassword(req.NewPassword)
	acc.user.UpdatedAt = timestamp()

	writeMessage(w, "Password changed successfully")

	return nil
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	writeData(w, http.StatusOK, acc.user, "")

	return nil
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) error {
	var req domain.UpdateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	if req.Name != "" {
		acc.user.Name = req.Name
	}

	if req.Phone != "" {
		acc.user.Phone = req.Phone
	}

	if req.ProfileImage != "" {
		if !strings.HasPrefix(req.ProfileImage, "data:image/") && !strings.HasPrefix(req.ProfileImage, "http") {
			return errValidation(map[string][]string{"profileImage": {"Profile image must be a URL or an image data URI"}})
		}

		acc.user.ProfileImage = req.ProfileImage
	}

	if req.Preferences != nil {
		acc.user.Preferences = *req.Preferences
	}

	acc.user.UpdatedAt = timestamp()

	writeData(w, http.StatusOK, acc.user, "Profile updated")

	return nil
}
