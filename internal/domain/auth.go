package domain

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	User User `json:"user"`
	TokenPayload
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	Phone            string `json:"phone,omitempty"`
	AgreeToTerms     bool   `json:"agreeToTerms"`
	AgreeToMarketing bool   `json:"agreeToMarketing,omitempty"`
}

// RegisterResponse is the data of a successful registration. Newer backends also
// return tokens so the user is signed in right away.
type RegisterResponse struct {
	User    User   `json:"user"`
	Message string `json:"message,omitempty"`
	TokenPayload
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePasswordRequest is the body of POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// VerifyEmailRequest is the body of POST /auth/verify-email.
type VerifyEmailRequest struct {
	Token string `json:"token"`
}
