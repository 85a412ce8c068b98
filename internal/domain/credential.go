package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoRefreshToken is returned when a refresh is requested but no refresh token is stored.
	ErrNoRefreshToken = errors.New("no refresh token available")
	// ErrIncompleteCredentials is returned when a token response lacks one half of the pair.
	ErrIncompleteCredentials = errors.New("incomplete credential pair")
	// ErrNoExpiry is returned when an access token carries no readable exp claim.
	ErrNoExpiry = errors.New("access token has no expiry")
)

// CredentialPair is the unit of persisted authentication state.
type CredentialPair struct {
	AccessToken  string `json:"accessToken"`  // Short-lived bearer credential
	RefreshToken string `json:"refreshToken"` // Exchanged for a new pair on refresh
}

// Complete reports whether both halves of the pair are present.
func (p CredentialPair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// AccessExpiry returns the exp claim of the access token. The token signature is
// NOT verified; the value is informational and must not drive authorization.
func (p CredentialPair) AccessExpiry() (time.Time, error) {
	if p.AccessToken == "" {
		return time.Time{}, ErrNoExpiry
	}

	claims := jwt.RegisteredClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(p.AccessToken, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parse access token: %w", err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}

	return claims.ExpiresAt.Time, nil
}

// TokenPayload is the token object returned by login and refresh endpoints. The backend
// has shipped both a flat camelCase shape and a nested "tokens" object with snake_case
// keys, so both are accepted.
type TokenPayload struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int64         `json:"expiresIn,omitempty"`
	TokenType    string        `json:"tokenType,omitempty"`
	Tokens       *NestedTokens `json:"tokens,omitempty"`
}

// NestedTokens is the nested token object variant.
type NestedTokens struct {
	AccessToken       string `json:"accessToken"`
	RefreshToken      string `json:"refreshToken"`
	AccessTokenSnake  string `json:"access_token"`
	RefreshTokenSnake string `json:"refresh_token"`
}

// Pair extracts the credential pair from whichever shape the payload uses.
// Returns ErrIncompleteCredentials unless both tokens are present.
func (t TokenPayload) Pair() (CredentialPair, error) {
	pair := CredentialPair{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}

	if !pair.Complete() && t.Tokens != nil {
		pair = CredentialPair{
			AccessToken:  firstNonEmpty(t.Tokens.AccessToken, t.Tokens.AccessTokenSnake),
			RefreshToken: firstNonEmpty(t.Tokens.RefreshToken, t.Tokens.RefreshTokenSnake),
		}
	}

	if !pair.Complete() {
		return CredentialPair{}, ErrIncompleteCredentials
	}

	return pair, nil
}

// RefreshRequest is the body sent to the refresh endpoint.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
