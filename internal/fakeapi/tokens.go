package fakeapi

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	http_ "github.com/mkrupp/luxclient/internal/infra/transport/http"
)

// accessClaims are the claims of an access token. Epoch lets the server revoke every
// outstanding access token at once.
type accessClaims struct {
	jwt.RegisteredClaims
	Epoch int64 `json:"epoch"`
}

// tokenIssuer signs and validates HS256 access tokens.
type tokenIssuer struct {
	key   []byte
	ttl   time.Duration
	epoch atomic.Int64
}

var _ http_.TokenValidator = (*tokenIssuer)(nil)

func newTokenIssuer(key string, ttl time.Duration) *tokenIssuer {
	return &tokenIssuer{key: []byte(key), ttl: ttl}
}

// issue returns a signed access token for subject. Every token carries a unique ID, so
// two tokens issued for the same subject within one second still differ.
func (ti *tokenIssuer) issue(subject string) (string, error) {
	now := time.Now()

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "luxmock",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
			ID:        uuid.NewString(),
		},
		Epoch: ti.epoch.Load(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ValidateAccessToken implements http_.TokenValidator.
func (ti *tokenIssuer) ValidateAccessToken(_ context.Context, token string) (string, bool, error) {
	claims := &accessClaims{}

	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return ti.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	); err != nil {
		return "", false, nil
	}

	if claims.Epoch != ti.epoch.Load() {
		return "", false, nil
	}

	return claims.Subject, true, nil
}

// revokeAll invalidates every access token issued so far.
func (ti *tokenIssuer) revokeAll() {
	ti.epoch.Add(1)
}

func (ti *tokenIssuer) expiresIn() int64 {
	return int64(ti.ttl / time.Second)
}

func newOpaqueToken(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
