// Package auth provides credential hashing and session token utilities.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/slatepad/slatepad/internal/model"
)

// DefaultSessionTTL is the fixed validity window for session tokens.
const DefaultSessionTTL = 24 * time.Hour

// ErrInvalidToken indicates the token failed signature verification,
// is malformed, or has expired. The causes are deliberately not
// distinguished to callers.
var ErrInvalidToken = errors.New("invalid or expired token")

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	UserID     string     `json:"user_id"`
	TenantID   string     `json:"tenant_id"`
	Role       model.Role `json:"role"`
	TenantSlug string     `json:"tenant_slug"`
	jwt.RegisteredClaims
}

// TokenManager mints and verifies stateless session tokens.
// Tokens are signed with a process-wide symmetric secret; there is no
// server-side session table or revocation list.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager for the given secret and TTL.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// TTL returns the configured token validity window.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a signed session token for the given user and tenant.
func (m *TokenManager) Issue(user *model.User, tenant *model.Tenant) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		UserID:     user.ID,
		TenantID:   tenant.ID,
		Role:       user.Role,
		TenantSlug: tenant.Slug,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a raw token and returns the asserted Caller.
// Any failure (bad signature, wrong algorithm, expiry, malformed token)
// yields ErrInvalidToken.
func (m *TokenManager) Verify(raw string) (*Caller, error) {
	token, err := jwt.ParseWithClaims(
		raw,
		&SessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secret, nil
		},
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &Caller{
		UserID:     claims.UserID,
		TenantID:   claims.TenantID,
		Role:       claims.Role,
		TenantSlug: claims.TenantSlug,
	}, nil
}
