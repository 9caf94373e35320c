package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind is the value of the "token_type" claim. Every token carries
// exactly one kind, and verification checks it against the kind the caller
// expects so an access token can never stand in for a refresh token.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Default token TTL constants. Short-lived access tokens, longer refresh
// tokens. Services can override these per-deployment.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the claim set embedded in every signed token.
type Claims struct {
	jwt.RegisteredClaims

	// Scope is the space-joined list of role and permission names granted
	// to the subject at issuance time.
	Scope string `json:"scope,omitempty"`

	// TokenType discriminates access tokens from refresh tokens.
	TokenType TokenKind `json:"token_type"`
}

// NewClaims builds a minimally-correct claim set for the given subject.
func NewClaims(
	subject, issuer, scope string,
	kind TokenKind,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Scope:     scope,
		TokenType: kind,
	}
}

// NewJTI returns a fresh random identifier for the "jti" claim. UUIDv4 gives
// 122 random bits, which makes collisions vanishingly unlikely.
func NewJTI() string {
	return uuid.NewString()
}

// ValidateIssuer checks if the issuer matches the expected value. An empty
// expected issuer rejects every token rather than enforcing nothing, so a
// misconfigured verifier fails closed.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" || c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateKind checks the "token_type" claim against the expected kind.
func (c *Claims) ValidateKind(expected TokenKind) error {
	if c.TokenType != expected {
		return ErrKind
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired. A missing exp claim is
// treated as expired so unbounded tokens are never accepted.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil || !c.ExpiresAt.Time.After(now) {
		return ErrExpired
	}
	return nil
}
