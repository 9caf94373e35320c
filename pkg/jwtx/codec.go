package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed      = errors.New("jwtx: malformed token")
	ErrBadSignature   = errors.New("jwtx: invalid signature")
	ErrUnsupportedAlg = errors.New("jwtx: unsupported algorithm")

	ErrIssuer  = errors.New("jwtx: issuer mismatch")
	ErrKind    = errors.New("jwtx: token kind mismatch")
	ErrExpired = errors.New("jwtx: token expired")
)

// Codec encodes and decodes claim sets to and from compact signed strings
// using a symmetric HMAC-SHA256 key fixed at construction time.
//
// Decode only parses and checks the signature; expiry, issuer and kind are
// the caller's responsibility. Keeping those out of the codec keeps it a
// pure, reusable function of its inputs.
type Codec struct {
	key []byte
}

// NewCodec creates a codec around the given signing key. The key is
// read-only for the lifetime of the codec, so concurrent use needs no
// synchronization.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) == 0 {
		return nil, errors.New("jwtx: signing key must not be empty")
	}
	return &Codec{key: key}, nil
}

// Encode signs the claim set and returns the compact serialized token.
func (c *Codec) Encode(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Decode parses a compact token and verifies its MAC. The header algorithm
// must be exactly HS256; a token declaring any other algorithm is rejected
// with ErrUnsupportedAlg before the signature is even checked, since
// accepting an attacker-chosen algorithm is a forgery vector.
func (c *Codec) Decode(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok ||
			t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrUnsupportedAlg
		}
		return c.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedAlg):
			return Claims{}, ErrUnsupportedAlg
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrBadSignature
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrBadSignature
	}

	return *claims, nil
}
