package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/boxlabs/storagebox/internal/auth/domain"
	"github.com/boxlabs/storagebox/internal/auth/store"
	"github.com/boxlabs/storagebox/pkg/cryptox"
	"github.com/boxlabs/storagebox/pkg/jwtx"
	"github.com/boxlabs/storagebox/pkg/slogx"
)

var (
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrAuthenticationFailed covers every way a presented token can fail
	// verification: bad signature, wrong algorithm, wrong issuer, wrong
	// kind, expired, or revoked. Callers that need the underlying cause can
	// unwrap it; boundaries should not leak which check failed.
	ErrAuthenticationFailed = errors.New("authentication_failed")

	// ErrRevocationUnavailable means the denylist could not be consulted.
	// Verification fails closed on it, but it is an infrastructure fault,
	// not a statement about the token.
	ErrRevocationUnavailable = errors.New("revocation_store_unavailable")
)

// TokenService owns the signed-token lifecycle: credential verification,
// issuance, verification against the revocation denylist, refresh rotation
// and logout.
type TokenService struct {
	Codec       *jwtx.Codec
	Store       store.Store
	Revocations store.RevokedTokens
	Issuer      string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
}

// Authenticate verifies a username/password pair and issues a fresh token
// pair. A missing user and a wrong password return distinct errors; the HTTP
// layer collapses both to one response so the distinction never reaches
// clients.
func (s *TokenService) Authenticate(
	ctx context.Context,
	username, password string,
) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("password verification failed", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(u, time.Now())
}

// VerifyToken decodes a token and runs the full verification chain:
// signature, issuer, kind, expiry, then the revocation denylist. The order
// matters only for error reporting; a token must pass every check.
//
// A denylist lookup failure is returned as ErrRevocationUnavailable rather
// than a verification failure, and the token is NOT accepted.
func (s *TokenService) VerifyToken(
	ctx context.Context,
	token string,
	kind jwtx.TokenKind,
) (jwtx.Claims, error) {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	if err := claims.ValidateIssuer(s.Issuer); err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if err := claims.ValidateKind(kind); err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if err := claims.ValidateExpiry(time.Now()); err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	revoked, err := s.Revocations.Exists(ctx, claims.ID)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	if revoked {
		return jwtx.Claims{}, fmt.Errorf("%w: token revoked", ErrAuthenticationFailed)
	}

	return claims, nil
}

// Introspect reports whether an access token is currently valid. It never
// returns an error: any failure, including an unreachable denylist, reads as
// an invalid token.
func (s *TokenService) Introspect(ctx context.Context, token string) bool {
	_, err := s.VerifyToken(ctx, token, jwtx.KindAccess)
	return err == nil
}

// Refresh rotates a refresh token: the presented token is verified, its jti
// is revoked, and a brand-new pair is issued with scope recomputed from the
// user's current roles.
//
// Revocation happens directly after verification, before anything else can
// fail. The presented token is spent even when the subject no longer exists,
// and if the denylist write fails no new tokens exist, so a retry is always
// safe.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.VerifyToken(ctx, refreshToken, jwtx.KindRefresh)
	if err != nil {
		return nil, err
	}

	if err := s.Revocations.Insert(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}

	u, err := s.Store.Users().GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.issuePair(u, time.Now())
}

// Logout revokes the presented access token. A token that fails verification
// is already unusable, so that case is treated as success; only a denylist
// write failure is reported, since then a valid token would remain live.
func (s *TokenService) Logout(ctx context.Context, token string) error {
	l := slogx.FromContext(ctx)

	claims, err := s.VerifyToken(ctx, token, jwtx.KindAccess)
	if err != nil {
		if errors.Is(err, ErrRevocationUnavailable) {
			return err
		}
		l.Debug("logout with unverifiable token", slog.Any("error", err))
		return nil
	}

	if err := s.Revocations.Insert(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}

	return nil
}

func (s *TokenService) issuePair(u domain.User, now time.Time) (*domain.TokenPair, error) {
	scope := buildScope(u)

	access, err := s.Codec.Encode(jwtx.NewClaims(
		u.Username, s.Issuer, scope, jwtx.KindAccess, s.AccessTTL, now,
	))
	if err != nil {
		return nil, err
	}

	refresh, err := s.Codec.Encode(jwtx.NewClaims(
		u.Username, s.Issuer, scope, jwtx.KindRefresh, s.RefreshTTL, now,
	))
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// buildScope flattens the user's grants into a space-joined string: each
// role name followed by that role's permission names, in the order the store
// returns them. Names appearing under several roles repeat; consumers treat
// scope as a set, so repeats are harmless and keeping them makes the output
// a pure function of the role graph.
func buildScope(u domain.User) string {
	var parts []string
	for _, role := range u.Roles {
		parts = append(parts, role.Name)
		for _, p := range role.Permissions {
			parts = append(parts, p.Name)
		}
	}
	return strings.Join(parts, " ")
}
