package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boxlabs/storagebox/internal/auth/domain"
	"github.com/boxlabs/storagebox/internal/auth/store"
	"github.com/boxlabs/storagebox/internal/auth/store/drivers/sqlite"
	"github.com/boxlabs/storagebox/pkg/cryptox"
	"github.com/boxlabs/storagebox/pkg/jwtx"
)

const (
	testIssuer   = "storage-service"
	testPassword = "correct horse battery staple"
)

func newTokenService(t *testing.T) *TokenService {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	ctx := context.Background()
	require.NoError(t, s.Permissions().CreatePermission(ctx, domain.Permission{Name: "READ"}))
	require.NoError(t, s.Roles().CreateRole(ctx, domain.Role{
		Name:        "USER",
		Permissions: []domain.Permission{{Name: "READ"}},
	}))

	hash, err := cryptox.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, s.Users().CreateUser(ctx, domain.User{
		ID:           "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Username:     "alice",
		PasswordHash: hash,
		Roles:        []domain.Role{{Name: "USER"}},
	}))
	require.NoError(t, s.Users().CreateUser(ctx, domain.User{
		ID:           "01ARZ3NDEKTSV4RRFFQ69G5FB0",
		Username:     "bob",
		PasswordHash: hash,
	}))

	codec, err := jwtx.NewCodec([]byte("test-signing-key"))
	require.NoError(t, err)

	return &TokenService{
		Codec:       codec,
		Store:       s,
		Revocations: s.RevokedTokens(),
		Issuer:      testIssuer,
		AccessTTL:   jwtx.DefaultAccessTokenTTL,
		RefreshTTL:  jwtx.DefaultRefreshTokenTTL,
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTokenService(t)
	ctx := context.Background()

	t.Run("valid credentials issue a bearer pair", func(t *testing.T) {
		pair, err := svc.Authenticate(ctx, "alice", testPassword)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, svc.AccessTTL, pair.ExpiresIn)

		claims, err := svc.VerifyToken(ctx, pair.AccessToken, jwtx.KindAccess)
		require.NoError(t, err)
		require.Equal(t, "alice", claims.Subject)
		require.Equal(t, "USER READ", claims.Scope)
	})

	t.Run("access and refresh carry distinct jtis", func(t *testing.T) {
		pair, err := svc.Authenticate(ctx, "alice", testPassword)
		require.NoError(t, err)

		access, err := svc.Codec.Decode(pair.AccessToken)
		require.NoError(t, err)
		refresh, err := svc.Codec.Decode(pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, access.ID, refresh.ID)
	})

	t.Run("user without roles gets empty scope", func(t *testing.T) {
		pair, err := svc.Authenticate(ctx, "bob", testPassword)
		require.NoError(t, err)

		claims, err := svc.Codec.Decode(pair.AccessToken)
		require.NoError(t, err)
		require.Empty(t, claims.Scope)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "mallory", testPassword)
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestVerifyToken(t *testing.T) {
	svc := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.Authenticate(ctx, "alice", testPassword)
	require.NoError(t, err)

	t.Run("access token does not pass as refresh", func(t *testing.T) {
		_, err := svc.VerifyToken(ctx, pair.AccessToken, jwtx.KindRefresh)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("refresh token does not pass as access", func(t *testing.T) {
		_, err := svc.VerifyToken(ctx, pair.RefreshToken, jwtx.KindAccess)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.VerifyToken(ctx, "not.a.token", jwtx.KindAccess)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("token from another issuer", func(t *testing.T) {
		other := *svc
		other.Issuer = "someone-else"
		foreign, err := other.Authenticate(ctx, "alice", testPassword)
		require.NoError(t, err)

		_, err = svc.VerifyToken(ctx, foreign.AccessToken, jwtx.KindAccess)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("expired token", func(t *testing.T) {
		short := *svc
		short.AccessTTL = -time.Minute
		stale, err := short.Authenticate(ctx, "alice", testPassword)
		require.NoError(t, err)

		_, err = svc.VerifyToken(ctx, stale.AccessToken, jwtx.KindAccess)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})
}

func TestIntrospect(t *testing.T) {
	svc := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.Authenticate(ctx, "alice", testPassword)
	require.NoError(t, err)

	require.True(t, svc.Introspect(ctx, pair.AccessToken))
	require.False(t, svc.Introspect(ctx, pair.RefreshToken))
	require.False(t, svc.Introspect(ctx, "garbage"))
}

func TestRefresh(t *testing.T) {
	svc := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.Authenticate(ctx, "alice", testPassword)
	require.NoError(t, err)

	t.Run("rotation issues a usable new pair", func(t *testing.T) {
		rotated, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
		require.True(t, svc.Introspect(ctx, rotated.AccessToken))

		_, err = svc.VerifyToken(ctx, rotated.RefreshToken, jwtx.KindRefresh)
		require.NoError(t, err)
	})

	t.Run("old refresh token is single use", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("access token cannot be used to refresh", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("deleted subject cannot refresh and the token is spent", func(t *testing.T) {
		bob, err := svc.Authenticate(ctx, "bob", testPassword)
		require.NoError(t, err)
		require.NoError(t, svc.Store.Users().DeleteUser(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FB0"))

		_, err = svc.Refresh(ctx, bob.RefreshToken)
		require.ErrorIs(t, err, ErrUserNotFound)

		// The presented refresh token must be revoked even though no new
		// pair was issued.
		claims, err := svc.Codec.Decode(bob.RefreshToken)
		require.NoError(t, err)
		revoked, err := svc.Revocations.Exists(ctx, claims.ID)
		require.NoError(t, err)
		require.True(t, revoked)
	})
}

func TestLogout(t *testing.T) {
	svc := newTokenService(t)
	ctx := context.Background()

	t.Run("revokes the access token", func(t *testing.T) {
		pair, err := svc.Authenticate(ctx, "alice", testPassword)
		require.NoError(t, err)
		require.True(t, svc.Introspect(ctx, pair.AccessToken))

		require.NoError(t, svc.Logout(ctx, pair.AccessToken))
		require.False(t, svc.Introspect(ctx, pair.AccessToken))
	})

	t.Run("is idempotent", func(t *testing.T) {
		pair, err := svc.Authenticate(ctx, "alice", testPassword)
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, pair.AccessToken))
		require.NoError(t, svc.Logout(ctx, pair.AccessToken))
	})

	t.Run("unverifiable token is not an error", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, "garbage"))
	})
}

// brokenDenylist fails every operation, standing in for an unreachable
// revocation backend.
type brokenDenylist struct{}

var errDown = errors.New("connection refused")

func (brokenDenylist) Insert(context.Context, string, time.Time) error { return errDown }
func (brokenDenylist) Exists(context.Context, string) (bool, error)   { return false, errDown }
func (brokenDenylist) DeleteExpired(context.Context) error            { return errDown }

var _ store.RevokedTokens = brokenDenylist{}

func TestRevocationStoreFailsClosed(t *testing.T) {
	svc := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.Authenticate(ctx, "alice", testPassword)
	require.NoError(t, err)

	svc.Revocations = brokenDenylist{}

	t.Run("verification rejects valid tokens", func(t *testing.T) {
		_, err := svc.VerifyToken(ctx, pair.AccessToken, jwtx.KindAccess)
		require.ErrorIs(t, err, ErrRevocationUnavailable)
		require.NotErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("introspection reads as invalid", func(t *testing.T) {
		require.False(t, svc.Introspect(ctx, pair.AccessToken))
	})

	t.Run("refresh is refused", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrRevocationUnavailable)
	})

	t.Run("logout propagates the failure", func(t *testing.T) {
		err := svc.Logout(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrRevocationUnavailable)
	})
}

func TestBuildScope(t *testing.T) {
	t.Run("role name precedes its permissions", func(t *testing.T) {
		u := domain.User{Roles: []domain.Role{{
			Name:        "USER",
			Permissions: []domain.Permission{{Name: "READ"}, {Name: "WRITE"}},
		}}}
		require.Equal(t, "USER READ WRITE", buildScope(u))
	})

	t.Run("shared permissions repeat per role", func(t *testing.T) {
		u := domain.User{Roles: []domain.Role{
			{Name: "ADMIN", Permissions: []domain.Permission{{Name: "READ"}}},
			{Name: "USER", Permissions: []domain.Permission{{Name: "READ"}}},
		}}
		require.Equal(t, "ADMIN READ USER READ", buildScope(u))
	})

	t.Run("no roles yields empty scope", func(t *testing.T) {
		require.Empty(t, buildScope(domain.User{}))
	})
}
