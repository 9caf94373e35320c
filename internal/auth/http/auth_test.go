package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boxlabs/storagebox/internal/auth/service"
	"github.com/boxlabs/storagebox/internal/auth/store/drivers/sqlite"
	"github.com/boxlabs/storagebox/pkg/jwtx"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	boot := &service.BootstrapService{
		Store:         s,
		AdminUsername: "admin",
		AdminPassword: "admin-password",
	}
	require.NoError(t, boot.Run(context.Background()))

	codec, err := jwtx.NewCodec([]byte("test-signing-key"))
	require.NoError(t, err)

	tokenSvc := &service.TokenService{
		Codec:       codec,
		Store:       s,
		Revocations: s.RevokedTokens(),
		Issuer:      "storage-service",
		AccessTTL:   jwtx.DefaultAccessTokenTTL,
		RefreshTTL:  jwtx.DefaultRefreshTokenTTL,
	}

	r := NewRouter("test", s, slog.New(slog.DiscardHandler))
	r.TokenService = tokenSvc
	r.UserService = &service.UserService{Store: s}
	r.RoleService = &service.RoleService{Store: s}
	r.PermissionService = &service.PermissionService{Store: s}
	r.CategoryService = &service.CategoryService{Store: s}
	r.FeeService = &service.FeeService{Store: s}
	r.ApplyRoutes()
	return r
}

func doLogin(t *testing.T, router *Router, username, password string) (tokenResponse, int) {
	t.Helper()

	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var pair tokenResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&pair))
	}
	return pair, rec.Code
}

func doIntrospect(t *testing.T, router *Router, token string) IntrospectionResponse {
	t.Helper()

	form := url.Values{"token": {token}}
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/introspect",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp IntrospectionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("valid credentials", func(t *testing.T) {
		pair, code := doLogin(t, router, "admin", "admin-password")
		require.Equal(t, http.StatusOK, code)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Greater(t, pair.ExpiresIn, int64(0))
	})

	t.Run("wrong password and unknown user look identical", func(t *testing.T) {
		_, badPass := doLogin(t, router, "admin", "nope")
		_, badUser := doLogin(t, router, "ghost", "nope")
		require.Equal(t, http.StatusUnauthorized, badPass)
		require.Equal(t, http.StatusUnauthorized, badUser)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, code := doLogin(t, router, "admin", "")
		require.Equal(t, http.StatusBadRequest, code)
	})
}

func TestIntrospectEndpoint(t *testing.T) {
	router := newTestRouter(t)
	pair, code := doLogin(t, router, "admin", "admin-password")
	require.Equal(t, http.StatusOK, code)

	t.Run("live access token is active", func(t *testing.T) {
		resp := doIntrospect(t, router, pair.AccessToken)
		require.True(t, resp.Active)
		require.Equal(t, "admin", resp.Username)
		require.Equal(t, "ADMIN DELETE GET UPDATE", resp.Scope)
	})

	t.Run("refresh token is not active here", func(t *testing.T) {
		resp := doIntrospect(t, router, pair.RefreshToken)
		require.False(t, resp.Active)
		require.Empty(t, resp.Username)
	})

	t.Run("garbage token is not active", func(t *testing.T) {
		require.False(t, doIntrospect(t, router, "garbage").Active)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	router := newTestRouter(t)
	pair, code := doLogin(t, router, "admin", "admin-password")
	require.Equal(t, http.StatusOK, code)

	refresh := func(token string) (tokenResponse, int) {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh",
			strings.NewReader(`{"refresh_token":"`+token+`"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var out tokenResponse
		if rec.Code == http.StatusOK {
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		}
		return out, rec.Code
	}

	rotated, code := refresh(pair.RefreshToken)
	require.Equal(t, http.StatusOK, code)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	require.True(t, doIntrospect(t, router, rotated.AccessToken).Active)

	t.Run("old refresh token is spent", func(t *testing.T) {
		_, code := refresh(pair.RefreshToken)
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("access token is refused", func(t *testing.T) {
		_, code := refresh(pair.AccessToken)
		require.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	router := newTestRouter(t)
	pair, code := doLogin(t, router, "admin", "admin-password")
	require.Equal(t, http.StatusOK, code)

	logout := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	require.True(t, doIntrospect(t, router, pair.AccessToken).Active)
	require.Equal(t, http.StatusNoContent, logout(pair.AccessToken))
	require.False(t, doIntrospect(t, router, pair.AccessToken).Active)

	t.Run("repeat logout still succeeds", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, logout(pair.AccessToken))
	})
}

func TestRegistrationEndpoint(t *testing.T) {
	router := newTestRouter(t)

	register := func(username string) (userResponse, int) {
		body := `{"username":"` + username + `","password":"hunter2hunter2"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var u userResponse
		if rec.Code == http.StatusCreated {
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&u))
		}
		return u, rec.Code
	}

	t.Run("is open and grants the default role", func(t *testing.T) {
		u, code := register("carol")
		require.Equal(t, http.StatusCreated, code)
		require.Equal(t, "carol", u.Username)
		require.Equal(t, []string{service.UserRoleName}, u.Roles)
	})

	t.Run("registered account can log in", func(t *testing.T) {
		pair, code := doLogin(t, router, "carol", "hunter2hunter2")
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "USER GET", doIntrospect(t, router, pair.AccessToken).Scope)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, code := register("carol")
		require.Equal(t, http.StatusConflict, code)
	})
}

func TestUserEndpointScopes(t *testing.T) {
	router := newTestRouter(t)

	// A registered account carries the USER role, whose only grant is GET.
	plain, err := router.UserService.CreateUser(context.Background(),
		"plain", "", "plain-password", nil)
	require.NoError(t, err)

	adminPair, code := doLogin(t, router, "admin", "admin-password")
	require.Equal(t, http.StatusOK, code)
	plainPair, code := doLogin(t, router, "plain", "plain-password")
	require.Equal(t, http.StatusOK, code)

	call := func(method, path, token string) int {
		req := httptest.NewRequest(method, path, strings.NewReader("{}"))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("listing is admin only", func(t *testing.T) {
		require.Equal(t, http.StatusOK, call(http.MethodGet, "/v1/users", adminPair.AccessToken))
		require.Equal(t, http.StatusForbidden, call(http.MethodGet, "/v1/users", plainPair.AccessToken))
		require.Equal(t, http.StatusUnauthorized, call(http.MethodGet, "/v1/users", ""))
	})

	t.Run("reading a record needs the get grant", func(t *testing.T) {
		require.Equal(t, http.StatusOK,
			call(http.MethodGet, "/v1/users/"+plain.ID, plainPair.AccessToken))
		require.Equal(t, http.StatusOK,
			call(http.MethodGet, "/v1/users/"+plain.ID, adminPair.AccessToken))
	})

	t.Run("updating needs the update grant", func(t *testing.T) {
		require.Equal(t, http.StatusForbidden,
			call(http.MethodPut, "/v1/users/"+plain.ID, plainPair.AccessToken))
		require.Equal(t, http.StatusOK,
			call(http.MethodPut, "/v1/users/"+plain.ID, adminPair.AccessToken))
	})

	t.Run("own record is readable at the me route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+plainPair.AccessToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var me userResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
		require.Equal(t, "plain", me.Username)
	})

	t.Run("deleting needs the delete grant", func(t *testing.T) {
		require.Equal(t, http.StatusForbidden,
			call(http.MethodDelete, "/v1/users/"+plain.ID, plainPair.AccessToken))
		require.Equal(t, http.StatusNoContent,
			call(http.MethodDelete, "/v1/users/"+plain.ID, adminPair.AccessToken))
	})
}
