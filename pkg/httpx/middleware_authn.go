package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/boxlabs/storagebox/pkg/jwtx"
	"github.com/boxlabs/storagebox/pkg/slogx"
)

// TokenVerifier validates a presented token of the expected kind. Unlike a
// bare codec it also consults the revocation denylist, so a logged-out
// token is rejected here even though its signature still verifies.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string, kind jwtx.TokenKind) (jwtx.Claims, error)
}

// AuthnMiddleware authenticates requests carrying a bearer access token and
// injects the subject and scopes into the request context.
func AuthnMiddleware(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.VerifyToken(ctx, raw, jwtx.KindAccess)
			if err != nil {
				log.Warn("access token verification failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUsername, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyScopes, ParseSpaceDelimitedFields(c.Scope))
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate",
		`Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
