package http

import (
	"net/http"
	"strings"

	"github.com/boxlabs/storagebox/internal/auth/service"
	"github.com/boxlabs/storagebox/pkg/httpx"
	"github.com/boxlabs/storagebox/pkg/jwtx"
	"github.com/boxlabs/storagebox/pkg/slogx"
)

// IntrospectionResponse follows RFC 7662. When a token is inactive only the
// "active" field is returned, never the reason.
type IntrospectionResponse struct {
	Active bool `json:"active"`

	Scope     string `json:"scope,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Username  string `json:"username,omitempty"`
	Sub       string `json:"sub,omitempty"`
	Iss       string `json:"iss,omitempty"`
	Jti       string `json:"jti,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
}

// IntrospectHandler serves POST /v1/auth/introspect. Introspection never
// fails: every problem with the token, including an unreachable revocation
// backend, reads as active=false.
type IntrospectHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Token Introspection Endpoint
//	@Description	Reports whether an access token is currently valid (RFC 7662)
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			token	formData	string					true	"The token to introspect"
//	@Success		200		{object}	IntrospectionResponse	"Token introspection result"
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Router			/v1/auth/introspect [post].
func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unsupported content type")
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	token := r.Form.Get("token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	claims, err := h.TokenService.VerifyToken(ctx, token, jwtx.KindAccess)
	if err != nil {
		log.Debug("token read as inactive during introspection", "err", err)
		httpx.WriteJSON(w, http.StatusOK, IntrospectionResponse{Active: false})
		return
	}

	resp := IntrospectionResponse{
		Active:    true,
		Scope:     claims.Scope,
		TokenType: "Bearer",
		Username:  claims.Subject,
		Sub:       claims.Subject,
		Iss:       claims.Issuer,
		Jti:       claims.ID,
	}
	if claims.ExpiresAt != nil {
		resp.Exp = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		resp.Iat = claims.IssuedAt.Unix()
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
