package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/boxlabs/storagebox/internal/auth/service"
	"github.com/boxlabs/storagebox/pkg/httpx"
	"github.com/boxlabs/storagebox/pkg/slogx"
)

// LogoutHandler serves POST /v1/auth/logout. The bearer token from the
// Authorization header is added to the revocation denylist. A token that
// already fails verification is treated as logged out, so the endpoint is
// idempotent.
type LogoutHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Logout Endpoint
//	@Description	Revokes the presented access token
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"Token revoked"
//	@Failure		400	{object}	httpx.ErrorResponse
//	@Failure		503	{object}	httpx.ErrorResponse	"Revocation backend unavailable"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "missing bearer token")
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

	if err := h.TokenService.Logout(ctx, token); err != nil {
		if errors.Is(err, service.ErrRevocationUnavailable) {
			log.Error("logout rejected, revocation backend unavailable", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "")
			return
		}
		log.Error("logout failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
