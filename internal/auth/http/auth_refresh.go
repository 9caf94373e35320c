package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/boxlabs/storagebox/internal/auth/service"
	"github.com/boxlabs/storagebox/pkg/httpx"
	"github.com/boxlabs/storagebox/pkg/slogx"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshHandler serves POST /v1/auth/refresh. The presented refresh token
// is consumed: it is revoked before the new pair is returned, so it cannot
// be replayed.
type RefreshHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Refresh Endpoint
//	@Description	Rotates a refresh token, revoking it and issuing a fresh token pair
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		refreshRequest	true	"The refresh token to rotate"
//	@Success		200		{object}	tokenResponse	"New signed token pair"
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Failure		503		{object}	httpx.ErrorResponse	"Revocation backend unavailable"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	pair, err := h.TokenService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthenticationFailed):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "")
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusUnauthorized, "user_not_found", "")
		case errors.Is(err, service.ErrRevocationUnavailable):
			log.Error("refresh rejected, revocation backend unavailable", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "")
		default:
			log.Error("refresh failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	})
}
