package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/boxlabs/storagebox/internal/auth/store"
	"github.com/boxlabs/storagebox/pkg/httpx"
	"github.com/boxlabs/storagebox/pkg/slogx"
)

// writeStoreError maps store errors onto HTTP responses. Anything that is
// not a recognised store condition is logged and reported as a bare 500.
func writeStoreError(w http.ResponseWriter, ctx context.Context, err error, entity string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", entity+" not found")
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "already_exists", entity+" already exists")
	default:
		slogx.FromContext(ctx).Error("store operation failed", "entity", entity, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
	}
}
