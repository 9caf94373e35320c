package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/boxlabs/storagebox/internal/auth/domain"
	"github.com/boxlabs/storagebox/internal/auth/service"
	"github.com/boxlabs/storagebox/pkg/httpx"
)

type categoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCategoryResponse(c domain.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		UserID:      c.UserID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoriesHandler serves the /v1/categories CRUD surface. Created
// categories are owned by the authenticated caller.
type CategoriesHandler struct {
	CategoryService *service.CategoryService
}

// HandleCreate godoc
//
//	@Summary	Create Category
//	@Tags		Categories
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		createCategoryRequest	true	"New category"
//	@Success	201		{object}	categoryResponse
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Failure	409		{object}	httpx.ErrorResponse	"Name already taken"
//	@Router		/v1/categories [post].
func (h *CategoriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	c, err := h.CategoryService.CreateCategory(ctx, req.Name, req.Description,
		httpx.UsernameFromContext(ctx))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNameTaken) {
			httpx.WriteError(w, http.StatusConflict, "category_name_taken", "")
			return
		}
		writeStoreError(w, ctx, err, "category")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toCategoryResponse(c))
}

// HandleGet godoc
//
//	@Summary	Get Category
//	@Tags		Categories
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Category ID"
//	@Success	200	{object}	categoryResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/v1/categories/{id} [get].
func (h *CategoriesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c, err := h.CategoryService.GetCategoryByID(ctx, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, ctx, err, "category")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCategoryResponse(c))
}

// HandleDelete godoc
//
//	@Summary	Delete Category
//	@Tags		Categories
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Category ID"
//	@Success	204	"Category deleted"
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/v1/categories/{id} [delete].
func (h *CategoriesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.CategoryService.DeleteCategory(ctx, r.PathValue("id")); err != nil {
		writeStoreError(w, ctx, err, "category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleList godoc
//
//	@Summary	List Categories
//	@Tags		Categories
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	categoryResponse
//	@Router		/v1/categories [get].
func (h *CategoriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.CategoryService.ListCategories(ctx)
	if err != nil {
		writeStoreError(w, ctx, err, "category")
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
