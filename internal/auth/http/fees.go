package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/boxlabs/storagebox/internal/auth/domain"
	"github.com/boxlabs/storagebox/internal/auth/service"
	"github.com/boxlabs/storagebox/pkg/httpx"
)

type feeResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	Description  string    `json:"description,omitempty"`
	Date         time.Time `json:"date"`
	CategoryName string    `json:"category_name"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toFeeResponse(f domain.Fee) feeResponse {
	return feeResponse{
		ID:           f.ID,
		Name:         f.Name,
		Price:        f.Price,
		Description:  f.Description,
		Date:         f.Date,
		CategoryName: f.CategoryName,
		UserID:       f.UserID,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

type feeRequest struct {
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	CategoryName string    `json:"category_name"`
}

// FeesHandler serves the /v1/fees CRUD surface. Created fees are owned by
// the authenticated caller.
type FeesHandler struct {
	FeeService *service.FeeService
}

// HandleCreate godoc
//
//	@Summary	Create Fee
//	@Tags		Fees
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		feeRequest	true	"New fee"
//	@Success	201		{object}	feeResponse
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Router		/v1/fees [post].
func (h *FeesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req feeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	f, err := h.FeeService.CreateFee(ctx, req.Name, req.Price, req.Description,
		req.Date, req.CategoryName, httpx.UsernameFromContext(ctx))
	if err != nil {
		writeStoreError(w, ctx, err, "fee")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toFeeResponse(f))
}

// HandleGet godoc
//
//	@Summary	Get Fee
//	@Tags		Fees
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Fee ID"
//	@Success	200	{object}	feeResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/v1/fees/{id} [get].
func (h *FeesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := h.FeeService.GetFeeByID(ctx, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, ctx, err, "fee")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toFeeResponse(f))
}

// HandleUpdate godoc
//
//	@Summary	Update Fee
//	@Tags		Fees
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string		true	"Fee ID"
//	@Param		request	body		feeRequest	true	"New field values"
//	@Success	200		{object}	feeResponse
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Router		/v1/fees/{id} [put].
func (h *FeesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req feeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	f, err := h.FeeService.UpdateFee(ctx, domain.Fee{
		ID:           r.PathValue("id"),
		Name:         req.Name,
		Price:        req.Price,
		Description:  req.Description,
		Date:         req.Date,
		CategoryName: req.CategoryName,
	})
	if err != nil {
		writeStoreError(w, ctx, err, "fee")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toFeeResponse(f))
}

// HandleDelete godoc
//
//	@Summary	Delete Fee
//	@Tags		Fees
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Fee ID"
//	@Success	204	"Fee deleted"
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/v1/fees/{id} [delete].
func (h *FeesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.FeeService.DeleteFee(ctx, r.PathValue("id")); err != nil {
		writeStoreError(w, ctx, err, "fee")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleList godoc
//
//	@Summary	List Fees
//	@Tags		Fees
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	feeResponse
//	@Router		/v1/fees [get].
func (h *FeesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fees, err := h.FeeService.ListFees(ctx)
	if err != nil {
		writeStoreError(w, ctx, err, "fee")
		return
	}

	out := make([]feeResponse, 0, len(fees))
	for _, f := range fees {
		out = append(out, toFeeResponse(f))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
