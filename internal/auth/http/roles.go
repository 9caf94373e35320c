package http

import (
	"encoding/json"
	"net/http"

	"github.com/boxlabs/storagebox/internal/auth/domain"
	"github.com/boxlabs/storagebox/internal/auth/service"
	"github.com/boxlabs/storagebox/pkg/httpx"
)

type roleResponse struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

func toRoleResponse(r domain.Role) roleResponse {
	perms := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, p.Name)
	}
	return roleResponse{Name: r.Name, Description: r.Description, Permissions: perms}
}

type createRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// RolesHandler serves the /v1/roles CRUD surface.
type RolesHandler struct {
	RoleService *service.RoleService
}

// HandleCreate godoc
//
//	@Summary	Create Role
//	@Tags		Roles
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		createRoleRequest	true	"New role with permission names"
//	@Success	201		{object}	roleResponse
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Router		/v1/roles [post].
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	role, err := h.RoleService.CreateRole(ctx, req.Name, req.Description, req.Permissions)
	if err != nil {
		writeStoreError(w, ctx, err, "role")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toRoleResponse(role))
}

// HandleGet godoc
//
//	@Summary	Get Role
//	@Tags		Roles
//	@Produce	json
//	@Security	BearerAuth
//	@Param		name	path		string	true	"Role name"
//	@Success	200		{object}	roleResponse
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Router		/v1/roles/{name} [get].
func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	role, err := h.RoleService.GetRoleByName(ctx, r.PathValue("name"))
	if err != nil {
		writeStoreError(w, ctx, err, "role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleResponse(role))
}

// HandleDelete godoc
//
//	@Summary	Delete Role
//	@Tags		Roles
//	@Security	BearerAuth
//	@Param		name	path	string	true	"Role name"
//	@Success	204		"Role deleted"
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Router		/v1/roles/{name} [delete].
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.RoleService.DeleteRole(ctx, r.PathValue("name")); err != nil {
		writeStoreError(w, ctx, err, "role")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleList godoc
//
//	@Summary	List Roles
//	@Tags		Roles
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	roleResponse
//	@Router		/v1/roles [get].
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roles, err := h.RoleService.ListRoles(ctx)
	if err != nil {
		writeStoreError(w, ctx, err, "role")
		return
	}

	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, toRoleResponse(role))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type permissionResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type createPermissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PermissionsHandler serves the /v1/permissions CRUD surface.
type PermissionsHandler struct {
	PermissionService *service.PermissionService
}

// HandleCreate godoc
//
//	@Summary	Create Permission
//	@Tags		Permissions
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		createPermissionRequest	true	"New permission"
//	@Success	201		{object}	permissionResponse
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Router		/v1/permissions [post].
func (h *PermissionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	p, err := h.PermissionService.CreatePermission(ctx, req.Name, req.Description)
	if err != nil {
		writeStoreError(w, ctx, err, "permission")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, permissionResponse{
		Name:        p.Name,
		Description: p.Description,
	})
}

// HandleDelete godoc
//
//	@Summary	Delete Permission
//	@Tags		Permissions
//	@Security	BearerAuth
//	@Param		name	path	string	true	"Permission name"
//	@Success	204		"Permission deleted"
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Router		/v1/permissions/{name} [delete].
func (h *PermissionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.PermissionService.DeletePermission(ctx, r.PathValue("name")); err != nil {
		writeStoreError(w, ctx, err, "permission")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleList godoc
//
//	@Summary	List Permissions
//	@Tags		Permissions
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	permissionResponse
//	@Router		/v1/permissions [get].
func (h *PermissionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	perms, err := h.PermissionService.ListPermissions(ctx)
	if err != nil {
		writeStoreError(w, ctx, err, "permission")
		return
	}

	out := make([]permissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, permissionResponse{Name: p.Name, Description: p.Description})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
