package service

import (
	"context"

	"github.com/boxlabs/storagebox/internal/auth/domain"
	"github.com/boxlabs/storagebox/internal/auth/store"
)

type RoleService struct {
	Store store.Store
}

func (s *RoleService) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	return s.Store.Roles().GetRoleByName(ctx, name)
}

// CreateRole creates a role and links it to the named permissions. The
// permissions must already exist.
func (s *RoleService) CreateRole(
	ctx context.Context,
	name, description string,
	permissionNames []string,
) (domain.Role, error) {
	r := domain.Role{Name: name, Description: description}
	for _, p := range permissionNames {
		r.Permissions = append(r.Permissions, domain.Permission{Name: p})
	}

	if err := s.Store.Roles().CreateRole(ctx, r); err != nil {
		return domain.Role{}, err
	}

	return s.Store.Roles().GetRoleByName(ctx, name)
}

func (s *RoleService) DeleteRole(ctx context.Context, name string) error {
	return s.Store.Roles().DeleteRole(ctx, name)
}

func (s *RoleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListRoles(ctx)
}

type PermissionService struct {
	Store store.Store
}

func (s *PermissionService) GetPermissionByName(
	ctx context.Context,
	name string,
) (domain.Permission, error) {
	return s.Store.Permissions().GetPermissionByName(ctx, name)
}

func (s *PermissionService) CreatePermission(
	ctx context.Context,
	name, description string,
) (domain.Permission, error) {
	p := domain.Permission{Name: name, Description: description}
	if err := s.Store.Permissions().CreatePermission(ctx, p); err != nil {
		return domain.Permission{}, err
	}
	return p, nil
}

func (s *PermissionService) DeletePermission(ctx context.Context, name string) error {
	return s.Store.Permissions().DeletePermission(ctx, name)
}

func (s *PermissionService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	return s.Store.Permissions().ListPermissions(ctx)
}
