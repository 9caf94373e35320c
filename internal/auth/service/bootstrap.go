package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/boxlabs/storagebox/internal/auth/domain"
	"github.com/boxlabs/storagebox/internal/auth/store"
	"github.com/boxlabs/storagebox/pkg/cryptox"
	"github.com/boxlabs/storagebox/pkg/idx"
	"github.com/boxlabs/storagebox/pkg/slogx"
)

// Predefined roles. ADMIN is for operators; USER is attached to every
// registered account.
const (
	AdminRoleName = "ADMIN"
	UserRoleName  = "USER"
)

// Predefined permissions guarding the per-operation user endpoints.
const (
	PermissionGet    = "GET"
	PermissionUpdate = "UPDATE"
	PermissionDelete = "DELETE"
)

// BootstrapService seeds the baseline records a fresh deployment needs: the
// predefined permissions and roles, and a default administrator account.
// Running it against an already-seeded database is a no-op, so it is safe
// on every startup.
type BootstrapService struct {
	Store store.Store

	AdminUsername string
	AdminPassword string
}

func (s *BootstrapService) Run(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	if err := s.ensurePermissions(ctx); err != nil {
		return err
	}
	if err := s.ensureRole(ctx, AdminRoleName, "full administrative access",
		PermissionGet, PermissionUpdate, PermissionDelete); err != nil {
		return err
	}
	if err := s.ensureRole(ctx, UserRoleName, "default role for registered accounts",
		PermissionGet); err != nil {
		return err
	}

	exists, err := s.Store.Users().ExistsByUsername(ctx, s.AdminUsername)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := cryptox.HashPassword(s.AdminPassword)
	if err != nil {
		return err
	}

	admin := domain.User{
		ID:           idx.New().String(),
		Username:     s.AdminUsername,
		PasswordHash: hash,
		Roles:        []domain.Role{{Name: AdminRoleName}},
	}
	if err := s.Store.Users().CreateUser(ctx, admin); err != nil {
		return err
	}

	l.Warn("created default admin account, change its password",
		slog.String("username", s.AdminUsername),
		slog.String("user_id", admin.ID),
	)
	return nil
}

func (s *BootstrapService) ensurePermissions(ctx context.Context) error {
	perms := []domain.Permission{
		{Name: PermissionGet, Description: "read individual records"},
		{Name: PermissionUpdate, Description: "modify records"},
		{Name: PermissionDelete, Description: "remove records"},
	}

	for _, p := range perms {
		_, err := s.Store.Permissions().GetPermissionByName(ctx, p.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := s.Store.Permissions().CreatePermission(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *BootstrapService) ensureRole(
	ctx context.Context,
	name, description string,
	permissionNames ...string,
) error {
	_, err := s.Store.Roles().GetRoleByName(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	role := domain.Role{Name: name, Description: description}
	for _, p := range permissionNames {
		role.Permissions = append(role.Permissions, domain.Permission{Name: p})
	}
	return s.Store.Roles().CreateRole(ctx, role)
}
