package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boxlabs/storagebox/internal/auth/store/drivers/sqlite"
	"github.com/boxlabs/storagebox/pkg/cryptox"
)

func TestBootstrap(t *testing.T) {
	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	ctx := context.Background()
	svc := &BootstrapService{
		Store:         s,
		AdminUsername: "#admin",
		AdminPassword: "bootstrap-secret",
	}

	require.NoError(t, svc.Run(ctx))

	t.Run("seeds the predefined permissions", func(t *testing.T) {
		for _, name := range []string{PermissionGet, PermissionUpdate, PermissionDelete} {
			p, err := s.Permissions().GetPermissionByName(ctx, name)
			require.NoError(t, err)
			require.Equal(t, name, p.Name)
		}
	})

	t.Run("seeds the admin role with full grants", func(t *testing.T) {
		role, err := s.Roles().GetRoleByName(ctx, AdminRoleName)
		require.NoError(t, err)
		require.Len(t, role.Permissions, 3)

		names := make([]string, 0, len(role.Permissions))
		for _, p := range role.Permissions {
			names = append(names, p.Name)
		}
		require.ElementsMatch(t, []string{PermissionGet, PermissionUpdate, PermissionDelete}, names)
	})

	t.Run("seeds the default user role with read access", func(t *testing.T) {
		role, err := s.Roles().GetRoleByName(ctx, UserRoleName)
		require.NoError(t, err)
		require.Len(t, role.Permissions, 1)
		require.Equal(t, PermissionGet, role.Permissions[0].Name)
	})

	t.Run("seeds the admin account with a working password", func(t *testing.T) {
		admin, err := s.Users().GetUserByUsername(ctx, "#admin")
		require.NoError(t, err)
		require.NoError(t, cryptox.VerifyPassword("bootstrap-secret", admin.PasswordHash))
		require.Len(t, admin.Roles, 1)
		require.Equal(t, AdminRoleName, admin.Roles[0].Name)
	})

	t.Run("second run leaves existing records alone", func(t *testing.T) {
		before, err := s.Users().GetUserByUsername(ctx, "#admin")
		require.NoError(t, err)

		svc.AdminPassword = "different"
		require.NoError(t, svc.Run(ctx))

		after, err := s.Users().GetUserByUsername(ctx, "#admin")
		require.NoError(t, err)
		require.Equal(t, before.ID, after.ID)
		require.Equal(t, before.PasswordHash, after.PasswordHash)
	})
}
