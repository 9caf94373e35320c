package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boxlabs/storagebox/internal/auth/domain"
	"github.com/boxlabs/storagebox/internal/auth/store/drivers/sqlite"
	"github.com/boxlabs/storagebox/pkg/cryptox"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	ctx := context.Background()
	require.NoError(t, s.Roles().CreateRole(ctx, domain.Role{Name: "USER"}))
	require.NoError(t, s.Roles().CreateRole(ctx, domain.Role{Name: "ADMIN"}))

	return &UserService{Store: s}
}

func TestUserService(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "carol", "carol@example.com", "hunter2hunter2", []string{"USER"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.NoError(t, cryptox.VerifyPassword("hunter2hunter2", u.PasswordHash))
	require.Len(t, u.Roles, 1)

	t.Run("new account gets the default role", func(t *testing.T) {
		created, err := svc.CreateUser(ctx, "dave", "", "hunter2hunter2", nil)
		require.NoError(t, err)
		require.Len(t, created.Roles, 1)
		require.Equal(t, UserRoleName, created.Roles[0].Name)
	})

	t.Run("default role tops up explicit grants", func(t *testing.T) {
		created, err := svc.CreateUser(ctx, "erin", "", "hunter2hunter2", []string{"ADMIN"})
		require.NoError(t, err)
		require.Len(t, created.Roles, 2)
		require.Equal(t, "ADMIN", created.Roles[0].Name)
		require.Equal(t, UserRoleName, created.Roles[1].Name)
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, "carol", "", "whatever-pass", nil)
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("update changes password and roles together", func(t *testing.T) {
		updated, err := svc.UpdateUser(ctx, u.ID, "", "new-password-123", []string{"ADMIN"})
		require.NoError(t, err)
		require.NoError(t, cryptox.VerifyPassword("new-password-123", updated.PasswordHash))
		require.Len(t, updated.Roles, 1)
		require.Equal(t, "ADMIN", updated.Roles[0].Name)
		require.Equal(t, u.Email, updated.Email)
	})

	t.Run("nil roles keeps the current set", func(t *testing.T) {
		updated, err := svc.UpdateUser(ctx, u.ID, "new@example.com", "", nil)
		require.NoError(t, err)
		require.Equal(t, "new@example.com", updated.Email)
		require.Len(t, updated.Roles, 1)
		require.Equal(t, "ADMIN", updated.Roles[0].Name)
	})
}
