package service

import (
	"context"
	"errors"
	"slices"

	"github.com/boxlabs/storagebox/internal/auth/domain"
	"github.com/boxlabs/storagebox/internal/auth/store"
	"github.com/boxlabs/storagebox/pkg/cryptox"
	"github.com/boxlabs/storagebox/pkg/idx"
)

var ErrUsernameTaken = errors.New("username_taken")

type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by id, roles and permissions included.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// GetUserByUsername fetches a user by username.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.Store.Users().GetUserByUsername(ctx, username)
}

// CreateUser registers a new user with the given roles. Every account gets
// the default USER role on top of whatever was requested. The password is
// hashed before anything touches the store.
func (s *UserService) CreateUser(
	ctx context.Context,
	username, email, password string,
	roleNames []string,
) (domain.User, error) {
	taken, err := s.Store.Users().ExistsByUsername(ctx, username)
	if err != nil {
		return domain.User{}, err
	}
	if taken {
		return domain.User{}, ErrUsernameTaken
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if !slices.Contains(roleNames, UserRoleName) {
		u.Roles = append(u.Roles, domain.Role{Name: UserRoleName})
	}
	for _, name := range roleNames {
		u.Roles = append(u.Roles, domain.Role{Name: name})
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}

	return s.Store.Users().GetUserByID(ctx, u.ID)
}

// UpdateUser changes a user's email, password, or role set. Empty password
// means keep the current hash; nil roleNames means keep the current roles.
func (s *UserService) UpdateUser(
	ctx context.Context,
	userID, email, password string,
	roleNames []string,
) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if email != "" {
		u.Email = email
	}
	if password != "" {
		hash, err := cryptox.HashPassword(password)
		if err != nil {
			return domain.User{}, err
		}
		u.PasswordHash = hash
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateUser(ctx, u); err != nil {
			return err
		}
		if roleNames != nil {
			return tx.Users().SetUserRoles(ctx, userID, roleNames)
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	return s.Store.Users().GetUserByID(ctx, userID)
}

// DeleteUser removes a user; role links cascade away with it.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	return s.Store.Users().DeleteUser(ctx, userID)
}

// ListUsers returns every user ordered by username.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}
