package store

import (
	"context"
	"errors"
	"time"

	"github.com/boxlabs/storagebox/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it
// and expose sub-repositories to keep concerns tidy and testable.
type Store interface {
	Users() Users
	Roles() Roles
	Permissions() Permissions
	RevokedTokens() RevokedTokens
	Categories() Categories
	Fees() Fees

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store. Nested transactions are not supported.
type Tx interface {
	Users() Users
	Roles() Roles
	Permissions() Permissions
	RevokedTokens() RevokedTokens
	Categories() Categories
	Fees() Fees
}

type Users interface {
	// GetUserByID returns a user with roles and permissions loaded.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during authentication; roles and
	// permissions are loaded in deterministic (name) order.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// ExistsByUsername reports whether a user with the given name exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// CreateUser inserts a new user and its role links (id provided by the
	// app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser mutates email and password hash and bumps updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	// SetUserRoles replaces the user's role links.
	SetUserRoles(ctx context.Context, userID string, roleNames []string) error

	// DeleteUser removes the user and cascades to its role links.
	DeleteUser(ctx context.Context, userID string) error

	// ListUsers returns all users with roles loaded, ordered by username.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type Roles interface {
	// GetRoleByName returns a role with its permissions loaded.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// CreateRole inserts a role and its permission links.
	CreateRole(ctx context.Context, r domain.Role) error

	// DeleteRole removes a role and its links.
	DeleteRole(ctx context.Context, name string) error

	// ListRoles returns all roles with permissions, ordered by name.
	ListRoles(ctx context.Context) ([]domain.Role, error)
}

type Permissions interface {
	GetPermissionByName(ctx context.Context, name string) (domain.Permission, error)
	CreatePermission(ctx context.Context, p domain.Permission) error
	DeletePermission(ctx context.Context, name string) error
	ListPermissions(ctx context.Context) ([]domain.Permission, error)
}

// RevokedTokens is the revocation denylist contract. It stands alone so the
// denylist can be backed by a different engine (e.g. Redis) than the
// credential data.
//
// Insert must be idempotent: revoking the same jti twice has the same
// effect as once. Exists must observe any Insert that completed before it.
// Entries are append-only; DeleteExpired is time-based hygiene only and
// never affects correctness.
type RevokedTokens interface {
	Insert(ctx context.Context, jti string, expiresAt time.Time) error
	Exists(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context) error
}

type Categories interface {
	GetCategoryByID(ctx context.Context, id string) (domain.Category, error)
	ExistsCategoryByName(ctx context.Context, name string) (bool, error)
	CreateCategory(ctx context.Context, c domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type Fees interface {
	GetFeeByID(ctx context.Context, id string) (domain.Fee, error)
	CreateFee(ctx context.Context, f domain.Fee) error
	UpdateFee(ctx context.Context, f domain.Fee) error
	DeleteFee(ctx context.Context, id string) error
	ListFees(ctx context.Context) ([]domain.Fee, error)
}
