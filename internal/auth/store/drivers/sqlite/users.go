package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/boxlabs/storagebox/internal/auth/domain"
)

type usersRepo struct {
	ext sqlx.ExtContext
}

type userRow struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row userRow) toDomain() domain.User {
	return domain.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var row userRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT id, username, email, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	return r.withRoles(ctx, row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var row userRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT id, username, email, password_hash, created_at, updated_at
		 FROM users WHERE username = ?`, username)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	return r.withRoles(ctx, row)
}

func (r *usersRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var one int
	err := sqlx.GetContext(ctx, r.ext, &one,
		`SELECT 1 FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.ext.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, now, now)
	if err != nil {
		return err
	}

	for _, role := range u.Roles {
		if _, err := r.ext.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_name) VALUES (?, ?)`,
			u.ID, role.Name); err != nil {
			return err
		}
	}

	return nil
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	res, err := r.ext.ExecContext(ctx,
		`UPDATE users SET email = ?, password_hash = ?, updated_at = ? WHERE id = ?`,
		u.Email, u.PasswordHash, time.Now().UTC(), u.ID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) SetUserRoles(ctx context.Context, userID string, roleNames []string) error {
	if _, err := r.ext.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = ?`, userID); err != nil {
		return err
	}

	for _, name := range roleNames {
		if _, err := r.ext.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_name) VALUES (?, ?)`,
			userID, name); err != nil {
			return err
		}
	}

	return nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.ext.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		`SELECT id, username, email, password_hash, created_at, updated_at
		 FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		u, err := r.withRoles(ctx, row)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// withRoles loads the user's roles and their permissions in name order so
// scope computation over the result is deterministic.
func (r *usersRepo) withRoles(ctx context.Context, row userRow) (domain.User, error) {
	u := row.toDomain()

	var roleRows []roleRow
	err := sqlx.SelectContext(ctx, r.ext, &roleRows,
		`SELECT r.name, r.description FROM roles r
		 JOIN user_roles ur ON ur.role_name = r.name
		 WHERE ur.user_id = ?
		 ORDER BY r.name`, u.ID)
	if err != nil {
		return domain.User{}, err
	}

	for _, rr := range roleRows {
		perms, err := loadRolePermissions(ctx, r.ext, rr.Name)
		if err != nil {
			return domain.User{}, err
		}
		u.Roles = append(u.Roles, domain.Role{
			Name:        rr.Name,
			Description: rr.Description,
			Permissions: perms,
		})
	}

	return u, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
