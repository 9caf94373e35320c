package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/boxlabs/storagebox/internal/auth/domain"
)

type rolesRepo struct {
	ext sqlx.ExtContext
}

type roleRow struct {
	Name        string `db:"name"`
	Description string `db:"description"`
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	var row roleRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT name, description FROM roles WHERE name = ?`, name)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}

	perms, err := loadRolePermissions(ctx, r.ext, row.Name)
	if err != nil {
		return domain.Role{}, err
	}

	return domain.Role{Name: row.Name, Description: row.Description, Permissions: perms}, nil
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	if _, err := r.ext.ExecContext(ctx,
		`INSERT INTO roles (name, description) VALUES (?, ?)`,
		role.Name, role.Description); err != nil {
		return err
	}

	for _, p := range role.Permissions {
		if _, err := r.ext.ExecContext(ctx,
			`INSERT INTO role_permissions (role_name, permission_name) VALUES (?, ?)`,
			role.Name, p.Name); err != nil {
			return err
		}
	}

	return nil
}

func (r *rolesRepo) DeleteRole(ctx context.Context, name string) error {
	res, err := r.ext.ExecContext(ctx, `DELETE FROM roles WHERE name = ?`, name)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *rolesRepo) ListRoles(ctx context.Context) ([]domain.Role, error) {
	var rows []roleRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		`SELECT name, description FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}

	roles := make([]domain.Role, 0, len(rows))
	for _, row := range rows {
		perms, err := loadRolePermissions(ctx, r.ext, row.Name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, domain.Role{
			Name:        row.Name,
			Description: row.Description,
			Permissions: perms,
		})
	}
	return roles, nil
}

func loadRolePermissions(
	ctx context.Context,
	ext sqlx.ExtContext,
	roleName string,
) ([]domain.Permission, error) {
	var rows []permissionRow
	err := sqlx.SelectContext(ctx, ext, &rows,
		`SELECT p.name, p.description FROM permissions p
		 JOIN role_permissions rp ON rp.permission_name = p.name
		 WHERE rp.role_name = ?
		 ORDER BY p.name`, roleName)
	if err != nil {
		return nil, err
	}

	perms := make([]domain.Permission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, domain.Permission{Name: row.Name, Description: row.Description})
	}
	return perms, nil
}
