package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/boxlabs/storagebox/internal/auth/domain"
)

type permissionsRepo struct {
	ext sqlx.ExtContext
}

type permissionRow struct {
	Name        string `db:"name"`
	Description string `db:"description"`
}

func (r *permissionsRepo) GetPermissionByName(
	ctx context.Context,
	name string,
) (domain.Permission, error) {
	var row permissionRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT name, description FROM permissions WHERE name = ?`, name)
	if err != nil {
		return domain.Permission{}, mapNotFound(err)
	}
	return domain.Permission{Name: row.Name, Description: row.Description}, nil
}

func (r *permissionsRepo) CreatePermission(ctx context.Context, p domain.Permission) error {
	_, err := r.ext.ExecContext(ctx,
		`INSERT INTO permissions (name, description) VALUES (?, ?)`,
		p.Name, p.Description)
	return err
}

func (r *permissionsRepo) DeletePermission(ctx context.Context, name string) error {
	res, err := r.ext.ExecContext(ctx, `DELETE FROM permissions WHERE name = ?`, name)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *permissionsRepo) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	var rows []permissionRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		`SELECT name, description FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}

	perms := make([]domain.Permission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, domain.Permission{Name: row.Name, Description: row.Description})
	}
	return perms, nil
}
