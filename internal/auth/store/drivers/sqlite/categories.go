package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/boxlabs/storagebox/internal/auth/domain"
)

type categoriesRepo struct {
	ext sqlx.ExtContext
}

type categoryRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	UserID      string    `db:"user_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row categoryRow) toDomain() domain.Category {
	return domain.Category{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		UserID:      row.UserID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (r *categoriesRepo) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	var row categoryRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT id, name, description, user_id, created_at, updated_at
		 FROM categories WHERE id = ?`, id)
	if err != nil {
		return domain.Category{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *categoriesRepo) ExistsCategoryByName(ctx context.Context, name string) (bool, error) {
	var one int
	err := sqlx.GetContext(ctx, r.ext, &one,
		`SELECT 1 FROM categories WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *categoriesRepo) CreateCategory(ctx context.Context, c domain.Category) error {
	now := time.Now().UTC()
	_, err := r.ext.ExecContext(ctx,
		`INSERT INTO categories (id, name, description, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.UserID, now, now)
	return err
}

func (r *categoriesRepo) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.ext.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *categoriesRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		`SELECT id, name, description, user_id, created_at, updated_at
		 FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.toDomain())
	}
	return categories, nil
}
