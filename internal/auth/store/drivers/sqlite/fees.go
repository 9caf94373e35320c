package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/boxlabs/storagebox/internal/auth/domain"
)

type feesRepo struct {
	ext sqlx.ExtContext
}

type feeRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Price        float64   `db:"price"`
	Description  string    `db:"description"`
	Date         time.Time `db:"date"`
	CategoryName string    `db:"category_name"`
	UserID       string    `db:"user_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row feeRow) toDomain() domain.Fee {
	return domain.Fee{
		ID:           row.ID,
		Name:         row.Name,
		Price:        row.Price,
		Description:  row.Description,
		Date:         row.Date,
		CategoryName: row.CategoryName,
		UserID:       row.UserID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (r *feesRepo) GetFeeByID(ctx context.Context, id string) (domain.Fee, error) {
	var row feeRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT id, name, price, description, date, category_name, user_id,
		        created_at, updated_at
		 FROM fees WHERE id = ?`, id)
	if err != nil {
		return domain.Fee{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *feesRepo) CreateFee(ctx context.Context, f domain.Fee) error {
	now := time.Now().UTC()
	_, err := r.ext.ExecContext(ctx,
		`INSERT INTO fees (id, name, price, description, date, category_name,
		                   user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.Price, f.Description, f.Date.UTC(), f.CategoryName,
		f.UserID, now, now)
	return err
}

func (r *feesRepo) UpdateFee(ctx context.Context, f domain.Fee) error {
	res, err := r.ext.ExecContext(ctx,
		`UPDATE fees
		 SET name = ?, price = ?, description = ?, date = ?, category_name = ?,
		     updated_at = ?
		 WHERE id = ?`,
		f.Name, f.Price, f.Description, f.Date.UTC(), f.CategoryName,
		time.Now().UTC(), f.ID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *feesRepo) DeleteFee(ctx context.Context, id string) error {
	res, err := r.ext.ExecContext(ctx, `DELETE FROM fees WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *feesRepo) ListFees(ctx context.Context) ([]domain.Fee, error) {
	var rows []feeRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		`SELECT id, name, price, description, date, category_name, user_id,
		        created_at, updated_at
		 FROM fees ORDER BY date DESC, name`)
	if err != nil {
		return nil, err
	}

	fees := make([]domain.Fee, 0, len(rows))
	for _, row := range rows {
		fees = append(fees, row.toDomain())
	}
	return fees, nil
}
