package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type revokedTokensRepo struct {
	ext sqlx.ExtContext
}

// Insert adds a jti to the denylist. Inserting the same jti twice is a
// no-op, which makes concurrent revocations of one token idempotent.
func (r *revokedTokensRepo) Insert(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := r.ext.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt.UTC(), time.Now().UTC())
	return err
}

func (r *revokedTokensRepo) Exists(ctx context.Context, jti string) (bool, error) {
	var one int
	err := sqlx.GetContext(ctx, r.ext, &one,
		`SELECT 1 FROM revoked_tokens WHERE jti = ?`, jti)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteExpired prunes entries whose tokens have expired on their own.
// Storage hygiene only; verification re-checks the exp claim regardless.
func (r *revokedTokensRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.ext.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
