package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/boxlabs/storagebox/internal/auth/store"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx executes fn within a transaction, automatically handling
// commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	// Rollback is safe to call even after commit.
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&txStore{ext: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users                 { return &usersRepo{ext: s.db} }
func (s *Store) Roles() store.Roles                 { return &rolesRepo{ext: s.db} }
func (s *Store) Permissions() store.Permissions     { return &permissionsRepo{ext: s.db} }
func (s *Store) RevokedTokens() store.RevokedTokens { return &revokedTokensRepo{ext: s.db} }
func (s *Store) Categories() store.Categories       { return &categoriesRepo{ext: s.db} }
func (s *Store) Fees() store.Fees                   { return &feesRepo{ext: s.db} }

// txStore exposes the same repositories scoped to a single transaction.
type txStore struct {
	ext sqlx.ExtContext
}

func (t *txStore) Users() store.Users                 { return &usersRepo{ext: t.ext} }
func (t *txStore) Roles() store.Roles                 { return &rolesRepo{ext: t.ext} }
func (t *txStore) Permissions() store.Permissions     { return &permissionsRepo{ext: t.ext} }
func (t *txStore) RevokedTokens() store.RevokedTokens { return &revokedTokensRepo{ext: t.ext} }
func (t *txStore) Categories() store.Categories       { return &categoriesRepo{ext: t.ext} }
func (t *txStore) Fees() store.Fees                   { return &feesRepo{ext: t.ext} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
