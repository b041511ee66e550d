package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/code-challenge/internal/infrastructure/repository/memory"
)

// BootstrapSeed inserts the demo users when the users table is empty.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM users WHERE deleted_at IS NULL`); err != nil {
		return crerr.Wrap(err, "count users for bootstrap seed")
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin seed tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, u := range memory.SeedUsers() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO users (public_id, display_name)
VALUES (:public_id, :display_name)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":    u.ID,
			"display_name": u.DisplayName,
		})
		if err != nil {
			return crerr.Wrapf(err, "bind seed user %s query", u.ID)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return crerr.Wrapf(err, "seed user %s", u.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit seed tx")
	}

	return nil
}
