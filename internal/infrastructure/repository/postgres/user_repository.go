package postgres

import (
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/code-challenge/internal/domain/user"
	qb "github.com/riskibarqy/code-challenge/internal/platform/querybuilder"
)

type userTableModel struct {
	PublicID    string `db:"public_id"`
	DisplayName string `db:"display_name"`
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetDisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("public_id", "display_name").From("users").
		Where(
			qb.InStrings("public_id", userIDs),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build get display names query")
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "get display names")
	}
	for _, row := range rows {
		out[row.PublicID] = row.DisplayName
	}
	return out, nil
}

func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]user.Profile, error) {
	conditions := []qb.Condition{qb.IsNull("deleted_at")}
	if q := strings.TrimSpace(query); q != "" {
		conditions = append(conditions, qb.Or(qb.ILike("display_name", q), qb.ILike("public_id", q)))
	}

	sqlQuery, args, err := qb.Select("public_id", "display_name").From("users").
		Where(conditions...).
		OrderBy("display_name ASC", "public_id ASC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build search users query")
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, sqlQuery, args...); err != nil {
		return nil, crerr.Wrap(err, "search users")
	}

	out := make([]user.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, user.Profile{ID: row.PublicID, DisplayName: row.DisplayName})
	}
	return out, nil
}
