package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
)

type updateRepository struct {
	store
}

var _ update.Repository = (*updateRepository)(nil) // interface compliance check

func NewUpdateRepository(db *sqlx.DB) update.Repository {
	return &updateRepository{store{db: db}}
}

func (repo *updateRepository) CreateUpdate(ctx context.Context, u update.Update) (update.Update, error) {
	var created update.Update
	err := sqlx.GetContext(
		ctx, repo.exec(ctx), &created,
		`INSERT INTO updates (kind, title, description, created_at) VALUES ($1, $2, $3, $4)
		RETURNING id, kind, title, description, created_at`,
		u.Kind, u.Title, u.Description, u.CreatedAt,
	)
	return created, err
}

func (repo *updateRepository) QueryUpdates(ctx context.Context, since time.Time, limit int) ([]update.Update, error) {
	items := make([]update.Update, 0)
	err := sqlx.SelectContext(
		ctx, repo.exec(ctx), &items,
		`SELECT id, kind, title, description, created_at FROM updates
		WHERE created_at > $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		since, limit,
	)
	return items, err
}
