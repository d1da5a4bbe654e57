package inmemdb

import (
	"context"
	"time"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
)

type updateRepository struct {
	db *DB
}

var _ update.Repository = (*updateRepository)(nil)

func NewUpdateRepository(db *DB) update.Repository {
	return &updateRepository{db: db}
}

func (repo *updateRepository) CreateUpdate(ctx context.Context, u update.Update) (update.Update, error) {
	defer repo.db.lock(ctx)()

	repo.db.t.updateSeq++
	u.ID = repo.db.t.updateSeq
	repo.db.t.updates = append(repo.db.t.updates, u)
	return u, nil
}

func (repo *updateRepository) QueryUpdates(_ context.Context, since time.Time, limit int) ([]update.Update, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	items := make([]update.Update, 0)
	// appended in creation order; walk backwards for newest first
	for i := len(repo.db.t.updates) - 1; i >= 0 && len(items) < limit; i-- {
		u := repo.db.t.updates[i]
		if u.CreatedAt.After(since) {
			items = append(items, u)
		}
	}
	return items, nil
}
