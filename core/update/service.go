package update

import (
	"context"
	"time"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type (
	Repository interface {
		CreateUpdate(ctx context.Context, u Update) (Update, error)
		// QueryUpdates returns updates created strictly after since, newest first.
		QueryUpdates(ctx context.Context, since time.Time, limit int) ([]Update, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Post appends an entry to the feed. Called with a transactional context it commits with the caller.
func (svc *Service) Post(ctx context.Context, nu NewUpdate) (Update, error) {
	return svc.repo.CreateUpdate(ctx, Update{
		Kind:        nu.Kind,
		Title:       nu.Title,
		Description: nu.Description,
		CreatedAt:   core.NowFunc().UTC(),
	})
}

func (svc *Service) List(ctx context.Context, since time.Time, limit int) ([]Update, error) {
	if limit <= 0 {
		limit = DefaultLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}
	return svc.repo.QueryUpdates(ctx, since.UTC(), limit)
}
