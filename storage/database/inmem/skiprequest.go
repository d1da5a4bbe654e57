package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/skiprequest"
)

type skipRequestRepository struct {
	db *DB
}

var _ skiprequest.Repository = (*skipRequestRepository)(nil)

func NewSkipRequestRepository(db *DB) skiprequest.Repository {
	return &skipRequestRepository{db: db}
}

func (repo *skipRequestRepository) CreateSkipRequest(ctx context.Context, sr skiprequest.SkipRequest) (skiprequest.SkipRequest, error) {
	defer repo.db.lock(ctx)()

	sr.ID = uuid.New().String()
	repo.db.t.skipRequests[sr.ID] = sr
	return sr, nil
}

func (repo *skipRequestRepository) GetSkipRequestByID(_ context.Context, id string) (skiprequest.SkipRequest, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sr, ok := repo.db.t.skipRequests[id]; ok {
		return sr, nil
	}
	return skiprequest.SkipRequest{}, skiprequest.ErrNotFound
}

func (repo *skipRequestRepository) FilterSkipRequests(_ context.Context, filter skiprequest.QueryFilter) ([]skiprequest.SkipRequest, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	items := make([]skiprequest.SkipRequest, 0)
	for _, sr := range repo.db.t.skipRequests {
		if filter.UserID != "" && sr.UserID != filter.UserID {
			continue
		}
		if filter.AssignmentID != "" && sr.AssignmentID != filter.AssignmentID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsString(filter.Statuses, sr.Status) {
			continue
		}
		items = append(items, sr)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if c := compareTimes(items[i].CreatedAt, items[j].CreatedAt); c != 0 {
			return c > 0
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (repo *skipRequestRepository) UpdateSkipRequest(ctx context.Context, sr skiprequest.SkipRequest) (skiprequest.SkipRequest, error) {
	defer repo.db.lock(ctx)()

	if _, ok := repo.db.t.skipRequests[sr.ID]; !ok {
		return skiprequest.SkipRequest{}, skiprequest.ErrNotFound
	}
	repo.db.t.skipRequests[sr.ID] = sr
	return sr, nil
}
