package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

var assignmentComparators = map[string]func(a, b assignment.Assignment) int{
	"created_at":   func(a, b assignment.Assignment) int { return compareTimes(a.CreatedAt, b.CreatedAt) },
	"updated_at":   func(a, b assignment.Assignment) int { return compareTimes(a.UpdatedAt, b.UpdatedAt) },
	"missed_count": func(a, b assignment.Assignment) int { return compareInts(a.MissedCount, b.MissedCount) },
	"slot_time":    func(a, b assignment.Assignment) int { return strings.Compare(a.SlotTime, b.SlotTime) },
	"status":       func(a, b assignment.Assignment) int { return strings.Compare(a.Status, b.Status) },
	"user_email":   func(a, b assignment.Assignment) int { return strings.Compare(a.UserEmail, b.UserEmail) },
}

func sortAssignments(items []assignment.Assignment, ordering []core.DBOrdering) {
	orderings := make([]core.DBOrdering, 0, len(ordering)+1)
	for _, ord := range ordering {
		if _, ok := assignmentComparators[ord.Field]; ok {
			orderings = append(orderings, ord)
		}
	}
	if len(orderings) == 0 {
		orderings = append(orderings, core.DBOrdering{Field: "slot_time", Ascending: true})
	}
	orderings = append(orderings, core.DBOrdering{Field: "created_at", Ascending: true}) // tie breaker

	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range orderings {
			c := assignmentComparators[ord.Field](items[i], items[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	defer repo.db.lock(ctx)()

	if a.Holding() {
		for _, other := range repo.db.t.assignments {
			if !other.Holding() {
				continue
			}
			if other.SlotTime == a.SlotTime {
				return assignment.Assignment{}, assignment.ErrSlotUnavailable
			}
			if other.UserID == a.UserID {
				return assignment.Assignment{}, assignment.ErrUserHasSlot
			}
		}
	}
	a.ID = uuid.New().String()
	repo.db.t.assignments[a.ID] = a
	return a, nil
}

func (repo *assignmentRepository) GetAssignmentByID(_ context.Context, id string) (assignment.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if a, ok := repo.db.t.assignments[id]; ok {
		return a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) findHolding(match func(a assignment.Assignment) bool) (assignment.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, a := range repo.db.t.assignments {
		if a.Holding() && match(a) {
			return a, nil
		}
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) GetHoldingBySlot(_ context.Context, slotTime string) (assignment.Assignment, error) {
	return repo.findHolding(func(a assignment.Assignment) bool { return a.SlotTime == slotTime })
}

func (repo *assignmentRepository) GetHoldingByUser(_ context.Context, userID string) (assignment.Assignment, error) {
	return repo.findHolding(func(a assignment.Assignment) bool { return a.UserID == userID })
}

func (repo *assignmentRepository) FilterAssignments(
	_ context.Context,
	filter assignment.QueryFilter,
	ordering []core.DBOrdering,
) ([]assignment.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	items := make([]assignment.Assignment, 0)
	for _, a := range repo.db.t.assignments {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		if filter.SlotTime != "" && a.SlotTime != filter.SlotTime {
			continue
		}
		if len(filter.Statuses) > 0 && !containsString(filter.Statuses, a.Status) {
			continue
		}
		items = append(items, a)
	}
	sortAssignments(items, ordering)
	return items, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	defer repo.db.lock(ctx)()

	if _, ok := repo.db.t.assignments[a.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	repo.db.t.assignments[a.ID] = a
	return a, nil
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
