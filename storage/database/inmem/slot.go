package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
)

type slotRepository struct {
	db *DB
}

var _ slot.Repository = (*slotRepository)(nil)

func NewSlotRepository(db *DB) slot.Repository {
	return &slotRepository{db: db}
}

func (repo *slotRepository) CreateSlot(ctx context.Context, s slot.Slot) (slot.Slot, error) {
	defer repo.db.lock(ctx)()

	if _, ok := repo.db.t.slots[s.SlotTime]; ok {
		return slot.Slot{}, slot.ErrSlotExists
	}
	repo.db.t.slotSeq++
	s.ID = repo.db.t.slotSeq
	repo.db.t.slots[s.SlotTime] = s
	return s, nil
}

func (repo *slotRepository) QuerySlots(_ context.Context, availableOnly bool) ([]slot.Slot, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	slots := make([]slot.Slot, 0, len(repo.db.t.slots))
	for _, s := range repo.db.t.slots {
		if availableOnly && !s.IsAvailable {
			continue
		}
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].SlotTime < slots[j].SlotTime })
	return slots, nil
}

func (repo *slotRepository) GetSlotByTime(_ context.Context, slotTime string) (slot.Slot, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.t.slots[slotTime]; ok {
		return s, nil
	}
	return slot.Slot{}, slot.ErrNotFound
}

func (repo *slotRepository) SetSlotAvailability(ctx context.Context, slotTime string, available bool, updatedAt time.Time) (slot.Slot, error) {
	defer repo.db.lock(ctx)()

	s, ok := repo.db.t.slots[slotTime]
	if !ok {
		return slot.Slot{}, slot.ErrNotFound
	}
	s.IsAvailable = available
	s.UpdatedAt = updatedAt
	repo.db.t.slots[slotTime] = s
	return s, nil
}
