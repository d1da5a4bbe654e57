package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
)

const slotColumns = "id, slot_time, is_available, timezone, created_at, updated_at"

type slotRepository struct {
	store
}

var _ slot.Repository = (*slotRepository)(nil) // interface compliance check

func NewSlotRepository(db *sqlx.DB) slot.Repository {
	return &slotRepository{store{db: db}}
}

var slotConstraints = map[string]error{
	"available_slots_slot_time_key": slot.ErrSlotExists,
}

func (repo *slotRepository) CreateSlot(ctx context.Context, s slot.Slot) (slot.Slot, error) {
	var created slot.Slot
	err := sqlx.GetContext(
		ctx, repo.exec(ctx), &created,
		`INSERT INTO available_slots (slot_time, is_available, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING `+slotColumns,
		s.SlotTime, s.IsAvailable, s.Timezone, s.CreatedAt, s.UpdatedAt,
	)
	return created, translate(err, nil, slotConstraints)
}

func (repo *slotRepository) QuerySlots(ctx context.Context, availableOnly bool) ([]slot.Slot, error) {
	q := "SELECT " + slotColumns + " FROM available_slots"
	if availableOnly {
		q += " WHERE is_available"
	}
	items := make([]slot.Slot, 0, slot.PerDay)
	err := sqlx.SelectContext(ctx, repo.exec(ctx), &items, q+" ORDER BY slot_time")
	return items, err
}

func (repo *slotRepository) GetSlotByTime(ctx context.Context, slotTime string) (slot.Slot, error) {
	var s slot.Slot
	err := sqlx.GetContext(ctx, repo.exec(ctx), &s, "SELECT "+slotColumns+" FROM available_slots WHERE slot_time = $1", slotTime)
	return s, translate(err, slot.ErrNotFound, nil)
}

func (repo *slotRepository) SetSlotAvailability(ctx context.Context, slotTime string, available bool, updatedAt time.Time) (slot.Slot, error) {
	var s slot.Slot
	err := sqlx.GetContext(
		ctx, repo.exec(ctx), &s,
		"UPDATE available_slots SET is_available = $2, updated_at = $3 WHERE slot_time = $1 RETURNING "+slotColumns,
		slotTime, available, updatedAt,
	)
	return s, translate(err, slot.ErrNotFound, nil)
}
