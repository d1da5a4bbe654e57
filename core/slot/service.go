package slot

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

var (
	// errors
	ErrNotFound   = core.NewNotFoundError("prayer slot not found")
	ErrSlotExists = core.NewConflictError("a prayer slot with this time range already exists")
)

type (
	Repository interface {
		// CreateSlot fails with ErrSlotExists when slot_time is taken.
		CreateSlot(ctx context.Context, s Slot) (Slot, error)
		// QuerySlots returns slots ordered by time of day, ascending.
		QuerySlots(ctx context.Context, availableOnly bool) ([]Slot, error)
		GetSlotByTime(ctx context.Context, slotTime string) (Slot, error)
		SetSlotAvailability(ctx context.Context, slotTime string, available bool, updatedAt time.Time) (Slot, error)
	}

	Service struct {
		repo Repository
		conf *core.Config
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf}
}

func (svc *Service) ListAvailable(ctx context.Context) ([]Slot, error) {
	return svc.repo.QuerySlots(ctx, true)
}

func (svc *Service) List(ctx context.Context) ([]Slot, error) {
	return svc.repo.QuerySlots(ctx, false)
}

func (svc *Service) Get(ctx context.Context, slotTime string) (Slot, error) {
	st, err := NormalizeRange(slotTime)
	if err != nil {
		return Slot{}, err
	}
	return svc.repo.GetSlotByTime(ctx, st)
}

func (svc *Service) MarkAvailability(ctx context.Context, slotTime string, available bool) (Slot, error) {
	st, err := NormalizeRange(slotTime)
	if err != nil {
		return Slot{}, err
	}
	return svc.repo.SetSlotAvailability(ctx, st, available, core.NowFunc().UTC())
}

func (svc *Service) Create(ctx context.Context, ns NewSlot) (Slot, error) {
	st, err := NormalizeRange(ns.SlotTime)
	if err != nil {
		return Slot{}, err
	}
	now := core.NowFunc().UTC()
	s := Slot{
		SlotTime:    st,
		IsAvailable: true,
		Timezone:    ns.Timezone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ns.IsAvailable != nil {
		s.IsAvailable = *ns.IsAvailable
	}
	if s.Timezone == "" {
		s.Timezone = svc.conf.Slots.Timezone
	}
	return svc.repo.CreateSlot(ctx, s)
}

// Seed inserts every catalog slot missing from the store and returns how many were created.
func (svc *Service) Seed(ctx context.Context) (int, error) {
	var created int
	for _, st := range Catalog() {
		_, err := svc.Create(ctx, NewSlot{SlotTime: st})
		switch {
		case err == nil:
			created++
		case errors.Cause(err) == ErrSlotExists:
		default:
			return created, errors.Wrapf(err, "seeding slot %s", st)
		}
	}
	return created, nil
}
