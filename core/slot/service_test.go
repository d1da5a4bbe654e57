package slot_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
	"github.com/Zimbwa03/Global-Intercessors-sub006/tests"
)

func TestService_Seed(t *testing.T) {
	env := testutil.NewEnv(t) // seeds once
	ctx := context.Background()

	created, err := env.Slots.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if created != 0 {
		t.Errorf("Seed() twice created %d slots; want 0", created)
	}

	all, err := env.Slots.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != slot.PerDay {
		t.Fatalf("List() returned %d slots; want %d", len(all), slot.PerDay)
	}
	for i, s := range all {
		if s.SlotTime != slot.Catalog()[i] {
			t.Errorf("List()[%d] = %s; want %s", i, s.SlotTime, slot.Catalog()[i])
		}
		if !s.IsAvailable {
			t.Errorf("seeded slot %s is not available", s.SlotTime)
		}
	}
}

func TestService_MarkAvailability(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	s, err := env.Slots.MarkAvailability(ctx, "03:00-03:30", false)
	if err != nil {
		t.Fatalf("MarkAvailability() error = %v", err)
	}
	if s.IsAvailable || s.SlotTime != "03:00–03:30" {
		t.Errorf("MarkAvailability() = %+v", s)
	}

	available, err := env.Slots.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("ListAvailable() error = %v", err)
	}
	if len(available) != slot.PerDay-1 {
		t.Errorf("ListAvailable() returned %d slots; want %d", len(available), slot.PerDay-1)
	}
	for _, a := range available {
		if a.SlotTime == s.SlotTime {
			t.Errorf("ListAvailable() contains unavailable slot %s", s.SlotTime)
		}
	}
}

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	_, err := env.Slots.Create(ctx, slot.NewSlot{SlotTime: "06:00–06:30"})
	if errors.Cause(err) != slot.ErrSlotExists {
		t.Errorf("Create() duplicate error = %v; want %v", err, slot.ErrSlotExists)
	}

	if _, err = env.Slots.Get(ctx, "06:15–06:45"); err == nil {
		t.Errorf("Get() expected a validation error")
	}

	env.DB.Reset()
	s, err := env.Slots.Create(ctx, slot.NewSlot{SlotTime: "06:00-06:30"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if s.ID == 0 || s.SlotTime != "06:00–06:30" || !s.IsAvailable || s.Timezone != env.Conf.Slots.Timezone {
		t.Errorf("Create() = %+v", s)
	}
}

func TestNewSlot_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()
	no := false
	tests := []struct {
		name    string
		ns      slot.NewSlot
		wantErr bool
	}{
		{name: "valid", ns: slot.NewSlot{SlotTime: "06:00–06:30", IsAvailable: &no, Timezone: "UTC"}},
		{name: "missing time", ns: slot.NewSlot{}, wantErr: true},
		{name: "bad range", ns: slot.NewSlot{SlotTime: "06:00–07:00"}, wantErr: true},
		{name: "unknown timezone", ns: slot.NewSlot{SlotTime: "06:00–06:30", Timezone: "Mars/Olympus"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.ns.Validate(validate); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}
