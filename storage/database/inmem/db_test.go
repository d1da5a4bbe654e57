package inmemdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
)

func TestTxManager_RunInTx(t *testing.T) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		fn        func(ctx context.Context, slots slot.Repository, updates update.Repository) error
		wantErr   error
		wantSlots int
	}{
		{
			name: "commit",
			fn: func(ctx context.Context, slots slot.Repository, updates update.Repository) error {
				_, err := slots.CreateSlot(ctx, slot.Slot{SlotTime: "06:00–06:30"})
				return err
			},
			wantSlots: 1,
		},
		{
			name: "rollback",
			fn: func(ctx context.Context, slots slot.Repository, updates update.Repository) error {
				if _, err := slots.CreateSlot(ctx, slot.Slot{SlotTime: "06:00–06:30"}); err != nil {
					return err
				}
				if _, err := updates.CreateUpdate(ctx, update.Update{Title: "x", CreatedAt: time.Now()}); err != nil {
					return err
				}
				return errBoom
			},
			wantErr: errBoom,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := Open()
			txm := NewTxManager(db)
			slots, updates := NewSlotRepository(db), NewUpdateRepository(db)

			err := txm.RunInTx(ctx, func(ctx context.Context) error { return tt.fn(ctx, slots, updates) })
			if err != tt.wantErr {
				t.Fatalf("RunInTx() error = %v; wantErr %v", err, tt.wantErr)
			}
			all, _ := slots.QuerySlots(ctx, false)
			if len(all) != tt.wantSlots {
				t.Errorf("QuerySlots() returned %d slots; want %d", len(all), tt.wantSlots)
			}
			if tt.wantErr != nil {
				if feed, _ := updates.QueryUpdates(ctx, time.Time{}, 10); len(feed) != 0 {
					t.Errorf("QueryUpdates() returned %d updates after rollback", len(feed))
				}
			}
		})
	}
}

func TestTxManager_nested(t *testing.T) {
	ctx := context.Background()
	db := Open()
	txm := NewTxManager(db)
	slots := NewSlotRepository(db)

	done := make(chan error, 1)
	go func() {
		done <- txm.RunInTx(ctx, func(ctx context.Context) error {
			return txm.RunInTx(ctx, func(ctx context.Context) error {
				_, err := slots.CreateSlot(ctx, slot.Slot{SlotTime: "06:00–06:30"})
				return err
			})
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunInTx() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("nested RunInTx() deadlocked")
	}

	errInner := errors.New("inner")
	err := txm.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := slots.CreateSlot(ctx, slot.Slot{SlotTime: "07:00–07:30"}); err != nil {
			return err
		}
		return txm.RunInTx(ctx, func(context.Context) error { return errInner })
	})
	if err != errInner {
		t.Fatalf("RunInTx() error = %v; want %v", err, errInner)
	}
	if _, err = slots.GetSlotByTime(ctx, "07:00–07:30"); err != slot.ErrNotFound {
		t.Errorf("GetSlotByTime() error = %v; want the outer transaction rolled back", err)
	}
}

func TestTxManager_rollbackKeepsOutsideWrites(t *testing.T) {
	ctx := context.Background()
	db := Open()
	txm := NewTxManager(db)
	slots := NewSlotRepository(db)

	if _, err := slots.CreateSlot(ctx, slot.Slot{SlotTime: "06:00–06:30", IsAvailable: true}); err != nil {
		t.Fatalf("CreateSlot() error = %v", err)
	}

	errBoom := errors.New("boom")
	started, release := make(chan struct{}), make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- txm.RunInTx(ctx, func(ctx context.Context) error {
			if _, err := slots.CreateSlot(ctx, slot.Slot{SlotTime: "07:00–07:30"}); err != nil {
				return err
			}
			close(started)
			<-release
			return errBoom
		})
	}()
	<-started

	writeDone := make(chan error, 1)
	go func() {
		_, err := slots.SetSlotAvailability(ctx, "06:00–06:30", false, time.Now())
		writeDone <- err
	}()

	select {
	case err := <-writeDone:
		t.Fatalf("SetSlotAvailability() returned %v while a transaction was running", err)
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	if err := <-txDone; err != errBoom {
		t.Fatalf("RunInTx() error = %v; want %v", err, errBoom)
	}
	if err := <-writeDone; err != nil {
		t.Fatalf("SetSlotAvailability() error = %v", err)
	}

	s, err := slots.GetSlotByTime(ctx, "06:00–06:30")
	if err != nil {
		t.Fatalf("GetSlotByTime() error = %v", err)
	}
	if s.IsAvailable {
		t.Error("slot is available; want the write made outside the transaction to survive rollback")
	}
	if _, err = slots.GetSlotByTime(ctx, "07:00–07:30"); err != slot.ErrNotFound {
		t.Errorf("GetSlotByTime() error = %v; want the transaction's slot rolled back", err)
	}
}
