package sqlxrepos

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/skiprequest"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
	"github.com/Zimbwa03/Global-Intercessors-sub006/storage/database"
)

const tables = "attendance_log, skip_requests, prayer_slots, updates, fasting_registrations, fasting_program_details"

// openTestDB connects to TEST_DATABASE_URL, migrates it and empties the mutable tables.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.OpenURL(dsn)
	if err != nil {
		t.Fatalf("OpenURL() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db.DB); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if _, err = db.Exec("TRUNCATE " + tables + " RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("truncating tables: %v", err)
	}
	return db
}

func newAssignment(userID, slotTime string) assignment.Assignment {
	now := time.Now().UTC()
	return assignment.Assignment{
		UserID:    userID,
		UserEmail: userID + "@intercessors.test",
		SlotTime:  slotTime,
		Status:    assignment.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSlotRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewSlotRepository(db)

	slots, err := repo.QuerySlots(ctx, false)
	if err != nil {
		t.Fatalf("QuerySlots() error = %v", err)
	}
	if len(slots) < slot.PerDay {
		t.Fatalf("QuerySlots() returned %d slots; want at least %d seeded", len(slots), slot.PerDay)
	}
	if got := slots[0].SlotTime; got != "00:00–00:30" {
		t.Errorf("first slot = %q; want %q", got, "00:00–00:30")
	}
	if _, err = repo.CreateSlot(ctx, slots[0]); err != slot.ErrSlotExists {
		t.Errorf("CreateSlot() duplicate error = %v; want %v", err, slot.ErrSlotExists)
	}
	if _, err = repo.GetSlotByTime(ctx, "25:00–25:30"); err != slot.ErrNotFound {
		t.Errorf("GetSlotByTime() error = %v; want %v", err, slot.ErrNotFound)
	}
}

func TestAssignmentRepository_holdingConstraints(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewAssignmentRepository(db)

	a, err := repo.CreateAssignment(ctx, newAssignment("alice", "06:00–06:30"))
	if err != nil {
		t.Fatalf("CreateAssignment() error = %v", err)
	}
	if _, err = repo.CreateAssignment(ctx, newAssignment("bob", "06:00–06:30")); err != assignment.ErrSlotUnavailable {
		t.Errorf("CreateAssignment() same slot error = %v; want %v", err, assignment.ErrSlotUnavailable)
	}
	if _, err = repo.CreateAssignment(ctx, newAssignment("alice", "07:00–07:30")); err != assignment.ErrUserHasSlot {
		t.Errorf("CreateAssignment() same user error = %v; want %v", err, assignment.ErrUserHasSlot)
	}
	if _, err = repo.CreateAssignment(ctx, newAssignment("bob", "nowhere")); err != assignment.ErrSlotUnavailable {
		t.Errorf("CreateAssignment() unknown slot error = %v; want %v", err, assignment.ErrSlotUnavailable)
	}

	a.Status = assignment.StatusReleased
	a.MissedCount = 3
	if _, err = repo.UpdateAssignment(ctx, a); err != nil {
		t.Fatalf("UpdateAssignment() error = %v", err)
	}
	if _, err = repo.CreateAssignment(ctx, newAssignment("bob", "06:00–06:30")); err != nil {
		t.Errorf("CreateAssignment() after release error = %v", err)
	}
	if _, err = repo.GetAssignmentByID(ctx, "not-a-uuid"); err != assignment.ErrNotFound {
		t.Errorf("GetAssignmentByID() error = %v; want %v", err, assignment.ErrNotFound)
	}
}

func TestSkipRequestRepository_onePending(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	a, err := NewAssignmentRepository(db).CreateAssignment(ctx, newAssignment("alice", "06:00–06:30"))
	if err != nil {
		t.Fatalf("CreateAssignment() error = %v", err)
	}
	repo := NewSkipRequestRepository(db)

	sr := skiprequest.SkipRequest{
		AssignmentID: a.ID,
		UserID:       a.UserID,
		UserEmail:    a.UserEmail,
		SkipDays:     3,
		Reason:       "travel",
		Status:       skiprequest.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	created, err := repo.CreateSkipRequest(ctx, sr)
	if err != nil {
		t.Fatalf("CreateSkipRequest() error = %v", err)
	}
	if _, err = repo.CreateSkipRequest(ctx, sr); err != skiprequest.ErrPendingExists {
		t.Errorf("CreateSkipRequest() second pending error = %v; want %v", err, skiprequest.ErrPendingExists)
	}

	created.Status = skiprequest.StatusRejected
	if _, err = repo.UpdateSkipRequest(ctx, created); err != nil {
		t.Fatalf("UpdateSkipRequest() error = %v", err)
	}
	if _, err = repo.CreateSkipRequest(ctx, sr); err != nil {
		t.Errorf("CreateSkipRequest() after rejection error = %v", err)
	}
}

func TestCampaignRepository_singleActive(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewCampaignRepository(db)
	txm := NewTxManager(db)

	now := time.Now().UTC().Truncate(time.Second)
	p := campaign.Program{
		ProgramTitle:          "Fast",
		StartDate:             now,
		EndDate:               now.AddDate(0, 0, 3),
		RegistrationOpenDate:  now.AddDate(0, 0, -7),
		RegistrationCloseDate: now.AddDate(0, 0, -1),
		ProgramStatus:         campaign.StatusActive,
		IsActive:              true,
		CreatedBy:             "admin@intercessors.test",
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	first, err := repo.CreateProgram(ctx, p)
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}
	if _, err = repo.CreateProgram(ctx, p); err != campaign.ErrAnotherActive {
		t.Errorf("CreateProgram() second active error = %v; want %v", err, campaign.ErrAnotherActive)
	}

	err = txm.RunInTx(ctx, func(ctx context.Context) error {
		if err := repo.LockPrograms(ctx); err != nil {
			return err
		}
		if err := repo.DeactivatePrograms(ctx, now); err != nil {
			return err
		}
		_, err := repo.CreateProgram(ctx, p)
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx() error = %v", err)
	}

	active, err := repo.GetActiveProgram(ctx)
	if err != nil {
		t.Fatalf("GetActiveProgram() error = %v", err)
	}
	if active.ID == first.ID {
		t.Error("GetActiveProgram() returned the deactivated program")
	}

	r := campaign.Registration{ProgramID: active.ID, UserID: "alice", UserEmail: "alice@intercessors.test", CreatedAt: now}
	if _, err = repo.CreateRegistration(ctx, r); err != nil {
		t.Fatalf("CreateRegistration() error = %v", err)
	}
	if _, err = repo.CreateRegistration(ctx, r); err != campaign.ErrAlreadyRegistered {
		t.Errorf("CreateRegistration() duplicate error = %v; want %v", err, campaign.ErrAlreadyRegistered)
	}
	if active, err = repo.GetProgramByID(ctx, active.ID); err != nil || active.CurrentParticipants != 1 {
		t.Errorf("GetProgramByID() = %d participants, %v; want 1", active.CurrentParticipants, err)
	}
}

func TestCampaignRepository_templates(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewCampaignRepository(db)

	seeded, err := repo.GetTemplateByName(ctx, "Monthly 3-Day Fast")
	if err != nil {
		t.Fatalf("GetTemplateByName() error = %v", err)
	}
	if seeded.DurationDays != 3 {
		t.Errorf("DurationDays = %d; want 3", seeded.DurationDays)
	}

	dup := campaign.Template{TemplateName: seeded.TemplateName, DurationDays: 1, DefaultTitle: "x", CreatedAt: time.Now().UTC()}
	if _, err = repo.CreateTemplate(ctx, dup); err != campaign.ErrTemplateExists {
		t.Errorf("CreateTemplate() duplicate error = %v; want %v", err, campaign.ErrTemplateExists)
	}

	var n int
	if err = db.Get(&n, "SELECT COUNT(*) FROM fasting_event_templates"); err != nil {
		t.Fatalf("counting templates: %v", err)
	}
	if n == 0 {
		t.Error("fasting_event_templates is empty")
	}
}

func TestTxManager_rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewAssignmentRepository(db)
	errBoom := errors.New("boom")

	err := NewTxManager(db).RunInTx(ctx, func(ctx context.Context) error {
		if _, err := repo.CreateAssignment(ctx, newAssignment("alice", "06:00–06:30")); err != nil {
			return err
		}
		return errBoom
	})
	if err != errBoom {
		t.Fatalf("RunInTx() error = %v; want %v", err, errBoom)
	}
	if _, err = repo.GetHoldingByUser(ctx, "alice"); err != assignment.ErrNotFound {
		t.Errorf("GetHoldingByUser() error = %v; want the insert rolled back", err)
	}
}
