package assignment

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/attendance"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
)

const DefaultMissedThreshold = 3

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("slot assignment not found")
	ErrSlotUnavailable = core.NewConflictError("this prayer slot is not available")
	ErrUserHasSlot     = core.NewConflictError("you already hold a prayer slot, release it before claiming another")
	ErrReleased        = core.NewStateError("this slot assignment has been released")
)

type (
	Repository interface {
		// CreateAssignment fails with ErrSlotUnavailable or ErrUserHasSlot when the slot or the user
		// already has a holding assignment.
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		GetHoldingBySlot(ctx context.Context, slotTime string) (Assignment, error)
		GetHoldingByUser(ctx context.Context, userID string) (Assignment, error)
		FilterAssignments(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
	}

	AttendanceLog interface {
		Record(ctx context.Context, nr attendance.NewRecord) (attendance.Record, error)
		Exists(ctx context.Context, userID string, slotID int, date core.Date) (bool, error)
	}

	Feed interface {
		Post(ctx context.Context, nu update.NewUpdate) (update.Update, error)
	}

	Service struct {
		txm     core.TxManager
		repo    Repository
		slots   slot.Repository
		log     AttendanceLog
		feed    Feed
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(
	txm core.TxManager,
	repo Repository,
	slots slot.Repository,
	log AttendanceLog,
	feed Feed,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		txm:     txm,
		repo:    repo,
		slots:   slots,
		log:     log,
		feed:    feed,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *Service) threshold() int {
	if svc.conf.Slots.MissedThreshold > 0 {
		return svc.conf.Slots.MissedThreshold
	}
	return DefaultMissedThreshold
}

// Claim gives the caller the slot if it is available and held by nobody.
func (svc *Service) Claim(ctx context.Context, caller core.Identity, slotTime string) (Assignment, error) {
	st, err := slot.NormalizeRange(slotTime)
	if err != nil {
		return Assignment{}, err
	}

	var a Assignment
	err = svc.txm.RunInTx(ctx, func(ctx context.Context) error {
		s, err := svc.slots.GetSlotByTime(ctx, st)
		if err != nil {
			return errors.Wrap(err, "getting slot")
		}
		if !s.IsAvailable {
			return ErrSlotUnavailable
		}

		if _, err = svc.repo.GetHoldingBySlot(ctx, st); err == nil {
			return ErrSlotUnavailable
		} else if errors.Cause(err) != ErrNotFound {
			return errors.Wrap(err, "checking slot holder")
		}
		if _, err = svc.repo.GetHoldingByUser(ctx, caller.UserID); err == nil {
			return ErrUserHasSlot
		} else if errors.Cause(err) != ErrNotFound {
			return errors.Wrap(err, "checking user assignment")
		}

		now := core.NowFunc().UTC()
		a, err = svc.repo.CreateAssignment(ctx, Assignment{
			UserID:    caller.UserID,
			UserEmail: caller.Email,
			SlotTime:  st,
			Status:    StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return err
	})
	return a, err
}

// RecordOutcome logs an occurrence and folds it into the missed counter.
// A miss inside the skip window is logged as skipped and does not count.
func (svc *Service) RecordOutcome(ctx context.Context, id string, o Outcome) (Assignment, error) {
	a, _, released, err := svc.recordOutcome(ctx, id, o)
	if err != nil {
		return Assignment{}, err
	}
	if released {
		svc.notifyReleased(a)
	}
	return a, nil
}

// Ingest logs a record reported by the attendance service. The first record of an occurrence of
// the slot the user holds goes through the outcome pipeline so it moves the missed counter.
// Any other record is only logged.
func (svc *Service) Ingest(ctx context.Context, nr attendance.NewRecord) (attendance.Record, error) {
	var (
		a        Assignment
		r        attendance.Record
		released bool
	)
	err := svc.txm.RunInTx(ctx, func(ctx context.Context) error {
		id, err := svc.countedAssignment(ctx, nr)
		if err != nil {
			return err
		}
		if id == "" {
			r, err = svc.log.Record(ctx, nr)
			return errors.Wrap(err, "recording attendance")
		}
		a, r, released, err = svc.recordOutcome(ctx, id, Outcome{Date: nr.Date, Status: nr.Status, Meeting: nr.Meeting})
		return err
	})
	if err != nil {
		return attendance.Record{}, err
	}
	if released {
		svc.notifyReleased(a)
	}
	return r, nil
}

// countedAssignment returns the id of the holding assignment nr is the first record for, or "".
func (svc *Service) countedAssignment(ctx context.Context, nr attendance.NewRecord) (string, error) {
	a, err := svc.repo.GetHoldingByUser(ctx, nr.UserID)
	if errors.Cause(err) == ErrNotFound {
		return "", nil
	} else if err != nil {
		return "", errors.Wrap(err, "getting user assignment")
	}
	s, err := svc.slots.GetSlotByTime(ctx, a.SlotTime)
	if err != nil {
		return "", errors.Wrap(err, "getting slot")
	}
	if s.ID != nr.SlotID || a.CreatedAt.After(s.StartsAt(nr.Date)) {
		return "", nil
	}
	exists, err := svc.log.Exists(ctx, nr.UserID, s.ID, nr.Date)
	if err != nil {
		return "", errors.Wrap(err, "checking attendance")
	}
	if exists {
		return "", nil
	}
	return a.ID, nil
}

// recordOutcome does the work of RecordOutcome without notifying; released reports whether the slot was let go.
func (svc *Service) recordOutcome(ctx context.Context, id string, o Outcome) (a Assignment, r attendance.Record, released bool, err error) {
	err = svc.txm.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if a, err = svc.repo.GetAssignmentByID(ctx, id); err != nil {
			return errors.Wrap(err, "getting assignment")
		}
		if !a.Holding() {
			return ErrReleased
		}
		s, err := svc.slots.GetSlotByTime(ctx, a.SlotTime)
		if err != nil {
			return errors.Wrap(err, "getting slot")
		}

		now := core.NowFunc().UTC()
		logged := o.Status
		switch o.Status {
		case attendance.StatusAttended:
			if a.Status == StatusMissed {
				a.Status = StatusActive
			}
		case attendance.StatusMissed:
			if a.InSkipWindow(o.Date) {
				logged = attendance.StatusSkipped
				break
			}
			a.MissedCount++
			if a.MissedCount >= svc.threshold() {
				a.Status = StatusReleased
				a.ReleasedAt = null.TimeFrom(now)
				released = true
			} else if a.Status != StatusSkipped {
				a.Status = StatusMissed
			}
		default:
			return core.NewValidationError(
				fmt.Errorf("unknown outcome %q", o.Status),
				core.FieldError{Field: "status", Error: "status must be one of [attended missed]"},
			)
		}

		if r, err = svc.log.Record(ctx, attendance.NewRecord{
			UserID:  a.UserID,
			SlotID:  s.ID,
			Date:    o.Date,
			Status:  logged,
			Meeting: o.Meeting,
		}); err != nil {
			return errors.Wrap(err, "recording attendance")
		}

		a.UpdatedAt = now
		if a, err = svc.repo.UpdateAssignment(ctx, a); err != nil {
			return errors.Wrap(err, "updating assignment")
		}

		if released {
			if _, err = svc.feed.Post(ctx, update.NewUpdate{
				Kind:        update.KindSlotReleased,
				Title:       "Prayer slot released",
				Description: fmt.Sprintf("The %s slot was released after %d missed sessions and can be claimed.", a.SlotTime, a.MissedCount),
			}); err != nil {
				return errors.Wrap(err, "posting update")
			}
		}
		return nil
	})
	if err != nil {
		return Assignment{}, attendance.Record{}, false, err
	}
	return a, r, released, nil
}

func (svc *Service) notifyReleased(a Assignment) {
	if a.UserEmail == "" || svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: a.UserEmail}},
		Subject:      "Your prayer slot was released",
		TemplateName: "slot_released",
		TemplateData: map[string]interface{}{"SlotTime": a.SlotTime, "MissedCount": a.MissedCount},
	})
}

func (svc *Service) Get(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Assignment, error) {
	return svc.repo.FilterAssignments(ctx, filter, ordering)
}

// ForUser returns the user's assignments, newest first. Released ones are kept as history.
func (svc *Service) ForUser(ctx context.Context, userID string) ([]Assignment, error) {
	return svc.repo.FilterAssignments(
		ctx,
		QueryFilter{UserID: userID},
		[]core.DBOrdering{{Field: "created_at", Ascending: false}},
	)
}

// Release gives the slot back. Only the holder or an admin may release.
func (svc *Service) Release(ctx context.Context, caller core.Identity, id string) (Assignment, error) {
	var a Assignment
	err := svc.txm.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if a, err = svc.repo.GetAssignmentByID(ctx, id); err != nil {
			return errors.Wrap(err, "getting assignment")
		}
		if a.UserID != caller.UserID && !caller.IsAdmin() {
			return ErrNotFound
		}
		if !a.Holding() {
			return ErrReleased
		}
		now := core.NowFunc().UTC()
		a.Status = StatusReleased
		a.ReleasedAt = null.TimeFrom(now)
		a.UpdatedAt = now
		a, err = svc.repo.UpdateAssignment(ctx, a)
		return err
	})
	return a, err
}

// ResetMissed clears the missed counter of a holding assignment.
func (svc *Service) ResetMissed(ctx context.Context, id string) (Assignment, error) {
	var a Assignment
	err := svc.txm.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if a, err = svc.repo.GetAssignmentByID(ctx, id); err != nil {
			return errors.Wrap(err, "getting assignment")
		}
		if !a.Holding() {
			return ErrReleased
		}
		a.MissedCount = 0
		if a.Status == StatusMissed {
			a.Status = StatusActive
		}
		a.UpdatedAt = core.NowFunc().UTC()
		a, err = svc.repo.UpdateAssignment(ctx, a)
		return err
	})
	return a, err
}

// ExpireSkipWindows returns skipped assignments whose window has ended to their counted status.
func (svc *Service) ExpireSkipWindows(ctx context.Context) (int, error) {
	today := core.Today(svc.conf.Slots.Location())
	var expired int
	err := svc.txm.RunInTx(ctx, func(ctx context.Context) error {
		skipped, err := svc.repo.FilterAssignments(ctx, QueryFilter{Statuses: []string{StatusSkipped}}, nil)
		if err != nil {
			return errors.Wrap(err, "querying skipped assignments")
		}
		now := core.NowFunc().UTC()
		for _, a := range skipped {
			if a.SkipEndDate == nil || !a.SkipEndDate.Before(today.Time) {
				continue
			}
			a.Status = StatusActive
			if a.MissedCount > 0 {
				a.Status = StatusMissed
			}
			a.UpdatedAt = now
			if _, err = svc.repo.UpdateAssignment(ctx, a); err != nil {
				return errors.Wrap(err, "updating assignment")
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

// SweepMissed records a miss for every holding assignment with no attendance row on date.
// Assignments claimed after that day's occurrence started are left alone.
func (svc *Service) SweepMissed(ctx context.Context, date core.Date) (int, error) {
	holding, err := svc.repo.FilterAssignments(
		ctx,
		QueryFilter{Statuses: []string{StatusActive, StatusMissed, StatusSkipped}},
		[]core.DBOrdering{{Field: "slot_time", Ascending: true}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "querying holding assignments")
	}

	var swept int
	for _, a := range holding {
		s, err := svc.slots.GetSlotByTime(ctx, a.SlotTime)
		if err != nil {
			return swept, errors.Wrap(err, "getting slot")
		}
		if a.CreatedAt.After(s.StartsAt(date)) {
			continue
		}
		exists, err := svc.log.Exists(ctx, a.UserID, s.ID, date)
		if err != nil {
			return swept, errors.Wrap(err, "checking attendance")
		}
		if exists {
			continue
		}
		if _, err = svc.RecordOutcome(ctx, a.ID, Outcome{Date: date, Status: attendance.StatusMissed}); err != nil {
			return swept, errors.Wrapf(err, "recording missed outcome for %s", a.ID)
		}
		swept++
	}
	return swept, nil
}

// Coverage reports, for every catalog slot, whether someone holds it.
func (svc *Service) Coverage(ctx context.Context) (CoverageReport, error) {
	slots, err := svc.slots.QuerySlots(ctx, false)
	if err != nil {
		return CoverageReport{}, errors.Wrap(err, "querying slots")
	}
	holding, err := svc.repo.FilterAssignments(ctx, QueryFilter{Statuses: []string{StatusActive, StatusMissed, StatusSkipped}}, nil)
	if err != nil {
		return CoverageReport{}, errors.Wrap(err, "querying holding assignments")
	}
	bySlot := make(map[string]Assignment, len(holding))
	for _, a := range holding {
		bySlot[a.SlotTime] = a
	}

	report := CoverageReport{Slots: make([]SlotCoverage, 0, len(slots)), Total: len(slots)}
	for _, s := range slots {
		line := SlotCoverage{SlotTime: s.SlotTime, IsAvailable: s.IsAvailable}
		if a, ok := bySlot[s.SlotTime]; ok {
			line.Covered = true
			line.Status = a.Status
			line.UserEmail = a.UserEmail
			line.MissedCount = a.MissedCount
			report.Covered++
			if a.MissedCount == svc.threshold()-1 {
				report.AtRisk++
			}
		} else {
			report.Uncovered++
		}
		report.Slots = append(report.Slots, line)
	}
	return report, nil
}
