package campaign

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
)

var (
	// errors
	ErrNotFound             = core.NewNotFoundError("fasting program not found")
	ErrNoActiveProgram      = core.NewNotFoundError("there is no active fasting program")
	ErrTemplateNotFound     = core.NewNotFoundError("program template not found")
	ErrTemplateExists       = core.NewConflictError("a program template with this name already exists")
	ErrUnresolvableTemplate = core.NewStateError("this template has no title or duration to generate a program from")
	ErrRegistrationClosed   = core.NewStateError("registration for this fasting program is not open")
	ErrProgramFull          = core.NewStateError("this fasting program has reached its maximum number of participants")
	ErrCancelled            = core.NewStateError("this fasting program has been cancelled")
	ErrAlreadyRegistered    = core.NewConflictError("you are already registered for this fasting program")
	ErrAnotherActive        = core.NewConflictError("another fasting program is already active")

	errStartTime = errors.New("must be a 24h clock time (HH:MM)")
)

type (
	Repository interface {
		CreateTemplate(ctx context.Context, t Template) (Template, error)
		GetTemplateByName(ctx context.Context, name string) (Template, error)
		QueryTemplates(ctx context.Context) ([]Template, error)

		// LockPrograms serialises writers of programs and registrations until the transaction ends.
		LockPrograms(ctx context.Context) error
		// GetActiveProgram fails with ErrNoActiveProgram when no row is active.
		GetActiveProgram(ctx context.Context) (Program, error)
		GetProgramByID(ctx context.Context, id string) (Program, error)
		DeactivatePrograms(ctx context.Context, updatedAt time.Time) error
		// CreateProgram fails with ErrAnotherActive when p is active and another row already is.
		CreateProgram(ctx context.Context, p Program) (Program, error)
		UpdateProgram(ctx context.Context, p Program) (Program, error)

		// CreateRegistration fails with ErrAlreadyRegistered on a duplicate (program, user).
		CreateRegistration(ctx context.Context, r Registration) (Registration, error)
		QueryRegistrations(ctx context.Context, programID string) ([]Registration, error)
	}

	Feed interface {
		Post(ctx context.Context, nu update.NewUpdate) (update.Update, error)
	}

	Service struct {
		txm     core.TxManager
		repo    Repository
		feed    Feed
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(txm core.TxManager, repo Repository, feed Feed, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		txm:     txm,
		repo:    repo,
		feed:    feed,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *Service) now() time.Time {
	return core.NowFunc().UTC().Truncate(time.Second)
}

// DefaultStart is one week from now at the configured evening hour.
func (svc *Service) DefaultStart(now time.Time) time.Time {
	loc := svc.conf.Campaign.Location()
	d := now.In(loc).AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), svc.conf.Campaign.StartHour, 0, 0, 0, loc)
}

// StartAt combines an optional day and HH:MM into a start instant in the campaign timezone.
func (svc *Service) StartAt(day *core.Date, clock string) (*time.Time, error) {
	if day == nil {
		return nil, nil
	}
	hour, minute := svc.conf.Campaign.StartHour, 0
	if clock != "" {
		t, err := time.Parse("15:04", clock)
		if err != nil {
			return nil, core.NewValidationError(err, core.FieldError{Field: "start_time", Error: errStartTime.Error()})
		}
		hour, minute = t.Hour(), t.Minute()
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, svc.conf.Campaign.Location())
	return &start, nil
}

// CreateFromTemplate generates a program from the named template and makes it the single active one.
// A nil start means DefaultStart.
func (svc *Service) CreateFromTemplate(ctx context.Context, createdBy, templateName string, start *time.Time) (Program, error) {
	return svc.createFromTemplate(ctx, createdBy, templateName, start, false)
}

func (svc *Service) createFromTemplate(
	ctx context.Context,
	createdBy, templateName string,
	start *time.Time,
	keepSameStart bool,
) (Program, error) {
	now := svc.now()
	var p Program
	err := svc.txm.RunInTx(ctx, func(ctx context.Context) error {
		t, err := svc.repo.GetTemplateByName(ctx, core.CleanString(templateName))
		if err != nil {
			return errors.Wrap(err, "getting template")
		}
		if !t.Resolvable() {
			return ErrUnresolvableTemplate
		}

		startAt := svc.DefaultStart(now)
		if start != nil {
			startAt = *start
		}

		if err = svc.repo.LockPrograms(ctx); err != nil {
			return errors.Wrap(err, "locking programs")
		}
		if keepSameStart {
			active, err := svc.repo.GetActiveProgram(ctx)
			switch {
			case err == nil && active.StartDate.Equal(startAt.UTC()) && active.TemplateName.String == t.TemplateName:
				p = active
				return nil
			case err != nil && errors.Cause(err) != ErrNoActiveProgram:
				return errors.Wrap(err, "getting active program")
			}
		}

		dates := ScheduleDates(startAt, t.DurationDays, now)
		if err = svc.repo.DeactivatePrograms(ctx, now); err != nil {
			return errors.Wrap(err, "deactivating programs")
		}
		p, err = svc.repo.CreateProgram(ctx, Program{
			ProgramTitle:          t.DefaultTitle,
			ProgramSubtitle:       t.DefaultSubtitle,
			Description:           t.DefaultDescription,
			PrayerFocus:           t.DefaultPrayerFocus,
			Instructions:          t.DefaultInstructions,
			StartDate:             dates.Start.UTC(),
			EndDate:               dates.End.UTC(),
			RegistrationOpenDate:  dates.RegistrationOpen.UTC(),
			RegistrationCloseDate: dates.RegistrationClose.UTC(),
			MaxParticipants:       t.MaxParticipants,
			ProgramStatus:         ComputeStatus(now, dates),
			IsActive:              true,
			TemplateName:          null.StringFrom(t.TemplateName),
			CreatedBy:             createdBy,
			CreatedAt:             now,
			UpdatedAt:             now,
		})
		if err != nil {
			return errors.Wrap(err, "creating program")
		}

		loc := svc.conf.Campaign.Location()
		_, err = svc.feed.Post(ctx, update.NewUpdate{
			Kind:  update.KindCampaign,
			Title: "New fasting program: " + p.ProgramTitle,
			Description: fmt.Sprintf(
				"Runs from %s to %s. Registration closes %s.",
				p.StartDate.In(loc).Format(time.RFC1123), p.EndDate.In(loc).Format(time.RFC1123),
				p.RegistrationCloseDate.In(loc).Format(time.RFC1123),
			),
		})
		return errors.Wrap(err, "posting update")
	})
	if err != nil {
		return Program{}, err
	}
	return p, nil
}

// ScheduleNextMonthly creates the program of the default template on the last Friday of the month offset
// months from now. Running it again for the same month returns the program already scheduled.
func (svc *Service) ScheduleNextMonthly(ctx context.Context, offset int, adminEmail string) (Program, error) {
	loc := svc.conf.Campaign.Location()
	start := MonthlyStart(svc.now(), offset, svc.conf.Campaign.StartHour, loc)
	if adminEmail == "" {
		adminEmail = svc.conf.Campaign.AdminEmail
	}
	return svc.createFromTemplate(ctx, adminEmail, svc.conf.Campaign.DefaultTemplate, &start, true)
}

// RefreshStatus persists the computed status of the active program. Cancelled programs are left alone.
func (svc *Service) RefreshStatus(ctx context.Context) (Program, error) {
	now := svc.now()
	var p Program
	err := svc.txm.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if p, err = svc.repo.GetActiveProgram(ctx); err != nil {
			return errors.Wrap(err, "getting active program")
		}
		status := p.StatusAt(now)
		if status == p.ProgramStatus {
			return nil
		}
		p.ProgramStatus = status
		p.UpdatedAt = now
		p, err = svc.repo.UpdateProgram(ctx, p)
		return errors.Wrap(err, "updating program")
	})
	return p, err
}

// GetActive returns the active program with its status computed at read time.
func (svc *Service) GetActive(ctx context.Context) (ActiveProgram, error) {
	p, err := svc.repo.GetActiveProgram(ctx)
	if err != nil {
		return ActiveProgram{}, err
	}
	return Describe(p, svc.now()), nil
}

func (svc *Service) Get(ctx context.Context, id string) (ActiveProgram, error) {
	p, err := svc.repo.GetProgramByID(ctx, id)
	if err != nil {
		return ActiveProgram{}, err
	}
	return Describe(p, svc.now()), nil
}

// Register signs the caller up while registration is open and spots remain.
func (svc *Service) Register(ctx context.Context, caller core.Identity, programID string) (Registration, error) {
	now := svc.now()
	var r Registration
	var p Program
	err := svc.txm.RunInTx(ctx, func(ctx context.Context) error {
		if err := svc.repo.LockPrograms(ctx); err != nil {
			return errors.Wrap(err, "locking programs")
		}
		var err error
		if p, err = svc.repo.GetProgramByID(ctx, programID); err != nil {
			return errors.Wrap(err, "getting program")
		}
		switch status := p.StatusAt(now); {
		case status == StatusCancelled:
			return ErrCancelled
		case status != StatusRegistrationOpen || !p.IsActive:
			return ErrRegistrationClosed
		}
		if p.MaxParticipants > 0 && p.CurrentParticipants >= p.MaxParticipants {
			return ErrProgramFull
		}
		r, err = svc.repo.CreateRegistration(ctx, Registration{
			ProgramID: p.ID,
			UserID:    caller.UserID,
			UserEmail: caller.Email,
			CreatedAt: now,
		})
		return err
	})
	if err != nil {
		return Registration{}, err
	}

	if r.UserEmail != "" && svc.mailSvc != nil {
		loc := svc.conf.Campaign.Location()
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Address: r.UserEmail}},
			Subject:      "Registered for " + p.ProgramTitle,
			TemplateName: "campaign_registration",
			TemplateData: map[string]interface{}{
				"ProgramTitle": p.ProgramTitle,
				"StartDate":    p.StartDate.In(loc).Format(time.RFC1123),
				"EndDate":      p.EndDate.In(loc).Format(time.RFC1123),
			},
		})
	}
	return r, nil
}

func (svc *Service) Registrations(ctx context.Context, programID string) ([]Registration, error) {
	if _, err := svc.repo.GetProgramByID(ctx, programID); err != nil {
		return nil, err
	}
	return svc.repo.QueryRegistrations(ctx, programID)
}

// Cancel marks a program cancelled. Cancelling twice is a no-op.
func (svc *Service) Cancel(ctx context.Context, id string) (Program, error) {
	now := svc.now()
	var p Program
	err := svc.txm.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if p, err = svc.repo.GetProgramByID(ctx, id); err != nil {
			return errors.Wrap(err, "getting program")
		}
		if p.ProgramStatus == StatusCancelled {
			return nil
		}
		p.ProgramStatus = StatusCancelled
		p.UpdatedAt = now
		if p, err = svc.repo.UpdateProgram(ctx, p); err != nil {
			return errors.Wrap(err, "updating program")
		}
		_, err = svc.feed.Post(ctx, update.NewUpdate{
			Kind:        update.KindCampaign,
			Title:       "Fasting program cancelled: " + p.ProgramTitle,
			Description: "This program will not take place.",
		})
		return errors.Wrap(err, "posting update")
	})
	return p, err
}

func (svc *Service) Templates(ctx context.Context) ([]Template, error) {
	return svc.repo.QueryTemplates(ctx)
}

func (svc *Service) CreateTemplate(ctx context.Context, nt NewTemplate) (Template, error) {
	return svc.repo.CreateTemplate(ctx, Template{
		TemplateName:        nt.TemplateName,
		DurationDays:        nt.DurationDays,
		DefaultTitle:        nt.DefaultTitle,
		DefaultSubtitle:     nt.DefaultSubtitle,
		DefaultDescription:  nt.DefaultDescription,
		DefaultPrayerFocus:  nt.DefaultPrayerFocus,
		DefaultInstructions: nt.DefaultInstructions,
		MaxParticipants:     nt.MaxParticipants,
		CreatedAt:           svc.now(),
	})
}
