package skiprequest

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("skip request not found")
	ErrAlreadyProcessed = core.NewStateError("this skip request has already been processed")
	ErrPendingExists    = core.NewConflictError("a skip request for this slot is already pending")

	errSkipDaysRange = fmt.Errorf("skip_days must be between %d and %d", MinSkipDays, MaxSkipDays)
)

type (
	Repository interface {
		CreateSkipRequest(ctx context.Context, sr SkipRequest) (SkipRequest, error)
		GetSkipRequestByID(ctx context.Context, id string) (SkipRequest, error)
		// FilterSkipRequests returns matching requests, newest first.
		FilterSkipRequests(ctx context.Context, filter QueryFilter) ([]SkipRequest, error)
		UpdateSkipRequest(ctx context.Context, sr SkipRequest) (SkipRequest, error)
	}

	Feed interface {
		Post(ctx context.Context, nu update.NewUpdate) (update.Update, error)
	}

	Service struct {
		txm         core.TxManager
		repo        Repository
		assignments assignment.Repository
		feed        Feed
		mailSvc     core.EmailService
		conf        *core.Config
	}
)

func NewService(
	txm core.TxManager,
	repo Repository,
	assignments assignment.Repository,
	feed Feed,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		txm:         txm,
		repo:        repo,
		assignments: assignments,
		feed:        feed,
		mailSvc:     mailSvc,
		conf:        conf,
	}
}

// Submit files a pending skip request against one of the caller's assignments.
func (svc *Service) Submit(ctx context.Context, caller core.Identity, assignmentID string, nsr NewSkipRequest) (SkipRequest, error) {
	if nsr.SkipDays < MinSkipDays || nsr.SkipDays > MaxSkipDays {
		return SkipRequest{}, core.NewValidationError(errSkipDaysRange, core.FieldError{Field: "skip_days", Error: errSkipDaysRange.Error()})
	}

	var sr SkipRequest
	err := svc.txm.RunInTx(ctx, func(ctx context.Context) error {
		a, err := svc.assignments.GetAssignmentByID(ctx, assignmentID)
		if err != nil {
			return errors.Wrap(err, "getting assignment")
		}
		if a.UserID != caller.UserID && !caller.IsAdmin() {
			return assignment.ErrNotFound
		}
		if !a.Holding() {
			return assignment.ErrReleased
		}

		pending, err := svc.repo.FilterSkipRequests(ctx, QueryFilter{AssignmentID: a.ID, Statuses: []string{StatusPending}})
		if err != nil {
			return errors.Wrap(err, "querying pending requests")
		}
		if len(pending) > 0 {
			return ErrPendingExists
		}

		sr, err = svc.repo.CreateSkipRequest(ctx, SkipRequest{
			AssignmentID: a.ID,
			UserID:       a.UserID,
			UserEmail:    a.UserEmail,
			SkipDays:     nsr.SkipDays,
			Reason:       nsr.Reason,
			Status:       StatusPending,
			CreatedAt:    core.NowFunc().UTC(),
		})
		return err
	})
	return sr, err
}

func (svc *Service) Approve(ctx context.Context, admin core.Identity, id string, d Decision) (SkipRequest, error) {
	return svc.decide(ctx, admin, id, StatusApproved, d)
}

func (svc *Service) Reject(ctx context.Context, admin core.Identity, id string, d Decision) (SkipRequest, error) {
	return svc.decide(ctx, admin, id, StatusRejected, d)
}

// decide applies a terminal decision. The request, the assignment's skip window and the feed entry
// are written in one transaction; the requester is emailed after commit.
func (svc *Service) decide(ctx context.Context, admin core.Identity, id, status string, d Decision) (SkipRequest, error) {
	var sr SkipRequest
	var a assignment.Assignment
	err := svc.txm.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if sr, err = svc.repo.GetSkipRequestByID(ctx, id); err != nil {
			return errors.Wrap(err, "getting skip request")
		}
		if !sr.Pending() {
			return ErrAlreadyProcessed
		}
		if a, err = svc.assignments.GetAssignmentByID(ctx, sr.AssignmentID); err != nil {
			return errors.Wrap(err, "getting assignment")
		}

		now := core.NowFunc().UTC()
		if status == StatusApproved {
			if !a.Holding() {
				return assignment.ErrReleased
			}
			start := core.Today(svc.conf.Slots.Location())
			end := start.AddDays(sr.SkipDays - 1)
			a.SkipStartDate = &start
			a.SkipEndDate = &end
			a.Status = assignment.StatusSkipped
			a.UpdatedAt = now
			if a, err = svc.assignments.UpdateAssignment(ctx, a); err != nil {
				return errors.Wrap(err, "updating assignment")
			}
		}

		processedBy := admin.Email
		if processedBy == "" {
			processedBy = admin.UserID
		}
		sr.Status = status
		sr.AdminComment = null.NewString(d.AdminComment, d.AdminComment != "")
		sr.ProcessedBy = null.StringFrom(processedBy)
		sr.ProcessedAt = null.TimeFrom(now)
		if sr, err = svc.repo.UpdateSkipRequest(ctx, sr); err != nil {
			return errors.Wrap(err, "updating skip request")
		}

		_, err = svc.feed.Post(ctx, update.NewUpdate{
			Kind:        update.KindSkipRequest,
			Title:       "Skip request " + status,
			Description: fmt.Sprintf("The request to skip %d day(s) of the %s slot was %s.", sr.SkipDays, a.SlotTime, status),
		})
		return errors.Wrap(err, "posting update")
	})
	if err != nil {
		return SkipRequest{}, err
	}

	svc.notifyRequester(sr, a)
	return sr, nil
}

func (svc *Service) notifyRequester(sr SkipRequest, a assignment.Assignment) {
	if sr.UserEmail == "" || svc.mailSvc == nil {
		return
	}
	data := map[string]interface{}{
		"SkipDays":     sr.SkipDays,
		"SlotTime":     a.SlotTime,
		"Status":       sr.Status,
		"Approved":     sr.Status == StatusApproved,
		"StartDate":    "",
		"EndDate":      "",
		"AdminComment": sr.AdminComment.String,
	}
	if sr.Status == StatusApproved && a.SkipStartDate != nil && a.SkipEndDate != nil {
		data["StartDate"] = a.SkipStartDate.String()
		data["EndDate"] = a.SkipEndDate.String()
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: sr.UserEmail}},
		Subject:      "Your skip request was " + sr.Status,
		TemplateName: "skip_request_decision",
		TemplateData: data,
	})
}

func (svc *Service) Get(ctx context.Context, id string) (SkipRequest, error) {
	return svc.repo.GetSkipRequestByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]SkipRequest, error) {
	return svc.repo.FilterSkipRequests(ctx, filter)
}
