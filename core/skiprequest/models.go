package skiprequest

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

// Statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	MinSkipDays = 1
	MaxSkipDays = 30
)

type SkipRequest struct {
	ID           string      `json:"id" db:"id"`
	AssignmentID string      `json:"assignment_id" db:"assignment_id"`
	UserID       string      `json:"user_id" db:"user_id"`
	UserEmail    string      `json:"user_email" db:"user_email"`
	SkipDays     int         `json:"skip_days" db:"skip_days"`
	Reason       string      `json:"reason" db:"reason"`
	Status       string      `json:"status" db:"status"`
	AdminComment null.String `json:"admin_comment" db:"admin_comment"`
	ProcessedBy  null.String `json:"processed_by" db:"processed_by"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`     // UTC
	ProcessedAt  null.Time   `json:"processed_at" db:"processed_at"` // UTC
}

func (sr SkipRequest) Pending() bool {
	return sr.Status == StatusPending
}

type NewSkipRequest struct {
	SkipDays int    `json:"skip_days" validate:"required,min=1,max=30"`
	Reason   string `json:"reason" validate:"required,notblank,max=500"`
}

func (nsr *NewSkipRequest) Validate(validate *validator.Validate) error {
	nsr.Reason = core.CleanString(nsr.Reason)
	return validate.Struct(nsr)
}

type Decision struct {
	AdminComment string `json:"admin_comment" validate:"max=500"`
}

func (d *Decision) Validate(validate *validator.Validate) error {
	d.AdminComment = core.CleanString(d.AdminComment)
	return validate.Struct(d)
}

type QueryFilter struct {
	UserID       string   `query:"user_id"`
	AssignmentID string   `query:"assignment_id"`
	Statuses     []string `query:"status"`
}

func (f *QueryFilter) Clean() {
	f.UserID = core.CleanString(f.UserID)
	f.AssignmentID = core.CleanString(f.AssignmentID)
	f.Statuses = core.CleanStrings(f.Statuses, true /* lower */)
}
