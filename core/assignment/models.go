package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/attendance"
)

// Statuses
const (
	StatusActive   = "active"
	StatusMissed   = "missed"
	StatusSkipped  = "skipped"
	StatusReleased = "released"
)

var errDateRequired = errors.New("this field is required")

var Statuses = []string{StatusActive, StatusMissed, StatusSkipped, StatusReleased}

// Assignment binds a user to a slot. Every status but released holds the slot.
type Assignment struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"user_id" db:"user_id"`
	UserEmail     string     `json:"user_email" db:"user_email"`
	SlotTime      string     `json:"slot_time" db:"slot_time"`
	Status        string     `json:"status" db:"status"`
	MissedCount   int        `json:"missed_count" db:"missed_count"`
	SkipStartDate *core.Date `json:"skip_start_date" db:"skip_start_date"`
	SkipEndDate   *core.Date `json:"skip_end_date" db:"skip_end_date"`
	ReleasedAt    null.Time  `json:"released_at" db:"released_at"` // UTC
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`   // UTC
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`   // UTC
}

func (a Assignment) Holding() bool {
	return a.Status != StatusReleased
}

// InSkipWindow reports whether d falls within the approved skip window, both ends inclusive.
func (a Assignment) InSkipWindow(d core.Date) bool {
	if a.SkipStartDate == nil || a.SkipEndDate == nil {
		return false
	}
	return d.Between(*a.SkipStartDate, *a.SkipEndDate)
}

type ClaimRequest struct {
	SlotTime string `json:"slot_time" validate:"required,timerange"`
}

func (cr *ClaimRequest) Validate(validate *validator.Validate) error {
	cr.SlotTime = core.CleanString(cr.SlotTime)
	return validate.Struct(cr)
}

// Outcome is one observed occurrence of an assignment's slot.
type Outcome struct {
	Date    core.Date          `json:"date"`
	Status  string             `json:"status" validate:"required,oneof=attended missed"`
	Meeting attendance.Meeting `json:"meeting"`
}

func (o *Outcome) Validate(validate *validator.Validate) error {
	o.Status = core.CleanString(o.Status, true /* lower */)
	if err := validate.Struct(o); err != nil {
		return err
	}
	if o.Date.IsZero() {
		return core.NewValidationError(errDateRequired, core.FieldError{Field: "date", Error: errDateRequired.Error()})
	}
	return nil
}

type QueryFilter struct {
	UserID   string   `query:"user_id"`
	SlotTime string   `query:"slot_time"`
	Statuses []string `query:"status"`
}

func (f *QueryFilter) Clean() {
	f.UserID = core.CleanString(f.UserID)
	f.SlotTime = core.CleanString(f.SlotTime)
	f.Statuses = core.CleanStrings(f.Statuses, true /* lower */)
}

// SlotCoverage is one line of the coverage report.
type SlotCoverage struct {
	SlotTime    string `json:"slot_time"`
	IsAvailable bool   `json:"is_available"`
	Covered     bool   `json:"covered"`
	Status      string `json:"status,omitempty"`
	UserEmail   string `json:"user_email,omitempty"`
	MissedCount int    `json:"missed_count"`
}

type CoverageReport struct {
	Slots     []SlotCoverage `json:"slots"`
	Total     int            `json:"total"`
	Covered   int            `json:"covered"`
	Uncovered int            `json:"uncovered"`
	AtRisk    int            `json:"at_risk"` // holding assignments one miss away from release
}
