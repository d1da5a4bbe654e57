package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

// Statuses
const (
	StatusAttended = "attended"
	StatusMissed   = "missed"
	StatusSkipped  = "skipped" // a miss inside an approved skip window
)

var errDateRequired = errors.New("this field is required")

// Meeting holds what the meeting platform reported for an occurrence.
type Meeting struct {
	JoinTime  null.Time   `json:"join_time" db:"zoom_join_time"`
	LeaveTime null.Time   `json:"leave_time" db:"zoom_leave_time"`
	MeetingID null.String `json:"meeting_id" db:"zoom_meeting_id"`
}

// Duration is the time spent in the meeting, zero when either end is unknown.
func (m Meeting) Duration() time.Duration {
	if !m.JoinTime.Valid || !m.LeaveTime.Valid || m.LeaveTime.Time.Before(m.JoinTime.Time) {
		return 0
	}
	return m.LeaveTime.Time.Sub(m.JoinTime.Time)
}

// Record is an immutable attendance observation.
type Record struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	SlotID    int       `json:"slot_id" db:"slot_id"`
	Date      core.Date `json:"date" db:"date"`
	Status    string    `json:"status" db:"status"`
	Meeting   `json:"meeting"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

type NewRecord struct {
	UserID  string    `json:"user_id" validate:"required,notblank"`
	SlotID  int       `json:"slot_id" validate:"required,gt=0"`
	Date    core.Date `json:"date"`
	Status  string    `json:"status" validate:"required,oneof=attended missed"`
	Meeting Meeting   `json:"meeting"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.UserID = core.CleanString(nr.UserID)
	nr.Status = core.CleanString(nr.Status, true /* lower */)
	if err := validate.Struct(nr); err != nil {
		return err
	}
	if nr.Date.IsZero() {
		return core.NewValidationError(errDateRequired, core.FieldError{Field: "date", Error: errDateRequired.Error()})
	}
	return nil
}

type QueryFilter struct {
	UserID   string
	SlotID   int
	From     core.Date // inclusive, zero means unbounded
	To       core.Date // inclusive, zero means unbounded
	Statuses []string
}

func (f *QueryFilter) Clean() {
	f.UserID = core.CleanString(f.UserID)
	f.Statuses = core.CleanStrings(f.Statuses, true /* lower */)
}

// Match reports whether r satisfies every set field of the filter.
func (f QueryFilter) Match(r Record) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.SlotID != 0 && r.SlotID != f.SlotID {
		return false
	}
	if !f.From.IsZero() && r.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && r.Date.After(f.To.Time) {
		return false
	}
	if len(f.Statuses) > 0 {
		for _, s := range f.Statuses {
			if r.Status == s {
				return true
			}
		}
		return false
	}
	return true
}

type Summary struct {
	UserID        string    `json:"user_id"`
	From          core.Date `json:"from"`
	To            core.Date `json:"to"`
	Attended      int       `json:"attended"`
	Missed        int       `json:"missed"`
	Skipped       int       `json:"skipped"`
	Rate          float64   `json:"rate"` // attended / (attended + missed)
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
}
