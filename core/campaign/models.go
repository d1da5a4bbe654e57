package campaign

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

// Statuses
const (
	StatusUpcoming         = "upcoming"
	StatusRegistrationOpen = "registration_open"
	StatusPreparation      = "preparation"
	StatusActive           = "active"
	StatusCompleted        = "completed"
	StatusCancelled        = "cancelled"
)

type Template struct {
	ID                  int       `json:"id" db:"id"`
	TemplateName        string    `json:"template_name" db:"template_name"`
	DurationDays        int       `json:"duration_days" db:"duration_days"`
	DefaultTitle        string    `json:"default_title" db:"default_title"`
	DefaultSubtitle     string    `json:"default_subtitle" db:"default_subtitle"`
	DefaultDescription  string    `json:"default_description" db:"default_description"`
	DefaultPrayerFocus  string    `json:"default_prayer_focus" db:"default_prayer_focus"`
	DefaultInstructions string    `json:"default_instructions" db:"default_instructions"`
	MaxParticipants     int       `json:"max_participants" db:"max_participants"` // 0 means unlimited
	CreatedAt           time.Time `json:"created_at" db:"created_at"`             // UTC
}

// Resolvable reports whether a program can be generated from the template.
func (t Template) Resolvable() bool {
	return core.CleanString(t.DefaultTitle) != "" && t.DurationDays > 0
}

// Dates are the boundaries ComputeStatus works from.
type Dates struct {
	Start             time.Time
	End               time.Time
	RegistrationOpen  time.Time
	RegistrationClose time.Time
}

type Program struct {
	ID                    string      `json:"id" db:"id"`
	ProgramTitle          string      `json:"program_title" db:"program_title"`
	ProgramSubtitle       string      `json:"program_subtitle" db:"program_subtitle"`
	Description           string      `json:"description" db:"description"`
	PrayerFocus           string      `json:"prayer_focus" db:"prayer_focus"`
	Instructions          string      `json:"instructions" db:"instructions"`
	StartDate             time.Time   `json:"start_date" db:"start_date"`                           // UTC
	EndDate               time.Time   `json:"end_date" db:"end_date"`                               // UTC
	RegistrationOpenDate  time.Time   `json:"registration_open_date" db:"registration_open_date"`   // UTC
	RegistrationCloseDate time.Time   `json:"registration_close_date" db:"registration_close_date"` // UTC
	MaxParticipants       int         `json:"max_participants" db:"max_participants"`
	CurrentParticipants   int         `json:"current_participants" db:"current_participants"` // counted on read
	ProgramStatus         string      `json:"program_status" db:"program_status"`
	IsActive              bool        `json:"is_active" db:"is_active"`
	TemplateName          null.String `json:"template_name" db:"template_name"`
	CreatedBy             string      `json:"created_by" db:"created_by"`
	CreatedAt             time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt             time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

func (p Program) Dates() Dates {
	return Dates{
		Start:             p.StartDate,
		End:               p.EndDate,
		RegistrationOpen:  p.RegistrationOpenDate,
		RegistrationClose: p.RegistrationCloseDate,
	}
}

// StatusAt returns the stored status for a cancelled program, the computed one otherwise.
func (p Program) StatusAt(now time.Time) string {
	if p.ProgramStatus == StatusCancelled {
		return StatusCancelled
	}
	return ComputeStatus(now, p.Dates())
}

// ActiveProgram is the program with its phase as seen at a given instant.
type ActiveProgram struct {
	Program
	DaysUntilStart   int  `json:"days_until_start"`
	DaysRemaining    int  `json:"days_remaining"`
	RegistrationOpen bool `json:"registration_open"`
	SpotsLeft        *int `json:"spots_left"` // nil when unlimited
}

type Registration struct {
	ID        string    `json:"id" db:"id"`
	ProgramID string    `json:"program_id" db:"program_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	UserEmail string    `json:"user_email" db:"user_email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

type NewProgram struct {
	TemplateName string     `json:"template_name" validate:"required,notblank"`
	StartDate    *core.Date `json:"start_date"`
	StartTime    string     `json:"start_time" validate:"omitempty,hhmm"`
}

func (np *NewProgram) Validate(validate *validator.Validate) error {
	np.TemplateName = core.CleanString(np.TemplateName)
	np.StartTime = core.CleanString(np.StartTime)
	return validate.Struct(np)
}

type NewTemplate struct {
	TemplateName        string `json:"template_name" validate:"required,notblank,max=100"`
	DurationDays        int    `json:"duration_days" validate:"required,min=1,max=60"`
	DefaultTitle        string `json:"default_title" validate:"required,notblank,max=200"`
	DefaultSubtitle     string `json:"default_subtitle" validate:"max=200"`
	DefaultDescription  string `json:"default_description"`
	DefaultPrayerFocus  string `json:"default_prayer_focus"`
	DefaultInstructions string `json:"default_instructions"`
	MaxParticipants     int    `json:"max_participants" validate:"min=0"`
}

func (nt *NewTemplate) Validate(validate *validator.Validate) error {
	nt.TemplateName = core.CleanString(nt.TemplateName)
	nt.DefaultTitle = core.CleanString(nt.DefaultTitle)
	nt.DefaultSubtitle = core.CleanString(nt.DefaultSubtitle)
	return validate.Struct(nt)
}

type ScheduleRequest struct {
	Offset     int    `json:"offset" validate:"min=0,max=12"`
	AdminEmail string `json:"admin_email" validate:"omitempty,email"`
}

func (sr *ScheduleRequest) Validate(validate *validator.Validate) error {
	sr.AdminEmail = core.CleanString(sr.AdminEmail, true /* lower */)
	return validate.Struct(sr)
}
