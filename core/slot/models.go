package slot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

const (
	Length      = 30 // minutes
	PerDay      = 24 * 60 / Length
	RangeSep    = "–" // en dash
	minutesADay = 24 * 60
)

var (
	errMalformedRange = errors.New("time range must look like HH:MM–HH:MM, start on a half hour and last 30 minutes")
	errUnknownTZ      = errors.New("unknown timezone")
)

type Slot struct {
	ID          int       `json:"id" db:"id"`
	SlotTime    string    `json:"slot_time" db:"slot_time"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	Timezone    string    `json:"timezone" db:"timezone"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// StartMinute returns the minute of the day the slot starts at.
func (s Slot) StartMinute() int {
	start, _ := parseRange(s.SlotTime)
	return start
}

// StartsAt returns the instant the slot's occurrence on day d begins, in the slot's timezone.
func (s Slot) StartsAt(d core.Date) time.Time {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		loc = time.UTC
	}
	start := s.StartMinute()
	return time.Date(d.Year(), d.Month(), d.Day(), start/60, start%60, 0, 0, loc)
}

func formatClock(minute int) string {
	minute = ((minute % minutesADay) + minutesADay) % minutesADay
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// FormatRange returns the canonical time range string of the slot starting at startMinute.
func FormatRange(startMinute int) string {
	return formatClock(startMinute) + RangeSep + formatClock(startMinute+Length)
}

// Catalog returns the 48 canonical time ranges of a day, ascending.
func Catalog() []string {
	ranges := make([]string, 0, PerDay)
	for i := 0; i < PerDay; i++ {
		ranges = append(ranges, FormatRange(i*Length))
	}
	return ranges
}

func parseClock(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func parseRange(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	var bounds []string
	switch {
	case strings.Contains(s, RangeSep):
		bounds = strings.Split(s, RangeSep)
	default:
		bounds = strings.Split(s, "-")
	}
	if len(bounds) != 2 {
		return 0, false
	}
	start, ok := parseClock(bounds[0])
	if !ok || start%Length != 0 {
		return 0, false
	}
	end, ok := parseClock(bounds[1])
	if !ok || end != (start+Length)%minutesADay {
		return 0, false
	}
	return start, true
}

// NormalizeRange validates s and returns its canonical form. A plain hyphen is accepted as separator.
func NormalizeRange(s string) (string, error) {
	start, ok := parseRange(s)
	if !ok {
		return "", core.NewValidationError(errMalformedRange, core.FieldError{Field: "slot_time", Error: errMalformedRange.Error()})
	}
	return FormatRange(start), nil
}

type NewSlot struct {
	SlotTime    string `json:"slot_time" validate:"required,timerange"`
	IsAvailable *bool  `json:"is_available"`
	Timezone    string `json:"timezone"`
}

func (ns *NewSlot) Validate(validate *validator.Validate) error {
	ns.SlotTime = core.CleanString(ns.SlotTime)
	ns.Timezone = core.CleanString(ns.Timezone)
	if err := validate.Struct(ns); err != nil {
		return err
	}
	if ns.Timezone != "" {
		if _, err := time.LoadLocation(ns.Timezone); err != nil {
			return core.NewValidationError(errUnknownTZ, core.FieldError{Field: "timezone", Error: errUnknownTZ.Error()})
		}
	}
	return nil
}

type UpdateAvailability struct {
	SlotTime    string `json:"slot_time" validate:"required,timerange"`
	IsAvailable *bool  `json:"is_available" validate:"required"`
}

func (ua *UpdateAvailability) Validate(validate *validator.Validate) error {
	ua.SlotTime = core.CleanString(ua.SlotTime)
	return validate.Struct(ua)
}
