package campaign

import "time"

// ComputeStatus derives a program's phase from its dates. Every lower bound is inclusive.
func ComputeStatus(now time.Time, d Dates) string {
	switch {
	case now.Before(d.RegistrationOpen):
		return StatusUpcoming
	case now.Before(d.RegistrationClose):
		return StatusRegistrationOpen
	case now.Before(d.Start):
		return StatusPreparation
	case now.Before(d.End):
		return StatusActive
	default:
		return StatusCompleted
	}
}

// ScheduleDates lays out a program of durationDays starting at start.
// Registration closes one day before the start and opens at now, or at the close if now is later.
func ScheduleDates(start time.Time, durationDays int, now time.Time) Dates {
	d := Dates{
		Start:             start,
		End:               start.AddDate(0, 0, durationDays),
		RegistrationClose: start.AddDate(0, 0, -1),
	}
	d.RegistrationOpen = now
	if now.After(d.RegistrationClose) {
		d.RegistrationOpen = d.RegistrationClose
	}
	return d
}

// LastFriday returns midnight of the last Friday of month in loc.
func LastFriday(year int, month time.Month, loc *time.Location) time.Time {
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, loc) // day 0 of next month is the last day of this one
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// MonthlyStart returns the last Friday, at hour, of the month offset months after now's.
func MonthlyStart(now time.Time, offset, hour int, loc *time.Location) time.Time {
	now = now.In(loc)
	first := time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, loc)
	lf := LastFriday(first.Year(), first.Month(), loc)
	return time.Date(lf.Year(), lf.Month(), lf.Day(), hour, 0, 0, 0, loc)
}

func daysCeil(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Describe returns p with its phase as seen at now.
func Describe(p Program, now time.Time) ActiveProgram {
	p.ProgramStatus = p.StatusAt(now)
	ap := ActiveProgram{
		Program:          p,
		DaysUntilStart:   daysCeil(p.StartDate.Sub(now)),
		RegistrationOpen: p.ProgramStatus == StatusRegistrationOpen,
	}
	if p.ProgramStatus == StatusActive {
		ap.DaysRemaining = daysCeil(p.EndDate.Sub(now))
	}
	if p.MaxParticipants > 0 {
		left := p.MaxParticipants - p.CurrentParticipants
		if left < 0 {
			left = 0
		}
		ap.SpotsLeft = &left
	}
	return ap
}
