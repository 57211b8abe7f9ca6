package availability

import "time"

// OwnerScope tells whether a break or vacation belongs to the clinic as a
// whole or to a single practitioner.
type OwnerScope string

const (
	ScopeClinic       OwnerScope = "clinic"
	ScopePractitioner OwnerScope = "practitioner"
)

// RecurringBreak is a weekly-repeating blocked interval, e.g. lunch.
// Start < End; overlapping breaks are tolerated as redundant blocking.
type RecurringBreak struct {
	Weekday time.Weekday
	Start   TimeOfDay
	End     TimeOfDay
	Scope   OwnerScope
	OwnerID string
}

// Vacation is a fully blocked date range, inclusive on both ends.
type Vacation struct {
	StartDate time.Time // date-only
	EndDate   time.Time // date-only, >= StartDate
	Scope     OwnerScope
	OwnerID   string
}

// IsDateBlocked reports whether date falls inside any vacation. Callers merge
// clinic-scope and practitioner-scope vacations into one slice.
func IsDateBlocked(date time.Time, vacations []Vacation) bool {
	d := truncateToDate(date)
	for _, v := range vacations {
		start := truncateToDate(v.StartDate)
		end := truncateToDate(v.EndDate)
		if !d.Before(start) && !d.After(end) {
			return true
		}
	}
	return false
}

// IsTimeInBreak reports whether the given time of day on the given date falls
// inside any break, using [Start, End) semantics. Clinic and practitioner
// breaks are supplied merged.
func IsTimeInBreak(date time.Time, t TimeOfDay, breaks []RecurringBreak) bool {
	day := Weekday(date)
	for _, b := range breaks {
		if b.Weekday != day {
			continue
		}
		if t >= b.Start && t < b.End {
			return true
		}
	}
	return false
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
