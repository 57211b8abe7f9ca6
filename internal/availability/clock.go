// Package availability implements the slot computation engine: working-hours
// intersection, recurring breaks, vacations, slot generation and conflict
// checks. Everything here is a pure function of its inputs; callers fetch the
// data and pass an explicit "now" where wall-clock time matters.
package availability

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeFormat is returned for time strings not parseable as HH:MM.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// TimeOfDay is a wall-clock time with minute granularity, stored as minutes
// since midnight. No timezone; local clinic time is assumed throughout.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" with HH in [0,23] and MM in [0,59].
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// MustTimeOfDay is ParseTimeOfDay for trusted literals; panics on error.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int { return int(t) }

// String formats as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// OnDate places the time of day on a calendar date, keeping the location.
func (t TimeOfDay) OnDate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(t)/60, int(t)%60, 0, 0, date.Location())
}

// TimeOfDayFromTime extracts the wall-clock time of a moment.
func TimeOfDayFromTime(at time.Time) TimeOfDay {
	return TimeOfDay(at.Hour()*60 + at.Minute())
}

// Weekday returns the canonical day-of-week for a date: Go's time.Weekday
// (Sunday=0). Schedule lookups use this convention exclusively; locale day
// names stay at the UI boundary.
func Weekday(date time.Time) time.Weekday {
	return date.Weekday()
}

// SameDate reports whether two moments fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Overlaps reports whether the half-open minute intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. This is the single overlap predicate used by the
// whole engine.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
