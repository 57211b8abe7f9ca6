package availability

import "time"

// Slot granularities used by the UI: the booking dialog offers whole hours,
// the per-room browse view steps by quarter hour.
const (
	GranularityHourly  = 60
	GranularityQuarter = 15
)

// GenerateSlots enumerates candidate start times for a session of
// durationMin minutes on the given date, stepping by granularityMin.
//
// The effective open time is rounded up to the next granularity boundary, so
// an 09:30 open with hourly granularity offers 10:00 first. A candidate is
// kept only if the whole session fits before closing time
// (start+duration <= close). Candidates whose start falls in a break are
// dropped, and when date is "today" relative to now, candidates at or before
// now are dropped.
//
// Returns nil when the date is blocked by a vacation or hours are Closed.
// The result is ascending and freshly computed on every call; it is never
// cached inside the engine.
func GenerateSlots(hours EffectiveHours, date time.Time, breaks []RecurringBreak, vacations []Vacation, durationMin, granularityMin int, now time.Time) []TimeOfDay {
	if !hours.Open || durationMin <= 0 || granularityMin <= 0 {
		return nil
	}
	if IsDateBlocked(date, vacations) {
		return nil
	}

	start := roundUpToGranularity(hours.OpenTime, granularityMin)
	close := hours.CloseTime.Minutes()
	isToday := SameDate(date, now)

	var slots []TimeOfDay
	for cursor := start.Minutes(); cursor+durationMin <= close; cursor += granularityMin {
		t := TimeOfDay(cursor)
		if IsTimeInBreak(date, t, breaks) {
			continue
		}
		if isToday && !t.OnDate(date).After(now) {
			continue
		}
		slots = append(slots, t)
	}
	return slots
}

func roundUpToGranularity(t TimeOfDay, granularityMin int) TimeOfDay {
	m := t.Minutes()
	if rem := m % granularityMin; rem != 0 {
		m += granularityMin - rem
	}
	return TimeOfDay(m)
}
