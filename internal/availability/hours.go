package availability

import "time"

// DaySchedule describes one weekday in a weekly schedule.
type DaySchedule struct {
	Open      bool
	OpenTime  TimeOfDay
	CloseTime TimeOfDay
}

// WeeklySchedule maps weekdays to day schedules. A missing weekday counts as
// closed. Two instances take part in every scheduling decision: the clinic's
// and, optionally, the practitioner's.
type WeeklySchedule map[time.Weekday]DaySchedule

// EffectiveHours is the usable open window for a date after intersecting the
// clinic schedule with the practitioner schedule.
type EffectiveHours struct {
	Open      bool
	OpenTime  TimeOfDay
	CloseTime TimeOfDay
}

// Closed is the zero effective window.
var Closed = EffectiveHours{}

// ResolveEffectiveHours intersects clinic and practitioner hours for a date.
// The effective window opens at the later of the two open times and closes at
// the earlier of the two close times. If either side is closed for the day, or
// the intersection is empty, the result is Closed. A nil practitioner schedule
// means the clinic schedule alone is authoritative.
//
// Unavailable schedule data must be passed as nil/empty, which resolves
// Closed. The engine never substitutes default hours for missing data.
func ResolveEffectiveHours(clinic, practitioner WeeklySchedule, date time.Time) EffectiveHours {
	day := Weekday(date)

	clinicDay, ok := clinic[day]
	if !ok || !clinicDay.Open {
		return Closed
	}

	open, close := clinicDay.OpenTime, clinicDay.CloseTime

	if practitioner != nil {
		profDay, ok := practitioner[day]
		if !ok || !profDay.Open {
			return Closed
		}
		if profDay.OpenTime > open {
			open = profDay.OpenTime
		}
		if profDay.CloseTime < close {
			close = profDay.CloseTime
		}
	}

	if open >= close {
		return Closed
	}
	return EffectiveHours{Open: true, OpenTime: open, CloseTime: close}
}
