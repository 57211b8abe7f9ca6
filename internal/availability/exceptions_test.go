package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsDateBlocked(t *testing.T) {
	vacation := Vacation{
		StartDate: time.Date(2026, 7, 6, 0, 0, 0, 0, time.Local),
		EndDate:   time.Date(2026, 7, 10, 0, 0, 0, 0, time.Local),
		Scope:     ScopePractitioner,
		OwnerID:   "prac-1",
	}
	vacations := []Vacation{vacation}

	day := func(d int) time.Time {
		return time.Date(2026, 7, d, 0, 0, 0, 0, time.Local)
	}

	assert.False(t, IsDateBlocked(day(5), vacations))
	assert.True(t, IsDateBlocked(day(6), vacations), "start date is inclusive")
	assert.True(t, IsDateBlocked(day(8), vacations))
	assert.True(t, IsDateBlocked(day(10), vacations), "end date is inclusive")
	assert.False(t, IsDateBlocked(day(11), vacations))

	// Time-of-day component on the query date is irrelevant
	assert.True(t, IsDateBlocked(time.Date(2026, 7, 10, 23, 30, 0, 0, time.Local), vacations))

	assert.False(t, IsDateBlocked(day(8), nil))
}

func TestIsDateBlockedSingleDay(t *testing.T) {
	d := time.Date(2026, 7, 6, 0, 0, 0, 0, time.Local)
	vacations := []Vacation{{StartDate: d, EndDate: d, Scope: ScopeClinic}}

	assert.True(t, IsDateBlocked(d, vacations))
	assert.False(t, IsDateBlocked(d.AddDate(0, 0, 1), vacations))
	assert.False(t, IsDateBlocked(d.AddDate(0, 0, -1), vacations))
}

func TestIsTimeInBreak(t *testing.T) {
	lunch := RecurringBreak{
		Weekday: time.Monday,
		Start:   MustTimeOfDay("13:00"),
		End:     MustTimeOfDay("14:00"),
		Scope:   ScopeClinic,
	}
	breaks := []RecurringBreak{lunch}

	assert.False(t, IsTimeInBreak(monday, MustTimeOfDay("12:59"), breaks))
	assert.True(t, IsTimeInBreak(monday, MustTimeOfDay("13:00"), breaks), "break start is inclusive")
	assert.True(t, IsTimeInBreak(monday, MustTimeOfDay("13:30"), breaks))
	assert.False(t, IsTimeInBreak(monday, MustTimeOfDay("14:00"), breaks), "break end is exclusive")

	// Same time on a different weekday
	assert.False(t, IsTimeInBreak(tuesday, MustTimeOfDay("13:30"), breaks))
}

func TestIsTimeInBreakOverlappingBreaks(t *testing.T) {
	breaks := []RecurringBreak{
		{Weekday: time.Monday, Start: MustTimeOfDay("12:00"), End: MustTimeOfDay("13:00"), Scope: ScopeClinic},
		{Weekday: time.Monday, Start: MustTimeOfDay("12:30"), End: MustTimeOfDay("13:30"), Scope: ScopePractitioner, OwnerID: "prac-1"},
	}

	assert.True(t, IsTimeInBreak(monday, MustTimeOfDay("12:45"), breaks))
	assert.True(t, IsTimeInBreak(monday, MustTimeOfDay("13:15"), breaks))
	assert.False(t, IsTimeInBreak(monday, MustTimeOfDay("13:30"), breaks))
}
