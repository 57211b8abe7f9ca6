package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func slotStrings(slots []TimeOfDay) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.String())
	}
	return out
}

// farFuture keeps the "today" filter out of tests that don't exercise it.
var farFuture = monday.AddDate(-1, 0, 0)

func TestGenerateSlotsHourly(t *testing.T) {
	hours := EffectiveHours{Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("18:00")}

	slots := GenerateSlots(hours, monday, nil, nil, 45, GranularityHourly, farFuture)
	assert.Equal(t, []string{
		"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00",
	}, slotStrings(slots))
}

func TestGenerateSlotsSessionMustFitBeforeClose(t *testing.T) {
	hours := EffectiveHours{Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("17:30")}

	// 17:00 + 45min overruns 17:30, so the last slot is 16:00
	slots := GenerateSlots(hours, monday, nil, nil, 45, GranularityHourly, farFuture)
	assert.Equal(t, "16:00", slots[len(slots)-1].String())

	// A session exactly filling the window is kept
	slots = GenerateSlots(hours, monday, nil, nil, 30, GranularityHourly, farFuture)
	assert.Equal(t, "17:00", slots[len(slots)-1].String())
}

func TestGenerateSlotsRoundsOpenTimeUp(t *testing.T) {
	hours := EffectiveHours{Open: true, OpenTime: MustTimeOfDay("09:30"), CloseTime: MustTimeOfDay("12:00")}

	slots := GenerateSlots(hours, monday, nil, nil, 45, GranularityHourly, farFuture)
	assert.Equal(t, []string{"10:00", "11:00"}, slotStrings(slots))

	slots = GenerateSlots(hours, monday, nil, nil, 15, GranularityQuarter, farFuture)
	assert.Equal(t, "09:30", slots[0].String(), "already on a quarter boundary")
}

func TestGenerateSlotsQuarterGranularity(t *testing.T) {
	hours := EffectiveHours{Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("10:30")}

	slots := GenerateSlots(hours, monday, nil, nil, 45, GranularityQuarter, farFuture)
	assert.Equal(t, []string{"09:00", "09:15", "09:30", "09:45"}, slotStrings(slots))
}

func TestGenerateSlotsSkipsBreaks(t *testing.T) {
	hours := EffectiveHours{Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("15:00")}
	breaks := []RecurringBreak{
		{Weekday: time.Monday, Start: MustTimeOfDay("13:00"), End: MustTimeOfDay("14:00"), Scope: ScopeClinic},
	}

	slots := GenerateSlots(hours, monday, breaks, nil, 45, GranularityHourly, farFuture)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00", "14:00"}, slotStrings(slots))
}

func TestGenerateSlotsVacationBlocksWholeDate(t *testing.T) {
	hours := EffectiveHours{Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("18:00")}
	vacations := []Vacation{{StartDate: monday, EndDate: monday, Scope: ScopePractitioner, OwnerID: "prac-1"}}

	assert.Nil(t, GenerateSlots(hours, monday, nil, vacations, 45, GranularityHourly, farFuture))
}

func TestGenerateSlotsDropsPastTimesToday(t *testing.T) {
	hours := EffectiveHours{Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("13:00")}

	// It is 10:00 sharp on the requested date: 10:00 itself is not bookable
	now := MustTimeOfDay("10:00").OnDate(monday)
	slots := GenerateSlots(hours, monday, nil, nil, 45, GranularityHourly, now)
	assert.Equal(t, []string{"11:00", "12:00"}, slotStrings(slots))

	// Same clock time the day before leaves the full day intact
	slots = GenerateSlots(hours, monday, nil, nil, 45, GranularityHourly, now.AddDate(0, 0, -1))
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00"}, slotStrings(slots))
}

func TestGenerateSlotsClosedAndDegenerate(t *testing.T) {
	hours := EffectiveHours{Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("18:00")}

	assert.Nil(t, GenerateSlots(Closed, monday, nil, nil, 45, GranularityHourly, farFuture))
	assert.Nil(t, GenerateSlots(hours, monday, nil, nil, 0, GranularityHourly, farFuture))
	assert.Nil(t, GenerateSlots(hours, monday, nil, nil, 45, 0, farFuture))

	// Window too small for the session
	tiny := EffectiveHours{Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("09:30")}
	assert.Nil(t, GenerateSlots(tiny, monday, nil, nil, 45, GranularityQuarter, farFuture))
}
