package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	monday  = time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	tuesday = monday.AddDate(0, 0, 1)
	sunday  = monday.AddDate(0, 0, 6)
)

func clinicWeek() WeeklySchedule {
	return WeeklySchedule{
		time.Monday:    {Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("18:00")},
		time.Tuesday:   {Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("18:00")},
		time.Wednesday: {Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("18:00")},
		time.Thursday:  {Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("18:00")},
		time.Friday:    {Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("16:00")},
		time.Saturday:  {Open: false},
	}
}

func TestResolveEffectiveHoursIntersection(t *testing.T) {
	practitioner := WeeklySchedule{
		time.Monday: {Open: true, OpenTime: MustTimeOfDay("10:00"), CloseTime: MustTimeOfDay("17:00")},
	}

	hours := ResolveEffectiveHours(clinicWeek(), practitioner, monday)
	assert.True(t, hours.Open)
	assert.Equal(t, "10:00", hours.OpenTime.String())
	assert.Equal(t, "17:00", hours.CloseTime.String())
}

func TestResolveEffectiveHoursClinicOnly(t *testing.T) {
	hours := ResolveEffectiveHours(clinicWeek(), nil, monday)
	assert.True(t, hours.Open)
	assert.Equal(t, "09:00", hours.OpenTime.String())
	assert.Equal(t, "18:00", hours.CloseTime.String())
}

func TestResolveEffectiveHoursClosedDays(t *testing.T) {
	practitioner := WeeklySchedule{
		time.Monday: {Open: true, OpenTime: MustTimeOfDay("10:00"), CloseTime: MustTimeOfDay("17:00")},
	}

	// Clinic explicitly closed
	assert.Equal(t, Closed, ResolveEffectiveHours(clinicWeek(), practitioner, monday.AddDate(0, 0, 5)))

	// Day missing from the clinic schedule counts as closed
	assert.Equal(t, Closed, ResolveEffectiveHours(clinicWeek(), nil, sunday))

	// Practitioner has no entry for the day
	assert.Equal(t, Closed, ResolveEffectiveHours(clinicWeek(), practitioner, tuesday))
}

func TestResolveEffectiveHoursEmptyIntersection(t *testing.T) {
	practitioner := WeeklySchedule{
		// Opens after the clinic closes
		time.Monday: {Open: true, OpenTime: MustTimeOfDay("18:00"), CloseTime: MustTimeOfDay("20:00")},
	}
	assert.Equal(t, Closed, ResolveEffectiveHours(clinicWeek(), practitioner, monday))

	// Touching but empty window
	practitioner[time.Monday] = DaySchedule{Open: true, OpenTime: MustTimeOfDay("18:00"), CloseTime: MustTimeOfDay("18:00")}
	assert.Equal(t, Closed, ResolveEffectiveHours(clinicWeek(), practitioner, monday))
}

func TestResolveEffectiveHoursMissingData(t *testing.T) {
	// No clinic schedule at all resolves closed, never default hours
	assert.Equal(t, Closed, ResolveEffectiveHours(nil, nil, monday))
	assert.Equal(t, Closed, ResolveEffectiveHours(WeeklySchedule{}, nil, monday))
}
