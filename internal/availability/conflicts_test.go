package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mkBooking(id, practitionerID, roomID, start, end string, online bool) Booking {
	return Booking{
		ID:             id,
		ClientID:       "client-" + id,
		PractitionerID: practitionerID,
		RoomID:         roomID,
		Online:         online,
		Start:          MustTimeOfDay(start).OnDate(monday),
		End:            MustTimeOfDay(end).OnDate(monday),
		Status:         StatusScheduled,
	}
}

func TestFilterConflictingPractitioner(t *testing.T) {
	slots := []TimeOfDay{MustTimeOfDay("10:00"), MustTimeOfDay("11:00"), MustTimeOfDay("12:00")}
	bookings := []Booking{mkBooking("b1", "prac-1", "room-a", "11:00", "11:45", false)}

	// Same practitioner, different room: still blocked
	free := FilterConflicting(slots, monday, 45, "room-b", "prac-1", bookings)
	assert.Equal(t, []string{"10:00", "12:00"}, slotStrings(free))

	// Different practitioner, different room: all free
	free = FilterConflicting(slots, monday, 45, "room-b", "prac-2", bookings)
	assert.Equal(t, []string{"10:00", "11:00", "12:00"}, slotStrings(free))

	// Different practitioner, same room: blocked
	free = FilterConflicting(slots, monday, 45, "room-a", "prac-2", bookings)
	assert.Equal(t, []string{"10:00", "12:00"}, slotStrings(free))
}

func TestFilterConflictingIgnoresNonScheduled(t *testing.T) {
	slots := []TimeOfDay{MustTimeOfDay("11:00")}
	cancelled := mkBooking("b1", "prac-1", "room-a", "11:00", "11:45", false)
	cancelled.Status = StatusCancelled
	completed := mkBooking("b2", "prac-1", "room-a", "11:00", "11:45", false)
	completed.Status = StatusCompleted

	free := FilterConflicting(slots, monday, 45, "room-a", "prac-1", []Booking{cancelled, completed})
	assert.Equal(t, []string{"11:00"}, slotStrings(free))
}

func TestFilterConflictingOnline(t *testing.T) {
	slots := []TimeOfDay{MustTimeOfDay("11:00")}
	online := mkBooking("b1", "prac-1", OnlineRoomID, "11:00", "11:45", true)

	// Online booking occupies no physical room
	free := FilterConflicting(slots, monday, 45, "room-a", "prac-2", []Booking{online})
	assert.Equal(t, []string{"11:00"}, slotStrings(free))

	// But the practitioner is still busy
	free = FilterConflicting(slots, monday, 45, "room-a", "prac-1", []Booking{online})
	assert.Empty(t, free)

	// Two online sessions at the same time never room-collide
	free = FilterConflicting(slots, monday, 45, OnlineRoomID, "prac-2", []Booking{online})
	assert.Equal(t, []string{"11:00"}, slotStrings(free))
}

func TestFilterConflictingPartialOverlap(t *testing.T) {
	// Quarter-hour slots around a 11:00-11:45 booking
	slots := []TimeOfDay{
		MustTimeOfDay("10:15"), MustTimeOfDay("10:30"), MustTimeOfDay("10:45"),
		MustTimeOfDay("11:00"), MustTimeOfDay("11:30"), MustTimeOfDay("11:45"),
	}
	bookings := []Booking{mkBooking("b1", "prac-1", "room-a", "11:00", "11:45", false)}

	free := FilterConflicting(slots, monday, 45, "room-a", "prac-2", bookings)
	assert.Equal(t, []string{"10:15", "11:45"}, slotStrings(free))
}

func TestAvailableRooms(t *testing.T) {
	rooms := []Room{
		{ID: "room-a", Name: "Room A", Capacity: 2},
		{ID: "room-b", Name: "Room B", Capacity: 1},
	}
	bookings := []Booking{mkBooking("b1", "prac-1", "room-a", "11:00", "11:45", false)}

	free := AvailableRooms(monday, MustTimeOfDay("11:00"), 45, rooms, bookings)
	if assert.Len(t, free, 1) {
		assert.Equal(t, "room-b", free[0].ID)
	}

	// Outside the booked interval both rooms are free
	free = AvailableRooms(monday, MustTimeOfDay("12:00"), 45, rooms, bookings)
	assert.Len(t, free, 2)
}

func TestAvailableRoomsIgnoresOnlineAndInactive(t *testing.T) {
	rooms := []Room{{ID: "room-a", Name: "Room A", Capacity: 2}}

	online := mkBooking("b1", "prac-1", OnlineRoomID, "11:00", "11:45", true)
	cancelled := mkBooking("b2", "prac-2", "room-a", "11:00", "11:45", false)
	cancelled.Status = StatusCancelled

	free := AvailableRooms(monday, MustTimeOfDay("11:00"), 45, rooms, []Booking{online, cancelled})
	assert.Len(t, free, 1)
}

// Mirrors the booking dialog flow: clinic 09:00-18:00, practitioner
// 09:00-17:00 on Mondays, one existing 11:00 session in Room A.
func TestBookingFlowScenario(t *testing.T) {
	practitioner := WeeklySchedule{
		time.Monday: {Open: true, OpenTime: MustTimeOfDay("09:00"), CloseTime: MustTimeOfDay("17:00")},
	}

	hours := ResolveEffectiveHours(clinicWeek(), practitioner, monday)
	assert.True(t, hours.Open)

	slots := GenerateSlots(hours, monday, nil, nil, 45, GranularityHourly, farFuture)
	bookings := []Booking{mkBooking("b1", "prac-1", "room-a", "11:00", "11:45", false)}

	free := FilterConflicting(slots, monday, 45, "", "prac-1", bookings)
	assert.Equal(t, []string{
		"09:00", "10:00", "12:00", "13:00", "14:00", "15:00", "16:00",
	}, slotStrings(free))

	rooms := []Room{
		{ID: "room-a", Name: "Room A", Capacity: 2},
		{ID: "room-b", Name: "Room B", Capacity: 1},
	}
	freeRooms := AvailableRooms(monday, MustTimeOfDay("11:00"), 45, rooms, bookings)
	if assert.Len(t, freeRooms, 1) {
		assert.Equal(t, "room-b", freeRooms[0].ID)
	}
}
