package availability

import "time"

// OnlineRoomID is the synthetic room for remote sessions. It never collides
// with physical rooms but still collides on the practitioner.
const OnlineRoomID = "online"

// Booking statuses. Only scheduled bookings block slots; cancelled and
// completed ones are history.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Room is a physical consultation room.
type Room struct {
	ID       string
	Name     string
	Capacity int
}

// Booking is an existing appointment as supplied by the caller for conflict
// checks. Start and End are concrete moments on one calendar date.
type Booking struct {
	ID             string
	ClientID       string
	PractitionerID string
	RoomID         string // OnlineRoomID for remote sessions
	Online         bool
	Start          time.Time
	End            time.Time
	Status         string
}

// blocks reports whether an existing booking blocks the given room or
// practitioner. Room comparison is skipped for online sessions on either
// side.
func (b Booking) blocks(roomID, practitionerID string) bool {
	if b.Status != StatusScheduled {
		return false
	}
	if b.PractitionerID == practitionerID {
		return true
	}
	if b.Online || roomID == OnlineRoomID {
		return false
	}
	return b.RoomID == roomID
}

// overlapsInterval checks the booking against [start, start+durationMin) on
// the booking's own date, in minutes since midnight.
func (b Booking) overlapsInterval(date time.Time, start TimeOfDay, durationMin int) bool {
	if !SameDate(b.Start, date) {
		return false
	}
	bStart := TimeOfDayFromTime(b.Start).Minutes()
	bEnd := TimeOfDayFromTime(b.End).Minutes()
	return Overlaps(start.Minutes(), start.Minutes()+durationMin, bStart, bEnd)
}

// FilterConflicting removes candidate start times whose session interval
// overlaps a scheduled booking for the same room or the same practitioner.
func FilterConflicting(slots []TimeOfDay, date time.Time, durationMin int, roomID, practitionerID string, bookings []Booking) []TimeOfDay {
	if len(slots) == 0 {
		return nil
	}
	var free []TimeOfDay
	for _, s := range slots {
		if !slotConflicts(s, date, durationMin, roomID, practitionerID, bookings) {
			free = append(free, s)
		}
	}
	return free
}

func slotConflicts(start TimeOfDay, date time.Time, durationMin int, roomID, practitionerID string, bookings []Booking) bool {
	for _, b := range bookings {
		if !b.blocks(roomID, practitionerID) {
			continue
		}
		if b.overlapsInterval(date, start, durationMin) {
			return true
		}
	}
	return false
}

// AvailableRooms returns the rooms free for a session of durationMin minutes
// starting at start on date. A room is free when no scheduled booking for
// that room overlaps the interval; online bookings never occupy a room.
func AvailableRooms(date time.Time, start TimeOfDay, durationMin int, rooms []Room, bookings []Booking) []Room {
	var free []Room
	for _, room := range rooms {
		occupied := false
		for _, b := range bookings {
			if b.Status != StatusScheduled || b.Online || b.RoomID != room.ID {
				continue
			}
			if b.overlapsInterval(date, start, durationMin) {
				occupied = true
				break
			}
		}
		if !occupied {
			free = append(free, room)
		}
	}
	return free
}
