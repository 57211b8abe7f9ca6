package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"klinik/internal/availability"
	"klinik/internal/metrics"
)

// SlotsResponse is the response for GET /api/v1/slots.
type SlotsResponse struct {
	Date        string   `json:"date"`
	Slots       []string `json:"slots"` // "HH:MM", ascending
	Closed      bool     `json:"closed,omitempty"`
	DateBlocked bool     `json:"date_blocked,omitempty"`
}

// handleSlots computes bookable start times for a practitioner on a date.
// GET /api/v1/slots?practitioner_id=&date=YYYY-MM-DD&duration=45&granularity=60&room_id=
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	practitionerID := q.Get("practitioner_id")
	if practitionerID == "" {
		writeError(w, http.StatusBadRequest, "practitioner_id is required")
		return
	}
	date, err := parseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	duration := intParam(q.Get("duration"), s.defaultDuration)
	granularity := intParam(q.Get("granularity"), s.defaultGranularity)
	roomID := q.Get("room_id")

	if s.cache != nil {
		if cached, ok := s.cache.GetSlots(r.Context(), date, practitionerID, roomID, duration, granularity); ok {
			metrics.IncSlotCache("hit")
			writeJSON(w, http.StatusOK, cached)
			return
		}
		metrics.IncSlotCache("miss")
	}

	resp, err := s.computeSlots(r.Context(), practitionerID, roomID, date, duration, granularity)
	if err != nil {
		s.logger.Error().Err(err).Msg("slot computation failed")
		writeError(w, http.StatusInternalServerError, "failed to compute slots")
		return
	}

	if s.cache != nil {
		s.cache.PutSlots(r.Context(), date, practitionerID, roomID, duration, granularity, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) computeSlots(ctx context.Context, practitionerID, roomID string, date time.Time, duration, granularity int) (*SlotsResponse, error) {
	snap, err := s.store.Snapshot(ctx, practitionerID, date)
	if err != nil {
		return nil, err
	}

	resp := &SlotsResponse{Date: date.Format("2006-01-02"), Slots: []string{}}

	if availability.IsDateBlocked(date, snap.Vacations) {
		resp.DateBlocked = true
		return resp, nil
	}

	hours := availability.ResolveEffectiveHours(snap.ClinicSchedule, snap.PractitionerSchedule, date)
	if !hours.Open {
		resp.Closed = true
		return resp, nil
	}

	slots := availability.GenerateSlots(hours, date, snap.Breaks, snap.Vacations, duration, granularity, time.Now())
	free := availability.FilterConflicting(slots, date, duration, roomID, practitionerID, snap.Bookings)
	for _, t := range free {
		resp.Slots = append(resp.Slots, t.String())
	}
	return resp, nil
}

// RoomResponse is one room in the available-rooms listing.
type RoomResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// handleAvailableRooms lists rooms free for a given start time and duration.
// GET /api/v1/rooms/available?date=YYYY-MM-DD&time=HH:MM&duration=45
func (s *Server) handleAvailableRooms(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("rooms_available")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	date, err := parseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	start, err := availability.ParseTimeOfDay(q.Get("time"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid time format; expected HH:MM")
		return
	}
	duration := intParam(q.Get("duration"), s.defaultDuration)

	rooms, err := s.store.ListRooms(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list rooms failed")
		writeError(w, http.StatusInternalServerError, "failed to list rooms")
		return
	}
	bookings, err := s.store.BookingsOn(r.Context(), date)
	if err != nil {
		s.logger.Error().Err(err).Msg("list bookings failed")
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	free := availability.AvailableRooms(date, start, duration, rooms, bookings)
	resp := make([]RoomResponse, 0, len(free))
	for _, room := range free {
		resp = append(resp, RoomResponse{ID: room.ID, Name: room.Name, Capacity: room.Capacity})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": resp})
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
