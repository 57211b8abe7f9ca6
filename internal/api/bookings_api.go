package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"klinik/internal/availability"
	"klinik/internal/booking"
	"klinik/internal/events"
	"klinik/internal/metrics"
	"klinik/internal/store"
)

// CreateBookingRequest is the body for POST /api/v1/bookings.
type CreateBookingRequest struct {
	ClientID       string `json:"client_id"`
	PractitionerID string `json:"practitioner_id"`
	RoomID         string `json:"room_id,omitempty"`
	Online         bool   `json:"online,omitempty"`
	Date           string `json:"date"`       // YYYY-MM-DD
	StartTime      string `json:"start_time"` // HH:MM
	DurationMin    int    `json:"duration_minutes"`
	Notes          string `json:"notes,omitempty"`
}

// CreateBookingResponse reports the validation outcome.
type CreateBookingResponse struct {
	Committed bool   `json:"committed"`
	BookingID string `json:"booking_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

// BookingResponse is one booking in listings.
type BookingResponse struct {
	ID             string `json:"id"`
	ClientID       string `json:"client_id"`
	PractitionerID string `json:"practitioner_id"`
	RoomID         string `json:"room_id"`
	Online         bool   `json:"online"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Status         string `json:"status"`
}

// handleBookings dispatches GET (list by date) and POST (create).
func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListBookings(w, r)
	case http.MethodPost:
		s.handleCreateBooking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleListBookings returns bookings for a calendar date.
// GET /api/v1/bookings?date=YYYY-MM-DD
func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_list")
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	bookings, err := s.store.BookingsOn(r.Context(), date)
	if err != nil {
		s.logger.Error().Err(err).Msg("list bookings failed")
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	resp := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, BookingResponse{
			ID:             b.ID,
			ClientID:       b.ClientID,
			PractitionerID: b.PractitionerID,
			RoomID:         b.RoomID,
			Online:         b.Online,
			Start:          b.Start.Format(time.RFC3339),
			End:            b.End.Format(time.RFC3339),
			Status:         b.Status,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": resp})
}

// handleCreateBooking validates and commits a booking request.
// POST /api/v1/bookings
func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_create")

	var req CreateBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	start, err := availability.ParseTimeOfDay(req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_time format; expected HH:MM")
		return
	}

	if req.DurationMin <= 0 {
		req.DurationMin = s.defaultDuration
	}

	result, err := s.validator.Create(r.Context(), booking.Request{
		ClientID:       req.ClientID,
		PractitionerID: req.PractitionerID,
		RoomID:         req.RoomID,
		Online:         req.Online,
		Date:           date,
		Start:          start,
		DurationMin:    req.DurationMin,
		Notes:          req.Notes,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("booking creation failed")
		writeError(w, http.StatusInternalServerError, "failed to create booking")
		return
	}

	if result.Rejected() {
		metrics.IncBookingRejected(string(result.Reason))
		writeJSON(w, http.StatusConflict, CreateBookingResponse{
			Committed: false,
			Reason:    string(result.Reason),
			Message:   result.Reason.Message(),
		})
		return
	}

	metrics.IncBookingCommitted()
	s.bus.Publish(events.Event{
		Type:           events.TypeBookingCreated,
		BookingID:      result.Booking.ID,
		PractitionerID: result.Booking.PractitionerID,
		RoomID:         result.Booking.RoomID,
		Date:           date,
	})
	writeJSON(w, http.StatusCreated, CreateBookingResponse{
		Committed: true,
		BookingID: result.Booking.ID,
	})
}

// handleBookingStatus transitions a booking's status.
// POST /api/v1/bookings/{id}/cancel | /complete | /revert
func (s *Server) handleBookingStatus(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_status")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}
	id := parts[0]

	var status, eventType string
	switch parts[1] {
	case "cancel":
		status, eventType = availability.StatusCancelled, events.TypeBookingCancelled
	case "complete":
		status, eventType = availability.StatusCompleted, events.TypeBookingCompleted
	case "revert":
		status, eventType = availability.StatusScheduled, events.TypeBookingCreated
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}

	b, err := s.store.GetBooking(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("load booking failed")
		writeError(w, http.StatusInternalServerError, "failed to load booking")
		return
	}

	if err := s.store.UpdateBookingStatus(r.Context(), id, status); err != nil {
		s.logger.Error().Err(err).Msg("status update failed")
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	// Any status change invalidates cached slot computations for the date.
	s.bus.Publish(events.Event{
		Type:           eventType,
		BookingID:      id,
		PractitionerID: b.PractitionerID,
		RoomID:         b.RoomID,
		Date:           b.Start,
	})
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
}
