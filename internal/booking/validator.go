// Package booking validates and commits appointment requests. Validation
// re-runs the availability engine against a freshly fetched snapshot right
// before the write, closing the race between slot display in the UI and
// submission. The persistence layer's own exclusion check inside the insert
// transaction remains the final authority on double-booking.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"klinik/internal/availability"
)

// State of a booking request as it moves through validation.
type State string

const (
	StateDraft      State = "draft"
	StateValidating State = "validating"
	StateCommitted  State = "committed"
	StateRejected   State = "rejected"
)

// RejectionReason identifies why a request was rejected. Every reason maps to
// exactly one user-facing message; no bare errors reach the caller.
type RejectionReason string

const (
	ReasonMissingRequiredField  RejectionReason = "missing_required_field"
	ReasonPastDateTime          RejectionReason = "past_date_time"
	ReasonClosed                RejectionReason = "clinic_or_practitioner_closed"
	ReasonDateBlocked           RejectionReason = "date_blocked"
	ReasonSlotNoLongerAvailable RejectionReason = "slot_no_longer_available"
	ReasonRoomNoLongerAvailable RejectionReason = "room_no_longer_available"
)

var reasonMessages = map[RejectionReason]string{
	ReasonMissingRequiredField:  "Please fill in all required fields.",
	ReasonPastDateTime:          "The requested time is in the past. Please pick a future time.",
	ReasonClosed:                "The clinic or the practitioner does not work at that time.",
	ReasonDateBlocked:           "That date is blocked by a vacation.",
	ReasonSlotNoLongerAvailable: "That time is no longer available. Please pick another time.",
	ReasonRoomNoLongerAvailable: "That room is no longer available. Please pick another room.",
}

// Message returns the human-readable text for the reason.
func (r RejectionReason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// Request is a draft booking collected by the caller. RoomID is required
// unless Online is set.
type Request struct {
	ClientID       string
	PractitionerID string
	RoomID         string
	Online         bool
	Date           time.Time
	Start          availability.TimeOfDay
	DurationMin    int
	Notes          string
}

// Snapshot is the freshly fetched scheduling data a validation runs against.
// Breaks and Vacations carry clinic and practitioner scopes merged; Bookings
// holds the scheduled bookings for the requested date.
type Snapshot struct {
	ClinicSchedule       availability.WeeklySchedule
	PractitionerSchedule availability.WeeklySchedule
	Breaks               []availability.RecurringBreak
	Vacations            []availability.Vacation
	Bookings             []availability.Booking
}

// SnapshotSource fetches the latest scheduling data for a practitioner and
// date. Implementations do not need transactional isolation across the
// underlying reads.
type SnapshotSource interface {
	Snapshot(ctx context.Context, practitionerID string, date time.Time) (*Snapshot, error)
}

// Store commits validated bookings. CreateBooking must re-check the exclusion
// predicate inside its transaction and return ErrPractitionerConflict or
// ErrRoomConflict when a concurrent write got there first.
type Store interface {
	CreateBooking(ctx context.Context, b *availability.Booking) error
}

// Conflict errors surfaced by Store implementations.
var (
	ErrPractitionerConflict = errors.New("practitioner already booked")
	ErrRoomConflict         = errors.New("room already booked")
)

// Result is the terminal outcome of a booking attempt.
type Result struct {
	State   State
	Reason  RejectionReason // set when State == StateRejected
	Booking *availability.Booking
}

// Rejected reports whether the attempt ended in rejection.
func (r *Result) Rejected() bool { return r.State == StateRejected }

// Validator orchestrates Draft -> Validating -> Committed|Rejected.
type Validator struct {
	source SnapshotSource
	store  Store
	nowFn  func() time.Time
	logger *zerolog.Logger
}

// NewValidator creates a validator. nowFn may be nil, in which case
// time.Now is used.
func NewValidator(source SnapshotSource, store Store, nowFn func() time.Time, logger *zerolog.Logger) *Validator {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Validator{source: source, store: store, nowFn: nowFn, logger: logger}
}

// Create validates the request against fresh data and commits it. A rejected
// validation performs no writes; the caller must re-query availability and
// resubmit. The validator never retries.
func (v *Validator) Create(ctx context.Context, req Request) (*Result, error) {
	snap, err := v.source.Snapshot(ctx, req.PractitionerID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	if reason, ok := Validate(req, snap, v.nowFn()); !ok {
		v.logReject(req, reason)
		return &Result{State: StateRejected, Reason: reason}, nil
	}

	b := &availability.Booking{
		ClientID:       req.ClientID,
		PractitionerID: req.PractitionerID,
		RoomID:         req.RoomID,
		Online:         req.Online,
		Start:          req.Start.OnDate(req.Date),
		End:            availability.TimeOfDay(req.Start.Minutes() + req.DurationMin).OnDate(req.Date),
		Status:         availability.StatusScheduled,
	}
	if req.Online {
		b.RoomID = availability.OnlineRoomID
	}

	if err := v.store.CreateBooking(ctx, b); err != nil {
		switch {
		case errors.Is(err, ErrRoomConflict):
			v.logReject(req, ReasonRoomNoLongerAvailable)
			return &Result{State: StateRejected, Reason: ReasonRoomNoLongerAvailable}, nil
		case errors.Is(err, ErrPractitionerConflict):
			v.logReject(req, ReasonSlotNoLongerAvailable)
			return &Result{State: StateRejected, Reason: ReasonSlotNoLongerAvailable}, nil
		default:
			return nil, fmt.Errorf("create booking: %w", err)
		}
	}

	if v.logger != nil {
		v.logger.Info().
			Str("booking_id", b.ID).
			Str("practitioner_id", b.PractitionerID).
			Time("start", b.Start).
			Msg("booking committed")
	}
	return &Result{State: StateCommitted, Booking: b}, nil
}

// Validate runs the engine end-to-end for the exact requested start time.
// It is deterministic for a given request, snapshot and now, so calling it
// twice with identical inputs yields the same outcome.
func Validate(req Request, snap *Snapshot, now time.Time) (RejectionReason, bool) {
	if req.ClientID == "" || req.PractitionerID == "" || req.DurationMin <= 0 {
		return ReasonMissingRequiredField, false
	}
	if !req.Online && req.RoomID == "" {
		return ReasonMissingRequiredField, false
	}

	if !req.Start.OnDate(req.Date).After(now) {
		return ReasonPastDateTime, false
	}

	if availability.IsDateBlocked(req.Date, snap.Vacations) {
		return ReasonDateBlocked, false
	}

	hours := availability.ResolveEffectiveHours(snap.ClinicSchedule, snap.PractitionerSchedule, req.Date)
	if !hours.Open {
		return ReasonClosed, false
	}
	start := req.Start.Minutes()
	if start < hours.OpenTime.Minutes() || start+req.DurationMin > hours.CloseTime.Minutes() {
		return ReasonClosed, false
	}
	if availability.IsTimeInBreak(req.Date, req.Start, snap.Breaks) {
		return ReasonSlotNoLongerAvailable, false
	}

	roomID := req.RoomID
	if req.Online {
		roomID = availability.OnlineRoomID
	}
	for _, b := range snap.Bookings {
		if b.Status != availability.StatusScheduled {
			continue
		}
		if !availability.SameDate(b.Start, req.Date) {
			continue
		}
		bStart := availability.TimeOfDayFromTime(b.Start).Minutes()
		bEnd := availability.TimeOfDayFromTime(b.End).Minutes()
		if !availability.Overlaps(start, start+req.DurationMin, bStart, bEnd) {
			continue
		}
		if b.PractitionerID == req.PractitionerID {
			return ReasonSlotNoLongerAvailable, false
		}
		if !req.Online && !b.Online && b.RoomID == roomID {
			return ReasonRoomNoLongerAvailable, false
		}
	}

	return "", true
}

func (v *Validator) logReject(req Request, reason RejectionReason) {
	if v.logger == nil {
		return
	}
	v.logger.Info().
		Str("practitioner_id", req.PractitionerID).
		Str("date", req.Date.Format("2006-01-02")).
		Str("start", req.Start.String()).
		Str("reason", string(reason)).
		Msg("booking rejected")
}
