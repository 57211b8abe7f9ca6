package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"klinik/internal/availability"
	"klinik/internal/booking"
)

var ErrNotFound = errors.New("not found")

// Practitioner is a mental-health professional working at the clinic.
type Practitioner struct {
	ID             string
	FullName       string
	Title          string
	Specialization string
	Email          string
	Phone          string
	Status         string
}

// Client is a person receiving sessions. The fee fields drive the revenue
// split recorded on each committed booking.
type Client struct {
	ID                   string
	PractitionerID       string
	FullName             string
	Email                string
	Phone                string
	TelegramChatID       int64
	SessionFee           float64
	PractitionerSharePct float64
	ClinicSharePct       float64
	Status               string
	Notes                string
}

// CreatePractitioner inserts a practitioner, assigning an id when empty.
func (s *Store) CreatePractitioner(ctx context.Context, p *Practitioner) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = "active"
	}
	_, err := s.ExecContext(ctx, `
		INSERT INTO practitioners (id, full_name, title, specialization, email, phone, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.FullName, p.Title, p.Specialization, p.Email, p.Phone, p.Status,
	)
	return err
}

// CreateClient inserts a client, assigning an id when empty.
func (s *Store) CreateClient(ctx context.Context, c *Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = "active"
	}
	_, err := s.ExecContext(ctx, `
		INSERT INTO clients (id, practitioner_id, full_name, email, phone, telegram_chat_id,
			session_fee, practitioner_share_pct, clinic_share_pct, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.PractitionerID, c.FullName, c.Email, c.Phone, c.TelegramChatID,
		c.SessionFee, c.PractitionerSharePct, c.ClinicSharePct, c.Status, c.Notes,
	)
	return err
}

// GetClient returns a client by id.
func (s *Store) GetClient(ctx context.Context, id string) (*Client, error) {
	var c Client
	err := s.QueryRowContext(ctx, `
		SELECT id, practitioner_id, full_name, COALESCE(email,''), COALESCE(phone,''), telegram_chat_id,
			session_fee, practitioner_share_pct, clinic_share_pct, status, COALESCE(notes,'')
		FROM clients WHERE id = ?`, id,
	).Scan(&c.ID, &c.PractitionerID, &c.FullName, &c.Email, &c.Phone, &c.TelegramChatID,
		&c.SessionFee, &c.PractitionerSharePct, &c.ClinicSharePct, &c.Status, &c.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// BookingsOn returns all bookings whose start falls on the given calendar
// date, regardless of status. The availability engine ignores non-scheduled
// ones itself.
func (s *Store) BookingsOn(ctx context.Context, date time.Time) ([]availability.Booking, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := s.QueryContext(ctx, `
		SELECT id, client_id, practitioner_id, room_id, is_online, start_time, end_time, status
		FROM bookings
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time`,
		dayStart, dayEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []availability.Booking
	for rows.Next() {
		var b availability.Booking
		if err := rows.Scan(&b.ID, &b.ClientID, &b.PractitionerID, &b.RoomID,
			&b.Online, &b.Start, &b.End, &b.Status); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CreateBooking inserts a scheduled booking. The whole operation runs in one
// transaction that re-checks the exclusion predicate — no two scheduled
// bookings for the same practitioner, nor for the same physical room, with
// overlapping [start,end). Since sqlite serializes writers, a concurrent
// submission sees the earlier insert and fails with
// booking.ErrPractitionerConflict or booking.ErrRoomConflict.
//
// On success a pending payment row is derived from the client's session fee
// and split percentages.
func (s *Store) CreateBooking(ctx context.Context, b *availability.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = availability.StatusScheduled
	}

	client, err := s.GetClient(ctx, b.ClientID)
	if err != nil {
		return fmt.Errorf("load client %s: %w", b.ClientID, err)
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE practitioner_id = ? AND status = 'scheduled'
		AND start_time < ? AND end_time > ?`,
		b.PractitionerID, b.End, b.Start,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("check practitioner conflict: %w", err)
	}
	if count > 0 {
		return booking.ErrPractitionerConflict
	}

	if !b.Online {
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM bookings
			WHERE room_id = ? AND is_online = 0 AND status = 'scheduled'
			AND start_time < ? AND end_time > ?`,
			b.RoomID, b.End, b.Start,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("check room conflict: %w", err)
		}
		if count > 0 {
			return booking.ErrRoomConflict
		}
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (id, client_id, practitioner_id, room_id, is_online,
			start_time, end_time, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ClientID, b.PractitionerID, b.RoomID, b.Online,
		b.Start, b.End, b.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	practitionerAmount := client.SessionFee * client.PractitionerSharePct / 100
	clinicAmount := client.SessionFee * client.ClinicSharePct / 100
	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, booking_id, practitioner_id, amount,
			practitioner_amount, clinic_amount, payment_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)`,
		uuid.NewString(), b.ID, b.PractitionerID, client.SessionFee,
		practitionerAmount, clinicAmount, now,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return tx.Commit()
}

// UpdateBookingStatus transitions a booking's status (complete, cancel,
// revert to scheduled). Status transitions themselves are unrestricted here;
// callers invalidate any cached slot computations for the booking's date.
func (s *Store) UpdateBookingStatus(ctx context.Context, id, status string) error {
	res, err := s.ExecContext(ctx,
		"UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBooking returns a booking by id.
func (s *Store) GetBooking(ctx context.Context, id string) (*availability.Booking, error) {
	var b availability.Booking
	err := s.QueryRowContext(ctx, `
		SELECT id, client_id, practitioner_id, room_id, is_online, start_time, end_time, status
		FROM bookings WHERE id = ?`, id,
	).Scan(&b.ID, &b.ClientID, &b.PractitionerID, &b.RoomID, &b.Online, &b.Start, &b.End, &b.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpcomingBookings returns scheduled bookings starting within the given
// window from now. Used by the reminder service.
func (s *Store) UpcomingBookings(ctx context.Context, within time.Duration) ([]availability.Booking, error) {
	now := time.Now()
	rows, err := s.QueryContext(ctx, `
		SELECT id, client_id, practitioner_id, room_id, is_online, start_time, end_time, status
		FROM bookings
		WHERE status = 'scheduled' AND start_time > ? AND start_time <= ?
		ORDER BY start_time`,
		now, now.Add(within),
	)
	if err != nil {
		return nil, fmt.Errorf("query upcoming bookings: %w", err)
	}
	defer rows.Close()

	var bookings []availability.Booking
	for rows.Next() {
		var b availability.Booking
		if err := rows.Scan(&b.ID, &b.ClientID, &b.PractitionerID, &b.RoomID,
			&b.Online, &b.Start, &b.End, &b.Status); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// Snapshot fetches the latest scheduling data for a validation run. No
// transactional isolation spans the reads; the insert-time exclusion check
// covers the remaining race.
func (s *Store) Snapshot(ctx context.Context, practitionerID string, date time.Time) (*booking.Snapshot, error) {
	clinicSched, err := s.ClinicSchedule(ctx)
	if err != nil {
		return nil, err
	}
	profSched, err := s.PractitionerSchedule(ctx, practitionerID)
	if err != nil {
		return nil, err
	}
	breaks, err := s.ListBreaks(ctx, practitionerID)
	if err != nil {
		return nil, err
	}
	vacations, err := s.ListVacations(ctx, practitionerID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.BookingsOn(ctx, date)
	if err != nil {
		return nil, err
	}
	return &booking.Snapshot{
		ClinicSchedule:       clinicSched,
		PractitionerSchedule: profSched,
		Breaks:               breaks,
		Vacations:            vacations,
		Bookings:             bookings,
	}, nil
}
