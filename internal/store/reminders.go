package store

import (
	"context"
	"fmt"
	"time"

	"klinik/internal/remind"
)

// DueSessions returns scheduled, not-yet-reminded sessions starting within
// the given window from now, joined with the names the reminder text needs.
func (s *Store) DueSessions(ctx context.Context, within time.Duration) ([]remind.Session, error) {
	now := time.Now()
	rows, err := s.QueryContext(ctx, `
		SELECT b.id, c.full_name, c.telegram_chat_id, pr.full_name,
			COALESCE(r.name, ''), b.is_online, b.start_time
		FROM bookings b
		JOIN clients c ON c.id = b.client_id
		JOIN practitioners pr ON pr.id = b.practitioner_id
		LEFT JOIN rooms r ON r.id = b.room_id
		WHERE b.status = 'scheduled' AND b.reminder_sent = 0
		AND b.start_time > ? AND b.start_time <= ?
		ORDER BY b.start_time`,
		now, now.Add(within),
	)
	if err != nil {
		return nil, fmt.Errorf("query due sessions: %w", err)
	}
	defer rows.Close()

	var sessions []remind.Session
	for rows.Next() {
		var sess remind.Session
		if err := rows.Scan(&sess.BookingID, &sess.ClientName, &sess.ChatID,
			&sess.PractitionerName, &sess.RoomName, &sess.Online, &sess.Start); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// MarkReminderSent flags a booking's reminder as delivered.
func (s *Store) MarkReminderSent(ctx context.Context, bookingID string) error {
	res, err := s.ExecContext(ctx,
		"UPDATE bookings SET reminder_sent = 1, updated_at = ? WHERE id = ?",
		time.Now(), bookingID,
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
