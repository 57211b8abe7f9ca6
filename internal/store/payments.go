package store

import (
	"context"
	"fmt"
	"time"
)

// PaymentRow is one payment joined with its booking and names, as consumed
// by the revenue report.
type PaymentRow struct {
	ID                 string
	BookingID          string
	PractitionerID     string
	PractitionerName   string
	ClientName         string
	SessionStart       time.Time
	Amount             float64
	PractitionerAmount float64
	ClinicAmount       float64
	PaymentStatus      string
}

// PaymentsBetween returns payments for sessions starting in [from, to),
// oldest first.
func (s *Store) PaymentsBetween(ctx context.Context, from, to time.Time) ([]PaymentRow, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT p.id, p.booking_id, p.practitioner_id, pr.full_name, c.full_name,
			b.start_time, p.amount, p.practitioner_amount, p.clinic_amount, p.payment_status
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		JOIN practitioners pr ON pr.id = p.practitioner_id
		JOIN clients c ON c.id = b.client_id
		WHERE b.start_time >= ? AND b.start_time < ?
		ORDER BY b.start_time`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []PaymentRow
	for rows.Next() {
		var p PaymentRow
		if err := rows.Scan(&p.ID, &p.BookingID, &p.PractitionerID, &p.PractitionerName,
			&p.ClientName, &p.SessionStart, &p.Amount, &p.PractitionerAmount,
			&p.ClinicAmount, &p.PaymentStatus); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// MarkPaymentStatus updates a payment's status and stamps the payment date.
func (s *Store) MarkPaymentStatus(ctx context.Context, id, status string) error {
	res, err := s.ExecContext(ctx,
		"UPDATE payments SET payment_status = ?, payment_date = ? WHERE id = ?",
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
