package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"klinik/internal/availability"
)

const clinicOwnerID = ""

// SetWeeklyHours upserts one weekday of a weekly schedule. Pass
// availability.ScopeClinic with empty ownerID for the clinic schedule.
func (s *Store) SetWeeklyHours(ctx context.Context, scope availability.OwnerScope, ownerID string, day time.Weekday, sched availability.DaySchedule) error {
	if sched.Open && sched.OpenTime >= sched.CloseTime {
		return fmt.Errorf("open time %s must precede close time %s", sched.OpenTime, sched.CloseTime)
	}

	var open, close interface{}
	if sched.Open {
		open, close = sched.OpenTime.String(), sched.CloseTime.String()
	}

	_, err := s.ExecContext(ctx, `
		INSERT INTO weekly_hours (scope, owner_id, day_of_week, is_open, open_time, close_time, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scope, owner_id, day_of_week) DO UPDATE SET
			is_open = excluded.is_open,
			open_time = excluded.open_time,
			close_time = excluded.close_time,
			updated_at = excluded.updated_at`,
		string(scope), ownerID, int(day), sched.Open, open, close, time.Now(),
	)
	return err
}

// ClinicSchedule loads the clinic's weekly schedule. Weekdays without a row
// are simply absent from the map, which the engine treats as closed.
func (s *Store) ClinicSchedule(ctx context.Context) (availability.WeeklySchedule, error) {
	return s.weeklySchedule(ctx, availability.ScopeClinic, clinicOwnerID)
}

// PractitionerSchedule loads a practitioner's personal weekly schedule.
// Returns nil when the practitioner has no schedule rows at all, so the
// clinic schedule alone becomes authoritative.
func (s *Store) PractitionerSchedule(ctx context.Context, practitionerID string) (availability.WeeklySchedule, error) {
	sched, err := s.weeklySchedule(ctx, availability.ScopePractitioner, practitionerID)
	if err != nil {
		return nil, err
	}
	if len(sched) == 0 {
		return nil, nil
	}
	return sched, nil
}

func (s *Store) weeklySchedule(ctx context.Context, scope availability.OwnerScope, ownerID string) (availability.WeeklySchedule, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT day_of_week, is_open, open_time, close_time
		FROM weekly_hours
		WHERE scope = ? AND owner_id = ?`,
		string(scope), ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query weekly hours: %w", err)
	}
	defer rows.Close()

	sched := make(availability.WeeklySchedule)
	for rows.Next() {
		var day int
		var isOpen bool
		var openStr, closeStr sql.NullString
		if err := rows.Scan(&day, &isOpen, &openStr, &closeStr); err != nil {
			return nil, err
		}

		ds := availability.DaySchedule{Open: isOpen}
		if isOpen {
			open, err := availability.ParseTimeOfDay(openStr.String)
			if err != nil {
				return nil, fmt.Errorf("day %d open time: %w", day, err)
			}
			close, err := availability.ParseTimeOfDay(closeStr.String)
			if err != nil {
				return nil, fmt.Errorf("day %d close time: %w", day, err)
			}
			ds.OpenTime, ds.CloseTime = open, close
		}
		sched[time.Weekday(day)] = ds
	}
	return sched, rows.Err()
}

// AddBreak stores a recurring weekly break.
func (s *Store) AddBreak(ctx context.Context, b availability.RecurringBreak) (string, error) {
	if b.Start >= b.End {
		return "", fmt.Errorf("break start %s must precede end %s", b.Start, b.End)
	}
	id := uuid.NewString()
	_, err := s.ExecContext(ctx, `
		INSERT INTO breaks (id, scope, owner_id, day_of_week, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(b.Scope), b.OwnerID, int(b.Weekday), b.Start.String(), b.End.String(),
	)
	return id, err
}

// DeleteBreak removes a break by id.
func (s *Store) DeleteBreak(ctx context.Context, id string) error {
	_, err := s.ExecContext(ctx, "DELETE FROM breaks WHERE id = ?", id)
	return err
}

// ListBreaks returns clinic breaks merged with the practitioner's breaks.
func (s *Store) ListBreaks(ctx context.Context, practitionerID string) ([]availability.RecurringBreak, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT scope, owner_id, day_of_week, start_time, end_time
		FROM breaks
		WHERE (scope = ? AND owner_id = '') OR (scope = ? AND owner_id = ?)
		ORDER BY day_of_week, start_time`,
		string(availability.ScopeClinic), string(availability.ScopePractitioner), practitionerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query breaks: %w", err)
	}
	defer rows.Close()

	var breaks []availability.RecurringBreak
	for rows.Next() {
		var scope, ownerID, startStr, endStr string
		var day int
		if err := rows.Scan(&scope, &ownerID, &day, &startStr, &endStr); err != nil {
			return nil, err
		}
		start, err := availability.ParseTimeOfDay(startStr)
		if err != nil {
			return nil, err
		}
		end, err := availability.ParseTimeOfDay(endStr)
		if err != nil {
			return nil, err
		}
		breaks = append(breaks, availability.RecurringBreak{
			Weekday: time.Weekday(day),
			Start:   start,
			End:     end,
			Scope:   availability.OwnerScope(scope),
			OwnerID: ownerID,
		})
	}
	return breaks, rows.Err()
}

// AddVacation stores a blocked date range.
func (s *Store) AddVacation(ctx context.Context, v availability.Vacation) (string, error) {
	if v.EndDate.Before(v.StartDate) {
		return "", fmt.Errorf("vacation end %s precedes start %s",
			v.EndDate.Format("2006-01-02"), v.StartDate.Format("2006-01-02"))
	}
	id := uuid.NewString()
	_, err := s.ExecContext(ctx, `
		INSERT INTO vacations (id, scope, owner_id, start_date, end_date)
		VALUES (?, ?, ?, ?, ?)`,
		id, string(v.Scope), v.OwnerID,
		v.StartDate.Format("2006-01-02"), v.EndDate.Format("2006-01-02"),
	)
	return id, err
}

// DeleteVacation removes a vacation by id.
func (s *Store) DeleteVacation(ctx context.Context, id string) error {
	_, err := s.ExecContext(ctx, "DELETE FROM vacations WHERE id = ?", id)
	return err
}

// ListVacations returns clinic vacations merged with the practitioner's.
func (s *Store) ListVacations(ctx context.Context, practitionerID string) ([]availability.Vacation, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT scope, owner_id, start_date, end_date
		FROM vacations
		WHERE (scope = ? AND owner_id = '') OR (scope = ? AND owner_id = ?)
		ORDER BY start_date`,
		string(availability.ScopeClinic), string(availability.ScopePractitioner), practitionerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query vacations: %w", err)
	}
	defer rows.Close()

	var vacations []availability.Vacation
	for rows.Next() {
		var scope, ownerID, startStr, endStr string
		if err := rows.Scan(&scope, &ownerID, &startStr, &endStr); err != nil {
			return nil, err
		}
		start, err := time.ParseInLocation("2006-01-02", startStr, time.Local)
		if err != nil {
			return nil, err
		}
		end, err := time.ParseInLocation("2006-01-02", endStr, time.Local)
		if err != nil {
			return nil, err
		}
		vacations = append(vacations, availability.Vacation{
			StartDate: start,
			EndDate:   end,
			Scope:     availability.OwnerScope(scope),
			OwnerID:   ownerID,
		})
	}
	return vacations, rows.Err()
}

// CreateRoom stores a physical room.
func (s *Store) CreateRoom(ctx context.Context, room *availability.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	_, err := s.ExecContext(ctx,
		"INSERT INTO rooms (id, name, capacity) VALUES (?, ?, ?)",
		room.ID, room.Name, room.Capacity,
	)
	return err
}

// ListRooms returns all physical rooms ordered by name.
func (s *Store) ListRooms(ctx context.Context) ([]availability.Room, error) {
	rows, err := s.QueryContext(ctx, "SELECT id, name, capacity FROM rooms ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []availability.Room
	for rows.Next() {
		var r availability.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.Capacity); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}
