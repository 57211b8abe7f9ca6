// Package store is the sqlite persistence layer: clinic and practitioner
// schedules, breaks, vacations, rooms, clients, bookings and payments.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// Store wraps the sqlite connection.
type Store struct {
	*sql.DB
	path   string
	logger *zerolog.Logger
}

// Open opens the database at path and runs migrations. WAL mode with a busy
// timeout keeps concurrent readers cheap while sqlite serializes writers,
// which is what makes the booking exclusion check in CreateBooking reliable.
func Open(path string, logger *zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{DB: db, path: path, logger: logger}
	if err := s.createTables(); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info().Str("path", path).Msg("database initialized")
	}
	return s, nil
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS practitioners (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			title TEXT,
			specialization TEXT,
			email TEXT,
			phone TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			practitioner_id TEXT NOT NULL,
			full_name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			telegram_chat_id INTEGER NOT NULL DEFAULT 0,
			session_fee REAL NOT NULL DEFAULT 0,
			practitioner_share_pct REAL NOT NULL DEFAULT 0,
			clinic_share_pct REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (practitioner_id) REFERENCES practitioners(id)
		)`,

		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			capacity INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Weekly schedules for the clinic (owner_id = '') and for
		// practitioners (owner_id = practitioner id).
		`CREATE TABLE IF NOT EXISTS weekly_hours (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scope TEXT NOT NULL,
			owner_id TEXT NOT NULL DEFAULT '',
			day_of_week INTEGER NOT NULL,
			is_open BOOLEAN NOT NULL DEFAULT 0,
			open_time TEXT,
			close_time TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(scope, owner_id, day_of_week)
		)`,

		`CREATE TABLE IF NOT EXISTS breaks (
			id TEXT PRIMARY KEY,
			scope TEXT NOT NULL,
			owner_id TEXT NOT NULL DEFAULT '',
			day_of_week INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS vacations (
			id TEXT PRIMARY KEY,
			scope TEXT NOT NULL,
			owner_id TEXT NOT NULL DEFAULT '',
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			practitioner_id TEXT NOT NULL,
			room_id TEXT NOT NULL,
			is_online BOOLEAN NOT NULL DEFAULT 0,
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'scheduled',
			reminder_sent BOOLEAN NOT NULL DEFAULT 0,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (client_id) REFERENCES clients(id),
			FOREIGN KEY (practitioner_id) REFERENCES practitioners(id)
		)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			booking_id TEXT NOT NULL,
			practitioner_id TEXT NOT NULL,
			amount REAL NOT NULL,
			practitioner_amount REAL NOT NULL,
			clinic_amount REAL NOT NULL,
			payment_status TEXT NOT NULL DEFAULT 'pending',
			payment_date DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (booking_id) REFERENCES bookings(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_times ON bookings(start_time, end_time)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_practitioner ON bookings(practitioner_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_room ON bookings(room_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_hours_owner ON weekly_hours(scope, owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_breaks_owner ON breaks(scope, owner_id, day_of_week)`,
		`CREATE INDEX IF NOT EXISTS idx_vacations_owner ON vacations(scope, owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_practitioner ON payments(practitioner_id, payment_date)`,
	}

	for _, q := range queries {
		if _, err := s.Exec(q); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// Backup copies the database file to dest.
func (s *Store) Backup(dest string) error {
	src, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open source db: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer out.Close()

	if _, err := out.ReadFrom(src); err != nil {
		return fmt.Errorf("copy db: %w", err)
	}
	return nil
}

// CleanupBackups deletes backup files in dir older than retention. Returns
// the number of files removed.
func (s *Store) CleanupBackups(dir string, retention time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-retention)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
				deleted++
			}
		}
	}
	return deleted, nil
}

// Ping checks connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.PingContext(ctx)
}
