// Package remind sends session reminders to clients ahead of their start
// time. It polls the store on an interval, picks up scheduled sessions whose
// reminder window has opened and pushes a notification through the
// configured Notifier, marking each session so it is reminded at most once.
package remind

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"klinik/internal/metrics"
)

// Session is one upcoming session due a reminder.
type Session struct {
	BookingID        string
	ClientName       string
	ChatID           int64
	PractitionerName string
	RoomName         string
	Online           bool
	Start            time.Time
}

// Source yields sessions due a reminder and records sent ones.
type Source interface {
	// DueSessions returns scheduled, not-yet-reminded sessions starting
	// within the given window from now.
	DueSessions(ctx context.Context, within time.Duration) ([]Session, error)

	// MarkReminderSent flags a booking so it is not reminded again.
	MarkReminderSent(ctx context.Context, bookingID string) error
}

// Notifier delivers a reminder to a client.
type Notifier interface {
	SendReminder(ctx context.Context, s Session) error
}

// Config controls the reminder loop.
type Config struct {
	CheckInterval time.Duration // how often to poll, default 15m
	Lead          time.Duration // how long before start to remind, default 24h
	SendTimeout   time.Duration // per-cycle deadline, default 5m
}

// Service runs the reminder loop.
type Service struct {
	cfg      Config
	source   Source
	notifier Notifier
	logger   *zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewService creates a reminder service. Zero config fields get defaults.
func NewService(cfg Config, source Source, notifier Notifier, logger *zerolog.Logger) *Service {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 15 * time.Minute
	}
	if cfg.Lead <= 0 {
		cfg.Lead = 24 * time.Hour
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 5 * time.Minute
	}
	return &Service{
		cfg:      cfg,
		source:   source,
		notifier: notifier,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the polling loop. Safe to call once.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop()

	s.logger.Info().
		Dur("check_interval", s.cfg.CheckInterval).
		Dur("lead", s.cfg.Lead).
		Msg("reminder service started")
}

// Stop waits for the current cycle to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info().Msg("reminder service stopped")
}

func (s *Service) loop() {
	defer s.wg.Done()

	s.CheckNow()

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.CheckNow()
		}
	}
}

// CheckNow runs one reminder cycle immediately.
func (s *Service) CheckNow() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SendTimeout)
	defer cancel()

	sessions, err := s.source.DueSessions(ctx, s.cfg.Lead)
	if err != nil {
		s.logger.Error().Err(err).Msg("query due reminders failed")
		return
	}
	if len(sessions) == 0 {
		return
	}
	s.logger.Debug().Int("count", len(sessions)).Msg("sessions due a reminder")

	for _, session := range sessions {
		if session.ChatID == 0 {
			// No contact channel. Mark anyway so the row stops
			// showing up every cycle.
			_ = s.source.MarkReminderSent(ctx, session.BookingID)
			metrics.IncReminder("skipped")
			continue
		}

		if err := s.notifier.SendReminder(ctx, session); err != nil {
			s.logger.Error().Err(err).
				Str("booking_id", session.BookingID).
				Msg("reminder send failed")
			metrics.IncReminder("failed")
			continue
		}

		if err := s.source.MarkReminderSent(ctx, session.BookingID); err != nil {
			// The notification went out; log and move on.
			s.logger.Error().Err(err).
				Str("booking_id", session.BookingID).
				Msg("mark reminder sent failed")
		}
		metrics.IncReminder("sent")
		s.logger.Info().
			Str("booking_id", session.BookingID).
			Time("start", session.Start).
			Msg("reminder sent")
	}
}
