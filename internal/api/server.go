// Package api exposes the availability engine and booking flow over HTTP.
// Handlers follow a plain net/http mux with JSON bodies; all scheduling
// inputs and outputs are primitive types (string dates, "HH:MM" times,
// integer minutes) so any UI can call them.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"klinik/internal/booking"
	"klinik/internal/events"
	"klinik/internal/store"
)

// Server is the HTTP API server.
type Server struct {
	store     *store.Store
	validator *booking.Validator
	bus       *events.Bus
	cache     *SlotCache
	apiKey    string
	logger    *zerolog.Logger

	defaultDuration    int
	defaultGranularity int

	httpServer *http.Server
}

// New creates the API server. cache may be nil to disable slot caching.
// defaultDuration and defaultGranularity apply when requests omit them.
func New(st *store.Store, validator *booking.Validator, bus *events.Bus, cache *SlotCache, apiKey string, defaultDuration, defaultGranularity int, logger *zerolog.Logger) *Server {
	if defaultDuration <= 0 {
		defaultDuration = 45
	}
	if defaultGranularity <= 0 {
		defaultGranularity = 60
	}
	return &Server{
		store:              st,
		validator:          validator,
		bus:                bus,
		cache:              cache,
		apiKey:             apiKey,
		logger:             logger,
		defaultDuration:    defaultDuration,
		defaultGranularity: defaultGranularity,
	}
}

// Routes builds the request mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/slots", s.requireAPIKey(s.handleSlots))
	mux.HandleFunc("/api/v1/rooms/available", s.requireAPIKey(s.handleAvailableRooms))
	mux.HandleFunc("/api/v1/bookings", s.requireAPIKey(s.handleBookings))
	mux.HandleFunc("/api/v1/bookings/", s.requireAPIKey(s.handleBookingStatus))
	mux.HandleFunc("/api/v1/reports/revenue", s.requireAPIKey(s.handleRevenueReport))
	return mux
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", port).Msg("API server started")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("X-API-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}
