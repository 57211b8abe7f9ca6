// Package events provides in-process pub/sub for booking lifecycle events.
// Cache invalidation and report refresh hook into it.
package events

import (
	"sync"
	"time"
)

// Event types published by the booking flow.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingCompleted = "booking.completed"
)

// Event is a lightweight domain event. Date carries the calendar date whose
// availability computations the event invalidates.
type Event struct {
	Type           string
	BookingID      string
	PractitionerID string
	RoomID         string
	Date           time.Time
	CreatedAt      time.Time
}

// Handler reacts to an event.
type Handler func(event Event)

// Bus is an in-process publish/subscribe hub. Handlers run synchronously in
// publish order; the caller decides the concurrency model.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		handler(event)
	}
}
