package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "klinik",
			Name:      "http_requests_total",
			Help:      "Count of HTTP API requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "klinik",
			Name:      "booking_committed_total",
			Help:      "Count of bookings committed after validation.",
		},
	)

	bookingRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "klinik",
			Name:      "booking_rejected_total",
			Help:      "Count of booking validations rejected by reason.",
		},
		[]string{"reason"},
	)

	slotCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "klinik",
			Name:      "slot_cache_total",
			Help:      "Slot cache lookups by outcome (hit, miss).",
		},
		[]string{"outcome"},
	)

	remindersSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "klinik",
			Name:      "reminders_sent_total",
			Help:      "Count of appointment reminders by outcome (sent, failed).",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingCommitted, bookingRejected, slotCacheHits, remindersSent)
	})
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCommitted() {
	bookingCommitted.Inc()
}

func IncBookingRejected(reason string) {
	bookingRejected.WithLabelValues(reason).Inc()
}

func IncSlotCache(outcome string) {
	slotCacheHits.WithLabelValues(outcome).Inc()
}

func IncReminder(outcome string) {
	remindersSent.WithLabelValues(outcome).Inc()
}
