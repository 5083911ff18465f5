package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arena_booking",
			Name:      "booking_submitted_total",
			Help:      "Count of booking submissions by kind.",
		},
		[]string{"kind"},
	)

	adminDecision = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arena_booking",
			Name:      "admin_decision_total",
			Help:      "Count of admin decisions over bookings.",
		},
		[]string{"decision"},
	)

	bookingDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "arena_booking",
			Name:      "booking_deleted_total",
			Help:      "Count of soft-deleted bookings.",
		},
	)

	storeDemoted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "arena_booking",
			Name:      "store_demoted_total",
			Help:      "Count of demotions from the remote store to the local fallback.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingSubmitted, adminDecision, bookingDeleted, storeDemoted)
	})
}

func IncBookingSubmitted(kind string) {
	bookingSubmitted.WithLabelValues(kind).Inc()
}

func IncAdminDecision(decision string) {
	adminDecision.WithLabelValues(decision).Inc()
}

func IncBookingDeleted() {
	bookingDeleted.Inc()
}

func IncStoreDemoted() {
	storeDemoted.Inc()
}
