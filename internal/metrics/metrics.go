package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dodscars",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dodscars",
			Name:      "bookings_created_total",
			Help:      "Booking requests accepted into the pending queue.",
		},
	)

	bookingDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dodscars",
			Name:      "booking_decisions_total",
			Help:      "Approve/reject outcomes by decision and result.",
		},
		[]string{"decision", "result"},
	)

	availabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dodscars",
			Name:      "availability_checks_total",
			Help:      "Availability lookups by source (cache or store).",
		},
		[]string{"source"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingDecisions, availabilityChecks)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts an accepted booking request.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncBookingDecision counts an approve or reject attempt and its result
// ("ok", "conflict", "invalid_state", "error").
func IncBookingDecision(decision, result string) {
	bookingDecisions.WithLabelValues(decision, result).Inc()
}

// IncAvailabilityCheck counts an availability lookup by its answer source.
func IncAvailabilityCheck(source string) {
	availabilityChecks.WithLabelValues(source).Inc()
}
