package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtside",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	reservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "courtside",
			Name:      "reservations_created_total",
			Help:      "Reservations successfully confirmed.",
		},
	)

	reservationsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtside",
			Name:      "reservations_rejected_total",
			Help:      "Booking attempts rejected, by reason.",
		},
		[]string{"reason"},
	)

	reservationsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "courtside",
			Name:      "reservations_cancelled_total",
			Help:      "Reservations cancelled by their owner.",
		},
	)

	waitlistPromotions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "courtside",
			Name:      "waitlist_promotions_total",
			Help:      "Waitlist entries notified after a slot freed up.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			reservationsCreated,
			reservationsRejected,
			reservationsCancelled,
			waitlistPromotions,
		)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

func IncReservationCreated() {
	reservationsCreated.Inc()
}

// IncReservationRejected records a failed booking attempt. The reason label
// is a short token such as "slot_taken" or "coach_unavailable".
func IncReservationRejected(reason string) {
	reservationsRejected.WithLabelValues(reason).Inc()
}

func IncReservationCancelled() {
	reservationsCancelled.Inc()
}

func IncWaitlistPromotion() {
	waitlistPromotions.Inc()
}
