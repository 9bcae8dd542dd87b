package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	bookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total bookings created, by event",
		},
		[]string{"event_id"},
	)

	bookingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_rejected_total",
			Help: "Total rejected booking attempts, by reason",
		},
		[]string{"reason"},
	)

	bookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Total booking status transitions",
		},
		[]string{"transition"},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Total completed check-ins, by event",
		},
		[]string{"event_id"},
	)

	transfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfers_total",
			Help: "Total transfer operations, by outcome",
		},
		[]string{"outcome"},
	)
)

func BookingCreated(eventID string) {
	bookingsCreated.WithLabelValues(eventID).Inc()
}

// BookingRejected records a failed booking attempt. Reason is a small fixed
// vocabulary (sold_out, insufficient, sales_closed, max_per_order, discount,
// validation), never raw user input.
func BookingRejected(reason string) {
	bookingsRejected.WithLabelValues(reason).Inc()
}

func BookingTransition(transition string) {
	bookingTransitions.WithLabelValues(transition).Inc()
}

func CheckInCompleted(eventID string) {
	checkIns.WithLabelValues(eventID).Inc()
}

func TransferOutcome(outcome string) {
	transfers.WithLabelValues(outcome).Inc()
}

// Handler exposes the Prometheus scrape endpoint as a gin handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
