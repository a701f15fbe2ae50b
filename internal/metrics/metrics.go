package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ReservationsTotal counts reservation attempts by outcome.
	ReservationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evreserve_reservations_total",
			Help: "Total reservation attempts by result.",
		},
		[]string{"result"}, // reserved, invalid_window, not_found, conflict, error
	)

	// TransitionsTotal counts lifecycle transition attempts by event and outcome.
	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evreserve_session_transitions_total",
			Help: "Total session lifecycle transition attempts by event and result.",
		},
		[]string{"event", "result"},
	)

	// NotificationFailures counts swallowed notification hook errors.
	NotificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evreserve_notification_failures_total",
			Help: "Total notification hook invocations that failed and were dropped.",
		},
	)

	// ExpiredReservations counts reservations swept by the reaper.
	ExpiredReservations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evreserve_expired_reservations_total",
			Help: "Total reserved sessions expired by the background sweeper.",
		},
	)
)

func init() {
	prometheus.MustRegister(ReservationsTotal, TransitionsTotal, NotificationFailures, ExpiredReservations)
}
