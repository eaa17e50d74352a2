// Package observability holds the service's Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the state-machine events worth watching in production:
// claim races, duplicate webhook deliveries, sweeper and reconciliation
// activity, dropped notifications.
type Metrics struct {
	Registry *prometheus.Registry

	ReservationsWon      prometheus.Counter
	ReservationsLost     prometheus.Counter
	Confirmations        prometheus.Counter
	DuplicateDeliveries  prometheus.Counter
	InvalidSignatures    prometheus.Counter
	SweepSlotsReleased   prometheus.Counter
	SweepBookingsExpired prometheus.Counter
	ReconcileFixed       prometheus.Counter
	NotifyFailures       prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		ReservationsWon: factory.NewCounter(prometheus.CounterOpts{
			Name: "elitemeet_reservations_won_total",
			Help: "Slot claims that won the race and opened an order.",
		}),
		ReservationsLost: factory.NewCounter(prometheus.CounterOpts{
			Name: "elitemeet_reservations_lost_total",
			Help: "Reservation attempts rejected because the slot was taken.",
		}),
		Confirmations: factory.NewCounter(prometheus.CounterOpts{
			Name: "elitemeet_confirmations_total",
			Help: "Bookings transitioned to confirmed.",
		}),
		DuplicateDeliveries: factory.NewCounter(prometheus.CounterOpts{
			Name: "elitemeet_duplicate_deliveries_total",
			Help: "Webhook or verify calls for an already-confirmed booking.",
		}),
		InvalidSignatures: factory.NewCounter(prometheus.CounterOpts{
			Name: "elitemeet_invalid_signatures_total",
			Help: "Rejected webhook or checkout signatures.",
		}),
		SweepSlotsReleased: factory.NewCounter(prometheus.CounterOpts{
			Name: "elitemeet_sweep_slots_released_total",
			Help: "Slots freed by the expiry sweeper.",
		}),
		SweepBookingsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "elitemeet_sweep_bookings_expired_total",
			Help: "Pending bookings expired by the sweeper.",
		}),
		ReconcileFixed: factory.NewCounter(prometheus.CounterOpts{
			Name: "elitemeet_reconcile_fixed_total",
			Help: "Slots repaired by the reconciliation pass.",
		}),
		NotifyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "elitemeet_notify_failures_total",
			Help: "Notification deliveries that failed or were dropped.",
		}),
	}
}
