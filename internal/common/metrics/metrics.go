package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's counters. A single instance is created at
// startup and handed to the services that record events.
type Metrics struct {
	BookingsCreated     prometheus.Counter
	StatusTransitions   *prometheus.CounterVec
	BillsCreated        prometheus.Counter
	PaymentsVerified    prometheus.Counter
	SignatureMismatches prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fixroute_bookings_created_total",
			Help: "Bookings created.",
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fixroute_status_transitions_total",
			Help: "Booking status transitions by target status and outcome.",
		}, []string{"to", "outcome"}),
		BillsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fixroute_bills_created_total",
			Help: "Bills created.",
		}),
		PaymentsVerified: factory.NewCounter(prometheus.CounterOpts{
			Name: "fixroute_payments_verified_total",
			Help: "Successful payment verifications.",
		}),
		SignatureMismatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "fixroute_signature_mismatches_total",
			Help: "Payment verifications rejected for a bad signature.",
		}),
	}
}

// NewNop returns metrics bound to a throwaway registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
