package model

import (
	"time"

	"github.com/shaikfardeenhussain/fixroute/internal/identity"
)

// Booking tracks a service request from creation to closure.
//
// ServicemanLat/Lng hold the worker's declared position snapshotted at
// acceptance; LiveLat/Lng are only meaningful while the booking is
// accepted and are overwritten by every live push.
type Booking struct {
	ID            string        `json:"id" db:"id"`
	UserID        string        `json:"user_id" db:"user_id"`
	ServicemanID  string        `json:"serviceman_id" db:"serviceman_id"`
	ServiceType   string        `json:"service_type" db:"service_type"`
	Lat           float64       `json:"lat" db:"lat"`
	Lng           float64       `json:"lng" db:"lng"`
	ETAPredicted  *float64      `json:"eta_predicted,omitempty" db:"eta_predicted"`
	FuelType      *string       `json:"fuel_type,omitempty" db:"fuel_type"`
	FuelLiters    *float64      `json:"fuel_liters,omitempty" db:"fuel_liters"`
	Status        BookingStatus `json:"status" db:"status"`
	ServicemanLat *float64      `json:"serviceman_lat,omitempty" db:"serviceman_lat"`
	ServicemanLng *float64      `json:"serviceman_lng,omitempty" db:"serviceman_lng"`
	LiveLat       *float64      `json:"live_lat,omitempty" db:"live_lat"`
	LiveLng       *float64      `json:"live_lng,omitempty" db:"live_lng"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// BookingWithCounterparty is a booking merged with a best-effort summary of
// the other party. Counterparty is null when the identity lookup failed or
// found nothing; that never fails the operation that produced it.
type BookingWithCounterparty struct {
	Booking
	Counterparty *identity.Account `json:"counterparty"`
}
