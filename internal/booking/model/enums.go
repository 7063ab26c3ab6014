package model

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusAccepted  BookingStatus = "accepted"
	StatusRejected  BookingStatus = "rejected"
	StatusCompleted BookingStatus = "completed"
	StatusClosed    BookingStatus = "closed"
	StatusFailed    BookingStatus = "failed"
	StatusCancelled BookingStatus = "cancelled"
)

// transitions is the legal status graph. failed and cancelled are
// administrative sinks reachable from the two live states.
var transitions = map[BookingStatus]map[BookingStatus]bool{
	StatusPending: {
		StatusAccepted:  true,
		StatusRejected:  true,
		StatusFailed:    true,
		StatusCancelled: true,
	},
	StatusAccepted: {
		StatusCompleted: true,
		StatusFailed:    true,
		StatusCancelled: true,
	},
	StatusCompleted: {
		StatusClosed: true,
	},
}

// CanTransition reports whether from→to is in the status graph.
func CanTransition(from, to BookingStatus) bool {
	return transitions[from][to]
}

type BookingEventType string

const (
	EventBookingCreated  BookingEventType = "booking.created"
	EventBookingAccepted BookingEventType = "booking.accepted"
	EventBookingRejected BookingEventType = "booking.rejected"
	EventBillSent        BookingEventType = "bill.sent"
	EventBookingClosed   BookingEventType = "booking.closed"
)
