package events

import "time"

// EventType labels booking lifecycle events.
type EventType string

const (
	EventCustomerRegistered  EventType = "customer.registered"
	EventReservationCreated  EventType = "reservation.created"
	EventReservationRejected EventType = "reservation.rejected"
)

// Event is the envelope published on the dispatcher.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Payload   any
}

// CustomerRegisteredPayload carries onboarding results.
type CustomerRegisteredPayload struct {
	CustomerID   string
	UserID       string
	CustomerName string
}

// ReservationCreatedPayload carries a committed reservation.
type ReservationCreatedPayload struct {
	TransactionID string
	ReferenceCode string
	RoomNumber    string
	CustomerName  string
	CheckIn       time.Time
	CheckOut      time.Time
}

// ReservationRejectedPayload carries a commit-time availability conflict.
type ReservationRejectedPayload struct {
	RoomID     string
	RoomNumber string
	CheckIn    time.Time
	CheckOut   time.Time
}
