package domain

import "time"

// TransactionStatus enumerates booking lifecycle states. Only Reservation is
// produced by this workflow; later states belong to check-in/check-out flows.
type TransactionStatus string

const (
	StatusReservation TransactionStatus = "Reservation"
)

// Transaction records a booked stay: which staff member reserved which room
// for which customer over which dates.
type Transaction struct {
	ID            string
	ReferenceCode string
	UserID        string
	CustomerID    string
	RoomID        string
	CheckIn       time.Time
	CheckOut      time.Time
	Status        TransactionStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OccupiesStay reports whether this transaction makes its room occupied for
// the requested stay. All comparisons are inclusive; touching boundaries
// count as overlap. The predicate is the three-clause check the system has
// always used, and repository SQL must stay its exact twin:
//
//  1. the existing stay fully contains the requested one, or
//  2. the existing check-in falls inside the requested stay, or
//  3. the existing check-out falls inside the requested stay.
//
// The check-out day still counts as occupied, so back-to-back stays that
// share a boundary date conflict. Downstream behavior depends on that, so
// the clauses are kept verbatim; see DESIGN.md before changing them.
func (t *Transaction) OccupiesStay(stayFrom, stayUntil time.Time) bool {
	switch {
	case !t.CheckIn.After(stayFrom) && !t.CheckOut.Before(stayUntil):
		return true
	case !t.CheckIn.Before(stayFrom) && !t.CheckIn.After(stayUntil):
		return true
	case !t.CheckOut.Before(stayFrom) && !t.CheckOut.After(stayUntil):
		return true
	}
	return false
}
