package domain

import "time"

// Customer is the guest profile created during onboarding. It owns exactly
// one User and is immutable within the reservation workflow.
type Customer struct {
	ID        string
	Name      string
	Address   string
	Job       string
	Birthdate time.Time
	Gender    string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
