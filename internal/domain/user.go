package domain

import "time"

// UserRole distinguishes guests from hotel staff. Staff roles may use the
// reservation workflow; customers only ever own a profile.
type UserRole string

const (
	RoleCustomer     UserRole = "Customer"
	RoleReceptionist UserRole = "Receptionist"
	RoleAdmin        UserRole = "Admin"
)

// IsStaff reports whether the role may operate the reservation desk.
func (r UserRole) IsStaff() bool {
	return r == RoleReceptionist || r == RoleAdmin
}

// User is the account record behind both staff and customers.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Avatar       *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
