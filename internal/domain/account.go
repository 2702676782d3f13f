package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
)

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleTechnician, RoleAdmin:
		return true
	}
	return false
}

// Account is the domain model for customers, technicians and admins.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         Role
	Active       bool
	Deleted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// CanAct reports whether the account may perform state-changing
// operations. Inactive and soft-deleted accounts may not.
func (a *Account) CanAct() bool {
	return a != nil && a.Active && !a.Deleted
}

// IsAdmin reports whether the account holds the admin role.
func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// IsTechnician reports whether the account holds the technician role.
func (a *Account) IsTechnician() bool {
	return a != nil && a.Role == RoleTechnician
}

// IsCustomer reports whether the account holds the customer role.
func (a *Account) IsCustomer() bool {
	return a != nil && a.Role == RoleCustomer
}
