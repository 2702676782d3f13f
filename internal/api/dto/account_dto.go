package dto

import (
	"time"

	"github.com/spec-kit/warranty-service/internal/domain"
)

// RegisterRequest is the signup payload. Role is optional and defaults
// to customer.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Account   AccountSummary `json:"account"`
}

// UpdateProfileRequest carries self-service profile edits.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ChangePasswordRequest carries a self-service password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangeRoleRequest is the admin role-change payload.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// AccountSummary is the external account representation.
type AccountSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// NewAccountSummary maps a domain account.
func NewAccountSummary(account *domain.Account) AccountSummary {
	return AccountSummary{
		ID:          account.ID,
		Name:        account.Name,
		Email:       account.Email,
		Phone:       account.Phone,
		Role:        string(account.Role),
		Active:      account.Active,
		CreatedAt:   account.CreatedAt,
		LastLoginAt: account.LastLoginAt,
	}
}
