package domain

import "time"

// Audit action labels recorded by privileged operations.
const (
	ActionTicketAssigned      = "ticket_assigned"
	ActionTicketStatusUpdated = "ticket_status_updated"
	ActionPaymentProcessed    = "payment_processed"
	ActionUserRoleChanged     = "user_role_changed"
	ActionUserActivated       = "user_activated"
	ActionUserDeactivated     = "user_deactivated"
	ActionUserDeleted         = "user_deleted"
)

// ActivityLog is an immutable audit trail entry. Entries are append
// only and are never consulted for authorization decisions.
type ActivityLog struct {
	ID           string
	AccountID    string
	Action       string
	ResourceType string
	ResourceID   *string
	Description  string
	CreatedAt    time.Time
}
