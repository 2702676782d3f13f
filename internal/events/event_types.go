package events

import (
	"time"

	"github.com/spec-kit/warranty-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventPaymentProcessed    EventType = "payment_processed"
	EventFeedbackAdded       EventType = "feedback_added"
	EventWarrantyExpiring    EventType = "warranty_expiring"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID        string                `json:"ticket_id"`
	TicketNumber    string                `json:"ticket_number"`
	ProductID       string                `json:"product_id"`
	Priority        domain.TicketPriority `json:"priority"`
	WarrantyCovered bool                  `json:"warranty_covered"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TicketID     string `json:"ticket_id"`
	TechnicianID string `json:"technician_id"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketID  string              `json:"ticket_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// PaymentProcessedPayload payload.
type PaymentProcessedPayload struct {
	TicketID  string   `json:"ticket_id"`
	Amount    *float64 `json:"amount,omitempty"`
	Reference string   `json:"reference"`
}

// FeedbackAddedPayload payload.
type FeedbackAddedPayload struct {
	TicketID string `json:"ticket_id"`
	Rating   int    `json:"rating"`
}

// WarrantyExpiringPayload payload.
type WarrantyExpiringPayload struct {
	ProductID string    `json:"product_id"`
	OwnerID   string    `json:"owner_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Threshold string    `json:"threshold"`
}
