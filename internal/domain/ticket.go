package domain

import "time"

// TicketStatus enumerates lifecycle states for repair tickets.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "open"
	TicketStatusInProgress      TicketStatus = "in_progress"
	TicketStatusWaitingForParts TicketStatus = "waiting_for_parts"
	TicketStatusCompleted       TicketStatus = "completed"
	TicketStatusClosed          TicketStatus = "closed"
	TicketStatusRejected        TicketStatus = "rejected"
)

// Terminal reports whether ordinary status edits are disallowed from
// this state. Closure of a completed paid repair happens through the
// payment path, never through a status edit.
func (s TicketStatus) Terminal() bool {
	switch s {
	case TicketStatusCompleted, TicketStatusClosed, TicketStatusRejected:
		return true
	}
	return false
}

// ValidTicketStatus reports whether the value is a known status.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingForParts,
		TicketStatusCompleted, TicketStatusClosed, TicketStatusRejected:
		return true
	}
	return false
}

// TicketPriority enumerates triage urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Rank orders priorities for triage; higher sorts first.
func (p TicketPriority) Rank() int {
	switch p {
	case TicketPriorityUrgent:
		return 4
	case TicketPriorityHigh:
		return 3
	case TicketPriorityMedium:
		return 2
	case TicketPriorityLow:
		return 1
	}
	return 0
}

// ValidTicketPriority reports whether the value is a known priority.
func ValidTicketPriority(p TicketPriority) bool {
	return p.Rank() > 0
}

// RepairType is the coverage choice a customer makes when raising a
// ticket.
type RepairType string

const (
	RepairTypeWarranty RepairType = "warranty"
	RepairTypePaid     RepairType = "paid"
)

// Ticket is the aggregate for repair requests. WarrantyCovered is a
// snapshot of the product's coverage at creation time and never changes
// afterwards, even if the warranty expires while the repair is open.
type Ticket struct {
	ID               string
	TicketNumber     string
	ProductID        string
	CustomerID       string
	TechnicianID     *string
	IssueDescription string
	RepairType       RepairType
	Status           TicketStatus
	Priority         TicketPriority
	RepairCost       *float64
	WarrantyCovered  bool
	Paid             bool
	Deleted          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AssignedTo reports whether the ticket is assigned to the account.
func (t *Ticket) AssignedTo(accountID string) bool {
	return t.TechnicianID != nil && *t.TechnicianID == accountID
}

// AwaitingPaymentOrFeedback reports whether the ticket has reached a
// state where payment and feedback may attach.
func (t *Ticket) AwaitingPaymentOrFeedback() bool {
	return t.Status == TicketStatusCompleted || t.Status == TicketStatusClosed
}
