package dto

import (
	"time"

	"github.com/spec-kit/warranty-service/internal/domain"
	"github.com/spec-kit/warranty-service/internal/service"
)

// CreateTicketRequest is the payload for raising a ticket.
type CreateTicketRequest struct {
	ProductID        string `json:"product_id"`
	IssueDescription string `json:"issue_description"`
	RepairType       string `json:"repair_type"`
	Priority         string `json:"priority"`
}

// AssignTicketRequest is the admin assignment payload.
type AssignTicketRequest struct {
	TechnicianID string `json:"technician_id"`
}

// UpdateStatusRequest is the technician status-change payload.
type UpdateStatusRequest struct {
	Status     string   `json:"status"`
	RepairCost *float64 `json:"repair_cost,omitempty"`
}

// PayRequest is the payment payload.
type PayRequest struct {
	Reference string `json:"reference"`
}

// AddNoteRequest is the repair note payload.
type AddNoteRequest struct {
	Note string `json:"note"`
}

// AddFeedbackRequest is the customer feedback payload.
type AddFeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// TicketSummary is the list representation of a ticket.
type TicketSummary struct {
	ID              string    `json:"id"`
	TicketNumber    string    `json:"ticket_number"`
	ProductID       string    `json:"product_id"`
	CustomerID      string    `json:"customer_id"`
	TechnicianID    *string   `json:"technician_id,omitempty"`
	RepairType      string    `json:"repair_type"`
	Status          string    `json:"status"`
	Priority        string    `json:"priority"`
	RepairCost      *float64  `json:"repair_cost,omitempty"`
	WarrantyCovered bool      `json:"warranty_covered"`
	Paid            bool      `json:"paid"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RepairNoteView is the external note representation.
type RepairNoteView struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackView is the external feedback representation.
type FeedbackView struct {
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketDetail is the full representation with issue text, notes and
// feedback.
type TicketDetail struct {
	TicketSummary
	IssueDescription string           `json:"issue_description"`
	Notes            []RepairNoteView `json:"notes"`
	Feedback         *FeedbackView    `json:"feedback,omitempty"`
}

// NewTicketSummary maps a domain ticket.
func NewTicketSummary(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:              ticket.ID,
		TicketNumber:    ticket.TicketNumber,
		ProductID:       ticket.ProductID,
		CustomerID:      ticket.CustomerID,
		TechnicianID:    ticket.TechnicianID,
		RepairType:      string(ticket.RepairType),
		Status:          string(ticket.Status),
		Priority:        string(ticket.Priority),
		RepairCost:      ticket.RepairCost,
		WarrantyCovered: ticket.WarrantyCovered,
		Paid:            ticket.Paid,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

// NewTicketDetail maps a service detail aggregate.
func NewTicketDetail(detail *service.TicketDetail) TicketDetail {
	out := TicketDetail{
		TicketSummary:    NewTicketSummary(detail.Ticket),
		IssueDescription: detail.Ticket.IssueDescription,
		Notes:            make([]RepairNoteView, 0, len(detail.Notes)),
	}
	for _, note := range detail.Notes {
		out.Notes = append(out.Notes, RepairNoteView{
			ID:        note.ID,
			AuthorID:  note.AuthorID,
			Note:      note.Text,
			CreatedAt: note.CreatedAt,
		})
	}
	if detail.Feedback != nil {
		out.Feedback = &FeedbackView{
			Rating:    detail.Feedback.Rating,
			Comment:   detail.Feedback.Comment,
			CreatedAt: detail.Feedback.CreatedAt,
		}
	}
	return out
}
