package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warranty-service/internal/api/dto"
	"github.com/spec-kit/warranty-service/internal/auth"
	"github.com/spec-kit/warranty-service/internal/domain"
	"github.com/spec-kit/warranty-service/internal/service"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

// StaffTicketsHandler manages technician ticket endpoints.
type StaffTicketsHandler struct {
	service *service.TicketService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(ticketService *service.TicketService) *StaffTicketsHandler {
	return &StaffTicketsHandler{service: ticketService}
}

// ListAssigned GET /staff/tickets.
func (h *StaffTicketsHandler) ListAssigned(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	tickets, err := h.service.ListForTechnician(c.UserContext(), account, parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /staff/tickets/:id.
func (h *StaffTicketsHandler) Get(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	detail, err := h.service.GetDetail(c.UserContext(), account, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(detail)})
}

// UpdateStatus PATCH /staff/tickets/:id/status.
func (h *StaffTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), account, c.Params("id"), service.TicketStatusInput{
		Status:     domain.TicketStatus(req.Status),
		RepairCost: req.RepairCost,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// AddNote POST /staff/tickets/:id/notes.
func (h *StaffTicketsHandler) AddNote(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	note, err := h.service.AddNote(c.UserContext(), account, c.Params("id"), req.Note)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.RepairNoteView{
		ID:        note.ID,
		AuthorID:  note.AuthorID,
		Note:      note.Text,
		CreatedAt: note.CreatedAt,
	}})
}
