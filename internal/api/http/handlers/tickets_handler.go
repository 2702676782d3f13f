package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warranty-service/internal/api/dto"
	"github.com/spec-kit/warranty-service/internal/auth"
	"github.com/spec-kit/warranty-service/internal/domain"
	"github.com/spec-kit/warranty-service/internal/service"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

// TicketsHandler manages customer ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Create(c.UserContext(), account, service.TicketCreateInput{
		ProductID:        req.ProductID,
		IssueDescription: req.IssueDescription,
		RepairType:       domain.RepairType(req.RepairType),
		Priority:         domain.TicketPriority(req.Priority),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	tickets, err := h.service.ListForCustomer(c.UserContext(), account, parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
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

// Pay POST /tickets/:id/pay.
func (h *TicketsHandler) Pay(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.PayRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Pay(c.UserContext(), account, c.Params("id"), req.Reference)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// AddFeedback POST /tickets/:id/feedback.
func (h *TicketsHandler) AddFeedback(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.AddFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	feedback, err := h.service.AddFeedback(c.UserContext(), account, c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FeedbackView{
		Rating:    feedback.Rating,
		Comment:   feedback.Comment,
		CreatedAt: feedback.CreatedAt,
	}})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListOptions {
	opts := service.TicketListOptions{}
	opts.Limit, opts.Offset = parsePagination(c)
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			opts.Statuses = append(opts.Statuses, domain.TicketStatus(strings.TrimSpace(s)))
		}
	}
	if raw := c.Query("priority"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			opts.Priorities = append(opts.Priorities, domain.TicketPriority(strings.TrimSpace(p)))
		}
	}
	return opts
}
