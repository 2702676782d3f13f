package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warranty-service/internal/api/dto"
	"github.com/spec-kit/warranty-service/internal/auth"
	"github.com/spec-kit/warranty-service/internal/domain"
	"github.com/spec-kit/warranty-service/internal/service"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

// AdminHandler covers account administration, the global ticket view
// and the audit trail.
type AdminHandler struct {
	accounts *service.AccountService
	tickets  *service.TicketService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(accountService *service.AccountService, ticketService *service.TicketService) *AdminHandler {
	return &AdminHandler{accounts: accountService, tickets: ticketService}
}

// ListAccounts GET /admin/accounts.
func (h *AdminHandler) ListAccounts(c *fiber.Ctx) error {
	admin, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	opts := service.AccountListOptions{Role: domain.Role(c.Query("role"))}
	opts.Limit, opts.Offset = parsePagination(c)
	if raw := c.Query("active"); raw != "" {
		active := strings.EqualFold(raw, "true")
		opts.Active = &active
	}
	accounts, err := h.accounts.List(c.UserContext(), admin, opts)
	if err != nil {
		return err
	}
	items := make([]dto.AccountSummary, 0, len(accounts))
	for i := range accounts {
		items = append(items, dto.NewAccountSummary(&accounts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListTechnicians GET /admin/technicians.
func (h *AdminHandler) ListTechnicians(c *fiber.Ctx) error {
	admin, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	technicians, err := h.accounts.ListTechnicians(c.UserContext(), admin)
	if err != nil {
		return err
	}
	items := make([]dto.AccountSummary, 0, len(technicians))
	for i := range technicians {
		items = append(items, dto.NewAccountSummary(&technicians[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetAccount GET /admin/accounts/:id.
func (h *AdminHandler) GetAccount(c *fiber.Ctx) error {
	admin, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	account, err := h.accounts.Get(c.UserContext(), admin, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountSummary(account)})
}

// ChangeRole PATCH /admin/accounts/:id/role.
func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	admin, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.accounts.ChangeRole(c.UserContext(), admin, c.Params("id"), domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountSummary(account)})
}

// Activate POST /admin/accounts/:id/activate.
func (h *AdminHandler) Activate(c *fiber.Ctx) error {
	admin, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	account, err := h.accounts.Activate(c.UserContext(), admin, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountSummary(account)})
}

// Deactivate POST /admin/accounts/:id/deactivate.
func (h *AdminHandler) Deactivate(c *fiber.Ctx) error {
	admin, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	account, err := h.accounts.Deactivate(c.UserContext(), admin, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountSummary(account)})
}

// DeleteAccount DELETE /admin/accounts/:id.
func (h *AdminHandler) DeleteAccount(c *fiber.Ctx) error {
	admin, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	if err := h.accounts.SoftDelete(c.UserContext(), admin, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListTickets GET /admin/tickets.
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	admin, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	opts := parseTicketQuery(c)
	opts.CustomerID = c.Query("customer_id")
	opts.TechnicianID = c.Query("technician_id")
	tickets, err := h.tickets.ListAll(c.UserContext(), admin, opts)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AssignTicket POST /admin/tickets/:id/assign.
func (h *AdminHandler) AssignTicket(c *fiber.Ctx) error {
	admin, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == "" {
		return apperrors.NewValidationError("technician_id required", nil)
	}
	ticket, err := h.tickets.AssignTechnician(c.UserContext(), admin, c.Params("id"), req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// ListActivity GET /admin/activity.
func (h *AdminHandler) ListActivity(c *fiber.Ctx) error {
	admin, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	opts := service.ActivityListOptions{
		AccountID: c.Query("account_id"),
		Action:    c.Query("action"),
	}
	opts.Limit, opts.Offset = parsePagination(c)
	entries, err := h.accounts.ListActivity(c.UserContext(), admin, opts)
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(entries))
	for _, entry := range entries {
		item := fiber.Map{
			"id":            entry.ID,
			"account_id":    entry.AccountID,
			"action":        entry.Action,
			"resource_type": entry.ResourceType,
			"description":   entry.Description,
			"created_at":    entry.CreatedAt.Format(time.RFC3339),
		}
		if entry.ResourceID != nil {
			item["resource_id"] = *entry.ResourceID
		}
		items = append(items, item)
	}
	return c.JSON(fiber.Map{"data": items})
}
