package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warranty-service/internal/api/dto"
	"github.com/spec-kit/warranty-service/internal/auth"
	"github.com/spec-kit/warranty-service/internal/domain"
	"github.com/spec-kit/warranty-service/internal/service"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

// AuthHandler covers registration and login.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.service.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewAccountSummary(account)})
}

// RegisterStaff POST /admin/accounts. Admin only.
func (h *AuthHandler) RegisterStaff(c *fiber.Ctx) error {
	admin, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.service.RegisterStaff(c.UserContext(), admin, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	}, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewAccountSummary(account)})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Account:   dto.NewAccountSummary(result.Account),
	}})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountSummary(account)})
}

// UpdateProfile PUT /auth/me.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.service.UpdateProfile(c.UserContext(), account, req.Name, req.Phone)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountSummary(updated)})
}

// ChangePassword PUT /auth/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.ChangePassword(c.UserContext(), account, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
