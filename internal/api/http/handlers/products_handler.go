package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warranty-service/internal/api/dto"
	"github.com/spec-kit/warranty-service/internal/auth"
	"github.com/spec-kit/warranty-service/internal/service"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

// ProductsHandler manages customer product endpoints.
type ProductsHandler struct {
	service *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(productService *service.ProductService) *ProductsHandler {
	return &ProductsHandler{service: productService}
}

// Register POST /products.
func (h *ProductsHandler) Register(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	product, err := h.service.Register(c.UserContext(), account, productInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":              product.ID,
		"warranty_expiry": product.WarrantyExpiry,
	}})
}

// List GET /products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	limit, offset := parsePagination(c)
	views, err := h.service.ListOwn(c.UserContext(), account, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ProductSummary, 0, len(views))
	for i := range views {
		items = append(items, dto.NewProductSummary(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	detail, err := h.service.Get(c.UserContext(), account, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductDetail(detail)})
}

// Update PUT /products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	product, err := h.service.Update(c.UserContext(), account, c.Params("id"), productInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"id":              product.ID,
		"warranty_expiry": product.WarrantyExpiry,
	}})
}

// Delete DELETE /products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("account required")
	}
	if err := h.service.SoftDelete(c.UserContext(), account, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func productInput(req dto.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:           req.Name,
		Brand:          req.Brand,
		Category:       req.Category,
		SerialNumber:   req.SerialNumber,
		PurchaseDate:   req.PurchaseDate,
		WarrantyMonths: req.WarrantyMonths,
		Description:    req.Description,
	}
}

func parsePagination(c *fiber.Ctx) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	return limit, offset
}
