package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/warranty-service/internal/domain"
	"github.com/spec-kit/warranty-service/internal/repository"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

// ticketHistoryLimit caps the tickets shown on a product detail view.
const ticketHistoryLimit = 50

// ProductService manages warranty registrations. The warranty expiry is
// computed once here and stored; reads derive the coverage state from
// the stored expiry.
type ProductService struct {
	store             repository.Store
	logger            *zap.Logger
	purchaseTolerance time.Duration
}

func NewProductService(store repository.Store, logger *zap.Logger, purchaseTolerance time.Duration) *ProductService {
	return &ProductService{store: store, logger: logger, purchaseTolerance: purchaseTolerance}
}

type ProductInput struct {
	Name           string
	Brand          string
	Category       string
	SerialNumber   string
	PurchaseDate   time.Time
	WarrantyMonths int
	Description    string
}

// ProductView pairs a product with its coverage state at read time.
type ProductView struct {
	Product       *domain.Product
	Coverage      domain.CoverageState
	DaysRemaining int
}

// ProductDetail adds the ticket history raised against the product.
type ProductDetail struct {
	ProductView
	Tickets []domain.Ticket
}

// Register records a newly purchased product for the calling customer.
func (s *ProductService) Register(ctx context.Context, customer *domain.Account, input ProductInput) (*domain.Product, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if input.PurchaseDate.After(now.Add(s.purchaseTolerance)) {
		return nil, apperrors.NewValidationError("purchase date cannot be in the future", nil)
	}

	expiry, err := domain.ComputeExpiry(input.PurchaseDate, input.WarrantyMonths)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	product := &domain.Product{
		OwnerID:        customer.ID,
		Name:           input.Name,
		Brand:          input.Brand,
		Category:       input.Category,
		SerialNumber:   input.SerialNumber,
		PurchaseDate:   input.PurchaseDate,
		WarrantyMonths: input.WarrantyMonths,
		WarrantyExpiry: expiry,
		Description:    strings.TrimSpace(input.Description),
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperrors.NewAlreadyExists("serial number", nil)
		}
		return nil, apperrors.ToDomainError(err)
	}

	s.logger.Info("product registered",
		zap.String("product_id", product.ID),
		zap.String("serial_number", product.SerialNumber),
		zap.Time("warranty_expiry", product.WarrantyExpiry))
	return product, nil
}

// Update edits a product's descriptive fields and, when the purchase
// date or duration changes, recomputes the warranty expiry. Tickets
// already raised keep their coverage snapshot.
func (s *ProductService) Update(ctx context.Context, customer *domain.Account, productID string, input ProductInput) (*domain.Product, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if input.PurchaseDate.After(now.Add(s.purchaseTolerance)) {
		return nil, apperrors.NewValidationError("purchase date cannot be in the future", nil)
	}

	product, err := s.loadOwned(ctx, customer, productID)
	if err != nil {
		return nil, err
	}

	expiry, err := domain.ComputeExpiry(input.PurchaseDate, input.WarrantyMonths)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	product.Name = input.Name
	product.Brand = input.Brand
	product.Category = input.Category
	product.SerialNumber = input.SerialNumber
	product.PurchaseDate = input.PurchaseDate
	product.WarrantyMonths = input.WarrantyMonths
	product.WarrantyExpiry = expiry
	product.Description = strings.TrimSpace(input.Description)
	product.UpdatedAt = now

	if err := s.store.Products().Update(ctx, product); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperrors.NewAlreadyExists("serial number", nil)
		}
		return nil, apperrors.ToDomainError(err)
	}
	return product, nil
}

// SoftDelete hides a product from listings. Existing tickets keep
// their reference; new tickets can no longer target it.
func (s *ProductService) SoftDelete(ctx context.Context, customer *domain.Account, productID string) error {
	if err := requireCustomer(customer); err != nil {
		return err
	}
	product, err := s.loadOwned(ctx, customer, productID)
	if err != nil {
		return err
	}
	product.Deleted = true
	product.UpdatedAt = time.Now().UTC()
	if err := s.store.Products().Update(ctx, product); err != nil {
		return apperrors.ToDomainError(err)
	}
	return nil
}

// Get returns one product with coverage and its ticket history. Owners
// and admins only.
func (s *ProductService) Get(ctx context.Context, actor *domain.Account, productID string) (*ProductDetail, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", nil)
		}
		return nil, apperrors.ToDomainError(err)
	}
	if product.Deleted {
		return nil, apperrors.NewNotFound("product", nil)
	}
	if !actor.IsAdmin() && product.OwnerID != actor.ID {
		return nil, apperrors.NewForbidden("product does not belong to this account")
	}

	tickets, err := s.store.Tickets().ListWithFilter(ctx, repository.TicketFilter{
		ProductID: &product.ID,
		Limit:     ticketHistoryLimit,
	})
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return &ProductDetail{
		ProductView: *s.view(product, time.Now().UTC()),
		Tickets:     tickets,
	}, nil
}

// ListOwn returns the caller's products with coverage states.
func (s *ProductService) ListOwn(ctx context.Context, customer *domain.Account, limit, offset int) ([]ProductView, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	products, err := s.store.Products().ListByOwner(ctx, customer.ID, limit, offset)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	now := time.Now().UTC()
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, *s.view(&products[i], now))
	}
	return views, nil
}

func (s *ProductService) view(product *domain.Product, now time.Time) *ProductView {
	return &ProductView{
		Product:       product,
		Coverage:      product.CoverageState(now),
		DaysRemaining: domain.DaysRemaining(product.WarrantyExpiry, now),
	}
}

func (s *ProductService) loadOwned(ctx context.Context, customer *domain.Account, productID string) (*domain.Product, error) {
	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", nil)
		}
		return nil, apperrors.ToDomainError(err)
	}
	if product.Deleted {
		return nil, apperrors.NewNotFound("product", nil)
	}
	if product.OwnerID != customer.ID {
		return nil, apperrors.NewForbidden("product does not belong to this account")
	}
	return product, nil
}

func (s *ProductService) validate(input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.SerialNumber = strings.TrimSpace(input.SerialNumber)
	if input.Name == "" {
		return apperrors.NewValidationError("product name is required", nil)
	}
	if input.SerialNumber == "" {
		return apperrors.NewValidationError("serial number is required", nil)
	}
	if input.WarrantyMonths < domain.MinWarrantyMonths || input.WarrantyMonths > domain.MaxWarrantyMonths {
		return apperrors.NewValidationError(
			fmt.Sprintf("warranty months must be between %d and %d", domain.MinWarrantyMonths, domain.MaxWarrantyMonths), nil)
	}
	if input.PurchaseDate.IsZero() {
		return apperrors.NewValidationError("purchase date is required", nil)
	}
	return nil
}
