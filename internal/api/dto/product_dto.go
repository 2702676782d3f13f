package dto

import (
	"time"

	"github.com/spec-kit/warranty-service/internal/service"
)

// ProductRequest is the register/update payload for products. The
// purchase date uses RFC 3339.
type ProductRequest struct {
	Name           string    `json:"name"`
	Brand          string    `json:"brand"`
	Category       string    `json:"category"`
	SerialNumber   string    `json:"serial_number"`
	PurchaseDate   time.Time `json:"purchase_date"`
	WarrantyMonths int       `json:"warranty_months"`
	Description    string    `json:"description"`
}

// ProductSummary is the external product representation, including the
// derived coverage state.
type ProductSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Brand          string    `json:"brand,omitempty"`
	Category       string    `json:"category,omitempty"`
	SerialNumber   string    `json:"serial_number"`
	PurchaseDate   time.Time `json:"purchase_date"`
	WarrantyMonths int       `json:"warranty_months"`
	WarrantyExpiry time.Time `json:"warranty_expiry"`
	Coverage       string    `json:"coverage"`
	DaysRemaining  int       `json:"days_remaining"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewProductSummary maps a product view.
func NewProductSummary(view *service.ProductView) ProductSummary {
	p := view.Product
	return ProductSummary{
		ID:             p.ID,
		Name:           p.Name,
		Brand:          p.Brand,
		Category:       p.Category,
		SerialNumber:   p.SerialNumber,
		PurchaseDate:   p.PurchaseDate,
		WarrantyMonths: p.WarrantyMonths,
		WarrantyExpiry: p.WarrantyExpiry,
		Coverage:       string(view.Coverage),
		DaysRemaining:  view.DaysRemaining,
		Description:    p.Description,
		CreatedAt:      p.CreatedAt,
	}
}

// ProductDetail extends the summary with the product's ticket history.
type ProductDetail struct {
	ProductSummary
	Tickets []TicketSummary `json:"tickets"`
}

// NewProductDetail maps a product detail view.
func NewProductDetail(detail *service.ProductDetail) ProductDetail {
	tickets := make([]TicketSummary, 0, len(detail.Tickets))
	for i := range detail.Tickets {
		tickets = append(tickets, NewTicketSummary(&detail.Tickets[i]))
	}
	return ProductDetail{
		ProductSummary: NewProductSummary(&detail.ProductView),
		Tickets:        tickets,
	}
}
