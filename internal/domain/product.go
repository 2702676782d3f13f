package domain

import "time"

// Product is a registered item under warranty. WarrantyExpiry is fixed
// at registration from the purchase date and duration; coverage state
// is derived from it on every read.
type Product struct {
	ID             string
	OwnerID        string
	Name           string
	Brand          string
	Category       string
	SerialNumber   string
	PurchaseDate   time.Time
	WarrantyMonths int
	WarrantyExpiry time.Time
	Description    string
	Deleted        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CoverageState evaluates the product's warranty at now.
func (p *Product) CoverageState(now time.Time) CoverageState {
	return CoverageStateAt(p.WarrantyExpiry, now)
}

// WarrantyExpired reports whether the warranty has lapsed at now.
func (p *Product) WarrantyExpired(now time.Time) bool {
	return !now.Before(p.WarrantyExpiry)
}
