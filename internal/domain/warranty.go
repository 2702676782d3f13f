package domain

import (
	"fmt"
	"time"
)

// CoverageState is the derived warranty status of a product at a given
// instant. It is always recomputed on read; the only place a coverage
// fact is stored is the WarrantyCovered snapshot on a Ticket.
type CoverageState string

const (
	CoverageActive       CoverageState = "active"
	CoverageExpiringSoon CoverageState = "expiring_soon"
	CoverageExpired      CoverageState = "expired"
)

const (
	// MinWarrantyMonths and MaxWarrantyMonths bound accepted warranty
	// durations.
	MinWarrantyMonths = 1
	MaxWarrantyMonths = 120

	// warrantyMonth is the fixed 30-day month approximation used for
	// expiry math. Not calendar months.
	warrantyMonth = 30 * 24 * time.Hour

	// ExpiringSoonWindow is how close to expiry a warranty must be to
	// count as expiring_soon.
	ExpiringSoonWindow = 30 * 24 * time.Hour
)

// ComputeExpiry returns purchaseDate + 30×months days. Months outside
// [1,120] are rejected.
func ComputeExpiry(purchaseDate time.Time, warrantyMonths int) (time.Time, error) {
	if warrantyMonths < MinWarrantyMonths || warrantyMonths > MaxWarrantyMonths {
		return time.Time{}, fmt.Errorf("warranty months must be between %d and %d, got %d",
			MinWarrantyMonths, MaxWarrantyMonths, warrantyMonths)
	}
	return purchaseDate.Add(time.Duration(warrantyMonths) * warrantyMonth), nil
}

// CoverageStateAt derives the coverage state of a warranty expiring at
// expiry, evaluated at now. Expired wins at the exact expiry instant.
func CoverageStateAt(expiry, now time.Time) CoverageState {
	if !now.Before(expiry) {
		return CoverageExpired
	}
	if expiry.Sub(now) < ExpiringSoonWindow {
		return CoverageExpiringSoon
	}
	return CoverageActive
}

// DaysRemaining returns whole days of coverage left, zero once expired.
func DaysRemaining(expiry, now time.Time) int {
	if !now.Before(expiry) {
		return 0
	}
	return int(expiry.Sub(now).Hours() / 24)
}
