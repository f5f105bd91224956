package listing

import (
	"strings"

	"github.com/agriport/farm2market/internal/fault"
)

// ValidateNew checks the fields of a listing about to be created or
// updated. Explicit validator, invoked before any write.
func ValidateNew(l *Listing) error {
	if strings.TrimSpace(l.ProductName) == "" {
		return fault.Validation("product name is required")
	}
	if len(l.ProductName) > 100 {
		return fault.Validation("product name must be at most 100 characters")
	}
	if len(l.Description) > 1000 {
		return fault.Validation("description must be at most 1000 characters")
	}
	if l.PriceCents <= 0 {
		return fault.Validation("price must be greater than 0")
	}
	if l.Quantity < 1 {
		return fault.Validation("quantity must be at least 1")
	}
	if !ValidUnits[l.Unit] {
		return fault.Validation("invalid unit %q", l.Unit)
	}
	return nil
}
