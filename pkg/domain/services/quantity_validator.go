package services

import (
	"fmt"

	"github.com/embunadw/wms/pkg/domain/entities"
)

// Bound is an upper limit a candidate quantity must not exceed
type Bound struct {
	Name  string
	Limit entities.Quantity
}

// Bound sources used by the composers
const (
	BoundStock     = "stock"
	BoundRemaining = "remaining"
	BoundOrdered   = "ordered"
)

// StockBound is the on-hand quantity at a location
func StockBound(limit entities.Quantity) Bound {
	return Bound{Name: BoundStock, Limit: limit}
}

// RemainingBound is what is left of a source line
func RemainingBound(limit entities.Quantity) Bound {
	return Bound{Name: BoundRemaining, Limit: limit}
}

// ValidateQuantity checks that candidate is a positive integer and does not
// exceed any bound. When several bounds are given the tightest one is
// reported; on a tie the first given wins.
func ValidateQuantity(candidate entities.Quantity, bounds ...Bound) error {
	if candidate <= 0 {
		return entities.NewInvalidQuantityError(fmt.Sprintf("quantity must be greater than zero, got %d", candidate))
	}

	tightest, ok := Tightest(bounds...)
	if !ok {
		return nil
	}
	if candidate > tightest.Limit {
		return entities.NewQuantityExceedsLimitError(candidate, tightest.Limit, tightest.Name)
	}
	return nil
}

// Tightest returns the bound with the smallest limit
func Tightest(bounds ...Bound) (Bound, bool) {
	if len(bounds) == 0 {
		return Bound{}, false
	}
	tightest := bounds[0]
	for _, b := range bounds[1:] {
		if b.Limit < tightest.Limit {
			tightest = b
		}
	}
	if tightest.Limit < 0 {
		tightest.Limit = 0
	}
	return tightest, true
}
