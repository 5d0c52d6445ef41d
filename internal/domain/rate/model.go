package rate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"courtside/internal/domain/apperr"
	"courtside/internal/domain/invoice"
)

// Domain errors
var (
	ErrEmptyCoachID  = fmt.Errorf("%w: coach ID cannot be empty", apperr.ErrValidation)
	ErrInvalidType   = fmt.Errorf("%w: rate item type is not recognised", apperr.ErrValidation)
	ErrDeductionType = fmt.Errorf("%w: deductions do not carry an hourly rate", apperr.ErrValidation)
	ErrNegativeRate  = fmt.Errorf("%w: hourly rate cannot be negative", apperr.ErrValidation)
)

// CoachRate is a coach's default hourly rate for one line item type.
// (CoachID, ItemType) is the natural key.
type CoachRate struct {
	CoachID    string
	ItemType   string
	HourlyRate decimal.Decimal
}

// Validate checks if the CoachRate has valid data.
// PRE: CoachRate struct is populated
// POST: Returns nil if valid, error otherwise
func (r *CoachRate) Validate() error {
	if strings.TrimSpace(r.CoachID) == "" {
		return ErrEmptyCoachID
	}
	if !isValidType(r.ItemType) {
		return ErrInvalidType
	}
	if r.ItemType == invoice.ItemDeduction {
		return ErrDeductionType
	}
	if r.HourlyRate.IsNegative() {
		return ErrNegativeRate
	}
	return nil
}

// Apply fills the item's rate from rates when the item bills hours without one.
// Deductions, flat items and items with an explicit rate are returned unchanged.
// INVARIANT: rates is not mutated
func Apply(item invoice.LineItem, rates []CoachRate) invoice.LineItem {
	if item.IsDeduction || !item.Rate.IsZero() || !item.Hours.IsPositive() {
		return item
	}
	for _, r := range rates {
		if r.ItemType == item.ItemType {
			item.Rate = r.HourlyRate
			return item
		}
	}
	return item
}

func isValidType(t string) bool {
	for _, v := range invoice.ValidItemTypes {
		if v == t {
			return true
		}
	}
	return false
}
