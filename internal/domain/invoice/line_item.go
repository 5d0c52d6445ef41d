package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"courtside/internal/domain/apperr"
)

// Line item types
const (
	ItemCoaching      = "coaching"
	ItemGroupCoaching = "group_coaching"
	ItemPrivateLesson = "private_lesson"
	ItemAdmin         = "admin"
	ItemTravel        = "travel"
	ItemOther         = "other"
	ItemDeduction     = "deduction"
)

// ValidItemTypes contains all valid line item types.
var ValidItemTypes = []string{ItemCoaching, ItemGroupCoaching, ItemPrivateLesson, ItemAdmin, ItemTravel, ItemOther, ItemDeduction}

// LineItem is one billable or deductible entry on an invoice.
// Items with hours or rate carry Amount = round2(Hours * Rate);
// flat items (zero hours and rate) carry an explicit Amount.
type LineItem struct {
	ID          string
	ItemType    string
	IsDeduction bool
	Description string
	Date        string // YYYY-MM-DD, optional
	Hours       decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// Round2 rounds a money value to the cent, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsFlat returns true if the item has neither hours nor rate.
func (li LineItem) IsFlat() bool {
	return li.Hours.IsZero() && li.Rate.IsZero()
}

// EffectiveAmount returns the amount used for totals.
// INVARIANT: LineItem fields are not mutated
func (li LineItem) EffectiveAmount() decimal.Decimal {
	if li.IsFlat() {
		return Round2(li.Amount)
	}
	return Round2(li.Hours.Mul(li.Rate))
}

// IsStale returns true if the stored amount disagrees with hours * rate.
func (li LineItem) IsStale() bool {
	return !li.Amount.Equal(li.EffectiveAmount())
}

// Validate checks if the LineItem has valid data.
// PRE: LineItem struct is populated
// POST: Returns nil if valid, a validation error otherwise
func (li LineItem) Validate() error {
	if !isValidItemType(li.ItemType) {
		return apperr.Validation("line item type %q is not recognised", li.ItemType)
	}
	if li.ItemType == ItemDeduction && !li.IsDeduction {
		return apperr.Validation("deduction items must be marked as deductions")
	}
	if li.Hours.IsNegative() {
		return apperr.Validation("hours cannot be negative")
	}
	if li.Rate.IsNegative() {
		return apperr.Validation("rate cannot be negative")
	}
	if li.Amount.IsNegative() {
		return apperr.Validation("amount cannot be negative")
	}
	if li.Date != "" {
		if _, err := time.Parse(dateFormat, li.Date); err != nil {
			return apperr.Validation("line item date %q must be YYYY-MM-DD", li.Date)
		}
	}
	if len(li.Description) > 500 {
		return apperr.Validation("description cannot exceed 500 characters")
	}
	return nil
}

// LineItemPatch is a partial update; nil fields are left unchanged.
type LineItemPatch struct {
	ItemType    *string
	IsDeduction *bool
	Description *string
	Date        *string
	Hours       *decimal.Decimal
	Rate        *decimal.Decimal
	Amount      *decimal.Decimal
}

// Apply returns a copy of li with the patch applied and the amount recomputed.
// A patch that sets Hours or Rate yields Amount = round2(Hours * Rate) and
// ignores any Amount in the same patch.
// INVARIANT: li is not mutated
func (p LineItemPatch) Apply(li LineItem) LineItem {
	if p.ItemType != nil {
		li.ItemType = strings.TrimSpace(*p.ItemType)
	}
	if p.IsDeduction != nil {
		li.IsDeduction = *p.IsDeduction
	}
	if p.Description != nil {
		li.Description = *p.Description
	}
	if p.Date != nil {
		li.Date = *p.Date
	}
	if p.Hours != nil {
		li.Hours = *p.Hours
	}
	if p.Rate != nil {
		li.Rate = *p.Rate
	}
	// Editing hours or rate always recomputes, even when both end up zero.
	if p.Hours != nil || p.Rate != nil {
		li.Amount = Round2(li.Hours.Mul(li.Rate))
		return li
	}
	if p.Amount != nil {
		li.Amount = *p.Amount
	}
	li.Amount = li.EffectiveAmount()
	return li
}

func isValidItemType(t string) bool {
	for _, v := range ValidItemTypes {
		if v == t {
			return true
		}
	}
	return false
}
