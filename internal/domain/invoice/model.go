package invoice

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
)

// Status is the invoice workflow state.
type Status string

// Invoice statuses
const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPaid      Status = "paid"
)

// ValidStatuses contains all valid invoice statuses in workflow order.
var ValidStatuses = []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusPaid}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

const dateFormat = "2006-01-02"

// ErrStaleVersion is returned by stores when an invoice changed after it was read.
var ErrStaleVersion = errors.New("invoice was modified by another request")

// Invoice is one coach's bill for one calendar month.
// (CoachID, Month, Year) is the natural key.
type Invoice struct {
	ID              string
	CoachID         string
	Month           int
	Year            int
	Status          Status
	LineItems       []LineItem
	Notes           string // Markdown
	Subtotal        decimal.Decimal
	Deductions      decimal.Decimal
	Total           decimal.Decimal
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	SubmittedAt     time.Time
	ApprovedAt      time.Time
	RejectedAt      time.Time
	PaidAt          time.Time
	Version         int
}

// New returns an empty draft invoice for the given coach and month.
// PRE: id is non-empty
// POST: Status is draft, no line items, all totals zero
func New(id, coachID string, month, year int, now time.Time) (Invoice, error) {
	inv := Invoice{
		ID:         id,
		CoachID:    coachID,
		Month:      month,
		Year:       year,
		Status:     StatusDraft,
		LineItems:  []LineItem{},
		Subtotal:   decimal.Zero,
		Deductions: decimal.Zero,
		Total:      decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := inv.Validate(); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

// Validate checks the invoice header and every line item.
// PRE: Invoice struct is populated
// POST: Returns nil if valid, a validation error otherwise
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.CoachID) == "" {
		return apperr.Validation("coach ID is required")
	}
	if inv.Month < 1 || inv.Month > 12 {
		return apperr.Validation("month must be between 1 and 12, got %d", inv.Month)
	}
	if inv.Year < 2000 || inv.Year > 9999 {
		return apperr.Validation("year %d is out of range", inv.Year)
	}
	if !inv.Status.Valid() {
		return apperr.Validation("unknown invoice status %q", inv.Status)
	}
	for i, li := range inv.LineItems {
		if err := li.Validate(); err != nil {
			return apperr.Validation("line item %d: %v", i, err)
		}
	}
	return nil
}

// Period returns the first day of the invoiced month, in UTC.
func (inv *Invoice) Period() time.Time {
	return time.Date(inv.Year, time.Month(inv.Month), 1, 0, 0, 0, 0, time.UTC)
}

// --- Totals ---

// Totals are the derived financial figures of an invoice.
type Totals struct {
	Subtotal   decimal.Decimal
	Deductions decimal.Decimal
	Total      decimal.Decimal
}

// RecomputeTotals derives subtotal, deductions and total from line items.
// Stale amounts are replaced by round2(hours * rate) before summing.
// INVARIANT: items is not mutated
func RecomputeTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	deductions := decimal.Zero
	for _, li := range items {
		amount := li.EffectiveAmount()
		if li.IsDeduction {
			deductions = deductions.Add(amount)
		} else {
			subtotal = subtotal.Add(amount)
		}
	}
	return Totals{
		Subtotal:   subtotal,
		Deductions: deductions,
		Total:      subtotal.Sub(deductions),
	}
}

// Recompute refreshes stale item amounts and the invoice totals in place.
// POST: Subtotal, Deductions and Total match RecomputeTotals(LineItems)
func (inv *Invoice) Recompute() {
	for i := range inv.LineItems {
		inv.LineItems[i].Amount = inv.LineItems[i].EffectiveAmount()
	}
	t := RecomputeTotals(inv.LineItems)
	inv.Subtotal = t.Subtotal
	inv.Deductions = t.Deductions
	inv.Total = t.Total
}

// --- Permissions ---

// CanEdit returns true if role may change notes or line items.
// Admins may edit anything that is not paid; everyone else only draft or rejected invoices.
// Ownership is checked by the caller.
func (inv *Invoice) CanEdit(role account.Role) bool {
	if role.IsAdmin() && inv.Status != StatusPaid {
		return true
	}
	return role.Valid() && (inv.Status == StatusDraft || inv.Status == StatusRejected)
}

// CanDelete returns true if role may delete the invoice.
// Ownership is checked by the caller.
func (inv *Invoice) CanDelete(role account.Role) bool {
	switch inv.Status {
	case StatusDraft:
		return role.Valid()
	case StatusSubmitted, StatusApproved, StatusRejected:
		return role.IsAdmin()
	case StatusPaid:
		return role.IsSuperAdmin()
	}
	return false
}

// CheckDelete returns ErrForbidden when role may not delete the invoice.
func (inv *Invoice) CheckDelete(role account.Role) error {
	if !inv.CanDelete(role) {
		return apperr.Forbidden("%s cannot delete a %s invoice", roleName(role), inv.Status)
	}
	return nil
}

func (inv *Invoice) checkEdit(role account.Role) error {
	if !inv.CanEdit(role) {
		return apperr.Forbidden("%s cannot edit a %s invoice", roleName(role), inv.Status)
	}
	return nil
}

func roleName(role account.Role) string {
	if role == "" {
		return "unknown role"
	}
	return string(role)
}

// --- Line item mutations ---
// Each mutation validates against a copy and swaps it in only on success.

// AddLineItem appends an item and recomputes totals.
// PRE: CanEdit(role)
// POST: item appended with its amount recomputed; totals refreshed
func (inv *Invoice) AddLineItem(role account.Role, item LineItem, now time.Time) error {
	if err := inv.checkEdit(role); err != nil {
		return err
	}
	item.Amount = item.EffectiveAmount()
	if err := item.Validate(); err != nil {
		return err
	}
	items := make([]LineItem, 0, len(inv.LineItems)+1)
	items = append(items, inv.LineItems...)
	items = append(items, item)
	inv.commitItems(items, now)
	return nil
}

// UpdateLineItem applies patch to the item at index and recomputes totals.
// Changing hours or rate recomputes that item's amount.
// PRE: CanEdit(role), 0 <= index < len(LineItems)
func (inv *Invoice) UpdateLineItem(role account.Role, index int, patch LineItemPatch, now time.Time) error {
	if err := inv.checkEdit(role); err != nil {
		return err
	}
	if index < 0 || index >= len(inv.LineItems) {
		return apperr.Validation("line item index %d out of range", index)
	}
	updated := patch.Apply(inv.LineItems[index])
	if err := updated.Validate(); err != nil {
		return err
	}
	items := make([]LineItem, len(inv.LineItems))
	copy(items, inv.LineItems)
	items[index] = updated
	inv.commitItems(items, now)
	return nil
}

// RemoveLineItem deletes the item at index and recomputes totals.
// PRE: CanEdit(role), 0 <= index < len(LineItems)
func (inv *Invoice) RemoveLineItem(role account.Role, index int, now time.Time) error {
	if err := inv.checkEdit(role); err != nil {
		return err
	}
	if index < 0 || index >= len(inv.LineItems) {
		return apperr.Validation("line item index %d out of range", index)
	}
	items := make([]LineItem, 0, len(inv.LineItems)-1)
	items = append(items, inv.LineItems[:index]...)
	items = append(items, inv.LineItems[index+1:]...)
	inv.commitItems(items, now)
	return nil
}

// ReplaceContent overwrites notes and the full line-item list.
// PRE: CanEdit(role); every item is valid
// POST: stale amounts recomputed, totals refreshed
func (inv *Invoice) ReplaceContent(role account.Role, notes string, items []LineItem, now time.Time) error {
	if err := inv.checkEdit(role); err != nil {
		return err
	}
	next := make([]LineItem, len(items))
	for i, li := range items {
		li.Amount = li.EffectiveAmount()
		if err := li.Validate(); err != nil {
			return apperr.Validation("line item %d: %v", i, err)
		}
		next[i] = li
	}
	inv.Notes = notes
	inv.commitItems(next, now)
	return nil
}

func (inv *Invoice) commitItems(items []LineItem, now time.Time) {
	inv.LineItems = items
	inv.Recompute()
	inv.UpdatedAt = now
}

// --- Status transitions ---

// Submit moves a draft or rejected invoice to submitted.
// Resubmitting a rejected invoice is the same transition.
// PRE: Status is draft or rejected
// POST: Status is submitted, SubmittedAt set, rejection reason cleared
func (inv *Invoice) Submit(role account.Role, now time.Time) error {
	if !role.Valid() {
		return apperr.Forbidden("%s cannot submit invoices", roleName(role))
	}
	if inv.Status != StatusDraft && inv.Status != StatusRejected {
		return apperr.InvalidTransition("cannot submit a %s invoice", inv.Status)
	}
	inv.Recompute()
	inv.Status = StatusSubmitted
	inv.SubmittedAt = now
	inv.RejectionReason = ""
	inv.RejectedAt = time.Time{}
	inv.UpdatedAt = now
	return nil
}

// Approve moves a submitted invoice to approved.
// PRE: role is admin or super_admin; Status is submitted
// POST: Status is approved, ApprovedAt set
func (inv *Invoice) Approve(role account.Role, now time.Time) error {
	if !role.IsAdmin() {
		return apperr.Forbidden("%s cannot approve invoices", roleName(role))
	}
	if inv.Status != StatusSubmitted {
		return apperr.InvalidTransition("cannot approve a %s invoice", inv.Status)
	}
	inv.Status = StatusApproved
	inv.ApprovedAt = now
	inv.UpdatedAt = now
	return nil
}

// Reject sends a submitted invoice back to the coach.
// PRE: role is admin or super_admin; Status is submitted; reason is not blank
// POST: Status is rejected, RejectionReason and RejectedAt set
func (inv *Invoice) Reject(role account.Role, reason string, now time.Time) error {
	if !role.IsAdmin() {
		return apperr.Forbidden("%s cannot reject invoices", roleName(role))
	}
	if inv.Status != StatusSubmitted {
		return apperr.InvalidTransition("cannot reject a %s invoice", inv.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperr.Validation("rejection reason is required")
	}
	inv.Status = StatusRejected
	inv.RejectionReason = reason
	inv.RejectedAt = now
	inv.UpdatedAt = now
	return nil
}

// MarkPaid records payment of an approved invoice.
// PRE: role is admin or super_admin; Status is approved
// POST: Status is paid, PaidAt set
func (inv *Invoice) MarkPaid(role account.Role, now time.Time) error {
	if !role.IsAdmin() {
		return apperr.Forbidden("%s cannot mark invoices paid", roleName(role))
	}
	if inv.Status != StatusApproved {
		return apperr.InvalidTransition("cannot mark a %s invoice as paid", inv.Status)
	}
	inv.Status = StatusPaid
	inv.PaidAt = now
	inv.UpdatedAt = now
	return nil
}
