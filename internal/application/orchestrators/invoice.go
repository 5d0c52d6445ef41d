package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
	"courtside/internal/domain/coach"
	"courtside/internal/domain/invoice"
	"courtside/internal/domain/rate"
	"courtside/internal/metrics"
)

// InvoiceStoreForOrchestrator defines the store interface needed by invoice orchestrators.
type InvoiceStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (invoice.Invoice, error)
	GetByPeriod(ctx context.Context, coachID string, month, year int) (invoice.Invoice, error)
	CreateIfAbsent(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, bool, error)
	Update(ctx context.Context, inv invoice.Invoice) error
	Delete(ctx context.Context, id string) error
}

// CoachStoreForInvoice defines the coach lookup needed by GenerateInvoice.
type CoachStoreForInvoice interface {
	GetByID(ctx context.Context, id string) (coach.Coach, error)
}

// RateStoreForInvoice defines the rate lookup needed by AddLineItem.
type RateStoreForInvoice interface {
	ListByCoach(ctx context.Context, coachID string) ([]rate.CoachRate, error)
}

// InvoiceDeps holds dependencies shared by the invoice orchestrators.
// CoachStore is used by GenerateInvoice and RateStore by AddLineItem.
type InvoiceDeps struct {
	InvoiceStore InvoiceStoreForOrchestrator
	CoachStore   CoachStoreForInvoice
	RateStore    RateStoreForInvoice
	Metrics      *metrics.Metrics
	GenerateID   func() string
	Now          func() time.Time
}

// Invoice events, used as the slog "event" attribute and the metrics label.
const (
	EventInvoiceGenerated = "invoice_generated"
	EventInvoiceUpdated   = "invoice_updated"
	EventLineItemAdded    = "line_item_added"
	EventLineItemUpdated  = "line_item_updated"
	EventLineItemRemoved  = "line_item_removed"
	EventInvoiceSubmitted = "invoice_submitted"
	EventInvoiceApproved  = "invoice_approved"
	EventInvoiceRejected  = "invoice_rejected"
	EventInvoicePaid      = "invoice_paid"
	EventInvoiceDeleted   = "invoice_deleted"
)

// --- Generate Invoice ---

// GenerateInvoiceInput carries input for the generate invoice orchestrator.
type GenerateInvoiceInput struct {
	Actor   account.Actor
	CoachID string // defaults to the actor's coach
	Month   int
	Year    int
}

// ExecuteGenerateInvoice returns the invoice for (coach, month, year), creating an
// empty draft when none exists.
// PRE: Actor owns CoachID; coach exists
// POST: Exactly one invoice exists for (CoachID, Month, Year); created reports whether it is new
func ExecuteGenerateInvoice(ctx context.Context, input GenerateInvoiceInput, deps InvoiceDeps) (invoice.Invoice, bool, error) {
	coachID := input.CoachID
	if coachID == "" {
		coachID = input.Actor.CoachID
	}
	if coachID == "" {
		return invoice.Invoice{}, false, apperr.Validation("coach ID is required")
	}
	if !input.Actor.Owns(coachID) {
		slog.Warn("auth_denied", "op", "generate_invoice", "account_id", input.Actor.AccountID, "coach_id", coachID)
		return invoice.Invoice{}, false, apperr.Forbidden("cannot generate invoices for another coach")
	}
	if _, err := deps.CoachStore.GetByID(ctx, coachID); err != nil {
		return invoice.Invoice{}, false, err
	}

	draft, err := invoice.New(deps.GenerateID(), coachID, input.Month, input.Year, deps.Now())
	if err != nil {
		return invoice.Invoice{}, false, err
	}
	existing, err := deps.InvoiceStore.GetByPeriod(ctx, coachID, input.Month, input.Year)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return invoice.Invoice{}, false, err
	}
	// A concurrent generate may insert between the lookup and here.
	stored, created, err := deps.InvoiceStore.CreateIfAbsent(ctx, draft)
	if err != nil {
		return invoice.Invoice{}, false, err
	}
	if created {
		logInvoiceEvent(EventInvoiceGenerated, stored, input.Actor, deps)
	}
	return stored, created, nil
}

// --- Get Invoice ---

// GetInvoiceInput carries input for the get invoice orchestrator.
type GetInvoiceInput struct {
	Actor     account.Actor
	InvoiceID string
}

// ExecuteGetInvoice loads one invoice the actor may see.
// PRE: InvoiceID is non-empty
// POST: Returns the invoice, NotFound, or Forbidden for another coach's invoice
func ExecuteGetInvoice(ctx context.Context, input GetInvoiceInput, deps InvoiceDeps) (invoice.Invoice, error) {
	return loadOwnedInvoice(ctx, input.Actor, input.InvoiceID, "get_invoice", deps)
}

// --- Update Invoice ---

// UpdateInvoiceInput carries input for the update invoice orchestrator.
// LineItems replaces the whole list.
type UpdateInvoiceInput struct {
	Actor     account.Actor
	InvoiceID string
	Notes     string
	LineItems []invoice.LineItem
}

// ExecuteUpdateInvoice replaces the notes and line items of an editable invoice.
// PRE: Actor owns the invoice and may edit it in its current status
// POST: Notes and items replaced, totals recomputed, version bumped
func ExecuteUpdateInvoice(ctx context.Context, input UpdateInvoiceInput, deps InvoiceDeps) (invoice.Invoice, error) {
	return mutateInvoice(ctx, input.Actor, input.InvoiceID, EventInvoiceUpdated, deps,
		func(inv *invoice.Invoice, now time.Time) error {
			items := make([]invoice.LineItem, len(input.LineItems))
			for i, li := range input.LineItems {
				if li.ID == "" {
					li.ID = deps.GenerateID()
				}
				items[i] = li
			}
			return inv.ReplaceContent(input.Actor.Role, input.Notes, items, now)
		})
}

// --- Line items ---

// AddLineItemInput carries input for the add line item orchestrator.
type AddLineItemInput struct {
	Actor     account.Actor
	InvoiceID string
	Item      invoice.LineItem
}

// ExecuteAddLineItem appends a line item, defaulting its rate from the coach's rates.
// PRE: Actor owns the invoice and may edit it in its current status
// POST: Item appended with a generated ID, totals recomputed, version bumped
func ExecuteAddLineItem(ctx context.Context, input AddLineItemInput, deps InvoiceDeps) (invoice.Invoice, error) {
	return mutateInvoice(ctx, input.Actor, input.InvoiceID, EventLineItemAdded, deps,
		func(inv *invoice.Invoice, now time.Time) error {
			item := input.Item
			if item.ID == "" {
				item.ID = deps.GenerateID()
			}
			if inv.CanEdit(input.Actor.Role) {
				rates, err := deps.RateStore.ListByCoach(ctx, inv.CoachID)
				if err != nil {
					return err
				}
				item = rate.Apply(item, rates)
			}
			return inv.AddLineItem(input.Actor.Role, item, now)
		})
}

// UpdateLineItemInput carries input for the update line item orchestrator.
type UpdateLineItemInput struct {
	Actor     account.Actor
	InvoiceID string
	Index     int
	Patch     invoice.LineItemPatch
}

// ExecuteUpdateLineItem patches the line item at Index.
// PRE: Actor owns the invoice and may edit it; Index is in range
// POST: Item patched and its amount recomputed, totals recomputed, version bumped
func ExecuteUpdateLineItem(ctx context.Context, input UpdateLineItemInput, deps InvoiceDeps) (invoice.Invoice, error) {
	return mutateInvoice(ctx, input.Actor, input.InvoiceID, EventLineItemUpdated, deps,
		func(inv *invoice.Invoice, now time.Time) error {
			return inv.UpdateLineItem(input.Actor.Role, input.Index, input.Patch, now)
		})
}

// RemoveLineItemInput carries input for the remove line item orchestrator.
type RemoveLineItemInput struct {
	Actor     account.Actor
	InvoiceID string
	Index     int
}

// ExecuteRemoveLineItem deletes the line item at Index.
// PRE: Actor owns the invoice and may edit it; Index is in range
// POST: Item removed, totals recomputed, version bumped
func ExecuteRemoveLineItem(ctx context.Context, input RemoveLineItemInput, deps InvoiceDeps) (invoice.Invoice, error) {
	return mutateInvoice(ctx, input.Actor, input.InvoiceID, EventLineItemRemoved, deps,
		func(inv *invoice.Invoice, now time.Time) error {
			return inv.RemoveLineItem(input.Actor.Role, input.Index, now)
		})
}

// --- Status transitions ---

// InvoiceTransitionInput carries input for the submit, approve and mark-paid orchestrators.
type InvoiceTransitionInput struct {
	Actor     account.Actor
	InvoiceID string
}

// ExecuteSubmitInvoice submits a draft or rejected invoice for approval.
// PRE: Actor owns the invoice; status is draft or rejected
// POST: Status is submitted
func ExecuteSubmitInvoice(ctx context.Context, input InvoiceTransitionInput, deps InvoiceDeps) (invoice.Invoice, error) {
	return mutateInvoice(ctx, input.Actor, input.InvoiceID, EventInvoiceSubmitted, deps,
		func(inv *invoice.Invoice, now time.Time) error {
			return inv.Submit(input.Actor.Role, now)
		})
}

// ExecuteApproveInvoice approves a submitted invoice.
// PRE: Actor is an admin; status is submitted
// POST: Status is approved
func ExecuteApproveInvoice(ctx context.Context, input InvoiceTransitionInput, deps InvoiceDeps) (invoice.Invoice, error) {
	return mutateInvoice(ctx, input.Actor, input.InvoiceID, EventInvoiceApproved, deps,
		func(inv *invoice.Invoice, now time.Time) error {
			return inv.Approve(input.Actor.Role, now)
		})
}

// RejectInvoiceInput carries input for the reject invoice orchestrator.
type RejectInvoiceInput struct {
	Actor     account.Actor
	InvoiceID string
	Reason    string
}

// ExecuteRejectInvoice returns a submitted invoice to its coach with a reason.
// PRE: Actor is an admin; status is submitted; Reason is not blank
// POST: Status is rejected with RejectionReason set
func ExecuteRejectInvoice(ctx context.Context, input RejectInvoiceInput, deps InvoiceDeps) (invoice.Invoice, error) {
	return mutateInvoice(ctx, input.Actor, input.InvoiceID, EventInvoiceRejected, deps,
		func(inv *invoice.Invoice, now time.Time) error {
			return inv.Reject(input.Actor.Role, input.Reason, now)
		})
}

// ExecuteMarkInvoicePaid records payment of an approved invoice.
// PRE: Actor is an admin; status is approved
// POST: Status is paid
func ExecuteMarkInvoicePaid(ctx context.Context, input InvoiceTransitionInput, deps InvoiceDeps) (invoice.Invoice, error) {
	return mutateInvoice(ctx, input.Actor, input.InvoiceID, EventInvoicePaid, deps,
		func(inv *invoice.Invoice, now time.Time) error {
			return inv.MarkPaid(input.Actor.Role, now)
		})
}

// --- Delete Invoice ---

// ExecuteDeleteInvoice removes an invoice the actor may delete in its current status.
// PRE: Actor owns the invoice
// POST: Invoice and its line items are gone, or Forbidden and nothing changed
func ExecuteDeleteInvoice(ctx context.Context, input InvoiceTransitionInput, deps InvoiceDeps) error {
	inv, err := loadOwnedInvoice(ctx, input.Actor, input.InvoiceID, "delete_invoice", deps)
	if err != nil {
		return err
	}
	if err := inv.CheckDelete(input.Actor.Role); err != nil {
		return err
	}
	if err := deps.InvoiceStore.Delete(ctx, inv.ID); err != nil {
		return err
	}
	logInvoiceEvent(EventInvoiceDeleted, inv, input.Actor, deps)
	return nil
}

// --- helpers ---

// loadOwnedInvoice fetches an invoice and checks the actor may act on it.
func loadOwnedInvoice(ctx context.Context, actor account.Actor, id, op string, deps InvoiceDeps) (invoice.Invoice, error) {
	if id == "" {
		return invoice.Invoice{}, apperr.Validation("invoice ID is required")
	}
	inv, err := deps.InvoiceStore.GetByID(ctx, id)
	if err != nil {
		return invoice.Invoice{}, err
	}
	if !actor.Owns(inv.CoachID) {
		slog.Warn("auth_denied", "op", op, "account_id", actor.AccountID, "invoice_id", id)
		return invoice.Invoice{}, apperr.Forbidden("invoice belongs to another coach")
	}
	return inv, nil
}

// mutateInvoice loads an owned invoice, applies fn and saves it against the version it read.
// Nothing is saved when fn fails.
func mutateInvoice(ctx context.Context, actor account.Actor, id, event string, deps InvoiceDeps, fn func(inv *invoice.Invoice, now time.Time) error) (invoice.Invoice, error) {
	inv, err := loadOwnedInvoice(ctx, actor, id, event, deps)
	if err != nil {
		return invoice.Invoice{}, err
	}
	if err := fn(&inv, deps.Now()); err != nil {
		return invoice.Invoice{}, err
	}
	if err := deps.InvoiceStore.Update(ctx, inv); err != nil {
		if errors.Is(err, invoice.ErrStaleVersion) {
			slog.Info("invoice_event", "event", "stale_write", "invoice_id", inv.ID, "version", inv.Version)
			return invoice.Invoice{}, apperr.InvalidTransition("invoice %s changed since it was read; reload and retry", inv.ID)
		}
		return invoice.Invoice{}, err
	}
	inv.Version++
	logInvoiceEvent(event, inv, actor, deps)
	return inv, nil
}

func logInvoiceEvent(event string, inv invoice.Invoice, actor account.Actor, deps InvoiceDeps) {
	slog.Info("invoice_event", "event", event, "invoice_id", inv.ID, "coach_id", inv.CoachID,
		"status", inv.Status, "total", inv.Total.StringFixed(2), "account_id", actor.AccountID)
	deps.Metrics.InvoiceTransition(event)
}
