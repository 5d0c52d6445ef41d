package projections

import (
	"context"

	invoicestore "courtside/internal/adapters/storage/invoice"
	"courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
	"courtside/internal/domain/invoice"
)

// InvoiceListStore defines the store interface needed by QueryListInvoices.
type InvoiceListStore interface {
	List(ctx context.Context, filter invoicestore.ListFilter) ([]invoice.Invoice, error)
}

// ListInvoicesQuery carries the invoice list filter; zero fields match everything.
type ListInvoicesQuery struct {
	Actor   account.Actor
	CoachID string
	Status  invoice.Status
	Year    int
	Month   int
}

// QueryListInvoices lists invoice headers, newest period first.
// Coaches always see only their own invoices.
// PRE: Status, when set, is a known status; Month is 0..12
func QueryListInvoices(ctx context.Context, q ListInvoicesQuery, store InvoiceListStore) ([]invoice.Invoice, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validation("unknown invoice status %q", q.Status)
	}
	if q.Month < 0 || q.Month > 12 {
		return nil, apperr.Validation("month must be between 1 and 12")
	}

	filter := invoicestore.ListFilter{CoachID: q.CoachID, Status: q.Status, Year: q.Year, Month: q.Month}
	if !q.Actor.Role.IsAdmin() {
		if q.Actor.CoachID == "" {
			return []invoice.Invoice{}, nil
		}
		filter.CoachID = q.Actor.CoachID
	}

	invoices, err := store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []invoice.Invoice{}
	}
	return invoices, nil
}
