package invoice

import (
	"context"

	domain "courtside/internal/domain/invoice"
)

// ErrStaleInvoice is returned by Update when the stored version moved on.
var ErrStaleInvoice = domain.ErrStaleVersion

// Store persists invoices and their line items.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Invoice, error)
	GetByPeriod(ctx context.Context, coachID string, month, year int) (domain.Invoice, error)
	CreateIfAbsent(ctx context.Context, value domain.Invoice) (domain.Invoice, bool, error)
	Update(ctx context.Context, value domain.Invoice) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Invoice, error)
}

// ListFilter narrows List; zero fields match everything.
type ListFilter struct {
	CoachID string
	Status  domain.Status
	Year    int
	Month   int
}
