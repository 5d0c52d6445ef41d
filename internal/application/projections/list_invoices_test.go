package projections

import (
	"context"
	"errors"
	"testing"

	invoicestore "courtside/internal/adapters/storage/invoice"
	"courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
	"courtside/internal/domain/invoice"
)

type mockInvoiceListStore struct {
	invoices []invoice.Invoice
}

// List implements InvoiceListStore.
func (m *mockInvoiceListStore) List(_ context.Context, f invoicestore.ListFilter) ([]invoice.Invoice, error) {
	var out []invoice.Invoice
	for _, inv := range m.invoices {
		if f.CoachID != "" && inv.CoachID != f.CoachID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.Year != 0 && inv.Year != f.Year {
			continue
		}
		if f.Month != 0 && inv.Month != f.Month {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func newInvoiceListStore() *mockInvoiceListStore {
	return &mockInvoiceListStore{invoices: []invoice.Invoice{
		{ID: "i-1", CoachID: "c-1", Month: 6, Year: 2024, Status: invoice.StatusDraft},
		{ID: "i-2", CoachID: "c-2", Month: 6, Year: 2024, Status: invoice.StatusSubmitted},
		{ID: "i-3", CoachID: "c-1", Month: 5, Year: 2024, Status: invoice.StatusPaid},
	}}
}

// TestQueryListInvoices tests filtering and coach scoping.
func TestQueryListInvoices(t *testing.T) {
	tests := []struct {
		name string
		q    ListInvoicesQuery
		want int
	}{
		{"admin sees all", ListInvoicesQuery{Actor: adminActor}, 3},
		{"admin filters coach", ListInvoicesQuery{Actor: adminActor, CoachID: "c-2"}, 1},
		{"admin filters status", ListInvoicesQuery{Actor: adminActor, Status: invoice.StatusPaid}, 1},
		{"admin filters month", ListInvoicesQuery{Actor: adminActor, Year: 2024, Month: 6}, 2},
		{"coach sees own", ListInvoicesQuery{Actor: coachActor}, 2},
		{"coach cannot widen to another coach", ListInvoicesQuery{Actor: coachActor, CoachID: "c-2"}, 2},
		{"coach without link sees nothing", ListInvoicesQuery{Actor: account.Actor{AccountID: "a-x", Role: account.RoleCoach}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QueryListInvoices(context.Background(), tt.q, newInvoiceListStore())
			if err != nil {
				t.Fatalf("QueryListInvoices() error = %v", err)
			}
			if got == nil {
				t.Fatal("result should be an empty slice, not nil")
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
			if !tt.q.Actor.Role.IsAdmin() {
				for _, inv := range got {
					if inv.CoachID != tt.q.Actor.CoachID {
						t.Errorf("coach saw invoice %s of %s", inv.ID, inv.CoachID)
					}
				}
			}
		})
	}
}

// TestQueryListInvoices_InvalidFilter tests rejection of unknown statuses and months.
func TestQueryListInvoices_InvalidFilter(t *testing.T) {
	for _, q := range []ListInvoicesQuery{
		{Actor: adminActor, Status: "archived"},
		{Actor: adminActor, Month: 13},
	} {
		_, err := QueryListInvoices(context.Background(), q, newInvoiceListStore())
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("QueryListInvoices(%+v) error = %v, want ErrValidation", q, err)
		}
	}
}
