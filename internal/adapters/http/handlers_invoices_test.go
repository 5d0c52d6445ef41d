package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"courtside/internal/adapters/http/middleware"
	"courtside/internal/domain/invoice"
	"courtside/internal/domain/rate"
)

// generateMarch creates c-1's March 2024 draft as sess and returns it.
func generateMarch(t *testing.T, sess middleware.Session) invoiceView {
	t.Helper()
	rec := serve(authRequest("POST", "/api/invoices/generate", `{"CoachID":"c-1","Month":3,"Year":2024}`, sess))
	wantStatus(t, rec, http.StatusCreated)
	return decodeBody[invoiceView](t, rec)
}

func TestGenerateInvoice_Idempotent(t *testing.T) {
	newTestStores(t)

	first := generateMarch(t, coachSession)
	if first.Status != invoice.StatusDraft || first.Version != 1 {
		t.Errorf("got status %s version %d, want draft v1", first.Status, first.Version)
	}

	rec := serve(authRequest("POST", "/api/invoices/generate", `{"Month":3,"Year":2024}`, coachSession))
	wantStatus(t, rec, http.StatusOK)
	again := decodeBody[invoiceView](t, rec)
	if again.ID != first.ID {
		t.Errorf("second generate returned %s, want existing %s", again.ID, first.ID)
	}
}

func TestGenerateInvoice_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		sess middleware.Session
		want int
	}{
		{"another coach", `{"CoachID":"c-2","Month":3,"Year":2024}`, coachSession, http.StatusForbidden},
		{"bad month", `{"CoachID":"c-1","Month":13,"Year":2024}`, coachSession, http.StatusBadRequest},
		{"unknown coach", `{"CoachID":"c-9","Month":3,"Year":2024}`, adminSession, http.StatusNotFound},
		{"admin without coach", `{"Month":3,"Year":2024}`, adminSession, http.StatusBadRequest},
		{"unknown field", `{"CoachID":"c-1","Month":3,"Year":2024,"Total":"5"}`, coachSession, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newTestStores(t)
			rec := serve(authRequest("POST", "/api/invoices/generate", tt.body, tt.sess))
			wantStatus(t, rec, tt.want)
		})
	}
}

func TestInvoiceJSON_MoneyAsNumbers(t *testing.T) {
	newTestStores(t)
	inv := generateMarch(t, coachSession)

	// Numbers and numeric strings are both accepted on input.
	rec := serve(authRequest("POST", "/api/invoices/"+inv.ID+"/line-items",
		`{"ItemType":"coaching","Hours":2.5,"Rate":"40"}`, coachSession))
	wantStatus(t, rec, http.StatusCreated)

	var body struct {
		Total     any
		LineItems []map[string]any
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if total, ok := body.Total.(float64); !ok || total != 100 {
		t.Errorf("Total = %#v, want JSON number 100", body.Total)
	}
	if len(body.LineItems) != 1 {
		t.Fatalf("got %d line items, want 1", len(body.LineItems))
	}
	for _, field := range []string{"Hours", "Rate", "Amount"} {
		if _, ok := body.LineItems[0][field].(float64); !ok {
			t.Errorf("%s = %#v, want a JSON number", field, body.LineItems[0][field])
		}
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	s := newTestStores(t)
	if err := s.RateStore.Save(context.Background(), rate.CoachRate{
		CoachID: "c-1", ItemType: invoice.ItemGroupCoaching, HourlyRate: decimal.NewFromInt(45),
	}); err != nil {
		t.Fatalf("save rate: %v", err)
	}
	inv := generateMarch(t, coachSession)
	base := "/api/invoices/" + inv.ID

	// Rate is filled from the coach's default.
	rec := serve(authRequest("POST", base+"/line-items",
		`{"ItemType":"group_coaching","Description":"Red Ball","Hours":"4"}`, coachSession))
	wantStatus(t, rec, http.StatusCreated)
	inv = decodeBody[invoiceView](t, rec)
	if !inv.Total.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("total = %s, want 180", inv.Total)
	}

	rec = serve(authRequest("POST", base+"/line-items",
		`{"ItemType":"deduction","IsDeduction":true,"Description":"Balls","Amount":"30"}`, coachSession))
	wantStatus(t, rec, http.StatusCreated)

	rec = serve(authRequest("PATCH", base+"/line-items/0", `{"Hours":"5"}`, coachSession))
	wantStatus(t, rec, http.StatusOK)
	inv = decodeBody[invoiceView](t, rec)
	if !inv.Subtotal.Equal(decimal.NewFromInt(225)) || !inv.Total.Equal(decimal.NewFromInt(195)) {
		t.Fatalf("subtotal %s total %s, want 225 and 195", inv.Subtotal, inv.Total)
	}

	rec = serve(authRequest("PUT", base, `{"Notes":"**Term 1** coaching","LineItems":[
		{"ItemType":"group_coaching","Description":"Red Ball","Hours":"5","Rate":"45"},
		{"ItemType":"travel","Description":"Tournament","Amount":"20"}]}`, coachSession))
	wantStatus(t, rec, http.StatusOK)
	inv = decodeBody[invoiceView](t, rec)
	if !inv.Total.Equal(decimal.NewFromInt(245)) {
		t.Errorf("total after replace = %s, want 245", inv.Total)
	}
	if !strings.Contains(inv.NotesHTML, "<strong>Term 1</strong>") {
		t.Errorf("notes not rendered: %q", inv.NotesHTML)
	}

	// Coaches cannot approve.
	rec = serve(authRequest("POST", base+"/submit", "", coachSession))
	wantStatus(t, rec, http.StatusOK)
	rec = serve(authRequest("POST", base+"/approve", "", coachSession))
	wantStatus(t, rec, http.StatusForbidden)

	rec = serve(authRequest("POST", base+"/reject", `{"Reason":"  "}`, adminSession))
	wantStatus(t, rec, http.StatusBadRequest)
	rec = serve(authRequest("POST", base+"/reject", `{"Reason":"Missing dates"}`, adminSession))
	wantStatus(t, rec, http.StatusOK)
	if got := decodeBody[invoiceView](t, rec); got.RejectionReason != "Missing dates" {
		t.Errorf("rejection reason = %q", got.RejectionReason)
	}

	rec = serve(authRequest("POST", base+"/mark_paid", "", adminSession))
	wantStatus(t, rec, http.StatusConflict)

	rec = serve(authRequest("POST", base+"/submit", "", coachSession))
	wantStatus(t, rec, http.StatusOK)
	rec = serve(authRequest("POST", base+"/approve", "", adminSession))
	wantStatus(t, rec, http.StatusOK)

	// Approved invoices are closed to the coach.
	rec = serve(authRequest("DELETE", base+"/line-items/0", "", coachSession))
	wantStatus(t, rec, http.StatusForbidden)

	rec = serve(authRequest("POST", base+"/mark_paid", "", adminSession))
	wantStatus(t, rec, http.StatusOK)
	paid := decodeBody[invoiceView](t, rec)
	if paid.Status != invoice.StatusPaid || paid.PaidAt.IsZero() {
		t.Errorf("got status %s paid_at %v", paid.Status, paid.PaidAt)
	}

	rec = serve(authRequest("DELETE", base, "", adminSession))
	wantStatus(t, rec, http.StatusForbidden)
}

func TestGetInvoice_OtherCoach(t *testing.T) {
	newTestStores(t)
	inv := generateMarch(t, coachSession)

	rec := serve(authRequest("GET", "/api/invoices/"+inv.ID, "", tomSession))
	wantStatus(t, rec, http.StatusForbidden)

	rec = serve(authRequest("GET", "/api/invoices/missing", "", adminSession))
	wantStatus(t, rec, http.StatusNotFound)

	rec = serve(authRequest("GET", "/api/invoices/"+inv.ID, "", adminSession))
	wantStatus(t, rec, http.StatusOK)
}

func TestListInvoices(t *testing.T) {
	newTestStores(t)
	generateMarch(t, coachSession)
	rec := serve(authRequest("POST", "/api/invoices/generate", `{"Month":3,"Year":2024}`, tomSession))
	wantStatus(t, rec, http.StatusCreated)

	tests := []struct {
		name string
		url  string
		sess middleware.Session
		want int
	}{
		{"admin sees all", "/api/invoices", adminSession, 2},
		{"admin by coach", "/api/invoices?coach_id=c-2", adminSession, 1},
		{"admin by status", "/api/invoices?status=submitted", adminSession, 0},
		{"coach sees own", "/api/invoices", coachSession, 1},
		{"coach cannot widen", "/api/invoices?coach_id=c-2", coachSession, 1},
		{"other month", "/api/invoices?year=2024&month=4", adminSession, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(authRequest("GET", tt.url, "", tt.sess))
			wantStatus(t, rec, http.StatusOK)
			got := decodeBody[[]invoiceView](t, rec)
			if len(got) != tt.want {
				t.Errorf("got %d invoices, want %d", len(got), tt.want)
			}
		})
	}

	rec = serve(authRequest("GET", "/api/invoices?month=march", "", adminSession))
	wantStatus(t, rec, http.StatusBadRequest)
	rec = serve(authRequest("GET", "/api/invoices?status=lost", "", adminSession))
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestExportInvoice(t *testing.T) {
	newTestStores(t)
	inv := generateMarch(t, coachSession)
	rec := serve(authRequest("POST", "/api/invoices/"+inv.ID+"/line-items",
		`{"ItemType":"private_lesson","Description":"Lesson","Hours":"1","Rate":"60"}`, coachSession))
	wantStatus(t, rec, http.StatusCreated)

	rec = serve(authRequest("GET", "/api/invoices/"+inv.ID+"/export.xlsx", "", tomSession))
	wantStatus(t, rec, http.StatusForbidden)

	rec = serve(authRequest("GET", "/api/invoices/"+inv.ID+"/export.xlsx", "", coachSession))
	wantStatus(t, rec, http.StatusOK)
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "invoice_Mere_Tane_2024-03.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	coach, err := f.GetCellValue("Invoice", "B1")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if coach != "Mere Tane" {
		t.Errorf("coach cell = %q", coach)
	}
}
