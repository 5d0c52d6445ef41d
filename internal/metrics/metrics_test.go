package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestInvoiceTransition verifies counters are labelled by event.
func TestInvoiceTransition(t *testing.T) {
	m := New()
	m.InvoiceTransition("submit")
	m.InvoiceTransition("submit")
	m.InvoiceTransition("approve")

	if got := testutil.ToFloat64(m.invoiceTransitions.WithLabelValues("submit")); got != 2 {
		t.Errorf("submit = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.invoiceTransitions.WithLabelValues("approve")); got != 1 {
		t.Errorf("approve = %v, want 1", got)
	}
}

// TestPlanCounters verifies plan counters.
func TestPlanCounters(t *testing.T) {
	m := New()
	m.PlanCreated()
	m.PlanRejected("planning_closed")
	if got := testutil.ToFloat64(m.plansCreated); got != 1 {
		t.Errorf("plansCreated = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.planRejections.WithLabelValues("planning_closed")); got != 1 {
		t.Errorf("planRejections = %v, want 1", got)
	}
}

// TestNilMetrics verifies every method tolerates a nil receiver.
func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.InvoiceTransition("submit")
	m.PlanCreated()
	m.PlanRejected("x")
	m.ObserveQuery("ExecContext", time.Millisecond)
	m.ObserveRequest("GET", "/healthz", 200, time.Millisecond)
	if m.Registry() != nil {
		t.Error("nil metrics should have no registry")
	}
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("nil handler status = %d, want 404", rec.Code)
	}
}

// TestHandler verifies the exposition output contains application series.
func TestHandler(t *testing.T) {
	m := New()
	m.InvoiceTransition("mark_paid")
	m.ObserveRequest("GET", "GET /api/invoices", 200, 3*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`courtside_invoice_transitions_total{event="mark_paid"} 1`,
		`courtside_http_request_duration_seconds_count{method="GET",pattern="GET /api/invoices",status="200"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
