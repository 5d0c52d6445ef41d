package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"courtside/internal/adapters/export"
	"courtside/internal/application/orchestrators"
	"courtside/internal/application/projections"
	"courtside/internal/domain/invoice"
)

// invoiceView is an invoice as returned to clients, with its notes rendered.
type invoiceView struct {
	invoice.Invoice
	NotesHTML string
}

func viewInvoice(inv invoice.Invoice) invoiceView {
	if inv.LineItems == nil {
		inv.LineItems = []invoice.LineItem{}
	}
	return invoiceView{Invoice: inv, NotesHTML: renderMarkdown(inv.Notes)}
}

func invoiceDeps() orchestrators.InvoiceDeps {
	return orchestrators.InvoiceDeps{
		InvoiceStore: stores.InvoiceStore,
		CoachStore:   stores.CoachStore,
		RateStore:    stores.RateStore,
		Metrics:      appMetrics,
		GenerateID:   generateID,
		Now:          timeNow,
	}
}

// handleListInvoices handles GET /api/invoices?coach_id&status&year&month
func handleListInvoices(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	year, err := queryInt(r, "year")
	if err != nil {
		writeError(w, err)
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		writeError(w, err)
		return
	}

	invoices, err := projections.QueryListInvoices(r.Context(), projections.ListInvoicesQuery{
		Actor:   sess.Actor(),
		CoachID: r.URL.Query().Get("coach_id"),
		Status:  invoice.Status(r.URL.Query().Get("status")),
		Year:    year,
		Month:   month,
	}, stores.InvoiceStore)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]invoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, viewInvoice(inv))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleGenerateInvoice handles POST /api/invoices/generate
// Responds 201 when a new draft was created, 200 when the invoice already existed.
func handleGenerateInvoice(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	var input struct {
		CoachID string `json:"CoachID"`
		Month   int    `json:"Month"`
		Year    int    `json:"Year"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	inv, created, err := orchestrators.ExecuteGenerateInvoice(r.Context(), orchestrators.GenerateInvoiceInput{
		Actor:   sess.Actor(),
		CoachID: input.CoachID,
		Month:   input.Month,
		Year:    input.Year,
	}, invoiceDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, viewInvoice(inv))
}

// handleGetInvoice handles GET /api/invoices/{id}
func handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	inv, err := orchestrators.ExecuteGetInvoice(r.Context(), orchestrators.GetInvoiceInput{
		Actor:     sess.Actor(),
		InvoiceID: r.PathValue("id"),
	}, invoiceDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewInvoice(inv))
}

// handleUpdateInvoice handles PUT /api/invoices/{id}
func handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	var input struct {
		Notes     string             `json:"Notes"`
		LineItems []invoice.LineItem `json:"LineItems"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	inv, err := orchestrators.ExecuteUpdateInvoice(r.Context(), orchestrators.UpdateInvoiceInput{
		Actor:     sess.Actor(),
		InvoiceID: r.PathValue("id"),
		Notes:     input.Notes,
		LineItems: input.LineItems,
	}, invoiceDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewInvoice(inv))
}

// handleDeleteInvoice handles DELETE /api/invoices/{id}
func handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	err := orchestrators.ExecuteDeleteInvoice(r.Context(), orchestrators.InvoiceTransitionInput{
		Actor:     sess.Actor(),
		InvoiceID: r.PathValue("id"),
	}, invoiceDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddLineItem handles POST /api/invoices/{id}/line-items
func handleAddLineItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	var item invoice.LineItem
	if err := strictDecode(r, &item); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	inv, err := orchestrators.ExecuteAddLineItem(r.Context(), orchestrators.AddLineItemInput{
		Actor:     sess.Actor(),
		InvoiceID: r.PathValue("id"),
		Item:      item,
	}, invoiceDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewInvoice(inv))
}

// handleUpdateLineItem handles PATCH /api/invoices/{id}/line-items/{index}
func handleUpdateLineItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch invoice.LineItemPatch
	if err := strictDecode(r, &patch); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	inv, err := orchestrators.ExecuteUpdateLineItem(r.Context(), orchestrators.UpdateLineItemInput{
		Actor:     sess.Actor(),
		InvoiceID: r.PathValue("id"),
		Index:     index,
		Patch:     patch,
	}, invoiceDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewInvoice(inv))
}

// handleRemoveLineItem handles DELETE /api/invoices/{id}/line-items/{index}
func handleRemoveLineItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}

	inv, err := orchestrators.ExecuteRemoveLineItem(r.Context(), orchestrators.RemoveLineItemInput{
		Actor:     sess.Actor(),
		InvoiceID: r.PathValue("id"),
		Index:     index,
	}, invoiceDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewInvoice(inv))
}

type transitionFunc func(ctx context.Context, input orchestrators.InvoiceTransitionInput, deps orchestrators.InvoiceDeps) (invoice.Invoice, error)

// handleInvoiceTransition builds the handler for a body-less lifecycle transition.
func handleInvoiceTransition(run transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireAuth(w, r)
		if !ok {
			return
		}
		inv, err := run(r.Context(), orchestrators.InvoiceTransitionInput{
			Actor:     sess.Actor(),
			InvoiceID: r.PathValue("id"),
		}, invoiceDeps())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewInvoice(inv))
	}
}

// handleRejectInvoice handles POST /api/invoices/{id}/reject
func handleRejectInvoice(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	var input struct {
		Reason string `json:"Reason"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	inv, err := orchestrators.ExecuteRejectInvoice(r.Context(), orchestrators.RejectInvoiceInput{
		Actor:     sess.Actor(),
		InvoiceID: r.PathValue("id"),
		Reason:    input.Reason,
	}, invoiceDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewInvoice(inv))
}

// handleExportInvoice handles GET /api/invoices/{id}/export.xlsx
func handleExportInvoice(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	inv, err := orchestrators.ExecuteGetInvoice(r.Context(), orchestrators.GetInvoiceInput{
		Actor:     sess.Actor(),
		InvoiceID: r.PathValue("id"),
	}, invoiceDeps())
	if err != nil {
		writeError(w, err)
		return
	}

	coachName := ""
	if c, err := stores.CoachStore.GetByID(r.Context(), inv.CoachID); err == nil {
		coachName = c.Name
	}
	data, err := export.InvoiceXLSX(inv, coachName)
	if err != nil {
		internalError(w, err)
		return
	}

	slog.Info("invoice_event", "event", "invoice_exported", "invoice_id", inv.ID, "account_id", sess.AccountID)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.InvoiceFilename(inv, coachName)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
