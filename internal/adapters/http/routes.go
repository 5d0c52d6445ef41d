package web

import (
	"net/http"

	"courtside/internal/application/orchestrators"
)

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.Handle("GET /metrics", appMetrics.Handler())

	// Auth
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.HandleFunc("POST /api/logout", handleLogout)
	mux.HandleFunc("GET /api/me", handleMe)
	mux.HandleFunc("POST /api/account/password", handleChangePassword)

	// Invoices
	mux.HandleFunc("GET /api/invoices", handleListInvoices)
	mux.HandleFunc("POST /api/invoices/generate", handleGenerateInvoice)
	mux.HandleFunc("GET /api/invoices/{id}", handleGetInvoice)
	mux.HandleFunc("PUT /api/invoices/{id}", handleUpdateInvoice)
	mux.HandleFunc("DELETE /api/invoices/{id}", handleDeleteInvoice)
	mux.HandleFunc("POST /api/invoices/{id}/line-items", handleAddLineItem)
	mux.HandleFunc("PATCH /api/invoices/{id}/line-items/{index}", handleUpdateLineItem)
	mux.HandleFunc("DELETE /api/invoices/{id}/line-items/{index}", handleRemoveLineItem)
	mux.HandleFunc("POST /api/invoices/{id}/submit", handleInvoiceTransition(orchestrators.ExecuteSubmitInvoice))
	mux.HandleFunc("POST /api/invoices/{id}/approve", handleInvoiceTransition(orchestrators.ExecuteApproveInvoice))
	mux.HandleFunc("POST /api/invoices/{id}/mark_paid", handleInvoiceTransition(orchestrators.ExecuteMarkInvoicePaid))
	mux.HandleFunc("POST /api/invoices/{id}/reject", handleRejectInvoice)
	mux.HandleFunc("GET /api/invoices/{id}/export.xlsx", handleExportInvoice)

	// Sessions
	mux.HandleFunc("GET /api/register-calendar", handleRegisterCalendar)
	mux.HandleFunc("GET /api/session-plans", handleListSessionPlans)
	mux.HandleFunc("POST /api/session-plans", handleCreateSessionPlan)
	mux.HandleFunc("PUT /api/session-plans/{id}", handleUpdateSessionPlan)
	mux.HandleFunc("GET /api/session-statuses", handleSessionStatuses)
	mux.HandleFunc("POST /api/registers", handleCreateRegister)

	// Club setup
	mux.HandleFunc("/api/coaches", handleCoaches)
	mux.HandleFunc("/api/periods", handlePeriods)
	mux.HandleFunc("/api/holidays", handleHolidays)
	mux.HandleFunc("/api/groups", handleGroups)
	mux.HandleFunc("/api/group-times", handleGroupTimes)
	mux.HandleFunc("/api/coach-rates", handleCoachRates)
	mux.HandleFunc("/api/accounts", handleAccounts)
}
