package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"courtside/internal/adapters/http/middleware"
	"courtside/internal/application/orchestrators"
	"courtside/internal/domain/apperr"
)

// Hours, rates and money go out as JSON numbers (amounts are already rounded
// to the cent). Request bodies may send either numbers or numeric strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string. A variable for testability.
var generateID = func() string {
	return uuid.New().String()
}

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts invoice notes to HTML; on failure the escaped source is returned.
func renderMarkdown(md string) string {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		slog.Warn("markdown_render_failed", "error", err.Error())
		return "<p>" + template.HTMLEscapeString(md) + "</p>"
	}
	return buf.String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// writeError maps domain error kinds to HTTP statuses; unknown errors become 500.
func writeError(w http.ResponseWriter, err error) {
	switch apperr.Kind(err) {
	case apperr.ErrValidation:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case apperr.ErrForbidden:
		http.Error(w, err.Error(), http.StatusForbidden)
	case apperr.ErrNotFound:
		http.Error(w, err.Error(), http.StatusNotFound)
	case apperr.ErrInvalidTransition, apperr.ErrPlanningClosed:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		internalError(w, err)
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err.Error())
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// requireAuth returns the session, or writes 401 and returns false.
func requireAuth(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireAdmin checks the session for an admin role and returns the session.
// Returns false if the request should not proceed.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return sess, false
	}
	if !sess.Role.IsAdmin() {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", "admin")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", name)
	}
	return n, nil
}

// pathIndex parses the {index} path value.
func pathIndex(r *http.Request) (int, error) {
	n, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, apperr.Validation("line item index must be an integer")
	}
	return n, nil
}

// handleHealthz reports liveness and, when a probe is configured, readiness.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if ready != nil {
		if err := ready(); err != nil {
			slog.Warn("healthz_failed", "error", err.Error())
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"Email"`
		Password string `json:"Password"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		Now:          timeNow,
	})
	if errors.Is(err, orchestrators.ErrInvalidCredentials) || errors.Is(err, orchestrators.ErrAccountLocked) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role, result.CoachID)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, result)
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me
func handleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"AccountID": sess.AccountID,
		"Email":     sess.Email,
		"Role":      string(sess.Role),
		"CoachID":   sess.CoachID,
	})
}

// handleChangePassword handles POST /api/account/password
// Other sessions of the account are revoked on success.
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	var input struct {
		CurrentPassword string `json:"CurrentPassword"`
		NewPassword     string `json:"NewPassword"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       sess.AccountID,
		CurrentPassword: input.CurrentPassword,
		NewPassword:     input.NewPassword,
	}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore, Now: timeNow})
	if err != nil {
		writeError(w, err)
		return
	}

	keep := ""
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		keep = cookie.Value
	}
	sessions.DeleteAccount(sess.AccountID, keep)
	w.WriteHeader(http.StatusNoContent)
}
