package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"crewcall/internal/adapters/http/middleware"
	"crewcall/internal/application/orchestrators"
	"crewcall/internal/application/projections"
	"crewcall/internal/domain/account"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func requireAuth(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	return sess, true
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	if sess.Role != account.RoleAdmin {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", "admin")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

func requireLeadOrAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	if sess.Role != account.RoleAdmin && sess.Role != account.RoleLead {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", "lead")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.LoginInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	deps := orchestrators.LoginDeps{AccountStore: stores.AccountStore}
	result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	if err != nil {
		// A single message for all credential failures avoids user enumeration.
		status := http.StatusUnauthorized
		if errors.Is(err, orchestrators.ErrAccountLocked) || errors.Is(err, orchestrators.ErrEmailNotConfirmed) {
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}

	tok, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, tok)

	writeJSON(w, map[string]string{
		"account_id": result.AccountID,
		"email":      result.Email,
		"role":       result.Role,
	})
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie("crewcall_session")
	if err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleSession handles GET /api/session, returning the caller's identity.
func handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]string{
		"account_id": sess.AccountID,
		"email":      sess.Email,
		"role":       sess.Role,
	})
}

// handleChangePassword handles POST /api/change-password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
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

	deps := orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore}
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       sess.AccountID,
		CurrentPassword: input.CurrentPassword,
		NewPassword:     input.NewPassword,
	}, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrWrongCurrentPassword) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Other devices must log in again with the new password.
	sessions.DeleteByAccount(sess.AccountID)
	if tok, serr := sessions.Create(sess.AccountID, sess.Email, sess.Role); serr == nil {
		middleware.SetSessionCookie(w, tok)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleConfirmEmail handles GET /confirm-email?token=X from the emailed link.
func handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	raw := r.URL.Query().Get("token")
	if raw == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}
	if tokenSigner == nil {
		http.Error(w, "confirmation links are not configured", http.StatusServiceUnavailable)
		return
	}

	deps := orchestrators.ConfirmEmailDeps{
		AccountStore: stores.AccountStore,
		TokenSigner:  tokenSigner,
	}
	if _, err := orchestrators.ExecuteConfirmEmail(r.Context(), raw, deps); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/?confirmed=1", http.StatusSeeOther)
}

// handleDashboard handles GET /api/dashboard?event_id=X
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireLeadOrAdmin(w, r); !ok {
		return
	}
	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		http.Error(w, "event_id is required", http.StatusBadRequest)
		return
	}

	deps := projections.GetDashboardDeps{
		VolunteerStore:    stores.VolunteerStore,
		ShiftStore:        stores.ShiftStore,
		AnnouncementStore: stores.AnnouncementStore,
		OutboxStore:       stores.OutboxStore,
	}
	result, err := projections.QueryDashboard(r.Context(), eventID, deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}

// handleAdminPerf handles GET /api/admin/perf?minutes=N&top=N
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusServiceUnavailable)
		return
	}

	minutes := 60
	if s := r.URL.Query().Get("minutes"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 24*60 {
			minutes = n
		}
	}
	topN := 20
	if s := r.URL.Query().Get("top"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			topN = n
		}
	}

	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, perfCollector.Snapshot(since, topN))
}
