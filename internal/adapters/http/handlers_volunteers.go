package web

import (
	"errors"
	"net/http"

	"crewcall/internal/adapters/http/middleware"
	"crewcall/internal/application/orchestrators"
	"crewcall/internal/application/projections"
	"crewcall/internal/domain/account"
	"crewcall/internal/domain/volunteer"
)

// authorizeVolunteerAccess checks that the caller may act on the given
// volunteer record: leads and admins always may, volunteers only on their own.
func authorizeVolunteerAccess(w http.ResponseWriter, r *http.Request, volunteerID string) bool {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return false
	}
	if sess.Role == account.RoleAdmin || sess.Role == account.RoleLead {
		return true
	}
	vol, err := stores.VolunteerStore.GetByID(r.Context(), volunteerID)
	if err != nil {
		http.Error(w, "volunteer not found", http.StatusNotFound)
		return false
	}
	if vol.AccountID != sess.AccountID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// handleApply handles POST /api/apply. Open to the public: first-time
// applicants create an account as a side effect, logged-in volunteers
// apply against their existing one.
func handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.ApplyInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// A logged-in caller applies as themselves regardless of the posted email.
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		input.Email = sess.Email
	}

	deps := orchestrators.ApplyDeps{
		AccountStore:   stores.AccountStore,
		VolunteerStore: stores.VolunteerStore,
		EventStore:     stores.EventStore,
		EmailSender:    emailSender,
		TokenSigner:    tokenSigner,
		BaseURL:        baseURL,
		GenerateID:     generateID,
		Now:            timeNow,
	}
	volunteerID, err := orchestrators.ExecuteApply(r.Context(), input, deps)
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrApplicationsClosed),
			errors.Is(err, orchestrators.ErrAlreadyApplied):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"volunteer_id": volunteerID})
}

// handleVolunteers handles GET /api/volunteers?event_id=X&status=Y for leads
// and admins.
func handleVolunteers(w http.ResponseWriter, r *http.Request) {
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

	ctx := r.Context()
	status := r.URL.Query().Get("status")
	var vols []volunteer.Volunteer
	var err error
	if status != "" {
		vols, err = stores.VolunteerStore.ListByEventAndStatus(ctx, eventID, status)
	} else {
		vols, err = stores.VolunteerStore.ListByEvent(ctx, eventID)
	}
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if vols == nil {
		w.Write([]byte("[]"))
		return
	}
	writeJSON(w, vols)
}

// handleReviewApplication handles POST /api/volunteers/review
func handleReviewApplication(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireLeadOrAdmin(w, r)
	if !ok {
		return
	}

	var input struct {
		VolunteerID string `json:"VolunteerID"`
		Approve     bool   `json:"Approve"`
		TeamID      string `json:"TeamID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	deps := orchestrators.ReviewApplicationDeps{
		VolunteerStore: stores.VolunteerStore,
		EventStore:     stores.EventStore,
		EmailSender:    emailSender,
		AuditStore:     stores.AuditStore,
		Now:            timeNow,
	}
	err := orchestrators.ExecuteReviewApplication(r.Context(), orchestrators.ReviewApplicationInput{
		VolunteerID: input.VolunteerID,
		Approve:     input.Approve,
		TeamID:      input.TeamID,
		DeciderID:   sess.AccountID,
		DeciderMail: sess.Email,
	}, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrNotPendingReview) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWithdraw handles POST /api/volunteers/withdraw
func handleWithdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAuth(w, r); !ok {
		return
	}

	var input struct {
		VolunteerID string `json:"VolunteerID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if !authorizeVolunteerAccess(w, r, input.VolunteerID) {
		return
	}

	deps := orchestrators.WithdrawDeps{
		VolunteerStore: stores.VolunteerStore,
		Assignments:    stores.ShiftStore,
	}
	if err := orchestrators.ExecuteWithdraw(r.Context(), input.VolunteerID, deps); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVolunteerProfile handles GET /api/volunteers/profile?volunteer_id=X
func handleVolunteerProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAuth(w, r); !ok {
		return
	}
	volunteerID := r.URL.Query().Get("volunteer_id")
	if volunteerID == "" {
		http.Error(w, "volunteer_id is required", http.StatusBadRequest)
		return
	}
	if !authorizeVolunteerAccess(w, r, volunteerID) {
		return
	}

	deps := projections.GetVolunteerProfileDeps{
		VolunteerStore:  stores.VolunteerStore,
		PreferenceStore: stores.PreferenceStore,
		ProgramStore:    stores.ProgramStore,
		ShiftStore:      stores.ShiftStore,
	}
	result, err := projections.QueryVolunteerProfile(r.Context(), volunteerID, deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}
