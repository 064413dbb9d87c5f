package web

import (
	"net/http"

	"crewcall/internal/application/orchestrators"
	"crewcall/internal/application/projections"
)

// handlePreferences handles GET and POST for /api/preferences?volunteer_id=X
func handlePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
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
		prefs, err := stores.PreferenceStore.GetByVolunteer(ctx, volunteerID)
		if err != nil {
			// No saved row yet is not an error for the UI: it renders defaults.
			writeJSON(w, map[string]any{"VolunteerID": volunteerID, "TimingConfigured": false})
			return
		}
		writeJSON(w, prefs)
		return
	}

	if r.Method == "POST" {
		if _, ok := requireAuth(w, r); !ok {
			return
		}
		var input orchestrators.UpdatePreferencesInput
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if !authorizeVolunteerAccess(w, r, input.VolunteerID) {
			return
		}

		deps := orchestrators.UpdatePreferencesDeps{PreferenceStore: stores.PreferenceStore}
		if err := orchestrators.ExecuteUpdatePreferences(ctx, input, deps); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// handleAvailabilityGrid handles GET /api/availability?volunteer_id=X.
// Returns the derived per-hour expectation grid for the volunteer's event.
func handleAvailabilityGrid(w http.ResponseWriter, r *http.Request) {
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

	deps := projections.GetAvailabilityGridDeps{
		VolunteerStore:  stores.VolunteerStore,
		EventStore:      stores.EventStore,
		PreferenceStore: stores.PreferenceStore,
		ProgramStore:    stores.ProgramStore,
	}
	result, err := projections.QueryAvailabilityGrid(r.Context(), volunteerID, deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}
