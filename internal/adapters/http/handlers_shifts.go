package web

import (
	"errors"
	"net/http"
	"time"

	"crewcall/internal/application/orchestrators"
	"crewcall/internal/application/projections"
	shiftDomain "crewcall/internal/domain/shift"
)

// handleTeams handles GET/POST/DELETE for /api/teams
func handleTeams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		if _, ok := requireAuth(w, r); !ok {
			return
		}
		eventID := r.URL.Query().Get("event_id")
		if eventID == "" {
			http.Error(w, "event_id is required", http.StatusBadRequest)
			return
		}
		teams, err := stores.ShiftStore.ListTeamsByEvent(ctx, eventID)
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if teams == nil {
			w.Write([]byte("[]"))
			return
		}
		writeJSON(w, teams)
		return
	}

	if r.Method == "POST" {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var input struct {
			ID            string `json:"ID"`
			EventID       string `json:"EventID"`
			Name          string `json:"Name"`
			LeadAccountID string `json:"LeadAccountID"`
			Visible       bool   `json:"Visible"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		team := shiftDomain.Team{
			ID:            input.ID,
			EventID:       input.EventID,
			Name:          input.Name,
			LeadAccountID: input.LeadAccountID,
			Visible:       input.Visible,
			CreatedAt:     timeNow(),
		}
		created := team.ID == ""
		if created {
			team.ID = generateID()
		} else if existing, err := stores.ShiftStore.GetTeam(ctx, team.ID); err == nil {
			team.CreatedAt = existing.CreatedAt
		}
		if err := team.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.ShiftStore.SaveTeam(ctx, team); err != nil {
			internalError(w, err)
			return
		}
		if created {
			w.WriteHeader(http.StatusCreated)
		}
		writeJSON(w, team)
		return
	}

	if r.Method == "DELETE" {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := stores.ShiftStore.DeleteTeam(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// handleShiftTemplates handles GET/POST/DELETE for /api/shift-templates
func handleShiftTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		if _, ok := requireLeadOrAdmin(w, r); !ok {
			return
		}
		teamID := r.URL.Query().Get("team_id")
		if teamID == "" {
			http.Error(w, "team_id is required", http.StatusBadRequest)
			return
		}
		templates, err := stores.ShiftStore.ListTemplatesByTeam(ctx, teamID)
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if templates == nil {
			w.Write([]byte("[]"))
			return
		}
		writeJSON(w, templates)
		return
	}

	if r.Method == "POST" {
		if _, ok := requireLeadOrAdmin(w, r); !ok {
			return
		}
		var input struct {
			ID              string `json:"ID"`
			TeamID          string `json:"TeamID"`
			Label           string `json:"Label"`
			StartTime       string `json:"StartTime"`
			DurationMinutes int    `json:"DurationMinutes"`
			Headcount       int    `json:"Headcount"`
			RRule           string `json:"RRule"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		start, err := time.Parse(time.RFC3339, input.StartTime)
		if err != nil {
			http.Error(w, "StartTime must be RFC3339", http.StatusBadRequest)
			return
		}

		tmpl := shiftDomain.Template{
			ID:        input.ID,
			TeamID:    input.TeamID,
			Label:     input.Label,
			StartTime: start,
			Duration:  time.Duration(input.DurationMinutes) * time.Minute,
			Headcount: input.Headcount,
			RRule:     input.RRule,
		}
		created := tmpl.ID == ""
		if created {
			tmpl.ID = generateID()
		}
		if err := tmpl.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.ShiftStore.SaveTemplate(ctx, tmpl); err != nil {
			internalError(w, err)
			return
		}
		if created {
			w.WriteHeader(http.StatusCreated)
		}
		writeJSON(w, tmpl)
		return
	}

	if r.Method == "DELETE" {
		if _, ok := requireLeadOrAdmin(w, r); !ok {
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := stores.ShiftStore.DeleteTemplate(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// handleGenerateShifts handles POST /api/shift-templates/generate
func handleGenerateShifts(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireLeadOrAdmin(w, r); !ok {
		return
	}

	var input orchestrators.GenerateShiftsInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	deps := orchestrators.GenerateShiftsDeps{
		ShiftStore: stores.ShiftStore,
		EventStore: stores.EventStore,
		GenerateID: generateID,
	}
	result, err := orchestrators.ExecuteGenerateShifts(r.Context(), input, deps)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, result)
}

// handleShifts handles GET/POST/DELETE for /api/shifts (ad-hoc shift management)
func handleShifts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		if _, ok := requireAuth(w, r); !ok {
			return
		}
		teamID := r.URL.Query().Get("team_id")
		if teamID == "" {
			http.Error(w, "team_id is required", http.StatusBadRequest)
			return
		}
		shifts, err := stores.ShiftStore.ListShiftsByTeam(ctx, teamID)
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if shifts == nil {
			w.Write([]byte("[]"))
			return
		}
		writeJSON(w, shifts)
		return
	}

	if r.Method == "POST" {
		if _, ok := requireLeadOrAdmin(w, r); !ok {
			return
		}
		var input struct {
			ID        string `json:"ID"`
			TeamID    string `json:"TeamID"`
			Label     string `json:"Label"`
			StartTime string `json:"StartTime"`
			EndTime   string `json:"EndTime"`
			Headcount int    `json:"Headcount"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		start, err1 := time.Parse(time.RFC3339, input.StartTime)
		end, err2 := time.Parse(time.RFC3339, input.EndTime)
		if err1 != nil || err2 != nil {
			http.Error(w, "times must be RFC3339", http.StatusBadRequest)
			return
		}

		sh := shiftDomain.Shift{
			ID:        input.ID,
			TeamID:    input.TeamID,
			Label:     input.Label,
			StartTime: start,
			EndTime:   end,
			Headcount: input.Headcount,
		}
		created := sh.ID == ""
		if created {
			sh.ID = generateID()
		} else if existing, err := stores.ShiftStore.GetShift(ctx, sh.ID); err == nil {
			// Manual edits to a generated shift pin it against regeneration.
			sh.TemplateID = existing.TemplateID
			sh.Locked = existing.Locked || existing.TemplateID != ""
		}
		if err := sh.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.ShiftStore.SaveShift(ctx, sh); err != nil {
			internalError(w, err)
			return
		}
		if created {
			w.WriteHeader(http.StatusCreated)
		}
		writeJSON(w, sh)
		return
	}

	if r.Method == "DELETE" {
		if _, ok := requireLeadOrAdmin(w, r); !ok {
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := stores.ShiftStore.DeleteShift(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// handleShiftLock handles POST /api/shifts/lock
func handleShiftLock(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireLeadOrAdmin(w, r); !ok {
		return
	}

	var input struct {
		ShiftID string `json:"ShiftID"`
		Locked  bool   `json:"Locked"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	sh, err := stores.ShiftStore.GetShift(ctx, input.ShiftID)
	if err != nil {
		http.Error(w, "shift not found", http.StatusNotFound)
		return
	}
	sh.Locked = input.Locked
	if err := stores.ShiftStore.SaveShift(ctx, sh); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, sh)
}

// handleTimeline handles GET /api/timeline?event_id=X
func handleTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		http.Error(w, "event_id is required", http.StatusBadRequest)
		return
	}

	deps := projections.GetScheduleTimelineDeps{
		ShiftStore:     stores.ShiftStore,
		VolunteerStore: stores.VolunteerStore,
		EventStore:     stores.EventStore,
	}
	result, err := projections.QueryScheduleTimeline(r.Context(), projections.GetScheduleTimelineQuery{
		EventID:         eventID,
		ViewerRole:      sess.Role,
		ViewerAccountID: sess.AccountID,
	}, deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}

// handleAssignments handles POST (assign) and DELETE (unassign) for /api/assignments
func handleAssignments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "POST" {
		sess, ok := requireLeadOrAdmin(w, r)
		if !ok {
			return
		}
		var input struct {
			ShiftID     string `json:"ShiftID"`
			VolunteerID string `json:"VolunteerID"`
			Force       bool   `json:"Force"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		deps := orchestrators.AssignVolunteerDeps{
			ShiftStore:      stores.ShiftStore,
			VolunteerStore:  stores.VolunteerStore,
			EventStore:      stores.EventStore,
			PreferenceStore: stores.PreferenceStore,
			ProgramStore:    stores.ProgramStore,
			GenerateID:      generateID,
			Now:             timeNow,
		}
		result, err := orchestrators.ExecuteAssignVolunteer(ctx, orchestrators.AssignVolunteerInput{
			ShiftID:     input.ShiftID,
			VolunteerID: input.VolunteerID,
			AssignedBy:  sess.AccountID,
			Force:       input.Force,
		}, deps)
		if err != nil {
			switch {
			case errors.Is(err, orchestrators.ErrShiftFull),
				errors.Is(err, orchestrators.ErrAlreadyAssigned),
				errors.Is(err, orchestrators.ErrOverlappingShift),
				errors.Is(err, orchestrators.ErrVolunteerUnavailable),
				errors.Is(err, orchestrators.ErrNotApproved):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, result)
		return
	}

	if r.Method == "DELETE" {
		if _, ok := requireLeadOrAdmin(w, r); !ok {
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := stores.ShiftStore.DeleteAssignment(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// handleRespondAssignment handles POST /api/assignments/respond
func handleRespondAssignment(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAuth(w, r); !ok {
		return
	}

	var input struct {
		AssignmentID string `json:"AssignmentID"`
		VolunteerID  string `json:"VolunteerID"`
		Confirm      bool   `json:"Confirm"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if !authorizeVolunteerAccess(w, r, input.VolunteerID) {
		return
	}

	deps := orchestrators.RespondAssignmentDeps{
		ShiftStore: stores.ShiftStore,
		Now:        timeNow,
	}
	err := orchestrators.ExecuteRespondAssignment(r.Context(), orchestrators.RespondAssignmentInput{
		AssignmentID: input.AssignmentID,
		VolunteerID:  input.VolunteerID,
		Confirm:      input.Confirm,
	}, deps)
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrNotYourAssignment):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, shiftDomain.ErrAlreadyDecided):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
