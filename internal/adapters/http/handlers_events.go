package web

import (
	"net/http"
	"time"

	"crewcall/internal/application/orchestrators"
	eventDomain "crewcall/internal/domain/event"
	programDomain "crewcall/internal/domain/program"
)

// handleEvents handles GET/POST/DELETE for /api/events
func handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		if _, ok := requireAuth(w, r); !ok {
			return
		}
		events, err := stores.EventStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if events == nil {
			w.Write([]byte("[]"))
			return
		}
		writeJSON(w, events)
		return
	}

	if r.Method == "POST" {
		sess, ok := requireAdmin(w, r)
		if !ok {
			return
		}
		var input struct {
			ID        string `json:"ID"`
			Name      string `json:"Name"`
			Location  string `json:"Location"`
			Timezone  string `json:"Timezone"`
			StartTime string `json:"StartTime"`
			EndTime   string `json:"EndTime"`
			AppsOpen  string `json:"AppsOpen"`
			AppsClose string `json:"AppsClose"`
			Active    bool   `json:"Active"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		parse := func(s string) (time.Time, bool) {
			t, err := time.Parse(time.RFC3339, s)
			return t, err == nil
		}
		start, ok1 := parse(input.StartTime)
		end, ok2 := parse(input.EndTime)
		open, ok3 := parse(input.AppsOpen)
		closeAt, ok4 := parse(input.AppsClose)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			http.Error(w, "times must be RFC3339", http.StatusBadRequest)
			return
		}

		ev := eventDomain.Event{
			ID:        input.ID,
			Name:      input.Name,
			Location:  input.Location,
			Timezone:  input.Timezone,
			StartTime: start,
			EndTime:   end,
			AppsOpen:  open,
			AppsClose: closeAt,
			Active:    input.Active,
			CreatedBy: sess.AccountID,
			CreatedAt: timeNow(),
		}
		created := ev.ID == ""
		if created {
			ev.ID = generateID()
		} else {
			// Updates keep the original creation metadata.
			if existing, err := stores.EventStore.GetByID(ctx, ev.ID); err == nil {
				ev.CreatedAt = existing.CreatedAt
				ev.CreatedBy = existing.CreatedBy
			}
		}
		if err := ev.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.EventStore.Save(ctx, ev); err != nil {
			internalError(w, err)
			return
		}
		if created {
			w.WriteHeader(http.StatusCreated)
		}
		writeJSON(w, ev)
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
		if err := stores.EventStore.Delete(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// handleActiveEvent handles GET /api/events/active.
// Unauthenticated so the public application form can render the event header.
func handleActiveEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ev, err := stores.EventStore.GetActive(r.Context())
	if err != nil {
		http.Error(w, "no active event", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"ID":                  ev.ID,
		"Name":                ev.Name,
		"Location":            ev.Location,
		"StartTime":           ev.StartTime,
		"EndTime":             ev.EndTime,
		"AcceptsApplications": ev.AcceptsApplications(timeNow()),
	})
}

// handleProgramSlots handles GET/POST/DELETE for /api/program/slots
func handleProgramSlots(w http.ResponseWriter, r *http.Request) {
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
		slots, err := stores.ProgramStore.ListSlotsByEvent(ctx, eventID)
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if slots == nil {
			w.Write([]byte("[]"))
			return
		}
		writeJSON(w, slots)
		return
	}

	if r.Method == "POST" {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var input struct {
			ID        string `json:"ID"`
			EventID   string `json:"EventID"`
			Title     string `json:"Title"`
			Stage     string `json:"Stage"`
			StartTime string `json:"StartTime"`
			EndTime   string `json:"EndTime"`
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

		slot := programDomain.Slot{
			ID:        input.ID,
			EventID:   input.EventID,
			Title:     input.Title,
			Stage:     input.Stage,
			StartTime: start,
			EndTime:   end,
		}
		created := slot.ID == ""
		if created {
			slot.ID = generateID()
		}
		if err := slot.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.ProgramStore.SaveSlot(ctx, slot); err != nil {
			internalError(w, err)
			return
		}
		if created {
			w.WriteHeader(http.StatusCreated)
		}
		writeJSON(w, slot)
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
		if err := stores.ProgramStore.DeleteSlot(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// handleInterests handles GET (own selection) and POST (replace selection)
// for /api/program/interests.
func handleInterests(w http.ResponseWriter, r *http.Request) {
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
		interests, err := stores.ProgramStore.ListInterestsByVolunteer(ctx, volunteerID)
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if interests == nil {
			w.Write([]byte("[]"))
			return
		}
		writeJSON(w, interests)
		return
	}

	if r.Method == "POST" {
		if _, ok := requireAuth(w, r); !ok {
			return
		}
		var input struct {
			VolunteerID string   `json:"VolunteerID"`
			SlotIDs     []string `json:"SlotIDs"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if !authorizeVolunteerAccess(w, r, input.VolunteerID) {
			return
		}

		deps := orchestrators.SelectInterestsDeps{
			ProgramStore: stores.ProgramStore,
			GenerateID:   generateID,
			Now:          timeNow,
		}
		err := orchestrators.ExecuteSelectInterests(ctx, orchestrators.SelectInterestsInput{
			VolunteerID: input.VolunteerID,
			SlotIDs:     input.SlotIDs,
		}, deps)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}
