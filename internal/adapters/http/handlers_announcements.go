package web

import (
	"errors"
	"net/http"

	"crewcall/internal/application/orchestrators"
	"crewcall/internal/domain/account"
	announcementDomain "crewcall/internal/domain/announcement"
)

// handleAnnouncements handles GET/POST/DELETE for /api/announcements
func handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		sess, ok := requireAuth(w, r)
		if !ok {
			return
		}
		eventID := r.URL.Query().Get("event_id")
		if eventID == "" {
			http.Error(w, "event_id is required", http.StatusBadRequest)
			return
		}

		// Volunteers only see published announcements; drafts are staff-only.
		var anns []announcementDomain.Announcement
		var err error
		if sess.Role == account.RoleAdmin || sess.Role == account.RoleLead {
			anns, err = stores.AnnouncementStore.ListByEvent(ctx, eventID)
		} else {
			anns, err = stores.AnnouncementStore.ListPublishedByEvent(ctx, eventID)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if anns == nil {
			w.Write([]byte("[]"))
			return
		}
		writeJSON(w, anns)
		return
	}

	if r.Method == "POST" {
		sess, ok := requireLeadOrAdmin(w, r)
		if !ok {
			return
		}
		var input struct {
			ID       string `json:"ID"`
			EventID  string `json:"EventID"`
			Title    string `json:"Title"`
			Body     string `json:"Body"`
			Audience string `json:"Audience"`
			TeamID   string `json:"TeamID"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		ann := announcementDomain.Announcement{
			ID:        input.ID,
			EventID:   input.EventID,
			Title:     input.Title,
			Body:      input.Body,
			Audience:  input.Audience,
			TeamID:    input.TeamID,
			Status:    announcementDomain.StatusDraft,
			CreatedBy: sess.AccountID,
			CreatedAt: timeNow(),
		}
		created := ann.ID == ""
		if created {
			ann.ID = generateID()
		} else if existing, err := stores.AnnouncementStore.GetByID(ctx, ann.ID); err == nil {
			if existing.Status == announcementDomain.StatusPublished {
				http.Error(w, "published announcements cannot be edited", http.StatusConflict)
				return
			}
			ann.CreatedBy = existing.CreatedBy
			ann.CreatedAt = existing.CreatedAt
		}
		if err := ann.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.AnnouncementStore.Save(ctx, ann); err != nil {
			internalError(w, err)
			return
		}
		if created {
			w.WriteHeader(http.StatusCreated)
		}
		writeJSON(w, ann)
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
		if err := stores.AnnouncementStore.Delete(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// handleDraftAnnouncement handles POST /api/announcements/draft.
// Asks the configured AI provider for a body; nothing is stored.
func handleDraftAnnouncement(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireLeadOrAdmin(w, r)
	if !ok {
		return
	}
	if drafter == nil {
		http.Error(w, "drafting is not configured", http.StatusServiceUnavailable)
		return
	}

	var input struct {
		EventID string `json:"EventID"`
		Prompt  string `json:"Prompt"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	deps := orchestrators.DraftAnnouncementDeps{
		EventStore: stores.EventStore,
		Drafter:    drafter,
	}
	draft, err := orchestrators.ExecuteDraftAnnouncement(r.Context(), orchestrators.DraftAnnouncementInput{
		EventID:     input.EventID,
		Prompt:      input.Prompt,
		RequesterID: sess.AccountID,
	}, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrEmptyPrompt) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, map[string]string{"draft": draft})
}

// handlePublishAnnouncement handles POST /api/announcements/publish
func handlePublishAnnouncement(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireLeadOrAdmin(w, r)
	if !ok {
		return
	}

	var input struct {
		AnnouncementID string `json:"AnnouncementID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	deps := orchestrators.PublishAnnouncementDeps{
		AnnouncementStore: stores.AnnouncementStore,
		VolunteerStore:    stores.VolunteerStore,
		MessageStore:      stores.MessageStore,
		OutboxStore:       stores.OutboxStore,
		EmailSender:       emailSender,
		EmailFrom:         emailFromAddress,
		GenerateID:        generateID,
		Now:               timeNow,
	}
	result, err := orchestrators.ExecutePublishAnnouncement(r.Context(), orchestrators.PublishAnnouncementInput{
		AnnouncementID: input.AnnouncementID,
		PublisherID:    sess.AccountID,
	}, deps)
	if err != nil {
		switch {
		case errors.Is(err, announcementDomain.ErrAlreadyPublished),
			errors.Is(err, orchestrators.ErrNoRecipients):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	writeJSON(w, result)
}

// handleNotifySMS handles POST /api/sms
func handleNotifySMS(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireLeadOrAdmin(w, r)
	if !ok {
		return
	}

	var input struct {
		VolunteerIDs []string `json:"VolunteerIDs"`
		Body         string   `json:"Body"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	deps := orchestrators.NotifySMSDeps{
		VolunteerStore: stores.VolunteerStore,
		MessageStore:   stores.MessageStore,
		OutboxStore:    stores.OutboxStore,
		SMSSender:      smsSender,
		GenerateID:     generateID,
		Now:            timeNow,
	}
	result, err := orchestrators.ExecuteNotifySMS(r.Context(), orchestrators.NotifySMSInput{
		VolunteerIDs: input.VolunteerIDs,
		Body:         input.Body,
		SenderID:     sess.AccountID,
	}, deps)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, result)
}

// handleMessages handles GET /api/messages. With volunteer_id, the caller's
// own delivery history; without, the recent log for leads and admins.
func handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAuth(w, r); !ok {
		return
	}

	ctx := r.Context()
	if volunteerID := r.URL.Query().Get("volunteer_id"); volunteerID != "" {
		if !authorizeVolunteerAccess(w, r, volunteerID) {
			return
		}
		logs, err := stores.MessageStore.ListByVolunteer(ctx, volunteerID)
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if logs == nil {
			w.Write([]byte("[]"))
			return
		}
		writeJSON(w, logs)
		return
	}

	if _, ok := requireLeadOrAdmin(w, r); !ok {
		return
	}
	logs, err := stores.MessageStore.ListRecent(ctx, 100)
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if logs == nil {
		w.Write([]byte("[]"))
		return
	}
	writeJSON(w, logs)
}
