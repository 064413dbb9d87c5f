package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	auditStore "crewcall/internal/adapters/storage/audit"
	"crewcall/internal/application/orchestrators"
	auditDomain "crewcall/internal/domain/audit"
	"crewcall/internal/domain/outbox"
)

// handleAdminOutbox handles admin endpoints for managing outbox entries.
// Routes: GET /api/admin/outbox (list), POST /api/admin/outbox/:id/retry,
// POST /api/admin/outbox/:id/abandon
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case "GET":
		limit := 50
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		var entries []outbox.Entry
		var err error
		if r.URL.Query().Get("status") == "failed" {
			entries, err = stores.OutboxStore.ListFailed(ctx, limit)
		} else {
			entries, err = stores.OutboxStore.ListPending(ctx, limit)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if entries == nil {
			w.Write([]byte("[]"))
			return
		}
		writeJSON(w, entries)

	case "POST":
		// Extract entry ID from path: /api/admin/outbox/:id/:action
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 5 || parts[2] != "outbox" {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		entryID := parts[3]
		action := parts[4]

		deps := orchestrators.ManualOutboxDeps{
			OutboxStore: stores.OutboxStore,
			EmailSender: emailSender,
			SMSSender:   smsSender,
			Now:         timeNow,
		}

		var entry outbox.Entry
		var err error
		switch action {
		case "retry":
			entry, err = orchestrators.ExecuteRetryOutboxEntry(ctx, entryID, deps)
		case "abandon":
			entry, err = orchestrators.ExecuteAbandonOutboxEntry(ctx, entryID, deps)
		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}
		if err != nil {
			if errors.Is(err, orchestrators.ErrEntryTerminal) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, entry)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleAdminAudit handles GET /api/admin/audit with optional filters.
func handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	filter := auditStore.Filter{}
	if category := r.URL.Query().Get("category"); category != "" {
		cat := auditDomain.Category(category)
		filter.Category = &cat
	}
	if action := r.URL.Query().Get("action"); action != "" {
		act := auditDomain.Action(action)
		filter.Action = &act
	}
	if severity := r.URL.Query().Get("severity"); severity != "" {
		sev := auditDomain.Severity(severity)
		filter.Severity = &sev
	}
	if actorID := r.URL.Query().Get("actor_id"); actorID != "" {
		filter.ActorID = &actorID
	}
	if resourceID := r.URL.Query().Get("resource_id"); resourceID != "" {
		filter.ResourceID = &resourceID
	}
	if from := r.URL.Query().Get("from"); from != "" {
		filter.From = &from
	}
	if to := r.URL.Query().Get("to"); to != "" {
		filter.To = &to
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	events, err := stores.AuditStore.List(r.Context(), filter, limit)
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
}
