package web

import (
	"net/http"

	vendorDomain "crewcall/internal/domain/vendor"
)

// handleVendors handles GET/POST/DELETE for /api/vendors
func handleVendors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		if _, ok := requireLeadOrAdmin(w, r); !ok {
			return
		}
		eventID := r.URL.Query().Get("event_id")
		if eventID == "" {
			http.Error(w, "event_id is required", http.StatusBadRequest)
			return
		}
		vendors, err := stores.VendorStore.ListByEvent(ctx, eventID)
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if vendors == nil {
			w.Write([]byte("[]"))
			return
		}
		writeJSON(w, vendors)
		return
	}

	if r.Method == "POST" {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var input struct {
			ID           string `json:"ID"`
			EventID      string `json:"EventID"`
			Name         string `json:"Name"`
			ContactName  string `json:"ContactName"`
			ContactEmail string `json:"ContactEmail"`
			ContactPhone string `json:"ContactPhone"`
			Service      string `json:"Service"`
			Notes        string `json:"Notes"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		v := vendorDomain.Vendor{
			ID:           input.ID,
			EventID:      input.EventID,
			Name:         input.Name,
			ContactName:  input.ContactName,
			ContactEmail: input.ContactEmail,
			ContactPhone: input.ContactPhone,
			Service:      input.Service,
			Notes:        input.Notes,
			CreatedAt:    timeNow(),
		}
		created := v.ID == ""
		if created {
			v.ID = generateID()
		} else if existing, err := stores.VendorStore.GetByID(ctx, v.ID); err == nil {
			v.CreatedAt = existing.CreatedAt
		}
		if err := v.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.VendorStore.Save(ctx, v); err != nil {
			internalError(w, err)
			return
		}
		if created {
			w.WriteHeader(http.StatusCreated)
		}
		writeJSON(w, v)
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
		if err := stores.VendorStore.Delete(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}
