package web

import (
	"fmt"
	"net/http"
	"net/url"

	"crewcall/internal/adapters/ics"
	"crewcall/internal/adapters/token"
	shiftDomain "crewcall/internal/domain/shift"
)

// handleCalendarLink handles GET /api/calendar/link?volunteer_id=X.
// Returns a signed feed URL the volunteer can paste into a calendar app.
func handleCalendarLink(w http.ResponseWriter, r *http.Request) {
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
	if tokenSigner == nil {
		http.Error(w, "calendar feeds are not configured", http.StatusServiceUnavailable)
		return
	}

	signed, err := tokenSigner.Issue(token.PurposeCalendarFeed, volunteerID, timeNow())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, map[string]string{
		"url": fmt.Sprintf("%s/calendar/feed.ics?token=%s", baseURL, url.QueryEscape(signed)),
	})
}

// handleCalendarFeed handles GET /calendar/feed.ics?token=X.
// Authenticated by the signed token alone: calendar apps cannot log in.
func handleCalendarFeed(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "calendar feeds are not configured", http.StatusServiceUnavailable)
		return
	}
	volunteerID, err := tokenSigner.Verify(raw, token.PurposeCalendarFeed)
	if err != nil {
		http.Error(w, "invalid feed token", http.StatusUnauthorized)
		return
	}

	ctx := r.Context()
	vol, err := stores.VolunteerStore.GetByID(ctx, volunteerID)
	if err != nil {
		http.Error(w, "volunteer not found", http.StatusNotFound)
		return
	}
	ev, err := stores.EventStore.GetByID(ctx, vol.EventID)
	if err != nil {
		internalError(w, err)
		return
	}

	assignments, err := stores.ShiftStore.ListAssignmentsByVolunteer(ctx, volunteerID)
	if err != nil {
		internalError(w, err)
		return
	}

	var feedShifts []ics.FeedShift
	for _, a := range assignments {
		if a.Status == shiftDomain.AssignmentDeclined {
			continue
		}
		sh, err := stores.ShiftStore.GetShift(ctx, a.ShiftID)
		if err != nil {
			continue
		}
		teamName := ""
		if team, err := stores.ShiftStore.GetTeam(ctx, sh.TeamID); err == nil {
			teamName = team.Name
		}
		feedShifts = append(feedShifts, ics.FeedShift{Shift: sh, TeamName: teamName})
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	fmt.Fprint(w, ics.BuildPersonalFeed(ev, vol.Name, feedShifts))
}
