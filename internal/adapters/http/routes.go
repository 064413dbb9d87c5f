package web

import "net/http"

// registerRoutes attaches all application routes to the mux.
// Handlers enforce their own role requirements; the Auth middleware only
// attaches the session to the context.
func registerRoutes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)
	mux.HandleFunc("/api/change-password", handleChangePassword)
	mux.HandleFunc("/api/session", handleSession)
	mux.HandleFunc("/confirm-email", handleConfirmEmail)

	// Passkeys
	mux.HandleFunc("/api/passkeys/register/begin", handlePasskeyRegisterBegin)
	mux.HandleFunc("/api/passkeys/register/finish", handlePasskeyRegisterFinish)
	mux.HandleFunc("/api/passkeys/login/begin", handlePasskeyLoginBegin)
	mux.HandleFunc("/api/passkeys/login/finish", handlePasskeyLoginFinish)
	mux.HandleFunc("/api/passkeys", handlePasskeys)

	// Events and program
	mux.HandleFunc("/api/events", handleEvents)
	mux.HandleFunc("/api/events/active", handleActiveEvent)
	mux.HandleFunc("/api/program/slots", handleProgramSlots)
	mux.HandleFunc("/api/program/interests", handleInterests)

	// Volunteers
	mux.HandleFunc("/api/apply", handleApply)
	mux.HandleFunc("/api/volunteers", handleVolunteers)
	mux.HandleFunc("/api/volunteers/review", handleReviewApplication)
	mux.HandleFunc("/api/volunteers/withdraw", handleWithdraw)
	mux.HandleFunc("/api/volunteers/profile", handleVolunteerProfile)

	// Preferences and availability
	mux.HandleFunc("/api/preferences", handlePreferences)
	mux.HandleFunc("/api/availability", handleAvailabilityGrid)

	// Teams, shift templates, shifts, assignments
	mux.HandleFunc("/api/teams", handleTeams)
	mux.HandleFunc("/api/shift-templates", handleShiftTemplates)
	mux.HandleFunc("/api/shift-templates/generate", handleGenerateShifts)
	mux.HandleFunc("/api/shifts", handleShifts)
	mux.HandleFunc("/api/shifts/lock", handleShiftLock)
	mux.HandleFunc("/api/timeline", handleTimeline)
	mux.HandleFunc("/api/assignments", handleAssignments)
	mux.HandleFunc("/api/assignments/respond", handleRespondAssignment)

	// Vendors
	mux.HandleFunc("/api/vendors", handleVendors)

	// Announcements and messaging
	mux.HandleFunc("/api/announcements", handleAnnouncements)
	mux.HandleFunc("/api/announcements/draft", handleDraftAnnouncement)
	mux.HandleFunc("/api/announcements/publish", handlePublishAnnouncement)
	mux.HandleFunc("/api/sms", handleNotifySMS)
	mux.HandleFunc("/api/messages", handleMessages)

	// Calendar feed
	mux.HandleFunc("/api/calendar/link", handleCalendarLink)
	mux.HandleFunc("/calendar/feed.ics", handleCalendarFeed)

	// Admin
	mux.HandleFunc("/api/dashboard", handleDashboard)
	mux.HandleFunc("/api/admin/outbox", handleAdminOutbox)
	mux.HandleFunc("/api/admin/outbox/", handleAdminOutbox)
	mux.HandleFunc("/api/admin/audit", handleAdminAudit)
	mux.HandleFunc("/api/admin/perf", handleAdminPerf)
}
