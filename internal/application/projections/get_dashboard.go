package projections

import (
	"context"

	"crewcall/internal/domain/announcement"
	"crewcall/internal/domain/outbox"
	"crewcall/internal/domain/shift"
	"crewcall/internal/domain/volunteer"
)

// DashboardVolunteerStore defines the volunteer store interface needed by the dashboard.
type DashboardVolunteerStore interface {
	ListByEvent(ctx context.Context, eventID string) ([]volunteer.Volunteer, error)
}

// DashboardShiftStore defines the shift store interface needed by the dashboard.
type DashboardShiftStore interface {
	ListShiftsByEvent(ctx context.Context, eventID string) ([]shift.Shift, error)
	ListAssignmentsByShift(ctx context.Context, shiftID string) ([]shift.Assignment, error)
}

// DashboardAnnouncementStore defines the announcement store interface needed by the dashboard.
type DashboardAnnouncementStore interface {
	ListPublishedByEvent(ctx context.Context, eventID string) ([]announcement.Announcement, error)
}

// DashboardOutboxStore defines the outbox store interface needed by the dashboard.
type DashboardOutboxStore interface {
	ListFailed(ctx context.Context, limit int) ([]outbox.Entry, error)
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	VolunteerStore    DashboardVolunteerStore
	ShiftStore        DashboardShiftStore
	AnnouncementStore DashboardAnnouncementStore
	OutboxStore       DashboardOutboxStore // optional: nil skips delivery health
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	PendingApplications int                         `json:"pending_applications"`
	ApprovedVolunteers  int                         `json:"approved_volunteers"`
	WithdrawnVolunteers int                         `json:"withdrawn_volunteers"`
	TotalShifts         int                         `json:"total_shifts"`
	UnfilledShifts      int                         `json:"unfilled_shifts"`
	UnconfirmedShifts   int                         `json:"unconfirmed_shifts"`
	Announcements       []announcement.Announcement `json:"announcements"`
	FailedDeliveries    int                         `json:"failed_deliveries"`
}

// QueryDashboard assembles the admin landing page counts for an event:
// application pipeline, staffing gaps and delivery health.
// PRE: eventID names an existing event
// POST: UnfilledShifts counts shifts with fewer active assignees than headcount
func QueryDashboard(ctx context.Context, eventID string, deps GetDashboardDeps) (DashboardResult, error) {
	var result DashboardResult

	vols, err := deps.VolunteerStore.ListByEvent(ctx, eventID)
	if err != nil {
		return DashboardResult{}, err
	}
	for _, v := range vols {
		switch v.Status {
		case volunteer.StatusApplied:
			result.PendingApplications++
		case volunteer.StatusApproved:
			result.ApprovedVolunteers++
		case volunteer.StatusWithdrawn:
			result.WithdrawnVolunteers++
		}
	}

	shifts, err := deps.ShiftStore.ListShiftsByEvent(ctx, eventID)
	if err != nil {
		return DashboardResult{}, err
	}
	result.TotalShifts = len(shifts)
	for _, s := range shifts {
		assignments, err := deps.ShiftStore.ListAssignmentsByShift(ctx, s.ID)
		if err != nil {
			return DashboardResult{}, err
		}
		active, confirmed := 0, 0
		for _, a := range assignments {
			if a.Status == shift.AssignmentDeclined {
				continue
			}
			active++
			if a.Status == shift.AssignmentConfirmed {
				confirmed++
			}
		}
		if active < s.Headcount {
			result.UnfilledShifts++
		}
		if confirmed < active {
			result.UnconfirmedShifts++
		}
	}

	anns, err := deps.AnnouncementStore.ListPublishedByEvent(ctx, eventID)
	if err != nil {
		return DashboardResult{}, err
	}
	result.Announcements = anns
	if result.Announcements == nil {
		result.Announcements = []announcement.Announcement{}
	}

	if deps.OutboxStore != nil {
		failed, err := deps.OutboxStore.ListFailed(ctx, 100)
		if err != nil {
			return DashboardResult{}, err
		}
		result.FailedDeliveries = len(failed)
	}

	return result, nil
}
