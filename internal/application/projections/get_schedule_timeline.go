package projections

import (
	"context"
	"sort"
	"time"

	"crewcall/internal/domain/account"
	"crewcall/internal/domain/event"
	"crewcall/internal/domain/shift"
	"crewcall/internal/domain/volunteer"
)

// TimelineShiftStore defines the shift store interface needed by the timeline projection.
type TimelineShiftStore interface {
	ListTeamsByEvent(ctx context.Context, eventID string) ([]shift.Team, error)
	ListShiftsByTeam(ctx context.Context, teamID string) ([]shift.Shift, error)
	ListAssignmentsByShift(ctx context.Context, shiftID string) ([]shift.Assignment, error)
}

// TimelineVolunteerStore defines the volunteer store interface needed by the timeline projection.
type TimelineVolunteerStore interface {
	GetByID(ctx context.Context, id string) (volunteer.Volunteer, error)
}

// TimelineEventStore defines the event store interface needed by the timeline projection.
type TimelineEventStore interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

// GetScheduleTimelineQuery carries input for the timeline projection.
type GetScheduleTimelineQuery struct {
	EventID         string
	ViewerRole      string // admin, lead, volunteer
	ViewerAccountID string
}

// GetScheduleTimelineDeps holds dependencies for the timeline projection.
type GetScheduleTimelineDeps struct {
	ShiftStore     TimelineShiftStore
	VolunteerStore TimelineVolunteerStore
	EventStore     TimelineEventStore
}

// TimelineAssignee is one volunteer on a shift.
type TimelineAssignee struct {
	AssignmentID string `json:"assignment_id"`
	VolunteerID  string `json:"volunteer_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
}

// TimelineShift is one shift row with its staffing state.
type TimelineShift struct {
	ID        string             `json:"id"`
	TeamID    string             `json:"team_id"`
	TeamName  string             `json:"team_name"`
	Label     string             `json:"label"`
	StartTime time.Time          `json:"start_time"`
	EndTime   time.Time          `json:"end_time"`
	Headcount int                `json:"headcount"`
	Filled    int                `json:"filled"`    // assigned or confirmed
	Confirmed int                `json:"confirmed"` // confirmed only
	Locked    bool               `json:"locked"`
	Assignees []TimelineAssignee `json:"assignees"`
}

// TimelineDay groups shifts by calendar day in the event timezone.
type TimelineDay struct {
	Date   string          `json:"date"` // YYYY-MM-DD
	Shifts []TimelineShift `json:"shifts"`
}

// ScheduleTimelineResult carries the output of the timeline projection.
type ScheduleTimelineResult struct {
	EventID  string        `json:"event_id"`
	Timezone string        `json:"timezone"`
	Days     []TimelineDay `json:"days"`
}

// QueryScheduleTimeline assembles the staffing timeline for an event: every
// visible team's shifts grouped by day, each with demand versus filled
// counts. Volunteers only see teams marked visible; leads and admins see
// everything including hidden planning teams.
// PRE: EventID names an existing event
// POST: Days are sorted ascending, shifts within a day sorted by start time
func QueryScheduleTimeline(ctx context.Context, query GetScheduleTimelineQuery, deps GetScheduleTimelineDeps) (ScheduleTimelineResult, error) {
	ev, err := deps.EventStore.GetByID(ctx, query.EventID)
	if err != nil {
		return ScheduleTimelineResult{}, err
	}
	loc, err := ev.LoadLocation()
	if err != nil {
		return ScheduleTimelineResult{}, err
	}

	teams, err := deps.ShiftStore.ListTeamsByEvent(ctx, ev.ID)
	if err != nil {
		return ScheduleTimelineResult{}, err
	}

	seeHidden := query.ViewerRole == account.RoleAdmin || query.ViewerRole == account.RoleLead

	byDay := make(map[string][]TimelineShift)
	for _, team := range teams {
		if !team.Visible && !seeHidden {
			continue
		}
		shifts, err := deps.ShiftStore.ListShiftsByTeam(ctx, team.ID)
		if err != nil {
			return ScheduleTimelineResult{}, err
		}
		for _, s := range shifts {
			row, err := buildShiftRow(ctx, deps, team, s)
			if err != nil {
				return ScheduleTimelineResult{}, err
			}
			day := s.StartTime.In(loc).Format("2006-01-02")
			byDay[day] = append(byDay[day], row)
		}
	}

	result := ScheduleTimelineResult{EventID: ev.ID, Timezone: ev.Timezone}
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		shifts := byDay[day]
		sort.Slice(shifts, func(i, j int) bool {
			if shifts[i].StartTime.Equal(shifts[j].StartTime) {
				return shifts[i].TeamName < shifts[j].TeamName
			}
			return shifts[i].StartTime.Before(shifts[j].StartTime)
		})
		result.Days = append(result.Days, TimelineDay{Date: day, Shifts: shifts})
	}
	return result, nil
}

func buildShiftRow(ctx context.Context, deps GetScheduleTimelineDeps, team shift.Team, s shift.Shift) (TimelineShift, error) {
	row := TimelineShift{
		ID:        s.ID,
		TeamID:    team.ID,
		TeamName:  team.Name,
		Label:     s.Label,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Headcount: s.Headcount,
		Locked:    s.Locked,
		Assignees: []TimelineAssignee{},
	}
	assignments, err := deps.ShiftStore.ListAssignmentsByShift(ctx, s.ID)
	if err != nil {
		return TimelineShift{}, err
	}
	for _, a := range assignments {
		if a.Status == shift.AssignmentDeclined {
			continue
		}
		row.Filled++
		if a.Status == shift.AssignmentConfirmed {
			row.Confirmed++
		}
		name := a.VolunteerID
		if vol, err := deps.VolunteerStore.GetByID(ctx, a.VolunteerID); err == nil {
			name = vol.Name
		}
		row.Assignees = append(row.Assignees, TimelineAssignee{
			AssignmentID: a.ID,
			VolunteerID:  a.VolunteerID,
			Name:         name,
			Status:       a.Status,
		})
	}
	return row, nil
}
