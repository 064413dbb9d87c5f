package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"crewcall/internal/domain/account"
	"crewcall/internal/domain/event"
	"crewcall/internal/domain/shift"
	"crewcall/internal/domain/volunteer"
)

// mockTimelineShiftStore implements the shift interfaces for projection tests.
type mockTimelineShiftStore struct {
	teams       map[string]shift.Team
	shifts      map[string]shift.Shift
	assignments map[string]shift.Assignment
}

func newMockTimelineShiftStore() *mockTimelineShiftStore {
	return &mockTimelineShiftStore{
		teams:       make(map[string]shift.Team),
		shifts:      make(map[string]shift.Shift),
		assignments: make(map[string]shift.Assignment),
	}
}

func (m *mockTimelineShiftStore) GetTeam(_ context.Context, id string) (shift.Team, error) {
	t, ok := m.teams[id]
	if !ok {
		return shift.Team{}, errors.New("not found")
	}
	return t, nil
}

func (m *mockTimelineShiftStore) GetShift(_ context.Context, id string) (shift.Shift, error) {
	s, ok := m.shifts[id]
	if !ok {
		return shift.Shift{}, errors.New("not found")
	}
	return s, nil
}

func (m *mockTimelineShiftStore) ListTeamsByEvent(_ context.Context, eventID string) ([]shift.Team, error) {
	var out []shift.Team
	for _, t := range m.teams {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTimelineShiftStore) ListShiftsByTeam(_ context.Context, teamID string) ([]shift.Shift, error) {
	var out []shift.Shift
	for _, s := range m.shifts {
		if s.TeamID == teamID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockTimelineShiftStore) ListShiftsByEvent(_ context.Context, eventID string) ([]shift.Shift, error) {
	var out []shift.Shift
	for _, s := range m.shifts {
		if t, ok := m.teams[s.TeamID]; ok && t.EventID == eventID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockTimelineShiftStore) ListAssignmentsByShift(_ context.Context, shiftID string) ([]shift.Assignment, error) {
	var out []shift.Assignment
	for _, a := range m.assignments {
		if a.ShiftID == shiftID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockTimelineShiftStore) ListAssignmentsByVolunteer(_ context.Context, volunteerID string) ([]shift.Assignment, error) {
	var out []shift.Assignment
	for _, a := range m.assignments {
		if a.VolunteerID == volunteerID {
			out = append(out, a)
		}
	}
	return out, nil
}

type timelineFixture struct {
	shifts *mockTimelineShiftStore
	vols   *mockVolunteerStore
	events *mockEventStore
}

// newTimelineFixture sets up two teams (one hidden) with shifts on two days.
func newTimelineFixture() timelineFixture {
	f := timelineFixture{
		shifts: newMockTimelineShiftStore(),
		vols:   &mockVolunteerStore{volunteers: make(map[string]volunteer.Volunteer)},
		events: &mockEventStore{events: make(map[string]event.Event)},
	}
	f.events.events["ev-1"] = event.Event{
		ID: "ev-1", Name: "Summer Fest", Timezone: "UTC",
		StartTime: gridBase, EndTime: gridBase.AddDate(0, 0, 2), Active: true,
	}
	f.shifts.teams["team-1"] = shift.Team{ID: "team-1", EventID: "ev-1", Name: "Bar", Visible: true}
	f.shifts.teams["team-2"] = shift.Team{ID: "team-2", EventID: "ev-1", Name: "Production", Visible: false}

	day1Evening := gridBase.Add(6 * time.Hour) // 18:00
	f.shifts.shifts["shift-1"] = shift.Shift{
		ID: "shift-1", TeamID: "team-1", Label: "Bar evening",
		StartTime: day1Evening, EndTime: day1Evening.Add(4 * time.Hour), Headcount: 2,
	}
	f.shifts.shifts["shift-2"] = shift.Shift{
		ID: "shift-2", TeamID: "team-1", Label: "Bar late",
		StartTime: day1Evening.AddDate(0, 0, 1), EndTime: day1Evening.AddDate(0, 0, 1).Add(4 * time.Hour),
		Headcount: 1, Locked: true,
	}
	f.shifts.shifts["shift-3"] = shift.Shift{
		ID: "shift-3", TeamID: "team-2", Label: "Stage build",
		StartTime: gridBase, EndTime: gridBase.Add(4 * time.Hour), Headcount: 4,
	}

	f.vols.volunteers["vol-1"] = volunteer.Volunteer{
		ID: "vol-1", EventID: "ev-1", Email: "vol@crewcall.test",
		Name: "Alex Doe", Status: volunteer.StatusApproved,
	}
	f.shifts.assignments["a-1"] = shift.Assignment{
		ID: "a-1", ShiftID: "shift-1", VolunteerID: "vol-1", Status: shift.AssignmentConfirmed,
	}
	f.shifts.assignments["a-2"] = shift.Assignment{
		ID: "a-2", ShiftID: "shift-1", VolunteerID: "vol-2", Status: shift.AssignmentDeclined,
	}
	return f
}

func (f timelineFixture) deps() GetScheduleTimelineDeps {
	return GetScheduleTimelineDeps{
		ShiftStore:     f.shifts,
		VolunteerStore: f.vols,
		EventStore:     f.events,
	}
}

func TestQueryScheduleTimeline_AdminSeesEverything(t *testing.T) {
	f := newTimelineFixture()
	result, err := QueryScheduleTimeline(context.Background(), GetScheduleTimelineQuery{
		EventID: "ev-1", ViewerRole: account.RoleAdmin,
	}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(result.Days))
	}
	day1 := result.Days[0]
	if day1.Date != "2026-07-15" {
		t.Errorf("expected first day 2026-07-15, got %s", day1.Date)
	}
	if len(day1.Shifts) != 2 {
		t.Fatalf("expected 2 shifts on day 1, got %d", len(day1.Shifts))
	}
	// Stage build starts at noon, bar shift at 18:00.
	if day1.Shifts[0].Label != "Stage build" {
		t.Errorf("expected shifts sorted by start time, got %s first", day1.Shifts[0].Label)
	}

	bar := day1.Shifts[1]
	if bar.Filled != 1 || bar.Confirmed != 1 {
		t.Errorf("expected filled=1 confirmed=1, got %d/%d", bar.Filled, bar.Confirmed)
	}
	if len(bar.Assignees) != 1 || bar.Assignees[0].Name != "Alex Doe" {
		t.Error("expected the declined assignment to be excluded and names resolved")
	}
}

func TestQueryScheduleTimeline_VolunteerSkipsHiddenTeams(t *testing.T) {
	f := newTimelineFixture()
	result, err := QueryScheduleTimeline(context.Background(), GetScheduleTimelineQuery{
		EventID: "ev-1", ViewerRole: account.RoleVolunteer,
	}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, day := range result.Days {
		for _, s := range day.Shifts {
			if s.TeamID == "team-2" {
				t.Fatal("expected hidden team shifts to be filtered for volunteers")
			}
		}
	}
	if len(result.Days) != 2 || len(result.Days[0].Shifts) != 1 {
		t.Errorf("expected only bar shifts, got %+v", result.Days)
	}
}

func TestQueryScheduleTimeline_LockedFlagSurvives(t *testing.T) {
	f := newTimelineFixture()
	result, err := QueryScheduleTimeline(context.Background(), GetScheduleTimelineQuery{
		EventID: "ev-1", ViewerRole: account.RoleLead,
	}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, day := range result.Days {
		for _, s := range day.Shifts {
			if s.ID == "shift-2" {
				found = true
				if !s.Locked {
					t.Error("expected shift-2 to be reported locked")
				}
			}
		}
	}
	if !found {
		t.Fatal("expected shift-2 in the timeline")
	}
}
