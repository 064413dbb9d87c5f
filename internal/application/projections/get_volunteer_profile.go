package projections

import (
	"context"
	"sort"
	"time"

	"crewcall/internal/domain/preference"
	"crewcall/internal/domain/shift"
	"crewcall/internal/domain/volunteer"
)

// ProfileShiftStore defines the shift store interface needed by the profile projection.
type ProfileShiftStore interface {
	GetShift(ctx context.Context, id string) (shift.Shift, error)
	GetTeam(ctx context.Context, id string) (shift.Team, error)
	ListAssignmentsByVolunteer(ctx context.Context, volunteerID string) ([]shift.Assignment, error)
}

// GetVolunteerProfileDeps holds dependencies for the profile projection.
type GetVolunteerProfileDeps struct {
	VolunteerStore  GridVolunteerStore
	PreferenceStore GridPreferenceStore
	ProgramStore    GridProgramStore
	ShiftStore      ProfileShiftStore
}

// ProfileAssignment is one upcoming or past shift on a volunteer's plate.
type ProfileAssignment struct {
	AssignmentID string    `json:"assignment_id"`
	ShiftID      string    `json:"shift_id"`
	TeamName     string    `json:"team_name"`
	Label        string    `json:"label"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
}

// ProfileInterest is one program slot the volunteer wants to attend.
type ProfileInterest struct {
	SlotID    string    `json:"slot_id"`
	Title     string    `json:"title"`
	Stage     string    `json:"stage"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// VolunteerProfileResult carries the output of the profile projection.
type VolunteerProfileResult struct {
	Volunteer   volunteer.Volunteer    `json:"volunteer"`
	Preferences preference.Preferences `json:"preferences"`
	HasPrefs    bool                   `json:"has_prefs"`
	Interests   []ProfileInterest      `json:"interests"`
	Assignments []ProfileAssignment    `json:"assignments"`
}

// QueryVolunteerProfile assembles everything one volunteer sees about
// themselves: profile data, declared preferences, program interests and
// their shift assignments with team names resolved.
// PRE: volunteerID names an existing volunteer
// POST: Assignments are sorted by start time ascending
func QueryVolunteerProfile(ctx context.Context, volunteerID string, deps GetVolunteerProfileDeps) (VolunteerProfileResult, error) {
	vol, err := deps.VolunteerStore.GetByID(ctx, volunteerID)
	if err != nil {
		return VolunteerProfileResult{}, err
	}

	result := VolunteerProfileResult{
		Volunteer:   vol,
		Interests:   []ProfileInterest{},
		Assignments: []ProfileAssignment{},
	}

	if prefs, err := deps.PreferenceStore.GetByVolunteer(ctx, vol.ID); err == nil {
		result.Preferences = prefs
		result.HasPrefs = true
	}

	registered, err := deps.ProgramStore.ListInterestsByVolunteer(ctx, vol.ID)
	if err != nil {
		return VolunteerProfileResult{}, err
	}
	for _, in := range registered {
		slot, err := deps.ProgramStore.GetSlot(ctx, in.SlotID)
		if err != nil {
			continue
		}
		result.Interests = append(result.Interests, ProfileInterest{
			SlotID:    slot.ID,
			Title:     slot.Title,
			Stage:     slot.Stage,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	sort.Slice(result.Interests, func(i, j int) bool {
		return result.Interests[i].StartTime.Before(result.Interests[j].StartTime)
	})

	assignments, err := deps.ShiftStore.ListAssignmentsByVolunteer(ctx, vol.ID)
	if err != nil {
		return VolunteerProfileResult{}, err
	}
	for _, a := range assignments {
		s, err := deps.ShiftStore.GetShift(ctx, a.ShiftID)
		if err != nil {
			continue
		}
		teamName := ""
		if team, err := deps.ShiftStore.GetTeam(ctx, s.TeamID); err == nil {
			teamName = team.Name
		}
		result.Assignments = append(result.Assignments, ProfileAssignment{
			AssignmentID: a.ID,
			ShiftID:      s.ID,
			TeamName:     teamName,
			Label:        s.Label,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
			Status:       a.Status,
		})
	}
	sort.Slice(result.Assignments, func(i, j int) bool {
		return result.Assignments[i].StartTime.Before(result.Assignments[j].StartTime)
	})

	return result, nil
}
