package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"crewcall/internal/domain/availability"
	"crewcall/internal/domain/event"
	"crewcall/internal/domain/preference"
	"crewcall/internal/domain/program"
	"crewcall/internal/domain/shift"
	"crewcall/internal/domain/volunteer"
)

// ShiftStoreForAssign defines the shift store interface needed by AssignVolunteer.
type ShiftStoreForAssign interface {
	GetShift(ctx context.Context, id string) (shift.Shift, error)
	GetTeam(ctx context.Context, id string) (shift.Team, error)
	ListAssignmentsByShift(ctx context.Context, shiftID string) ([]shift.Assignment, error)
	ListAssignmentsByVolunteer(ctx context.Context, volunteerID string) ([]shift.Assignment, error)
	SaveAssignment(ctx context.Context, a shift.Assignment) error
}

// VolunteerStoreForAssign defines the volunteer store interface needed by AssignVolunteer.
type VolunteerStoreForAssign interface {
	GetByID(ctx context.Context, id string) (volunteer.Volunteer, error)
}

// EventStoreForAssign defines the event store interface needed by AssignVolunteer.
type EventStoreForAssign interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

// PreferenceStoreForAssign defines the preference store interface needed by AssignVolunteer.
type PreferenceStoreForAssign interface {
	GetByVolunteer(ctx context.Context, volunteerID string) (preference.Preferences, error)
}

// ProgramStoreForAssign loads interests for availability evaluation.
type ProgramStoreForAssign interface {
	ListInterestsByVolunteer(ctx context.Context, volunteerID string) ([]program.Interest, error)
	GetSlot(ctx context.Context, id string) (program.Slot, error)
}

// AssignVolunteerInput carries an assignment request.
type AssignVolunteerInput struct {
	ShiftID     string
	VolunteerID string
	AssignedBy  string
	// Force overrides availability objections but never capacity or overlap.
	Force bool
}

// AssignVolunteerDeps holds dependencies for AssignVolunteer.
type AssignVolunteerDeps struct {
	ShiftStore      ShiftStoreForAssign
	VolunteerStore  VolunteerStoreForAssign
	EventStore      EventStoreForAssign
	PreferenceStore PreferenceStoreForAssign
	ProgramStore    ProgramStoreForAssign
	GenerateID      func() string
	Now             func() time.Time
}

// AssignVolunteerResult reports the created assignment and any soft objections.
type AssignVolunteerResult struct {
	AssignmentID string
	Warnings     []string // avoid-hours the assignment covers
}

var (
	ErrNotApproved          = errors.New("volunteer is not approved for this event")
	ErrShiftFull            = errors.New("shift already has a full headcount")
	ErrAlreadyAssigned      = errors.New("volunteer is already assigned to this shift")
	ErrOverlappingShift     = errors.New("volunteer already has an overlapping assignment")
	ErrVolunteerUnavailable = errors.New("volunteer is unavailable during this shift")
)

// ExecuteAssignVolunteer assigns an approved volunteer to a shift after
// checking capacity, overlap and derived availability.
// PRE: ShiftID and VolunteerID name existing records
// POST: Assignment stored in assigned status, or an error naming the objection
// INVARIANT: Force never bypasses capacity or overlap checks
func ExecuteAssignVolunteer(ctx context.Context, input AssignVolunteerInput, deps AssignVolunteerDeps) (AssignVolunteerResult, error) {
	sh, err := deps.ShiftStore.GetShift(ctx, input.ShiftID)
	if err != nil {
		return AssignVolunteerResult{}, err
	}
	vol, err := deps.VolunteerStore.GetByID(ctx, input.VolunteerID)
	if err != nil {
		return AssignVolunteerResult{}, err
	}
	if !vol.IsApproved() {
		return AssignVolunteerResult{}, ErrNotApproved
	}

	existing, err := deps.ShiftStore.ListAssignmentsByShift(ctx, sh.ID)
	if err != nil {
		return AssignVolunteerResult{}, err
	}
	active := 0
	for _, a := range existing {
		if a.VolunteerID == input.VolunteerID && a.Status != shift.AssignmentDeclined {
			return AssignVolunteerResult{}, ErrAlreadyAssigned
		}
		if a.Status != shift.AssignmentDeclined {
			active++
		}
	}
	if active >= sh.Headcount {
		return AssignVolunteerResult{}, ErrShiftFull
	}

	mine, err := deps.ShiftStore.ListAssignmentsByVolunteer(ctx, input.VolunteerID)
	if err != nil {
		return AssignVolunteerResult{}, err
	}
	for _, a := range mine {
		if a.Status == shift.AssignmentDeclined {
			continue
		}
		other, err := deps.ShiftStore.GetShift(ctx, a.ShiftID)
		if err != nil {
			continue
		}
		if other.Overlaps(sh.StartTime, sh.EndTime) {
			return AssignVolunteerResult{}, ErrOverlappingShift
		}
	}

	warnings, err := availabilityObjections(ctx, deps, vol, sh)
	if err != nil {
		return AssignVolunteerResult{}, err
	}
	for _, w := range warnings {
		if w.state == availability.StateUnavailable && !input.Force {
			slog.Info("shift_event", "event", "assignment_refused", "shift_id", sh.ID,
				"volunteer_id", vol.ID, "hour", w.label)
			return AssignVolunteerResult{}, ErrVolunteerUnavailable
		}
	}

	a := shift.Assignment{
		ID:          deps.GenerateID(),
		ShiftID:     sh.ID,
		VolunteerID: vol.ID,
		Status:      shift.AssignmentAssigned,
		AssignedBy:  input.AssignedBy,
		CreatedAt:   deps.Now(),
	}
	if err := a.Validate(); err != nil {
		return AssignVolunteerResult{}, err
	}
	if err := deps.ShiftStore.SaveAssignment(ctx, a); err != nil {
		return AssignVolunteerResult{}, err
	}

	result := AssignVolunteerResult{AssignmentID: a.ID}
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, w.label)
	}
	slog.Info("shift_event", "event", "volunteer_assigned", "shift_id", sh.ID, "volunteer_id", vol.ID,
		"assigned_by", input.AssignedBy, "forced", input.Force, "warnings", len(result.Warnings))
	return result, nil
}

type hourObjection struct {
	state availability.State
	label string
}

// availabilityObjections evaluates the derived availability for every hour the
// shift touches. Missing preferences mean the volunteer never configured
// anything, which leaves every hour available.
func availabilityObjections(ctx context.Context, deps AssignVolunteerDeps, vol volunteer.Volunteer, sh shift.Shift) ([]hourObjection, error) {
	ev, err := deps.EventStore.GetByID(ctx, vol.EventID)
	if err != nil {
		return nil, err
	}
	loc, err := ev.LoadLocation()
	if err != nil {
		return nil, err
	}

	var pref *availability.PreferenceWindow
	var exceptions []availability.Exception
	if prefs, err := deps.PreferenceStore.GetByVolunteer(ctx, vol.ID); err == nil {
		if prefs.TimingConfigured {
			pref = &availability.PreferenceWindow{StartHour: prefs.TimingStartHour, EndHour: prefs.TimingEndHour}
		}
		exceptions, _ = availability.DecodeExceptions(prefs.ExceptionsRaw)
	}

	var interests []availability.InterestEvent
	if deps.ProgramStore != nil {
		registered, err := deps.ProgramStore.ListInterestsByVolunteer(ctx, vol.ID)
		if err != nil {
			return nil, err
		}
		for _, in := range registered {
			slot, err := deps.ProgramStore.GetSlot(ctx, in.SlotID)
			if err != nil {
				continue
			}
			interests = append(interests, availability.InterestEvent{
				ID:    slot.ID,
				Start: slot.StartTime,
				End:   slot.EndTime,
			})
		}
	}

	win := availability.Window{Start: ev.StartTime.In(loc), End: ev.EndTime.In(loc), Location: loc}
	days, err := availability.BuildExpectations(win, exceptions, pref, interests)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]availability.DayExpectation, len(days))
	for _, d := range days {
		byDay[d.Key()] = d
	}

	var objections []hourObjection
	start := sh.StartTime.In(loc).Truncate(time.Hour)
	for t := start; t.Before(sh.EndTime.In(loc)); t = t.Add(time.Hour) {
		day, ok := byDay[t.Format("2006-01-02")]
		if !ok {
			continue // shift hour outside the event window
		}
		state := day.Hours[t.Hour()]
		if state != availability.StateAvailable {
			objections = append(objections, hourObjection{
				state: state,
				label: fmt.Sprintf("%s %02d:00 %s", t.Format("2006-01-02"), t.Hour(), state),
			})
		}
	}
	return objections, nil
}
