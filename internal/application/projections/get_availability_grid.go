package projections

import (
	"context"

	"crewcall/internal/domain/availability"
	"crewcall/internal/domain/event"
	"crewcall/internal/domain/preference"
	"crewcall/internal/domain/program"
	"crewcall/internal/domain/volunteer"
)

// GridVolunteerStore defines the volunteer store interface needed by the grid projection.
type GridVolunteerStore interface {
	GetByID(ctx context.Context, id string) (volunteer.Volunteer, error)
}

// GridEventStore defines the event store interface needed by the grid projection.
type GridEventStore interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

// GridPreferenceStore defines the preference store interface needed by the grid projection.
type GridPreferenceStore interface {
	GetByVolunteer(ctx context.Context, volunteerID string) (preference.Preferences, error)
}

// GridProgramStore defines the program store interface needed by the grid projection.
type GridProgramStore interface {
	GetSlot(ctx context.Context, id string) (program.Slot, error)
	ListInterestsByVolunteer(ctx context.Context, volunteerID string) ([]program.Interest, error)
}

// GetAvailabilityGridDeps holds dependencies for the availability grid projection.
type GetAvailabilityGridDeps struct {
	VolunteerStore  GridVolunteerStore
	EventStore      GridEventStore
	PreferenceStore GridPreferenceStore
	ProgramStore    GridProgramStore
}

// GridDay is one event day with a derived state per hour.
type GridDay struct {
	Date  string                 `json:"date"` // YYYY-MM-DD in the event timezone
	Hours [24]availability.State `json:"hours"`
}

// AvailabilityGridResult carries the output of the grid projection.
type AvailabilityGridResult struct {
	VolunteerID string    `json:"volunteer_id"`
	EventID     string    `json:"event_id"`
	Timezone    string    `json:"timezone"`
	Days        []GridDay `json:"days"`
	Warnings    []string  `json:"warnings,omitempty"` // skipped exception entries
}

// QueryAvailabilityGrid derives the per-hour availability grid for one
// volunteer across the whole event window. Missing preferences leave every
// in-window hour at the default state.
// PRE: VolunteerID names an existing volunteer
// POST: Returns one GridDay per calendar day the event touches
func QueryAvailabilityGrid(ctx context.Context, volunteerID string, deps GetAvailabilityGridDeps) (AvailabilityGridResult, error) {
	vol, err := deps.VolunteerStore.GetByID(ctx, volunteerID)
	if err != nil {
		return AvailabilityGridResult{}, err
	}
	ev, err := deps.EventStore.GetByID(ctx, vol.EventID)
	if err != nil {
		return AvailabilityGridResult{}, err
	}
	loc, err := ev.LoadLocation()
	if err != nil {
		return AvailabilityGridResult{}, err
	}

	var pref *availability.PreferenceWindow
	var exceptions []availability.Exception
	var warnings []string
	if prefs, err := deps.PreferenceStore.GetByVolunteer(ctx, vol.ID); err == nil {
		if prefs.TimingConfigured {
			pref = &availability.PreferenceWindow{StartHour: prefs.TimingStartHour, EndHour: prefs.TimingEndHour}
		}
		exceptions, warnings = availability.DecodeExceptions(prefs.ExceptionsRaw)
	}

	var interests []availability.InterestEvent
	if deps.ProgramStore != nil {
		registered, err := deps.ProgramStore.ListInterestsByVolunteer(ctx, vol.ID)
		if err != nil {
			return AvailabilityGridResult{}, err
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
		return AvailabilityGridResult{}, err
	}

	result := AvailabilityGridResult{
		VolunteerID: vol.ID,
		EventID:     ev.ID,
		Timezone:    ev.Timezone,
		Warnings:    warnings,
	}
	for _, d := range days {
		result.Days = append(result.Days, GridDay{Date: d.Key(), Hours: d.Hours})
	}
	return result, nil
}
