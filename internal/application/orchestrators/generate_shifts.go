package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"

	"crewcall/internal/domain/event"
	"crewcall/internal/domain/shift"
)

// ShiftStoreForGenerate defines the store interface needed by GenerateShifts.
type ShiftStoreForGenerate interface {
	GetTeam(ctx context.Context, id string) (shift.Team, error)
	GetTemplate(ctx context.Context, id string) (shift.Template, error)
	ListShiftsByTeam(ctx context.Context, teamID string) ([]shift.Shift, error)
	DeleteUnlockedByTemplate(ctx context.Context, templateID string) error
	SaveShift(ctx context.Context, s shift.Shift) error
}

// EventStoreForGenerate defines the event store interface needed by GenerateShifts.
type EventStoreForGenerate interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

// GenerateShiftsInput names the template to expand.
type GenerateShiftsInput struct {
	TemplateID string
}

// GenerateShiftsDeps holds dependencies for GenerateShifts.
type GenerateShiftsDeps struct {
	ShiftStore ShiftStoreForGenerate
	EventStore EventStoreForGenerate
	GenerateID func() string
}

// GenerateShiftsResult reports what the expansion produced.
type GenerateShiftsResult struct {
	Created int
	Kept    int // locked shifts left untouched
}

// ExecuteGenerateShifts expands a template's recurrence rule into concrete
// shifts across the event window. Regeneration replaces previously generated
// shifts but never touches locked ones: locked rows keep manual edits and
// their occurrence slot is skipped instead of duplicated.
// PRE: TemplateID names an existing template with a valid RRULE
// POST: One unlocked shift per occurrence not covered by a locked shift
func ExecuteGenerateShifts(ctx context.Context, input GenerateShiftsInput, deps GenerateShiftsDeps) (GenerateShiftsResult, error) {
	tpl, err := deps.ShiftStore.GetTemplate(ctx, input.TemplateID)
	if err != nil {
		return GenerateShiftsResult{}, err
	}
	team, err := deps.ShiftStore.GetTeam(ctx, tpl.TeamID)
	if err != nil {
		return GenerateShiftsResult{}, err
	}
	ev, err := deps.EventStore.GetByID(ctx, team.EventID)
	if err != nil {
		return GenerateShiftsResult{}, err
	}
	loc, err := ev.LoadLocation()
	if err != nil {
		return GenerateShiftsResult{}, err
	}

	opt, err := rrule.StrToROption(tpl.RRule)
	if err != nil {
		return GenerateShiftsResult{}, fmt.Errorf("parse recurrence rule: %w", err)
	}
	opt.Dtstart = tpl.StartTime.In(loc)
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return GenerateShiftsResult{}, fmt.Errorf("build recurrence rule: %w", err)
	}

	// Survey locked shifts from this template before wiping the rest.
	existing, err := deps.ShiftStore.ListShiftsByTeam(ctx, tpl.TeamID)
	if err != nil {
		return GenerateShiftsResult{}, err
	}
	locked := make(map[time.Time]bool)
	kept := 0
	for _, s := range existing {
		if s.TemplateID == tpl.ID && s.Locked {
			locked[s.StartTime.UTC()] = true
			kept++
		}
	}

	if err := deps.ShiftStore.DeleteUnlockedByTemplate(ctx, tpl.ID); err != nil {
		return GenerateShiftsResult{}, err
	}

	occurrences := rule.Between(ev.StartTime.In(loc), ev.EndTime.In(loc), true)
	created := 0
	for _, start := range occurrences {
		if locked[start.UTC()] {
			continue
		}
		s := shift.Shift{
			ID:         deps.GenerateID(),
			TeamID:     tpl.TeamID,
			TemplateID: tpl.ID,
			Label:      tpl.Label,
			StartTime:  start,
			EndTime:    start.Add(tpl.Duration),
			Headcount:  tpl.Headcount,
		}
		if err := s.Validate(); err != nil {
			return GenerateShiftsResult{}, err
		}
		if err := deps.ShiftStore.SaveShift(ctx, s); err != nil {
			return GenerateShiftsResult{}, err
		}
		created++
	}

	slog.Info("shift_event", "event", "shifts_generated", "template_id", tpl.ID, "team_id", tpl.TeamID,
		"created", created, "kept_locked", kept)
	return GenerateShiftsResult{Created: created, Kept: kept}, nil
}
