package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"crewcall/internal/domain/program"
)

// ProgramStoreForInterests defines the store interface needed by SelectInterests.
type ProgramStoreForInterests interface {
	GetSlot(ctx context.Context, id string) (program.Slot, error)
	SaveInterest(ctx context.Context, i program.Interest) error
	DeleteInterest(ctx context.Context, slotID, volunteerID string) error
	ListInterestsByVolunteer(ctx context.Context, volunteerID string) ([]program.Interest, error)
}

// SelectInterestsInput replaces a volunteer's interest selection wholesale.
// The UI posts the complete checked set, so sync is add-missing, drop-stale.
type SelectInterestsInput struct {
	VolunteerID string
	SlotIDs     []string
}

// SelectInterestsDeps holds dependencies for SelectInterests.
type SelectInterestsDeps struct {
	ProgramStore ProgramStoreForInterests
	GenerateID   func() string
	Now          func() time.Time
}

var ErrUnknownSlot = errors.New("program slot does not exist")

// ExecuteSelectInterests syncs the stored interests with the submitted set.
// PRE: VolunteerID is non-empty; SlotIDs may be empty to clear all interests
// POST: Stored interests equal the submitted set
func ExecuteSelectInterests(ctx context.Context, input SelectInterestsInput, deps SelectInterestsDeps) error {
	wanted := make(map[string]bool, len(input.SlotIDs))
	for _, id := range input.SlotIDs {
		if _, err := deps.ProgramStore.GetSlot(ctx, id); err != nil {
			return ErrUnknownSlot
		}
		wanted[id] = true
	}

	existing, err := deps.ProgramStore.ListInterestsByVolunteer(ctx, input.VolunteerID)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, in := range existing {
		have[in.SlotID] = true
		if !wanted[in.SlotID] {
			if err := deps.ProgramStore.DeleteInterest(ctx, in.SlotID, input.VolunteerID); err != nil {
				return err
			}
		}
	}

	added := 0
	for slotID := range wanted {
		if have[slotID] {
			continue
		}
		in := program.Interest{
			ID:          deps.GenerateID(),
			SlotID:      slotID,
			VolunteerID: input.VolunteerID,
			CreatedAt:   deps.Now(),
		}
		if err := in.Validate(); err != nil {
			return err
		}
		if err := deps.ProgramStore.SaveInterest(ctx, in); err != nil {
			return err
		}
		added++
	}

	slog.Info("program_event", "event", "interests_updated", "volunteer_id", input.VolunteerID,
		"selected", len(wanted), "added", added)
	return nil
}
