package program

import (
	"context"

	domain "crewcall/internal/domain/program"
)

// Store persists program Slots and volunteer Interests.
type Store interface {
	GetSlot(ctx context.Context, id string) (domain.Slot, error)
	SaveSlot(ctx context.Context, value domain.Slot) error
	DeleteSlot(ctx context.Context, id string) error
	ListSlotsByEvent(ctx context.Context, eventID string) ([]domain.Slot, error)

	SaveInterest(ctx context.Context, value domain.Interest) error
	DeleteInterest(ctx context.Context, slotID, volunteerID string) error
	ListInterestsByVolunteer(ctx context.Context, volunteerID string) ([]domain.Interest, error)
	ListInterestsBySlot(ctx context.Context, slotID string) ([]domain.Interest, error)
}
