package volunteer

import (
	"context"

	domain "crewcall/internal/domain/volunteer"
)

// Store persists Volunteer state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Volunteer, error)
	GetByAccountAndEvent(ctx context.Context, accountID, eventID string) (domain.Volunteer, error)
	Save(ctx context.Context, value domain.Volunteer) error
	Delete(ctx context.Context, id string) error
	ListByEvent(ctx context.Context, eventID string) ([]domain.Volunteer, error)
	ListByEventAndStatus(ctx context.Context, eventID, status string) ([]domain.Volunteer, error)
	ListByTeam(ctx context.Context, teamID string) ([]domain.Volunteer, error)
}
