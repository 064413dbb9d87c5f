package message

import (
	"context"

	domain "crewcall/internal/domain/message"
)

// Store persists the delivery Log for outgoing messages.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Log, error)
	Save(ctx context.Context, value domain.Log) error
	ListByVolunteer(ctx context.Context, volunteerID string) ([]domain.Log, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Log, error)
}
