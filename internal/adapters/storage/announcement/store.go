package announcement

import (
	"context"

	domain "crewcall/internal/domain/announcement"
)

// Store persists Announcement state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Announcement, error)
	Save(ctx context.Context, value domain.Announcement) error
	Delete(ctx context.Context, id string) error
	ListByEvent(ctx context.Context, eventID string) ([]domain.Announcement, error)
	ListPublishedByEvent(ctx context.Context, eventID string) ([]domain.Announcement, error)
}
