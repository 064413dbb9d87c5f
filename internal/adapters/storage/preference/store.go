package preference

import (
	"context"

	domain "crewcall/internal/domain/preference"
)

// Store persists volunteer Preferences.
type Store interface {
	GetByVolunteer(ctx context.Context, volunteerID string) (domain.Preferences, error)
	Save(ctx context.Context, value domain.Preferences) error
	Delete(ctx context.Context, volunteerID string) error
}
