package outbox

import (
	"context"

	domain "crewcall/internal/domain/outbox"
)

// Store persists the delivery retry queue.
type Store interface {
	// GetByID retrieves a single entry.
	// PRE: id is non-empty
	// POST: Returns the entry or an error if not found
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save inserts or updates an entry.
	// PRE: entry has been validated
	// POST: Entry is persisted
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries awaiting a delivery attempt
	// (pending or retrying), oldest first.
	// PRE: limit > 0
	// POST: Returns up to limit entries
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListFailed returns entries whose attempts ran out, most recent
	// attempt first. The admin outbox view reads these.
	// PRE: limit > 0
	// POST: Returns up to limit entries
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)

	// Delete removes an entry.
	// PRE: id names an entry in a terminal state
	// POST: Entry is gone
	Delete(ctx context.Context, id string) error
}
