package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crewcall/internal/adapters/storage"
	domain "crewcall/internal/domain/outbox"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new OutboxStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, action_type, payload, status, attempts, max_attempts, last_attempted_at, created_at, external_id, error_message"

func scanEntry(scan func(dest ...any) error) (domain.Entry, error) {
	var entity domain.Entry
	var createdStr string
	var attemptedStr sql.NullString
	err := scan(&entity.ID, &entity.ActionType, &entity.Payload, &entity.Status, &entity.Attempts,
		&entity.MaxAttempts, &attemptedStr, &createdStr, &entity.ExternalID, &entity.ErrorMessage)
	if err != nil {
		return domain.Entry{}, err
	}
	entity.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	if attemptedStr.Valid && attemptedStr.String != "" {
		entity.LastAttemptedAt, _ = time.Parse(time.RFC3339, attemptedStr.String)
	}
	return entity, nil
}

// GetByID retrieves an outbox Entry by its ID.
// PRE: id is non-empty
// POST: Returns the entry or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM outbox WHERE id = ?", id)
	entity, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Entry{}, fmt.Errorf("outbox entry not found: %w", err)
	}
	return entity, err
}

// Save persists an outbox Entry to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Entry) error {
	var attempted any
	if !entity.LastAttemptedAt.IsZero() {
		attempted = entity.LastAttemptedAt.Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (id, action_type, payload, status, attempts, max_attempts, last_attempted_at, created_at, external_id, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status=excluded.status, attempts=excluded.attempts,
		 last_attempted_at=excluded.last_attempted_at, external_id=excluded.external_id, error_message=excluded.error_message`,
		entity.ID, entity.ActionType, entity.Payload, entity.Status, entity.Attempts,
		entity.MaxAttempts, attempted, entity.CreatedAt.Format(time.RFC3339),
		entity.ExternalID, entity.ErrorMessage,
	)
	return err
}

// ListPending returns entries that need to be processed (pending or retrying).
// PRE: limit > 0
// POST: Returns up to limit entries ordered by created_at
func (s *SQLiteStore) ListPending(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM outbox WHERE status IN (?, ?) ORDER BY created_at LIMIT ?",
		domain.StatusPending, domain.StatusRetrying, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListFailed returns entries that have permanently failed or been abandoned.
// PRE: limit > 0
// POST: Returns up to limit entries, most recently attempted first
func (s *SQLiteStore) ListFailed(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM outbox WHERE status IN (?, ?) ORDER BY last_attempted_at DESC LIMIT ?",
		domain.StatusFailed, domain.StatusAbandoned, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Delete removes an outbox Entry from the database.
// PRE: id is non-empty and entry is in terminal state
// POST: Entry is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM outbox WHERE id = ?", id)
	return err
}

func collect(rows *sql.Rows) ([]domain.Entry, error) {
	var results []domain.Entry
	for rows.Next() {
		entity, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
