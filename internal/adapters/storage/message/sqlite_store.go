package message

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crewcall/internal/adapters/storage"
	domain "crewcall/internal/domain/message"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MessageStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, channel, volunteer_id, recipient, subject, body, status, provider_message_id, error_message, created_at"

func scanLog(scan func(dest ...any) error) (domain.Log, error) {
	var entity domain.Log
	var createdStr string
	err := scan(&entity.ID, &entity.Channel, &entity.VolunteerID, &entity.Recipient, &entity.Subject,
		&entity.Body, &entity.Status, &entity.ProviderMessageID, &entity.ErrorMessage, &createdStr)
	if err != nil {
		return domain.Log{}, err
	}
	entity.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	return entity, nil
}

// GetByID retrieves a message Log by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Log, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM message_log WHERE id = ?", id)
	entity, err := scanLog(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Log{}, fmt.Errorf("message log not found: %w", err)
	}
	return entity, err
}

// Save persists a message Log to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Log) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO message_log (id, channel, volunteer_id, recipient, subject, body, status, provider_message_id, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status=excluded.status,
		 provider_message_id=excluded.provider_message_id, error_message=excluded.error_message`,
		entity.ID, entity.Channel, entity.VolunteerID, entity.Recipient, entity.Subject, entity.Body,
		entity.Status, entity.ProviderMessageID, entity.ErrorMessage, entity.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// ListByVolunteer retrieves all message Logs for a volunteer, newest first.
// PRE: volunteerID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByVolunteer(ctx context.Context, volunteerID string) ([]domain.Log, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM message_log WHERE volunteer_id = ? ORDER BY created_at DESC", volunteerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListRecent retrieves the most recent message Logs across all recipients.
// PRE: limit > 0
// POST: Returns at most limit entities, newest first
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]domain.Log, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM message_log ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]domain.Log, error) {
	var results []domain.Log
	for rows.Next() {
		entity, err := scanLog(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
