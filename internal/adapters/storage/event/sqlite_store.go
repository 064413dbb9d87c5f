package event

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crewcall/internal/adapters/storage"
	domain "crewcall/internal/domain/event"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new EventStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, name, location, timezone, start_time, end_time, apps_open, apps_close, active, created_at, created_by"

func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var entity domain.Event
	var startStr, endStr, createdStr string
	var opensStr, closesStr sql.NullString
	err := scan(&entity.ID, &entity.Name, &entity.Location, &entity.Timezone, &startStr, &endStr,
		&opensStr, &closesStr, &entity.Active, &createdStr, &entity.CreatedBy)
	if err != nil {
		return domain.Event{}, err
	}
	entity.StartTime, _ = time.Parse(time.RFC3339, startStr)
	entity.EndTime, _ = time.Parse(time.RFC3339, endStr)
	entity.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	if opensStr.Valid && opensStr.String != "" {
		entity.AppsOpen, _ = time.Parse(time.RFC3339, opensStr.String)
	}
	if closesStr.Valid && closesStr.String != "" {
		entity.AppsClose, _ = time.Parse(time.RFC3339, closesStr.String)
	}
	return entity, nil
}

// GetByID retrieves an Event by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM event WHERE id = ?", id)
	entity, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Event{}, fmt.Errorf("event not found: %w", err)
	}
	return entity, err
}

// GetActive retrieves the currently active Event.
// PRE: none
// POST: Returns the active entity or an error if none is active
func (s *SQLiteStore) GetActive(ctx context.Context) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM event WHERE active = 1 ORDER BY start_time DESC LIMIT 1")
	entity, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Event{}, fmt.Errorf("no active event: %w", err)
	}
	return entity, err
}

// Save persists an Event to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); activating one deactivates the rest
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Event) error {
	var opens, closes any
	if !entity.AppsOpen.IsZero() {
		opens = entity.AppsOpen.Format(time.RFC3339)
	}
	if !entity.AppsClose.IsZero() {
		closes = entity.AppsClose.Format(time.RFC3339)
	}
	if entity.Active {
		if _, err := s.db.ExecContext(ctx, "UPDATE event SET active = 0 WHERE id != ?", entity.ID); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event (id, name, location, timezone, start_time, end_time, apps_open, apps_close, active, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, location=excluded.location, timezone=excluded.timezone,
		 start_time=excluded.start_time, end_time=excluded.end_time, apps_open=excluded.apps_open,
		 apps_close=excluded.apps_close, active=excluded.active`,
		entity.ID, entity.Name, entity.Location, entity.Timezone,
		entity.StartTime.Format(time.RFC3339), entity.EndTime.Format(time.RFC3339),
		opens, closes, entity.Active, entity.CreatedAt.Format(time.RFC3339), entity.CreatedBy,
	)
	return err
}

// Delete removes an Event from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM event WHERE id = ?", id)
	return err
}

// List retrieves all Events ordered by start time, newest first.
// PRE: none
// POST: Returns all entities
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM event ORDER BY start_time DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		entity, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
