package program

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crewcall/internal/adapters/storage"
	domain "crewcall/internal/domain/program"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ProgramStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const slotColumns = "id, event_id, title, stage, start_time, end_time"

func scanSlot(scan func(dest ...any) error) (domain.Slot, error) {
	var entity domain.Slot
	var startStr, endStr string
	err := scan(&entity.ID, &entity.EventID, &entity.Title, &entity.Stage, &startStr, &endStr)
	if err != nil {
		return domain.Slot{}, err
	}
	entity.StartTime, _ = time.Parse(time.RFC3339, startStr)
	entity.EndTime, _ = time.Parse(time.RFC3339, endStr)
	return entity, nil
}

// GetSlot retrieves a program Slot by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetSlot(ctx context.Context, id string) (domain.Slot, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+slotColumns+" FROM program_slot WHERE id = ?", id)
	entity, err := scanSlot(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Slot{}, fmt.Errorf("program slot not found: %w", err)
	}
	return entity, err
}

// SaveSlot persists a program Slot to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SaveSlot(ctx context.Context, entity domain.Slot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO program_slot (id, event_id, title, stage, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, stage=excluded.stage,
		 start_time=excluded.start_time, end_time=excluded.end_time`,
		entity.ID, entity.EventID, entity.Title, entity.Stage,
		entity.StartTime.Format(time.RFC3339), entity.EndTime.Format(time.RFC3339),
	)
	return err
}

// DeleteSlot removes a program Slot and its interests from the database.
// PRE: id is non-empty
// POST: Entity with given id and dependent interests are removed
func (s *SQLiteStore) DeleteSlot(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM program_interest WHERE slot_id = ?", id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM program_slot WHERE id = ?", id)
	return err
}

// ListSlotsByEvent retrieves all program Slots for an event ordered by start time.
// PRE: eventID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListSlotsByEvent(ctx context.Context, eventID string) ([]domain.Slot, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+slotColumns+" FROM program_slot WHERE event_id = ? ORDER BY start_time", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Slot
	for rows.Next() {
		entity, err := scanSlot(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// SaveInterest persists an Interest to the database.
// PRE: entity has been validated
// POST: Entity is persisted; re-registering the same slot and volunteer is a no-op
func (s *SQLiteStore) SaveInterest(ctx context.Context, entity domain.Interest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO program_interest (id, slot_id, volunteer_id, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(slot_id, volunteer_id) DO NOTHING`,
		entity.ID, entity.SlotID, entity.VolunteerID, entity.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// DeleteInterest removes a volunteer's Interest in a slot.
// PRE: slotID and volunteerID are non-empty
// POST: Matching entity is removed
func (s *SQLiteStore) DeleteInterest(ctx context.Context, slotID, volunteerID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM program_interest WHERE slot_id = ? AND volunteer_id = ?", slotID, volunteerID)
	return err
}

// ListInterestsByVolunteer retrieves all Interests a volunteer registered.
// PRE: volunteerID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListInterestsByVolunteer(ctx context.Context, volunteerID string) ([]domain.Interest, error) {
	return s.listInterests(ctx, "SELECT id, slot_id, volunteer_id, created_at FROM program_interest WHERE volunteer_id = ? ORDER BY created_at", volunteerID)
}

// ListInterestsBySlot retrieves all Interests registered for a slot.
// PRE: slotID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListInterestsBySlot(ctx context.Context, slotID string) ([]domain.Interest, error) {
	return s.listInterests(ctx, "SELECT id, slot_id, volunteer_id, created_at FROM program_interest WHERE slot_id = ? ORDER BY created_at", slotID)
}

func (s *SQLiteStore) listInterests(ctx context.Context, query string, arg string) ([]domain.Interest, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Interest
	for rows.Next() {
		var entity domain.Interest
		var createdStr string
		if err := rows.Scan(&entity.ID, &entity.SlotID, &entity.VolunteerID, &createdStr); err != nil {
			return nil, err
		}
		entity.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		results = append(results, entity)
	}
	return results, rows.Err()
}
