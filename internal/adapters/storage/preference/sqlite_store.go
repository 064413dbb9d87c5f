package preference

import (
	"context"
	"database/sql"
	"fmt"

	"crewcall/internal/adapters/storage"
	domain "crewcall/internal/domain/preference"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new PreferenceStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByVolunteer retrieves Preferences for a volunteer.
// PRE: volunteerID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByVolunteer(ctx context.Context, volunteerID string) (domain.Preferences, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT volunteer_id, timing_configured, timing_start_hour, timing_end_hour, hotel_choice, training_courses, exceptions_raw FROM preferences WHERE volunteer_id = ?",
		volunteerID)
	var entity domain.Preferences
	err := row.Scan(&entity.VolunteerID, &entity.TimingConfigured, &entity.TimingStartHour, &entity.TimingEndHour,
		&entity.HotelChoice, &entity.TrainingCourses, &entity.ExceptionsRaw)
	if err == sql.ErrNoRows {
		return domain.Preferences{}, fmt.Errorf("preferences not found: %w", err)
	}
	return entity, err
}

// Save persists Preferences to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Preferences) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (volunteer_id, timing_configured, timing_start_hour, timing_end_hour, hotel_choice, training_courses, exceptions_raw)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(volunteer_id) DO UPDATE SET timing_configured=excluded.timing_configured,
		 timing_start_hour=excluded.timing_start_hour, timing_end_hour=excluded.timing_end_hour,
		 hotel_choice=excluded.hotel_choice, training_courses=excluded.training_courses, exceptions_raw=excluded.exceptions_raw`,
		entity.VolunteerID, entity.TimingConfigured, entity.TimingStartHour, entity.TimingEndHour,
		entity.HotelChoice, entity.TrainingCourses, entity.ExceptionsRaw,
	)
	return err
}

// Delete removes Preferences from the database.
// PRE: volunteerID is non-empty
// POST: Entity for the volunteer is removed
func (s *SQLiteStore) Delete(ctx context.Context, volunteerID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM preferences WHERE volunteer_id = ?", volunteerID)
	return err
}
