package volunteer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crewcall/internal/adapters/storage"
	domain "crewcall/internal/domain/volunteer"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new VolunteerStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, account_id, event_id, email, name, phone, languages, shirt_size, team_id, status, notes, applied_at, decided_at, decided_by"

func scanVolunteer(scan func(dest ...any) error) (domain.Volunteer, error) {
	var entity domain.Volunteer
	var accountID sql.NullString
	var appliedStr string
	var decidedStr sql.NullString
	err := scan(&entity.ID, &accountID, &entity.EventID, &entity.Email, &entity.Name, &entity.Phone,
		&entity.Languages, &entity.ShirtSize, &entity.TeamID, &entity.Status, &entity.Notes,
		&appliedStr, &decidedStr, &entity.DecidedBy)
	if err != nil {
		return domain.Volunteer{}, err
	}
	entity.AccountID = accountID.String
	entity.AppliedAt, _ = time.Parse(time.RFC3339, appliedStr)
	if decidedStr.Valid && decidedStr.String != "" {
		entity.DecidedAt, _ = time.Parse(time.RFC3339, decidedStr.String)
	}
	return entity, nil
}

// GetByID retrieves a Volunteer by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Volunteer, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM volunteer WHERE id = ?", id)
	entity, err := scanVolunteer(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Volunteer{}, fmt.Errorf("volunteer not found: %w", err)
	}
	return entity, err
}

// GetByAccountAndEvent retrieves the Volunteer record an account holds on an event.
// PRE: accountID and eventID are non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByAccountAndEvent(ctx context.Context, accountID, eventID string) (domain.Volunteer, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM volunteer WHERE account_id = ? AND event_id = ?", accountID, eventID)
	entity, err := scanVolunteer(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Volunteer{}, fmt.Errorf("volunteer not found: %w", err)
	}
	return entity, err
}

// Save persists a Volunteer to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Volunteer) error {
	var accountID any
	if entity.AccountID != "" {
		accountID = entity.AccountID
	}
	var decided any
	if !entity.DecidedAt.IsZero() {
		decided = entity.DecidedAt.Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO volunteer (id, account_id, event_id, email, name, phone, languages, shirt_size, team_id, status, notes, applied_at, decided_at, decided_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET account_id=excluded.account_id, email=excluded.email, name=excluded.name,
		 phone=excluded.phone, languages=excluded.languages, shirt_size=excluded.shirt_size,
		 team_id=excluded.team_id, status=excluded.status, notes=excluded.notes,
		 decided_at=excluded.decided_at, decided_by=excluded.decided_by`,
		entity.ID, accountID, entity.EventID, entity.Email, entity.Name, entity.Phone,
		entity.Languages, entity.ShirtSize, entity.TeamID, entity.Status, entity.Notes,
		entity.AppliedAt.Format(time.RFC3339), decided, entity.DecidedBy,
	)
	return err
}

// Delete removes a Volunteer from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM volunteer WHERE id = ?", id)
	return err
}

// ListByEvent retrieves all Volunteers for an event ordered by name.
// PRE: eventID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByEvent(ctx context.Context, eventID string) ([]domain.Volunteer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM volunteer WHERE event_id = ? ORDER BY name", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListByEventAndStatus retrieves Volunteers for an event filtered by status.
// PRE: eventID and status are non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByEventAndStatus(ctx context.Context, eventID, status string) ([]domain.Volunteer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM volunteer WHERE event_id = ? AND status = ? ORDER BY name", eventID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListByTeam retrieves Volunteers assigned to a team.
// PRE: teamID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByTeam(ctx context.Context, teamID string) ([]domain.Volunteer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM volunteer WHERE team_id = ? ORDER BY name", teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]domain.Volunteer, error) {
	var results []domain.Volunteer
	for rows.Next() {
		entity, err := scanVolunteer(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
