package shift

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crewcall/internal/adapters/storage"
	domain "crewcall/internal/domain/shift"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ShiftStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// --- Teams ---

const teamColumns = "id, event_id, name, lead_account_id, visible, created_at"

func scanTeam(scan func(dest ...any) error) (domain.Team, error) {
	var entity domain.Team
	var createdStr string
	err := scan(&entity.ID, &entity.EventID, &entity.Name, &entity.LeadAccountID, &entity.Visible, &createdStr)
	if err != nil {
		return domain.Team{}, err
	}
	entity.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	return entity, nil
}

// GetTeam retrieves a Team by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetTeam(ctx context.Context, id string) (domain.Team, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+teamColumns+" FROM team WHERE id = ?", id)
	entity, err := scanTeam(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Team{}, fmt.Errorf("team not found: %w", err)
	}
	return entity, err
}

// SaveTeam persists a Team to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SaveTeam(ctx context.Context, entity domain.Team) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO team (id, event_id, name, lead_account_id, visible, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, lead_account_id=excluded.lead_account_id, visible=excluded.visible`,
		entity.ID, entity.EventID, entity.Name, entity.LeadAccountID, entity.Visible,
		entity.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// DeleteTeam removes a Team from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) DeleteTeam(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM team WHERE id = ?", id)
	return err
}

// ListTeamsByEvent retrieves all Teams for an event ordered by name.
// PRE: eventID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListTeamsByEvent(ctx context.Context, eventID string) ([]domain.Team, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+teamColumns+" FROM team WHERE event_id = ? ORDER BY name", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Team
	for rows.Next() {
		entity, err := scanTeam(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// --- Templates ---

const templateColumns = "id, team_id, label, start_time, duration_minutes, headcount, rrule"

func scanTemplate(scan func(dest ...any) error) (domain.Template, error) {
	var entity domain.Template
	var startStr string
	var durationMin int64
	err := scan(&entity.ID, &entity.TeamID, &entity.Label, &startStr, &durationMin, &entity.Headcount, &entity.RRule)
	if err != nil {
		return domain.Template{}, err
	}
	entity.StartTime, _ = time.Parse(time.RFC3339, startStr)
	entity.Duration = time.Duration(durationMin) * time.Minute
	return entity, nil
}

// GetTemplate retrieves a shift Template by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetTemplate(ctx context.Context, id string) (domain.Template, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+templateColumns+" FROM shift_template WHERE id = ?", id)
	entity, err := scanTemplate(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Template{}, fmt.Errorf("shift template not found: %w", err)
	}
	return entity, err
}

// SaveTemplate persists a shift Template to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SaveTemplate(ctx context.Context, entity domain.Template) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shift_template (id, team_id, label, start_time, duration_minutes, headcount, rrule)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET label=excluded.label, start_time=excluded.start_time,
		 duration_minutes=excluded.duration_minutes, headcount=excluded.headcount, rrule=excluded.rrule`,
		entity.ID, entity.TeamID, entity.Label, entity.StartTime.Format(time.RFC3339),
		int64(entity.Duration/time.Minute), entity.Headcount, entity.RRule,
	)
	return err
}

// DeleteTemplate removes a shift Template from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM shift_template WHERE id = ?", id)
	return err
}

// ListTemplatesByTeam retrieves all shift Templates for a team.
// PRE: teamID is non-empty
// POST: Returns matching entities ordered by start time
func (s *SQLiteStore) ListTemplatesByTeam(ctx context.Context, teamID string) ([]domain.Template, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+templateColumns+" FROM shift_template WHERE team_id = ? ORDER BY start_time", teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Template
	for rows.Next() {
		entity, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// --- Shifts ---

const shiftColumns = "id, team_id, template_id, label, start_time, end_time, headcount, locked"

func scanShift(scan func(dest ...any) error) (domain.Shift, error) {
	var entity domain.Shift
	var startStr, endStr string
	err := scan(&entity.ID, &entity.TeamID, &entity.TemplateID, &entity.Label, &startStr, &endStr, &entity.Headcount, &entity.Locked)
	if err != nil {
		return domain.Shift{}, err
	}
	entity.StartTime, _ = time.Parse(time.RFC3339, startStr)
	entity.EndTime, _ = time.Parse(time.RFC3339, endStr)
	return entity, nil
}

// GetShift retrieves a Shift by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetShift(ctx context.Context, id string) (domain.Shift, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+shiftColumns+" FROM shift WHERE id = ?", id)
	entity, err := scanShift(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Shift{}, fmt.Errorf("shift not found: %w", err)
	}
	return entity, err
}

// SaveShift persists a Shift to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SaveShift(ctx context.Context, entity domain.Shift) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shift (id, team_id, template_id, label, start_time, end_time, headcount, locked)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET label=excluded.label, start_time=excluded.start_time,
		 end_time=excluded.end_time, headcount=excluded.headcount, locked=excluded.locked`,
		entity.ID, entity.TeamID, entity.TemplateID, entity.Label,
		entity.StartTime.Format(time.RFC3339), entity.EndTime.Format(time.RFC3339),
		entity.Headcount, entity.Locked,
	)
	return err
}

// DeleteShift removes a Shift and its assignments from the database.
// PRE: id is non-empty
// POST: Entity with given id and dependent assignments are removed
func (s *SQLiteStore) DeleteShift(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM assignment WHERE shift_id = ?", id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM shift WHERE id = ?", id)
	return err
}

// DeleteUnlockedByTemplate removes every unlocked Shift generated from a template.
// Locked shifts survive so manual edits are never overwritten by regeneration.
// PRE: templateID is non-empty
// POST: Unlocked shifts for the template and their assignments are removed
func (s *SQLiteStore) DeleteUnlockedByTemplate(ctx context.Context, templateID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM assignment WHERE shift_id IN (SELECT id FROM shift WHERE template_id = ? AND locked = 0)", templateID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM shift WHERE template_id = ? AND locked = 0", templateID)
	return err
}

// ListShiftsByTeam retrieves all Shifts for a team ordered by start time.
// PRE: teamID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListShiftsByTeam(ctx context.Context, teamID string) ([]domain.Shift, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+shiftColumns+" FROM shift WHERE team_id = ? ORDER BY start_time", teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

// ListShiftsByEvent retrieves all Shifts across the teams of an event.
// PRE: eventID is non-empty
// POST: Returns matching entities ordered by start time
func (s *SQLiteStore) ListShiftsByEvent(ctx context.Context, eventID string) ([]domain.Shift, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT s.id, s.team_id, s.template_id, s.label, s.start_time, s.end_time, s.headcount, s.locked FROM shift s JOIN team t ON s.team_id = t.id WHERE t.event_id = ? ORDER BY s.start_time",
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

func collectShifts(rows *sql.Rows) ([]domain.Shift, error) {
	var results []domain.Shift
	for rows.Next() {
		entity, err := scanShift(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// --- Assignments ---

const assignmentColumns = "id, shift_id, volunteer_id, status, assigned_by, created_at, decided_at"

func scanAssignment(scan func(dest ...any) error) (domain.Assignment, error) {
	var entity domain.Assignment
	var createdStr string
	var decidedStr sql.NullString
	err := scan(&entity.ID, &entity.ShiftID, &entity.VolunteerID, &entity.Status, &entity.AssignedBy, &createdStr, &decidedStr)
	if err != nil {
		return domain.Assignment{}, err
	}
	entity.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	if decidedStr.Valid && decidedStr.String != "" {
		entity.DecidedAt, _ = time.Parse(time.RFC3339, decidedStr.String)
	}
	return entity, nil
}

// GetAssignment retrieves an Assignment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetAssignment(ctx context.Context, id string) (domain.Assignment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+assignmentColumns+" FROM assignment WHERE id = ?", id)
	entity, err := scanAssignment(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Assignment{}, fmt.Errorf("assignment not found: %w", err)
	}
	return entity, err
}

// SaveAssignment persists an Assignment to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SaveAssignment(ctx context.Context, entity domain.Assignment) error {
	var decided any
	if !entity.DecidedAt.IsZero() {
		decided = entity.DecidedAt.Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assignment (id, shift_id, volunteer_id, status, assigned_by, created_at, decided_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(shift_id, volunteer_id) DO UPDATE SET status=excluded.status, decided_at=excluded.decided_at`,
		entity.ID, entity.ShiftID, entity.VolunteerID, entity.Status, entity.AssignedBy,
		entity.CreatedAt.Format(time.RFC3339), decided,
	)
	return err
}

// DeleteAssignment removes an Assignment from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) DeleteAssignment(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assignment WHERE id = ?", id)
	return err
}

// ListAssignmentsByShift retrieves all Assignments on a shift.
// PRE: shiftID is non-empty
// POST: Returns matching entities ordered by creation time
func (s *SQLiteStore) ListAssignmentsByShift(ctx context.Context, shiftID string) ([]domain.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+assignmentColumns+" FROM assignment WHERE shift_id = ? ORDER BY created_at", shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// ListAssignmentsByVolunteer retrieves all Assignments held by a volunteer.
// PRE: volunteerID is non-empty
// POST: Returns matching entities ordered by creation time
func (s *SQLiteStore) ListAssignmentsByVolunteer(ctx context.Context, volunteerID string) ([]domain.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+assignmentColumns+" FROM assignment WHERE volunteer_id = ? ORDER BY created_at", volunteerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func collectAssignments(rows *sql.Rows) ([]domain.Assignment, error) {
	var results []domain.Assignment
	for rows.Next() {
		entity, err := scanAssignment(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
