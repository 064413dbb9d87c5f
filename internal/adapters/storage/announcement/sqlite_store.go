package announcement

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crewcall/internal/adapters/storage"
	domain "crewcall/internal/domain/announcement"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AnnouncementStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, event_id, title, body, audience, team_id, status, created_by, created_at, published_by, published_at"

func scanAnnouncement(scan func(dest ...any) error) (domain.Announcement, error) {
	var entity domain.Announcement
	var createdStr string
	var publishedStr sql.NullString
	err := scan(&entity.ID, &entity.EventID, &entity.Title, &entity.Body, &entity.Audience,
		&entity.TeamID, &entity.Status, &entity.CreatedBy, &createdStr, &entity.PublishedBy, &publishedStr)
	if err != nil {
		return domain.Announcement{}, err
	}
	entity.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	if publishedStr.Valid && publishedStr.String != "" {
		entity.PublishedAt, _ = time.Parse(time.RFC3339, publishedStr.String)
	}
	return entity, nil
}

// GetByID retrieves an Announcement by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Announcement, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM announcement WHERE id = ?", id)
	entity, err := scanAnnouncement(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Announcement{}, fmt.Errorf("announcement not found: %w", err)
	}
	return entity, err
}

// Save persists an Announcement to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Announcement) error {
	var published any
	if !entity.PublishedAt.IsZero() {
		published = entity.PublishedAt.Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcement (id, event_id, title, body, audience, team_id, status, created_by, created_at, published_by, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, body=excluded.body, audience=excluded.audience,
		 team_id=excluded.team_id, status=excluded.status, published_by=excluded.published_by, published_at=excluded.published_at`,
		entity.ID, entity.EventID, entity.Title, entity.Body, entity.Audience, entity.TeamID,
		entity.Status, entity.CreatedBy, entity.CreatedAt.Format(time.RFC3339),
		entity.PublishedBy, published,
	)
	return err
}

// Delete removes an Announcement from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM announcement WHERE id = ?", id)
	return err
}

// ListByEvent retrieves all Announcements for an event, newest first.
// PRE: eventID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByEvent(ctx context.Context, eventID string) ([]domain.Announcement, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM announcement WHERE event_id = ? ORDER BY created_at DESC", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListPublishedByEvent retrieves published Announcements for an event, newest first.
// PRE: eventID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListPublishedByEvent(ctx context.Context, eventID string) ([]domain.Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM announcement WHERE event_id = ? AND status = ? ORDER BY published_at DESC",
		eventID, domain.StatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]domain.Announcement, error) {
	var results []domain.Announcement
	for rows.Next() {
		entity, err := scanAnnouncement(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
