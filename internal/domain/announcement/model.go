package announcement

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength = 200
	MaxBodyLength  = 20000
)

// Status constants
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Audience constants
const (
	AudienceAll      = "all"      // every volunteer on the event
	AudienceApproved = "approved" // approved volunteers only
	AudienceTeam     = "team"     // a single team
)

// Domain errors
var (
	ErrEmptyTitle       = errors.New("announcement title cannot be empty")
	ErrEmptyBody        = errors.New("announcement body cannot be empty")
	ErrAlreadyPublished = errors.New("announcement is already published")
	ErrMissingTeam      = errors.New("team audience requires a team ID")
)

// Announcement is a markdown notice sent to volunteers by email when
// published.
type Announcement struct {
	ID          string
	EventID     string
	Title       string
	Body        string // markdown
	Audience    string
	TeamID      string // set when Audience is team
	Status      string
	CreatedBy   string
	CreatedAt   time.Time
	PublishedBy string
	PublishedAt time.Time
}

// Validate checks if the Announcement has valid data.
// PRE: Announcement struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Announcement) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	if len(a.Title) > MaxTitleLength {
		return errors.New("announcement title cannot exceed 200 characters")
	}
	if strings.TrimSpace(a.Body) == "" {
		return ErrEmptyBody
	}
	if len(a.Body) > MaxBodyLength {
		return errors.New("announcement body cannot exceed 20000 characters")
	}
	if a.EventID == "" {
		return errors.New("announcement must belong to an event")
	}
	switch a.Audience {
	case AudienceAll, AudienceApproved:
	case AudienceTeam:
		if a.TeamID == "" {
			return ErrMissingTeam
		}
	default:
		return errors.New("audience must be 'all', 'approved', or 'team'")
	}
	if a.Status != StatusDraft && a.Status != StatusPublished {
		return errors.New("status must be 'draft' or 'published'")
	}
	return nil
}

// Publish transitions the announcement from draft to published.
// PRE: Announcement is in draft status
// POST: Status is published, publisher metadata set
func (a *Announcement) Publish(publisherID string, now time.Time) error {
	if a.Status == StatusPublished {
		return ErrAlreadyPublished
	}
	a.Status = StatusPublished
	a.PublishedBy = publisherID
	a.PublishedAt = now
	return nil
}
