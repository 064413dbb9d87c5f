package event

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength     = 200
	MaxLocationLength = 200
)

// Domain errors
var (
	ErrEmptyName       = errors.New("event name cannot be empty")
	ErrEmptyStart      = errors.New("event start time is required")
	ErrEmptyEnd        = errors.New("event end time is required")
	ErrInvalidSpan     = errors.New("event start must be before end")
	ErrEmptyTimezone   = errors.New("event timezone is required")
	ErrInvalidTimezone = errors.New("event timezone is not a valid IANA name")
)

// Event is one festival edition: the span volunteers are scheduled across.
type Event struct {
	ID         string
	Name       string
	Location   string
	Timezone   string // IANA name, e.g. "Europe/Berlin"
	StartTime  time.Time
	EndTime    time.Time
	AppsOpen   time.Time // applications accepted from
	AppsClose  time.Time // applications accepted until
	Active     bool      // the event currently shown to volunteers
	CreatedAt  time.Time
	CreatedBy  string
}

// Validate checks the event's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if len(e.Name) > MaxNameLength {
		return errors.New("event name cannot exceed 200 characters")
	}
	if len(e.Location) > MaxLocationLength {
		return errors.New("event location cannot exceed 200 characters")
	}
	if e.StartTime.IsZero() {
		return ErrEmptyStart
	}
	if e.EndTime.IsZero() {
		return ErrEmptyEnd
	}
	if !e.StartTime.Before(e.EndTime) {
		return ErrInvalidSpan
	}
	if strings.TrimSpace(e.Timezone) == "" {
		return ErrEmptyTimezone
	}
	if _, err := time.LoadLocation(e.Timezone); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}

// LoadLocation resolves the event's timezone.
// PRE: Timezone has been validated
// POST: returns the IANA location or ErrInvalidTimezone
func (e *Event) LoadLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return nil, ErrInvalidTimezone
	}
	return loc, nil
}

// AcceptsApplications returns true if now falls inside the application window.
// A zero AppsOpen/AppsClose leaves that side unbounded.
// INVARIANT: Event fields are not mutated
func (e *Event) AcceptsApplications(now time.Time) bool {
	if !e.AppsOpen.IsZero() && now.Before(e.AppsOpen) {
		return false
	}
	if !e.AppsClose.IsZero() && now.After(e.AppsClose) {
		return false
	}
	return true
}

// Days returns how many calendar days the event touches in its timezone.
// PRE: Event has been validated
func (e *Event) Days() int {
	loc, err := e.LoadLocation()
	if err != nil {
		return 0
	}
	start := e.StartTime.In(loc)
	end := e.EndTime.In(loc)
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	return int(last.Sub(first).Hours()/24) + 1
}
