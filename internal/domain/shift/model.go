package shift

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxLabelLength = 120
	MaxNameLength  = 100
)

// Assignment status constants
const (
	AssignmentAssigned  = "assigned"
	AssignmentConfirmed = "confirmed"
	AssignmentDeclined  = "declined"
)

// Domain errors
var (
	ErrEmptyTeamName    = errors.New("team name cannot be empty")
	ErrEmptyLabel       = errors.New("shift label cannot be empty")
	ErrEmptyTimes       = errors.New("shift times are required")
	ErrInvalidTimes     = errors.New("shift start must be before end")
	ErrInvalidHeadcount = errors.New("shift headcount must be at least 1")
	ErrLocked           = errors.New("shift is locked and cannot be regenerated")
	ErrAlreadyDecided   = errors.New("assignment has already been decided")
)

// Team groups shifts under one lead. Visibility controls whether the
// team's demand rows appear on the shared schedule timeline for other
// teams' leads.
type Team struct {
	ID            string
	EventID       string
	Name          string
	LeadAccountID string
	Visible       bool
	CreatedAt     time.Time
}

// Validate checks if the Team has valid data.
// PRE: Team struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyTeamName
	}
	if len(t.Name) > MaxNameLength {
		return errors.New("team name cannot exceed 100 characters")
	}
	if t.EventID == "" {
		return errors.New("team must belong to an event")
	}
	return nil
}

// Template describes a recurring demand: a role on a team that repeats
// across the event span per its recurrence rule.
type Template struct {
	ID        string
	TeamID    string
	Label     string
	StartTime time.Time // first occurrence start
	Duration  time.Duration
	Headcount int
	RRule     string // RFC 5545 RRULE, e.g. "FREQ=DAILY;COUNT=3"
}

// Validate checks if the Template has valid data.
// PRE: Template struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Template) Validate() error {
	if t.TeamID == "" {
		return errors.New("template must belong to a team")
	}
	if strings.TrimSpace(t.Label) == "" {
		return ErrEmptyLabel
	}
	if t.StartTime.IsZero() {
		return ErrEmptyTimes
	}
	if t.Duration <= 0 {
		return errors.New("template duration must be positive")
	}
	if t.Headcount < 1 {
		return ErrInvalidHeadcount
	}
	if strings.TrimSpace(t.RRule) == "" {
		return errors.New("template recurrence rule is required")
	}
	return nil
}

// Shift is one concrete staffed occurrence. Locked shifts are immutable
// demand: regeneration from templates must leave them untouched, while
// unlocked shifts are reconciled (replaced) against the template set.
type Shift struct {
	ID         string
	TeamID     string
	TemplateID string // empty for ad-hoc shifts
	Label      string
	StartTime  time.Time
	EndTime    time.Time
	Headcount  int
	Locked     bool
}

// Validate checks if the Shift has valid data.
// PRE: Shift struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Shift) Validate() error {
	if s.TeamID == "" {
		return errors.New("shift must belong to a team")
	}
	if strings.TrimSpace(s.Label) == "" {
		return ErrEmptyLabel
	}
	if len(s.Label) > MaxLabelLength {
		return errors.New("shift label cannot exceed 120 characters")
	}
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return ErrEmptyTimes
	}
	if !s.StartTime.Before(s.EndTime) {
		return ErrInvalidTimes
	}
	if s.Headcount < 1 {
		return ErrInvalidHeadcount
	}
	return nil
}

// Overlaps returns true if the shift overlaps [from, to).
// INVARIANT: Shift fields are not mutated
func (s *Shift) Overlaps(from, to time.Time) bool {
	return s.StartTime.Before(to) && s.EndTime.After(from)
}

// HourRange returns the local hours the shift touches on its starting
// day, for matching against availability grids.
// PRE: Shift has been validated
func (s *Shift) HourRange(loc *time.Location) (day time.Time, firstHour, lastHour int) {
	start := s.StartTime.In(loc)
	end := s.EndTime.In(loc)
	day = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	firstHour = start.Hour()
	last := end.Add(-time.Nanosecond).In(loc)
	if last.Year() == start.Year() && last.YearDay() == start.YearDay() {
		lastHour = last.Hour()
	} else {
		lastHour = 23
	}
	return day, firstHour, lastHour
}

// Assignment links a volunteer to a shift.
type Assignment struct {
	ID          string
	ShiftID     string
	VolunteerID string
	Status      string
	AssignedBy  string
	CreatedAt   time.Time
	DecidedAt   time.Time
}

// Validate checks if the Assignment has valid data.
// PRE: Assignment struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Assignment) Validate() error {
	if a.ShiftID == "" {
		return errors.New("assignment shift ID is required")
	}
	if a.VolunteerID == "" {
		return errors.New("assignment volunteer ID is required")
	}
	switch a.Status {
	case AssignmentAssigned, AssignmentConfirmed, AssignmentDeclined:
	default:
		return errors.New("assignment status must be 'assigned', 'confirmed', or 'declined'")
	}
	return nil
}

// Confirm accepts the assignment.
// PRE: Assignment is in assigned status
// POST: Status is confirmed, DecidedAt set
func (a *Assignment) Confirm(now time.Time) error {
	if a.Status != AssignmentAssigned {
		return ErrAlreadyDecided
	}
	a.Status = AssignmentConfirmed
	a.DecidedAt = now
	return nil
}

// Decline rejects the assignment.
// PRE: Assignment is in assigned status
// POST: Status is declined, DecidedAt set
func (a *Assignment) Decline(now time.Time) error {
	if a.Status != AssignmentAssigned {
		return ErrAlreadyDecided
	}
	a.Status = AssignmentDeclined
	a.DecidedAt = now
	return nil
}
