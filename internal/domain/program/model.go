package program

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength = 200
	MaxStageLength = 100
)

// Domain errors
var (
	ErrEmptyTitle   = errors.New("program slot title cannot be empty")
	ErrEmptyEvent   = errors.New("program slot must belong to an event")
	ErrEmptyTimes   = errors.New("program slot times are required")
	ErrInvalidTimes = errors.New("program slot start must be before end")
)

// Slot is one festival program timeslot (a concert, talk, screening).
// Volunteers flag slots they want to attend; the availability calculator
// downgrades overlapping hours.
type Slot struct {
	ID        string
	EventID   string
	Title     string
	Stage     string
	StartTime time.Time
	EndTime   time.Time
}

// Validate checks if the Slot has valid data.
// PRE: Slot struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Slot) Validate() error {
	if s.EventID == "" {
		return ErrEmptyEvent
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if len(s.Title) > MaxTitleLength {
		return errors.New("program slot title cannot exceed 200 characters")
	}
	if len(s.Stage) > MaxStageLength {
		return errors.New("program slot stage cannot exceed 100 characters")
	}
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return ErrEmptyTimes
	}
	if !s.StartTime.Before(s.EndTime) {
		return ErrInvalidTimes
	}
	return nil
}

// Overlaps returns true if the slot overlaps [from, to).
// INVARIANT: Slot fields are not mutated
func (s *Slot) Overlaps(from, to time.Time) bool {
	return s.StartTime.Before(to) && s.EndTime.After(from)
}

// Interest records that a volunteer wants to attend a slot.
type Interest struct {
	ID          string
	SlotID      string
	VolunteerID string
	CreatedAt   time.Time
}

// Validate checks if the Interest has valid data.
// PRE: Interest struct is populated
// POST: Returns nil if valid, error otherwise
func (i *Interest) Validate() error {
	if i.SlotID == "" {
		return errors.New("interest slot ID is required")
	}
	if i.VolunteerID == "" {
		return errors.New("interest volunteer ID is required")
	}
	return nil
}
