package volunteer

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxPhoneLength = 32
	MaxNotesLength = 2000
)

// Application status constants
const (
	StatusApplied   = "applied"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusWithdrawn = "withdrawn"
)

// Domain errors
var (
	ErrAlreadyDecided  = errors.New("application has already been decided")
	ErrNotApplied      = errors.New("volunteer is not in applied status")
	ErrAlreadyWithdrew = errors.New("volunteer already withdrew")
)

// Volunteer is one person's application and profile for an event.
type Volunteer struct {
	ID        string
	AccountID string
	EventID   string
	Email     string
	Name      string
	Phone     string
	Languages string // comma-separated language codes
	ShirtSize string
	TeamID    string
	Status    string
	Notes     string // admin-only notes
	AppliedAt time.Time
	DecidedAt time.Time
	DecidedBy string // account ID of the deciding lead/admin
}

// Validate checks if the Volunteer has valid data.
// PRE: Volunteer struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (v *Volunteer) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return errors.New("volunteer name cannot be empty")
	}
	if len(v.Name) > MaxNameLength {
		return errors.New("volunteer name cannot exceed 100 characters")
	}
	if !strings.Contains(v.Email, "@") {
		return errors.New("volunteer email must be valid")
	}
	if v.EventID == "" {
		return errors.New("volunteer must belong to an event")
	}
	if len(v.Phone) > MaxPhoneLength {
		return errors.New("phone cannot exceed 32 characters")
	}
	if len(v.Notes) > MaxNotesLength {
		return errors.New("notes cannot exceed 2000 characters")
	}
	switch v.Status {
	case StatusApplied, StatusApproved, StatusRejected, StatusWithdrawn:
	default:
		return errors.New("status must be 'applied', 'approved', 'rejected', or 'withdrawn'")
	}
	return nil
}

// IsApproved returns true if the volunteer's application was approved.
// INVARIANT: Status field is not mutated
func (v *Volunteer) IsApproved() bool {
	return v.Status == StatusApproved
}

// Approve accepts the application.
// PRE: Volunteer is in applied status
// POST: Status is approved; decision metadata is set
func (v *Volunteer) Approve(deciderID string, now time.Time) error {
	if v.Status != StatusApplied {
		return ErrAlreadyDecided
	}
	v.Status = StatusApproved
	v.DecidedBy = deciderID
	v.DecidedAt = now
	return nil
}

// Reject declines the application.
// PRE: Volunteer is in applied status
// POST: Status is rejected; decision metadata is set
func (v *Volunteer) Reject(deciderID string, now time.Time) error {
	if v.Status != StatusApplied {
		return ErrAlreadyDecided
	}
	v.Status = StatusRejected
	v.DecidedBy = deciderID
	v.DecidedAt = now
	return nil
}

// Withdraw retracts the application at the volunteer's request.
// PRE: Volunteer has not already withdrawn
// POST: Status is withdrawn
func (v *Volunteer) Withdraw() error {
	if v.Status == StatusWithdrawn {
		return ErrAlreadyWithdrew
	}
	v.Status = StatusWithdrawn
	return nil
}
