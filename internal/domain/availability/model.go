package availability

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrInvalidWindow  = errors.New("event window start must be before end")
	ErrNoLocation     = errors.New("event window location is required")
	ErrInvalidHour    = errors.New("preference hours must be between 0 and 23")
	ErrEmptyInterest  = errors.New("interest event times cannot be zero")
	ErrInterestOrder  = errors.New("interest event start must be before end")
	ErrExceptionOrder = errors.New("exception start must be before end")
)

// State is a volunteer's expected availability for a single hour,
// ordered by restrictiveness: unavailable > avoid > available.
type State string

const (
	StateUnavailable State = "unavailable"
	StateAvoid       State = "avoid"
	StateAvailable   State = "available"
)

// restrictiveness ranks states for downgrade-only transitions.
var restrictiveness = map[State]int{
	StateAvailable:   0,
	StateAvoid:       1,
	StateUnavailable: 2,
}

// Known returns true if s is one of the three defined states.
// INVARIANT: s is not mutated
func (s State) Known() bool {
	_, ok := restrictiveness[s]
	return ok
}

// MoreRestrictive returns true if s ranks strictly above other.
// PRE: both states are known
// POST: returns true iff s overrides other under downgrade-only rules
func (s State) MoreRestrictive(other State) bool {
	return restrictiveness[s] > restrictiveness[other]
}

// Window is the inclusive event span over which expectations are computed.
// INVARIANT: Start < End; Location is the festival's timezone.
type Window struct {
	Start    time.Time
	End      time.Time
	Location *time.Location
}

// Validate checks the window's invariants.
// PRE: none
// POST: returns nil if the window is usable by the calculator
func (w Window) Validate() error {
	if w.Location == nil {
		return ErrNoLocation
	}
	if !w.Start.Before(w.End) {
		return ErrInvalidWindow
	}
	return nil
}

// Exception is a leadership-approved override for a contiguous time range.
// Exceptions take absolute precedence over every other rule.
type Exception struct {
	Start time.Time
	End   time.Time
	State State
}

// Validate checks the exception's invariants.
// PRE: none
// POST: returns nil if the range is non-degenerate and the state is known
func (e Exception) Validate() error {
	if !e.Start.Before(e.End) {
		return ErrExceptionOrder
	}
	if !e.State.Known() {
		return errors.New("exception state must be unavailable, avoid or available")
	}
	return nil
}

// PreferenceWindow is the volunteer's self-declared daily working hours.
// EndHour <= StartHour signals a window that wraps past midnight.
type PreferenceWindow struct {
	StartHour int
	EndHour   int
}

// Validate checks that both hours are valid hours of day.
// PRE: none
// POST: returns nil if both hours are in [0, 23]
func (p PreferenceWindow) Validate() error {
	if p.StartHour < 0 || p.StartHour > 23 || p.EndHour < 0 || p.EndHour > 23 {
		return ErrInvalidHour
	}
	return nil
}

// Overnight returns true if the window spans two calendar days.
// INVARIANT: PreferenceWindow fields are not mutated
func (p PreferenceWindow) Overnight() bool {
	return p.EndHour <= p.StartHour
}

// InterestEvent is a festival program timeslot the volunteer wants to attend
// as an attendee rather than work.
type InterestEvent struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Validate checks the interest event's invariants.
// PRE: none
// POST: returns nil if both times are set and ordered
func (e InterestEvent) Validate() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrEmptyInterest
	}
	if !e.Start.Before(e.End) {
		return ErrInterestOrder
	}
	return nil
}

// DayExpectation is one calendar day's hourly availability states.
// Date is midnight in the event window's timezone; Hours is indexed by
// local hour of day.
type DayExpectation struct {
	Date  time.Time
	Hours [24]State
}

// Key returns the calendar-day key for this expectation (YYYY-MM-DD).
func (d DayExpectation) Key() string {
	return d.Date.Format("2006-01-02")
}
