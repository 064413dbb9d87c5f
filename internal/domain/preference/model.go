package preference

import (
	"errors"
	"strings"
)

// Hotel preference constants.
const (
	HotelNone   = "none"   // sleeps elsewhere
	HotelShared = "shared" // shared room in the crew hotel
	HotelSingle = "single" // single room in the crew hotel
)

// Domain errors
var (
	ErrEmptyVolunteer = errors.New("preferences must belong to a volunteer")
	ErrInvalidHotel   = errors.New("hotel choice must be 'none', 'shared' or 'single'")
	ErrInvalidHours   = errors.New("preferred hours must be between 0 and 23")
)

// Preferences holds a volunteer's declared wishes for one event: preferred
// daily working hours, hotel accommodation, training courses, and the raw
// availability-exception payload approved by leadership.
//
// TimingConfigured distinguishes "no window declared" from a 0-0 window.
// ExceptionsRaw is stored as received; it is decoded leniently at read
// time, never validated strictly on write (the payload predates schema
// changes and partially corrupt entries must not block saving the rest).
type Preferences struct {
	VolunteerID      string
	TimingConfigured bool
	TimingStartHour  int
	TimingEndHour    int
	HotelChoice      string
	TrainingCourses  string // comma-separated course codes
	ExceptionsRaw    string // serialized JSON array of exception entries
}

// Validate checks if the Preferences have valid data.
// PRE: Preferences struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Preferences) Validate() error {
	if p.VolunteerID == "" {
		return ErrEmptyVolunteer
	}
	if p.TimingConfigured {
		if p.TimingStartHour < 0 || p.TimingStartHour > 23 || p.TimingEndHour < 0 || p.TimingEndHour > 23 {
			return ErrInvalidHours
		}
	}
	switch p.HotelChoice {
	case "", HotelNone, HotelShared, HotelSingle:
	default:
		return ErrInvalidHotel
	}
	return nil
}

// Courses splits the comma-separated training course codes.
// INVARIANT: Preferences fields are not mutated
func (p *Preferences) Courses() []string {
	if strings.TrimSpace(p.TrainingCourses) == "" {
		return nil
	}
	parts := strings.Split(p.TrainingCourses, ",")
	courses := make([]string, 0, len(parts))
	for _, part := range parts {
		if c := strings.TrimSpace(part); c != "" {
			courses = append(courses, c)
		}
	}
	return courses
}
