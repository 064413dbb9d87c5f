package shift_test

import (
	"testing"
	"time"

	"crewcall/internal/domain/shift"
)

func validShift() shift.Shift {
	return shift.Shift{
		ID:        "s-1",
		TeamID:    "team-1",
		Label:     "Gate crew",
		StartTime: time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 8, 2, 13, 0, 0, 0, time.UTC),
		Headcount: 4,
	}
}

// TestShift_Validate tests validation of Shift.
func TestShift_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*shift.Shift)
		wantErr bool
	}{
		{name: "valid", mutate: func(*shift.Shift) {}},
		{name: "missing team", mutate: func(s *shift.Shift) { s.TeamID = "" }, wantErr: true},
		{name: "empty label", mutate: func(s *shift.Shift) { s.Label = " " }, wantErr: true},
		{name: "reversed times", mutate: func(s *shift.Shift) { s.EndTime = s.StartTime.Add(-time.Hour) }, wantErr: true},
		{name: "zero headcount", mutate: func(s *shift.Shift) { s.Headcount = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validShift()
			tt.mutate(&s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Shift.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestShift_HourRange tests the availability-grid hour mapping.
func TestShift_HourRange(t *testing.T) {
	s := validShift()
	day, first, last := s.HourRange(time.UTC)
	if day.Format("2006-01-02") != "2025-08-02" {
		t.Errorf("day = %v", day)
	}
	if first != 9 || last != 12 {
		t.Errorf("hours = %d..%d, want 9..12 (end exclusive)", first, last)
	}

	// Overnight shift clips at the starting day's end.
	s.EndTime = time.Date(2025, 8, 3, 2, 0, 0, 0, time.UTC)
	s.StartTime = time.Date(2025, 8, 2, 22, 0, 0, 0, time.UTC)
	_, first, last = s.HourRange(time.UTC)
	if first != 22 || last != 23 {
		t.Errorf("overnight hours = %d..%d, want 22..23", first, last)
	}
}

// TestAssignment_Transitions tests confirm/decline semantics.
func TestAssignment_Transitions(t *testing.T) {
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	a := shift.Assignment{ShiftID: "s-1", VolunteerID: "v-1", Status: shift.AssignmentAssigned}
	if err := a.Confirm(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != shift.AssignmentConfirmed || !a.DecidedAt.Equal(now) {
		t.Errorf("confirm did not update assignment: %+v", a)
	}
	if err := a.Decline(now); err != shift.ErrAlreadyDecided {
		t.Errorf("expected ErrAlreadyDecided, got %v", err)
	}

	a = shift.Assignment{ShiftID: "s-1", VolunteerID: "v-1", Status: shift.AssignmentAssigned}
	if err := a.Decline(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != shift.AssignmentDeclined {
		t.Errorf("status = %s, want declined", a.Status)
	}
}

// TestTemplate_Validate tests validation of Template.
func TestTemplate_Validate(t *testing.T) {
	tmpl := shift.Template{
		TeamID:    "team-1",
		Label:     "Bar shift",
		StartTime: time.Date(2025, 8, 1, 18, 0, 0, 0, time.UTC),
		Duration:  4 * time.Hour,
		Headcount: 2,
		RRule:     "FREQ=DAILY;COUNT=3",
	}
	if err := tmpl.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tmpl.RRule = ""
	if err := tmpl.Validate(); err == nil {
		t.Error("expected error for missing recurrence rule")
	}
}
