package volunteer_test

import (
	"testing"
	"time"

	"crewcall/internal/domain/volunteer"
)

func validVolunteer() volunteer.Volunteer {
	return volunteer.Volunteer{
		ID:      "v-1",
		EventID: "ev-1",
		Email:   "vol@crewcall.example",
		Name:    "Ana Volunteer",
		Status:  volunteer.StatusApplied,
	}
}

// TestVolunteer_Validate tests validation of Volunteer.
func TestVolunteer_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*volunteer.Volunteer)
		wantErr bool
	}{
		{name: "valid", mutate: func(*volunteer.Volunteer) {}, wantErr: false},
		{name: "empty name", mutate: func(v *volunteer.Volunteer) { v.Name = " " }, wantErr: true},
		{name: "bad email", mutate: func(v *volunteer.Volunteer) { v.Email = "nope" }, wantErr: true},
		{name: "missing event", mutate: func(v *volunteer.Volunteer) { v.EventID = "" }, wantErr: true},
		{name: "bad status", mutate: func(v *volunteer.Volunteer) { v.Status = "maybe" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validVolunteer()
			tt.mutate(&v)
			err := v.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Volunteer.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestVolunteer_ApproveReject tests the application decision transitions.
func TestVolunteer_ApproveReject(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	v := validVolunteer()
	if err := v.Approve("admin-1", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsApproved() || v.DecidedBy != "admin-1" || !v.DecidedAt.Equal(now) {
		t.Errorf("approval metadata not set: %+v", v)
	}
	if err := v.Reject("admin-1", now); err != volunteer.ErrAlreadyDecided {
		t.Errorf("expected ErrAlreadyDecided, got %v", err)
	}

	v = validVolunteer()
	if err := v.Reject("lead-1", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != volunteer.StatusRejected {
		t.Errorf("status = %s, want rejected", v.Status)
	}
}

// TestVolunteer_Withdraw tests withdrawing an application.
func TestVolunteer_Withdraw(t *testing.T) {
	v := validVolunteer()
	if err := v.Withdraw(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Withdraw(); err != volunteer.ErrAlreadyWithdrew {
		t.Errorf("expected ErrAlreadyWithdrew, got %v", err)
	}
}
