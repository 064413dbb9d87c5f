package event_test

import (
	"testing"
	"time"

	"crewcall/internal/domain/event"
)

func validEvent() event.Event {
	return event.Event{
		ID:        "ev-1",
		Name:      "Harbour Lights Festival 2025",
		Timezone:  "UTC",
		StartTime: time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 8, 3, 18, 0, 0, 0, time.UTC),
	}
}

// TestEvent_Validate tests validation of Event.
func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*event.Event)
		wantErr error
	}{
		{name: "valid", mutate: func(*event.Event) {}},
		{name: "empty name", mutate: func(e *event.Event) { e.Name = "" }, wantErr: event.ErrEmptyName},
		{name: "zero start", mutate: func(e *event.Event) { e.StartTime = time.Time{} }, wantErr: event.ErrEmptyStart},
		{name: "zero end", mutate: func(e *event.Event) { e.EndTime = time.Time{} }, wantErr: event.ErrEmptyEnd},
		{name: "start equals end", mutate: func(e *event.Event) { e.EndTime = e.StartTime }, wantErr: event.ErrInvalidSpan},
		{name: "empty timezone", mutate: func(e *event.Event) { e.Timezone = "" }, wantErr: event.ErrEmptyTimezone},
		{name: "bogus timezone", mutate: func(e *event.Event) { e.Timezone = "Mars/Olympus" }, wantErr: event.ErrInvalidTimezone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Event.Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && err != tt.wantErr {
				t.Errorf("Event.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestEvent_AcceptsApplications tests the application window check.
func TestEvent_AcceptsApplications(t *testing.T) {
	e := validEvent()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if !e.AcceptsApplications(now) {
		t.Error("unbounded window should accept")
	}

	e.AppsOpen = now.Add(time.Hour)
	if e.AcceptsApplications(now) {
		t.Error("should reject before open")
	}

	e.AppsOpen = now.Add(-time.Hour)
	e.AppsClose = now.Add(time.Hour)
	if !e.AcceptsApplications(now) {
		t.Error("should accept inside window")
	}

	e.AppsClose = now.Add(-time.Minute)
	if e.AcceptsApplications(now) {
		t.Error("should reject after close")
	}
}

// TestEvent_Days tests the day span count.
func TestEvent_Days(t *testing.T) {
	e := validEvent()
	if got := e.Days(); got != 3 {
		t.Errorf("Days() = %d, want 3", got)
	}
	e.EndTime = time.Date(2025, 8, 1, 23, 0, 0, 0, time.UTC)
	if got := e.Days(); got != 1 {
		t.Errorf("Days() = %d, want 1", got)
	}
}
