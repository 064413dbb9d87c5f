package projections

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"crewcall/internal/domain/availability"
	"crewcall/internal/domain/event"
	"crewcall/internal/domain/preference"
	"crewcall/internal/domain/program"
	"crewcall/internal/domain/volunteer"
)

var gridBase = time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

// mockVolunteerStore implements the volunteer interfaces for projection tests.
type mockVolunteerStore struct {
	volunteers map[string]volunteer.Volunteer
}

func (m *mockVolunteerStore) GetByID(_ context.Context, id string) (volunteer.Volunteer, error) {
	v, ok := m.volunteers[id]
	if !ok {
		return volunteer.Volunteer{}, errors.New("not found")
	}
	return v, nil
}

func (m *mockVolunteerStore) ListByEvent(_ context.Context, eventID string) ([]volunteer.Volunteer, error) {
	var out []volunteer.Volunteer
	for _, v := range m.volunteers {
		if v.EventID == eventID {
			out = append(out, v)
		}
	}
	return out, nil
}

// mockEventStore implements the event interfaces for projection tests.
type mockEventStore struct {
	events map[string]event.Event
}

func (m *mockEventStore) GetByID(_ context.Context, id string) (event.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return event.Event{}, errors.New("not found")
	}
	return e, nil
}

// mockPreferenceStore implements the preference interfaces for projection tests.
type mockPreferenceStore struct {
	prefs map[string]preference.Preferences
}

func (m *mockPreferenceStore) GetByVolunteer(_ context.Context, volunteerID string) (preference.Preferences, error) {
	p, ok := m.prefs[volunteerID]
	if !ok {
		return preference.Preferences{}, errors.New("not found")
	}
	return p, nil
}

// mockProgramStore implements the program interfaces for projection tests.
type mockProgramStore struct {
	slots     map[string]program.Slot
	interests []program.Interest
}

func (m *mockProgramStore) GetSlot(_ context.Context, id string) (program.Slot, error) {
	s, ok := m.slots[id]
	if !ok {
		return program.Slot{}, errors.New("not found")
	}
	return s, nil
}

func (m *mockProgramStore) ListInterestsByVolunteer(_ context.Context, volunteerID string) ([]program.Interest, error) {
	var out []program.Interest
	for _, in := range m.interests {
		if in.VolunteerID == volunteerID {
			out = append(out, in)
		}
	}
	return out, nil
}

type gridFixture struct {
	vols   *mockVolunteerStore
	events *mockEventStore
	prefs  *mockPreferenceStore
	prog   *mockProgramStore
}

// newGridFixture sets up a 3-day festival opening at noon with one approved
// volunteer and no declared preferences.
func newGridFixture() gridFixture {
	f := gridFixture{
		vols:   &mockVolunteerStore{volunteers: make(map[string]volunteer.Volunteer)},
		events: &mockEventStore{events: make(map[string]event.Event)},
		prefs:  &mockPreferenceStore{prefs: make(map[string]preference.Preferences)},
		prog:   &mockProgramStore{slots: make(map[string]program.Slot)},
	}
	f.events.events["ev-1"] = event.Event{
		ID: "ev-1", Name: "Summer Fest", Timezone: "UTC",
		StartTime: gridBase,
		EndTime:   gridBase.AddDate(0, 0, 2),
		Active:    true,
	}
	f.vols.volunteers["vol-1"] = volunteer.Volunteer{
		ID: "vol-1", EventID: "ev-1", Email: "vol@crewcall.test",
		Name: "Alex Doe", Status: volunteer.StatusApproved,
	}
	return f
}

func (f gridFixture) deps() GetAvailabilityGridDeps {
	return GetAvailabilityGridDeps{
		VolunteerStore:  f.vols,
		EventStore:      f.events,
		PreferenceStore: f.prefs,
		ProgramStore:    f.prog,
	}
}

func TestQueryAvailabilityGrid_Defaults(t *testing.T) {
	f := newGridFixture()
	result, err := QueryAvailabilityGrid(context.Background(), "vol-1", f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(result.Days))
	}
	if result.Days[0].Date != "2026-07-15" {
		t.Errorf("expected first day 2026-07-15, got %s", result.Days[0].Date)
	}

	first := result.Days[0]
	if first.Hours[8] != availability.StateUnavailable {
		t.Errorf("expected 08:00 unavailable before opening, got %s", first.Hours[8])
	}
	if first.Hours[10] != availability.StateAvoid {
		t.Errorf("expected 10:00 avoid in briefing window, got %s", first.Hours[10])
	}
	if first.Hours[12] != availability.StateAvailable {
		t.Errorf("expected 12:00 available, got %s", first.Hours[12])
	}

	middle := result.Days[1]
	for h := 0; h < 24; h++ {
		if middle.Hours[h] != availability.StateAvailable {
			t.Fatalf("expected middle day fully available, got %s at %02d:00", middle.Hours[h], h)
		}
	}

	last := result.Days[2]
	if last.Hours[11] != availability.StateAvailable {
		t.Errorf("expected 11:00 available on last day, got %s", last.Hours[11])
	}
	if last.Hours[12] != availability.StateUnavailable {
		t.Errorf("expected 12:00 unavailable after close, got %s", last.Hours[12])
	}
}

func TestQueryAvailabilityGrid_PreferencesAndExceptions(t *testing.T) {
	f := newGridFixture()
	excStart := gridBase.AddDate(0, 0, 1).Add(2 * time.Hour)  // day 2, 14:00
	excEnd := gridBase.AddDate(0, 0, 1).Add(4 * time.Hour)    // day 2, 16:00
	f.prefs.prefs["vol-1"] = preference.Preferences{
		VolunteerID:      "vol-1",
		TimingConfigured: true,
		TimingStartHour:  10,
		TimingEndHour:    20,
		ExceptionsRaw: fmt.Sprintf(`[{"start":%q,"end":%q,"state":"unavailable"}]`,
			excStart.Format(time.RFC3339), excEnd.Format(time.RFC3339)),
	}

	result, err := QueryAvailabilityGrid(context.Background(), "vol-1", f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	middle := result.Days[1]
	if middle.Hours[8] != availability.StateUnavailable {
		t.Errorf("expected 08:00 unavailable outside window, got %s", middle.Hours[8])
	}
	if middle.Hours[9] != availability.StateAvoid {
		t.Errorf("expected 09:00 avoid at window edge, got %s", middle.Hours[9])
	}
	if middle.Hours[12] != availability.StateAvailable {
		t.Errorf("expected 12:00 available inside window, got %s", middle.Hours[12])
	}
	if middle.Hours[14] != availability.StateUnavailable || middle.Hours[15] != availability.StateUnavailable {
		t.Error("expected exception hours 14:00-16:00 unavailable")
	}
	if middle.Hours[16] != availability.StateAvailable {
		t.Errorf("expected 16:00 available after exception, got %s", middle.Hours[16])
	}
	if middle.Hours[20] != availability.StateAvoid {
		t.Errorf("expected 20:00 avoid at window end, got %s", middle.Hours[20])
	}
	if middle.Hours[21] != availability.StateUnavailable {
		t.Errorf("expected 21:00 unavailable past window, got %s", middle.Hours[21])
	}
}

func TestQueryAvailabilityGrid_InterestDowngrades(t *testing.T) {
	f := newGridFixture()
	slotStart := gridBase.AddDate(0, 0, 1).Add(7 * time.Hour) // day 2, 19:00
	f.prog.slots["slot-1"] = program.Slot{
		ID: "slot-1", EventID: "ev-1", Title: "Headliner", Stage: "Main",
		StartTime: slotStart, EndTime: slotStart.Add(90 * time.Minute),
	}
	f.prog.interests = []program.Interest{{ID: "int-1", SlotID: "slot-1", VolunteerID: "vol-1"}}

	result, err := QueryAvailabilityGrid(context.Background(), "vol-1", f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	middle := result.Days[1]
	if middle.Hours[19] != availability.StateAvoid || middle.Hours[20] != availability.StateAvoid {
		t.Errorf("expected show hours downgraded to avoid, got %s and %s", middle.Hours[19], middle.Hours[20])
	}
	if middle.Hours[21] != availability.StateAvailable {
		t.Errorf("expected 21:00 available after show, got %s", middle.Hours[21])
	}
}

func TestQueryAvailabilityGrid_MalformedExceptionEntry(t *testing.T) {
	f := newGridFixture()
	f.prefs.prefs["vol-1"] = preference.Preferences{
		VolunteerID:   "vol-1",
		ExceptionsRaw: `[{"start":"not a time","end":"also not","state":"unavailable"}]`,
	}
	result, err := QueryAvailabilityGrid(context.Background(), "vol-1", f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning for skipped entry, got %d", len(result.Warnings))
	}
	// Bad entries fail open: the grid still renders.
	if len(result.Days) != 3 {
		t.Errorf("expected 3 days, got %d", len(result.Days))
	}
}
