package availability_test

import (
	"testing"
	"time"

	"crewcall/internal/domain/availability"
)

// window returns a three-day UTC festival window used across tests:
// 2025-08-01T10:00 through 2025-08-03T18:00.
func window() availability.Window {
	return availability.Window{
		Start:    time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 8, 3, 18, 0, 0, 0, time.UTC),
		Location: time.UTC,
	}
}

// TestBuildExpectations_DegenerateWindow verifies the fail-fast precondition.
func TestBuildExpectations_DegenerateWindow(t *testing.T) {
	win := window()
	win.End = win.Start
	if _, err := availability.BuildExpectations(win, nil, nil, nil); err != availability.ErrInvalidWindow {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	win.End = win.Start.Add(-time.Hour)
	if _, err := availability.BuildExpectations(win, nil, nil, nil); err != availability.ErrInvalidWindow {
		t.Fatalf("expected ErrInvalidWindow for reversed window, got %v", err)
	}
	win = window()
	win.Location = nil
	if _, err := availability.BuildExpectations(win, nil, nil, nil); err != availability.ErrNoLocation {
		t.Fatalf("expected ErrNoLocation, got %v", err)
	}
}

// TestBuildExpectations_BoundaryClamps covers the bare-window scenario:
// no exceptions, no preference window, no interests.
func TestBuildExpectations_BoundaryClamps(t *testing.T) {
	days, err := availability.BuildExpectations(window(), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}

	// First day: >3h before the 10:00 start is unavailable, 1-3h is avoid.
	for h := 0; h <= 6; h++ {
		if got := days[0].Hours[h]; got != availability.StateUnavailable {
			t.Errorf("day 1 hour %d = %s, want unavailable", h, got)
		}
	}
	for h := 7; h <= 9; h++ {
		if got := days[0].Hours[h]; got != availability.StateAvoid {
			t.Errorf("day 1 hour %d = %s, want avoid", h, got)
		}
	}
	for h := 10; h <= 23; h++ {
		if got := days[0].Hours[h]; got != availability.StateAvailable {
			t.Errorf("day 1 hour %d = %s, want available", h, got)
		}
	}

	// Middle day is fully open.
	for h := 0; h < 24; h++ {
		if got := days[1].Hours[h]; got != availability.StateAvailable {
			t.Errorf("day 2 hour %d = %s, want available", h, got)
		}
	}

	// Last day: at or after the 18:00 end is unavailable.
	for h := 0; h <= 17; h++ {
		if got := days[2].Hours[h]; got != availability.StateAvailable {
			t.Errorf("day 3 hour %d = %s, want available", h, got)
		}
	}
	for h := 18; h <= 23; h++ {
		if got := days[2].Hours[h]; got != availability.StateUnavailable {
			t.Errorf("day 3 hour %d = %s, want unavailable", h, got)
		}
	}
}

// TestBuildExpectations_SameDayPreference covers the 9-17 declared window
// with its one-hour avoid buffers, checked on a middle day.
func TestBuildExpectations_SameDayPreference(t *testing.T) {
	pref := &availability.PreferenceWindow{StartHour: 9, EndHour: 17}
	days, err := availability.BuildExpectations(window(), nil, pref, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mid := days[1]
	tests := []struct {
		hour int
		want availability.State
	}{
		{0, availability.StateUnavailable},
		{7, availability.StateUnavailable},
		{8, availability.StateAvoid},
		{9, availability.StateAvailable},
		{12, availability.StateAvailable},
		{16, availability.StateAvailable},
		{17, availability.StateAvoid},
		{18, availability.StateUnavailable},
		{23, availability.StateUnavailable},
	}
	for _, tt := range tests {
		if got := mid.Hours[tt.hour]; got != tt.want {
			t.Errorf("hour %d = %s, want %s", tt.hour, got, tt.want)
		}
	}
}

// TestBuildExpectations_OvernightPreference covers a 22-06 window that
// wraps past midnight.
func TestBuildExpectations_OvernightPreference(t *testing.T) {
	pref := &availability.PreferenceWindow{StartHour: 22, EndHour: 6}
	days, err := availability.BuildExpectations(window(), nil, pref, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mid := days[1]
	for h := 0; h <= 5; h++ {
		if got := mid.Hours[h]; got != availability.StateAvailable {
			t.Errorf("hour %d = %s, want available", h, got)
		}
	}
	if got := mid.Hours[6]; got != availability.StateAvoid {
		t.Errorf("hour 6 = %s, want avoid (trailing buffer on non-first day)", got)
	}
	for h := 7; h <= 20; h++ {
		if got := mid.Hours[h]; got != availability.StateUnavailable {
			t.Errorf("hour %d = %s, want unavailable", h, got)
		}
	}
	if got := mid.Hours[21]; got != availability.StateAvoid {
		t.Errorf("hour 21 = %s, want avoid (one hour before next start)", got)
	}
	for h := 22; h <= 23; h++ {
		if got := mid.Hours[h]; got != availability.StateAvailable {
			t.Errorf("hour %d = %s, want available", h, got)
		}
	}

	// On the first day the trailing buffer at the window end does not
	// apply; the boundary clamp governs the morning anyway.
	if got := days[0].Hours[6]; got != availability.StateUnavailable {
		t.Errorf("first day hour 6 = %s, want unavailable", got)
	}
}

// TestBuildExpectations_ExceptionPrecedence verifies that exceptions beat
// contradicting preference windows and boundary clamps.
func TestBuildExpectations_ExceptionPrecedence(t *testing.T) {
	// Hours 0-5 on the first day are clamped unavailable; an approved
	// exception reopens 2:00-4:00.
	exc := availability.Exception{
		Start: time.Date(2025, 8, 1, 2, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 8, 1, 4, 0, 0, 0, time.UTC),
		State: availability.StateAvailable,
	}
	// Contradicting preference window shuts the whole morning.
	pref := &availability.PreferenceWindow{StartHour: 12, EndHour: 20}

	days, err := availability.BuildExpectations(window(), []availability.Exception{exc}, pref, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, h := range []int{2, 3} {
		if got := days[0].Hours[h]; got != availability.StateAvailable {
			t.Errorf("hour %d = %s, want available (exception wins)", h, got)
		}
	}
	if got := days[0].Hours[4]; got != availability.StateUnavailable {
		t.Errorf("hour 4 = %s, want unavailable (exception end is exclusive)", got)
	}

	// Exception over the last-day closing clamp also wins.
	late := availability.Exception{
		Start: time.Date(2025, 8, 3, 19, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 8, 3, 21, 0, 0, 0, time.UTC),
		State: availability.StateAvoid,
	}
	days, err = availability.BuildExpectations(window(), []availability.Exception{late}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, h := range []int{19, 20} {
		if got := days[2].Hours[h]; got != availability.StateAvoid {
			t.Errorf("last day hour %d = %s, want avoid (exception wins over clamp)", h, got)
		}
	}
	if got := days[2].Hours[21]; got != availability.StateUnavailable {
		t.Errorf("last day hour 21 = %s, want unavailable", got)
	}
}

// TestBuildExpectations_ExceptionHourFlooring verifies that a range
// starting mid-hour covers the floored starting hour once.
func TestBuildExpectations_ExceptionHourFlooring(t *testing.T) {
	exc := availability.Exception{
		Start: time.Date(2025, 8, 2, 10, 30, 0, 0, time.UTC),
		End:   time.Date(2025, 8, 2, 13, 0, 0, 0, time.UTC),
		State: availability.StateUnavailable,
	}
	days, err := availability.BuildExpectations(window(), []availability.Exception{exc}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, h := range []int{10, 11, 12} {
		if got := days[1].Hours[h]; got != availability.StateUnavailable {
			t.Errorf("hour %d = %s, want unavailable", h, got)
		}
	}
	if got := days[1].Hours[13]; got != availability.StateAvailable {
		t.Errorf("hour 13 = %s, want available (end exclusive)", got)
	}
	if got := days[1].Hours[9]; got != availability.StateAvailable {
		t.Errorf("hour 9 = %s, want available", got)
	}
}

// TestBuildExpectations_InterestDowngrade verifies the downgrade-only
// invariant: available becomes avoid, avoid and unavailable are untouched.
func TestBuildExpectations_InterestDowngrade(t *testing.T) {
	pref := &availability.PreferenceWindow{StartHour: 9, EndHour: 17}
	interest := availability.InterestEvent{
		ID: "slot-1",
		// Overlaps hours 7 (unavailable), 8 (avoid) and 9-11 (available).
		Start: time.Date(2025, 8, 2, 7, 30, 0, 0, time.UTC),
		End:   time.Date(2025, 8, 2, 12, 0, 0, 0, time.UTC),
	}
	days, err := availability.BuildExpectations(window(), nil, pref, []availability.InterestEvent{interest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mid := days[1]
	if got := mid.Hours[7]; got != availability.StateUnavailable {
		t.Errorf("hour 7 = %s, want unavailable (never upgraded)", got)
	}
	if got := mid.Hours[8]; got != availability.StateAvoid {
		t.Errorf("hour 8 = %s, want avoid (not promoted)", got)
	}
	for h := 9; h <= 11; h++ {
		if got := mid.Hours[h]; got != availability.StateAvoid {
			t.Errorf("hour %d = %s, want avoid (interest downgrade)", h, got)
		}
	}
	if got := mid.Hours[12]; got != availability.StateAvailable {
		t.Errorf("hour 12 = %s, want available (interest end exclusive)", got)
	}
}

// TestBuildExpectations_ClampOverridesInterest verifies the first-day
// clamp is authoritative over interest shaping when it fires.
func TestBuildExpectations_ClampOverridesInterest(t *testing.T) {
	interest := availability.InterestEvent{
		ID:    "slot-2",
		Start: time.Date(2025, 8, 1, 4, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 8, 1, 6, 0, 0, 0, time.UTC),
	}
	days, err := availability.BuildExpectations(window(), nil, nil, []availability.InterestEvent{interest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, h := range []int{4, 5} {
		if got := days[0].Hours[h]; got != availability.StateUnavailable {
			t.Errorf("hour %d = %s, want unavailable (clamp beats interest)", h, got)
		}
	}
}

// TestBuildExpectations_Timezone verifies days and hours are normalized to
// the event's timezone, not the inputs'.
func TestBuildExpectations_Timezone(t *testing.T) {
	loc, err := time.LoadLocation("Pacific/Auckland")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	win := availability.Window{
		// 2025-08-01T22:00Z is already 2025-08-02 10:00 in Auckland.
		Start:    time.Date(2025, 8, 1, 22, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 8, 3, 6, 0, 0, 0, time.UTC),
		Location: loc,
	}
	days, err := availability.BuildExpectations(win, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 local days, got %d", len(days))
	}
	if got := days[0].Key(); got != "2025-08-02" {
		t.Errorf("first day = %s, want 2025-08-02", got)
	}
	// Local start hour is 10:00, so the briefing clamp mirrors the UTC case.
	if got := days[0].Hours[6]; got != availability.StateUnavailable {
		t.Errorf("first local day hour 6 = %s, want unavailable", got)
	}
	if got := days[0].Hours[9]; got != availability.StateAvoid {
		t.Errorf("first local day hour 9 = %s, want avoid", got)
	}
}

// TestBuildExpectations_Idempotent verifies identical inputs yield
// identical output.
func TestBuildExpectations_Idempotent(t *testing.T) {
	pref := &availability.PreferenceWindow{StartHour: 8, EndHour: 22}
	exc := availability.Exception{
		Start: time.Date(2025, 8, 2, 14, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 8, 2, 16, 0, 0, 0, time.UTC),
		State: availability.StateUnavailable,
	}
	interest := availability.InterestEvent{
		ID:    "slot-3",
		Start: time.Date(2025, 8, 2, 18, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 8, 2, 20, 0, 0, 0, time.UTC),
	}

	first, err := availability.BuildExpectations(window(), []availability.Exception{exc}, pref, []availability.InterestEvent{interest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := availability.BuildExpectations(window(), []availability.Exception{exc}, pref, []availability.InterestEvent{interest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("day counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Date.Equal(second[i].Date) || first[i].Hours != second[i].Hours {
			t.Errorf("day %d differs between invocations", i)
		}
	}
}

// TestState_MoreRestrictive pins the restrictiveness ordering.
func TestState_MoreRestrictive(t *testing.T) {
	if !availability.StateUnavailable.MoreRestrictive(availability.StateAvoid) {
		t.Error("unavailable should outrank avoid")
	}
	if !availability.StateAvoid.MoreRestrictive(availability.StateAvailable) {
		t.Error("avoid should outrank available")
	}
	if availability.StateAvailable.MoreRestrictive(availability.StateAvoid) {
		t.Error("available should not outrank avoid")
	}
	if availability.State("bogus").Known() {
		t.Error("unknown state should not be known")
	}
}
