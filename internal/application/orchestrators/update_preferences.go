package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"crewcall/internal/domain/availability"
	"crewcall/internal/domain/preference"
)

// PreferenceStoreForUpdate defines the store interface needed by UpdatePreferences.
type PreferenceStoreForUpdate interface {
	Save(ctx context.Context, p preference.Preferences) error
}

// UpdatePreferencesInput carries the full new preference state for a volunteer.
type UpdatePreferencesInput struct {
	VolunteerID      string
	TimingConfigured bool
	TimingStartHour  int
	TimingEndHour    int
	HotelChoice      string
	TrainingCourses  string
	ExceptionsRaw    string
}

// UpdatePreferencesDeps holds dependencies for UpdatePreferences.
type UpdatePreferencesDeps struct {
	PreferenceStore PreferenceStoreForUpdate
}

var ErrMalformedExceptions = errors.New("availability exceptions are not valid JSON")

// ExecuteUpdatePreferences validates and stores a volunteer's preferences.
// Stored exception blobs are tolerated when unreadable on the read path, but
// new writes must parse so bad data never enters the database.
// PRE: VolunteerID is non-empty
// POST: Preferences row replaced with the given state
func ExecuteUpdatePreferences(ctx context.Context, input UpdatePreferencesInput, deps UpdatePreferencesDeps) error {
	prefs := preference.Preferences{
		VolunteerID:      input.VolunteerID,
		TimingConfigured: input.TimingConfigured,
		TimingStartHour:  input.TimingStartHour,
		TimingEndHour:    input.TimingEndHour,
		HotelChoice:      input.HotelChoice,
		TrainingCourses:  input.TrainingCourses,
		ExceptionsRaw:    input.ExceptionsRaw,
	}
	if err := prefs.Validate(); err != nil {
		return err
	}

	if prefs.ExceptionsRaw != "" {
		if !json.Valid([]byte(prefs.ExceptionsRaw)) {
			return ErrMalformedExceptions
		}
		if _, warnings := availability.DecodeExceptions(prefs.ExceptionsRaw); len(warnings) > 0 {
			slog.Warn("preference_event", "event", "exceptions_partially_invalid", "volunteer_id", input.VolunteerID, "skipped", len(warnings))
		}
	}

	if err := deps.PreferenceStore.Save(ctx, prefs); err != nil {
		return err
	}

	slog.Info("preference_event", "event", "preferences_updated", "volunteer_id", input.VolunteerID,
		"timing_configured", input.TimingConfigured, "hotel", input.HotelChoice)
	return nil
}
