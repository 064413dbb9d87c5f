package availability

import "time"

// hourOverride is an exception expanded to whole-hour granularity,
// keyed by (calendar day, local hour).
type hourOverride map[string]map[int]State

// BuildExpectations derives, for every calendar day touched by the event
// window, 24 hourly availability states for one volunteer. Rules apply in
// a fixed precedence order per hour: approved exceptions win outright,
// then the preference window shapes the day, interest events downgrade
// available hours, and the festival open/close boundaries clamp the first
// and last days. Hours no rule touches default to available.
//
// The calculator is pure: it holds no state, performs no I/O, and
// identical inputs always produce identical output.
//
// PRE: win is a valid non-degenerate window; optional inputs may be nil
// POST: returns one DayExpectation per day, ordered chronologically
func BuildExpectations(win Window, exceptions []Exception, pref *PreferenceWindow, interests []InterestEvent) ([]DayExpectation, error) {
	if err := win.Validate(); err != nil {
		return nil, err
	}
	if pref != nil {
		if err := pref.Validate(); err != nil {
			return nil, err
		}
	}

	start := win.Start.In(win.Location)
	end := win.End.In(win.Location)
	firstDay := dayOf(start)
	lastDay := dayOf(end)
	overrides := expandExceptions(exceptions, win.Location)

	var days []DayExpectation
	for d := firstDay; !d.After(lastDay); d = d.AddDate(0, 0, 1) {
		exp := DayExpectation{Date: d}
		key := exp.Key()
		isFirst := d.Equal(firstDay)
		isLast := d.Equal(lastDay)
		for h := 0; h < 24; h++ {
			exp.Hours[h] = hourState(d, h, overrides[key], pref, interests, start, end, isFirst, isLast)
		}
		days = append(days, exp)
	}
	return days, nil
}

// hourState resolves one hour through the precedence chain.
func hourState(day time.Time, hour int, overrides map[int]State, pref *PreferenceWindow, interests []InterestEvent, start, end time.Time, isFirst, isLast bool) State {
	// Exceptions override every other rule, including boundary clamps.
	if st, ok := overrides[hour]; ok {
		return st
	}

	state := StateAvailable
	if pref != nil {
		state = shapeByPreference(*pref, hour, isFirst)
	}

	// Interest overlap only ever downgrades available hours.
	if overlapsInterest(day, hour, interests) && StateAvoid.MoreRestrictive(state) {
		state = StateAvoid
	}

	if isFirst {
		// Volunteers are expected around for a pre-event briefing window.
		lead := start.Hour() - hour
		if lead > 3 {
			return StateUnavailable
		}
		if lead >= 1 {
			return StateAvoid
		}
	}
	if isLast {
		hourStart := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
		if !hourStart.Before(end) {
			return StateUnavailable
		}
	}

	return state
}

// shapeByPreference applies the volunteer's declared daily working hours.
// A one-hour avoid buffer flanks each boundary so volunteers are not cut
// off mid-shift.
func shapeByPreference(pref PreferenceWindow, hour int, isFirst bool) State {
	if !pref.Overnight() {
		switch {
		case hour < pref.StartHour-1:
			return StateUnavailable
		case hour == pref.StartHour-1:
			return StateAvoid
		case hour == pref.EndHour:
			return StateAvoid
		case hour > pref.EndHour:
			return StateUnavailable
		}
		return StateAvailable
	}

	// Overnight window: working hours run from StartHour through midnight
	// to EndHour. Hours in the daytime gap are shaped by their distance to
	// the next window start.
	if hour >= pref.StartHour || hour < pref.EndHour {
		return StateAvailable
	}
	if hour == pref.EndHour && !isFirst {
		return StateAvoid
	}
	if pref.StartHour-hour == 1 {
		return StateAvoid
	}
	return StateUnavailable
}

// overlapsInterest reports whether any selected program timeslot overlaps
// the hour [day+hour, day+hour+1).
func overlapsInterest(day time.Time, hour int, interests []InterestEvent) bool {
	hourStart := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
	hourEnd := hourStart.Add(time.Hour)
	for _, ev := range interests {
		if ev.Start.Before(hourEnd) && ev.End.After(hourStart) {
			return true
		}
	}
	return false
}

// expandExceptions flattens exception ranges into per-hour overrides. The
// partial starting hour is floored to the top of the hour and included;
// the end is exclusive. Where ranges overlap, the first exception wins.
func expandExceptions(exceptions []Exception, loc *time.Location) hourOverride {
	overrides := make(hourOverride)
	for _, exc := range exceptions {
		if exc.Validate() != nil {
			continue
		}
		end := exc.End.In(loc)
		t := exc.Start.In(loc)
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
		for ; t.Before(end); t = t.Add(time.Hour) {
			key := t.Format("2006-01-02")
			if overrides[key] == nil {
				overrides[key] = make(map[int]State)
			}
			if _, taken := overrides[key][t.Hour()]; !taken {
				overrides[key][t.Hour()] = exc.State
			}
		}
	}
	return overrides
}

// dayOf truncates t to midnight in its own location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
