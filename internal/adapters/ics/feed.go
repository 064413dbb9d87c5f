package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	eventdomain "crewcall/internal/domain/event"
	shiftdomain "crewcall/internal/domain/shift"
)

// FeedShift pairs a shift with the name of the team it belongs to.
type FeedShift struct {
	Shift    shiftdomain.Shift
	TeamName string
}

// BuildPersonalFeed renders a volunteer's confirmed shifts as an iCalendar feed.
// Calendar apps poll the feed URL, so the output must be stable: event UIDs are
// derived from shift IDs and ordering follows the input.
// PRE: shifts all belong to the given event
// POST: Returns a serialized VCALENDAR with one VEVENT per shift
func BuildPersonalFeed(ev eventdomain.Event, volunteerName string, shifts []FeedShift) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//crewcall//volunteer schedule//EN")
	cal.SetName(fmt.Sprintf("%s crew - %s", ev.Name, volunteerName))
	cal.SetDescription(fmt.Sprintf("Volunteer shifts for %s", ev.Name))

	for _, fs := range shifts {
		e := cal.AddEvent(fmt.Sprintf("shift-%s@crewcall", fs.Shift.ID))
		e.SetDtStampTime(time.Now().UTC())
		e.SetStartAt(fs.Shift.StartTime)
		e.SetEndAt(fs.Shift.EndTime)
		e.SetSummary(fmt.Sprintf("%s: %s", fs.TeamName, fs.Shift.Label))
		if ev.Location != "" {
			e.SetLocation(ev.Location)
		}
		e.SetDescription(fmt.Sprintf("Shift for %s at %s", fs.TeamName, ev.Name))
	}

	return cal.Serialize()
}
