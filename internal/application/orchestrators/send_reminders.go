package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	emailAdapter "crewcall/internal/adapters/email"
	"crewcall/internal/domain/event"
	"crewcall/internal/domain/message"
	"crewcall/internal/domain/shift"
	"crewcall/internal/domain/volunteer"
)

// EventStoreForReminders defines the event store interface needed by SendReminders.
type EventStoreForReminders interface {
	GetActive(ctx context.Context) (event.Event, error)
}

// ShiftStoreForReminders defines the shift store interface needed by SendReminders.
type ShiftStoreForReminders interface {
	ListShiftsByEvent(ctx context.Context, eventID string) ([]shift.Shift, error)
	ListAssignmentsByShift(ctx context.Context, shiftID string) ([]shift.Assignment, error)
	GetTeam(ctx context.Context, id string) (shift.Team, error)
}

// SendRemindersDeps holds dependencies for SendReminders.
type SendRemindersDeps struct {
	EventStore     EventStoreForReminders
	ShiftStore     ShiftStoreForReminders
	VolunteerStore VolunteerStoreForSMS
	MessageStore   MessageLogSink
	EmailSender    emailAdapter.Sender
	EmailFrom      string
	GenerateID     func() string
	Now            func() time.Time
}

// SendRemindersResult reports one reminder pass.
type SendRemindersResult struct {
	Volunteers int
	Shifts     int
}

// ExecuteSendReminders emails every volunteer who has a shift tomorrow a
// summary of those shifts. One email per volunteer, declined assignments
// excluded. Without an active event the pass is a no-op.
// POST: one message log row per reminder email
func ExecuteSendReminders(ctx context.Context, deps SendRemindersDeps) (SendRemindersResult, error) {
	ev, err := deps.EventStore.GetActive(ctx)
	if err != nil {
		return SendRemindersResult{}, nil
	}
	loc, err := ev.LoadLocation()
	if err != nil {
		return SendRemindersResult{}, err
	}

	tomorrow := deps.Now().In(loc).AddDate(0, 0, 1).Format("2006-01-02")

	shifts, err := deps.ShiftStore.ListShiftsByEvent(ctx, ev.ID)
	if err != nil {
		return SendRemindersResult{}, err
	}

	// Shift lists per volunteer, tomorrow only.
	perVolunteer := make(map[string][]shift.Shift)
	counted := 0
	for _, s := range shifts {
		if s.StartTime.In(loc).Format("2006-01-02") != tomorrow {
			continue
		}
		counted++
		assignments, err := deps.ShiftStore.ListAssignmentsByShift(ctx, s.ID)
		if err != nil {
			return SendRemindersResult{}, err
		}
		for _, a := range assignments {
			if a.Status == shift.AssignmentDeclined {
				continue
			}
			perVolunteer[a.VolunteerID] = append(perVolunteer[a.VolunteerID], s)
		}
	}

	result := SendRemindersResult{Shifts: counted}
	for volID, tomorrowShifts := range perVolunteer {
		vol, err := deps.VolunteerStore.GetByID(ctx, volID)
		if err != nil {
			continue
		}
		if vol.Status == volunteer.StatusWithdrawn {
			continue
		}
		if err := sendReminderEmail(ctx, deps, ev, vol, tomorrowShifts, loc); err != nil {
			slog.Error("reminder_event", "event", "reminder_failed", "volunteer_id", vol.ID, "error", err)
			continue
		}
		result.Volunteers++
	}

	slog.Info("reminder_event", "event", "reminders_sent",
		"event_id", ev.ID, "volunteers", result.Volunteers, "shifts", result.Shifts)
	return result, nil
}

func sendReminderEmail(ctx context.Context, deps SendRemindersDeps, ev event.Event, vol volunteer.Volunteer, shifts []shift.Shift, loc *time.Location) error {
	sort.Slice(shifts, func(i, j int) bool { return shifts[i].StartTime.Before(shifts[j].StartTime) })

	var lines strings.Builder
	for _, s := range shifts {
		teamName := ""
		if team, err := deps.ShiftStore.GetTeam(ctx, s.TeamID); err == nil {
			teamName = team.Name + ", "
		}
		fmt.Fprintf(&lines, "<li>%s%s: %s to %s</li>", teamName, s.Label,
			s.StartTime.In(loc).Format("15:04"), s.EndTime.In(loc).Format("15:04"))
	}
	body := fmt.Sprintf("<p>Hi %s,</p><p>a reminder of your shifts tomorrow at %s:</p><ul>%s</ul>",
		vol.Name, ev.Name, lines.String())
	subject := fmt.Sprintf("Your shifts tomorrow at %s", ev.Name)

	sent, err := deps.EmailSender.Send(ctx, emailAdapter.SendRequest{
		To:      vol.Email,
		From:    deps.EmailFrom,
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		return err
	}
	if deps.MessageStore != nil {
		_ = deps.MessageStore.Save(ctx, message.Log{
			ID:                deps.GenerateID(),
			Channel:           message.ChannelEmail,
			VolunteerID:       vol.ID,
			Recipient:         vol.Email,
			Subject:           subject,
			Body:              body,
			Status:            message.StatusSent,
			ProviderMessageID: sent.MessageID,
			CreatedAt:         deps.Now(),
		})
	}
	return nil
}
