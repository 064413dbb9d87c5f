package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "crewcall/internal/adapters/email"
	"crewcall/internal/domain/audit"
	"crewcall/internal/domain/event"
	"crewcall/internal/domain/volunteer"
)

// VolunteerStoreForReview defines the volunteer store interface needed by ReviewApplication.
type VolunteerStoreForReview interface {
	GetByID(ctx context.Context, id string) (volunteer.Volunteer, error)
	Save(ctx context.Context, v volunteer.Volunteer) error
}

// EventStoreForReview defines the event store interface needed by ReviewApplication.
type EventStoreForReview interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

// AuditSink records audit events. A nil sink disables auditing.
type AuditSink interface {
	Save(ctx context.Context, e audit.Event) error
}

// ReviewApplicationInput carries an approve or reject decision.
type ReviewApplicationInput struct {
	VolunteerID string
	Approve     bool
	TeamID      string // optional initial team when approving
	DeciderID   string
	DeciderMail string
}

// ReviewApplicationDeps holds dependencies for ReviewApplication.
type ReviewApplicationDeps struct {
	VolunteerStore VolunteerStoreForReview
	EventStore     EventStoreForReview
	EmailSender    emailAdapter.Sender
	AuditStore     AuditSink
	Now            func() time.Time
}

var ErrNotPendingReview = errors.New("application is not awaiting a decision")

// ExecuteReviewApplication approves or rejects a volunteer application,
// notifies the applicant and records the decision in the audit log.
// PRE: VolunteerID names an application in applied status
// POST: Status is approved or rejected; decision email sent; audit event stored
func ExecuteReviewApplication(ctx context.Context, input ReviewApplicationInput, deps ReviewApplicationDeps) error {
	vol, err := deps.VolunteerStore.GetByID(ctx, input.VolunteerID)
	if err != nil {
		return err
	}
	if vol.Status != volunteer.StatusApplied {
		return ErrNotPendingReview
	}

	now := deps.Now()
	action := audit.ActionReject
	if input.Approve {
		if err := vol.Approve(input.DeciderID, now); err != nil {
			return err
		}
		if input.TeamID != "" {
			vol.TeamID = input.TeamID
		}
		action = audit.ActionApprove
	} else {
		if err := vol.Reject(input.DeciderID, now); err != nil {
			return err
		}
	}

	if err := deps.VolunteerStore.Save(ctx, vol); err != nil {
		return err
	}

	ev, err := deps.EventStore.GetByID(ctx, vol.EventID)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Your volunteer application for %s", ev.Name)
	body := fmt.Sprintf("<p>Hi %s,</p><p>your application for %s was not accepted this time. Thank you for offering to help!</p>", vol.Name, ev.Name)
	if input.Approve {
		body = fmt.Sprintf("<p>Hi %s,</p><p>welcome to the crew! Your application for %s has been approved. Log in to set your availability and pick the shows you want to see.</p>", vol.Name, ev.Name)
	}
	if _, err := deps.EmailSender.Send(ctx, emailAdapter.SendRequest{
		To:      vol.Email,
		Subject: subject,
		HTML:    body,
	}); err != nil {
		slog.Error("application_event", "event", "decision_email_failed", "volunteer_id", vol.ID, "error", err)
	}

	if deps.AuditStore != nil {
		ae := audit.NewEvent(input.DeciderID, input.DeciderMail, "", audit.CategoryApplication, action).
			WithResource("volunteer", vol.ID).
			WithDescription(fmt.Sprintf("application %s", vol.Status))
		_ = deps.AuditStore.Save(ctx, ae)
	}

	slog.Info("application_event", "event", "application_decided", "volunteer_id", vol.ID, "status", vol.Status, "decider", input.DeciderID)
	return nil
}
