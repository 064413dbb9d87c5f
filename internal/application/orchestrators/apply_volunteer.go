package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "crewcall/internal/adapters/email"
	"crewcall/internal/adapters/token"
	"crewcall/internal/domain/account"
	"crewcall/internal/domain/event"
	"crewcall/internal/domain/volunteer"
)

// AccountStoreForApply defines the account store interface needed by Apply.
type AccountStoreForApply interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// VolunteerStoreForApply defines the volunteer store interface needed by Apply.
type VolunteerStoreForApply interface {
	GetByAccountAndEvent(ctx context.Context, accountID, eventID string) (volunteer.Volunteer, error)
	Save(ctx context.Context, v volunteer.Volunteer) error
}

// EventStoreForApply defines the event store interface needed by Apply.
type EventStoreForApply interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

// ApplyInput carries a volunteer application.
type ApplyInput struct {
	EventID   string
	Email     string
	Name      string
	Phone     string
	Languages string
	ShirtSize string
	Password  string // for first-time applicants creating an account
}

// ApplyDeps holds dependencies for Apply.
type ApplyDeps struct {
	AccountStore   AccountStoreForApply
	VolunteerStore VolunteerStoreForApply
	EventStore     EventStoreForApply
	EmailSender    emailAdapter.Sender
	TokenSigner    *token.Signer
	BaseURL        string
	GenerateID     func() string
	Now            func() time.Time
}

var (
	ErrApplicationsClosed = errors.New("the event is not accepting applications")
	ErrAlreadyApplied     = errors.New("an application for this event already exists")
)

// ExecuteApply registers a volunteer application for an event.
// A first-time applicant gets a pending account and a confirmation email with
// a signed link. A returning volunteer must already be logged in; their
// account ID arrives via the HTTP layer and duplicates are rejected here.
// PRE: EventID names an existing event
// POST: Volunteer record exists in applied status; confirmation email sent for new accounts
// INVARIANT: One application per account and event
func ExecuteApply(ctx context.Context, input ApplyInput, deps ApplyDeps) (string, error) {
	ev, err := deps.EventStore.GetByID(ctx, input.EventID)
	if err != nil {
		return "", err
	}
	now := deps.Now()
	if !ev.AcceptsApplications(now) {
		return "", ErrApplicationsClosed
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	newAccount := err != nil
	if newAccount {
		acct = account.Account{
			ID:        deps.GenerateID(),
			Email:     input.Email,
			Role:      account.RoleVolunteer,
			Status:    account.StatusPendingEmail,
			CreatedAt: now,
		}
		if err := acct.Validate(); err != nil {
			return "", err
		}
		if err := acct.SetPassword(input.Password); err != nil {
			return "", err
		}
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return "", err
		}
	} else {
		if _, err := deps.VolunteerStore.GetByAccountAndEvent(ctx, acct.ID, ev.ID); err == nil {
			return "", ErrAlreadyApplied
		}
	}

	vol := volunteer.Volunteer{
		ID:        deps.GenerateID(),
		AccountID: acct.ID,
		EventID:   ev.ID,
		Email:     input.Email,
		Name:      input.Name,
		Phone:     input.Phone,
		Languages: input.Languages,
		ShirtSize: input.ShirtSize,
		Status:    volunteer.StatusApplied,
		AppliedAt: now,
	}
	if err := vol.Validate(); err != nil {
		return "", err
	}
	if err := deps.VolunteerStore.Save(ctx, vol); err != nil {
		return "", err
	}

	if newAccount {
		if err := sendConfirmationEmail(ctx, deps, acct, ev, now); err != nil {
			// The application is stored; a failed email must not roll it back.
			slog.Error("application_event", "event", "confirmation_email_failed", "volunteer_id", vol.ID, "error", err)
		}
	}

	slog.Info("application_event", "event", "application_received", "volunteer_id", vol.ID, "event_id", ev.ID, "new_account", newAccount)
	return vol.ID, nil
}

func sendConfirmationEmail(ctx context.Context, deps ApplyDeps, acct account.Account, ev event.Event, now time.Time) error {
	signed, err := deps.TokenSigner.Issue(token.PurposeConfirmEmail, acct.ID, now)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/confirm-email?token=%s", deps.BaseURL, signed)
	body := fmt.Sprintf(
		"<p>Thanks for applying to volunteer at %s!</p><p><a href=\"%s\">Confirm your email address</a> to finish your application.</p>",
		ev.Name, link)
	_, err = deps.EmailSender.Send(ctx, emailAdapter.SendRequest{
		To:      acct.Email,
		Subject: fmt.Sprintf("Confirm your email for %s", ev.Name),
		HTML:    body,
	})
	return err
}
