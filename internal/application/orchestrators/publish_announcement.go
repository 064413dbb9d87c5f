package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	emailAdapter "crewcall/internal/adapters/email"
	"crewcall/internal/adapters/markdown"
	"crewcall/internal/domain/announcement"
	"crewcall/internal/domain/message"
	"crewcall/internal/domain/outbox"
	"crewcall/internal/domain/volunteer"
)

// AnnouncementStoreForPublish defines the announcement store interface needed
// by PublishAnnouncement.
type AnnouncementStoreForPublish interface {
	GetByID(ctx context.Context, id string) (announcement.Announcement, error)
	Save(ctx context.Context, a announcement.Announcement) error
}

// VolunteerStoreForPublish resolves the announcement audience.
type VolunteerStoreForPublish interface {
	ListByEvent(ctx context.Context, eventID string) ([]volunteer.Volunteer, error)
	ListByEventAndStatus(ctx context.Context, eventID, status string) ([]volunteer.Volunteer, error)
	ListByTeam(ctx context.Context, teamID string) ([]volunteer.Volunteer, error)
}

// MessageLogSink records outbound message attempts.
type MessageLogSink interface {
	Save(ctx context.Context, l message.Log) error
}

// OutboxSink queues failed sends for retry.
type OutboxSink interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// PublishAnnouncementInput carries a publish request.
type PublishAnnouncementInput struct {
	AnnouncementID string
	PublisherID    string
}

// PublishAnnouncementDeps holds dependencies for PublishAnnouncement.
type PublishAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForPublish
	VolunteerStore    VolunteerStoreForPublish
	MessageStore      MessageLogSink
	OutboxStore       OutboxSink
	EmailSender       emailAdapter.Sender
	EmailFrom         string
	GenerateID        func() string
	Now               func() time.Time
}

// PublishAnnouncementResult reports delivery counts.
type PublishAnnouncementResult struct {
	Recipients int
	Sent       int
	Queued     int
}

var ErrNoRecipients = errors.New("announcement audience resolved to no recipients")

// emailPayload is the outbox replay payload for a failed email send.
type emailPayload struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// ExecutePublishAnnouncement publishes a draft announcement and emails the
// rendered markdown body to the resolved audience. Send failures are queued
// on the outbox instead of failing the publish.
// PRE: AnnouncementID names a draft announcement
// POST: Announcement is published; every recipient has a message log row
func ExecutePublishAnnouncement(ctx context.Context, input PublishAnnouncementInput, deps PublishAnnouncementDeps) (PublishAnnouncementResult, error) {
	ann, err := deps.AnnouncementStore.GetByID(ctx, input.AnnouncementID)
	if err != nil {
		return PublishAnnouncementResult{}, err
	}

	recipients, err := resolveAudience(ctx, deps.VolunteerStore, ann)
	if err != nil {
		return PublishAnnouncementResult{}, err
	}
	if len(recipients) == 0 {
		return PublishAnnouncementResult{}, ErrNoRecipients
	}

	htmlBody, err := markdown.ToHTML(ann.Body)
	if err != nil {
		return PublishAnnouncementResult{}, err
	}

	now := deps.Now()
	if err := ann.Publish(input.PublisherID, now); err != nil {
		return PublishAnnouncementResult{}, err
	}
	if err := deps.AnnouncementStore.Save(ctx, ann); err != nil {
		return PublishAnnouncementResult{}, err
	}

	reqs := make([]emailAdapter.SendRequest, 0, len(recipients))
	for _, vol := range recipients {
		reqs = append(reqs, emailAdapter.SendRequest{
			To:      vol.Email,
			From:    deps.EmailFrom,
			Subject: ann.Title,
			HTML:    htmlBody,
		})
	}

	results, sendErr := deps.EmailSender.SendBatch(ctx, reqs)

	result := PublishAnnouncementResult{Recipients: len(recipients)}
	for i, vol := range recipients {
		logRow := message.Log{
			ID:          deps.GenerateID(),
			Channel:     message.ChannelEmail,
			VolunteerID: vol.ID,
			Recipient:   vol.Email,
			Subject:     ann.Title,
			Body:        ann.Body,
			CreatedAt:   now,
		}
		if sendErr == nil && i < len(results) {
			logRow.Status = message.StatusSent
			logRow.ProviderMessageID = results[i].MessageID
			result.Sent++
		} else {
			logRow.Status = message.StatusQueued
			if sendErr != nil {
				logRow.ErrorMessage = sendErr.Error()
			}
			if err := queueEmailRetry(ctx, deps, reqs[i], now); err != nil {
				slog.Error("announcement_event", "event", "outbox_enqueue_failed",
					"announcement_id", ann.ID, "recipient", vol.Email, "error", err)
			} else {
				result.Queued++
			}
		}
		if err := deps.MessageStore.Save(ctx, logRow); err != nil {
			slog.Error("announcement_event", "event", "message_log_failed",
				"announcement_id", ann.ID, "recipient", vol.Email, "error", err)
		}
	}

	slog.Info("announcement_event", "event", "announcement_published",
		"announcement_id", ann.ID, "audience", ann.Audience,
		"recipients", result.Recipients, "sent", result.Sent, "queued", result.Queued)
	return result, nil
}

func resolveAudience(ctx context.Context, store VolunteerStoreForPublish, ann announcement.Announcement) ([]volunteer.Volunteer, error) {
	var vols []volunteer.Volunteer
	var err error
	switch ann.Audience {
	case announcement.AudienceAll:
		vols, err = store.ListByEvent(ctx, ann.EventID)
	case announcement.AudienceApproved:
		vols, err = store.ListByEventAndStatus(ctx, ann.EventID, volunteer.StatusApproved)
	case announcement.AudienceTeam:
		vols, err = store.ListByTeam(ctx, ann.TeamID)
	default:
		return nil, errors.New("unknown announcement audience")
	}
	if err != nil {
		return nil, err
	}
	// Withdrawn volunteers never receive announcements.
	kept := vols[:0]
	for _, v := range vols {
		if v.Status != volunteer.StatusWithdrawn {
			kept = append(kept, v)
		}
	}
	return kept, nil
}

func queueEmailRetry(ctx context.Context, deps PublishAnnouncementDeps, req emailAdapter.SendRequest, now time.Time) error {
	payload, err := json.Marshal(emailPayload{To: req.To, From: req.From, Subject: req.Subject, HTML: req.HTML})
	if err != nil {
		return err
	}
	entry := outbox.Entry{
		ID:         deps.GenerateID(),
		ActionType: outbox.ActionTypeEmail,
		Payload:    string(payload),
		Status:     outbox.StatusPending,
		CreatedAt:  now,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	return deps.OutboxStore.Save(ctx, entry)
}
