package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	smsAdapter "crewcall/internal/adapters/sms"
	"crewcall/internal/domain/message"
	"crewcall/internal/domain/outbox"
	"crewcall/internal/domain/volunteer"
)

// MaxSMSLength bounds the message body; longer texts get split by carriers
// into unpredictable segments.
const MaxSMSLength = 640

// VolunteerStoreForSMS defines the volunteer store interface needed by NotifySMS.
type VolunteerStoreForSMS interface {
	GetByID(ctx context.Context, id string) (volunteer.Volunteer, error)
}

// NotifySMSInput carries an SMS notification request.
type NotifySMSInput struct {
	VolunteerIDs []string
	Body         string
	SenderID     string
}

// NotifySMSDeps holds dependencies for NotifySMS.
type NotifySMSDeps struct {
	VolunteerStore VolunteerStoreForSMS
	MessageStore   MessageLogSink
	OutboxStore    OutboxSink
	SMSSender      smsAdapter.Sender
	GenerateID     func() string
	Now            func() time.Time
}

// NotifySMSResult reports per-recipient outcomes.
type NotifySMSResult struct {
	Sent    int
	Queued  int
	Skipped int // volunteers without a phone number
}

var (
	ErrEmptySMSBody   = errors.New("sms body cannot be empty")
	ErrSMSBodyTooLong = errors.New("sms body is too long")
)

// smsPayload is the outbox replay payload for a failed SMS send.
type smsPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// ExecuteNotifySMS texts the given volunteers. Volunteers without a phone
// number are skipped, and provider failures are queued on the outbox.
// POST: every reachable volunteer has a message log row
func ExecuteNotifySMS(ctx context.Context, input NotifySMSInput, deps NotifySMSDeps) (NotifySMSResult, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return NotifySMSResult{}, ErrEmptySMSBody
	}
	if len(body) > MaxSMSLength {
		return NotifySMSResult{}, ErrSMSBodyTooLong
	}

	var result NotifySMSResult
	for _, id := range input.VolunteerIDs {
		vol, err := deps.VolunteerStore.GetByID(ctx, id)
		if err != nil {
			return result, err
		}
		if vol.Phone == "" {
			result.Skipped++
			continue
		}

		now := deps.Now()
		logRow := message.Log{
			ID:          deps.GenerateID(),
			Channel:     message.ChannelSMS,
			VolunteerID: vol.ID,
			Recipient:   vol.Phone,
			Body:        body,
			CreatedAt:   now,
		}

		sent, err := deps.SMSSender.Send(ctx, smsAdapter.SendRequest{To: vol.Phone, Body: body})
		if err != nil {
			logRow.Status = message.StatusQueued
			logRow.ErrorMessage = err.Error()
			if qErr := queueSMSRetry(ctx, deps, vol.Phone, body, now); qErr != nil {
				slog.Error("sms_event", "event", "outbox_enqueue_failed",
					"volunteer_id", vol.ID, "error", qErr)
				logRow.Status = message.StatusFailed
			} else {
				result.Queued++
			}
		} else {
			logRow.Status = message.StatusSent
			logRow.ProviderMessageID = sent.MessageID
			result.Sent++
		}

		if err := deps.MessageStore.Save(ctx, logRow); err != nil {
			slog.Error("sms_event", "event", "message_log_failed", "volunteer_id", vol.ID, "error", err)
		}
	}

	slog.Info("sms_event", "event", "sms_notify", "sender_id", input.SenderID,
		"sent", result.Sent, "queued", result.Queued, "skipped", result.Skipped)
	return result, nil
}

func queueSMSRetry(ctx context.Context, deps NotifySMSDeps, to, body string, now time.Time) error {
	payload, err := json.Marshal(smsPayload{To: to, Body: body})
	if err != nil {
		return err
	}
	entry := outbox.Entry{
		ID:         deps.GenerateID(),
		ActionType: outbox.ActionTypeSMS,
		Payload:    string(payload),
		Status:     outbox.StatusPending,
		CreatedAt:  now,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	return deps.OutboxStore.Save(ctx, entry)
}
