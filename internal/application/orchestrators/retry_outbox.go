package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "crewcall/internal/adapters/email"
	smsAdapter "crewcall/internal/adapters/sms"
	"crewcall/internal/domain/outbox"
)

// DefaultRetryBatchSize bounds how many entries one retry pass processes.
const DefaultRetryBatchSize = 50

// OutboxStoreForRetry defines the outbox store interface needed by RetryOutbox.
type OutboxStoreForRetry interface {
	ListPending(ctx context.Context, limit int) ([]outbox.Entry, error)
	Save(ctx context.Context, e outbox.Entry) error
}

// RetryOutboxDeps holds dependencies for RetryOutbox.
type RetryOutboxDeps struct {
	OutboxStore OutboxStoreForRetry
	EmailSender emailAdapter.Sender
	SMSSender   smsAdapter.Sender
	BatchSize   int
	Now         func() time.Time
}

// RetryOutboxResult reports one retry pass.
type RetryOutboxResult struct {
	Processed int
	Delivered int
	Failed    int
	Abandoned int
}

// ExecuteRetryOutbox replays queued email and SMS sends. Each entry gets one
// attempt per pass; entries at their attempt limit are abandoned.
// POST: every processed entry is saved with an updated status
func ExecuteRetryOutbox(ctx context.Context, deps RetryOutboxDeps) (RetryOutboxResult, error) {
	limit := deps.BatchSize
	if limit <= 0 {
		limit = DefaultRetryBatchSize
	}
	entries, err := deps.OutboxStore.ListPending(ctx, limit)
	if err != nil {
		return RetryOutboxResult{}, err
	}

	var result RetryOutboxResult
	for _, entry := range entries {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if !entry.CanRetry() {
			continue
		}
		result.Processed++
		entry.MarkAttempt(deps.Now())

		externalID, sendErr := replayEntry(ctx, deps.EmailSender, deps.SMSSender, entry)
		if sendErr != nil {
			entry.MarkFailed(sendErr.Error())
			if entry.Status == outbox.StatusAbandoned {
				result.Abandoned++
				slog.Warn("outbox_event", "event", "entry_abandoned",
					"entry_id", entry.ID, "action_type", entry.ActionType,
					"attempts", entry.Attempts, "error", sendErr)
			} else {
				result.Failed++
			}
		} else {
			entry.MarkDone(externalID)
			result.Delivered++
		}

		if err := deps.OutboxStore.Save(ctx, entry); err != nil {
			return result, err
		}
	}

	if result.Processed > 0 {
		slog.Info("outbox_event", "event", "retry_pass",
			"processed", result.Processed, "delivered", result.Delivered,
			"failed", result.Failed, "abandoned", result.Abandoned)
	}
	return result, nil
}

func replayEntry(ctx context.Context, emailSender emailAdapter.Sender, smsSender smsAdapter.Sender, entry outbox.Entry) (string, error) {
	switch entry.ActionType {
	case outbox.ActionTypeEmail:
		var p emailPayload
		if err := json.Unmarshal([]byte(entry.Payload), &p); err != nil {
			return "", fmt.Errorf("decode email payload: %w", err)
		}
		sent, err := emailSender.Send(ctx, emailAdapter.SendRequest{
			To: p.To, From: p.From, Subject: p.Subject, HTML: p.HTML,
		})
		if err != nil {
			return "", err
		}
		return sent.MessageID, nil
	case outbox.ActionTypeSMS:
		var p smsPayload
		if err := json.Unmarshal([]byte(entry.Payload), &p); err != nil {
			return "", fmt.Errorf("decode sms payload: %w", err)
		}
		sent, err := smsSender.Send(ctx, smsAdapter.SendRequest{To: p.To, Body: p.Body})
		if err != nil {
			return "", err
		}
		return sent.MessageID, nil
	default:
		return "", fmt.Errorf("unknown action type %q", entry.ActionType)
	}
}

// OutboxStoreForManual defines the outbox store interface for operator-driven
// single-entry actions.
type OutboxStoreForManual interface {
	GetByID(ctx context.Context, id string) (outbox.Entry, error)
	Save(ctx context.Context, e outbox.Entry) error
}

// ManualOutboxDeps holds dependencies for single-entry outbox actions.
type ManualOutboxDeps struct {
	OutboxStore OutboxStoreForManual
	EmailSender emailAdapter.Sender
	SMSSender   smsAdapter.Sender
	Now         func() time.Time
}

var ErrEntryTerminal = errors.New("outbox entry is already delivered or abandoned")

// ExecuteRetryOutboxEntry replays one entry immediately, regardless of its
// backoff schedule. Used by admins to force a retry after fixing a provider.
// PRE: entryID names a non-terminal entry
// POST: Entry is saved with the attempt outcome
func ExecuteRetryOutboxEntry(ctx context.Context, entryID string, deps ManualOutboxDeps) (outbox.Entry, error) {
	entry, err := deps.OutboxStore.GetByID(ctx, entryID)
	if err != nil {
		return outbox.Entry{}, err
	}
	if entry.IsTerminal() {
		return outbox.Entry{}, ErrEntryTerminal
	}

	entry.MarkAttempt(deps.Now())
	externalID, sendErr := replayEntry(ctx, deps.EmailSender, deps.SMSSender, entry)
	if sendErr != nil {
		entry.MarkFailed(sendErr.Error())
	} else {
		entry.MarkDone(externalID)
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		return outbox.Entry{}, err
	}
	slog.Info("outbox_event", "event", "manual_retry", "entry_id", entry.ID, "status", entry.Status)
	return entry, nil
}

// ExecuteAbandonOutboxEntry marks an entry abandoned so it never retries again.
// PRE: entryID names a non-terminal entry
// POST: Entry status is abandoned
func ExecuteAbandonOutboxEntry(ctx context.Context, entryID string, deps ManualOutboxDeps) (outbox.Entry, error) {
	entry, err := deps.OutboxStore.GetByID(ctx, entryID)
	if err != nil {
		return outbox.Entry{}, err
	}
	if entry.IsTerminal() {
		return outbox.Entry{}, ErrEntryTerminal
	}

	entry.Status = outbox.StatusAbandoned
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		return outbox.Entry{}, err
	}
	slog.Info("outbox_event", "event", "manual_abandon", "entry_id", entry.ID)
	return entry, nil
}
