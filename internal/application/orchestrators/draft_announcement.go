package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"crewcall/internal/adapters/ai"
	"crewcall/internal/domain/event"
)

// EventStoreForDraft defines the event store interface needed by DraftAnnouncement.
type EventStoreForDraft interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

// DraftAnnouncementInput carries an AI drafting request.
type DraftAnnouncementInput struct {
	EventID     string
	Prompt      string
	RequesterID string
}

// DraftAnnouncementDeps holds dependencies for DraftAnnouncement.
type DraftAnnouncementDeps struct {
	EventStore EventStoreForDraft
	Drafter    ai.Drafter
}

var ErrEmptyPrompt = errors.New("draft prompt cannot be empty")

// ExecuteDraftAnnouncement asks the configured AI provider for a markdown
// announcement body. The draft is returned to the caller for editing, never
// stored or sent directly.
// PRE: EventID names an existing event
// POST: Returns a markdown draft, or ai.ErrNotConfigured without a provider
func ExecuteDraftAnnouncement(ctx context.Context, input DraftAnnouncementInput, deps DraftAnnouncementDeps) (string, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	ev, err := deps.EventStore.GetByID(ctx, input.EventID)
	if err != nil {
		return "", err
	}

	draft, err := deps.Drafter.DraftAnnouncement(ctx, ev.Name, prompt)
	if err != nil {
		return "", err
	}

	slog.Info("announcement_event", "event", "draft_generated",
		"event_id", ev.ID, "requester_id", input.RequesterID, "draft_len", len(draft))
	return draft, nil
}
