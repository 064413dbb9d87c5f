package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Drafter produces announcement copy from a short prompt.
type Drafter interface {
	DraftAnnouncement(ctx context.Context, eventName, prompt string) (string, error)
}

// ErrNotConfigured is returned when no AI provider is configured.
var ErrNotConfigured = errors.New("ai drafting is not configured")

const systemPrompt = "You write short, friendly announcements for festival volunteer crews. " +
	"Answer in markdown with a bold first line. Keep it under 150 words. " +
	"Never invent dates, times or locations that are not in the request."

// OpenAIDrafter drafts announcements with the OpenAI chat completion API.
type OpenAIDrafter struct {
	client openai.Client
	model  string
}

// NewOpenAIDrafter creates a drafter backed by OpenAI.
// PRE: apiKey is a valid OpenAI API key; model may be empty for the default
// POST: Returns a ready-to-use drafter
func NewOpenAIDrafter(apiKey, model string) *OpenAIDrafter {
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &OpenAIDrafter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// DraftAnnouncement asks the model for announcement copy.
// PRE: prompt is non-empty
// POST: Returns markdown body text, never an empty string on success
func (d *OpenAIDrafter) DraftAnnouncement(ctx context.Context, eventName, prompt string) (string, error) {
	resp, err := d.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: d.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf("Event: %s\nRequest: %s", eventName, prompt)),
		},
	})
	if err != nil {
		slog.Error("ai_draft_failed", "error", err)
		return "", fmt.Errorf("draft announcement: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("draft announcement: empty response")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("draft announcement: empty completion")
	}
	slog.Info("ai_draft_created", "event", eventName, "chars", len(text))
	return text, nil
}

// NoopDrafter rejects drafting requests; used when no API key is configured.
type NoopDrafter struct{}

// DraftAnnouncement always returns ErrNotConfigured.
func (NoopDrafter) DraftAnnouncement(_ context.Context, _, _ string) (string, error) {
	return "", ErrNotConfigured
}
