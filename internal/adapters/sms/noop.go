package sms

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender is a no-op SMS sender for development and testing.
type NoopSender struct{}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the SMS but does not deliver it.
// PRE: req is a valid SendRequest
// POST: Returns a noop result without actual delivery
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("noop_sms_send", "to", req.To, "body_len", len(req.Body))
	return SendResult{
		MessageID: fmt.Sprintf("noop-sms-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
