package sms

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send an SMS via an external provider.
type SendRequest struct {
	To   string // Recipient phone number in E.164 format
	Body string
}

// SendResult contains the response from the SMS provider.
type SendResult struct {
	MessageID string    // Provider's message SID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender is the interface for sending SMS via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
