package message

import (
	"errors"
	"time"
)

// Channel constants for outbound messages.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Delivery status constants.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
	StatusQueued = "queued" // pushed to the outbox for retry
)

// Domain errors
var (
	ErrEmptyRecipient = errors.New("message recipient is required")
	ErrEmptyBody      = errors.New("message body cannot be empty")
	ErrInvalidChannel = errors.New("channel must be 'email' or 'sms'")
)

// Log is one outbound message record: every email and SMS the system
// sends is logged here with the provider's message ID.
type Log struct {
	ID                string
	Channel           string
	VolunteerID       string // empty for non-volunteer recipients
	Recipient         string // email address or phone number
	Subject           string // empty for SMS
	Body              string
	Status            string
	ProviderMessageID string
	ErrorMessage      string
	CreatedAt         time.Time
}

// Validate checks if the Log has valid data.
// PRE: Log struct is populated
// POST: Returns nil if valid, error otherwise
func (l *Log) Validate() error {
	if l.Channel != ChannelEmail && l.Channel != ChannelSMS {
		return ErrInvalidChannel
	}
	if l.Recipient == "" {
		return ErrEmptyRecipient
	}
	if l.Body == "" {
		return ErrEmptyBody
	}
	if l.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	switch l.Status {
	case StatusSent, StatusFailed, StatusQueued:
	default:
		return errors.New("status must be 'sent', 'failed', or 'queued'")
	}
	return nil
}

// Delivered returns true if the provider accepted the message.
// INVARIANT: Log fields are not mutated
func (l *Log) Delivered() bool {
	return l.Status == StatusSent
}
