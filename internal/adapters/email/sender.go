package email

import (
	"context"
	"time"
)

// SendRequest is one outbound email. Every send targets a single recipient;
// announcement fan-out builds one request per volunteer so delivery results
// map back to message log rows.
type SendRequest struct {
	To      string // recipient address
	From    string // sender address, e.g. "Crewcall <noreply@crewcall.example>"
	Subject string
	HTML    string
}

// SendResult is the provider's acknowledgement of an accepted send.
type SendResult struct {
	MessageID string // provider message ID, stored on the message log
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
