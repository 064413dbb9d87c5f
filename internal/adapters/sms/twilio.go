package sms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender sends SMS via the Twilio API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender creates a new TwilioSender.
// PRE: accountSID and authToken are valid Twilio credentials; from is a provisioned number
// POST: Returns a ready-to-use sender
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}
}

// Send sends a single SMS via Twilio.
// PRE: req.To is an E.164 phone number, req.Body is non-empty
// POST: SMS is queued for delivery; returns the Twilio message SID
func (s *TwilioSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	// The Twilio SDK does not take a context; honor cancellation before the call.
	if err := ctx.Err(); err != nil {
		return SendResult{}, err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(req.To)
	params.SetFrom(s.from)
	params.SetBody(req.Body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("twilio_send_failed", "error", err, "to", req.To)
		return SendResult{}, fmt.Errorf("twilio send failed: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	slog.Info("twilio_sent", "message_sid", sid, "to", req.To)
	return SendResult{MessageID: sid, SentAt: time.Now()}, nil
}
