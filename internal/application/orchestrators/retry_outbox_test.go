package orchestrators

import (
	"context"
	"testing"

	"crewcall/internal/domain/outbox"
)

func pendingEmailEntry(id string) outbox.Entry {
	return outbox.Entry{
		ID:          id,
		ActionType:  outbox.ActionTypeEmail,
		Payload:     `{"to":"vol@crewcall.test","from":"noreply@crewcall.test","subject":"Hi","html":"<p>Hi</p>"}`,
		Status:      outbox.StatusPending,
		MaxAttempts: 3,
		CreatedAt:   fixedTime,
	}
}

func retryDeps(queue *mockOutboxStore, email *mockEmailSender, sms *mockSMSSender) RetryOutboxDeps {
	return RetryOutboxDeps{
		OutboxStore: queue,
		EmailSender: email,
		SMSSender:   sms,
		Now:         fixedNow,
	}
}

func TestExecuteRetryOutbox_DeliversEmail(t *testing.T) {
	queue := newMockOutboxStore()
	queue.entries["e-1"] = pendingEmailEntry("e-1")
	email := &mockEmailSender{}

	result, err := ExecuteRetryOutbox(context.Background(), retryDeps(queue, email, &mockSMSSender{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Delivered != 1 {
		t.Errorf("expected 1 delivered, got %+v", result)
	}
	e := queue.entries["e-1"]
	if e.Status != outbox.StatusDone {
		t.Errorf("expected status=done, got %s", e.Status)
	}
	if e.ExternalID == "" {
		t.Error("expected provider message ID on the entry")
	}
	if len(email.sent) != 1 || email.sent[0].Subject != "Hi" {
		t.Error("expected the replayed email to be sent")
	}
}

func TestExecuteRetryOutbox_DeliversSMS(t *testing.T) {
	queue := newMockOutboxStore()
	queue.entries["s-1"] = outbox.Entry{
		ID:          "s-1",
		ActionType:  outbox.ActionTypeSMS,
		Payload:     `{"to":"+4915112345678","body":"Gate briefing moved"}`,
		Status:      outbox.StatusPending,
		MaxAttempts: 3,
		CreatedAt:   fixedTime,
	}
	sms := &mockSMSSender{}

	result, err := ExecuteRetryOutbox(context.Background(), retryDeps(queue, &mockEmailSender{}, sms))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Delivered != 1 {
		t.Errorf("expected 1 delivered, got %+v", result)
	}
	if len(sms.sent) != 1 || sms.sent[0].To != "+4915112345678" {
		t.Error("expected the replayed SMS to be sent")
	}
}

func TestExecuteRetryOutbox_FailureCountsAttempt(t *testing.T) {
	queue := newMockOutboxStore()
	queue.entries["e-1"] = pendingEmailEntry("e-1")
	email := &mockEmailSender{failAll: true}

	result, err := ExecuteRetryOutbox(context.Background(), retryDeps(queue, email, &mockSMSSender{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("expected 1 failed, got %+v", result)
	}
	e := queue.entries["e-1"]
	if e.Status != outbox.StatusFailed {
		t.Errorf("expected status=failed, got %s", e.Status)
	}
	if e.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", e.Attempts)
	}
	if e.ErrorMessage == "" {
		t.Error("expected error message on the entry")
	}
}

func TestExecuteRetryOutbox_AbandonsAtMaxAttempts(t *testing.T) {
	queue := newMockOutboxStore()
	e := pendingEmailEntry("e-1")
	e.Attempts = 2 // one attempt left
	queue.entries["e-1"] = e
	email := &mockEmailSender{failAll: true}

	result, err := ExecuteRetryOutbox(context.Background(), retryDeps(queue, email, &mockSMSSender{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Abandoned != 1 {
		t.Errorf("expected 1 abandoned, got %+v", result)
	}
	if queue.entries["e-1"].Status != outbox.StatusAbandoned {
		t.Errorf("expected status=abandoned, got %s", queue.entries["e-1"].Status)
	}
}

func TestExecuteRetryOutbox_BadPayload(t *testing.T) {
	queue := newMockOutboxStore()
	e := pendingEmailEntry("e-1")
	e.Payload = "{not json"
	queue.entries["e-1"] = e

	result, err := ExecuteRetryOutbox(context.Background(), retryDeps(queue, &mockEmailSender{}, &mockSMSSender{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("expected 1 failed, got %+v", result)
	}
}

func TestExecuteRetryOutbox_EmptyQueue(t *testing.T) {
	result, err := ExecuteRetryOutbox(context.Background(), retryDeps(newMockOutboxStore(), &mockEmailSender{}, &mockSMSSender{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 0 {
		t.Errorf("expected nothing processed, got %+v", result)
	}
}
