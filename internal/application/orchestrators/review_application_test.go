package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"crewcall/internal/domain/audit"
	"crewcall/internal/domain/volunteer"
)

// mockAuditSink records audit events for testing.
type mockAuditSink struct {
	events []audit.Event
}

func (m *mockAuditSink) Save(_ context.Context, e audit.Event) error {
	m.events = append(m.events, e)
	return nil
}

func appliedVolunteer(id string) volunteer.Volunteer {
	return volunteer.Volunteer{
		ID:        id,
		AccountID: "acct-" + id,
		EventID:   "ev-1",
		Email:     id + "@crewcall.test",
		Name:      "Vol " + id,
		Status:    volunteer.StatusApplied,
		AppliedAt: fixedTime,
	}
}

func reviewDeps(vols *mockVolunteerStore, sender *mockEmailSender, sink *mockAuditSink) ReviewApplicationDeps {
	events := newMockEventStore()
	events.events["ev-1"] = testEvent()
	return ReviewApplicationDeps{
		VolunteerStore: vols,
		EventStore:     events,
		EmailSender:    sender,
		AuditStore:     sink,
		Now:            fixedNow,
	}
}

func TestExecuteReviewApplication_Approve(t *testing.T) {
	vols := newMockVolunteerStore()
	vols.volunteers["vol-1"] = appliedVolunteer("vol-1")
	sender := &mockEmailSender{}
	sink := &mockAuditSink{}

	err := ExecuteReviewApplication(context.Background(), ReviewApplicationInput{
		VolunteerID: "vol-1",
		Approve:     true,
		TeamID:      "team-1",
		DeciderID:   "admin-1",
		DeciderMail: "admin@crewcall.test",
	}, reviewDeps(vols, sender, sink))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vol := vols.volunteers["vol-1"]
	if vol.Status != volunteer.StatusApproved {
		t.Errorf("expected status=approved, got %s", vol.Status)
	}
	if vol.TeamID != "team-1" {
		t.Errorf("expected team-1, got %s", vol.TeamID)
	}
	if vol.DecidedBy != "admin-1" {
		t.Errorf("expected DecidedBy=admin-1, got %s", vol.DecidedBy)
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0].HTML, "approved") {
		t.Error("expected an approval email")
	}
	if len(sink.events) != 1 || sink.events[0].Action != audit.ActionApprove {
		t.Error("expected an approve audit event")
	}
}

func TestExecuteReviewApplication_Reject(t *testing.T) {
	vols := newMockVolunteerStore()
	vols.volunteers["vol-1"] = appliedVolunteer("vol-1")
	sender := &mockEmailSender{}
	sink := &mockAuditSink{}

	err := ExecuteReviewApplication(context.Background(), ReviewApplicationInput{
		VolunteerID: "vol-1",
		Approve:     false,
		DeciderID:   "admin-1",
	}, reviewDeps(vols, sender, sink))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vols.volunteers["vol-1"].Status != volunteer.StatusRejected {
		t.Errorf("expected status=rejected, got %s", vols.volunteers["vol-1"].Status)
	}
	if len(sink.events) != 1 || sink.events[0].Action != audit.ActionReject {
		t.Error("expected a reject audit event")
	}
}

func TestExecuteReviewApplication_AlreadyDecided(t *testing.T) {
	vols := newMockVolunteerStore()
	v := appliedVolunteer("vol-1")
	v.Status = volunteer.StatusApproved
	vols.volunteers["vol-1"] = v

	err := ExecuteReviewApplication(context.Background(), ReviewApplicationInput{
		VolunteerID: "vol-1",
		Approve:     true,
		DeciderID:   "admin-1",
	}, reviewDeps(vols, &mockEmailSender{}, &mockAuditSink{}))
	if !errors.Is(err, ErrNotPendingReview) {
		t.Fatalf("expected ErrNotPendingReview, got %v", err)
	}
}
