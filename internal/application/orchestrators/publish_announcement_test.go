package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"crewcall/internal/domain/announcement"
	"crewcall/internal/domain/message"
	"crewcall/internal/domain/outbox"
	"crewcall/internal/domain/volunteer"
)

// mockMessageStore records message log rows for testing.
type mockMessageStore struct {
	logs []message.Log
}

func (m *mockMessageStore) Save(_ context.Context, l message.Log) error {
	m.logs = append(m.logs, l)
	return nil
}

// mockOutboxStore implements the outbox store interfaces for testing.
type mockOutboxStore struct {
	entries map[string]outbox.Entry
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: make(map[string]outbox.Entry)}
}

func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type publishFixture struct {
	anns   *mockAnnouncementStore
	vols   *mockVolunteerStore
	msgs   *mockMessageStore
	queue  *mockOutboxStore
	sender *mockEmailSender
}

// mockAnnouncementStore implements the announcement store interfaces for testing.
type mockAnnouncementStore struct {
	announcements map[string]announcement.Announcement
}

func newMockAnnouncementStore() *mockAnnouncementStore {
	return &mockAnnouncementStore{announcements: make(map[string]announcement.Announcement)}
}

func (m *mockAnnouncementStore) GetByID(_ context.Context, id string) (announcement.Announcement, error) {
	a, ok := m.announcements[id]
	if !ok {
		return announcement.Announcement{}, errors.New("not found")
	}
	return a, nil
}

func (m *mockAnnouncementStore) Save(_ context.Context, a announcement.Announcement) error {
	m.announcements[a.ID] = a
	return nil
}

func newPublishFixture() publishFixture {
	f := publishFixture{
		anns:   newMockAnnouncementStore(),
		vols:   newMockVolunteerStore(),
		msgs:   &mockMessageStore{},
		queue:  newMockOutboxStore(),
		sender: &mockEmailSender{},
	}
	f.anns.announcements["ann-1"] = announcement.Announcement{
		ID: "ann-1", EventID: "ev-1", Title: "Gates open early",
		Body: "Please arrive **30 minutes** before your shift.",
		Audience: announcement.AudienceApproved, Status: announcement.StatusDraft,
		CreatedBy: "admin-1", CreatedAt: fixedTime,
	}
	approved := appliedVolunteer("vol-1")
	approved.Status = volunteer.StatusApproved
	f.vols.volunteers["vol-1"] = approved
	pending := appliedVolunteer("vol-2")
	f.vols.volunteers["vol-2"] = pending
	return f
}

func (f publishFixture) deps() PublishAnnouncementDeps {
	return PublishAnnouncementDeps{
		AnnouncementStore: f.anns,
		VolunteerStore:    f.vols,
		MessageStore:      f.msgs,
		OutboxStore:       f.queue,
		EmailSender:       f.sender,
		EmailFrom:         "Crewcall <noreply@crewcall.test>",
		GenerateID:        seqID(),
		Now:               fixedNow,
	}
}

func TestExecutePublishAnnouncement_ApprovedAudience(t *testing.T) {
	f := newPublishFixture()
	result, err := ExecutePublishAnnouncement(context.Background(), PublishAnnouncementInput{
		AnnouncementID: "ann-1", PublisherID: "admin-1",
	}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Recipients != 1 || result.Sent != 1 {
		t.Errorf("expected 1 recipient sent, got %+v", result)
	}
	ann := f.anns.announcements["ann-1"]
	if ann.Status != announcement.StatusPublished {
		t.Errorf("expected status=published, got %s", ann.Status)
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(f.sender.sent))
	}
	if !strings.Contains(f.sender.sent[0].HTML, "<strong>30 minutes</strong>") {
		t.Errorf("expected rendered markdown, got %s", f.sender.sent[0].HTML)
	}
	if len(f.msgs.logs) != 1 || f.msgs.logs[0].Status != message.StatusSent {
		t.Error("expected a sent message log row")
	}
}

func TestExecutePublishAnnouncement_AllAudience(t *testing.T) {
	f := newPublishFixture()
	ann := f.anns.announcements["ann-1"]
	ann.Audience = announcement.AudienceAll
	f.anns.announcements["ann-1"] = ann

	result, err := ExecutePublishAnnouncement(context.Background(), PublishAnnouncementInput{
		AnnouncementID: "ann-1", PublisherID: "admin-1",
	}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Recipients != 2 {
		t.Errorf("expected 2 recipients, got %d", result.Recipients)
	}
}

func TestExecutePublishAnnouncement_SkipsWithdrawn(t *testing.T) {
	f := newPublishFixture()
	ann := f.anns.announcements["ann-1"]
	ann.Audience = announcement.AudienceAll
	f.anns.announcements["ann-1"] = ann
	gone := f.vols.volunteers["vol-2"]
	gone.Status = volunteer.StatusWithdrawn
	f.vols.volunteers["vol-2"] = gone

	result, err := ExecutePublishAnnouncement(context.Background(), PublishAnnouncementInput{
		AnnouncementID: "ann-1", PublisherID: "admin-1",
	}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Recipients != 1 {
		t.Errorf("expected withdrawn volunteer to be skipped, got %d recipients", result.Recipients)
	}
}

func TestExecutePublishAnnouncement_SendFailureQueuesOutbox(t *testing.T) {
	f := newPublishFixture()
	f.sender.failAll = true

	result, err := ExecutePublishAnnouncement(context.Background(), PublishAnnouncementInput{
		AnnouncementID: "ann-1", PublisherID: "admin-1",
	}, f.deps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Sent != 0 || result.Queued != 1 {
		t.Errorf("expected 1 queued send, got %+v", result)
	}
	if len(f.queue.entries) != 1 {
		t.Fatalf("expected 1 outbox entry, got %d", len(f.queue.entries))
	}
	for _, e := range f.queue.entries {
		if e.ActionType != outbox.ActionTypeEmail {
			t.Errorf("expected email action type, got %s", e.ActionType)
		}
		if e.Status != outbox.StatusPending {
			t.Errorf("expected pending status, got %s", e.Status)
		}
	}
	if len(f.msgs.logs) != 1 || f.msgs.logs[0].Status != message.StatusQueued {
		t.Error("expected a queued message log row")
	}
	// Publish still went through: failures must not hold the announcement back.
	if f.anns.announcements["ann-1"].Status != announcement.StatusPublished {
		t.Error("expected announcement to be published despite send failure")
	}
}

func TestExecutePublishAnnouncement_AlreadyPublished(t *testing.T) {
	f := newPublishFixture()
	ann := f.anns.announcements["ann-1"]
	ann.Status = announcement.StatusPublished
	f.anns.announcements["ann-1"] = ann

	_, err := ExecutePublishAnnouncement(context.Background(), PublishAnnouncementInput{
		AnnouncementID: "ann-1", PublisherID: "admin-1",
	}, f.deps())
	if !errors.Is(err, announcement.ErrAlreadyPublished) {
		t.Fatalf("expected ErrAlreadyPublished, got %v", err)
	}
}

func TestExecutePublishAnnouncement_NoRecipients(t *testing.T) {
	f := newPublishFixture()
	delete(f.vols.volunteers, "vol-1")
	delete(f.vols.volunteers, "vol-2")

	_, err := ExecutePublishAnnouncement(context.Background(), PublishAnnouncementInput{
		AnnouncementID: "ann-1", PublisherID: "admin-1",
	}, f.deps())
	if !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
}
