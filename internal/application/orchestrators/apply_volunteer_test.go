package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	emailAdapter "crewcall/internal/adapters/email"
	"crewcall/internal/adapters/token"
	"crewcall/internal/domain/account"
	"crewcall/internal/domain/event"
	"crewcall/internal/domain/volunteer"
)

// mockEmailSender records sends and can be made to fail.
type mockEmailSender struct {
	sent    []emailAdapter.SendRequest
	failAll bool
}

func (m *mockEmailSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	if m.failAll {
		return emailAdapter.SendResult{}, errors.New("provider down")
	}
	m.sent = append(m.sent, req)
	return emailAdapter.SendResult{MessageID: fmt.Sprintf("msg-%d", len(m.sent)), SentAt: fixedTime}, nil
}

func (m *mockEmailSender) SendBatch(_ context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	if m.failAll {
		return nil, errors.New("provider down")
	}
	results := make([]emailAdapter.SendResult, len(reqs))
	for i, req := range reqs {
		m.sent = append(m.sent, req)
		results[i] = emailAdapter.SendResult{MessageID: fmt.Sprintf("msg-%d", len(m.sent)), SentAt: fixedTime}
	}
	return results, nil
}

// mockVolunteerStore implements the volunteer store interfaces for testing.
type mockVolunteerStore struct {
	volunteers map[string]volunteer.Volunteer
}

func newMockVolunteerStore() *mockVolunteerStore {
	return &mockVolunteerStore{volunteers: make(map[string]volunteer.Volunteer)}
}

func (m *mockVolunteerStore) GetByID(_ context.Context, id string) (volunteer.Volunteer, error) {
	v, ok := m.volunteers[id]
	if !ok {
		return volunteer.Volunteer{}, errors.New("not found")
	}
	return v, nil
}

func (m *mockVolunteerStore) GetByAccountAndEvent(_ context.Context, accountID, eventID string) (volunteer.Volunteer, error) {
	for _, v := range m.volunteers {
		if v.AccountID == accountID && v.EventID == eventID {
			return v, nil
		}
	}
	return volunteer.Volunteer{}, errors.New("not found")
}

func (m *mockVolunteerStore) Save(_ context.Context, v volunteer.Volunteer) error {
	m.volunteers[v.ID] = v
	return nil
}

func (m *mockVolunteerStore) ListByEvent(_ context.Context, eventID string) ([]volunteer.Volunteer, error) {
	var out []volunteer.Volunteer
	for _, v := range m.volunteers {
		if v.EventID == eventID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockVolunteerStore) ListByEventAndStatus(_ context.Context, eventID, status string) ([]volunteer.Volunteer, error) {
	var out []volunteer.Volunteer
	for _, v := range m.volunteers {
		if v.EventID == eventID && v.Status == status {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockVolunteerStore) ListByTeam(_ context.Context, teamID string) ([]volunteer.Volunteer, error) {
	var out []volunteer.Volunteer
	for _, v := range m.volunteers {
		if v.TeamID == teamID {
			out = append(out, v)
		}
	}
	return out, nil
}

// mockEventStore implements the event store interfaces for testing.
type mockEventStore struct {
	events map[string]event.Event
}

func newMockEventStore() *mockEventStore {
	return &mockEventStore{events: make(map[string]event.Event)}
}

func (m *mockEventStore) GetByID(_ context.Context, id string) (event.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return event.Event{}, errors.New("not found")
	}
	return e, nil
}

// testEvent is a 3-day festival with applications currently open.
func testEvent() event.Event {
	return event.Event{
		ID:        "ev-1",
		Name:      "Summer Fest",
		Timezone:  "UTC",
		StartTime: fixedTime.AddDate(0, 0, 14),
		EndTime:   fixedTime.AddDate(0, 0, 17),
		AppsOpen:  fixedTime.AddDate(0, 0, -7),
		AppsClose: fixedTime.AddDate(0, 0, 7),
		Active:    true,
	}
}

func applyDeps(accounts *mockAccountStore, vols *mockVolunteerStore, events *mockEventStore, sender *mockEmailSender) ApplyDeps {
	return ApplyDeps{
		AccountStore:   accounts,
		VolunteerStore: vols,
		EventStore:     events,
		EmailSender:    sender,
		TokenSigner:    token.NewSigner([]byte("test-secret"), time.Hour),
		BaseURL:        "https://crewcall.test",
		GenerateID:     seqID(),
		Now:            fixedNow,
	}
}

func TestExecuteApply_FirstTime(t *testing.T) {
	accounts := newMockAccountStore()
	vols := newMockVolunteerStore()
	events := newMockEventStore()
	events.events["ev-1"] = testEvent()
	sender := &mockEmailSender{}

	volID, err := ExecuteApply(context.Background(), ApplyInput{
		EventID:  "ev-1",
		Email:    "new@crewcall.test",
		Name:     "Alex Doe",
		Password: "a-long-password",
	}, applyDeps(accounts, vols, events, sender))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vol, ok := vols.volunteers[volID]
	if !ok {
		t.Fatal("expected volunteer to be persisted")
	}
	if vol.Status != volunteer.StatusApplied {
		t.Errorf("expected status=applied, got %s", vol.Status)
	}

	acct, err := accounts.GetByEmail(context.Background(), "new@crewcall.test")
	if err != nil {
		t.Fatal("expected account to be created")
	}
	if acct.Status != account.StatusPendingEmail {
		t.Errorf("expected status=pending_email, got %s", acct.Status)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 confirmation email, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].HTML, "/confirm-email?token=") {
		t.Error("expected confirmation link in email body")
	}
}

func TestExecuteApply_ApplicationsClosed(t *testing.T) {
	events := newMockEventStore()
	ev := testEvent()
	ev.AppsClose = fixedTime.AddDate(0, 0, -1)
	events.events["ev-1"] = ev

	_, err := ExecuteApply(context.Background(), ApplyInput{
		EventID:  "ev-1",
		Email:    "new@crewcall.test",
		Name:     "Alex Doe",
		Password: "a-long-password",
	}, applyDeps(newMockAccountStore(), newMockVolunteerStore(), events, &mockEmailSender{}))
	if !errors.Is(err, ErrApplicationsClosed) {
		t.Fatalf("expected ErrApplicationsClosed, got %v", err)
	}
}

func TestExecuteApply_Duplicate(t *testing.T) {
	accounts := newMockAccountStore()
	accounts.accounts["acct-1"] = activeAccount(t, "acct-1", "back@crewcall.test", "a-long-password", account.RoleVolunteer)
	vols := newMockVolunteerStore()
	vols.volunteers["vol-1"] = volunteer.Volunteer{
		ID: "vol-1", AccountID: "acct-1", EventID: "ev-1",
		Email: "back@crewcall.test", Name: "Back Again", Status: volunteer.StatusApplied,
	}
	events := newMockEventStore()
	events.events["ev-1"] = testEvent()
	sender := &mockEmailSender{}

	_, err := ExecuteApply(context.Background(), ApplyInput{
		EventID: "ev-1",
		Email:   "back@crewcall.test",
		Name:    "Back Again",
	}, applyDeps(accounts, vols, events, sender))
	if !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no email, got %d", len(sender.sent))
	}
}

func TestExecuteApply_EmailFailureKeepsApplication(t *testing.T) {
	accounts := newMockAccountStore()
	vols := newMockVolunteerStore()
	events := newMockEventStore()
	events.events["ev-1"] = testEvent()
	sender := &mockEmailSender{failAll: true}

	volID, err := ExecuteApply(context.Background(), ApplyInput{
		EventID:  "ev-1",
		Email:    "new@crewcall.test",
		Name:     "Alex Doe",
		Password: "a-long-password",
	}, applyDeps(accounts, vols, events, sender))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := vols.volunteers[volID]; !ok {
		t.Error("expected volunteer to be persisted despite email failure")
	}
}
