package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"crewcall/internal/domain/account"
)

var fixedTime = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

// seqID returns a generator producing id-001, id-002, ...
func seqID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

// mockAccountStore implements the account store interfaces for testing.
type mockAccountStore struct {
	accounts map[string]account.Account // keyed by ID
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return account.Account{}, errors.New("not found")
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) List(_ context.Context) ([]account.Account, error) {
	var out []account.Account
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return out, nil
}

func activeAccount(t *testing.T, id, email, password, role string) account.Account {
	t.Helper()
	a := account.Account{
		ID:        id,
		Email:     email,
		Role:      role,
		Status:    account.StatusActive,
		CreatedAt: fixedTime,
	}
	if err := a.SetPassword(password); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	return a
}

func TestExecuteLogin_Success(t *testing.T) {
	store := newMockAccountStore()
	store.accounts["acct-1"] = activeAccount(t, "acct-1", "lead@crewcall.test", "a-long-password", account.RoleLead)

	result, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "lead@crewcall.test",
		Password: "a-long-password",
	}, LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AccountID != "acct-1" {
		t.Errorf("expected AccountID=acct-1, got %s", result.AccountID)
	}
	if result.Role != account.RoleLead {
		t.Errorf("expected role=lead, got %s", result.Role)
	}
}

func TestExecuteLogin_WrongPassword(t *testing.T) {
	store := newMockAccountStore()
	store.accounts["acct-1"] = activeAccount(t, "acct-1", "vol@crewcall.test", "a-long-password", account.RoleVolunteer)

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "vol@crewcall.test",
		Password: "wrong-password!!",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if store.accounts["acct-1"].FailedLogins != 1 {
		t.Errorf("expected FailedLogins=1, got %d", store.accounts["acct-1"].FailedLogins)
	}
}

func TestExecuteLogin_UnknownEmail(t *testing.T) {
	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "nobody@crewcall.test",
		Password: "a-long-password",
	}, LoginDeps{AccountStore: newMockAccountStore()})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestExecuteLogin_Locked(t *testing.T) {
	store := newMockAccountStore()
	a := activeAccount(t, "acct-1", "vol@crewcall.test", "a-long-password", account.RoleVolunteer)
	a.LockedUntil = time.Now().Add(10 * time.Minute)
	store.accounts["acct-1"] = a

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "vol@crewcall.test",
		Password: "a-long-password",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
}

func TestExecuteLogin_PendingEmail(t *testing.T) {
	store := newMockAccountStore()
	a := activeAccount(t, "acct-1", "new@crewcall.test", "a-long-password", account.RoleVolunteer)
	a.Status = account.StatusPendingEmail
	store.accounts["acct-1"] = a

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "new@crewcall.test",
		Password: "a-long-password",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrEmailNotConfirmed) {
		t.Fatalf("expected ErrEmailNotConfirmed, got %v", err)
	}
}

func TestExecuteSeedAdmin_EmptyTable(t *testing.T) {
	store := newMockAccountStore()
	id, err := ExecuteSeedAdmin(context.Background(), SeedAdminInput{
		Email:    "admin@crewcall.test",
		Password: "bootstrap-password",
	}, SeedAdminDeps{AccountStore: store, GenerateID: fixedID, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "test-id-001" {
		t.Errorf("expected id=test-id-001, got %s", id)
	}
	acct := store.accounts["test-id-001"]
	if acct.Role != account.RoleAdmin {
		t.Errorf("expected role=admin, got %s", acct.Role)
	}
	if acct.Status != account.StatusActive {
		t.Errorf("expected status=active, got %s", acct.Status)
	}
}

func TestExecuteSeedAdmin_ExistingAccounts(t *testing.T) {
	store := newMockAccountStore()
	store.accounts["acct-1"] = activeAccount(t, "acct-1", "admin@crewcall.test", "a-long-password", account.RoleAdmin)

	id, err := ExecuteSeedAdmin(context.Background(), SeedAdminInput{
		Email:    "other@crewcall.test",
		Password: "bootstrap-password",
	}, SeedAdminDeps{AccountStore: store, GenerateID: fixedID, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "" {
		t.Errorf("expected no-op, got id %s", id)
	}
	if len(store.accounts) != 1 {
		t.Errorf("expected 1 account, got %d", len(store.accounts))
	}
}

func TestExecuteSeedAdmin_MissingConfig(t *testing.T) {
	_, err := ExecuteSeedAdmin(context.Background(), SeedAdminInput{}, SeedAdminDeps{
		AccountStore: newMockAccountStore(), GenerateID: fixedID, Now: fixedNow,
	})
	if !errors.Is(err, ErrSeedNotConfigured) {
		t.Fatalf("expected ErrSeedNotConfigured, got %v", err)
	}
}
