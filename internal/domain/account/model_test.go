package account_test

import (
	"testing"
	"time"

	"crewcall/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		acct    account.Account
		wantErr bool
	}{
		{
			name:    "valid admin",
			acct:    account.Account{Email: "ops@crewcall.example", Role: account.RoleAdmin},
			wantErr: false,
		},
		{
			name:    "valid volunteer",
			acct:    account.Account{Email: "vol@crewcall.example", Role: account.RoleVolunteer},
			wantErr: false,
		},
		{
			name:    "empty email",
			acct:    account.Account{Email: "", Role: account.RoleAdmin},
			wantErr: true,
		},
		{
			name:    "email without at sign",
			acct:    account.Account{Email: "nope", Role: account.RoleAdmin},
			wantErr: true,
		},
		{
			name:    "invalid role",
			acct:    account.Account{Email: "a@b.c", Role: "superuser"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.acct.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Account.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestAccount_PasswordRoundTrip tests SetPassword and CheckPassword.
func TestAccount_PasswordRoundTrip(t *testing.T) {
	var a account.Account
	if err := a.SetPassword("short"); err != account.ErrPasswordTooShort {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := a.SetPassword(""); err != account.ErrEmptyPassword {
		t.Errorf("expected ErrEmptyPassword, got %v", err)
	}
	if err := a.SetPassword("a long enough password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.CheckPassword("a long enough password"); err != nil {
		t.Errorf("expected matching password, got %v", err)
	}
	if err := a.CheckPassword("wrong password entirely"); err != account.ErrWrongPassword {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}

// TestAccount_Lockout tests failed-login lockout behavior.
func TestAccount_Lockout(t *testing.T) {
	var a account.Account
	for i := 0; i < 4; i++ {
		a.RecordFailedLogin()
	}
	if a.IsLocked() {
		t.Error("account should not lock before 5 failures")
	}
	a.RecordFailedLogin()
	if !a.IsLocked() {
		t.Error("account should lock after 5 failures")
	}
	a.ResetFailedLogins()
	if a.IsLocked() || a.FailedLogins != 0 {
		t.Error("reset should clear lock and counter")
	}
}

// TestAccount_ConfirmEmail tests the pending -> active transition.
func TestAccount_ConfirmEmail(t *testing.T) {
	a := account.Account{Status: account.StatusPendingEmail, CreatedAt: time.Now()}
	if !a.IsPendingEmail() {
		t.Fatal("expected pending status")
	}
	if err := a.ConfirmEmail(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != account.StatusActive {
		t.Errorf("status = %s, want active", a.Status)
	}
	if err := a.ConfirmEmail(); err != account.ErrAlreadyConfirmed {
		t.Errorf("expected ErrAlreadyConfirmed, got %v", err)
	}
}

// TestAccount_RoleHelpers tests the role predicate helpers.
func TestAccount_RoleHelpers(t *testing.T) {
	admin := account.Account{Role: account.RoleAdmin}
	lead := account.Account{Role: account.RoleLead}
	vol := account.Account{Role: account.RoleVolunteer}

	if !admin.IsAdmin() || !admin.IsLeadOrAdmin() {
		t.Error("admin predicates wrong")
	}
	if lead.IsAdmin() || !lead.IsLeadOrAdmin() {
		t.Error("lead predicates wrong")
	}
	if vol.IsAdmin() || vol.IsLeadOrAdmin() {
		t.Error("volunteer predicates wrong")
	}
}
