package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
)

// Role constants
const (
	RoleAdmin     = "admin"
	RoleLead      = "lead"
	RoleVolunteer = "volunteer"
)

// Account status constants
const (
	StatusActive       = "active"
	StatusPendingEmail = "pending_email"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleLead, RoleVolunteer}

// Domain errors
var (
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidRole      = errors.New("role must be one of: admin, lead, volunteer")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrAlreadyConfirmed = errors.New("email is already confirmed")
	ErrNotPending       = errors.New("account is not pending email confirmation")
)

// Account is an authentication identity: volunteer, team lead or admin.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	Status       string // active, pending_email
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// Passkey is a stored WebAuthn credential bound to an account.
type Passkey struct {
	ID           string
	AccountID    string
	CredentialID []byte
	PublicKey    []byte
	SignCount    uint32
	Transports   string // comma-separated transport hints
	CreatedAt    time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if !isValidRole(a.Role) {
		return ErrInvalidRole
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < 12 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)) != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the account is currently locked out.
// INVARIANT: Account fields are not mutated
func (a *Account) IsLocked() bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return time.Now().Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account after 5 failures.
// PRE: Account exists
// POST: FailedLogins incremented; LockedUntil set if >= 5 failures
func (a *Account) RecordFailedLogin() {
	a.FailedLogins++
	if a.FailedLogins >= 5 {
		a.LockedUntil = time.Now().Add(15 * time.Minute)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
// PRE: Account exists
// POST: FailedLogins is 0, LockedUntil is zero
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// IsAdmin returns true if the account has admin role.
// INVARIANT: Account fields are not mutated
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsLeadOrAdmin returns true if the account has lead or admin role.
// INVARIANT: Account fields are not mutated
func (a *Account) IsLeadOrAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleLead
}

// IsPendingEmail returns true if the account awaits email confirmation.
// INVARIANT: Account fields are not mutated
func (a *Account) IsPendingEmail() bool {
	return a.Status == StatusPendingEmail
}

// ConfirmEmail transitions the account from pending to active.
// PRE: Account is in pending_email status
// POST: Status is set to active
func (a *Account) ConfirmEmail() error {
	if a.Status == StatusActive {
		return ErrAlreadyConfirmed
	}
	if a.Status != StatusPendingEmail {
		return ErrNotPending
	}
	a.Status = StatusActive
	return nil
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
