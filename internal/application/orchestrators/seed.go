package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"crewcall/internal/domain/account"
)

// AccountStoreForSeed defines the account store interface needed by SeedAdmin.
type AccountStoreForSeed interface {
	List(ctx context.Context) ([]account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// SeedAdminInput carries the bootstrap admin credentials.
type SeedAdminInput struct {
	Email    string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForSeed
	GenerateID   func() string
	Now          func() time.Time
}

var ErrSeedNotConfigured = errors.New("seed admin email and password are required")

// ExecuteSeedAdmin creates the bootstrap admin account when the account table
// is empty. A populated table makes this a no-op so restarts stay safe.
// POST: Returns the admin account ID, or empty string when nothing was seeded
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) (string, error) {
	existing, err := deps.AccountStore.List(ctx)
	if err != nil {
		return "", err
	}
	if len(existing) > 0 {
		return "", nil
	}
	if input.Email == "" || input.Password == "" {
		return "", ErrSeedNotConfigured
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     input.Email,
		Role:      account.RoleAdmin,
		Status:    account.StatusActive,
		CreatedAt: deps.Now(),
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}
	if err := acct.Validate(); err != nil {
		return "", err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "admin_seeded", "account_id", acct.ID, "email", acct.Email)
	return acct.ID, nil
}
