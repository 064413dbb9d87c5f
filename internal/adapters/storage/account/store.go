package account

import (
	"context"

	domain "crewcall/internal/domain/account"
)

// Store persists Account and Passkey state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Account, error)

	SavePasskey(ctx context.Context, value domain.Passkey) error
	GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (domain.Passkey, error)
	ListPasskeysByAccount(ctx context.Context, accountID string) ([]domain.Passkey, error)
	DeletePasskey(ctx context.Context, id string) error
}
