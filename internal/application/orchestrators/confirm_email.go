package orchestrators

import (
	"context"
	"log/slog"

	"crewcall/internal/adapters/token"
	"crewcall/internal/domain/account"
)

// AccountStoreForConfirm defines the store interface needed by ConfirmEmail.
type AccountStoreForConfirm interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ConfirmEmailDeps holds dependencies for ConfirmEmail.
type ConfirmEmailDeps struct {
	AccountStore AccountStoreForConfirm
	TokenSigner  *token.Signer
}

// ExecuteConfirmEmail verifies a signed confirmation link and activates the account.
// PRE: raw is the token from the emailed link
// POST: Account status is active; repeated confirmation returns ErrAlreadyConfirmed
func ExecuteConfirmEmail(ctx context.Context, raw string, deps ConfirmEmailDeps) (string, error) {
	accountID, err := deps.TokenSigner.Verify(raw, token.PurposeConfirmEmail)
	if err != nil {
		slog.Info("auth_event", "event", "email_confirm_rejected", "reason", err.Error())
		return "", err
	}

	acct, err := deps.AccountStore.GetByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	if err := acct.ConfirmEmail(); err != nil {
		return "", err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "email_confirmed", "account_id", accountID)
	return accountID, nil
}
