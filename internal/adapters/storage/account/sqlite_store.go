package account

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"crewcall/internal/adapters/storage"
	domain "crewcall/internal/domain/account"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AccountStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const accountColumns = "id, email, password_hash, role, status, created_at, failed_logins, locked_until"

// scanAccount scans one account row using the given scan function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdStr string
	var lockedStr sql.NullString
	err := scan(&entity.ID, &entity.Email, &entity.PasswordHash, &entity.Role, &entity.Status, &createdStr, &entity.FailedLogins, &lockedStr)
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	if lockedStr.Valid && lockedStr.String != "" {
		entity.LockedUntil, _ = time.Parse(time.RFC3339, lockedStr.String)
	}
	return entity, nil
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id)
	entity, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// GetByEmail retrieves an Account by email, case-insensitively.
// PRE: email is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE LOWER(email) = ?", strings.ToLower(email))
	entity, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	var locked any
	if !entity.LockedUntil.IsZero() {
		locked = entity.LockedUntil.Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (id, email, password_hash, role, status, created_at, failed_logins, locked_until)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET email=excluded.email, password_hash=excluded.password_hash,
		 role=excluded.role, status=excluded.status, failed_logins=excluded.failed_logins, locked_until=excluded.locked_until`,
		entity.ID, entity.Email, entity.PasswordHash, entity.Role, entity.Status,
		entity.CreatedAt.Format(time.RFC3339), entity.FailedLogins, locked,
	)
	return err
}

// Delete removes an Account and its passkeys from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM passkey WHERE account_id = ?", id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// List retrieves all Accounts ordered by email.
// PRE: none
// POST: Returns all entities
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+accountColumns+" FROM account ORDER BY email")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

const passkeyColumns = "id, account_id, credential_id, public_key, sign_count, transports, created_at"

func scanPasskey(scan func(dest ...any) error) (domain.Passkey, error) {
	var entity domain.Passkey
	var createdStr string
	err := scan(&entity.ID, &entity.AccountID, &entity.CredentialID, &entity.PublicKey, &entity.SignCount, &entity.Transports, &createdStr)
	if err != nil {
		return domain.Passkey{}, err
	}
	entity.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	return entity, nil
}

// SavePasskey persists a Passkey to the database.
// PRE: entity has non-empty ID and AccountID
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SavePasskey(ctx context.Context, entity domain.Passkey) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO passkey (id, account_id, credential_id, public_key, sign_count, transports, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET sign_count=excluded.sign_count, transports=excluded.transports`,
		entity.ID, entity.AccountID, entity.CredentialID, entity.PublicKey, entity.SignCount,
		entity.Transports, entity.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// GetPasskeyByCredentialID retrieves a Passkey by its WebAuthn credential ID.
// PRE: credentialID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (domain.Passkey, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+passkeyColumns+" FROM passkey WHERE credential_id = ?", credentialID)
	entity, err := scanPasskey(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Passkey{}, fmt.Errorf("passkey not found: %w", err)
	}
	return entity, err
}

// ListPasskeysByAccount retrieves all Passkeys for an account.
// PRE: accountID is non-empty
// POST: Returns matching entities ordered by creation time
func (s *SQLiteStore) ListPasskeysByAccount(ctx context.Context, accountID string) ([]domain.Passkey, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+passkeyColumns+" FROM passkey WHERE account_id = ? ORDER BY created_at", accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Passkey
	for rows.Next() {
		entity, err := scanPasskey(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// DeletePasskey removes a Passkey from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) DeletePasskey(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM passkey WHERE id = ?", id)
	return err
}
