package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"crewcall/internal/adapters/http/middleware"
	"crewcall/internal/domain/account"
)

// passkeyCeremonies holds in-flight WebAuthn ceremony state between the
// begin and finish calls. Entries expire after a few minutes.
var passkeyCeremonies = struct {
	mu       sync.Mutex
	sessions map[string]passkeyCeremony
}{sessions: make(map[string]passkeyCeremony)}

type passkeyCeremony struct {
	data      webauthn.SessionData
	accountID string // empty for discoverable login
	createdAt time.Time
}

const passkeyCeremonyTTL = 5 * time.Minute

var errUnexpectedPasskeyUser = errors.New("unexpected passkey user type")

func storeCeremony(accountID string, data *webauthn.SessionData) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	id := hex.EncodeToString(buf)

	passkeyCeremonies.mu.Lock()
	defer passkeyCeremonies.mu.Unlock()
	now := time.Now()
	for k, c := range passkeyCeremonies.sessions {
		if now.Sub(c.createdAt) > passkeyCeremonyTTL {
			delete(passkeyCeremonies.sessions, k)
		}
	}
	passkeyCeremonies.sessions[id] = passkeyCeremony{data: *data, accountID: accountID, createdAt: now}
	return id, nil
}

func takeCeremony(id string) (passkeyCeremony, bool) {
	passkeyCeremonies.mu.Lock()
	defer passkeyCeremonies.mu.Unlock()
	c, ok := passkeyCeremonies.sessions[id]
	if !ok {
		return passkeyCeremony{}, false
	}
	delete(passkeyCeremonies.sessions, id)
	if time.Since(c.createdAt) > passkeyCeremonyTTL {
		return passkeyCeremony{}, false
	}
	return c, true
}

// passkeyUser adapts an account and its stored passkeys to webauthn.User.
type passkeyUser struct {
	acct        account.Account
	credentials []webauthn.Credential
}

func (u *passkeyUser) WebAuthnID() []byte { return []byte(u.acct.ID) }

func (u *passkeyUser) WebAuthnName() string { return u.acct.Email }

func (u *passkeyUser) WebAuthnDisplayName() string { return u.acct.Email }

func (u *passkeyUser) WebAuthnCredentials() []webauthn.Credential { return u.credentials }

func loadPasskeyUser(r *http.Request, acct account.Account) (*passkeyUser, error) {
	stored, err := stores.AccountStore.ListPasskeysByAccount(r.Context(), acct.ID)
	if err != nil {
		return nil, err
	}
	creds := make([]webauthn.Credential, 0, len(stored))
	for _, pk := range stored {
		var transports []protocol.AuthenticatorTransport
		for _, t := range strings.Split(pk.Transports, ",") {
			if t != "" {
				transports = append(transports, protocol.AuthenticatorTransport(t))
			}
		}
		creds = append(creds, webauthn.Credential{
			ID:        pk.CredentialID,
			PublicKey: pk.PublicKey,
			Authenticator: webauthn.Authenticator{
				SignCount: pk.SignCount,
			},
			Transport: transports,
		})
	}
	return &passkeyUser{acct: acct, credentials: creds}, nil
}

func requirePasskeySupport(w http.ResponseWriter) bool {
	if webAuthn == nil {
		http.Error(w, "passkeys are not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// handlePasskeyRegisterBegin handles POST /api/passkeys/register/begin.
// A logged-in account starts registering an additional credential.
func handlePasskeyRegisterBegin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	if !requirePasskeySupport(w) {
		return
	}

	acct, err := stores.AccountStore.GetByID(r.Context(), sess.AccountID)
	if err != nil {
		internalError(w, err)
		return
	}
	user, err := loadPasskeyUser(r, acct)
	if err != nil {
		internalError(w, err)
		return
	}

	opts := []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
	}
	if len(user.credentials) > 0 {
		opts = append(opts, webauthn.WithExclusions(webauthn.Credentials(user.credentials).CredentialDescriptors()))
	}
	creation, sessionData, err := webAuthn.BeginRegistration(user, opts...)
	if err != nil {
		internalError(w, err)
		return
	}

	ceremonyID, err := storeCeremony(acct.ID, sessionData)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"ceremony_id": ceremonyID,
		"options":     creation,
	})
}

// handlePasskeyRegisterFinish handles POST /api/passkeys/register/finish
func handlePasskeyRegisterFinish(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	if !requirePasskeySupport(w) {
		return
	}

	var input struct {
		CeremonyID string          `json:"CeremonyID"`
		Credential json.RawMessage `json:"Credential"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	ceremony, ok := takeCeremony(input.CeremonyID)
	if !ok || ceremony.accountID != sess.AccountID {
		http.Error(w, "unknown or expired ceremony", http.StatusBadRequest)
		return
	}

	acct, err := stores.AccountStore.GetByID(r.Context(), sess.AccountID)
	if err != nil {
		internalError(w, err)
		return
	}
	user, err := loadPasskeyUser(r, acct)
	if err != nil {
		internalError(w, err)
		return
	}

	parsed, err := protocol.ParseCredentialCreationResponseBytes(input.Credential)
	if err != nil {
		http.Error(w, "invalid credential response", http.StatusBadRequest)
		return
	}
	cred, err := webAuthn.CreateCredential(user, ceremony.data, parsed)
	if err != nil {
		http.Error(w, "credential validation failed", http.StatusBadRequest)
		return
	}

	transports := make([]string, 0, len(cred.Transport))
	for _, t := range cred.Transport {
		transports = append(transports, string(t))
	}
	pk := account.Passkey{
		ID:           generateID(),
		AccountID:    acct.ID,
		CredentialID: cred.ID,
		PublicKey:    cred.PublicKey,
		SignCount:    cred.Authenticator.SignCount,
		Transports:   strings.Join(transports, ","),
		CreatedAt:    timeNow(),
	}
	if err := stores.AccountStore.SavePasskey(r.Context(), pk); err != nil {
		internalError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"passkey_id": pk.ID})
}

// handlePasskeyLoginBegin handles POST /api/passkeys/login/begin.
// With an email the ceremony is scoped to that account's credentials;
// without one a discoverable (usernameless) login is started.
func handlePasskeyLoginBegin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requirePasskeySupport(w) {
		return
	}

	var input struct {
		Email string `json:"Email"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var (
		assertion   *protocol.CredentialAssertion
		sessionData *webauthn.SessionData
		accountID   string
		err         error
	)
	if input.Email == "" {
		assertion, sessionData, err = webAuthn.BeginDiscoverableLogin()
	} else {
		acct, lookupErr := stores.AccountStore.GetByEmail(r.Context(), input.Email)
		if lookupErr != nil {
			// Same response as a bad assertion to avoid user enumeration.
			http.Error(w, "passkey login failed", http.StatusUnauthorized)
			return
		}
		var user *passkeyUser
		user, err = loadPasskeyUser(r, acct)
		if err == nil {
			accountID = acct.ID
			assertion, sessionData, err = webAuthn.BeginLogin(user)
		}
	}
	if err != nil {
		internalError(w, err)
		return
	}

	ceremonyID, err := storeCeremony(accountID, sessionData)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"ceremony_id": ceremonyID,
		"options":     assertion,
	})
}

// handlePasskeyLoginFinish handles POST /api/passkeys/login/finish
func handlePasskeyLoginFinish(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requirePasskeySupport(w) {
		return
	}

	var input struct {
		CeremonyID string          `json:"CeremonyID"`
		Credential json.RawMessage `json:"Credential"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	ceremony, ok := takeCeremony(input.CeremonyID)
	if !ok {
		http.Error(w, "unknown or expired ceremony", http.StatusBadRequest)
		return
	}

	parsed, err := protocol.ParseCredentialRequestResponseBytes(input.Credential)
	if err != nil {
		http.Error(w, "invalid credential response", http.StatusBadRequest)
		return
	}

	handler := func(rawID, userHandle []byte) (webauthn.User, error) {
		acct, err := stores.AccountStore.GetByID(r.Context(), string(userHandle))
		if err != nil {
			return nil, err
		}
		return loadPasskeyUser(r, acct)
	}

	validated, cred, err := webAuthn.ValidatePasskeyLogin(handler, ceremony.data, parsed)
	if err != nil {
		http.Error(w, "passkey login failed", http.StatusUnauthorized)
		return
	}
	user, ok := validated.(*passkeyUser)
	if !ok {
		internalError(w, errUnexpectedPasskeyUser)
		return
	}
	acct := user.acct
	if ceremony.accountID != "" && acct.ID != ceremony.accountID {
		http.Error(w, "passkey login failed", http.StatusUnauthorized)
		return
	}
	if acct.IsLocked() || acct.IsPendingEmail() {
		http.Error(w, "account is not available for login", http.StatusForbidden)
		return
	}

	// Persist the updated sign count for clone detection.
	if stored, err := stores.AccountStore.GetPasskeyByCredentialID(r.Context(), cred.ID); err == nil {
		stored.SignCount = cred.Authenticator.SignCount
		if err := stores.AccountStore.SavePasskey(r.Context(), stored); err != nil {
			internalError(w, err)
			return
		}
	}

	tok, err := sessions.Create(acct.ID, acct.Email, acct.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, tok)
	writeJSON(w, map[string]string{
		"account_id": acct.ID,
		"email":      acct.Email,
		"role":       acct.Role,
	})
}

// handlePasskeys handles GET (list own) and DELETE for /api/passkeys
func handlePasskeys(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAuth(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if r.Method == "GET" {
		passkeys, err := stores.AccountStore.ListPasskeysByAccount(ctx, sess.AccountID)
		if err != nil {
			internalError(w, err)
			return
		}
		type passkeyInfo struct {
			ID         string    `json:"ID"`
			Transports string    `json:"Transports"`
			CreatedAt  time.Time `json:"CreatedAt"`
		}
		infos := make([]passkeyInfo, 0, len(passkeys))
		for _, pk := range passkeys {
			infos = append(infos, passkeyInfo{ID: pk.ID, Transports: pk.Transports, CreatedAt: pk.CreatedAt})
		}
		writeJSON(w, infos)
		return
	}

	if r.Method == "DELETE" {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		// Only the owner's keys are deletable through this endpoint.
		passkeys, err := stores.AccountStore.ListPasskeysByAccount(ctx, sess.AccountID)
		if err != nil {
			internalError(w, err)
			return
		}
		owned := false
		for _, pk := range passkeys {
			if pk.ID == id {
				owned = true
				break
			}
		}
		if !owned {
			http.Error(w, "passkey not found", http.StatusNotFound)
			return
		}
		if err := stores.AccountStore.DeletePasskey(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}
