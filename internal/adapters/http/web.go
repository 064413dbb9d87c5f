package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"

	"crewcall/internal/adapters/ai"
	"crewcall/internal/adapters/email"
	"crewcall/internal/adapters/http/middleware"
	"crewcall/internal/adapters/http/perf"
	"crewcall/internal/adapters/sms"
	"crewcall/internal/adapters/token"
	accountStore "crewcall/internal/adapters/storage/account"
	announcementStore "crewcall/internal/adapters/storage/announcement"
	auditStore "crewcall/internal/adapters/storage/audit"
	eventStore "crewcall/internal/adapters/storage/event"
	messageStore "crewcall/internal/adapters/storage/message"
	outboxStore "crewcall/internal/adapters/storage/outbox"
	preferenceStore "crewcall/internal/adapters/storage/preference"
	programStore "crewcall/internal/adapters/storage/program"
	shiftStore "crewcall/internal/adapters/storage/shift"
	vendorStore "crewcall/internal/adapters/storage/vendor"
	volunteerStore "crewcall/internal/adapters/storage/volunteer"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	VolunteerStore    volunteerStore.Store
	EventStore        eventStore.Store
	ProgramStore      programStore.Store
	PreferenceStore   preferenceStore.Store
	ShiftStore        shiftStore.Store
	VendorStore       vendorStore.Store
	AnnouncementStore announcementStore.Store
	MessageStore      messageStore.Store
	OutboxStore       outboxStore.Store
	AuditStore        auditStore.Store
}

// loadCSRFKey reads the CSRF secret from CREWCALL_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("CREWCALL_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CREWCALL_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("CREWCALL_ENV") == "production" {
		log.Fatal("CREWCALL_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set CREWCALL_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from string) {
	emailSender = sender
	emailFromAddress = from
}

// Global SMS sender instance (set by SetSMSSender)
var smsSender sms.Sender

// SetSMSSender sets the global SMS sender for the application.
func SetSMSSender(sender sms.Sender) {
	smsSender = sender
}

// Global announcement drafter (set by SetDrafter)
var drafter ai.Drafter

// SetDrafter sets the AI drafting provider for announcements.
func SetDrafter(d ai.Drafter) {
	drafter = d
}

// Global token signer for email-confirmation and calendar-feed links.
var tokenSigner *token.Signer

// Public base URL used when building links in outgoing email.
var baseURL string

// SetTokenSigner sets the link signer and the public base URL for emailed links.
func SetTokenSigner(s *token.Signer, base string) {
	tokenSigner = s
	baseURL = base
}

// Global WebAuthn instance for passkey ceremonies (set by SetWebAuthn).
var webAuthn *webauthn.WebAuthn

// SetWebAuthn configures passkey support. Leaving it unset disables the
// passkey endpoints with a 503.
func SetWebAuthn(rpID, rpOrigin string) error {
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: "Crewcall",
		RPID:          rpID,
		RPOrigins:     []string{rpOrigin},
	})
	if err != nil {
		return err
	}
	webAuthn = wa
	return nil
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
