package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, loaded from CREWCALL_* environment variables.
type Config struct {
	Addr    string `env:"CREWCALL_ADDR" envDefault:":8080"`
	BaseURL string `env:"CREWCALL_BASE_URL" envDefault:"http://localhost:8080"`
	DBPath  string `env:"CREWCALL_DB_PATH" envDefault:"crewcall.db"`

	// Secrets. CSRFKey and TokenSecret must be set in production; empty values
	// fall back to generated keys that do not survive a restart.
	CSRFKey     string `env:"CREWCALL_CSRF_KEY"`
	TokenSecret string `env:"CREWCALL_TOKEN_SECRET"`

	// Email via Resend. Empty API key selects the noop sender.
	ResendAPIKey string `env:"CREWCALL_RESEND_API_KEY"`
	EmailFrom    string `env:"CREWCALL_EMAIL_FROM" envDefault:"Crewcall <noreply@crewcall.example>"`

	// SMS via Twilio. Empty SID selects the noop sender.
	TwilioAccountSID string `env:"CREWCALL_TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"CREWCALL_TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `env:"CREWCALL_TWILIO_FROM"`

	// AI announcement drafting. Empty key disables drafting.
	OpenAIAPIKey string `env:"CREWCALL_OPENAI_API_KEY"`
	OpenAIModel  string `env:"CREWCALL_OPENAI_MODEL"`

	// WebAuthn relying party settings for passkey login.
	RPID     string `env:"CREWCALL_RP_ID" envDefault:"localhost"`
	RPOrigin string `env:"CREWCALL_RP_ORIGIN" envDefault:"http://localhost:8080"`

	// Seed admin created on first startup when no accounts exist.
	AdminEmail    string `env:"CREWCALL_ADMIN_EMAIL"`
	AdminPassword string `env:"CREWCALL_ADMIN_PASSWORD"`

	// Background work.
	OutboxInterval   time.Duration `env:"CREWCALL_OUTBOX_INTERVAL" envDefault:"1m"`
	ReminderSchedule string        `env:"CREWCALL_REMINDER_SCHEDULE" envDefault:"0 18 * * *"`
}

// Load reads configuration from the environment.
// POST: Returns a populated Config or an error for malformed values
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
