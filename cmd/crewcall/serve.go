package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"crewcall/internal/adapters/ai"
	emailPkg "crewcall/internal/adapters/email"
	web "crewcall/internal/adapters/http"
	"crewcall/internal/adapters/http/perf"
	smsPkg "crewcall/internal/adapters/sms"
	"crewcall/internal/adapters/storage"
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
	tokenPkg "crewcall/internal/adapters/token"
	"crewcall/internal/application/orchestrators"
	"crewcall/internal/application/scheduler"
	"crewcall/internal/platform/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and background jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	stores := &web.Stores{
		AccountStore:      accountStore.NewSQLiteStore(timedDB),
		VolunteerStore:    volunteerStore.NewSQLiteStore(timedDB),
		EventStore:        eventStore.NewSQLiteStore(timedDB),
		ProgramStore:      programStore.NewSQLiteStore(timedDB),
		PreferenceStore:   preferenceStore.NewSQLiteStore(timedDB),
		ShiftStore:        shiftStore.NewSQLiteStore(timedDB),
		VendorStore:       vendorStore.NewSQLiteStore(timedDB),
		AnnouncementStore: announcementStore.NewSQLiteStore(timedDB),
		MessageStore:      messageStore.NewSQLiteStore(timedDB),
		OutboxStore:       outboxStore.NewSQLiteStore(timedDB),
		AuditStore:        auditStore.NewSQLiteStore(timedDB),
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		seedDeps := orchestrators.SeedAdminDeps{
			AccountStore: stores.AccountStore,
			GenerateID:   newID,
			Now:          time.Now,
		}
		input := orchestrators.SeedAdminInput{Email: cfg.AdminEmail, Password: cfg.AdminPassword}
		adminID, err := orchestrators.ExecuteSeedAdmin(cmd.Context(), input, seedDeps)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if adminID != "" {
			slog.Info("startup_event", "event", "admin_seeded", "account_id", adminID)
		}
	} else {
		slog.Info("startup_event", "event", "admin_seed_skipped",
			"reason", "CREWCALL_ADMIN_EMAIL or CREWCALL_ADMIN_PASSWORD not set")
	}

	tokenSecret, err := loadTokenSecret(cfg.TokenSecret)
	if err != nil {
		return err
	}
	web.SetTokenSigner(tokenPkg.NewSigner(tokenSecret, 0), cfg.BaseURL)

	var emailSender emailPkg.Sender
	if cfg.ResendAPIKey != "" {
		emailSender = emailPkg.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
		slog.Info("startup_event", "event", "email_sender_configured", "provider", "resend")
	} else {
		emailSender = emailPkg.NewNoopSender()
		slog.Warn("startup_event", "event", "email_sender_noop",
			"hint", "set CREWCALL_RESEND_API_KEY for real delivery")
	}
	web.SetEmailSender(emailSender, cfg.EmailFrom)

	var smsSender smsPkg.Sender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFrom != "" {
		smsSender = smsPkg.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
		slog.Info("startup_event", "event", "sms_sender_configured", "provider", "twilio")
	} else {
		smsSender = smsPkg.NewNoopSender()
		slog.Warn("startup_event", "event", "sms_sender_noop",
			"hint", "set CREWCALL_TWILIO_* for real delivery")
	}
	web.SetSMSSender(smsSender)

	if cfg.OpenAIAPIKey != "" {
		web.SetDrafter(ai.NewOpenAIDrafter(cfg.OpenAIAPIKey, cfg.OpenAIModel))
		slog.Info("startup_event", "event", "drafter_configured", "provider", "openai")
	} else {
		slog.Info("startup_event", "event", "drafter_disabled",
			"hint", "set CREWCALL_OPENAI_API_KEY to enable announcement drafting")
	}

	if err := web.SetWebAuthn(cfg.RPID, cfg.RPOrigin); err != nil {
		return fmt.Errorf("configure webauthn: %w", err)
	}

	sched, err := scheduler.New(scheduler.Config{
		ReminderSchedule: cfg.ReminderSchedule,
		OutboxInterval:   cfg.OutboxInterval,
	}, scheduler.Deps{
		Reminders: orchestrators.SendRemindersDeps{
			EventStore:     stores.EventStore,
			ShiftStore:     stores.ShiftStore,
			VolunteerStore: stores.VolunteerStore,
			MessageStore:   stores.MessageStore,
			EmailSender:    emailSender,
			EmailFrom:      cfg.EmailFrom,
			GenerateID:     newID,
			Now:            time.Now,
		},
		Outbox: orchestrators.RetryOutboxDeps{
			OutboxStore: stores.OutboxStore,
			EmailSender: emailSender,
			SMSSender:   smsSender,
			BatchSize:   50,
			Now:         time.Now,
		},
	})
	if err != nil {
		return fmt.Errorf("configure scheduler: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	mux := web.NewMux("static", stores, collector)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("startup_event", "event", "server_listening",
			"version", version, "addr", cfg.Addr, "schema", storage.LatestSchemaVersion())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		slog.Info("startup_event", "event", "shutdown_started")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

func newID() string {
	return uuid.New().String()
}

// loadTokenSecret returns the configured signing secret or, outside
// production, a random one that does not survive a restart.
func loadTokenSecret(configured string) ([]byte, error) {
	if configured != "" {
		if len(configured) < 32 {
			return nil, errors.New("CREWCALL_TOKEN_SECRET must be at least 32 bytes")
		}
		return []byte(configured), nil
	}
	if os.Getenv("CREWCALL_ENV") == "production" {
		return nil, errors.New("CREWCALL_TOKEN_SECRET is required in production")
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate token secret: %w", err)
	}
	slog.Warn("startup_event", "event", "token_secret_generated",
		"hint", "signed links will break on restart; set CREWCALL_TOKEN_SECRET")
	return secret, nil
}
