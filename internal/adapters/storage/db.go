package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migrations is the ordered list of schema versions. Index i holds the
// statements that bring the schema from version i to version i+1.
// Never edit an applied migration; append a new one.
var migrations = [][]string{
	// v1: initial schema
	{
		`CREATE TABLE IF NOT EXISTS account (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TEXT NOT NULL,
			failed_logins INTEGER NOT NULL DEFAULT 0,
			locked_until TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS passkey (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			credential_id BLOB NOT NULL,
			public_key BLOB NOT NULL,
			sign_count INTEGER NOT NULL DEFAULT 0,
			transports TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			FOREIGN KEY (account_id) REFERENCES account(id)
		)`,
		`CREATE TABLE IF NOT EXISTS event (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			timezone TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			apps_open TEXT,
			apps_close TEXT,
			active INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			created_by TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS volunteer (
			id TEXT PRIMARY KEY,
			account_id TEXT,
			event_id TEXT NOT NULL,
			email TEXT NOT NULL,
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			languages TEXT NOT NULL DEFAULT '',
			shirt_size TEXT NOT NULL DEFAULT '',
			team_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			applied_at TEXT NOT NULL,
			decided_at TEXT,
			decided_by TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (event_id) REFERENCES event(id)
		)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			volunteer_id TEXT PRIMARY KEY,
			timing_configured INTEGER NOT NULL DEFAULT 0,
			timing_start_hour INTEGER NOT NULL DEFAULT 0,
			timing_end_hour INTEGER NOT NULL DEFAULT 0,
			hotel_choice TEXT NOT NULL DEFAULT '',
			training_courses TEXT NOT NULL DEFAULT '',
			exceptions_raw TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (volunteer_id) REFERENCES volunteer(id)
		)`,
		`CREATE TABLE IF NOT EXISTS program_slot (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			title TEXT NOT NULL,
			stage TEXT NOT NULL DEFAULT '',
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			FOREIGN KEY (event_id) REFERENCES event(id)
		)`,
		`CREATE TABLE IF NOT EXISTS program_interest (
			id TEXT PRIMARY KEY,
			slot_id TEXT NOT NULL,
			volunteer_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE (slot_id, volunteer_id),
			FOREIGN KEY (slot_id) REFERENCES program_slot(id),
			FOREIGN KEY (volunteer_id) REFERENCES volunteer(id)
		)`,
		`CREATE TABLE IF NOT EXISTS team (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			name TEXT NOT NULL,
			lead_account_id TEXT NOT NULL DEFAULT '',
			visible INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			FOREIGN KEY (event_id) REFERENCES event(id)
		)`,
		`CREATE TABLE IF NOT EXISTS shift_template (
			id TEXT PRIMARY KEY,
			team_id TEXT NOT NULL,
			label TEXT NOT NULL,
			start_time TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL,
			headcount INTEGER NOT NULL,
			rrule TEXT NOT NULL,
			FOREIGN KEY (team_id) REFERENCES team(id)
		)`,
		`CREATE TABLE IF NOT EXISTS shift (
			id TEXT PRIMARY KEY,
			team_id TEXT NOT NULL,
			template_id TEXT NOT NULL DEFAULT '',
			label TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			headcount INTEGER NOT NULL,
			locked INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (team_id) REFERENCES team(id)
		)`,
		`CREATE TABLE IF NOT EXISTS assignment (
			id TEXT PRIMARY KEY,
			shift_id TEXT NOT NULL,
			volunteer_id TEXT NOT NULL,
			status TEXT NOT NULL,
			assigned_by TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			decided_at TEXT,
			UNIQUE (shift_id, volunteer_id),
			FOREIGN KEY (shift_id) REFERENCES shift(id),
			FOREIGN KEY (volunteer_id) REFERENCES volunteer(id)
		)`,
		`CREATE TABLE IF NOT EXISTS vendor (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			name TEXT NOT NULL,
			contact_name TEXT NOT NULL DEFAULT '',
			contact_email TEXT NOT NULL DEFAULT '',
			contact_phone TEXT NOT NULL DEFAULT '',
			service TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			FOREIGN KEY (event_id) REFERENCES event(id)
		)`,
		`CREATE TABLE IF NOT EXISTS announcement (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			audience TEXT NOT NULL,
			team_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_by TEXT NOT NULL,
			created_at TEXT NOT NULL,
			published_by TEXT NOT NULL DEFAULT '',
			published_at TEXT,
			FOREIGN KEY (event_id) REFERENCES event(id)
		)`,
		`CREATE TABLE IF NOT EXISTS message_log (
			id TEXT PRIMARY KEY,
			channel TEXT NOT NULL,
			volunteer_id TEXT NOT NULL DEFAULT '',
			recipient TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL,
			status TEXT NOT NULL,
			provider_message_id TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outbox (
			id TEXT PRIMARY KEY,
			action_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			status TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL DEFAULT 5,
			last_attempted_at TEXT,
			created_at TEXT NOT NULL,
			external_id TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS audit_event (
			id TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL,
			category TEXT NOT NULL,
			action TEXT NOT NULL,
			severity TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			actor_email TEXT NOT NULL DEFAULT '',
			actor_role TEXT NOT NULL DEFAULT '',
			resource_id TEXT NOT NULL DEFAULT '',
			resource_type TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT ''
		)`,
	},
	// v2: lookup indexes for the timeline and grid queries
	{
		`CREATE INDEX IF NOT EXISTS idx_shift_team_start ON shift(team_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_assignment_shift ON assignment(shift_id)`,
		`CREATE INDEX IF NOT EXISTS idx_assignment_volunteer ON assignment(volunteer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_volunteer_event_status ON volunteer(event_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_program_slot_event ON program_slot(event_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_message_log_created ON message_log(created_at)`,
	},
}

// LatestSchemaVersion returns the version the migration list produces.
func LatestSchemaVersion() int {
	return len(migrations)
}

// SchemaVersion reads the current schema version from the database.
// PRE: db is a valid connection
// POST: returns 0 for a fresh database, the applied version otherwise
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return 0, fmt.Errorf("ensure schema_version table: %w", err)
	}
	var version int
	err := db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return 0, fmt.Errorf("initialize schema_version: %w", err)
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

// MigrateDB applies pending migrations in order, each in its own
// transaction, and records the resulting version.
// PRE: db is a valid connection; dbPath identifies the database for logs
// POST: schema is at LatestSchemaVersion
func MigrateDB(db *sql.DB, dbPath string) error {
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("database %s is at schema version %d, newer than this binary supports (%d)", dbPath, current, len(migrations))
	}

	for v := current; v < len(migrations); v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration to v%d: %w", v+1, err)
		}
		for _, stmt := range migrations[v] {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration to v%d failed: %w", v+1, err)
			}
		}
		if _, err := tx.Exec(`UPDATE schema_version SET version = ?`, v+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("record schema version %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration to v%d: %w", v+1, err)
		}
		slog.Info("schema_migrated", "db", dbPath, "version", v+1)
	}
	return nil
}
