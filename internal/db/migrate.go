package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// migrations are run in order on every open. CREATE statements use IF NOT
// EXISTS; ALTER TABLE statements rely on Migrate tolerating duplicate-column
// errors, so the full list can be re-applied safely.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS fasting_sessions (
		id                    TEXT PRIMARY KEY,
		user_id               TEXT NOT NULL,
		status                TEXT NOT NULL CHECK(status IN ('active','completed','cancelled')),
		start_time            TEXT NOT NULL,
		end_time              TEXT,
		target_duration_hours REAL,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL
	)`,

	// One active session per user, enforced by the store itself. A plain
	// insert of an active row while another exists fails on this index,
	// which is what makes concurrent starts resolve to a single winner.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active
		ON fasting_sessions(user_id) WHERE status = 'active'`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_user_start
		ON fasting_sessions(user_id, start_time)`,

	`CREATE TABLE IF NOT EXISTS scheduled_fasts (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		enabled           INTEGER NOT NULL DEFAULT 1,
		days_of_week      TEXT NOT NULL,
		start_time_of_day TEXT NOT NULL,
		duration_hours    REAL NOT NULL,
		last_triggered_at TEXT,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_schedules_enabled ON scheduled_fasts(enabled)`,

	// Added after initial release: per-schedule time zone preference.
	`ALTER TABLE scheduled_fasts ADD COLUMN timezone TEXT NOT NULL DEFAULT ''`,

	`CREATE INDEX IF NOT EXISTS idx_schedules_user ON scheduled_fasts(user_id)`,
}

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
