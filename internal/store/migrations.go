package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS activities (
			id             TEXT PRIMARY KEY,
			source         TEXT NOT NULL,
			start_time     TEXT,
			duration_sec   REAL NOT NULL,
			sample_rate_hz REAL
		)`,

		`CREATE TABLE IF NOT EXISTS samples (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			activity_id TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
			t           REAL NOT NULL,
			heart_rate  REAL,
			cadence     REAL,
			power       REAL,
			speed       REAL,
			elevation   REAL,
			temperature REAL,
			latitude    REAL,
			longitude   REAL
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			id        TEXT PRIMARY KEY,
			signup_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			type        TEXT NOT NULL,
			user_id     TEXT,
			activity_id TEXT,
			duration_ms REAL,
			success     BOOLEAN,
			meta        TEXT,
			created_at  TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS metric_results (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			activity_id TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
			metric_key  TEXT NOT NULL,
			version     TEXT NOT NULL,
			summary     TEXT NOT NULL,
			series      TEXT,
			computed_at TEXT NOT NULL,
			UNIQUE(activity_id, metric_key)
		)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at TEXT NOT NULL,
			command  TEXT NOT NULL,
			version  TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS aggregate_metrics (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id  INTEGER NOT NULL REFERENCES snapshots(id),
			metric_name  TEXT NOT NULL,
			metric_value REAL NOT NULL,
			detail       TEXT
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_samples_activity ON samples(activity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_user ON events(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_activity ON metric_results(activity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_aggregate_snapshot ON aggregate_metrics(snapshot_id)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	// Set schema version.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
