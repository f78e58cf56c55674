package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// InsertEvents appends a batch of telemetry events in one transaction.
func (db *DB) InsertEvents(events []telemetry.Event) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO events (type, user_id, activity_id, duration_ms, success, meta, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		var meta []byte
		if len(e.Meta) > 0 {
			meta, _ = json.Marshal(e.Meta)
		}
		if _, err := stmt.Exec(
			e.Type, nullStr(e.UserID), nullStr(e.ActivityID), e.DurationMs, e.Success,
			nullStr(string(meta)), e.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetEventsSince returns events created at or after the cutoff, ascending.
func (db *DB) GetEventsSince(cutoff time.Time) ([]telemetry.Event, error) {
	rows, err := db.conn.Query(
		`SELECT type, user_id, activity_id, duration_ms, success, meta, created_at
		 FROM events WHERE created_at >= ? ORDER BY created_at, id`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []telemetry.Event
	for rows.Next() {
		var e telemetry.Event
		var user, activity, meta sql.NullString
		var created string
		if err := rows.Scan(&e.Type, &user, &activity, &e.DurationMs, &e.Success, &meta, &created); err != nil {
			return nil, err
		}
		e.UserID = user.String
		e.ActivityID = activity.String
		if meta.String != "" {
			_ = json.Unmarshal([]byte(meta.String), &e.Meta)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		events = append(events, e)
	}
	return events, rows.Err()
}

// UpsertUsers stores user records, updating the signup time on conflict.
func (db *DB) UpsertUsers(users []telemetry.User) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO users (id, signup_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET signup_at = excluded.signup_at`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, u := range users {
		if u.ID == "" {
			continue
		}
		if _, err := stmt.Exec(u.ID, u.SignupAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetUsers returns all stored users.
func (db *DB) GetUsers() ([]telemetry.User, error) {
	rows, err := db.conn.Query("SELECT id, signup_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []telemetry.User
	for rows.Next() {
		var u telemetry.User
		var signup string
		if err := rows.Scan(&u.ID, &signup); err != nil {
			return nil, err
		}
		u.SignupAt, _ = time.Parse(time.RFC3339, signup)
		users = append(users, u)
	}
	return users, rows.Err()
}

// nullStr maps "" to NULL so empty attribution stays queryable as NULL.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
