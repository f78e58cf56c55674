package store

import (
	"database/sql"
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// InsertActivity stores an activity header and its full sample sequence in
// one transaction. Activities are immutable after ingestion; re-importing
// the same id is an error surfaced by the primary key.
func (db *DB) InsertActivity(act *telemetry.Activity) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var start string
	if !act.StartTime.IsZero() {
		start = act.StartTime.UTC().Format(time.RFC3339)
	}
	if _, err := tx.Exec(
		"INSERT INTO activities (id, source, start_time, duration_sec, sample_rate_hz) VALUES (?, ?, ?, ?, ?)",
		act.ID, act.Source, start, act.DurationSec, act.SampleRateHz,
	); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO samples
		(activity_id, t, heart_rate, cadence, power, speed, elevation, temperature, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range act.Samples {
		if _, err := stmt.Exec(
			act.ID, s.T, s.HeartRate, s.Cadence, s.Power, s.Speed,
			s.Elevation, s.Temperature, s.Latitude, s.Longitude,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetActivity loads one activity with its samples, or nil if absent.
func (db *DB) GetActivity(id string) (*telemetry.Activity, error) {
	row := db.conn.QueryRow(
		"SELECT id, source, start_time, duration_sec, sample_rate_hz FROM activities WHERE id = ?", id,
	)

	var act telemetry.Activity
	var start string
	err := row.Scan(&act.ID, &act.Source, &start, &act.DurationSec, &act.SampleRateHz)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if start != "" {
		act.StartTime, _ = time.Parse(time.RFC3339, start)
	}

	rows, err := db.conn.Query(
		`SELECT t, heart_rate, cadence, power, speed, elevation, temperature, latitude, longitude
		 FROM samples WHERE activity_id = ? ORDER BY t, id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var s telemetry.Sample
		if err := rows.Scan(&s.T, &s.HeartRate, &s.Cadence, &s.Power, &s.Speed,
			&s.Elevation, &s.Temperature, &s.Latitude, &s.Longitude); err != nil {
			return nil, err
		}
		act.Samples = append(act.Samples, s)
	}
	return &act, rows.Err()
}

// ListActivities returns the stored activity headers with their sample
// counts, newest start first.
func (db *DB) ListActivities() ([]ActivityRow, error) {
	rows, err := db.conn.Query(
		`SELECT a.id, a.source, a.start_time, a.duration_sec, a.sample_rate_hz, COUNT(s.id)
		 FROM activities a LEFT JOIN samples s ON s.activity_id = a.id
		 GROUP BY a.id ORDER BY a.start_time DESC, a.id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var list []ActivityRow
	for rows.Next() {
		var r ActivityRow
		if err := rows.Scan(&r.ID, &r.Source, &r.StartTime, &r.DurationSec, &r.SampleRateHz, &r.SampleCount); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// ListActivityIDs returns every stored activity id.
func (db *DB) ListActivityIDs() ([]string, error) {
	rows, err := db.conn.Query("SELECT id FROM activities ORDER BY start_time, id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteActivity removes an activity; samples and results cascade.
func (db *DB) DeleteActivity(id string) error {
	_, err := db.conn.Exec("DELETE FROM activities WHERE id = ?", id)
	return err
}
