package store

import (
	"database/sql"
	"sort"
	"time"
)

// CreateSnapshot inserts a new snapshot and returns its ID.
func (db *DB) CreateSnapshot(command, version string) (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO snapshots (taken_at, command, version) VALUES (?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), command, version,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetLatestSnapshot returns the most recent snapshot, or nil if none exist.
func (db *DB) GetLatestSnapshot() (*Snapshot, error) {
	row := db.conn.QueryRow("SELECT id, taken_at, command, version FROM snapshots ORDER BY id DESC LIMIT 1")
	return scanSnapshot(row)
}

// GetSnapshotN returns the Nth most recent snapshot (1 = latest, 2 = previous, etc.).
func (db *DB) GetSnapshotN(n int) (*Snapshot, error) {
	row := db.conn.QueryRow(
		"SELECT id, taken_at, command, version FROM snapshots ORDER BY id DESC LIMIT 1 OFFSET ?",
		n-1,
	)
	return scanSnapshot(row)
}

func scanSnapshot(row *sql.Row) (*Snapshot, error) {
	var s Snapshot
	var takenAt string
	err := row.Scan(&s.ID, &takenAt, &s.Command, &s.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	return &s, nil
}

// InsertAggregateMetric inserts an aggregate metric for a snapshot.
func (db *DB) InsertAggregateMetric(snapshotID int64, name string, value float64, detail string) error {
	_, err := db.conn.Exec(
		"INSERT INTO aggregate_metrics (snapshot_id, metric_name, metric_value, detail) VALUES (?, ?, ?, ?)",
		snapshotID, name, value, detail,
	)
	return err
}

// GetAggregateMetrics returns all aggregate metrics for a snapshot.
func (db *DB) GetAggregateMetrics(snapshotID int64) ([]AggregateMetric, error) {
	rows, err := db.conn.Query(
		"SELECT id, snapshot_id, metric_name, metric_value, detail FROM aggregate_metrics WHERE snapshot_id = ?",
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var metrics []AggregateMetric
	for rows.Next() {
		var m AggregateMetric
		var detail sql.NullString
		if err := rows.Scan(&m.ID, &m.SnapshotID, &m.MetricName, &m.MetricValue, &detail); err != nil {
			return nil, err
		}
		m.Detail = detail.String
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// DiffSnapshots compares the two most recent snapshots metric by metric.
// With fewer than two snapshots the previous side is nil and the deltas
// cover only the current values.
func (db *DB) DiffSnapshots() (*SnapshotDiff, error) {
	current, err := db.GetLatestSnapshot()
	if err != nil || current == nil {
		return nil, err
	}
	previous, err := db.GetSnapshotN(2)
	if err != nil {
		return nil, err
	}

	currentMetrics, err := db.GetAggregateMetrics(current.ID)
	if err != nil {
		return nil, err
	}

	prevValues := make(map[string]float64)
	if previous != nil {
		prevMetrics, err := db.GetAggregateMetrics(previous.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range prevMetrics {
			prevValues[m.MetricName] = m.MetricValue
		}
	}

	diff := &SnapshotDiff{Previous: previous, Current: current}
	for _, m := range currentMetrics {
		prev := prevValues[m.MetricName]
		delta := m.MetricValue - prev
		direction := "unchanged"
		if delta > 0 {
			direction = "up"
		} else if delta < 0 {
			direction = "down"
		}
		diff.Deltas = append(diff.Deltas, MetricDelta{
			Name:      m.MetricName,
			Previous:  prev,
			Current:   m.MetricValue,
			Delta:     delta,
			Direction: direction,
		})
	}
	sort.Slice(diff.Deltas, func(i, j int) bool { return diff.Deltas[i].Name < diff.Deltas[j].Name })
	return diff, nil
}
