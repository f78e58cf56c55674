package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/metric"
)

// UpsertMetricResult stores one module's result for an activity, replacing
// any previous row for the same (activity, metric key). The write is
// last-writer-wins by the UNIQUE constraint; nothing is merged.
func (db *DB) UpsertMetricResult(activityID string, def metric.Definition, res metric.Result) error {
	summary, err := json.Marshal(res.Summary)
	if err != nil {
		return err
	}
	var series any
	if len(res.Series) > 0 {
		raw, err := json.Marshal(res.Series)
		if err != nil {
			return err
		}
		series = string(raw)
	}

	_, err = db.conn.Exec(
		`INSERT INTO metric_results (activity_id, metric_key, version, summary, series, computed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(activity_id, metric_key) DO UPDATE SET
		   version = excluded.version,
		   summary = excluded.summary,
		   series = excluded.series,
		   computed_at = excluded.computed_at`,
		activityID, def.Key, def.Version, string(summary), series,
		res.ComputedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// GetMetricResults returns every stored result row for an activity, sorted
// by metric key.
func (db *DB) GetMetricResults(activityID string) ([]MetricResultRow, error) {
	rows, err := db.conn.Query(
		`SELECT activity_id, metric_key, version, summary, series, computed_at
		 FROM metric_results WHERE activity_id = ? ORDER BY metric_key`,
		activityID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []MetricResultRow
	for rows.Next() {
		var r MetricResultRow
		var series sql.NullString
		var computed string
		if err := rows.Scan(&r.ActivityID, &r.MetricKey, &r.Version, &r.Summary, &series, &computed); err != nil {
			return nil, err
		}
		r.Series = series.String
		r.ComputedAt, _ = time.Parse(time.RFC3339Nano, computed)
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetCurrentResult returns the stored result for (activity, key) only when
// its version matches the given definition; a stale or missing row returns
// nil so the caller recomputes.
func (db *DB) GetCurrentResult(activityID string, def metric.Definition) (*MetricResultRow, error) {
	row := db.conn.QueryRow(
		`SELECT activity_id, metric_key, version, summary, series, computed_at
		 FROM metric_results WHERE activity_id = ? AND metric_key = ?`,
		activityID, def.Key,
	)

	var r MetricResultRow
	var series sql.NullString
	var computed string
	err := row.Scan(&r.ActivityID, &r.MetricKey, &r.Version, &r.Summary, &series, &computed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if r.Version != def.Version {
		return nil, nil
	}
	r.Series = series.String
	r.ComputedAt, _ = time.Parse(time.RFC3339Nano, computed)
	return &r, nil
}

// SummaryMap decodes the stored summary map.
func (r *MetricResultRow) SummaryMap() (map[string]*float64, error) {
	var m map[string]*float64
	if err := json.Unmarshal([]byte(r.Summary), &m); err != nil {
		return nil, err
	}
	return m, nil
}
