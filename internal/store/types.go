// Package store provides SQLite persistence for activities, telemetry
// events, metric results, and tracking snapshots.
package store

import "time"

// ActivityRow is the stored header of one activity, without its samples.
type ActivityRow struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	StartTime    string   `json:"start_time,omitempty"`
	DurationSec  float64  `json:"duration_sec"`
	SampleRateHz *float64 `json:"sample_rate_hz,omitempty"`
	SampleCount  int      `json:"sample_count"`
}

// MetricResultRow is one stored metric result. At most one row exists per
// (activity, metric key); recomputation replaces it entirely.
type MetricResultRow struct {
	ActivityID string    `json:"activity_id"`
	MetricKey  string    `json:"metric_key"`
	Version    string    `json:"version"`
	Summary    string    `json:"summary"`
	Series     string    `json:"series,omitempty"`
	ComputedAt time.Time `json:"computed_at"`
}

// Snapshot represents a point-in-time capture of the headline aggregates.
type Snapshot struct {
	ID      int64     `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	Command string    `json:"command"`
	Version string    `json:"version"`
}

// AggregateMetric represents a named metric value within a snapshot.
type AggregateMetric struct {
	ID          int64   `json:"id"`
	SnapshotID  int64   `json:"snapshot_id"`
	MetricName  string  `json:"metric_name"`
	MetricValue float64 `json:"metric_value"`
	Detail      string  `json:"detail,omitempty"`
}

// SnapshotDiff represents the comparison between two snapshots.
type SnapshotDiff struct {
	Previous *Snapshot     `json:"previous"`
	Current  *Snapshot     `json:"current"`
	Deltas   []MetricDelta `json:"deltas"`
}

// MetricDelta represents the change in a single metric between snapshots.
type MetricDelta struct {
	Name      string  `json:"name"`
	Previous  float64 `json:"previous"`
	Current   float64 `json:"current"`
	Delta     float64 `json:"delta"`
	Direction string  `json:"direction"` // "up", "down", "unchanged"
}
