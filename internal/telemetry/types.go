// Package telemetry defines the normalized telemetry inputs the core
// computes over: per-activity sample sequences produced by an external
// importer, and the product event log consumed by the analytics aggregator.
package telemetry

import "time"

// Sample is one telemetry instant within an activity. T is seconds from
// activity start and is monotone non-decreasing; every channel is optional
// because sensors drop in and out mid-ride.
type Sample struct {
	T           float64  `json:"t"`
	HeartRate   *float64 `json:"heart_rate,omitempty"`
	Cadence     *float64 `json:"cadence,omitempty"`
	Power       *float64 `json:"power,omitempty"`
	Speed       *float64 `json:"speed,omitempty"`
	Elevation   *float64 `json:"elevation,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// Activity is one uploaded ride. It is immutable once created; samples are
// owned exclusively by their activity and never mutated after ingestion.
// SampleRateHz may be nil, in which case time-based windows assume 1 Hz.
type Activity struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	StartTime    time.Time `json:"start_time"`
	DurationSec  float64   `json:"duration_sec"`
	SampleRateHz *float64  `json:"sample_rate_hz,omitempty"`
	Samples      []Sample  `json:"samples"`
}

// Event types recorded by the product's telemetry store.
const (
	EventUpload       = "upload"
	EventRecompute    = "recompute"
	EventView         = "view"
	EventExport       = "export"
	EventFeatureClick = "feature_click"
)

// Event is one read-only record from the product event log. The aggregator
// never mutates events; malformed entries are skipped at load time.
type Event struct {
	Type       string            `json:"type"`
	UserID     string            `json:"user_id,omitempty"`
	ActivityID string            `json:"activity_id,omitempty"`
	DurationMs *float64          `json:"duration_ms,omitempty"`
	Success    *bool             `json:"success,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// User is an account record, used only for cohort assignment.
type User struct {
	ID       string    `json:"id"`
	SignupAt time.Time `json:"signup_at"`
}

// Rate returns the activity's sample rate with the 1 Hz default applied.
func (a *Activity) Rate() float64 {
	if a.SampleRateHz == nil || *a.SampleRateHz <= 0 {
		return 1
	}
	return *a.SampleRateHz
}
