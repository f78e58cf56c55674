// Package analytics builds the operational overview snapshot from the raw
// telemetry event log: sessions, cohorts, active-user windows, usage
// segments, latency percentiles, and funnel statistics. Everything here is
// read-only over its inputs and rebuilt from scratch on every invocation.
package analytics

import (
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// Input is one read-only batch of records, already filtered to the caller's
// time window. Now anchors the sliding windows and recency checks so builds
// are reproducible in tests.
type Input struct {
	Events []telemetry.Event
	Users  []telemetry.User
	Now    time.Time
}

// Config holds the aggregation tunables.
type Config struct {
	// SessionGapMinutes splits a user's event run into separate sessions.
	SessionGapMinutes float64
	// ScanDays is the range the active-user tracker walks day by day.
	ScanDays int
	// ShortWindowDays and LongWindowDays size the WAU and MAU windows.
	ShortWindowDays int
	LongWindowDays  int
	// SegmenterRounds bounds the clustering iteration count.
	SegmenterRounds int
	// AlertP95LatencyMs fires the latency alert when the recent p95 exceeds it.
	AlertP95LatencyMs float64
	// AlertFailureRatePct fires the reliability alert above this failure rate.
	AlertFailureRatePct float64
	// AlertRecentMinutes is the lookback for the "recent" latency percentile.
	AlertRecentMinutes float64
}

// DefaultConfig returns the standard aggregation tunables.
func DefaultConfig() Config {
	return Config{
		SessionGapMinutes:   30,
		ScanDays:            90,
		ShortWindowDays:     7,
		LongWindowDays:      30,
		SegmenterRounds:     6,
		AlertP95LatencyMs:   5000,
		AlertFailureRatePct: 8,
		AlertRecentMinutes:  10,
	}
}

// Overview is the ephemeral snapshot handed to the dashboard. The top-level
// key set is a frozen external contract; renaming or dropping a key breaks
// consumers.
type Overview struct {
	Acquisition AcquisitionSummary `json:"acquisition"`
	Engagement  EngagementSummary  `json:"engagement"`
	Usage       UsageSummary       `json:"usage"`
	Quality     QualitySummary     `json:"quality"`
	Performance PerformanceSummary `json:"performance"`
	Cohorts     CohortsSummary     `json:"cohorts"`
	Conversion  ConversionSummary  `json:"conversion"`
	Reliability ReliabilitySummary `json:"reliability"`
	Safety      SafetySummary      `json:"safety"`
	UX          UXSummary          `json:"ux"`
	Alerts      []Alert            `json:"alerts"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// AcquisitionSummary covers signups and how fast they reach a first upload.
type AcquisitionSummary struct {
	NewUsers              int      `json:"new_users"`
	ActivatedUsers        int      `json:"activated_users"`
	ActivationRatePct     float64  `json:"activation_rate_pct"`
	MedianDaysToFirstRide *float64 `json:"median_days_to_first_ride"`
}

// EngagementSummary covers reconstructed sessions and the active-user
// windows for the most recent scanned day.
type EngagementSummary struct {
	Sessions             int     `json:"sessions"`
	AvgSessionMinutes    float64 `json:"avg_session_minutes"`
	MedianSessionMinutes float64 `json:"median_session_minutes"`
	DAU                  int     `json:"dau"`
	WAU                  int     `json:"wau"`
	MAU                  int     `json:"mau"`
	Stickiness           float64 `json:"stickiness"`
}

// UsageSummary counts events by type and carries the behavioural segments.
type UsageSummary struct {
	TotalEvents int       `json:"total_events"`
	Uploads     int       `json:"uploads"`
	Views       int       `json:"views"`
	Recomputes  int       `json:"recomputes"`
	Exports     int       `json:"exports"`
	Segments    []Segment `json:"segments"`
}

// QualitySummary covers upload and recompute outcomes.
type QualitySummary struct {
	UploadSuccessRatePct    float64 `json:"upload_success_rate_pct"`
	RecomputeSuccessRatePct float64 `json:"recompute_success_rate_pct"`
	FailedUploads           int     `json:"failed_uploads"`
	FailedRecomputes        int     `json:"failed_recomputes"`
}

// PerformanceSummary holds latency percentiles over events reporting a
// duration. RecentP95Ms covers only the alert lookback window.
type PerformanceSummary struct {
	TrackedEvents int     `json:"tracked_events"`
	AvgMs         float64 `json:"avg_ms"`
	P50Ms         float64 `json:"p50_ms"`
	P90Ms         float64 `json:"p90_ms"`
	P95Ms         float64 `json:"p95_ms"`
	P99Ms         float64 `json:"p99_ms"`
	RecentP95Ms   float64 `json:"recent_p95_ms"`
}

// CohortsSummary lists weekly signup cohorts with milestone retention.
type CohortsSummary struct {
	Weeks []CohortWeek `json:"weeks"`
}

// CohortWeek is one Monday-aligned signup cohort. Retention percentages are
// monotone non-decreasing across the milestone columns.
type CohortWeek struct {
	WeekStart string  `json:"week_start"`
	Users     int     `json:"users"`
	D0Pct     float64 `json:"d0_pct"`
	D1Pct     float64 `json:"d1_pct"`
	D7Pct     float64 `json:"d7_pct"`
	D30Pct    float64 `json:"d30_pct"`
}

// ConversionSummary is the upload -> view -> export funnel over distinct
// users.
type ConversionSummary struct {
	Uploaders       int     `json:"uploaders"`
	Viewers         int     `json:"viewers"`
	Exporters       int     `json:"exporters"`
	UploadToViewPct float64 `json:"upload_to_view_pct"`
	ViewToExportPct float64 `json:"view_to_export_pct"`
}

// ReliabilitySummary covers outcome-reporting events across all types.
type ReliabilitySummary struct {
	TrackedEvents  int     `json:"tracked_events"`
	Failures       int     `json:"failures"`
	FailureRatePct float64 `json:"failure_rate_pct"`
}

// SafetySummary reports attribution hygiene of the incoming event stream:
// records the aggregator had to count without a user or activity link.
type SafetySummary struct {
	EventsMissingUser     int     `json:"events_missing_user"`
	EventsMissingActivity int     `json:"events_missing_activity"`
	UnattributedPct       float64 `json:"unattributed_pct"`
}

// UXSummary covers feature-click telemetry.
type UXSummary struct {
	FeatureClicks int            `json:"feature_clicks"`
	UniqueUsers   int            `json:"unique_users"`
	TopFeatures   []FeatureCount `json:"top_features"`
}

// FeatureCount is one feature's click total.
type FeatureCount struct {
	Feature string `json:"feature"`
	Clicks  int    `json:"clicks"`
}
