// Package config provides configuration loading and defaults for ridewatch.
package config

// DefaultDataDir is the default location for imported ride and event files.
var DefaultDataDir = "~/rides"

// DefaultConfigDir is the default location for ridewatch configuration.
const DefaultConfigDir = "~/.config/ridewatch"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "ridewatch.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultPower holds the default stabilized-power tunables.
var DefaultPower = Power{
	WindowSeconds:          30,
	CoastingThresholdWatts: 5,
}

// DefaultHRCadence holds the default HR/cadence regression tunables.
var DefaultHRCadence = HRCadence{
	BucketWidthRPM:       10,
	MinBucketCoverageSec: 60,
	MinCadenceRPM:        20,
}

// DefaultIntervals holds the default interval-detection tunables.
var DefaultIntervals = Intervals{
	SmoothWindowSeconds: 30,
	WorkRatio:           1.2,
	RecoveryRatio:       0.9,
	MinBlockSeconds:     30,
}

// DefaultAnalytics holds the default aggregation tunables.
var DefaultAnalytics = Analytics{
	SessionGapMinutes: 30,
	ScanDays:          90,
	ShortWindowDays:   7,
	LongWindowDays:    30,
	SegmenterRounds:   6,
	OverviewTTLSec:    60,
}

// DefaultAlerts holds the default alert thresholds.
var DefaultAlerts = Alerts{
	P95LatencyMs:   5000,
	FailureRatePct: 8,
	RecentMinutes:  10,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
