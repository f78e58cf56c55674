package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ridgeline-systems/ridewatch/internal/analytics"
	"github.com/ridgeline-systems/ridewatch/internal/metric"
)

// Config is the top-level ridewatch configuration.
type Config struct {
	DataDir   string    `mapstructure:"data_dir"`
	Power     Power     `mapstructure:"power"`
	HRCadence HRCadence `mapstructure:"hr_cadence"`
	Intervals Intervals `mapstructure:"intervals"`
	Analytics Analytics `mapstructure:"analytics"`
	Alerts    Alerts    `mapstructure:"alerts"`
	Output    Output    `mapstructure:"output"`
}

// Power defines the stabilized-power tunables.
type Power struct {
	WindowSeconds          float64 `mapstructure:"window_seconds"`
	CoastingThresholdWatts float64 `mapstructure:"coasting_threshold_watts"`
}

// HRCadence defines the HR/cadence regression tunables.
type HRCadence struct {
	BucketWidthRPM       float64 `mapstructure:"bucket_width_rpm"`
	MinBucketCoverageSec float64 `mapstructure:"min_bucket_coverage_sec"`
	MinCadenceRPM        float64 `mapstructure:"min_cadence_rpm"`
}

// Intervals defines the interval-detection tunables.
type Intervals struct {
	SmoothWindowSeconds float64 `mapstructure:"smooth_window_seconds"`
	WorkRatio           float64 `mapstructure:"work_ratio"`
	RecoveryRatio       float64 `mapstructure:"recovery_ratio"`
	MinBlockSeconds     float64 `mapstructure:"min_block_seconds"`
}

// Analytics defines the aggregation tunables.
type Analytics struct {
	SessionGapMinutes float64 `mapstructure:"session_gap_minutes"`
	ScanDays          int     `mapstructure:"scan_days"`
	ShortWindowDays   int     `mapstructure:"short_window_days"`
	LongWindowDays    int     `mapstructure:"long_window_days"`
	SegmenterRounds   int     `mapstructure:"segmenter_rounds"`
	OverviewTTLSec    int     `mapstructure:"overview_ttl_sec"`
}

// Alerts defines the alert thresholds.
type Alerts struct {
	P95LatencyMs   float64 `mapstructure:"p95_latency_ms"`
	FailureRatePct float64 `mapstructure:"failure_rate_pct"`
	RecentMinutes  float64 `mapstructure:"recent_minutes"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// PowerConfig converts to the metric package's config type.
func (c *Config) PowerConfig() metric.PowerConfig {
	return metric.PowerConfig{
		WindowSeconds:          c.Power.WindowSeconds,
		CoastingThresholdWatts: c.Power.CoastingThresholdWatts,
	}
}

// HRCadenceConfig converts to the metric package's config type.
func (c *Config) HRCadenceConfig() metric.HRCadenceConfig {
	return metric.HRCadenceConfig{
		BucketWidthRPM:       c.HRCadence.BucketWidthRPM,
		MinBucketCoverageSec: c.HRCadence.MinBucketCoverageSec,
		MinCadenceRPM:        c.HRCadence.MinCadenceRPM,
	}
}

// IntervalsConfig converts to the metric package's config type.
func (c *Config) IntervalsConfig() metric.IntervalsConfig {
	return metric.IntervalsConfig{
		SmoothWindowSeconds: c.Intervals.SmoothWindowSeconds,
		WorkRatio:           c.Intervals.WorkRatio,
		RecoveryRatio:       c.Intervals.RecoveryRatio,
		MinBlockSeconds:     c.Intervals.MinBlockSeconds,
	}
}

// AnalyticsConfig converts to the analytics package's config type.
func (c *Config) AnalyticsConfig() analytics.Config {
	return analytics.Config{
		SessionGapMinutes:   c.Analytics.SessionGapMinutes,
		ScanDays:            c.Analytics.ScanDays,
		ShortWindowDays:     c.Analytics.ShortWindowDays,
		LongWindowDays:      c.Analytics.LongWindowDays,
		SegmenterRounds:     c.Analytics.SegmenterRounds,
		AlertP95LatencyMs:   c.Alerts.P95LatencyMs,
		AlertFailureRatePct: c.Alerts.FailureRatePct,
		AlertRecentMinutes:  c.Alerts.RecentMinutes,
	}
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("power.window_seconds", DefaultPower.WindowSeconds)
	v.SetDefault("power.coasting_threshold_watts", DefaultPower.CoastingThresholdWatts)
	v.SetDefault("hr_cadence.bucket_width_rpm", DefaultHRCadence.BucketWidthRPM)
	v.SetDefault("hr_cadence.min_bucket_coverage_sec", DefaultHRCadence.MinBucketCoverageSec)
	v.SetDefault("hr_cadence.min_cadence_rpm", DefaultHRCadence.MinCadenceRPM)
	v.SetDefault("intervals.smooth_window_seconds", DefaultIntervals.SmoothWindowSeconds)
	v.SetDefault("intervals.work_ratio", DefaultIntervals.WorkRatio)
	v.SetDefault("intervals.recovery_ratio", DefaultIntervals.RecoveryRatio)
	v.SetDefault("intervals.min_block_seconds", DefaultIntervals.MinBlockSeconds)
	v.SetDefault("analytics.session_gap_minutes", DefaultAnalytics.SessionGapMinutes)
	v.SetDefault("analytics.scan_days", DefaultAnalytics.ScanDays)
	v.SetDefault("analytics.short_window_days", DefaultAnalytics.ShortWindowDays)
	v.SetDefault("analytics.long_window_days", DefaultAnalytics.LongWindowDays)
	v.SetDefault("analytics.segmenter_rounds", DefaultAnalytics.SegmenterRounds)
	v.SetDefault("analytics.overview_ttl_sec", DefaultAnalytics.OverviewTTLSec)
	v.SetDefault("alerts.p95_latency_ms", DefaultAlerts.P95LatencyMs)
	v.SetDefault("alerts.failure_rate_pct", DefaultAlerts.FailureRatePct)
	v.SetDefault("alerts.recent_minutes", DefaultAlerts.RecentMinutes)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error for problems other than file not found.
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Expand paths.
	cfg.DataDir = expandPath(cfg.DataDir)

	return &cfg, nil
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
