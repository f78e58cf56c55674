package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridgeline-systems/ridewatch/internal/analytics"
	"github.com/ridgeline-systems/ridewatch/internal/config"
	"github.com/ridgeline-systems/ridewatch/internal/output"
	"github.com/ridgeline-systems/ridewatch/internal/store"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Snapshot and compare aggregates over time",
	Long: `Build the analytics overview, store its headline numbers as a new
snapshot, and compare against the previous snapshot to show deltas with
trend arrows.`,
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput()

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	events, err := db.GetEventsSince(now.AddDate(0, 0, -cfg.Analytics.ScanDays))
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}
	users, err := db.GetUsers()
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}
	activities, err := db.ListActivities()
	if err != nil {
		return fmt.Errorf("listing activities: %w", err)
	}

	agg := analytics.NewAggregator(cfg.AnalyticsConfig())
	o := agg.BuildOverview(context.Background(), analytics.Input{Events: events, Users: users, Now: now})

	snapshotID, err := db.CreateSnapshot("track", appVersion)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}

	metrics := buildAggregateMetrics(&o, len(activities))
	for name, value := range metrics {
		if err := db.InsertAggregateMetric(snapshotID, name, value, ""); err != nil {
			return fmt.Errorf("inserting metric %s: %w", name, err)
		}
	}

	diff, err := db.DiffSnapshots()
	if err != nil {
		return fmt.Errorf("comparing snapshots: %w", err)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diff)
	}

	renderTrackOutput(diff)
	return nil
}

// buildAggregateMetrics flattens the overview's headline numbers into the
// named values a snapshot stores.
func buildAggregateMetrics(o *analytics.Overview, activityCount int) map[string]float64 {
	return map[string]float64{
		"activities":        float64(activityCount),
		"new_users":         float64(o.Acquisition.NewUsers),
		"activation_rate":   o.Acquisition.ActivationRatePct,
		"sessions":          float64(o.Engagement.Sessions),
		"dau":               float64(o.Engagement.DAU),
		"wau":               float64(o.Engagement.WAU),
		"mau":               float64(o.Engagement.MAU),
		"stickiness":        o.Engagement.Stickiness,
		"uploads":           float64(o.Usage.Uploads),
		"upload_success":    o.Quality.UploadSuccessRatePct,
		"p95_latency_ms":    o.Performance.P95Ms,
		"failure_rate":      o.Reliability.FailureRatePct,
		"upload_to_view":    o.Conversion.UploadToViewPct,
		"view_to_export":    o.Conversion.ViewToExportPct,
		"unattributed_rate": o.Safety.UnattributedPct,
	}
}

// metricDirection maps metric names to whether higher values are better.
var metricDirection = map[string]bool{
	"activities":        true,
	"new_users":         true,
	"activation_rate":   true,
	"sessions":          true,
	"dau":               true,
	"wau":               true,
	"mau":               true,
	"stickiness":        true,
	"uploads":           true,
	"upload_success":    true,
	"p95_latency_ms":    false,
	"failure_rate":      false,
	"upload_to_view":    true,
	"view_to_export":    true,
	"unattributed_rate": false,
}

func renderTrackOutput(diff *store.SnapshotDiff) {
	fmt.Println(output.Section("Track: Snapshot Comparison"))
	fmt.Println()
	fmt.Printf(" Snapshot #%d taken at %s\n\n", diff.Current.ID, diff.Current.TakenAt.Format("2006-01-02 15:04:05"))

	if diff.Previous == nil {
		fmt.Println(" First snapshot recorded. Run 'ridewatch track' again later to see trends.")
		return
	}

	fmt.Printf(" Comparing against snapshot #%d (%s)\n\n",
		diff.Previous.ID, diff.Previous.TakenAt.Format("2006-01-02 15:04:05"))

	tbl := output.NewTable("Metric", "Previous", "Current", "Delta", "Trend")
	for _, d := range diff.Deltas {
		higherIsBetter, known := metricDirection[d.Name]
		if !known {
			higherIsBetter = true
		}
		tbl.AddRow(
			d.Name,
			fmt.Sprintf("%.1f", d.Previous),
			fmt.Sprintf("%.1f", d.Current),
			fmt.Sprintf("%+.1f", d.Delta),
			output.TrendArrow(d.Delta, higherIsBetter),
		)
	}
	tbl.Print()
}
