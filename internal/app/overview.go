package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridgeline-systems/ridewatch/internal/analytics"
	"github.com/ridgeline-systems/ridewatch/internal/cache"
	"github.com/ridgeline-systems/ridewatch/internal/config"
	"github.com/ridgeline-systems/ridewatch/internal/output"
	"github.com/ridgeline-systems/ridewatch/internal/store"
)

var overviewWindowDays int

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Build the analytics overview snapshot",
	Long: `Rebuild the analytics overview from the stored event log: sessions,
cohorts, active users, usage segments, latency percentiles, funnels, and
alert banners. The snapshot is ephemeral; within the configured TTL a cached
copy is reused.`,
	RunE: runOverview,
}

// overviewCache survives across invocations within one process (the TTL
// matters mostly for library embedding and tests; the CLI rebuilds per run).
var overviewCache *cache.Cache[string, analytics.Overview]

func init() {
	overviewCmd.Flags().IntVar(&overviewWindowDays, "window", 90, "Event window in days")
	rootCmd.AddCommand(overviewCmd)
}

func runOverview(cmd *cobra.Command, args []string) error {
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

	if overviewCache == nil {
		ttl := time.Duration(cfg.Analytics.OverviewTTLSec) * time.Second
		overviewCache, err = cache.New[string, analytics.Overview](4, ttl, nil)
		if err != nil {
			return fmt.Errorf("building cache: %w", err)
		}
	}

	cacheKey := fmt.Sprintf("overview:%d", overviewWindowDays)
	o, ok := overviewCache.Get(cacheKey)
	if !ok {
		now := time.Now().UTC()
		events, err := db.GetEventsSince(now.AddDate(0, 0, -overviewWindowDays))
		if err != nil {
			return fmt.Errorf("loading events: %w", err)
		}
		users, err := db.GetUsers()
		if err != nil {
			return fmt.Errorf("loading users: %w", err)
		}

		agg := analytics.NewAggregator(cfg.AnalyticsConfig())
		o = agg.BuildOverview(context.Background(), analytics.Input{
			Events: events,
			Users:  users,
			Now:    now,
		})
		overviewCache.Set(cacheKey, o)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(o)
	}

	renderOverview(&o)
	return nil
}

func renderOverview(o *analytics.Overview) {
	fmt.Println(output.Section("Analytics Overview"))
	fmt.Printf("\n generated %s\n", output.StyleMuted.Render(o.GeneratedAt.Format("2006-01-02 15:04:05")))

	for _, a := range o.Alerts {
		fmt.Printf(" %s\n", output.AlertBanner(a.Level, a.Title, a.Message))
	}

	fmt.Println(output.Section("Acquisition"))
	fmt.Printf(" %s%d\n", output.StyleLabel.Render("New users"), o.Acquisition.NewUsers)
	fmt.Printf(" %s%d (%.1f%%)\n", output.StyleLabel.Render("Activated"), o.Acquisition.ActivatedUsers, o.Acquisition.ActivationRatePct)
	fmt.Printf(" %s%s\n", output.StyleLabel.Render("Median days to first ride"), output.Scalar(o.Acquisition.MedianDaysToFirstRide))

	fmt.Println(output.Section("Engagement"))
	fmt.Printf(" %s%d\n", output.StyleLabel.Render("Sessions"), o.Engagement.Sessions)
	fmt.Printf(" %s%.1f / %.1f\n", output.StyleLabel.Render("Avg / median minutes"), o.Engagement.AvgSessionMinutes, o.Engagement.MedianSessionMinutes)
	fmt.Printf(" %s%d / %d / %d\n", output.StyleLabel.Render("DAU / WAU / MAU"), o.Engagement.DAU, o.Engagement.WAU, o.Engagement.MAU)
	fmt.Printf(" %s%.3f\n", output.StyleLabel.Render("Stickiness"), o.Engagement.Stickiness)

	fmt.Println(output.Section("Usage"))
	fmt.Printf(" %s%d\n", output.StyleLabel.Render("Total events"), o.Usage.TotalEvents)
	fmt.Printf(" %s%d up / %d view / %d recompute / %d export\n", output.StyleLabel.Render("By type"),
		o.Usage.Uploads, o.Usage.Views, o.Usage.Recomputes, o.Usage.Exports)
	for _, s := range o.Usage.Segments {
		fmt.Printf(" %s%d users (%.1f uploads, %.1f views)\n",
			output.StyleLabel.Render("Segment "+s.Label), s.Users, s.AvgUploads, s.AvgViews)
	}

	fmt.Println(output.Section("Performance"))
	fmt.Printf(" %s%d\n", output.StyleLabel.Render("Tracked events"), o.Performance.TrackedEvents)
	fmt.Printf(" %sp50 %.0f  p90 %.0f  p95 %.0f  p99 %.0f ms\n", output.StyleLabel.Render("Latency"),
		o.Performance.P50Ms, o.Performance.P90Ms, o.Performance.P95Ms, o.Performance.P99Ms)

	fmt.Println(output.Section("Quality & Reliability"))
	fmt.Printf(" %s%.1f%%\n", output.StyleLabel.Render("Upload success"), o.Quality.UploadSuccessRatePct)
	fmt.Printf(" %s%.1f%% (%d of %d)\n", output.StyleLabel.Render("Failure rate"),
		o.Reliability.FailureRatePct, o.Reliability.Failures, o.Reliability.TrackedEvents)

	fmt.Println(output.Section("Conversion"))
	fmt.Printf(" %s%d -> %d -> %d\n", output.StyleLabel.Render("Upload/view/export"),
		o.Conversion.Uploaders, o.Conversion.Viewers, o.Conversion.Exporters)
	fmt.Printf(" %s%.1f%% / %.1f%%\n", output.StyleLabel.Render("Step rates"),
		o.Conversion.UploadToViewPct, o.Conversion.ViewToExportPct)

	if len(o.Cohorts.Weeks) > 0 {
		fmt.Println(output.Section("Cohorts"))
		tbl := output.NewTable("Week", "Users", "D0", "D1", "D7", "D30")
		for _, w := range o.Cohorts.Weeks {
			tbl.AddRow(w.WeekStart, fmt.Sprintf("%d", w.Users),
				fmt.Sprintf("%.0f%%", w.D0Pct), fmt.Sprintf("%.0f%%", w.D1Pct),
				fmt.Sprintf("%.0f%%", w.D7Pct), fmt.Sprintf("%.0f%%", w.D30Pct))
		}
		fmt.Println()
		tbl.Print()
	}
}
