package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridgeline-systems/ridewatch/internal/config"
	"github.com/ridgeline-systems/ridewatch/internal/metric"
	"github.com/ridgeline-systems/ridewatch/internal/output"
	"github.com/ridgeline-systems/ridewatch/internal/store"
)

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List stored activities with headline metrics",
	RunE:  runActivities,
}

func init() {
	rootCmd.AddCommand(activitiesCmd)
}

func runActivities(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(flagConfig); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput()

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	list, err := db.ListActivities()
	if err != nil {
		return fmt.Errorf("listing activities: %w", err)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Println("No activities stored. Run 'ridewatch import' first.")
		return nil
	}

	fmt.Println(output.Section("Activities"))
	fmt.Println()

	tbl := output.NewTable("ID", "Source", "Start", "Samples", "Avg Power", "Stab. Power", "Distance km")
	for _, row := range list {
		summary := headlineSummary(db, row.ID)
		tbl.AddRow(
			row.ID,
			row.Source,
			row.StartTime,
			fmt.Sprintf("%d", row.SampleCount),
			output.Scalar(summary["average_power_w"]),
			output.Scalar(summary["stabilized_power_w"]),
			output.Scalar(summary["distance_km"]),
		)
	}
	tbl.Print()
	return nil
}

// headlineSummary merges the stored power and ride-summary fields for one
// activity. Missing or stale results just render as dashes.
func headlineSummary(db *store.DB, activityID string) map[string]*float64 {
	merged := make(map[string]*float64)
	rows, err := db.GetMetricResults(activityID)
	if err != nil {
		return merged
	}
	for _, row := range rows {
		if row.MetricKey != metric.KeyPower && row.MetricKey != metric.KeyRideSummary {
			continue
		}
		m, err := row.SummaryMap()
		if err != nil {
			continue
		}
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}
