package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ridgeline-systems/ridewatch/internal/config"
	"github.com/ridgeline-systems/ridewatch/internal/metric"
	"github.com/ridgeline-systems/ridewatch/internal/output"
	"github.com/ridgeline-systems/ridewatch/internal/store"
)

var computeForce bool

var computeCmd = &cobra.Command{
	Use:   "compute [activity-id...]",
	Short: "Run metric modules over stored activities",
	Long: `Compute every registered metric for the named activities, or for all
stored activities when none are given. Results whose stored version matches
the current module version are reused unless --force is set; recomputation
replaces the stored result entirely.`,
	RunE: runCompute,
}

func init() {
	computeCmd.Flags().BoolVar(&computeForce, "force", false, "Recompute even when a current result exists")
	rootCmd.AddCommand(computeCmd)
}

func runCompute(cmd *cobra.Command, args []string) error {
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

	ids := args
	if len(ids) == 0 {
		ids, err = db.ListActivityIDs()
		if err != nil {
			return fmt.Errorf("listing activities: %w", err)
		}
	}
	if len(ids) == 0 {
		fmt.Println("No activities stored. Run 'ridewatch import' first.")
		return nil
	}

	engine := metric.NewEngine(metric.NewRegistry(
		cfg.PowerConfig(), cfg.HRCadenceConfig(), cfg.IntervalsConfig(),
	))
	defs := make(map[string]metric.Definition)
	for _, d := range engine.Definitions() {
		defs[d.Key] = d
	}

	type activityResults struct {
		ActivityID string          `json:"activity_id"`
		Results    []metric.Result `json:"results"`
	}
	var all []activityResults

	computed, reused := 0, 0
	for _, id := range ids {
		act, err := db.GetActivity(id)
		if err != nil {
			return fmt.Errorf("loading activity %s: %w", id, err)
		}
		if act == nil {
			return fmt.Errorf("activity %s not found", id)
		}

		// Skip activities whose stored results are all current.
		if !computeForce {
			current := true
			for _, d := range defs {
				row, err := db.GetCurrentResult(id, d)
				if err != nil {
					return fmt.Errorf("checking result %s/%s: %w", id, d.Key, err)
				}
				if row == nil {
					current = false
					break
				}
			}
			if current {
				reused++
				continue
			}
		}

		results, err := engine.Compute(context.Background(), act)
		if err != nil {
			return fmt.Errorf("computing %s: %w", id, err)
		}
		for _, res := range results {
			if err := db.UpsertMetricResult(id, defs[res.Key], res); err != nil {
				return fmt.Errorf("storing result %s/%s: %w", id, res.Key, err)
			}
		}
		computed++
		all = append(all, activityResults{ActivityID: id, Results: results})
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	}

	fmt.Println(output.Section("Compute"))
	fmt.Println()
	fmt.Printf(" %d activities computed, %d already current\n", computed, reused)
	for _, ar := range all {
		fmt.Printf("\n %s\n", output.StyleBold.Render(ar.ActivityID))
		for _, res := range ar.Results {
			fmt.Printf("   %s\n", renderSummaryLine(res))
		}
	}
	return nil
}

// renderSummaryLine formats one result as "key: field=value ...", skipping
// null fields.
func renderSummaryLine(res metric.Result) string {
	line := output.StyleMuted.Render(res.Key+":") + " "
	first := true
	for _, field := range summaryFieldOrder(res) {
		v := res.Summary[field]
		if v == nil {
			continue
		}
		if !first {
			line += "  "
		}
		line += fmt.Sprintf("%s=%.1f", field, *v)
		first = false
	}
	if first {
		line += output.StyleMuted.Render("no data")
	}
	return line
}

// summaryFieldOrder returns the summary field names sorted for stable
// rendering.
func summaryFieldOrder(res metric.Result) []string {
	fields := make([]string, 0, len(res.Summary))
	for f := range res.Summary {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
