// Package app contains the Cobra command tree for ridewatch.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridgeline-systems/ridewatch/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "ridewatch",
	Short: "Training metrics and product analytics for cycling telemetry",
	Long: `ridewatch computes training metrics from normalized ride recordings and
builds product analytics from the telemetry event log. It stores activities
and events locally in SQLite, recomputes metric results on demand, and
renders the same analytics overview the dashboard serves.

Run 'ridewatch' with no arguments to see the available subcommands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("ridewatch", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  import      Load ride files and event logs into the local store")
		fmt.Println("  compute     Run metric modules over stored activities")
		fmt.Println("  activities  List stored activities with headline metrics")
		fmt.Println("  overview    Build the analytics overview snapshot")
		fmt.Println("  track       Snapshot and compare aggregates over time")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setupOutput applies the color flags, falling back to TTY detection.
func setupOutput() {
	if flagNoColor {
		output.SetNoColor(true)
		return
	}
	output.AutoColor()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/ridewatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
