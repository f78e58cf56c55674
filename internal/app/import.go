package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ridgeline-systems/ridewatch/internal/config"
	"github.com/ridgeline-systems/ridewatch/internal/store"
	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

var (
	importRides  string
	importEvents string
	importUsers  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load ride files and event logs into the local store",
	Long: `Read normalized ride recordings (JSON, one activity per file), telemetry
event logs (JSONL), and user records (JSONL) into the local SQLite store.
Rides without an id are assigned one at import. Malformed files and records
are skipped, not fatal.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importRides, "rides", "", "Directory of ride JSON files (default: <data_dir>/activities)")
	importCmd.Flags().StringVar(&importEvents, "events", "", "Event log JSONL file (default: <data_dir>/events.jsonl)")
	importCmd.Flags().StringVar(&importUsers, "users", "", "User records JSONL file (default: <data_dir>/users.jsonl)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
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

	ridesDir := importRides
	if ridesDir == "" {
		ridesDir = filepath.Join(cfg.DataDir, "activities")
	}
	eventsPath := importEvents
	if eventsPath == "" {
		eventsPath = filepath.Join(cfg.DataDir, "events.jsonl")
	}
	usersPath := importUsers
	if usersPath == "" {
		usersPath = filepath.Join(cfg.DataDir, "users.jsonl")
	}

	activities, err := telemetry.LoadActivities(ridesDir)
	if err != nil {
		return fmt.Errorf("loading rides: %w", err)
	}

	imported, skipped := 0, 0
	for i := range activities {
		act := &activities[i]
		if act.ID == "" {
			act.ID = uuid.NewString()
		}
		if err := db.InsertActivity(act); err != nil {
			// Most likely a re-import of an existing id; keep going.
			skipped++
			if flagVerbose {
				fmt.Printf(" skipping %s: %v\n", act.ID, err)
			}
			continue
		}
		imported++
	}

	events, err := telemetry.LoadEvents(eventsPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading events: %w", err)
	}
	if len(events) > 0 {
		if err := db.InsertEvents(events); err != nil {
			return fmt.Errorf("storing events: %w", err)
		}
	}

	users, err := telemetry.LoadUsers(usersPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading users: %w", err)
	}
	if len(users) > 0 {
		if err := db.UpsertUsers(users); err != nil {
			return fmt.Errorf("storing users: %w", err)
		}
	}

	fmt.Printf("Imported %d activities (%d skipped), %d events, %d users\n",
		imported, skipped, len(events), len(users))
	return nil
}
