package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadActivity reads one normalized ride file (JSON) produced by the
// external importer.
func LoadActivity(path string) (*Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var act Activity
	if err := json.Unmarshal(data, &act); err != nil {
		return nil, fmt.Errorf("parsing activity %s: %w", filepath.Base(path), err)
	}
	return &act, nil
}

// LoadActivities reads every .json ride file in a directory, skipping files
// that fail to parse.
func LoadActivities(dir string) ([]Activity, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var activities []Activity
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		act, err := LoadActivity(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		activities = append(activities, *act)
	}
	return activities, nil
}

// LoadEvents reads a JSONL event log. Malformed lines and records without a
// type or timestamp are skipped, not fatal: one bad record must not sink the
// whole aggregation.
func LoadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if ev.Type == "" || ev.CreatedAt.IsZero() {
			continue
		}
		events = append(events, ev)
	}
	return events, scanner.Err()
}

// LoadUsers reads a JSONL account log, skipping malformed lines.
func LoadUsers(path string) ([]User, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var users []User
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var u User
		if err := json.Unmarshal(line, &u); err != nil {
			continue
		}
		if u.ID == "" || u.SignupAt.IsZero() {
			continue
		}
		users = append(users, u)
	}
	return users, scanner.Err()
}
