package store

import (
	"testing"
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/metric"
	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

func f(v float64) *float64 { return &v }

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testActivity(id string) *telemetry.Activity {
	return &telemetry.Activity{
		ID:          id,
		Source:      "garmin",
		StartTime:   time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		DurationSec: 3,
		Samples: []telemetry.Sample{
			{T: 0, Power: f(150), HeartRate: f(130)},
			{T: 1, Power: f(160)},
			{T: 2, Cadence: f(85)},
		},
	}
}

func TestActivityRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if err := db.InsertActivity(testActivity("a1")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := db.GetActivity("a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("activity not found after insert")
	}
	if got.Source != "garmin" || len(got.Samples) != 3 {
		t.Errorf("got source=%q samples=%d, want garmin/3", got.Source, len(got.Samples))
	}
	if got.Samples[0].Power == nil || *got.Samples[0].Power != 150 {
		t.Errorf("sample 0 power = %v, want 150", got.Samples[0].Power)
	}
	if got.Samples[1].HeartRate != nil {
		t.Errorf("sample 1 heart rate = %v, want null preserved", *got.Samples[1].HeartRate)
	}
}

func TestGetActivity_Missing(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetActivity("nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %v, want nil for a missing activity", got)
	}
}

func TestInsertActivity_DuplicateIDRejected(t *testing.T) {
	db := openTestDB(t)

	if err := db.InsertActivity(testActivity("a1")); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertActivity(testActivity("a1")); err == nil {
		t.Error("expected a duplicate-id insert to fail: activities are immutable")
	}
}

func TestListActivities_SampleCounts(t *testing.T) {
	db := openTestDB(t)

	if err := db.InsertActivity(testActivity("a1")); err != nil {
		t.Fatal(err)
	}

	list, err := db.ListActivities()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].SampleCount != 3 {
		t.Errorf("got %+v, want one row with 3 samples", list)
	}
}

func TestUpsertMetricResult_LastWriterWins(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertActivity(testActivity("a1")); err != nil {
		t.Fatal(err)
	}

	def := metric.Definition{Key: metric.KeyPower, Version: "1.0.0"}
	first := metric.Result{
		Key:        metric.KeyPower,
		Summary:    map[string]*float64{"average_power_w": f(150)},
		ComputedAt: time.Now().UTC(),
	}
	if err := db.UpsertMetricResult("a1", def, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := metric.Result{
		Key:        metric.KeyPower,
		Summary:    map[string]*float64{"average_power_w": f(155)},
		ComputedAt: time.Now().UTC(),
	}
	if err := db.UpsertMetricResult("a1", def, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rows, err := db.GetMetricResults("a1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d result rows, want exactly one per (activity, key)", len(rows))
	}
	m, err := rows[0].SummaryMap()
	if err != nil {
		t.Fatal(err)
	}
	if m["average_power_w"] == nil || *m["average_power_w"] != 155 {
		t.Errorf("stored summary = %v, want the second write to have replaced the first", m)
	}
}

func TestGetCurrentResult_StaleVersionInvalidated(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertActivity(testActivity("a1")); err != nil {
		t.Fatal(err)
	}

	oldDef := metric.Definition{Key: metric.KeyPower, Version: "1.0.0"}
	res := metric.Result{
		Key:        metric.KeyPower,
		Summary:    map[string]*float64{"average_power_w": f(150)},
		ComputedAt: time.Now().UTC(),
	}
	if err := db.UpsertMetricResult("a1", oldDef, res); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetCurrentResult("a1", oldDef)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected a current result for the matching version")
	}

	newDef := metric.Definition{Key: metric.KeyPower, Version: "1.1.0"}
	got, err = db.GetCurrentResult("a1", newDef)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("expected a version bump to invalidate the stored result")
	}
}

func TestEventsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	ok := true
	events := []telemetry.Event{
		{Type: telemetry.EventUpload, UserID: "u1", ActivityID: "a1", Success: &ok, DurationMs: f(900), CreatedAt: now},
		{Type: telemetry.EventFeatureClick, UserID: "u1", Meta: map[string]string{"feature": "compare"}, CreatedAt: now.Add(time.Minute)},
		{Type: telemetry.EventView, CreatedAt: now.Add(-48 * time.Hour)},
	}
	if err := db.InsertEvents(events); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetEventsSince(now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2 inside the cutoff", len(got))
	}
	if got[0].Success == nil || !*got[0].Success {
		t.Errorf("success flag lost: %+v", got[0])
	}
	if got[1].Meta["feature"] != "compare" {
		t.Errorf("meta lost: %+v", got[1])
	}
}

func TestUsersUpsert(t *testing.T) {
	db := openTestDB(t)
	signup := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	if err := db.UpsertUsers([]telemetry.User{{ID: "u1", SignupAt: signup}}); err != nil {
		t.Fatal(err)
	}
	// Re-import with a corrected signup date.
	if err := db.UpsertUsers([]telemetry.User{{ID: "u1", SignupAt: signup.AddDate(0, 0, 1)}}); err != nil {
		t.Fatal(err)
	}

	users, err := db.GetUsers()
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1 after upsert", len(users))
	}
	if !users[0].SignupAt.Equal(signup.AddDate(0, 0, 1)) {
		t.Errorf("signup = %v, want the updated date", users[0].SignupAt)
	}
}

func TestDiffSnapshots(t *testing.T) {
	db := openTestDB(t)

	first, err := db.CreateSnapshot("track", "test")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.InsertAggregateMetric(first, "activities", 2, ""); err != nil {
		t.Fatal(err)
	}

	second, err := db.CreateSnapshot("track", "test")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.InsertAggregateMetric(second, "activities", 5, ""); err != nil {
		t.Fatal(err)
	}

	diff, err := db.DiffSnapshots()
	if err != nil {
		t.Fatal(err)
	}
	if diff.Previous == nil || diff.Previous.ID != first {
		t.Fatalf("previous snapshot wrong: %+v", diff.Previous)
	}
	if len(diff.Deltas) != 1 {
		t.Fatalf("got %d deltas, want 1", len(diff.Deltas))
	}
	d := diff.Deltas[0]
	if d.Delta != 3 || d.Direction != "up" {
		t.Errorf("delta = %+v, want +3 up", d)
	}
}

func TestDeleteActivity_Cascades(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertActivity(testActivity("a1")); err != nil {
		t.Fatal(err)
	}
	def := metric.Definition{Key: metric.KeyPower, Version: "1.0.0"}
	res := metric.Result{Key: metric.KeyPower, Summary: map[string]*float64{}, ComputedAt: time.Now()}
	if err := db.UpsertMetricResult("a1", def, res); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteActivity("a1"); err != nil {
		t.Fatal(err)
	}

	rows, err := db.GetMetricResults("a1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d result rows after delete, want cascade to remove them", len(rows))
	}
	var n int
	if err := db.Conn().QueryRow("SELECT COUNT(*) FROM samples").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("got %d samples after delete, want 0", n)
	}
}
