package analytics

import (
	"testing"
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

func upload(user string, t time.Time) telemetry.Event {
	return telemetry.Event{Type: telemetry.EventUpload, UserID: user, ActivityID: "a", CreatedAt: t}
}

func TestMondayOf(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC), "2026-03-02"}, // a Monday
		{time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), "2026-03-02"},  // Wednesday
		{time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC), "2026-03-02"}, // Sunday
		{time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), "2026-03-09"},  // next Monday
	}
	for _, c := range cases {
		if got := mondayOf(c.in).Format("2006-01-02"); got != c.want {
			t.Errorf("mondayOf(%v) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestBuildCohorts_MilestoneRetention(t *testing.T) {
	signup := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC) // Tuesday
	users := []telemetry.User{
		{ID: "same-day", SignupAt: signup},
		{ID: "day-two", SignupAt: signup},
		{ID: "week-later", SignupAt: signup},
		{ID: "never", SignupAt: signup},
	}
	events := []telemetry.Event{
		upload("same-day", signup.Add(2*time.Hour)),
		upload("day-two", signup.Add(30*time.Hour)),
		upload("week-later", signup.AddDate(0, 0, 6)),
		// A later upload by same-day must not change their minimum.
		upload("same-day", signup.AddDate(0, 0, 20)),
	}

	summary := buildCohorts(users, events)
	if len(summary.Weeks) != 1 {
		t.Fatalf("got %d cohort weeks, want 1", len(summary.Weeks))
	}
	week := summary.Weeks[0]
	if week.WeekStart != "2026-03-02" {
		t.Errorf("week_start = %s, want the Monday of signup week", week.WeekStart)
	}
	if week.Users != 4 {
		t.Errorf("users = %d, want 4", week.Users)
	}
	if week.D0Pct != 25 {
		t.Errorf("d0 = %v, want 25 (only the same-day uploader)", week.D0Pct)
	}
	if week.D1Pct != 50 {
		t.Errorf("d1 = %v, want 50", week.D1Pct)
	}
	if week.D7Pct != 75 {
		t.Errorf("d7 = %v, want 75", week.D7Pct)
	}
	if week.D30Pct != 75 {
		t.Errorf("d30 = %v, want 75 (one user never uploads)", week.D30Pct)
	}
}

func TestBuildCohorts_RetentionMonotone(t *testing.T) {
	// Randomish spread of signups and uploads across several weeks; the
	// milestone columns must never decrease left to right.
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	var users []telemetry.User
	var events []telemetry.Event
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for i, id := range ids {
		signup := base.AddDate(0, 0, i*3)
		users = append(users, telemetry.User{ID: id, SignupAt: signup})
		if i%3 != 0 {
			events = append(events, upload(id, signup.AddDate(0, 0, i)))
		}
	}

	summary := buildCohorts(users, events)
	for _, w := range summary.Weeks {
		if w.D1Pct < w.D0Pct || w.D7Pct < w.D1Pct || w.D30Pct < w.D7Pct {
			t.Errorf("cohort %s retention not monotone: %v %v %v %v",
				w.WeekStart, w.D0Pct, w.D1Pct, w.D7Pct, w.D30Pct)
		}
	}
}

func TestBuildCohorts_SortedByWeek(t *testing.T) {
	users := []telemetry.User{
		{ID: "late", SignupAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "early", SignupAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	summary := buildCohorts(users, nil)
	if len(summary.Weeks) != 2 {
		t.Fatalf("got %d weeks, want 2", len(summary.Weeks))
	}
	if summary.Weeks[0].WeekStart >= summary.Weeks[1].WeekStart {
		t.Errorf("weeks not ascending: %s, %s", summary.Weeks[0].WeekStart, summary.Weeks[1].WeekStart)
	}
}

func TestBuildCohorts_UploadBeforeSignupIgnored(t *testing.T) {
	signup := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	users := []telemetry.User{{ID: "u1", SignupAt: signup}}
	events := []telemetry.Event{upload("u1", signup.Add(-48*time.Hour))}

	summary := buildCohorts(users, events)
	if got := summary.Weeks[0].D30Pct; got != 0 {
		t.Errorf("d30 = %v, want 0 when the only upload predates signup", got)
	}
}
