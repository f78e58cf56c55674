package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// mondayOf returns midnight UTC of the Monday in t's week.
func mondayOf(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// buildCohorts assigns each user to the Monday-aligned week of their signup
// and, per cohort, counts users whose minimum days-to-first-upload is within
// each milestone. Retention is monotone non-decreasing across the milestone
// columns because the same minimum is compared against growing thresholds.
func buildCohorts(users []telemetry.User, events []telemetry.Event) CohortsSummary {
	// Minimum elapsed days from signup to any qualifying activity, per user.
	firstUpload := make(map[string]time.Time)
	for _, e := range events {
		if e.Type != telemetry.EventUpload || e.UserID == "" {
			continue
		}
		if prev, ok := firstUpload[e.UserID]; !ok || e.CreatedAt.Before(prev) {
			firstUpload[e.UserID] = e.CreatedAt
		}
	}

	type cohort struct {
		users    int
		retained map[int]int
	}
	milestones := []int{0, 1, 7, 30}
	cohorts := make(map[time.Time]*cohort)

	for _, u := range users {
		if u.ID == "" || u.SignupAt.IsZero() {
			continue
		}
		week := mondayOf(u.SignupAt)
		c := cohorts[week]
		if c == nil {
			c = &cohort{retained: make(map[int]int)}
			cohorts[week] = c
		}
		c.users++

		t, ok := firstUpload[u.ID]
		if !ok || t.Before(u.SignupAt) {
			continue
		}
		minDays := int(math.Floor(t.Sub(u.SignupAt).Hours() / 24))
		for _, m := range milestones {
			if minDays <= m {
				c.retained[m]++
			}
		}
	}

	weeks := make([]time.Time, 0, len(cohorts))
	for w := range cohorts {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	out := CohortsSummary{Weeks: make([]CohortWeek, 0, len(weeks))}
	for _, w := range weeks {
		c := cohorts[w]
		pct := func(m int) float64 {
			if c.users == 0 {
				return 0
			}
			return round1(float64(c.retained[m]) / float64(c.users) * 100)
		}
		out.Weeks = append(out.Weeks, CohortWeek{
			WeekStart: w.Format("2006-01-02"),
			Users:     c.users,
			D0Pct:     pct(0),
			D1Pct:     pct(1),
			D7Pct:     pct(7),
			D30Pct:    pct(30),
		})
	}
	return out
}

// round1 rounds to one decimal for presentation.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
