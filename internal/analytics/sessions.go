package analytics

import (
	"sort"
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// Session is one reconstructed behavioural session: a run of a user's events
// with no internal gap above the split threshold.
type Session struct {
	UserID string
	Start  time.Time
	End    time.Time
	Events int
}

// Duration reports the session length with the one-minute floor applied, so
// a single-event session still counts as real usage.
func (s Session) Duration() time.Duration {
	span := s.End.Sub(s.Start)
	if span < time.Minute {
		return time.Minute
	}
	return span
}

// ReconstructSessions groups events by user, sorts each user's timestamps
// ascending, and starts a new session whenever the gap to the previous event
// exceeds the threshold. Events without a user id are ignored; the flat
// stream carries no session markers, so the gap rule is the only boundary.
func ReconstructSessions(events []telemetry.Event, gap time.Duration) []Session {
	byUser := make(map[string][]time.Time)
	for _, e := range events {
		if e.UserID == "" {
			continue
		}
		byUser[e.UserID] = append(byUser[e.UserID], e.CreatedAt)
	}

	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)

	var sessions []Session
	for _, u := range users {
		times := byUser[u]
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

		current := Session{UserID: u, Start: times[0], End: times[0], Events: 1}
		for _, t := range times[1:] {
			if t.Sub(current.End) > gap {
				sessions = append(sessions, current)
				current = Session{UserID: u, Start: t, End: t, Events: 1}
				continue
			}
			current.End = t
			current.Events++
		}
		sessions = append(sessions, current)
	}
	return sessions
}
