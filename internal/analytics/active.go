package analytics

import (
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// DayActive is one day of the active-user scan.
type DayActive struct {
	Day        time.Time
	DAU        int
	WAU        int
	MAU        int
	Stickiness float64
}

// refWindow is a reference-counted multiset of user ids over a fixed number
// of trailing days. Adding a day increments its members; once the window is
// full the oldest day is popped and its members decremented, dropping any
// whose count reaches zero.
type refWindow struct {
	size   int
	days   [][]string
	counts map[string]int
}

func newRefWindow(size int) *refWindow {
	return &refWindow{size: size, counts: make(map[string]int)}
}

func (w *refWindow) push(users []string) {
	w.days = append(w.days, users)
	for _, u := range users {
		w.counts[u]++
	}
	if len(w.days) > w.size {
		oldest := w.days[0]
		w.days = w.days[1:]
		for _, u := range oldest {
			w.counts[u]--
			if w.counts[u] == 0 {
				delete(w.counts, u)
			}
		}
	}
}

func (w *refWindow) cardinality() int {
	return len(w.counts)
}

// TrackActiveUsers walks a fixed day range ending at now, maintaining the
// short (WAU) and long (MAU) windows incrementally. The incremental multisets
// make the scan O(days*window-membership) instead of re-scanning the full
// history per day.
func TrackActiveUsers(events []telemetry.Event, now time.Time, scanDays, shortDays, longDays int) []DayActive {
	if scanDays < 1 {
		scanDays = 1
	}
	start := now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, -(scanDays - 1))

	activeByDay := make(map[int]map[string]struct{})
	for _, e := range events {
		if e.UserID == "" {
			continue
		}
		day := int(e.CreatedAt.UTC().Truncate(24 * time.Hour).Sub(start).Hours() / 24)
		if day < 0 || day >= scanDays {
			continue
		}
		set := activeByDay[day]
		if set == nil {
			set = make(map[string]struct{})
			activeByDay[day] = set
		}
		set[e.UserID] = struct{}{}
	}

	short := newRefWindow(shortDays)
	long := newRefWindow(longDays)

	out := make([]DayActive, 0, scanDays)
	for d := 0; d < scanDays; d++ {
		users := make([]string, 0, len(activeByDay[d]))
		for u := range activeByDay[d] {
			users = append(users, u)
		}
		short.push(users)
		long.push(users)

		entry := DayActive{
			Day: start.AddDate(0, 0, d),
			DAU: len(users),
			WAU: short.cardinality(),
			MAU: long.cardinality(),
		}
		if entry.MAU > 0 {
			entry.Stickiness = float64(entry.DAU) / float64(entry.MAU)
		}
		out = append(out, entry)
	}
	return out
}
