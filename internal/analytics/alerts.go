package analytics

import (
	"fmt"
	"time"
)

// Alert levels.
const (
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

// Alert is one threshold banner for the dashboard header.
type Alert struct {
	Level   string    `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// evalAlerts derives threshold banners from the already-computed sections.
// There is no alerting state machine: the banners exist only inside the
// snapshot they were computed for.
func evalAlerts(o *Overview, cfg Config, now time.Time) []Alert {
	var alerts []Alert

	if o.Performance.RecentP95Ms > cfg.AlertP95LatencyMs {
		alerts = append(alerts, Alert{
			Level: LevelWarning,
			Title: "Slow processing",
			Message: fmt.Sprintf("p95 latency %.0fms over the last %.0f minutes (threshold %.0fms)",
				o.Performance.RecentP95Ms, cfg.AlertRecentMinutes, cfg.AlertP95LatencyMs),
			Time: now,
		})
	}

	if o.Reliability.TrackedEvents > 0 && o.Reliability.FailureRatePct > cfg.AlertFailureRatePct {
		alerts = append(alerts, Alert{
			Level: LevelCritical,
			Title: "Elevated failure rate",
			Message: fmt.Sprintf("%.1f%% of tracked operations failed (threshold %.1f%%)",
				o.Reliability.FailureRatePct, cfg.AlertFailureRatePct),
			Time: now,
		})
	}

	return alerts
}
