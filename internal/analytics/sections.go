package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/stats"
	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

func buildAcquisition(users []telemetry.User, events []telemetry.Event) AcquisitionSummary {
	firstUpload := make(map[string]time.Time)
	for _, e := range events {
		if e.Type != telemetry.EventUpload || e.UserID == "" {
			continue
		}
		if prev, ok := firstUpload[e.UserID]; !ok || e.CreatedAt.Before(prev) {
			firstUpload[e.UserID] = e.CreatedAt
		}
	}

	out := AcquisitionSummary{}
	var daysToFirst []float64
	for _, u := range users {
		if u.ID == "" {
			continue
		}
		out.NewUsers++
		t, ok := firstUpload[u.ID]
		if !ok {
			continue
		}
		out.ActivatedUsers++
		if !u.SignupAt.IsZero() && !t.Before(u.SignupAt) {
			daysToFirst = append(daysToFirst, t.Sub(u.SignupAt).Hours()/24)
		}
	}

	if out.NewUsers > 0 {
		out.ActivationRatePct = round1(float64(out.ActivatedUsers) / float64(out.NewUsers) * 100)
	}
	if len(daysToFirst) > 0 {
		v := round1(stats.Median(daysToFirst))
		out.MedianDaysToFirstRide = &v
	}
	return out
}

func buildEngagement(events []telemetry.Event, cfg Config, now time.Time) EngagementSummary {
	gap := time.Duration(cfg.SessionGapMinutes * float64(time.Minute))
	sessions := ReconstructSessions(events, gap)

	out := EngagementSummary{Sessions: len(sessions)}
	if len(sessions) > 0 {
		minutes := make([]float64, 0, len(sessions))
		for _, s := range sessions {
			minutes = append(minutes, s.Duration().Minutes())
		}
		out.AvgSessionMinutes = round1(stats.Mean(minutes))
		out.MedianSessionMinutes = round1(stats.Median(minutes))
	}

	days := TrackActiveUsers(events, now, cfg.ScanDays, cfg.ShortWindowDays, cfg.LongWindowDays)
	if len(days) > 0 {
		latest := days[len(days)-1]
		out.DAU = latest.DAU
		out.WAU = latest.WAU
		out.MAU = latest.MAU
		out.Stickiness = math.Round(latest.Stickiness*1000) / 1000
	}
	return out
}

func buildUsage(events []telemetry.Event, cfg Config) UsageSummary {
	out := UsageSummary{TotalEvents: len(events)}
	for _, e := range events {
		switch e.Type {
		case telemetry.EventUpload:
			out.Uploads++
		case telemetry.EventView:
			out.Views++
		case telemetry.EventRecompute:
			out.Recomputes++
		case telemetry.EventExport:
			out.Exports++
		}
	}
	out.Segments = SegmentUsers(usageVectors(events), cfg.SegmenterRounds)
	return out
}

func buildQuality(events []telemetry.Event) QualitySummary {
	out := QualitySummary{}
	var uploadsTracked, recomputesTracked int
	for _, e := range events {
		if e.Success == nil {
			continue
		}
		switch e.Type {
		case telemetry.EventUpload:
			uploadsTracked++
			if !*e.Success {
				out.FailedUploads++
			}
		case telemetry.EventRecompute:
			recomputesTracked++
			if !*e.Success {
				out.FailedRecomputes++
			}
		}
	}
	if uploadsTracked > 0 {
		out.UploadSuccessRatePct = round1(float64(uploadsTracked-out.FailedUploads) / float64(uploadsTracked) * 100)
	}
	if recomputesTracked > 0 {
		out.RecomputeSuccessRatePct = round1(float64(recomputesTracked-out.FailedRecomputes) / float64(recomputesTracked) * 100)
	}
	return out
}

func buildPerformance(events []telemetry.Event, cfg Config, now time.Time) PerformanceSummary {
	var all, recent []float64
	cutoff := now.Add(-time.Duration(cfg.AlertRecentMinutes * float64(time.Minute)))
	for _, e := range events {
		if e.DurationMs == nil || !stats.IsFinite(*e.DurationMs) {
			continue
		}
		all = append(all, *e.DurationMs)
		if !e.CreatedAt.Before(cutoff) {
			recent = append(recent, *e.DurationMs)
		}
	}

	out := PerformanceSummary{TrackedEvents: len(all)}
	if len(all) == 0 {
		return out
	}
	out.AvgMs = round1(stats.Mean(all))
	out.P50Ms = round1(stats.Percentile(all, 0.5))
	out.P90Ms = round1(stats.Percentile(all, 0.9))
	out.P95Ms = round1(stats.Percentile(all, 0.95))
	out.P99Ms = round1(stats.Percentile(all, 0.99))
	out.RecentP95Ms = round1(stats.Percentile(recent, 0.95))
	return out
}

func buildConversion(events []telemetry.Event) ConversionSummary {
	step := map[string]map[string]struct{}{
		telemetry.EventUpload: {},
		telemetry.EventView:   {},
		telemetry.EventExport: {},
	}
	for _, e := range events {
		if e.UserID == "" {
			continue
		}
		if set, ok := step[e.Type]; ok {
			set[e.UserID] = struct{}{}
		}
	}

	out := ConversionSummary{
		Uploaders: len(step[telemetry.EventUpload]),
		Viewers:   len(step[telemetry.EventView]),
		Exporters: len(step[telemetry.EventExport]),
	}
	if out.Uploaders > 0 {
		out.UploadToViewPct = round1(float64(out.Viewers) / float64(out.Uploaders) * 100)
	}
	if out.Viewers > 0 {
		out.ViewToExportPct = round1(float64(out.Exporters) / float64(out.Viewers) * 100)
	}
	return out
}

func buildReliability(events []telemetry.Event) ReliabilitySummary {
	out := ReliabilitySummary{}
	for _, e := range events {
		if e.Success == nil {
			continue
		}
		out.TrackedEvents++
		if !*e.Success {
			out.Failures++
		}
	}
	if out.TrackedEvents > 0 {
		out.FailureRatePct = round1(float64(out.Failures) / float64(out.TrackedEvents) * 100)
	}
	return out
}

func buildSafety(events []telemetry.Event) SafetySummary {
	out := SafetySummary{}
	unattributed := 0
	for _, e := range events {
		missing := false
		if e.UserID == "" {
			out.EventsMissingUser++
			missing = true
		}
		if e.ActivityID == "" && (e.Type == telemetry.EventUpload || e.Type == telemetry.EventView || e.Type == telemetry.EventRecompute) {
			out.EventsMissingActivity++
			missing = true
		}
		if missing {
			unattributed++
		}
	}
	if len(events) > 0 {
		out.UnattributedPct = round1(float64(unattributed) / float64(len(events)) * 100)
	}
	return out
}

func buildUX(events []telemetry.Event) UXSummary {
	out := UXSummary{}
	clicks := make(map[string]int)
	users := make(map[string]struct{})
	for _, e := range events {
		if e.Type != telemetry.EventFeatureClick {
			continue
		}
		out.FeatureClicks++
		if e.UserID != "" {
			users[e.UserID] = struct{}{}
		}
		if feature := e.Meta["feature"]; feature != "" {
			clicks[feature]++
		}
	}
	out.UniqueUsers = len(users)

	out.TopFeatures = make([]FeatureCount, 0, len(clicks))
	for feature, n := range clicks {
		out.TopFeatures = append(out.TopFeatures, FeatureCount{Feature: feature, Clicks: n})
	}
	sort.Slice(out.TopFeatures, func(i, j int) bool {
		if out.TopFeatures[i].Clicks != out.TopFeatures[j].Clicks {
			return out.TopFeatures[i].Clicks > out.TopFeatures[j].Clicks
		}
		return out.TopFeatures[i].Feature < out.TopFeatures[j].Feature
	})
	if len(out.TopFeatures) > 5 {
		out.TopFeatures = out.TopFeatures[:5]
	}
	return out
}
