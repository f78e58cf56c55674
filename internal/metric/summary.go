package metric

import (
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/stats"
	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// RideSummaryModule computes the headline card for an activity: speed,
// distance, elevation, heart rate, and cadence aggregates. Every field is
// null when its channel is absent.
type RideSummaryModule struct{}

// NewRideSummaryModule returns the ride summary module.
func NewRideSummaryModule() *RideSummaryModule {
	return &RideSummaryModule{}
}

func (m *RideSummaryModule) Definition() Definition {
	return Definition{
		Key:         KeyRideSummary,
		Name:        "Ride Summary",
		Version:     "1.1.0",
		Units:       "mixed",
		Description: "Headline speed, distance, elevation, heart rate, and cadence aggregates",
	}
}

func (m *RideSummaryModule) Compute(samples []telemetry.Sample, ctx Context) Result {
	summary := map[string]*float64{
		"avg_speed_kmh":     nil,
		"max_speed_kmh":     nil,
		"distance_km":       nil,
		"elevation_gain_m":  nil,
		"elevation_loss_m":  nil,
		"avg_heart_rate":    nil,
		"max_heart_rate":    nil,
		"avg_cadence_rpm":   nil,
		"max_cadence_rpm":   nil,
		"avg_temperature_c": nil,
	}
	res := Result{Key: KeyRideSummary, Summary: summary, ComputedAt: time.Now().UTC()}

	dt := 1 / ctx.Rate()

	var speeds, hrsVals, cadences, temps []float64
	for _, s := range samples {
		if s.Speed != nil && stats.IsFinite(*s.Speed) {
			speeds = append(speeds, *s.Speed)
		}
		if s.HeartRate != nil && stats.IsFinite(*s.HeartRate) {
			hrsVals = append(hrsVals, *s.HeartRate)
		}
		if s.Cadence != nil && stats.IsFinite(*s.Cadence) {
			cadences = append(cadences, *s.Cadence)
		}
		if s.Temperature != nil && stats.IsFinite(*s.Temperature) {
			temps = append(temps, *s.Temperature)
		}
	}

	if len(speeds) > 0 {
		summary["avg_speed_kmh"] = num(stats.Mean(speeds)*3.6, 1)
		summary["max_speed_kmh"] = num(maxOf(speeds)*3.6, 1)

		meters := 0.0
		for _, v := range speeds {
			meters += v * dt
		}
		summary["distance_km"] = num(meters/1000, 2)
	}

	if gain, loss, ok := elevationDeltas(samples); ok {
		summary["elevation_gain_m"] = num(gain, 1)
		summary["elevation_loss_m"] = num(loss, 1)
	}

	if len(hrsVals) > 0 {
		summary["avg_heart_rate"] = num(stats.Mean(hrsVals), 1)
		summary["max_heart_rate"] = num(maxOf(hrsVals), 1)
	}
	if len(cadences) > 0 {
		summary["avg_cadence_rpm"] = num(stats.Mean(cadences), 1)
		summary["max_cadence_rpm"] = num(maxOf(cadences), 1)
	}
	if len(temps) > 0 {
		summary["avg_temperature_c"] = num(stats.Mean(temps), 1)
	}

	return res
}

// elevationDeltas sums the positive and negative elevation changes between
// consecutive finite readings.
func elevationDeltas(samples []telemetry.Sample) (gain, loss float64, ok bool) {
	var prev float64
	have := false
	for _, s := range samples {
		if s.Elevation == nil || !stats.IsFinite(*s.Elevation) {
			continue
		}
		if have {
			delta := *s.Elevation - prev
			if delta > 0 {
				gain += delta
			} else {
				loss -= delta
			}
		}
		prev = *s.Elevation
		have = true
		ok = true
	}
	return gain, loss, ok
}

func maxOf(values []float64) float64 {
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best
}
