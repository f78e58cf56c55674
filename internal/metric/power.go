package metric

import (
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/stats"
	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// PowerConfig holds the tunables for the stabilized power module.
type PowerConfig struct {
	// WindowSeconds is the rolling window duration for stabilized power.
	WindowSeconds float64
	// CoastingThresholdWatts is the upper bound for a sample to count as
	// coasting.
	CoastingThresholdWatts float64
}

// DefaultPowerConfig returns the standard 30-second window and 5 W coasting
// threshold.
func DefaultPowerConfig() PowerConfig {
	return PowerConfig{WindowSeconds: 30, CoastingThresholdWatts: 5}
}

// PowerModule computes stabilized (surge-weighted) power, the variability
// index, and the coasting share from the power channel.
type PowerModule struct {
	cfg PowerConfig
}

// NewPowerModule returns a power module with the given configuration.
func NewPowerModule(cfg PowerConfig) *PowerModule {
	return &PowerModule{cfg: cfg}
}

func (m *PowerModule) Definition() Definition {
	return Definition{
		Key:         KeyPower,
		Name:        "Stabilized Power",
		Version:     "1.2.0",
		Units:       "W",
		Description: "Rolling-window stabilized power, variability index, and coasting share",
	}
}

func (m *PowerModule) Compute(samples []telemetry.Sample, ctx Context) Result {
	summary := map[string]*float64{
		"valid_power_samples": nil,
		"average_power_w":     nil,
		"max_power_w":         nil,
		"stabilized_power_w":  nil,
		"variability_index":   nil,
		"coasting_share":      nil,
	}
	res := Result{Key: KeyPower, Summary: summary, ComputedAt: time.Now().UTC()}

	// Invalid (absent or non-finite) entries are removed before windowing.
	var times, powers []float64
	for _, s := range samples {
		if s.Power == nil || !stats.IsFinite(*s.Power) {
			continue
		}
		times = append(times, s.T)
		powers = append(powers, *s.Power)
	}
	if len(powers) == 0 {
		return res
	}

	avg := stats.Mean(powers)
	maxP := powers[0]
	coasting := 0
	for _, p := range powers {
		if p > maxP {
			maxP = p
		}
		if p <= m.cfg.CoastingThresholdWatts {
			coasting++
		}
	}

	summary["valid_power_samples"] = count(len(powers))
	summary["average_power_w"] = num(avg, 1)
	summary["max_power_w"] = num(maxP, 1)
	summary["coasting_share"] = num(float64(coasting)/float64(len(powers)), 3)

	window := stats.WindowSize(m.cfg.WindowSeconds, ctx.Rate())
	if stabilized, ok := stats.WeightedMean4(powers, window); ok {
		summary["stabilized_power_w"] = num(stabilized, 1)
		if avg != 0 {
			summary["variability_index"] = num(stabilized/avg, 3)
		}

		means := stats.RollingMeans(powers, window)
		res.Series = make([]SeriesPoint, 0, len(means))
		for i, mean := range means {
			res.Series = append(res.Series, SeriesPoint{T: times[i+window-1], Value: round(mean, 1)})
		}
	}

	return res
}
