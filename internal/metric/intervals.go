package metric

import (
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/stats"
	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// IntervalsConfig holds the tunables for interval detection.
type IntervalsConfig struct {
	// SmoothWindowSeconds is the rolling-mean window used before
	// thresholding, so short spikes don't open a block.
	SmoothWindowSeconds float64
	// WorkRatio marks a smoothed sample as "work" above baseline*WorkRatio.
	WorkRatio float64
	// RecoveryRatio marks a smoothed sample as "recovery" below
	// baseline*RecoveryRatio.
	RecoveryRatio float64
	// MinBlockSeconds is the minimum run length for a block to count.
	MinBlockSeconds float64
}

// DefaultIntervalsConfig returns a 30 s smoothing window with blocks at
// 120%/90% of baseline power lasting at least 30 s.
func DefaultIntervalsConfig() IntervalsConfig {
	return IntervalsConfig{SmoothWindowSeconds: 30, WorkRatio: 1.2, RecoveryRatio: 0.9, MinBlockSeconds: 30}
}

// IntervalsModule detects work and recovery blocks from smoothed power and
// reports interval efficiency (watts per heartbeat) and its drift across
// repeats.
type IntervalsModule struct {
	cfg IntervalsConfig
}

// NewIntervalsModule returns an intervals module with the given
// configuration.
func NewIntervalsModule(cfg IntervalsConfig) *IntervalsModule {
	return &IntervalsModule{cfg: cfg}
}

func (m *IntervalsModule) Definition() Definition {
	return Definition{
		Key:         KeyIntervals,
		Name:        "Interval Efficiency",
		Version:     "1.0.3",
		Units:       "W/bpm",
		Description: "Work/recovery block detection and efficiency drift across repeats",
	}
}

// block is one detected run of work or recovery positions over the valid
// sample stream.
type block struct {
	start, end int // inclusive indices into the valid stream
	work       bool
}

func (m *IntervalsModule) Compute(samples []telemetry.Sample, ctx Context) Result {
	summary := map[string]*float64{
		"work_intervals":          nil,
		"recovery_intervals":      nil,
		"avg_work_duration_s":     nil,
		"avg_recovery_duration_s": nil,
		"avg_work_power_w":        nil,
		"work_efficiency_w_bpm":   nil,
		"efficiency_drift_pct":    nil,
	}
	res := Result{Key: KeyIntervals, Summary: summary, ComputedAt: time.Now().UTC()}

	var powers []float64
	var hrs []*float64
	for _, s := range samples {
		if s.Power == nil || !stats.IsFinite(*s.Power) {
			continue
		}
		powers = append(powers, *s.Power)
		hrs = append(hrs, s.HeartRate)
	}
	baseline := stats.Mean(powers)
	if len(powers) == 0 || baseline <= 0 {
		return res
	}

	rate := ctx.Rate()
	dt := 1 / rate
	window := stats.WindowSize(m.cfg.SmoothWindowSeconds, rate)
	smoothed := stats.RollingMeans(powers, window)
	if len(smoothed) == 0 {
		summary["work_intervals"] = count(0)
		summary["recovery_intervals"] = count(0)
		return res
	}

	minLen := stats.WindowSize(m.cfg.MinBlockSeconds, rate)
	blocks := m.detectBlocks(smoothed, baseline, window, minLen)

	var workBlocks, recoveryBlocks []block
	for _, b := range blocks {
		if b.work {
			workBlocks = append(workBlocks, b)
		} else {
			recoveryBlocks = append(recoveryBlocks, b)
		}
	}

	summary["work_intervals"] = count(len(workBlocks))
	summary["recovery_intervals"] = count(len(recoveryBlocks))

	if len(recoveryBlocks) > 0 {
		summary["avg_recovery_duration_s"] = num(avgBlockSeconds(recoveryBlocks, dt), 1)
	}
	if len(workBlocks) == 0 {
		return res
	}
	summary["avg_work_duration_s"] = num(avgBlockSeconds(workBlocks, dt), 1)

	var workPowers, efficiencies []float64
	for _, b := range workBlocks {
		meanPower := stats.Mean(powers[b.start : b.end+1])
		workPowers = append(workPowers, meanPower)

		var blockHR []float64
		for i := b.start; i <= b.end; i++ {
			if hrs[i] != nil && stats.IsFinite(*hrs[i]) {
				blockHR = append(blockHR, *hrs[i])
			}
		}
		if meanHR := stats.Mean(blockHR); meanHR > 0 {
			efficiencies = append(efficiencies, meanPower/meanHR)
		}
	}

	summary["avg_work_power_w"] = num(stats.Mean(workPowers), 1)
	if len(efficiencies) > 0 {
		summary["work_efficiency_w_bpm"] = num(stats.Mean(efficiencies), 3)
	}
	if len(efficiencies) >= 2 && efficiencies[0] != 0 {
		drift := (efficiencies[len(efficiencies)-1]/efficiencies[0] - 1) * 100
		summary["efficiency_drift_pct"] = num(drift, 1)
	}

	return res
}

// detectBlocks labels each smoothed position and groups consecutive runs of
// the same label. Positions between the thresholds close any open block.
// Indices are mapped back to the valid sample stream via the window end.
func (m *IntervalsModule) detectBlocks(smoothed []float64, baseline float64, window, minLen int) []block {
	workAt := baseline * m.cfg.WorkRatio
	recoveryAt := baseline * m.cfg.RecoveryRatio

	var blocks []block
	open := false
	var current block

	flush := func() {
		if open && current.end-current.start+1 >= minLen {
			blocks = append(blocks, current)
		}
		open = false
	}

	for i, v := range smoothed {
		pos := i + window - 1
		switch {
		case v >= workAt:
			if open && current.work {
				current.end = pos
				continue
			}
			flush()
			current = block{start: pos, end: pos, work: true}
			open = true
		case v <= recoveryAt:
			if open && !current.work {
				current.end = pos
				continue
			}
			flush()
			current = block{start: pos, end: pos, work: false}
			open = true
		default:
			flush()
		}
	}
	flush()

	return blocks
}

func avgBlockSeconds(blocks []block, dt float64) float64 {
	total := 0.0
	for _, b := range blocks {
		total += float64(b.end-b.start+1) * dt
	}
	return total / float64(len(blocks))
}
