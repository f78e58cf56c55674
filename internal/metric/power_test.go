package metric

import (
	"math"
	"testing"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

func f(v float64) *float64 { return &v }

func powerSamples(values []*float64) []telemetry.Sample {
	samples := make([]telemetry.Sample, len(values))
	for i, v := range values {
		samples[i] = telemetry.Sample{T: float64(i), Power: v}
	}
	return samples
}

func TestPowerModule_ConstantStream(t *testing.T) {
	// For a constant power stream, stabilized power equals average power and
	// the variability index is exactly 1.
	values := make([]*float64, 60)
	for i := range values {
		values[i] = f(220)
	}

	mod := NewPowerModule(DefaultPowerConfig())
	res := mod.Compute(powerSamples(values), Context{})

	if got := res.Summary["average_power_w"]; got == nil || *got != 220 {
		t.Errorf("average_power_w = %v, want 220", got)
	}
	if got := res.Summary["stabilized_power_w"]; got == nil || *got != 220 {
		t.Errorf("stabilized_power_w = %v, want 220", got)
	}
	if got := res.Summary["variability_index"]; got == nil || *got != 1 {
		t.Errorf("variability_index = %v, want 1", got)
	}
}

func TestPowerModule_InvalidEntriesRemovedBeforeWindowing(t *testing.T) {
	// 10 valid samples followed by 5 absent readings, 1 Hz, 5 s window.
	values := make([]*float64, 0, 15)
	for i := 0; i < 10; i++ {
		values = append(values, f(100))
	}
	for i := 0; i < 5; i++ {
		values = append(values, nil)
	}

	mod := NewPowerModule(PowerConfig{WindowSeconds: 5, CoastingThresholdWatts: 5})
	res := mod.Compute(powerSamples(values), Context{})

	if got := res.Summary["valid_power_samples"]; got == nil || *got != 10 {
		t.Errorf("valid_power_samples = %v, want 10", got)
	}
	if got := res.Summary["average_power_w"]; got == nil || *got != 100 {
		t.Errorf("average_power_w = %v, want 100.0", got)
	}
	if got := res.Summary["stabilized_power_w"]; got == nil || *got != 100 {
		t.Errorf("stabilized_power_w = %v, want 100.0", got)
	}
	if got := res.Summary["coasting_share"]; got == nil || *got != 0 {
		t.Errorf("coasting_share = %v, want 0.0", got)
	}
}

func TestPowerModule_NoValidSamples(t *testing.T) {
	values := []*float64{nil, f(math.NaN()), f(math.Inf(1)), nil}

	mod := NewPowerModule(DefaultPowerConfig())
	res := mod.Compute(powerSamples(values), Context{})

	for field, v := range res.Summary {
		if v != nil {
			t.Errorf("summary[%q] = %v, want null with no valid samples", field, *v)
		}
	}
	if res.Series != nil {
		t.Error("expected no series with no valid samples")
	}
}

func TestPowerModule_CoastingShare(t *testing.T) {
	// 3 coasting samples (<= 5 W) out of 10.
	values := []*float64{f(0), f(3), f(5), f(150), f(150), f(150), f(150), f(150), f(150), f(150)}

	mod := NewPowerModule(PowerConfig{WindowSeconds: 2, CoastingThresholdWatts: 5})
	res := mod.Compute(powerSamples(values), Context{})

	if got := res.Summary["coasting_share"]; got == nil || *got != 0.3 {
		t.Errorf("coasting_share = %v, want 0.3", got)
	}
}

func TestPowerModule_ShortStreamHasNullStabilized(t *testing.T) {
	// Fewer valid samples than one window: stabilized and VI stay null but
	// the plain aggregates are still reported.
	values := []*float64{f(100), f(120)}

	mod := NewPowerModule(PowerConfig{WindowSeconds: 30, CoastingThresholdWatts: 5})
	res := mod.Compute(powerSamples(values), Context{})

	if res.Summary["stabilized_power_w"] != nil {
		t.Error("stabilized_power_w should be null without a full window")
	}
	if res.Summary["variability_index"] != nil {
		t.Error("variability_index should be null without a full window")
	}
	if got := res.Summary["average_power_w"]; got == nil || *got != 110 {
		t.Errorf("average_power_w = %v, want 110", got)
	}
}

func TestPowerModule_SeriesAlignsToWindowEnd(t *testing.T) {
	values := []*float64{f(100), f(100), f(100), f(200), f(200)}

	mod := NewPowerModule(PowerConfig{WindowSeconds: 3, CoastingThresholdWatts: 5})
	res := mod.Compute(powerSamples(values), Context{})

	if len(res.Series) != 3 {
		t.Fatalf("got %d series points, want 3", len(res.Series))
	}
	if res.Series[0].T != 2 {
		t.Errorf("first series point at t=%v, want 2 (window end)", res.Series[0].T)
	}
	if res.Series[2].Value != math.Round(500.0/3*10)/10 {
		t.Errorf("last rolling mean = %v", res.Series[2].Value)
	}
}

func TestPowerModule_WindowScalesWithSampleRate(t *testing.T) {
	// At 2 Hz a 5 s window spans 10 samples; with only 8 valid samples the
	// stabilized value must stay null.
	values := make([]*float64, 8)
	for i := range values {
		values[i] = f(180)
	}
	rate := 2.0

	mod := NewPowerModule(PowerConfig{WindowSeconds: 5, CoastingThresholdWatts: 5})
	res := mod.Compute(powerSamples(values), Context{SampleRateHz: &rate})

	if res.Summary["stabilized_power_w"] != nil {
		t.Error("stabilized_power_w should be null: 8 samples < 10-sample window at 2 Hz")
	}
}
