package metric

import (
	"testing"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

func TestRideSummaryModule_SpeedAndDistance(t *testing.T) {
	// 100 s at a steady 10 m/s: 36 km/h and exactly 1 km.
	samples := make([]telemetry.Sample, 100)
	for i := range samples {
		samples[i] = telemetry.Sample{T: float64(i), Speed: f(10)}
	}

	res := NewRideSummaryModule().Compute(samples, Context{})

	if got := res.Summary["avg_speed_kmh"]; got == nil || *got != 36 {
		t.Errorf("avg_speed_kmh = %v, want 36", got)
	}
	if got := res.Summary["max_speed_kmh"]; got == nil || *got != 36 {
		t.Errorf("max_speed_kmh = %v, want 36", got)
	}
	if got := res.Summary["distance_km"]; got == nil || *got != 1 {
		t.Errorf("distance_km = %v, want 1.00", got)
	}
}

func TestRideSummaryModule_DistanceScalesWithSampleRate(t *testing.T) {
	// The same 100 readings at 2 Hz cover half the time, so half the
	// distance.
	samples := make([]telemetry.Sample, 100)
	for i := range samples {
		samples[i] = telemetry.Sample{T: float64(i) / 2, Speed: f(10)}
	}
	rate := 2.0

	res := NewRideSummaryModule().Compute(samples, Context{SampleRateHz: &rate})

	if got := res.Summary["distance_km"]; got == nil || *got != 0.5 {
		t.Errorf("distance_km = %v, want 0.50 at 2 Hz", got)
	}
}

func TestRideSummaryModule_ElevationGainAndLoss(t *testing.T) {
	// 100 -> 110 -> 105 -> (gap) -> 112: gain 17, loss 5. The absent reading
	// must not reset the running pairing.
	samples := []telemetry.Sample{
		{T: 0, Elevation: f(100)},
		{T: 1, Elevation: f(110)},
		{T: 2, Elevation: f(105)},
		{T: 3},
		{T: 4, Elevation: f(112)},
	}

	res := NewRideSummaryModule().Compute(samples, Context{})

	if got := res.Summary["elevation_gain_m"]; got == nil || *got != 17 {
		t.Errorf("elevation_gain_m = %v, want 17", got)
	}
	if got := res.Summary["elevation_loss_m"]; got == nil || *got != 5 {
		t.Errorf("elevation_loss_m = %v, want 5", got)
	}
}

func TestRideSummaryModule_AbsentChannelsStayNull(t *testing.T) {
	samples := []telemetry.Sample{
		{T: 0, HeartRate: f(130)},
		{T: 1, HeartRate: f(150)},
	}

	res := NewRideSummaryModule().Compute(samples, Context{})

	if got := res.Summary["avg_heart_rate"]; got == nil || *got != 140 {
		t.Errorf("avg_heart_rate = %v, want 140", got)
	}
	if got := res.Summary["max_heart_rate"]; got == nil || *got != 150 {
		t.Errorf("max_heart_rate = %v, want 150", got)
	}
	for _, field := range []string{"avg_speed_kmh", "distance_km", "elevation_gain_m", "avg_cadence_rpm", "avg_temperature_c"} {
		if res.Summary[field] != nil {
			t.Errorf("summary[%q] = %v, want null for an absent channel", field, *res.Summary[field])
		}
	}
}
