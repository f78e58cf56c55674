package stats

import (
	"math"
	"testing"
)

func TestRollingMeans_SlidesByOne(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	means := RollingMeans(values, 3)
	want := []float64{2, 3, 4}
	if len(means) != len(want) {
		t.Fatalf("got %d means, want %d", len(means), len(want))
	}
	for i := range want {
		if !almostEqual(means[i], want[i]) {
			t.Errorf("means[%d] = %v, want %v", i, means[i], want[i])
		}
	}
}

func TestRollingMeans_WindowLargerThanInput(t *testing.T) {
	if means := RollingMeans([]float64{1, 2}, 5); means != nil {
		t.Errorf("expected nil for window larger than input, got %v", means)
	}
}

func TestRollingMeans_WindowClampedToOne(t *testing.T) {
	means := RollingMeans([]float64{3, 7}, 0)
	if len(means) != 2 || means[0] != 3 || means[1] != 7 {
		t.Errorf("window 0 should behave as window 1, got %v", means)
	}
}

func TestWeightedMean4_ConstantStream(t *testing.T) {
	// For a constant stream the weighted value equals the constant.
	values := make([]float64, 20)
	for i := range values {
		values[i] = 150
	}

	got, ok := WeightedMean4(values, 5)
	if !ok {
		t.Fatal("expected a result for 20 samples, window 5")
	}
	if !almostEqual(got, 150) {
		t.Errorf("WeightedMean4 = %v, want 150", got)
	}
}

func TestWeightedMean4_WeightsSurges(t *testing.T) {
	// A bursty stream must score above its arithmetic mean.
	values := []float64{100, 100, 100, 300, 300, 300, 100, 100, 100}

	got, ok := WeightedMean4(values, 3)
	if !ok {
		t.Fatal("expected a result")
	}
	mean := Mean(values)
	if got <= mean {
		t.Errorf("WeightedMean4 = %v, want > arithmetic mean %v", got, mean)
	}
}

func TestWeightedMean4_NoFullWindow(t *testing.T) {
	if _, ok := WeightedMean4([]float64{1, 2}, 3); ok {
		t.Error("expected ok=false with fewer values than one window")
	}
}

func TestWindowSize(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		rate    float64
		want    int
	}{
		{"30s at 1Hz", 30, 1, 30},
		{"30s at 2Hz", 30, 2, 60},
		{"rounding", 2.6, 1, 3},
		{"zero rate defaults to 1Hz", 10, 0, 10},
		{"minimum of 1", 0.1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WindowSize(tt.seconds, tt.rate); got != tt.want {
				t.Errorf("WindowSize(%v, %v) = %d, want %d", tt.seconds, tt.rate, got, tt.want)
			}
		})
	}
}

func TestRollingMeans_NoNaNPropagation(t *testing.T) {
	// Callers filter non-finite input; a finite stream must stay finite.
	means := RollingMeans([]float64{10, 20, 30, 40}, 2)
	for i, m := range means {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			t.Errorf("means[%d] = %v, want finite", i, m)
		}
	}
}
