package stats

import "math"

// RollingMeans slides a fixed-size window over values one sample at a time
// and returns one mean per window position. A window smaller than 1 is
// clamped to 1. Fewer values than one full window yields nil.
func RollingMeans(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	if len(values) < window {
		return nil
	}

	sum := 0.0
	for i := 0; i < window; i++ {
		sum += values[i]
	}

	means := make([]float64, 0, len(values)-window+1)
	means = append(means, sum/float64(window))
	for i := window; i < len(values); i++ {
		sum += values[i] - values[i-window]
		means = append(means, sum/float64(window))
	}
	return means
}

// WeightedMean4 computes the 4th root of the mean of window-mean^4 across
// all rolling windows of values. This weights surges more heavily than a
// plain average. It reports ok=false when not even one full window exists.
func WeightedMean4(values []float64, window int) (float64, bool) {
	means := RollingMeans(values, window)
	if len(means) == 0 {
		return 0, false
	}

	total := 0.0
	for _, m := range means {
		total += m * m * m * m
	}
	return math.Pow(total/float64(len(means)), 0.25), true
}

// WindowSize converts a window duration in seconds to a sample count at the
// given sample rate, with a minimum of 1.
func WindowSize(windowSeconds, sampleRateHz float64) int {
	if sampleRateHz <= 0 {
		sampleRateHz = 1
	}
	n := int(math.Round(windowSeconds * sampleRateHz))
	if n < 1 {
		n = 1
	}
	return n
}
