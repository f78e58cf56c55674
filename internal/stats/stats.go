// Package stats provides the numeric primitives shared by the metric
// modules and the analytics aggregator: percentile interpolation, medians,
// and least-squares / Theil-Sen regression.
package stats

import (
	"math"
	"sort"
)

// Point is a single (x, y) observation for regression.
type Point struct {
	X float64
	Y float64
}

// IsFinite reports whether v is a usable sample value (not NaN or Inf).
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FilterFinite returns the finite entries of values, preserving order.
func FilterFinite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if IsFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// Mean returns the arithmetic mean of values, or 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// Percentile returns the p-th quantile of values (p in [0, 1]) using linear
// interpolation between the two adjacent order statistics. p=0 yields the
// minimum, p=1 the maximum, and empty input yields 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := p * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}

	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Median returns the 50th percentile of values.
func Median(values []float64) float64 {
	return Percentile(values, 0.5)
}

// LinReg fits an ordinary least-squares line to points and returns its slope
// and intercept. Degenerate input (empty, or zero variance in x) yields a
// zero slope and the mean of y as intercept rather than dividing by zero.
func LinReg(points []Point) (slope, intercept float64) {
	n := float64(len(points))
	if n == 0 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumXX += p.X * p.X
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// LinRegSlope returns only the least-squares slope of points.
func LinRegSlope(points []Point) float64 {
	slope, _ := LinReg(points)
	return slope
}

// RSquared returns the coefficient of determination of the line
// y = slope*x + intercept against points. Empty input yields 0; zero
// variance in y yields 1 (the flat line is a perfect fit).
func RSquared(points []Point, slope, intercept float64) float64 {
	if len(points) == 0 {
		return 0
	}

	var sumY float64
	for _, p := range points {
		sumY += p.Y
	}
	meanY := sumY / float64(len(points))

	var ssRes, ssTot float64
	for _, p := range points {
		fit := slope*p.X + intercept
		ssRes += (p.Y - fit) * (p.Y - fit)
		ssTot += (p.Y - meanY) * (p.Y - meanY)
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}

// TheilSen fits a robust regression line to points: the slope is the median
// of all pairwise slopes and the intercept the median of the per-point
// offsets from that slope. It reports ok=false when fewer than 2 points are
// available or no pair has distinct x values.
func TheilSen(points []Point) (slope, intercept float64, ok bool) {
	if len(points) < 2 {
		return 0, 0, false
	}

	slopes := make([]float64, 0, len(points)*(len(points)-1)/2)
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			dx := points[j].X - points[i].X
			if dx == 0 {
				continue
			}
			slopes = append(slopes, (points[j].Y-points[i].Y)/dx)
		}
	}
	if len(slopes) == 0 {
		return 0, 0, false
	}

	slope = Median(slopes)

	offsets := make([]float64, 0, len(points))
	for _, p := range points {
		offsets = append(offsets, p.Y-slope*p.X)
	}
	intercept = Median(offsets)

	return slope, intercept, true
}
