package metric

import (
	"math"
	"sort"
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/stats"
	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// HRCadenceConfig holds the tunables for the heart-rate/cadence scaling
// regression.
type HRCadenceConfig struct {
	// BucketWidthRPM is the width of each cadence bin.
	BucketWidthRPM float64
	// MinBucketCoverageSec is the accumulated sample-seconds a bucket needs
	// before it contributes a point.
	MinBucketCoverageSec float64
	// MinCadenceRPM drops freewheeling and track-stand samples.
	MinCadenceRPM float64
}

// DefaultHRCadenceConfig returns 10 rpm buckets requiring 60 s of coverage,
// with cadence below 20 rpm discarded.
func DefaultHRCadenceConfig() HRCadenceConfig {
	return HRCadenceConfig{BucketWidthRPM: 10, MinBucketCoverageSec: 60, MinCadenceRPM: 20}
}

// HRCadenceModule fits a robust line to heart rate as a function of cadence:
// Theil-Sen over per-bucket medians, with an ordinary least-squares fallback.
type HRCadenceModule struct {
	cfg HRCadenceConfig
}

// NewHRCadenceModule returns an HR/cadence module with the given
// configuration.
func NewHRCadenceModule(cfg HRCadenceConfig) *HRCadenceModule {
	return &HRCadenceModule{cfg: cfg}
}

func (m *HRCadenceModule) Definition() Definition {
	return Definition{
		Key:         KeyHRCadence,
		Name:        "HR/Cadence Scaling",
		Version:     "2.0.1",
		Units:       "bpm/rpm",
		Description: "Robust regression of heart rate against cadence with nonlinearity and fatigue checks",
	}
}

// hcPair is one retained (cadence, heart rate) observation.
type hcPair struct {
	t   float64
	cad float64
	hr  float64
}

func (m *HRCadenceModule) Compute(samples []telemetry.Sample, ctx Context) Result {
	summary := map[string]*float64{
		"valid_pairs":         nil,
		"bucket_count":        nil,
		"slope_bpm_per_rpm":   nil,
		"intercept_bpm":       nil,
		"r_squared":           nil,
		"nonlinearity_gain":   nil,
		"fatigue_slope_delta": nil,
	}
	res := Result{Key: KeyHRCadence, Summary: summary, ComputedAt: time.Now().UTC()}

	pairs := m.filterPairs(samples)
	summary["valid_pairs"] = count(len(pairs))
	if len(pairs) == 0 {
		return res
	}

	dt := 1 / ctx.Rate()
	points := m.bucketPoints(pairs, dt)
	summary["bucket_count"] = count(len(points))

	slope, intercept, ok := fitBuckets(points)
	if !ok {
		return res
	}

	summary["slope_bpm_per_rpm"] = num(slope, 3)
	summary["intercept_bpm"] = num(intercept, 1)
	summary["r_squared"] = num(stats.RSquared(points, slope, intercept), 3)

	if gain, ok := nonlinearityGain(points, slope, intercept); ok {
		summary["nonlinearity_gain"] = num(gain, 3)
	}

	if delta, ok := m.fatigueDelta(pairs, samples, dt); ok {
		summary["fatigue_slope_delta"] = num(delta, 3)
	}

	// The bucket curve doubles as the series: cadence midpoint vs median HR.
	res.Series = make([]SeriesPoint, 0, len(points))
	for _, p := range points {
		res.Series = append(res.Series, SeriesPoint{T: p.X, Value: round(p.Y, 1)})
	}

	return res
}

// filterPairs retains samples with cadence at or above the minimum and a
// finite paired heart rate.
func (m *HRCadenceModule) filterPairs(samples []telemetry.Sample) []hcPair {
	var pairs []hcPair
	for _, s := range samples {
		if s.Cadence == nil || s.HeartRate == nil {
			continue
		}
		cad, hr := *s.Cadence, *s.HeartRate
		if !stats.IsFinite(cad) || !stats.IsFinite(hr) || cad < m.cfg.MinCadenceRPM {
			continue
		}
		pairs = append(pairs, hcPair{t: s.T, cad: cad, hr: hr})
	}
	return pairs
}

// bucketPoints partitions the cadence domain into fixed-width bins and
// returns one (bucket midpoint, median HR) point per bin whose accumulated
// sample-seconds reach the coverage threshold, ordered by cadence.
func (m *HRCadenceModule) bucketPoints(pairs []hcPair, dt float64) []stats.Point {
	buckets := make(map[int][]float64)
	for _, p := range pairs {
		idx := int(math.Floor(p.cad / m.cfg.BucketWidthRPM))
		buckets[idx] = append(buckets[idx], p.hr)
	}

	indices := make([]int, 0, len(buckets))
	for idx, hrs := range buckets {
		if float64(len(hrs))*dt >= m.cfg.MinBucketCoverageSec {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	points := make([]stats.Point, 0, len(indices))
	for _, idx := range indices {
		midpoint := (float64(idx) + 0.5) * m.cfg.BucketWidthRPM
		points = append(points, stats.Point{X: midpoint, Y: stats.Median(buckets[idx])})
	}
	return points
}

// fitBuckets fits the bucket points: Theil-Sen first, least squares as the
// fallback. Fewer than 2 buckets leaves the regression undefined.
func fitBuckets(points []stats.Point) (slope, intercept float64, ok bool) {
	if len(points) < 2 {
		return 0, 0, false
	}
	if slope, intercept, ok = stats.TheilSen(points); ok {
		return slope, intercept, true
	}
	slope, intercept = stats.LinReg(points)
	return slope, intercept, true
}

// nonlinearityGain splits the bucket points at the midpoint index, fits an
// independent least-squares line to each half, and reports the R^2
// improvement of the two-segment fit over the single global fit. It needs
// at least 4 buckets.
func nonlinearityGain(points []stats.Point, slope, intercept float64) (float64, bool) {
	if len(points) < 4 {
		return 0, false
	}

	mid := len(points) / 2
	lo, hi := points[:mid], points[mid:]
	loSlope, loIntercept := stats.LinReg(lo)
	hiSlope, hiIntercept := stats.LinReg(hi)

	var sumY float64
	for _, p := range points {
		sumY += p.Y
	}
	meanY := sumY / float64(len(points))

	var ssRes, ssTot float64
	for _, p := range lo {
		fit := loSlope*p.X + loIntercept
		ssRes += (p.Y - fit) * (p.Y - fit)
		ssTot += (p.Y - meanY) * (p.Y - meanY)
	}
	for _, p := range hi {
		fit := hiSlope*p.X + hiIntercept
		ssRes += (p.Y - fit) * (p.Y - fit)
		ssTot += (p.Y - meanY) * (p.Y - meanY)
	}

	twoSegment := 1.0
	if ssTot != 0 {
		twoSegment = 1 - ssRes/ssTot
	}
	return twoSegment - stats.RSquared(points, slope, intercept), true
}

// fatigueDelta reruns the whole bucket-and-fit pipeline independently on the
// first and second time halves of the activity and reports the slope
// difference. Both halves must produce a defined fit.
func (m *HRCadenceModule) fatigueDelta(pairs []hcPair, samples []telemetry.Sample, dt float64) (float64, bool) {
	if len(samples) == 0 {
		return 0, false
	}
	tMid := (samples[0].T + samples[len(samples)-1].T) / 2

	var first, second []hcPair
	for _, p := range pairs {
		if p.t <= tMid {
			first = append(first, p)
		} else {
			second = append(second, p)
		}
	}

	firstSlope, _, ok1 := fitBuckets(m.bucketPoints(first, dt))
	secondSlope, _, ok2 := fitBuckets(m.bucketPoints(second, dt))
	if !ok1 || !ok2 {
		return 0, false
	}
	return secondSlope - firstSlope, true
}
