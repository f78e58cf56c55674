// Package metric implements the ride metric modules: pure functions that
// turn an activity's sample sequence into scalar and series-valued training
// metrics. The registry is a fixed, explicitly enumerated table; there is no
// runtime registration.
package metric

import (
	"math"
	"time"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// Definition is the static identity of a metric module. Version changes
// invalidate previously stored results for that key.
type Definition struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Units       string `json:"units"`
	Description string `json:"description"`
}

// SeriesPoint is one entry of a metric's optional series output.
type SeriesPoint struct {
	T     float64 `json:"t"`
	Value float64 `json:"value"`
}

// Result is the output of one module for one activity. Every summary field
// is independently nullable; consumers must not assume co-presence.
type Result struct {
	Key        string              `json:"key"`
	Summary    map[string]*float64 `json:"summary"`
	Series     []SeriesPoint       `json:"series,omitempty"`
	ComputedAt time.Time           `json:"computed_at"`
}

// Context carries the activity metadata a module needs to size time-based
// windows.
type Context struct {
	SampleRateHz *float64
}

// Rate returns the sample rate with the 1 Hz default applied.
func (c Context) Rate() float64 {
	if c.SampleRateHz == nil || *c.SampleRateHz <= 0 {
		return 1
	}
	return *c.SampleRateHz
}

// Module computes one metric from an activity's samples. Implementations
// are pure: no shared mutable state, no I/O, and a module that cannot
// compute returns an all-null summary rather than an error.
type Module interface {
	Definition() Definition
	Compute(samples []telemetry.Sample, ctx Context) Result
}

// NewRegistry builds the fixed metric module table.
func NewRegistry(power PowerConfig, hrcad HRCadenceConfig, intervals IntervalsConfig) map[string]Module {
	return map[string]Module{
		KeyPower:       NewPowerModule(power),
		KeyHRCadence:   NewHRCadenceModule(hrcad),
		KeyIntervals:   NewIntervalsModule(intervals),
		KeyRideSummary: NewRideSummaryModule(),
	}
}

// Registry keys.
const (
	KeyPower       = "power"
	KeyHRCadence   = "hr_cadence"
	KeyIntervals   = "intervals"
	KeyRideSummary = "ride_summary"
)

// round rounds v to the given number of fractional digits. Rounding happens
// only at the summary-construction boundary, never inside intermediate math.
func round(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}

// num returns a pointer to v rounded to digits, for summary construction.
func num(v float64, digits int) *float64 {
	r := round(v, digits)
	return &r
}

// count returns a pointer to n as a float64 summary field.
func count(n int) *float64 {
	v := float64(n)
	return &v
}
