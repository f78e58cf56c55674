package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Aggregator assembles Overview snapshots. It is read-only over its inputs
// and holds no state between builds.
type Aggregator struct {
	cfg Config
}

// NewAggregator returns an aggregator with the given tunables.
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// BuildOverview computes every section independently and assembles the
// snapshot. Sections run concurrently over the shared read-only batch; each
// one is wrapped in a recover guard so a panic in one section leaves the
// others intact and that section at its zero form. Alerts come last because
// they read the finished sections.
func (a *Aggregator) BuildOverview(ctx context.Context, input Input) Overview {
	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	o := Overview{GeneratedAt: now}

	g, _ := errgroup.WithContext(ctx)
	g.Go(section(func() { o.Acquisition = buildAcquisition(input.Users, input.Events) }))
	g.Go(section(func() { o.Engagement = buildEngagement(input.Events, a.cfg, now) }))
	g.Go(section(func() { o.Usage = buildUsage(input.Events, a.cfg) }))
	g.Go(section(func() { o.Quality = buildQuality(input.Events) }))
	g.Go(section(func() { o.Performance = buildPerformance(input.Events, a.cfg, now) }))
	g.Go(section(func() { o.Cohorts = buildCohorts(input.Users, input.Events) }))
	g.Go(section(func() { o.Conversion = buildConversion(input.Events) }))
	g.Go(section(func() { o.Reliability = buildReliability(input.Events) }))
	g.Go(section(func() { o.Safety = buildSafety(input.Events) }))
	g.Go(section(func() { o.UX = buildUX(input.Events) }))
	_ = g.Wait()

	o.Alerts = evalAlerts(&o, a.cfg, now)
	return o
}

// section wraps one builder so a panic degrades that section to its zero
// form instead of taking down the whole snapshot. Builders never return
// errors for data problems; the guard only covers the unexpected.
func section(build func()) func() error {
	return func() error {
		defer func() {
			_ = recover()
		}()
		build()
		return nil
	}
}
