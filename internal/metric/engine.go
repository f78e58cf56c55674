package metric

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ridgeline-systems/ridewatch/internal/telemetry"
)

// Engine runs every registered module over an activity. Modules are pure
// functions of their inputs, so they run concurrently; result collection is
// the only serialized step. Persisting results (and the one-current-result
// invariant) is the caller's concern.
type Engine struct {
	modules map[string]Module
}

// NewEngine returns an engine over the given module table.
func NewEngine(modules map[string]Module) *Engine {
	return &Engine{modules: modules}
}

// Definitions returns the definitions of all registered modules, sorted by
// key.
func (e *Engine) Definitions() []Definition {
	defs := make([]Definition, 0, len(e.modules))
	for _, m := range e.modules {
		defs = append(defs, m.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Key < defs[j].Key })
	return defs
}

// Compute runs all modules for one activity and returns their results
// sorted by key. Only context cancellation produces an error; a module that
// cannot compute returns an all-null summary instead.
func (e *Engine) Compute(ctx context.Context, act *telemetry.Activity) ([]Result, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make([]Result, 0, len(e.modules))

	for _, mod := range e.modules {
		mod := mod
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := mod.Compute(act.Samples, Context{SampleRateHz: act.SampleRateHz})
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })
	return results, nil
}
