package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunBatch runs race once per seed, concurrently, and returns the outcomes
// in seed order. Batch races are saved but not published to sinks. The
// first failure cancels the remaining races.
func (r *Runner) RunBatch(ctx context.Context, race Race, seeds []int64) ([]Outcome, error) {
	outcomes := make([]Outcome, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	if r.parallel > 0 {
		g.SetLimit(r.parallel)
	}
	for i, seed := range seeds {
		g.Go(func() error {
			out, err := r.run(gctx, race, seed, false)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
