package app

import (
	"context"
	"fmt"
	"math"

	apperrors "github.com/louisbranch/racesim/internal/platform/errors"
	"github.com/louisbranch/racesim/internal/services/race/storage"
)

// finishTolerance absorbs float formatting differences in stored times.
const finishTolerance = 1e-9

// Replay re-runs race with the seed and settings of stored and checks that
// the final order matches. The replay is neither saved nor published.
func (r *Runner) Replay(ctx context.Context, stored storage.Race, race Race) (Outcome, error) {
	ctx, span := r.tracer.Start(ctx, "race.replay")
	defer span.End()

	replayer := *r
	replayer.store = nil
	replayer.sinks = nil
	replayer.cadence = 0
	replayer.variance = stored.Variance
	if stored.Step > 0 {
		replayer.step = stored.Step
	}

	out, err := replayer.run(ctx, race, stored.Seed, false)
	if err != nil {
		span.RecordError(err)
		return Outcome{}, err
	}
	out.RaceID = stored.ID
	if err := compareResults(stored, out); err != nil {
		span.RecordError(err)
		return out, err
	}
	return out, nil
}

func compareResults(stored storage.Race, out Outcome) error {
	if len(stored.Results) != len(out.Results) {
		return apperrors.New(apperrors.CodeReplayMismatch,
			fmt.Sprintf("race %s: %d results, stored %d", stored.ID, len(out.Results), len(stored.Results)))
	}
	for i, want := range stored.Results {
		got := out.Results[i]
		switch {
		case int(got.ID) != want.ParticipantID:
			return apperrors.New(apperrors.CodeReplayMismatch,
				fmt.Sprintf("race %s: place %d is %s, stored %s", stored.ID, i+1, got.Name, want.Name))
		case got.Finished != want.Finished || got.DNF != want.DNF:
			return apperrors.New(apperrors.CodeReplayMismatch,
				fmt.Sprintf("race %s: %s finish status differs", stored.ID, got.Name))
		case math.Abs(got.FinishTime-want.FinishTime) > finishTolerance:
			return apperrors.New(apperrors.CodeReplayMismatch,
				fmt.Sprintf("race %s: %s finished in %.4fs, stored %.4fs", stored.ID, got.Name, got.FinishTime, want.FinishTime))
		}
	}
	return nil
}
