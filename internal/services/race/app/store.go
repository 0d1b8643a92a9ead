package app

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/racesim/internal/platform/errors"
	"github.com/louisbranch/racesim/internal/services/race/domain/engine"
	"github.com/louisbranch/racesim/internal/services/race/domain/summary"
	"github.com/louisbranch/racesim/internal/services/race/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errNoStore = apperrors.New(apperrors.CodeInvalidConfig, "race store is not configured")

func (r *Runner) save(ctx context.Context, race Race, out Outcome) error {
	ctx, span := r.tracer.Start(ctx, "race.save", trace.WithAttributes(attribute.String("race.id", out.RaceID)))
	defer span.End()

	record := storage.Race{
		ID:         out.RaceID,
		Name:       race.Name,
		CardName:   race.Card.Name,
		CardFormat: race.Card.Format,
		CardSource: race.Card.Source,
		Seed:       out.Seed,
		Variance:   r.variance,
		Step:       r.step,
		Distance:   race.Config.Distance,
		Course:     race.Config.Course,
		Ticks:      out.Ticks,
		Elapsed:    out.Elapsed,
		CreatedAt:  r.now().UTC(),
		Results:    make([]storage.Result, 0, len(out.Results)),
	}
	entries := make(map[engine.ParticipantID]summary.Entry, len(out.Report.Entries))
	for _, entry := range out.Report.Entries {
		entries[entry.ID] = entry
	}
	for _, res := range out.Results {
		line := storage.Result{
			Rank:          res.Rank,
			ParticipantID: int(res.ID),
			Name:          res.Name,
			Gate:          res.Gate,
			Finished:      res.Finished,
			FinishTime:    res.FinishTime,
			DNF:           res.DNF,
			DNFReason:     res.DNFReason,
			Distance:      res.Distance,
		}
		if entry, ok := entries[res.ID]; ok {
			line.TopSpeed = entry.TopSpeed
			if entry.HasClosing {
				line.Closing = entry.Closing
			}
		}
		record.Results = append(record.Results, line)
	}

	if err := r.store.SaveRace(ctx, record); err != nil {
		span.RecordError(err)
		if errors.Is(err, storage.ErrAlreadyExists) {
			return apperrors.Wrap(apperrors.CodeConflict, "save race "+out.RaceID, err)
		}
		return fmt.Errorf("save race %s: %w", out.RaceID, err)
	}
	r.logf("race %s saved", out.RaceID)
	return nil
}

// Stored returns a saved race with its results.
func (r *Runner) Stored(ctx context.Context, raceID string) (storage.Race, error) {
	if r.store == nil {
		return storage.Race{}, errNoStore
	}
	race, err := r.store.GetRace(ctx, raceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Race{}, apperrors.Wrap(apperrors.CodeNotFound, "race "+raceID, err)
		}
		return storage.Race{}, err
	}
	return race, nil
}

// History returns up to limit saved races, newest first.
func (r *Runner) History(ctx context.Context, limit int) ([]storage.Race, error) {
	if r.store == nil {
		return nil, errNoStore
	}
	if limit <= 0 {
		return nil, apperrors.New(apperrors.CodeInvalidConfig, fmt.Sprintf("history limit must be positive, got %d", limit))
	}
	return r.store.ListRaces(ctx, limit)
}
