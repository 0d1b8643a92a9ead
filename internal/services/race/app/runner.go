// Package app drives races: it owns the tick loop around an engine, fans
// frames out to sinks, persists finished races and replays stored ones.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	apperrors "github.com/louisbranch/racesim/internal/platform/errors"
	"github.com/louisbranch/racesim/internal/platform/id"
	"github.com/louisbranch/racesim/internal/services/race/domain/behavior"
	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/engine"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
	"github.com/louisbranch/racesim/internal/services/race/domain/skill"
	"github.com/louisbranch/racesim/internal/services/race/domain/summary"
	"github.com/louisbranch/racesim/internal/services/race/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultStep is the simulated time per tick in seconds.
	DefaultStep = 0.05
	// DefaultMaxTicks bounds a single race.
	DefaultMaxTicks = 200000

	tracerName = "github.com/louisbranch/racesim/internal/services/race/app"
)

// ErrTickLimit indicates a race that did not finish within MaxTicks.
var ErrTickLimit = errors.New("race exceeded tick limit")

// Card is the race card a race was built from, kept for replays.
type Card struct {
	Name   string
	Format string
	Source string
}

// Race is everything needed to run one race.
type Race struct {
	Name     string
	Config   course.Config
	Catalog  *skill.Catalog
	Entrants []profile.Profile
	Card     Card
}

// Config controls race execution.
type Config struct {
	// Step is the simulated seconds per tick.
	Step     float64
	Variance bool
	// MaxTicks aborts races that run longer; zero means DefaultMaxTicks.
	MaxTicks int
	// Cadence is the wall-clock pause between published frames.
	Cadence time.Duration
	// Parallel caps concurrent races in RunBatch; zero means no cap.
	Parallel int
	Verbose  bool
	Logger   *log.Logger
	// Store persists finished races when set.
	Store storage.RaceStore
	Sinks []FrameSink
}

// Outcome is the result of one finished race.
type Outcome struct {
	RaceID  string
	Name    string
	Seed    int64
	Ticks   int
	Elapsed float64
	Results []engine.Result
	Report  summary.Report
	// Saved is true once the race is in the store.
	Saved bool
}

// Runner runs races.
type Runner struct {
	step     float64
	variance bool
	maxTicks int
	cadence  time.Duration
	parallel int
	verbose  bool
	logger   *log.Logger
	store    storage.RaceStore
	sinks    []FrameSink
	tracer   trace.Tracer
	now      func() time.Time
}

// NewRunner validates cfg and returns a runner.
func NewRunner(cfg Config) (*Runner, error) {
	step := cfg.Step
	if step == 0 {
		step = DefaultStep
	}
	if step < 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, apperrors.New(apperrors.CodeInvalidConfig, fmt.Sprintf("tick step must be positive, got %v", cfg.Step))
	}
	if cfg.MaxTicks < 0 || cfg.Parallel < 0 || cfg.Cadence < 0 {
		return nil, apperrors.New(apperrors.CodeInvalidConfig, "max ticks, parallel and cadence must not be negative")
	}
	maxTicks := cfg.MaxTicks
	if maxTicks == 0 {
		maxTicks = DefaultMaxTicks
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	return &Runner{
		step:     step,
		variance: cfg.Variance,
		maxTicks: maxTicks,
		cadence:  cfg.Cadence,
		parallel: cfg.Parallel,
		verbose:  cfg.Verbose,
		logger:   logger,
		store:    cfg.Store,
		sinks:    cfg.Sinks,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}, nil
}

// Run runs race with seed, publishing every frame and saving the result.
func (r *Runner) Run(ctx context.Context, race Race, seed int64) (Outcome, error) {
	return r.run(ctx, race, seed, true)
}

func (r *Runner) run(ctx context.Context, race Race, seed int64, publish bool) (out Outcome, err error) {
	ctx, span := r.tracer.Start(ctx, "race.run", trace.WithAttributes(
		attribute.String("race.name", race.Name),
		attribute.Int64("race.seed", seed),
		attribute.Float64("race.distance", race.Config.Distance),
		attribute.Int("race.entrants", len(race.Entrants)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
	}()

	raceID, err := id.NewID()
	if err != nil {
		return Outcome{}, err
	}
	e, err := r.newEngine(race, seed)
	if err != nil {
		return Outcome{}, err
	}

	r.logf("race %s start: %s, %d entrants, seed %d", raceID, race.Name, len(race.Entrants), seed)
	recorder := summary.NewRecorder(race.Config.Distance)
	watch := newWatcher(e.Snapshot())
	var snap engine.Snapshot
	for !e.IsFinished() {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		if snap.Tick >= r.maxTicks {
			return Outcome{}, fmt.Errorf("race %s: %w (%d)", race.Name, ErrTickLimit, r.maxTicks)
		}
		snap, err = e.Advance(r.step)
		if err != nil {
			return Outcome{}, fmt.Errorf("advance race %s: %w", race.Name, err)
		}
		recorder.Record(snap)
		if r.verbose {
			watch.observe(snap, r.logf)
		}
		if !publish {
			continue
		}
		frame := Frame{RaceID: raceID, Name: race.Name, Distance: race.Config.Distance, Snapshot: snap}
		for _, sink := range r.sinks {
			if err := sink.Publish(ctx, frame); err != nil {
				return Outcome{}, fmt.Errorf("publish frame %d: %w", snap.Tick, err)
			}
		}
		if err := r.pause(ctx); err != nil {
			return Outcome{}, err
		}
	}

	out = Outcome{
		RaceID:  raceID,
		Name:    race.Name,
		Seed:    e.Seed(),
		Ticks:   snap.Tick,
		Elapsed: snap.Elapsed,
		Results: e.Results(),
		Report:  recorder.Report(),
	}
	span.SetAttributes(attribute.Int("race.ticks", out.Ticks))
	if w := out.Report.Winner; w != nil {
		span.SetAttributes(attribute.String("race.winner", w.Name))
	}
	r.logf("race %s done: %d ticks, %.2fs", raceID, out.Ticks, out.Elapsed)

	if r.store != nil {
		if err := r.save(ctx, race, out); err != nil {
			return out, err
		}
		out.Saved = true
	}
	return out, nil
}

func (r *Runner) newEngine(race Race, seed int64) (*engine.Engine, error) {
	opts := []engine.Option{engine.WithSeed(seed), engine.WithCatalog(race.Catalog)}
	if r.variance {
		opts = append(opts, engine.WithVariance())
	}
	e, err := engine.New(race.Config, opts...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidConfig, "race "+race.Name, err)
	}
	if len(race.Entrants) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidConfig, "race "+race.Name, engine.ErrNoParticipants)
	}
	for _, p := range race.Entrants {
		if _, err := e.Register(p); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInvalidConfig, "register "+p.Name, err)
		}
	}
	return e, nil
}

func (r *Runner) pause(ctx context.Context) error {
	if r.cadence <= 0 {
		return nil
	}
	timer := time.NewTimer(r.cadence)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}

// watcher logs what changed between consecutive snapshots.
type watcher struct {
	phase    course.Phase
	modes    map[engine.ParticipantID]behavior.Mode
	finished map[engine.ParticipantID]bool
}

func newWatcher(s engine.Snapshot) *watcher {
	w := &watcher{
		phase:    s.Phase,
		modes:    make(map[engine.ParticipantID]behavior.Mode, len(s.Participants)),
		finished: make(map[engine.ParticipantID]bool, len(s.Participants)),
	}
	for _, p := range s.Participants {
		w.modes[p.ID] = p.Mode
	}
	return w
}

func (w *watcher) observe(s engine.Snapshot, logf func(string, ...any)) {
	if s.Phase != w.phase {
		logf("%7.2fs phase %s", s.Elapsed, s.Phase)
		w.phase = s.Phase
	}
	for _, p := range s.Participants {
		for _, name := range p.Activated {
			logf("%7.2fs %s activated %s", s.Elapsed, p.Name, name)
		}
		if prev := w.modes[p.ID]; prev != p.Mode {
			logf("%7.2fs %s mode %s -> %s", s.Elapsed, p.Name, prev, p.Mode)
			w.modes[p.ID] = p.Mode
		}
		if w.finished[p.ID] {
			continue
		}
		switch {
		case p.Finished:
			logf("%7.2fs %s finished %d in %.2fs", s.Elapsed, p.Name, p.Rank, p.FinishTime)
			w.finished[p.ID] = true
		case p.DNF:
			logf("%7.2fs %s did not finish: %s", s.Elapsed, p.Name, p.DNFReason)
			w.finished[p.ID] = true
		}
	}
}
