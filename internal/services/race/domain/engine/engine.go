// Package engine advances a race in discrete time steps.
//
// An Engine owns one race: its configuration, the registered participants
// and a seeded random source. It has no goroutines and no shared state;
// callers drive it by calling Advance and read the returned snapshots.
//
// # Determinism
//
// Given the same configuration, profiles, seed and sequence of steps, two
// engines produce identical snapshots. Every random draw comes from the
// engine's own generator, in participant id order.
package engine

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/louisbranch/racesim/internal/services/race/domain/behavior"
	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/physics"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
	"github.com/louisbranch/racesim/internal/services/race/domain/skill"
)

var (
	// ErrInvalidStep indicates a negative or NaN time step.
	ErrInvalidStep = errors.New("invalid time step")
	// ErrRaceStarted indicates a registration after the first step.
	ErrRaceStarted = errors.New("race already started")
	// ErrNoParticipants indicates a step on an empty race.
	ErrNoParticipants = errors.New("no participants registered")
	// ErrDuplicateGate indicates two participants share a gate.
	ErrDuplicateGate = errors.New("duplicate gate")
	// ErrUnknownParticipant indicates an id that was never registered.
	ErrUnknownParticipant = errors.New("unknown participant")
	// ErrUnknownSkill indicates a loadout names a skill missing from the
	// catalog.
	ErrUnknownSkill = skill.ErrUnknownSkill
)

// ParticipantID is the stable index assigned at registration.
type ParticipantID int

// State is the race lifecycle state.
type State int

const (
	StateScheduled State = iota
	StateRunning
	StateFinished
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateScheduled:
		return "SCHEDULED"
	case StateRunning:
		return "RUNNING"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed sets the seed of the engine's random source.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithCatalog resolves loadouts against c instead of the built-in catalog.
func WithCatalog(c *skill.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithVariance enables start delays, per-section speed variance and
// rushing.
func WithVariance() Option {
	return func(e *Engine) {
		e.variance = true
	}
}

// Engine simulates one race.
type Engine struct {
	cfg      course.Config
	layout   course.Layout
	ground   course.Ground
	penalty  profile.Penalty
	base     float64
	catalog  *skill.Catalog
	seed     int64
	variance bool

	rng     *rand.Rand
	state   State
	phase   course.Phase
	tick    int
	elapsed float64
	runners []*runner
	debuffs []debuff
}

// New validates cfg and returns an engine in the SCHEDULED state.
func New(cfg course.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	ground := cfg.Ground()
	e := &Engine{
		cfg:     cfg,
		layout:  cfg.Layout(),
		ground:  ground,
		penalty: profile.Penalty{Speed: ground.SpeedPenalty, Power: ground.PowerPenalty},
		base:    cfg.BaseSpeed(),
		catalog: skill.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rng = rand.New(rand.NewSource(e.seed))
	return e, nil
}

// Config returns the race configuration.
func (e *Engine) Config() course.Config {
	return e.cfg
}

// Seed returns the seed of the engine's random source.
func (e *Engine) Seed() int64 {
	return e.seed
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// IsFinished reports whether every participant has finished or withdrawn.
func (e *Engine) IsFinished() bool {
	return e.state == StateFinished
}

// Register adds a participant before the race starts.
func (e *Engine) Register(p profile.Profile) (ParticipantID, error) {
	if e.state != StateScheduled {
		return 0, fmt.Errorf("register %s: %w", p.Name, ErrRaceStarted)
	}
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}
	for _, r := range e.runners {
		if r.profile.Gate == p.Gate {
			return 0, fmt.Errorf("register %s: %w: gate %d", p.Name, ErrDuplicateGate, p.Gate)
		}
	}
	skills, err := e.catalog.Resolve(p.Skills)
	if err != nil {
		return 0, fmt.Errorf("register %s: %w", p.Name, err)
	}
	p.Stats = p.Stats.Clamped()
	r := &runner{
		id:      ParticipantID(len(e.runners)),
		profile: p,
		loadout: skill.NewLoadout(skills),
	}
	e.init(r)
	e.runners = append(e.runners, r)
	return r.id, nil
}

// Withdraw marks a participant as did-not-finish. Withdrawing a participant
// that already finished or withdrew is a no-op.
func (e *Engine) Withdraw(id ParticipantID, reason string) error {
	r, err := e.runner(id)
	if err != nil {
		return err
	}
	if r.finished || r.dnf {
		return nil
	}
	e.markDNF(r, e.elapsed, reason)
	if e.state == StateRunning && e.running() == 0 {
		e.state = StateFinished
	}
	return nil
}

// Reset returns the race to SCHEDULED with every participant at the gate and
// the random source reseeded.
func (e *Engine) Reset() {
	e.rng = rand.New(rand.NewSource(e.seed))
	e.state = StateScheduled
	e.phase = course.PhaseStart
	e.tick = 0
	e.elapsed = 0
	e.debuffs = nil
	for _, r := range e.runners {
		e.init(r)
	}
}

func (e *Engine) runner(id ParticipantID) (*runner, error) {
	if id < 0 || int(id) >= len(e.runners) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownParticipant, id)
	}
	return e.runners[id], nil
}

func (e *Engine) running() int {
	n := 0
	for _, r := range e.runners {
		if r.active() {
			n++
		}
	}
	return n
}

// init puts r at the gate with full HP.
func (e *Engine) init(r *runner) {
	stats := r.profile.Effective(e.penalty)
	r.maxHP = physics.MaxHP(r.profile.Style, stats.Stamina, r.profile.Stats.Stamina, e.cfg.Distance)
	r.hp = r.maxHP
	r.fatigue = 0
	r.distance = 0
	r.speed = physics.StartSpeed
	r.target = 0
	r.floor = physics.MinSpeed(e.base, stats.Guts)
	r.lane = e.layout.InitialLane(r.profile.Gate)
	r.mode = behavior.ModeNormal
	r.behavior = behavior.State{}
	r.startDash = true
	r.surging = false
	r.delay = 0
	r.lateStart = false
	r.sectionRandom = nil
	r.rush = rushState{}
	r.blocked = false
	r.rank = int(r.id) + 1
	r.prevRank = 0
	r.finished = false
	r.finishTime = 0
	r.dnf = false
	r.dnfTime = 0
	r.dnfReason = ""
	r.activated = nil
	r.loadout.Reset()
}

func (e *Engine) markDNF(r *runner, at float64, reason string) {
	r.dnf = true
	r.dnfTime = at
	r.dnfReason = reason
	r.mode = behavior.ModeNormal
}
