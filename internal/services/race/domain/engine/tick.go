package engine

import (
	"fmt"
	"math"

	"github.com/louisbranch/racesim/internal/services/race/domain/behavior"
	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/lane"
	"github.com/louisbranch/racesim/internal/services/race/domain/physics"
	"github.com/louisbranch/racesim/internal/services/race/domain/skill"
)

const (
	// baseVision is the forward awareness range in meters.
	baseVision = 20.0
	// stallSpeed is the speed under which a running participant is out.
	stallSpeed = 1.0
	// debuffPrefix marks effects received from a rival's skill.
	debuffPrefix = "debuff:"
)

// Advance moves the race forward by dt seconds and returns the new snapshot.
//
// A zero step changes nothing. Advancing a finished race is a no-op. The
// first positive step starts the race.
func (e *Engine) Advance(dt float64) (Snapshot, error) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidStep, dt)
	}
	if dt == 0 || e.state == StateFinished {
		return e.Snapshot(), nil
	}
	if len(e.runners) == 0 {
		return Snapshot{}, ErrNoParticipants
	}
	if e.state == StateScheduled {
		e.start()
	}

	e.tick++
	t0 := e.elapsed
	field := e.field()

	leader := 0.0
	for _, v := range field {
		leader = math.Max(leader, v.Distance)
	}
	if p := course.PhaseAt(leader / e.cfg.Distance); p > e.phase {
		e.phase = p
	}

	constraints := lane.Resolve(field)
	for i, r := range e.runners {
		r.activated = r.activated[:0]
		if !r.active() {
			continue
		}
		e.step(r, field, constraints[i], t0, dt)
	}

	// Effects age before this tick's debuffs land so a debuff keeps its
	// whole duration.
	for _, r := range e.runners {
		r.loadout.Expire(dt)
	}
	e.deliverDebuffs(field)

	e.elapsed = t0 + dt
	e.rank()
	if e.running() == 0 {
		e.state = StateFinished
	}
	return e.Snapshot(), nil
}

// start draws the per-participant random values and leaves SCHEDULED.
func (e *Engine) start() {
	e.state = StateRunning
	if !e.variance {
		return
	}
	for _, r := range e.runners {
		e.drawVariance(r)
	}
}

// field captures every participant's position at the start of the tick.
func (e *Engine) field() []lane.Runner {
	out := make([]lane.Runner, len(e.runners))
	for i, r := range e.runners {
		out[i] = lane.Runner{
			ID:       int(r.id),
			Distance: r.distance,
			Lane:     r.lane,
			Speed:    r.speed,
			Active:   r.active(),
		}
	}
	return out
}

// step advances one running participant. Everything it reads about other
// participants comes from field.
func (e *Engine) step(r *runner, field []lane.Runner, con lane.Constraint, t0, dt float64) {
	length := e.cfg.Distance
	stats := r.profile.Effective(e.penalty)
	progress := r.distance / length
	section := course.SectionAt(progress)
	spot := e.layout.At(r.distance)
	phase := e.phase
	floor := physics.MinSpeed(e.base, stats.Guts)
	r.floor = floor

	e.updateRush(r, progress)

	totals := r.loadout.Totals()
	vision := baseVision * (1 + totals.Vision)

	pr := physics.Runner{
		Style:            r.profile.Style,
		DistanceAptitude: r.profile.DistanceAptitude,
		SurfaceAptitude:  r.profile.SurfaceAptitude,
		Stats:            stats,
	}

	in := behavior.Input{
		Style:        r.profile.Style,
		Stats:        stats,
		Raw:          r.profile.Stats,
		Phase:        phase,
		Section:      section,
		Distance:     r.distance,
		RaceDistance: length,
		HP:           r.hp,
		MaxHP:        r.maxHP,
		Spot:         spot,
		Rushing:      r.rush.active(),
		Vision:       vision,
		Dt:           dt,
		Field:        e.others(r, field),
	}
	mode := behavior.Select(in, &r.behavior, e.rng)
	r.mode = mode.Mode
	surge := r.behavior.Reposition(in, mode.Mode)
	r.surging = surge.Active()
	r.hp = physics.ClampHP(r.hp-surge.HPCost, r.maxHP)
	fatigueSpeed, fatigueAccel := behavior.FatiguePenalty(r.fatigue)

	fired := r.loadout.Trigger(skill.Context{
		Phase:        phase,
		Progress:     progress,
		Section:      section,
		Rank:         r.rank,
		PrevRank:     r.prevRank,
		FieldSize:    len(e.runners),
		Spot:         spot,
		Style:        r.profile.Style,
		Category:     e.cfg.Category(),
		InChallenge:  inChallenge(mode.Mode),
		BlockedAhead: r.blocked,
		HPFraction:   r.hpFraction(),
		Remaining:    length - r.distance,
	}, r.profile.ScaledWit(stats), e.rng)
	for _, a := range fired {
		r.activated = append(r.activated, a.Skill.ID)
		for _, eff := range a.Effects {
			switch eff.Kind {
			case skill.EffectCurrentSpeed:
				r.speed += eff.Magnitude
			case skill.EffectRecovery:
				r.hp = physics.ClampHP(r.hp+eff.Magnitude*r.maxHP, r.maxHP)
			case skill.EffectStartBonus:
				if t0 < 0.5 {
					r.delay *= 1 - math.Min(eff.Magnitude, 1)
				}
			case skill.EffectDebuffSpeed:
				e.debuffs = append(e.debuffs, debuff{
					from:      r.id,
					skillID:   a.Skill.ID,
					distance:  r.distance,
					vision:    vision,
					magnitude: eff.Magnitude,
					duration:  eff.Duration,
				})
			}
		}
	}
	totals = r.loadout.Totals()

	target := physics.TargetSpeed(pr, e.base, phase)
	if r.sectionRandom != nil {
		target *= r.sectionRandom[section-1]
	}
	target = mode.Target(target)*surge.SpeedMult*fatigueSpeed + totals.Speed
	if mode.Mode == behavior.ModeFailing {
		target = floor
	}
	target = physics.CapTarget(target, floor)
	r.target = target

	// The start delay eats into the tick before the participant moves.
	wait := math.Min(r.delay, dt)
	r.delay -= wait
	move := dt - wait

	if phase != course.PhaseStart || !physics.InStartDash(r.speed, e.base) {
		r.startDash = false
	}
	accel := mode.Accel(physics.Acceleration(pr, phase, spot.Uphill()))*fatigueAccel + totals.Accel
	if r.startDash && !r.lateStart {
		accel += physics.StartDashAccel
	}
	v := physics.Approach(r.speed, target, accel, physics.Deceleration(phase), move)
	if con.Capped {
		v = math.Min(v, math.Max(con.SpeedCap, floor))
	}
	// The floor holds from the first tick the participant moves.
	if move > 0 {
		v = math.Max(v, floor)
	}
	if r.startDash && !physics.InStartDash(v, e.base) {
		r.startDash = false
	}
	r.blocked = con.Capped

	d0 := r.distance
	d1 := d0 + v*move
	spent := move
	if d1 >= length && d1 > d0 {
		frac := (length - d0) / (d1 - d0)
		spent = frac * move
		r.finished = true
		r.finishTime = t0 + wait + spent
		r.distance = length
	} else {
		r.distance = d1
	}
	r.speed = v

	drain := physics.Drain(v, e.base, physics.DrainModifiers{
		Phase:       phase,
		Guts:        stats.Guts,
		Mode:        mode.HPMult,
		Rushing:     r.rush.active() && mode.Mode != behavior.ModeLeadDuel,
		Ground:      e.ground.HPMultiplier,
		StaminaSave: totals.StaminaSave,
	}.Multiplier(), spent)
	r.hp = physics.ClampHP(r.hp-drain, r.maxHP)
	r.fatigue = behavior.Fatigue(r.fatigue, mode.Mode, phase, r.rush.active(), spent)

	r.lane = lane.Move(r.lane, con.Capped, con, stats.Power, e.layout.MaxLane, move)

	if r.rush.active() {
		r.rush.remaining = math.Max(r.rush.remaining-dt, 0)
	}

	// The negated comparison also catches NaN.
	if !r.finished && move > 0 && !(r.speed >= stallSpeed) {
		e.markDNF(r, t0+dt, "stalled")
	}
}

// others returns the running participants other than r.
func (e *Engine) others(r *runner, field []lane.Runner) []behavior.Other {
	out := make([]behavior.Other, 0, len(field))
	for _, v := range field {
		if !v.Active || v.ID == int(r.id) {
			continue
		}
		out = append(out, behavior.Other{
			ID:       v.ID,
			Distance: v.Distance,
			Style:    e.runners[v.ID].profile.Style,
		})
	}
	return out
}

// deliverDebuffs applies queued rival debuffs as negative speed effects to
// every other running participant within the user's vision range. Each
// target's wit resists part of the effect.
func (e *Engine) deliverDebuffs(field []lane.Runner) {
	for _, d := range e.debuffs {
		for _, v := range field {
			target := e.runners[v.ID]
			if v.ID == int(d.from) || !target.active() {
				continue
			}
			if math.Abs(v.Distance-d.distance) > d.vision {
				continue
			}
			wit := target.profile.Effective(e.penalty).Wit
			eff := skill.Resist(skill.Effect{
				Kind:      skill.EffectSpeed,
				Magnitude: d.magnitude,
				Duration:  d.duration,
			}, wit)
			eff.Magnitude = -eff.Magnitude
			target.loadout.Apply(debuffPrefix+d.skillID, eff)
		}
	}
	e.debuffs = e.debuffs[:0]
}

func inChallenge(m behavior.Mode) bool {
	switch m {
	case behavior.ModeLeadDuel, behavior.ModeCompetitionFight,
		behavior.ModeSecureLead, behavior.ModeCompeteBeforeSpurt:
		return true
	default:
		return false
	}
}
