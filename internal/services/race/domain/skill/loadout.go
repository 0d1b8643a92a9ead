package skill

import (
	"math"
	"slices"
)

// ActiveEffect is a timed effect currently applied to a participant.
type ActiveEffect struct {
	SkillID   string
	Kind      EffectKind
	Magnitude float64
	Remaining float64
}

// Totals is the additive sum of a participant's active effects.
type Totals struct {
	Speed       float64
	Accel       float64
	StaminaSave float64
	Vision      float64
}

// Activation is a skill that fired this tick with its scaled effects.
type Activation struct {
	Skill   Skill
	Effects []Effect
}

// Loadout tracks one participant's skills through a race.
type Loadout struct {
	skills    []Skill
	cooldowns []float64
	used      []bool
	active    []ActiveEffect
}

// NewLoadout returns a loadout for skills in the given order.
func NewLoadout(skills []Skill) *Loadout {
	return &Loadout{
		skills:    slices.Clone(skills),
		cooldowns: make([]float64, len(skills)),
		used:      make([]bool, len(skills)),
	}
}

// Reset clears activations, cooldowns and active effects.
func (l *Loadout) Reset() {
	clear(l.cooldowns)
	clear(l.used)
	l.active = l.active[:0]
}

// Trigger tests every ready skill whose conditions hold and returns the ones
// that fire. Timed effects join the active list; instant and debuff effects
// are left for the caller to apply. A skill is ready when none of its
// effects is active, its cooldown has elapsed, and it has not already fired
// if it has no cooldown.
func (l *Loadout) Trigger(ctx Context, wit float64, rng Roller) []Activation {
	var fired []Activation
	for i, s := range l.skills {
		if l.cooldowns[i] > 0 || (l.used[i] && s.Cooldown <= 0) || l.isActive(s.ID) {
			continue
		}
		if !HoldsAll(s.Conditions, ctx) || !Roll(s, wit, rng) {
			continue
		}
		l.used[i] = true
		l.cooldowns[i] = s.Cooldown
		effects := s.Scaled()
		for _, e := range effects {
			if e.Kind.Instant() || e.Kind == EffectDebuffSpeed {
				continue
			}
			l.Apply(s.ID, e)
		}
		fired = append(fired, Activation{Skill: s, Effects: effects})
	}
	return fired
}

// Apply adds a timed effect to the active list.
func (l *Loadout) Apply(skillID string, e Effect) {
	l.active = append(l.active, ActiveEffect{
		SkillID:   skillID,
		Kind:      e.Kind,
		Magnitude: e.Magnitude,
		Remaining: e.Duration,
	})
}

func (l *Loadout) isActive(id string) bool {
	for _, a := range l.active {
		if a.SkillID == id {
			return true
		}
	}
	return false
}

// Totals sums the active effects by kind. A debuff received from a rival is
// stored as a negative speed effect.
func (l *Loadout) Totals() Totals {
	var t Totals
	for _, a := range l.active {
		switch a.Kind {
		case EffectSpeed:
			t.Speed += a.Magnitude
		case EffectAccel:
			t.Accel += a.Magnitude
		case EffectStaminaSave:
			t.StaminaSave += a.Magnitude
		case EffectVision:
			t.Vision += a.Magnitude
		}
	}
	return t
}

// ActiveSkills returns the sorted ids of skills with an active effect.
func (l *Loadout) ActiveSkills() []string {
	var ids []string
	for _, a := range l.active {
		if !slices.Contains(ids, a.SkillID) {
			ids = append(ids, a.SkillID)
		}
	}
	slices.Sort(ids)
	return ids
}

// Expire decrements effect durations and cooldowns by dt and drops effects
// whose remaining duration reached zero.
func (l *Loadout) Expire(dt float64) {
	for i := range l.cooldowns {
		l.cooldowns[i] = math.Max(l.cooldowns[i]-dt, 0)
	}
	kept := l.active[:0]
	for _, a := range l.active {
		a.Remaining -= dt
		if a.Remaining > 0 {
			kept = append(kept, a)
		}
	}
	l.active = kept
}
