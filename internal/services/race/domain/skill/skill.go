// Package skill models participant skills: their effects, activation
// conditions, the built-in catalog, and the per-participant loadout that
// tracks activations, cooldowns and active effects.
package skill

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownSkill indicates a loadout names a skill missing from the catalog.
	ErrUnknownSkill = errors.New("unknown skill")
	// ErrDuplicateSkill indicates a catalog already holds a skill id.
	ErrDuplicateSkill = errors.New("duplicate skill")
	// ErrInvalidSkill indicates a skill definition cannot be used.
	ErrInvalidSkill = errors.New("invalid skill")
)

const (
	// maxChance caps the activation probability of rolled skills.
	maxChance = 0.95
	// inheritedBonus is added to the base chance of inherited skills.
	inheritedBonus = 0.05
	witScale       = 0.0003

	resistScale = 0.0002
	maxResist   = 0.5

	uniqueMagnitude    = 1.2
	evolutionMagnitude = 1.5
	evolutionDuration  = 1.3
)

// Rarity classifies a skill.
type Rarity int

const (
	RarityWhite Rarity = iota
	RarityGold
	RarityUnique
	RarityEvolution
)

// ParseRarity parses a rarity name.
func ParseRarity(value string) (Rarity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "white", "normal":
		return RarityWhite, nil
	case "gold", "rare":
		return RarityGold, nil
	case "unique":
		return RarityUnique, nil
	case "evolution", "evolved":
		return RarityEvolution, nil
	default:
		return 0, fmt.Errorf("%w: rarity %q", ErrInvalidSkill, value)
	}
}

// String returns the rarity name.
func (r Rarity) String() string {
	switch r {
	case RarityWhite:
		return "white"
	case RarityGold:
		return "gold"
	case RarityUnique:
		return "unique"
	case RarityEvolution:
		return "evolution"
	default:
		return "unknown"
	}
}

// EffectKind is what an effect changes.
type EffectKind int

const (
	// EffectSpeed adds Magnitude m/s to the target speed while active.
	EffectSpeed EffectKind = iota
	// EffectCurrentSpeed adds Magnitude m/s to the current speed at once.
	EffectCurrentSpeed
	// EffectAccel adds Magnitude m/s² to acceleration while active.
	EffectAccel
	// EffectRecovery restores Magnitude × MaxHP at once.
	EffectRecovery
	// EffectStaminaSave reduces HP drain by Magnitude while active.
	EffectStaminaSave
	// EffectDebuffSpeed lowers nearby rivals' target speed by Magnitude m/s.
	EffectDebuffSpeed
	// EffectVision widens the vision range by Magnitude × base range.
	EffectVision
	// EffectStartBonus shortens the start delay by Magnitude seconds.
	EffectStartBonus
)

var effectNames = []string{
	EffectSpeed:        "speed",
	EffectCurrentSpeed: "current_speed",
	EffectAccel:        "acceleration",
	EffectRecovery:     "recovery",
	EffectStaminaSave:  "stamina_save",
	EffectDebuffSpeed:  "debuff_speed",
	EffectVision:       "vision",
	EffectStartBonus:   "start_bonus",
}

// ParseEffectKind parses an effect kind name.
func ParseEffectKind(value string) (EffectKind, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "accel" {
		return EffectAccel, nil
	}
	for i, name := range effectNames {
		if name == v {
			return EffectKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: effect %q", ErrInvalidSkill, value)
}

// String returns the effect kind name.
func (k EffectKind) String() string {
	if k >= 0 && int(k) < len(effectNames) {
		return effectNames[k]
	}
	return "unknown"
}

// Instant reports whether the effect applies once at activation.
func (k EffectKind) Instant() bool {
	switch k {
	case EffectCurrentSpeed, EffectRecovery, EffectStartBonus:
		return true
	default:
		return false
	}
}

// Effect is one change a skill makes. Duration is ignored for instant
// effects.
type Effect struct {
	Kind      EffectKind
	Magnitude float64
	Duration  float64
}

// Skill is an immutable skill definition.
type Skill struct {
	ID         string
	Name       string
	Rarity     Rarity
	Effects    []Effect
	Conditions []Condition
	// Chance is the base activation probability; unique skills ignore it.
	Chance float64
	// Cooldown in seconds; zero means the skill fires once per race.
	Cooldown  float64
	Inherited bool
}

// Validate checks a definition before it joins a catalog.
func (s Skill) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidSkill)
	}
	if len(s.Effects) == 0 {
		return fmt.Errorf("%w: %s has no effects", ErrInvalidSkill, s.ID)
	}
	if s.Chance < 0 || s.Chance > 1 {
		return fmt.Errorf("%w: %s chance %v outside [0, 1]", ErrInvalidSkill, s.ID, s.Chance)
	}
	if s.Cooldown < 0 {
		return fmt.Errorf("%w: %s negative cooldown", ErrInvalidSkill, s.ID)
	}
	for _, e := range s.Effects {
		if !e.Kind.Instant() && e.Duration <= 0 {
			return fmt.Errorf("%w: %s %s effect needs a duration", ErrInvalidSkill, s.ID, e.Kind)
		}
	}
	return nil
}

// Scaled returns the effects with the rarity multipliers applied.
func (s Skill) Scaled() []Effect {
	out := make([]Effect, len(s.Effects))
	for i, e := range s.Effects {
		switch s.Rarity {
		case RarityUnique:
			e.Magnitude *= uniqueMagnitude
		case RarityEvolution:
			e.Magnitude *= evolutionMagnitude
			e.Duration *= evolutionDuration
		}
		out[i] = e
	}
	return out
}

// Resistance is the share of a rival debuff a participant with the given
// effective wit shrugs off, capped at one half.
func Resistance(wit float64) float64 {
	return min(max(wit, 0)*resistScale, maxResist)
}

// Resist weakens a received debuff: the magnitude shrinks by the full
// resistance and the duration by 30% of it.
func Resist(e Effect, wit float64) Effect {
	r := Resistance(wit)
	e.Magnitude *= 1 - r
	e.Duration *= 1 - r*0.3
	return e
}

// Chance returns the probability that the skill activates on a tick where
// its conditions hold, for a participant with wit already scaled by style
// aptitude:
//
//	min(0.95, (chance + 0.05 if inherited) × (1 + wit × 0.0003))
//
// Unique skills always activate.
func Chance(s Skill, wit float64) float64 {
	if s.Rarity == RarityUnique {
		return 1
	}
	base := s.Chance
	if s.Inherited {
		base += inheritedBonus
	}
	p := base * (1 + max(wit, 0)*witScale)
	return min(p, maxChance)
}

// Roller is the random source behind activation rolls. *rand.Rand satisfies
// it.
type Roller interface {
	Float64() float64
}

// Roll decides one activation attempt. Unique skills never consume a roll.
func Roll(s Skill, wit float64, rng Roller) bool {
	if s.Rarity == RarityUnique {
		return true
	}
	return rng.Float64() < Chance(s, wit)
}
