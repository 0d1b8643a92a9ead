package skill

import (
	"fmt"
	"maps"
	"slices"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
)

// baseChance is the activation chance of the built-in rolled skills.
const baseChance = 0.3

// Catalog resolves skill ids to definitions.
type Catalog struct {
	skills map[string]Skill
}

// NewCatalog builds a catalog, rejecting invalid or duplicate definitions.
func NewCatalog(skills ...Skill) (*Catalog, error) {
	c := &Catalog{skills: make(map[string]Skill, len(skills))}
	for _, s := range skills {
		if err := c.add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := NewCatalog(builtin()...)
	if err != nil {
		panic(fmt.Sprintf("built-in skill catalog: %v", err))
	}
	return c
}

// With returns a copy of the catalog extended with extra definitions. Extra
// skills may not shadow existing ids.
func (c *Catalog) With(extra ...Skill) (*Catalog, error) {
	out := &Catalog{skills: maps.Clone(c.skills)}
	for _, s := range extra {
		if err := out.add(s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Catalog) add(s Skill) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, ok := c.skills[s.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSkill, s.ID)
	}
	c.skills[s.ID] = s
	return nil
}

// Lookup returns the definition for id.
func (c *Catalog) Lookup(id string) (Skill, error) {
	s, ok := c.skills[id]
	if !ok {
		return Skill{}, fmt.Errorf("%w: %s", ErrUnknownSkill, id)
	}
	return s, nil
}

// Resolve looks up every id in order.
func (c *Catalog) Resolve(ids []string) ([]Skill, error) {
	out := make([]Skill, 0, len(ids))
	for _, id := range ids {
		s, err := c.Lookup(id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// IDs returns the sorted skill ids.
func (c *Catalog) IDs() []string {
	return slices.Sorted(maps.Keys(c.skills))
}

func timed(kind EffectKind, magnitude, duration float64) Effect {
	return Effect{Kind: kind, Magnitude: magnitude, Duration: duration}
}

func instant(kind EffectKind, magnitude float64) Effect {
	return Effect{Kind: kind, Magnitude: magnitude}
}

func builtin() []Skill {
	phase := func(p course.Phase) Condition { return PhaseIs{Phase: p} }
	style := func(s profile.Style) Condition { return StyleIs{Style: s} }
	terrain := func(t Terrain) Condition { return TerrainIs{Terrain: t} }
	position := func(p Position) Condition { return PositionIn{Position: p} }

	white := func(id, name string, effects []Effect, conds ...Condition) Skill {
		return Skill{ID: id, Name: name, Rarity: RarityWhite, Effects: effects, Conditions: conds, Chance: baseChance}
	}
	gold := func(id, name string, effects []Effect, conds ...Condition) Skill {
		return Skill{ID: id, Name: name, Rarity: RarityGold, Effects: effects, Conditions: conds, Chance: baseChance}
	}
	unique := func(id, name string, effects []Effect, conds ...Condition) Skill {
		return Skill{ID: id, Name: name, Rarity: RarityUnique, Effects: effects, Conditions: conds, Chance: 1}
	}
	fx := func(e ...Effect) []Effect { return e }

	skills := []Skill{
		// Straights and corners.
		white("straightaway_adept", "Straightaway Adept", fx(timed(EffectSpeed, 0.15, 3.0)), terrain(TerrainStraight), SecondHalf{}),
		gold("beeline_burst", "Beeline Burst", fx(timed(EffectSpeed, 0.35, 3.0)), terrain(TerrainStraight), SecondHalf{}),
		white("corner_adept", "Corner Adept", fx(timed(EffectSpeed, 0.15, 2.4)), terrain(TerrainCorner)),
		gold("professor_of_curvature", "Professor of Curvature", fx(timed(EffectSpeed, 0.35, 2.4)), terrain(TerrainCorner)),
		white("downhill_speedster", "Downhill Speedster", fx(timed(EffectSpeed, 0.15, 3.0)), terrain(TerrainDownhill)),
		white("uphill_grinder", "Uphill Grinder", fx(timed(EffectAccel, 0.2, 3.0)), terrain(TerrainUphill)),

		// Final spurt.
		white("homestretch_haste", "Homestretch Haste", fx(timed(EffectSpeed, 0.15, 3.0)), phase(course.PhaseFinalSpurt)),
		gold("in_body_and_mind", "In Body and Mind", fx(timed(EffectSpeed, 0.35, 3.0)), phase(course.PhaseFinalSpurt)),
		white("final_push", "Final Push", fx(timed(EffectAccel, 0.2, 2.4)), RemainingWithin{Meters: 200}),

		// Style-specific.
		white("fast_paced", "Fast-Paced", fx(timed(EffectSpeed, 0.15, 3.0)), phase(course.PhaseMiddle), style(profile.StyleFrontRunner)),
		gold("escape_artist", "Escape Artist", fx(timed(EffectSpeed, 0.35, 3.0)), phase(course.PhaseMiddle), style(profile.StyleFrontRunner)),
		white("prepared_to_pass", "Prepared to Pass", fx(timed(EffectSpeed, 0.15, 2.4)), phase(course.PhaseLate), terrain(TerrainCorner), style(profile.StylePaceChaser)),
		gold("speed_star", "Speed Star", fx(timed(EffectSpeed, 0.35, 2.4)), phase(course.PhaseLate), terrain(TerrainCorner), style(profile.StylePaceChaser)),
		white("position_pilfer", "Position Pilfer", fx(timed(EffectSpeed, 0.15, 3.0)), phase(course.PhaseMiddle), style(profile.StyleLateSurger)),
		gold("fast_and_furious", "Fast & Furious", fx(timed(EffectSpeed, 0.35, 3.0)), phase(course.PhaseMiddle), style(profile.StyleLateSurger)),
		white("outer_swell", "Outer Swell", fx(timed(EffectSpeed, 0.15, 3.0)), phase(course.PhaseFinalSpurt), style(profile.StyleEndCloser), position(PositionBack)),
		gold("rising_dragon", "Rising Dragon", fx(timed(EffectSpeed, 0.35, 3.0)), phase(course.PhaseFinalSpurt), style(profile.StyleEndCloser), position(PositionBack)),

		// Acceleration.
		white("ramp_up", "Ramp Up", fx(timed(EffectAccel, 0.2, 3.0)), phase(course.PhaseMiddle), Passing{}),
		gold("its_on", "It's On!", fx(timed(EffectAccel, 0.4, 3.0)), phase(course.PhaseMiddle), Passing{}),
		white("early_lead", "Early Lead", fx(timed(EffectAccel, 0.1, 3.0)), phase(course.PhaseStart), style(profile.StyleFrontRunner)),
		white("slipstream", "Slipstream", fx(timed(EffectAccel, 0.2, 2.4)), BlockedAhead{}, phase(course.PhaseLate)),
		white("hold_your_ground", "Hold Your Ground", fx(timed(EffectAccel, 0.3, 2.4)), BeingOvertaken{}, phase(course.PhaseLate)),

		// Recovery.
		white("fighting_spirit", "Fighting Spirit",
			fx(instant(EffectRecovery, 0.01), timed(EffectSpeed, 0.15, 2.4)),
			phase(course.PhaseMiddle), position(PositionMidpack), RaceTypeIs{Category: course.CategoryMedium}, InChallenge{}),
		gold("burning_soul", "Burning Soul",
			fx(instant(EffectRecovery, 0.035), timed(EffectSpeed, 0.25, 2.4)),
			phase(course.PhaseMiddle), position(PositionMidpack), RaceTypeIs{Category: course.CategoryMedium}, InChallenge{}),
		white("corner_recovery", "Corner Recovery", fx(instant(EffectRecovery, 0.015)), terrain(TerrainCorner), phase(course.PhaseMiddle)),
		gold("swinging_maestro", "Swinging Maestro", fx(instant(EffectRecovery, 0.055)), terrain(TerrainCorner), phase(course.PhaseMiddle)),
		white("second_wind", "Second Wind", fx(instant(EffectRecovery, 0.02)), SectionRange{From: 11, To: 15}, MinHP{Fraction: 0.1}),

		// Stamina saving.
		white("moxie", "Moxie", fx(timed(EffectStaminaSave, 0.05, 3.0)), phase(course.PhaseMiddle)),
		gold("restless", "Restless", fx(timed(EffectStaminaSave, 0.15, 3.0)), phase(course.PhaseMiddle)),
		{ID: "soft_step", Name: "Soft Step", Rarity: RarityWhite, Effects: fx(timed(EffectStaminaSave, 0.05, 3.0)), Conditions: []Condition{terrain(TerrainCorner)}, Chance: baseChance, Cooldown: 30},
		{ID: "miraculous_step", Name: "Miraculous Step", Rarity: RarityGold, Effects: fx(timed(EffectStaminaSave, 0.15, 3.0)), Conditions: []Condition{terrain(TerrainCorner)}, Chance: baseChance, Cooldown: 30},

		// Start, vision and rivals.
		white("focus", "Focus", fx(instant(EffectStartBonus, 0.3)), phase(course.PhaseStart)),
		gold("concentration", "Concentration", fx(instant(EffectStartBonus, 0.5)), phase(course.PhaseStart)),
		white("nimble_navigator", "Nimble Navigator", fx(timed(EffectVision, 0.1, 3.0)), BlockedAhead{}),
		white("quick_burst", "Quick Burst", fx(instant(EffectCurrentSpeed, 0.3)), phase(course.PhaseLate), Passing{}),
		{ID: "intimidate", Name: "Intimidate", Rarity: RarityWhite, Effects: fx(timed(EffectDebuffSpeed, 0.15, 3.0)), Conditions: []Condition{phase(course.PhaseLate)}, Chance: baseChance, Cooldown: 30},
		gold("stop_right_there", "Stop Right There!", fx(timed(EffectDebuffSpeed, 0.25, 3.0)), phase(course.PhaseFinalSpurt), position(PositionFront)),

		// Unique.
		unique("special_week_unique", "Shooting Star", fx(timed(EffectSpeed, 0.55, 4.0)), phase(course.PhaseFinalSpurt)),
		unique("silence_suzuka_unique", "The View from the Lead Is Mine!", fx(timed(EffectSpeed, 0.50, 5.0)), phase(course.PhaseMiddle), position(PositionFront), style(profile.StyleFrontRunner)),
		unique("tokai_teio_unique", "Sky-High Teio Step", fx(timed(EffectAccel, 0.65, 3.5)), CornerIs{Number: 4}, SecondHalf{}),
		unique("rice_shower_unique", "Blue Rose Closer", fx(timed(EffectSpeed, 0.48, 4.5)), phase(course.PhaseLate), position(PositionMidpack)),

		// Evolved.
		{ID: "straightaway_adept_evolved", Name: "Straightaway Adept+", Rarity: RarityEvolution, Effects: fx(timed(EffectSpeed, 0.25, 4.0)), Conditions: []Condition{terrain(TerrainStraight), SecondHalf{}}, Chance: baseChance},
		{ID: "corner_adept_evolved", Name: "Corner Adept+", Rarity: RarityEvolution, Effects: fx(timed(EffectSpeed, 0.25, 3.0)), Conditions: []Condition{terrain(TerrainCorner)}, Chance: baseChance},
	}
	return skills
}
