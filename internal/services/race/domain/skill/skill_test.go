package skill

import (
	"errors"
	"math"
	"testing"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
)

type fixedRoller float64

func (f fixedRoller) Float64() float64 { return float64(f) }

type countingRoller struct {
	value float64
	calls int
}

func (c *countingRoller) Float64() float64 {
	c.calls++
	return c.value
}

func TestChance(t *testing.T) {
	tests := []struct {
		name  string
		skill Skill
		wit   float64
		want  float64
	}{
		{name: "no wit", skill: Skill{Chance: 0.3}, wit: 0, want: 0.3},
		{name: "wit scaled", skill: Skill{Chance: 0.3}, wit: 1000, want: 0.3 * 1.3},
		{name: "inherited bonus", skill: Skill{Chance: 0.3, Inherited: true}, wit: 0, want: 0.35},
		{name: "capped", skill: Skill{Chance: 0.9}, wit: 2000, want: 0.95},
		{name: "unique", skill: Skill{Rarity: RarityUnique, Chance: 0.1}, wit: 0, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Chance(tt.skill, tt.wit); math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("Chance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRollUniqueSkipsRandomSource(t *testing.T) {
	rng := &countingRoller{value: 0.99}
	if !Roll(Skill{Rarity: RarityUnique}, 0, rng) {
		t.Fatal("unique skill did not activate")
	}
	if rng.calls != 0 {
		t.Fatalf("rolls = %d, want 0", rng.calls)
	}
	if Roll(Skill{Chance: 0.3}, 0, rng) {
		t.Fatal("white skill activated on a failed roll")
	}
}

func TestScaled(t *testing.T) {
	base := []Effect{{Kind: EffectSpeed, Magnitude: 0.2, Duration: 3}}
	tests := []struct {
		rarity    Rarity
		magnitude float64
		duration  float64
	}{
		{RarityWhite, 0.2, 3},
		{RarityGold, 0.2, 3},
		{RarityUnique, 0.2 * 1.2, 3},
		{RarityEvolution, 0.2 * 1.5, 3 * 1.3},
	}
	for _, tt := range tests {
		t.Run(tt.rarity.String(), func(t *testing.T) {
			got := Skill{Rarity: tt.rarity, Effects: base}.Scaled()[0]
			if math.Abs(got.Magnitude-tt.magnitude) > 1e-12 || math.Abs(got.Duration-tt.duration) > 1e-12 {
				t.Fatalf("scaled = %+v, want magnitude %v duration %v", got, tt.magnitude, tt.duration)
			}
		})
	}
	if base[0].Magnitude != 0.2 {
		t.Fatal("Scaled mutated the definition")
	}
}

func TestHolds(t *testing.T) {
	ctx := Context{
		Phase:        course.PhaseLate,
		Progress:     0.7,
		Section:      17,
		Rank:         2,
		PrevRank:     3,
		FieldSize:    8,
		Spot:         course.Spot{Corner: 3, Slope: -1},
		Style:        profile.StyleLateSurger,
		Category:     course.CategoryMedium,
		BlockedAhead: true,
		HPFraction:   0.4,
		Remaining:    600,
	}
	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"phase match", PhaseIs{Phase: course.PhaseLate}, true},
		{"phase mismatch", PhaseIs{Phase: course.PhaseMiddle}, false},
		{"second half", SecondHalf{}, true},
		{"front bucket", PositionIn{Position: PositionFront}, true},
		{"back bucket", PositionIn{Position: PositionBack}, false},
		{"corner", TerrainIs{Terrain: TerrainCorner}, true},
		{"straight", TerrainIs{Terrain: TerrainStraight}, false},
		{"downhill", TerrainIs{Terrain: TerrainDownhill}, true},
		{"uphill", TerrainIs{Terrain: TerrainUphill}, false},
		{"style", StyleIs{Style: profile.StyleLateSurger}, true},
		{"race type", RaceTypeIs{Category: course.CategoryLong}, false},
		{"challenge", InChallenge{}, false},
		{"passing", Passing{}, true},
		{"being overtaken", BeingOvertaken{}, false},
		{"blocked", BlockedAhead{}, true},
		{"min hp met", MinHP{Fraction: 0.4}, true},
		{"min hp missed", MinHP{Fraction: 0.5}, false},
		{"remaining", RemainingWithin{Meters: 600}, true},
		{"remaining missed", RemainingWithin{Meters: 400}, false},
		{"section range", SectionRange{From: 11, To: 17}, true},
		{"section outside", SectionRange{From: 18, To: 24}, false},
		{"corner number", CornerIs{Number: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Holds(tt.cond, ctx); got != tt.want {
				t.Fatalf("Holds(%T) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func TestPassingNeedsPreviousRank(t *testing.T) {
	ctx := Context{Rank: 1}
	if Holds(Passing{}, ctx) || Holds(BeingOvertaken{}, ctx) {
		t.Fatal("rank change detected on the first tick")
	}
}

func TestPositionOf(t *testing.T) {
	tests := []struct {
		rank, n int
		want    Position
	}{
		{1, 8, PositionFront},
		{2, 8, PositionFront},
		{3, 8, PositionMidpack},
		{6, 8, PositionMidpack},
		{7, 8, PositionBack},
		{1, 1, PositionFront},
		{1, 2, PositionFront},
		{2, 2, PositionBack},
	}
	for _, tt := range tests {
		if got := PositionOf(tt.rank, tt.n); got != tt.want {
			t.Fatalf("PositionOf(%d, %d) = %v, want %v", tt.rank, tt.n, got, tt.want)
		}
	}
}

func TestLoadoutTriggerAndExpire(t *testing.T) {
	speed := Skill{
		ID:         "burst",
		Rarity:     RarityWhite,
		Effects:    []Effect{{Kind: EffectSpeed, Magnitude: 0.2, Duration: 1}, {Kind: EffectRecovery, Magnitude: 0.05}},
		Conditions: []Condition{PhaseIs{Phase: course.PhaseMiddle}},
		Chance:     0.5,
	}
	l := NewLoadout([]Skill{speed})
	ctx := Context{Phase: course.PhaseStart}

	if fired := l.Trigger(ctx, 0, fixedRoller(0)); len(fired) != 0 {
		t.Fatalf("fired = %v, want none before conditions hold", fired)
	}
	ctx.Phase = course.PhaseMiddle
	fired := l.Trigger(ctx, 0, fixedRoller(0))
	if len(fired) != 1 || len(fired[0].Effects) != 2 {
		t.Fatalf("fired = %+v, want one activation with two effects", fired)
	}
	if got := l.Totals().Speed; got != 0.2 {
		t.Fatalf("speed total = %v, want 0.2", got)
	}
	if got := l.ActiveSkills(); len(got) != 1 || got[0] != "burst" {
		t.Fatalf("active skills = %v, want [burst]", got)
	}

	l.Expire(0.5)
	if got := l.Totals().Speed; got != 0.2 {
		t.Fatalf("speed total after half duration = %v, want 0.2", got)
	}
	l.Expire(0.5)
	if got := l.Totals().Speed; got != 0 {
		t.Fatalf("speed total after expiry = %v, want 0", got)
	}
	if fired := l.Trigger(ctx, 0, fixedRoller(0)); len(fired) != 0 {
		t.Fatal("skill without cooldown fired twice")
	}

	l.Reset()
	if fired := l.Trigger(ctx, 0, fixedRoller(0)); len(fired) != 1 {
		t.Fatal("skill did not fire after reset")
	}
}

func TestLoadoutCooldown(t *testing.T) {
	s := Skill{
		ID:       "save",
		Effects:  []Effect{{Kind: EffectStaminaSave, Magnitude: 0.1, Duration: 1}},
		Chance:   1,
		Cooldown: 3,
	}
	l := NewLoadout([]Skill{s})
	if len(l.Trigger(Context{}, 0, fixedRoller(0))) != 1 {
		t.Fatal("first activation missing")
	}
	l.Expire(1)
	if len(l.Trigger(Context{}, 0, fixedRoller(0))) != 0 {
		t.Fatal("skill fired during cooldown")
	}
	l.Expire(2)
	if len(l.Trigger(Context{}, 0, fixedRoller(0))) != 1 {
		t.Fatal("skill did not fire after cooldown")
	}
}

func TestLoadoutStacksAdditively(t *testing.T) {
	l := NewLoadout(nil)
	l.Apply("a", Effect{Kind: EffectSpeed, Magnitude: 0.2, Duration: 2})
	l.Apply("b", Effect{Kind: EffectSpeed, Magnitude: 0.3, Duration: 2})
	l.Apply("rival", Effect{Kind: EffectSpeed, Magnitude: -0.1, Duration: 2})
	l.Apply("c", Effect{Kind: EffectStaminaSave, Magnitude: 0.1, Duration: 2})
	got := l.Totals()
	if math.Abs(got.Speed-0.4) > 1e-12 || got.StaminaSave != 0.1 {
		t.Fatalf("totals = %+v, want speed 0.4 save 0.1", got)
	}
}

func TestLoadoutKeepsDebuffsForCaller(t *testing.T) {
	s := Skill{
		ID:      "glare",
		Effects: []Effect{{Kind: EffectDebuffSpeed, Magnitude: 0.2, Duration: 2}},
		Chance:  1,
	}
	l := NewLoadout([]Skill{s})
	fired := l.Trigger(Context{}, 0, fixedRoller(0))
	if len(fired) != 1 {
		t.Fatal("debuff skill did not fire")
	}
	if got := l.ActiveSkills(); len(got) != 0 {
		t.Fatalf("active = %v, want debuff left to the caller", got)
	}
}

func TestResist(t *testing.T) {
	tests := []struct {
		wit       float64
		magnitude float64
		duration  float64
	}{
		{0, 0.3, 4},
		{1000, 0.3 * 0.8, 4 * 0.94},
		{2500, 0.15, 4 * 0.85},
		{9000, 0.15, 4 * 0.85},
	}
	for _, tt := range tests {
		got := Resist(Effect{Kind: EffectSpeed, Magnitude: 0.3, Duration: 4}, tt.wit)
		if math.Abs(got.Magnitude-tt.magnitude) > 1e-12 || math.Abs(got.Duration-tt.duration) > 1e-12 {
			t.Fatalf("Resist(wit %v) = %v/%vs, want %v/%vs", tt.wit, got.Magnitude, got.Duration, tt.magnitude, tt.duration)
		}
	}
}

func TestCatalog(t *testing.T) {
	c := Default()
	if _, err := c.Lookup("special_week_unique"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if _, err := c.Lookup("missing"); !errors.Is(err, ErrUnknownSkill) {
		t.Fatalf("Lookup missing = %v, want ErrUnknownSkill", err)
	}
	if _, err := c.Resolve([]string{"focus", "missing"}); !errors.Is(err, ErrUnknownSkill) {
		t.Fatalf("Resolve = %v, want ErrUnknownSkill", err)
	}
	ids := c.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("ids not sorted: %q before %q", ids[i-1], ids[i])
		}
	}

	custom := Skill{ID: "card_special", Effects: []Effect{{Kind: EffectRecovery, Magnitude: 0.1}}, Rarity: RarityUnique}
	extended, err := c.With(custom)
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if _, err := extended.Lookup("card_special"); err != nil {
		t.Fatalf("Lookup custom: %v", err)
	}
	if _, err := c.Lookup("card_special"); err == nil {
		t.Fatal("With mutated the base catalog")
	}
	if _, err := c.With(Skill{ID: "focus", Effects: custom.Effects}); !errors.Is(err, ErrDuplicateSkill) {
		t.Fatalf("With duplicate = %v, want ErrDuplicateSkill", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		skill Skill
	}{
		{"missing id", Skill{Effects: []Effect{{Kind: EffectRecovery}}}},
		{"no effects", Skill{ID: "x"}},
		{"timed without duration", Skill{ID: "x", Effects: []Effect{{Kind: EffectSpeed, Magnitude: 1}}}},
		{"chance above one", Skill{ID: "x", Chance: 2, Effects: []Effect{{Kind: EffectRecovery}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.skill.Validate(); !errors.Is(err, ErrInvalidSkill) {
				t.Fatalf("Validate = %v, want ErrInvalidSkill", err)
			}
		})
	}
}

func TestParseNames(t *testing.T) {
	if k, err := ParseEffectKind("accel"); err != nil || k != EffectAccel {
		t.Fatalf("ParseEffectKind(accel) = %v, %v", k, err)
	}
	if k, err := ParseEffectKind("Stamina_Save"); err != nil || k != EffectStaminaSave {
		t.Fatalf("ParseEffectKind(Stamina_Save) = %v, %v", k, err)
	}
	if _, err := ParseEffectKind("teleport"); !errors.Is(err, ErrInvalidSkill) {
		t.Fatalf("ParseEffectKind(teleport) = %v, want ErrInvalidSkill", err)
	}
	if r, err := ParseRarity("evolved"); err != nil || r != RarityEvolution {
		t.Fatalf("ParseRarity(evolved) = %v, %v", r, err)
	}
	if p, err := ParsePosition("mid"); err != nil || p != PositionMidpack {
		t.Fatalf("ParsePosition(mid) = %v, %v", p, err)
	}
	if tr, err := ParseTerrain("downhill"); err != nil || tr != TerrainDownhill {
		t.Fatalf("ParseTerrain(downhill) = %v, %v", tr, err)
	}
}
