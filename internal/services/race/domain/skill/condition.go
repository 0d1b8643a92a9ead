package skill

import (
	"fmt"
	"strings"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
)

// Position is the rank bucket of a participant.
type Position int

const (
	PositionFront Position = iota
	PositionMidpack
	PositionBack
)

// ParsePosition parses a position bucket name.
func ParsePosition(value string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "front":
		return PositionFront, nil
	case "midpack", "mid", "middle":
		return PositionMidpack, nil
	case "back":
		return PositionBack, nil
	default:
		return 0, fmt.Errorf("%w: position %q", ErrInvalidSkill, value)
	}
}

// String returns the bucket name.
func (p Position) String() string {
	switch p {
	case PositionFront:
		return "front"
	case PositionMidpack:
		return "midpack"
	default:
		return "back"
	}
}

// PositionOf buckets a 1-based rank in a field of n: the first quarter is
// front, the last quarter back. The leader is always front.
func PositionOf(rank, n int) Position {
	if n <= 0 || rank <= 1 {
		return PositionFront
	}
	frac := float64(rank) / float64(n)
	switch {
	case frac <= 0.25:
		return PositionFront
	case frac > 0.75:
		return PositionBack
	default:
		return PositionMidpack
	}
}

// Terrain is the kind of ground a condition asks for.
type Terrain int

const (
	TerrainStraight Terrain = iota
	TerrainCorner
	TerrainUphill
	TerrainDownhill
)

// ParseTerrain parses a terrain name.
func ParseTerrain(value string) (Terrain, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "straight":
		return TerrainStraight, nil
	case "corner":
		return TerrainCorner, nil
	case "uphill":
		return TerrainUphill, nil
	case "downhill":
		return TerrainDownhill, nil
	default:
		return 0, fmt.Errorf("%w: terrain %q", ErrInvalidSkill, value)
	}
}

// Condition is one activation requirement. The set of variants is closed.
type Condition interface {
	condition()
}

type (
	// PhaseIs holds during one race phase.
	PhaseIs struct{ Phase course.Phase }
	// SecondHalf holds past the halfway point.
	SecondHalf struct{}
	// PositionIn holds while the participant's rank falls in a bucket.
	PositionIn struct{ Position Position }
	// TerrainIs holds on one kind of ground.
	TerrainIs struct{ Terrain Terrain }
	// StyleIs restricts a skill to one running style.
	StyleIs struct{ Style profile.Style }
	// RaceTypeIs restricts a skill to one distance category.
	RaceTypeIs struct{ Category course.Category }
	// InChallenge holds while the participant is in a competition mode.
	InChallenge struct{}
	// Passing holds on a tick where the participant gained a rank.
	Passing struct{}
	// BlockedAhead holds when the participant was front-blocked last tick.
	BlockedAhead struct{}
	// BeingOvertaken holds on a tick where the participant lost a rank.
	BeingOvertaken struct{}
	// MinHP holds while the HP fraction is at least Fraction.
	MinHP struct{ Fraction float64 }
	// RemainingWithin holds once at most Meters remain.
	RemainingWithin struct{ Meters float64 }
	// SectionRange holds in sections From through To, inclusive.
	SectionRange struct{ From, To int }
	// CornerIs holds inside one numbered corner.
	CornerIs struct{ Number int }
)

func (PhaseIs) condition()         {}
func (SecondHalf) condition()      {}
func (PositionIn) condition()      {}
func (TerrainIs) condition()       {}
func (StyleIs) condition()         {}
func (RaceTypeIs) condition()      {}
func (InChallenge) condition()     {}
func (Passing) condition()         {}
func (BlockedAhead) condition()    {}
func (BeingOvertaken) condition()  {}
func (MinHP) condition()           {}
func (RemainingWithin) condition() {}
func (SectionRange) condition()    {}
func (CornerIs) condition()        {}

// Context is the participant's situation when conditions are checked.
type Context struct {
	Phase    course.Phase
	Progress float64
	Section  int
	// Rank is 1-based; PrevRank is the rank at the end of the previous tick,
	// zero before the first tick.
	Rank         int
	PrevRank     int
	FieldSize    int
	Spot         course.Spot
	Style        profile.Style
	Category     course.Category
	InChallenge  bool
	BlockedAhead bool
	HPFraction   float64
	Remaining    float64
}

// Holds reports whether a single condition is met.
func Holds(cond Condition, ctx Context) bool {
	switch c := cond.(type) {
	case PhaseIs:
		return ctx.Phase == c.Phase
	case SecondHalf:
		return ctx.Progress >= 0.5
	case PositionIn:
		return PositionOf(ctx.Rank, ctx.FieldSize) == c.Position
	case TerrainIs:
		switch c.Terrain {
		case TerrainStraight:
			return ctx.Spot.Straight()
		case TerrainCorner:
			return !ctx.Spot.Straight()
		case TerrainUphill:
			return ctx.Spot.Uphill()
		case TerrainDownhill:
			return ctx.Spot.Downhill()
		}
		return false
	case StyleIs:
		return ctx.Style == c.Style
	case RaceTypeIs:
		return ctx.Category == c.Category
	case InChallenge:
		return ctx.InChallenge
	case Passing:
		return ctx.PrevRank > 0 && ctx.Rank < ctx.PrevRank
	case BlockedAhead:
		return ctx.BlockedAhead
	case BeingOvertaken:
		return ctx.PrevRank > 0 && ctx.Rank > ctx.PrevRank
	case MinHP:
		return ctx.HPFraction >= c.Fraction
	case RemainingWithin:
		return ctx.Remaining <= c.Meters
	case SectionRange:
		return ctx.Section >= c.From && ctx.Section <= c.To
	case CornerIs:
		return ctx.Spot.Corner == c.Number
	default:
		return false
	}
}

// HoldsAll reports whether every condition is met. An empty list holds.
func HoldsAll(conds []Condition, ctx Context) bool {
	for _, c := range conds {
		if !Holds(c, ctx) {
			return false
		}
	}
	return true
}
