package behavior

import (
	"math"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/physics"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
)

const (
	positionKeepLastSection = 10
	competeFirstSection     = 11
	competeLastSection      = 15

	speedUpLead       = 4.5
	leadDuelRange     = 3.75
	fightRange        = 3.0
	fightHold         = 2.0
	fightMinHP        = 0.15
	secureLeadRange   = 5.0
	competeMinHP      = 0.5
	conservationEvery = 2.0
)

// Roller is the random source behind elective modes. *rand.Rand satisfies it.
type Roller interface {
	Float64() float64
}

// Other is another running participant as seen from the start-of-tick
// snapshot.
type Other struct {
	ID       int
	Distance float64
	Style    profile.Style
}

// Input is everything the selector reads for one participant and one tick.
type Input struct {
	Style        profile.Style
	Stats        profile.EffectiveStats
	Raw          profile.Stats
	Phase        course.Phase
	Section      int
	Distance     float64
	RaceDistance float64
	HP           float64
	MaxHP        float64
	Spot         course.Spot
	Rushing      bool
	// Vision is the forward awareness range in meters.
	Vision float64
	Dt     float64
	// Field holds the other running participants.
	Field []Other
}

func (in Input) hpFraction() float64 {
	if in.MaxHP <= 0 {
		return 0
	}
	return in.HP / in.MaxHP
}

func (in Input) progress() float64 {
	if in.RaceDistance <= 0 {
		return 0
	}
	return in.Distance / in.RaceDistance
}

// State carries the timers and held modes of one participant between ticks.
type State struct {
	// Proximity is how long another runner has stayed within fight range on
	// the final straight.
	Proximity float64
	// Downhill is true while the downhill acceleration mode is held.
	Downhill bool
	// Conserving is the outcome of the last conservation check.
	Conserving    bool
	conserveClock float64

	surge         float64
	surgeCooldown float64
}

// band is the acceptable distance behind the pacemaker for a style.
type band struct{ lo, hi float64 }

var paceBands = map[profile.Style]band{
	profile.StylePaceChaser: {2, 7},
	profile.StyleLateSurger: {6, 11},
	profile.StyleEndCloser:  {13, 18},
}

// Select advances st by one tick and returns the mode for this tick.
func Select(in Input, st *State, rng Roller) Result {
	st.advance(in, rng)

	if in.HP <= 0 {
		return neutral(ModeFailing)
	}
	if r, ok := positionKeep(in); ok {
		return r
	}
	if r, ok := competition(in, st); ok {
		return r
	}
	if in.Spot.Uphill() {
		r := neutral(ModeUphill)
		r.SpeedAdd = -in.Spot.Slope * 200 / math.Max(in.Stats.Power, 1)
		return r
	}
	if st.Downhill {
		r := neutral(ModeDownhillAccel)
		r.SpeedAdd = 0.3
		r.HPMult = 1.6
		return r
	}
	if st.Conserving {
		r := neutral(ModeConservation)
		r.SpeedMult = 0.97
		r.AccelMult = 0.9
		r.HPMult = 0.85
		return r
	}
	if r, ok := limitBreak(in); ok {
		return r
	}
	return neutral(ModeNormal)
}

// advance updates the timers and rolls the elective modes. Rolls happen only
// when a participant is eligible so that the random stream does not depend
// on ineligible runners.
func (st *State) advance(in Input, rng Roller) {
	if in.Spot.FinalStraight && nearestAbs(in) < fightRange {
		st.Proximity += in.Dt
	} else {
		st.Proximity = 0
	}

	if !in.Spot.Downhill() {
		st.Downhill = false
	} else if !st.Downhill && rng.Float64() < in.Stats.Wit*0.0004*in.Dt {
		st.Downhill = true
	}

	if in.Phase != course.PhaseMiddle {
		st.Conserving = false
		st.conserveClock = 0
		return
	}
	st.conserveClock += in.Dt
	if st.conserveClock < conservationEvery {
		return
	}
	st.conserveClock = math.Mod(st.conserveClock, conservationEvery)
	st.Conserving = false
	if in.hpFraction() < 1-in.progress() {
		chance := 0.3 * math.Min(in.Stats.Wit/1000, 1)
		st.Conserving = rng.Float64() < chance
	}
}

func positionKeep(in Input) (Result, bool) {
	if in.Section > positionKeepLastSection || len(in.Field) == 0 {
		return Result{}, false
	}
	if in.Style == profile.StyleFrontRunner {
		frAhead := false
		lead := math.Inf(1)
		for _, o := range in.Field {
			gap := o.Distance - in.Distance
			if gap > 0 && o.Style == profile.StyleFrontRunner {
				frAhead = true
			}
			if gap >= 0 {
				lead = -1
			} else if lead >= 0 {
				lead = math.Min(lead, -gap)
			}
		}
		if !frAhead && lead >= 0 && lead < speedUpLead {
			return scaled(ModeSpeedUp, 1.04), true
		}
		if frAhead {
			return scaled(ModeOvertake, 1.05), true
		}
	} else {
		pacemaker := in.Distance
		for _, o := range in.Field {
			pacemaker = math.Max(pacemaker, o.Distance)
		}
		if pacemaker > in.Distance {
			b := paceBands[in.Style]
			gap := pacemaker - in.Distance
			if gap > b.hi {
				return scaled(ModePaceUp, 1.04), true
			}
			if gap < b.lo {
				if in.Phase == course.PhaseMiddle {
					return scaled(ModePaceDown, 0.945), true
				}
				return scaled(ModePaceDown, 0.915), true
			}
		}
	}
	for _, o := range in.Field {
		if o.Distance > in.Distance && o.Style.Order() >= in.Style.Order()+2 {
			return scaled(ModePaceUpEx, 2.0), true
		}
	}
	return Result{}, false
}

func competition(in Input, st *State) (Result, bool) {
	guts := math.Max(in.Stats.Guts, 0)
	if in.Style == profile.StyleFrontRunner && in.Phase < course.PhaseLate {
		for _, o := range in.Field {
			if o.Style == profile.StyleFrontRunner && math.Abs(o.Distance-in.Distance) < leadDuelRange {
				r := neutral(ModeLeadDuel)
				r.SpeedAdd = math.Pow(500*guts, 0.6) * 0.0001
				r.HPMult = 1.4
				if in.Rushing {
					r.HPMult = 3.6
				}
				return r, true
			}
		}
	}
	if in.Spot.FinalStraight && st.Proximity >= fightHold && in.hpFraction() > fightMinHP {
		r := neutral(ModeCompetitionFight)
		r.SpeedAdd = math.Pow(200*guts, 0.708) * 0.0001
		r.AccelAdd = math.Pow(160*guts, 0.59) * 0.0001
		return r, true
	}
	if in.Section < competeFirstSection || in.Section > competeLastSection {
		return Result{}, false
	}
	switch in.Style {
	case profile.StyleFrontRunner, profile.StylePaceChaser:
		for _, o := range in.Field {
			behind := in.Distance - o.Distance
			if behind > 0 && behind < secureLeadRange && o.Style.Order() > in.Style.Order() {
				r := scaled(ModeSecureLead, 1.01)
				r.HPMult = 1.2
				return r, true
			}
		}
	default:
		if in.hpFraction() < competeMinHP {
			return Result{}, false
		}
		for _, o := range in.Field {
			ahead := o.Distance - in.Distance
			if ahead > 0 && ahead <= in.Vision {
				r := scaled(ModeCompeteBeforeSpurt, 1.02)
				r.HPMult = 1.3
				return r, true
			}
		}
	}
	return Result{}, false
}

func limitBreak(in Input) (Result, bool) {
	r := neutral(ModeLimitBreak)
	ok := false
	if in.Phase == course.PhaseFinalSpurt && in.Raw.Power > physics.LimitBreakThreshold {
		r.AccelAdd = math.Sqrt(float64(in.Raw.Power-physics.LimitBreakThreshold)) * 0.02
		ok = true
	}
	if in.Phase.Leg() == course.LegFinal && in.Raw.Stamina > physics.LimitBreakThreshold {
		if f := DistanceFactor(in.RaceDistance); f > 0 {
			r.SpeedAdd = math.Sqrt(float64(in.Raw.Stamina-physics.LimitBreakThreshold)) * 0.0085 * f
			ok = true
		}
	}
	return r, ok
}

// DistanceFactor scales the stamina limit-break speed bonus by race length.
func DistanceFactor(distance float64) float64 {
	switch {
	case distance <= 2100:
		return 0
	case distance <= 2200:
		return 0.5
	case distance <= 2400:
		return 1.0
	case distance <= 2600:
		return 1.2
	default:
		return 1.5
	}
}

func scaled(mode Mode, mult float64) Result {
	r := neutral(mode)
	r.SpeedMult = mult
	return r
}

func nearestAbs(in Input) float64 {
	nearest := math.Inf(1)
	for _, o := range in.Field {
		nearest = math.Min(nearest, math.Abs(o.Distance-in.Distance))
	}
	return nearest
}
