package behavior

import (
	"math"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
)

const (
	repositionGap      = 4.5
	repositionRadius   = 3.0
	repositionCrowd    = 3
	repositionBoost    = 1.025
	repositionSeconds  = 1.5
	repositionCooldown = 4.0
	repositionHPCost   = 0.02
)

// Surge is the outcome of the repositioning check for one tick.
type Surge struct {
	// SpeedMult scales the target speed. It is 1 when no surge is running.
	SpeedMult float64
	// HPCost is charged once, on the tick a surge starts.
	HPCost float64
}

// Active reports whether a surge is running this tick.
func (s Surge) Active() bool { return s.SpeedMult > 1 }

// Reposition runs the position adjustment check after Select. Past the
// start, a participant more than 4.5 m off the lead or boxed in by three
// rivals within 3 m surges for 1.5 s, then waits out a 4 s cooldown.
// Failing and conserving participants never start a surge.
func (st *State) Reposition(in Input, m Mode) Surge {
	idle := Surge{SpeedMult: 1}
	if in.Phase == course.PhaseStart {
		return idle
	}
	st.surgeCooldown = math.Max(st.surgeCooldown-in.Dt, 0)
	if st.surge > 0 {
		st.surge = math.Max(st.surge-in.Dt, 0)
		if st.surge > 0 {
			return Surge{SpeedMult: repositionBoost}
		}
		return idle
	}
	if st.surgeCooldown > 0 || m == ModeFailing || m == ModeConservation || st.Conserving {
		return idle
	}
	if !boxedOrTrailing(in) {
		return idle
	}
	st.surge = repositionSeconds
	st.surgeCooldown = repositionCooldown
	factor := 1 - (in.Stats.Power+in.Stats.Guts)/2000
	factor = math.Max(0.5, math.Min(factor, 1.5))
	return Surge{
		SpeedMult: repositionBoost,
		HPCost:    in.MaxHP * repositionHPCost * factor,
	}
}

func boxedOrTrailing(in Input) bool {
	leader := in.Distance
	near := 0
	for _, o := range in.Field {
		leader = math.Max(leader, o.Distance)
		if math.Abs(o.Distance-in.Distance) <= repositionRadius {
			near++
		}
	}
	return leader-in.Distance > repositionGap || near >= repositionCrowd
}
