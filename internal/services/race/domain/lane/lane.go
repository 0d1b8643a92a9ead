// Package lane implements lateral positioning and the pairwise blocking rules
// between participants. Lanes are measured in course widths; thresholds are
// expressed in horse lanes (1/18 of a course width).
package lane

import (
	"math"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
)

const (
	frontBlockGap     = 2.0
	sideBlockGap      = 1.05
	sideBlockLanes    = 2.0
	overlapGap        = 0.4
	overlapLanes      = 0.4
	bumpLanes         = 0.4
	outwardRateFactor = 0.75
)

// Runner is one participant's position in the start-of-tick snapshot.
type Runner struct {
	ID       int
	Distance float64
	Lane     float64
	Speed    float64
	// Active is false for finished and withdrawn participants; they are not
	// obstacles.
	Active bool
}

// Constraint is what the field imposes on one participant for one tick.
type Constraint struct {
	// Capped is true when a leader blocks the way ahead.
	Capped bool
	// SpeedCap is the highest speed allowed this tick when Capped.
	SpeedCap float64
	// Leader is the blocking participant's id when Capped.
	Leader int
	// Gap is the distance to the blocking leader when Capped.
	Gap float64

	BlockedInward  bool
	BlockedOutward bool
	// Bump is the outward displacement, in course widths, to resolve an
	// overlap.
	Bump float64
}

// FrontCap returns (0.988 + 0.012 × gap/2) × leader speed.
func FrontCap(gap, leaderSpeed float64) float64 {
	return (0.988 + 0.012*gap/frontBlockGap) * leaderSpeed
}

// frontLaneThreshold is the lane gap, in horse lanes, under which a leader
// at gap meters blocks: (1 - 0.6 × gap/2) × 0.75.
func frontLaneThreshold(gap float64) float64 {
	return (1 - 0.6*gap/frontBlockGap) * 0.75
}

// Resolve classifies every ordered pair of active runners and returns one
// constraint per runner, index-aligned with runners. Each pair falls into at
// most one class, checked as overlap, then front block, then side block.
// Among several blocking leaders the nearest wins.
func Resolve(runners []Runner) []Constraint {
	out := make([]Constraint, len(runners))
	for i, me := range runners {
		if !me.Active {
			continue
		}
		c := &out[i]
		for j, other := range runners {
			if i == j || !other.Active {
				continue
			}
			gap := other.Distance - me.Distance
			laneGap := math.Abs(other.Lane-me.Lane) / course.HorseLane

			switch {
			case math.Abs(gap) < overlapGap && laneGap < overlapLanes:
				if outer(me, other) {
					c.Bump = bumpLanes * course.HorseLane
				}
			case gap > 0 && gap < frontBlockGap && laneGap < frontLaneThreshold(gap):
				if !c.Capped || gap < c.Gap {
					c.Capped = true
					c.Gap = gap
					c.Leader = other.ID
					c.SpeedCap = FrontCap(gap, other.Speed)
				}
			case math.Abs(gap) < sideBlockGap && laneGap < sideBlockLanes:
				if other.Lane < me.Lane {
					c.BlockedInward = true
				} else if other.Lane > me.Lane {
					c.BlockedOutward = true
				}
			}
		}
	}
	return out
}

// outer reports whether me is the outer runner of an overlapping pair; ties
// go to the higher id.
func outer(me, other Runner) bool {
	if me.Lane != other.Lane {
		return me.Lane > other.Lane
	}
	return me.ID > other.ID
}

// ChangeRate is the lateral speed in course widths per second:
// 0.02 × (0.3 + 0.001 × power).
func ChangeRate(power float64) float64 {
	return 0.02 * (0.3 + 0.001*math.Max(power, 0))
}

// Move advances a lane position by one tick. Runners drift toward the rail
// unless they want out; a side block stops movement toward that side.
// Moving outward runs at three quarters of the inward rate. The result is
// clamped to [0, maxLane] after applying any overlap bump.
func Move(pos float64, outward bool, c Constraint, power, maxLane, dt float64) float64 {
	rate := ChangeRate(power) * dt
	switch {
	case outward && !c.BlockedOutward:
		pos += rate * outwardRateFactor
	case !outward && !c.BlockedInward:
		pos -= rate
	}
	pos += c.Bump
	return math.Min(math.Max(pos, 0), maxLane)
}
