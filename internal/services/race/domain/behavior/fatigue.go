package behavior

import (
	"math"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
)

const (
	fatigueRate      = 0.001
	fatigueRecovery  = 0.0005
	fatigueThreshold = 0.3
	fatigueSpeedCut  = 0.05
	fatigueAccelCut  = 0.08
)

// effort is the fatigue accumulation multiplier for a tick run in mode m.
// Zero means the participant recovers instead.
func effort(m Mode, phase course.Phase) float64 {
	if phase == course.PhaseFinalSpurt {
		return 2
	}
	switch m {
	case ModeLeadDuel, ModeCompetitionFight, ModeSecureLead, ModeCompeteBeforeSpurt:
		return 2
	case ModeSpeedUp, ModeOvertake, ModePaceUp, ModePaceUpEx, ModeDownhillAccel, ModeLimitBreak:
		return 1.5
	case ModePaceDown, ModeConservation:
		return 0
	default:
		return 0.5
	}
}

// Fatigue returns the fatigue level after dt seconds in mode m. The level
// lives in [0, 1]; rushing piles on extra fatigue.
func Fatigue(level float64, m Mode, phase course.Phase, rushing bool, dt float64) float64 {
	if m == ModeFailing {
		return clamp01(level)
	}
	k := effort(m, phase)
	if k == 0 {
		level -= fatigueRecovery * dt
	} else {
		level += fatigueRate * k * dt
	}
	if rushing {
		level += fatigueRate * 1.5 * dt
	}
	return clamp01(level)
}

// FatiguePenalty returns the speed and acceleration multipliers for a
// fatigue level. Both are 1 up to the threshold.
func FatiguePenalty(level float64) (speed, accel float64) {
	if level <= fatigueThreshold {
		return 1, 1
	}
	f := (math.Min(level, 1) - fatigueThreshold) / (1 - fatigueThreshold)
	return 1 - fatigueSpeedCut*f, 1 - fatigueAccelCut*f
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}
