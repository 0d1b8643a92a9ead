// Package physics holds the speed, acceleration and stamina formulas. Every
// function is pure; the engine owns all state.
package physics

import (
	"math"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
)

const (
	// StartSpeed is every participant's speed at the gate, in m/s.
	StartSpeed = 3.0
	// MaxTargetSpeed caps the target speed after all modifiers.
	MaxTargetSpeed = 30.0
	// StartDashAccel is added to acceleration during the start dash.
	StartDashAccel = 24.0
	// StartDashRatio of BaseSpeed ends the start dash.
	StartDashRatio = 0.85
	// BaseAccelFlat applies on flat ground and downhill.
	BaseAccelFlat = 0.0006
	// BaseAccelUphill applies on uphill stretches.
	BaseAccelUphill = 0.0004
)

// Rows are indexed by course.Leg: opening, middle, final.
var (
	speedCoef = map[profile.Style][3]float64{
		profile.StyleFrontRunner: {1.0, 0.98, 0.962},
		profile.StylePaceChaser:  {0.978, 0.991, 0.975},
		profile.StyleLateSurger:  {0.93, 0.998, 0.994},
		profile.StyleEndCloser:   {0.931, 1.0, 1.02},
	}
	accelCoef = map[profile.Style][3]float64{
		profile.StyleFrontRunner: {1.0, 1.0, 0.996},
		profile.StylePaceChaser:  {0.985, 1.0, 0.996},
		profile.StyleLateSurger:  {0.975, 1.0, 1.0},
		profile.StyleEndCloser:   {0.945, 1.0, 0.967},
	}
)

// SpeedCoef is the strategy-phase coefficient on target speed.
func SpeedCoef(style profile.Style, leg course.Leg) float64 {
	row, ok := speedCoef[style]
	if !ok {
		return 1.0
	}
	return row[leg]
}

// AccelCoef is the strategy-phase coefficient on acceleration.
func AccelCoef(style profile.Style, leg course.Leg) float64 {
	row, ok := accelCoef[style]
	if !ok {
		return 1.0
	}
	return row[leg]
}

// Runner carries the per-participant inputs the formulas need.
type Runner struct {
	Style            profile.Style
	DistanceAptitude profile.Grade
	SurfaceAptitude  profile.Grade
	Stats            profile.EffectiveStats
}

// TargetSpeed returns the unmodified target speed for the phase.
//
// START and MIDDLE run at BaseSpeed × coefficient; LATE and FINAL_SPURT add
// sqrt(500 × speed) × distance aptitude × 0.002. The surface aptitude scales
// the result.
func TargetSpeed(r Runner, base float64, phase course.Phase) float64 {
	target := base * SpeedCoef(r.Style, phase.Leg())
	if phase.Leg() == course.LegFinal {
		target += math.Sqrt(500*max(r.Stats.Speed, 0)) * r.DistanceAptitude.DistanceSpeed() * 0.002
	}
	return target * r.SurfaceAptitude.SurfaceSpeed()
}

// CapTarget clamps a target speed to [floor, MaxTargetSpeed].
func CapTarget(target, floor float64) float64 {
	return math.Min(math.Max(target, floor), MaxTargetSpeed)
}

// Acceleration returns the acceleration toward a higher target.
func Acceleration(r Runner, phase course.Phase, uphill bool) float64 {
	base := BaseAccelFlat
	if uphill {
		base = BaseAccelUphill
	}
	return base * math.Sqrt(500*max(r.Stats.Power, 0)) *
		AccelCoef(r.Style, phase.Leg()) *
		r.SurfaceAptitude.SurfaceAccel() *
		r.DistanceAptitude.DistanceAccel()
}

// Deceleration returns the magnitude of deceleration toward a lower target.
func Deceleration(phase course.Phase) float64 {
	switch phase {
	case course.PhaseStart:
		return 1.2
	case course.PhaseMiddle:
		return 0.8
	default:
		return 1.0
	}
}

// MinSpeed is the floor below which speed never falls once a participant
// has left the gate: 0.85 × BaseSpeed + sqrt(200 × guts) × 0.001.
func MinSpeed(base, guts float64) float64 {
	return StartDashRatio*base + math.Sqrt(200*max(guts, 0))*0.001
}

// InStartDash reports whether a speed is still below the start-dash ceiling.
func InStartDash(speed, base float64) bool {
	return speed < StartDashRatio*base
}

// Approach moves speed toward target by at most accel×dt (or decel×dt when
// slowing) without overshooting.
func Approach(speed, target, accel, decel, dt float64) float64 {
	if speed < target {
		return math.Min(speed+accel*dt, target)
	}
	if speed > target {
		return math.Max(speed-decel*dt, target)
	}
	return speed
}
