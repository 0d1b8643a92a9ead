package physics

import (
	"math"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
)

const (
	// LimitBreakThreshold is the raw stat above which limit-break rules apply.
	LimitBreakThreshold = 1200
	// MaxStaminaSave caps the combined stamina-save reduction.
	MaxStaminaSave = 0.4
	// staminaLimitBreakRace is the shortest race that grants the MaxHP bonus.
	staminaLimitBreakRace = 2100
)

var hpCoef = map[profile.Style]float64{
	profile.StyleFrontRunner: 0.95,
	profile.StylePaceChaser:  0.89,
	profile.StyleLateSurger:  1.0,
	profile.StyleEndCloser:   0.995,
}

// HPCoef is the style's stamina-to-HP conversion coefficient.
func HPCoef(style profile.Style) float64 {
	if c, ok := hpCoef[style]; ok {
		return c
	}
	return 1.0
}

// MaxHP returns 0.8 × style coefficient × stamina + distance. Races longer
// than 2100 m grant a bonus for raw stamina past the limit-break threshold,
// capped at +25%.
func MaxHP(style profile.Style, stamina float64, rawStamina int, distance float64) float64 {
	hp := 0.8*HPCoef(style)*max(stamina, 0) + distance
	if distance > staminaLimitBreakRace && rawStamina > LimitBreakThreshold {
		hp *= 1 + math.Min(float64(rawStamina-LimitBreakThreshold)*0.0001, 0.25)
	}
	return hp
}

// GutsModifier is the LATE/FINAL_SPURT drain multiplier
// 1 + 200/sqrt(600 × guts). Guts below 1 are treated as 1.
func GutsModifier(guts float64) float64 {
	return 1 + 200/math.Sqrt(600*math.Max(guts, 1))
}

// Drain returns HP consumed over dt at speed:
//
//	20 × (speed - base + 12)² / 144 × mult × dt
func Drain(speed, base, mult, dt float64) float64 {
	d := speed - base + 12
	return 20 * d * d / 144 * mult * dt
}

// DrainModifiers collects the multiplicative terms of HP consumption.
type DrainModifiers struct {
	Phase       course.Phase
	Guts        float64
	Mode        float64
	Rushing     bool
	Ground      float64
	StaminaSave float64
}

// Multiplier folds the modifiers into a single factor.
func (m DrainModifiers) Multiplier() float64 {
	mult := 1.0
	if m.Phase.Leg() == course.LegFinal {
		mult *= GutsModifier(m.Guts)
	}
	if m.Mode > 0 {
		mult *= m.Mode
	}
	if m.Rushing {
		mult *= 1.6
	}
	if m.Ground > 0 {
		mult *= m.Ground
	}
	save := math.Min(math.Max(m.StaminaSave, 0), MaxStaminaSave)
	return mult * (1 - save)
}

// ClampHP keeps hp in [0, maxHP].
func ClampHP(hp, maxHP float64) float64 {
	return math.Min(math.Max(hp, 0), maxHP)
}
