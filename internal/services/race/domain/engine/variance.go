package engine

import (
	"math"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
)

const (
	maxStartDelay  = 0.1
	lateStartDelay = 0.066
	sectionSpread  = 0.02

	rushWindowStart  = 0.5 / 6.0
	rushWindowEnd    = 2.5 / 6.0
	rushBaseChance   = 0.20
	rushMinChance    = 0.05
	rushMaxChance    = 0.95
	rushMinSeconds   = 3.0
	rushExtraSeconds = 9.0
)

// drawVariance rolls the start delay and section multipliers of r.
func (e *Engine) drawVariance(r *runner) {
	r.delay = e.rng.Float64() * maxStartDelay
	r.lateStart = r.delay >= lateStartDelay
	r.sectionRandom = make([]float64, course.SectionCount)
	for i := range r.sectionRandom {
		r.sectionRandom[i] = 1 - sectionSpread + 2*sectionSpread*e.rng.Float64()
	}
}

// RushChance is the probability that a participant with effective wit gets
// rushed: 0.2 × 600 / wit, clamped to [0.05, 0.95].
func RushChance(wit float64) float64 {
	p := rushBaseChance * 600 / math.Max(wit, 50)
	return math.Min(math.Max(p, rushMinChance), rushMaxChance)
}

// updateRush makes the single rushing check once r enters the rush window.
func (e *Engine) updateRush(r *runner, progress float64) {
	if !e.variance || r.rush.checked {
		return
	}
	if progress < rushWindowStart || progress > rushWindowEnd {
		return
	}
	r.rush.checked = true
	wit := r.profile.Effective(e.penalty).Wit
	if e.rng.Float64() < RushChance(wit) {
		r.rush.remaining = rushMinSeconds + e.rng.Float64()*rushExtraSeconds
	}
}
