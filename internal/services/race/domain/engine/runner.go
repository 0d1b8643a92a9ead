package engine

import (
	"github.com/louisbranch/racesim/internal/services/race/domain/behavior"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
	"github.com/louisbranch/racesim/internal/services/race/domain/skill"
)

// runner is the mutable state of one participant.
type runner struct {
	id      ParticipantID
	profile profile.Profile
	loadout *skill.Loadout

	distance float64
	speed    float64
	target   float64
	floor    float64
	lane     float64
	hp       float64
	maxHP    float64
	// fatigue is the accumulated fatigue level in [0, 1].
	fatigue float64

	mode     behavior.Mode
	behavior behavior.State

	// startDash is true until speed first reaches the start-dash ceiling or
	// the race leaves the start phase.
	startDash bool
	// surging is true while a repositioning surge runs.
	surging bool
	// delay is the start delay still to wait out.
	delay     float64
	lateStart bool
	// sectionRandom holds one target multiplier per course section.
	sectionRandom []float64
	rush          rushState

	// blocked is true when a leader capped the speed on the last tick.
	blocked  bool
	rank     int
	prevRank int

	finished   bool
	finishTime float64
	dnf        bool
	dnfTime    float64
	dnfReason  string

	activated []string
}

// active reports whether the participant is still racing.
func (r *runner) active() bool {
	return !r.finished && !r.dnf
}

func (r *runner) hpFraction() float64 {
	if r.maxHP <= 0 {
		return 0
	}
	return r.hp / r.maxHP
}

// rushState tracks the single rushing check of a participant.
type rushState struct {
	checked   bool
	remaining float64
}

func (s rushState) active() bool {
	return s.remaining > 0
}

// debuff is a speed reduction waiting to be delivered at the end of a tick.
type debuff struct {
	from      ParticipantID
	skillID   string
	distance  float64
	vision    float64
	magnitude float64
	duration  float64
}
