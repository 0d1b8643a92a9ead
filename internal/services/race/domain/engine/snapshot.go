package engine

import (
	"slices"

	"github.com/louisbranch/racesim/internal/services/race/domain/behavior"
	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
)

// Snapshot is the observable state of the race after a step.
type Snapshot struct {
	Tick         int
	Elapsed      float64
	Phase        course.Phase
	State        State
	RaceFinished bool
	// Participants are in rank order.
	Participants []Participant
}

// Participant is one participant's observable state.
type Participant struct {
	ID          ParticipantID
	Name        string
	Gate        int
	Style       profile.Style
	Rank        int
	Distance    float64
	Speed       float64
	TargetSpeed float64
	SpeedFloor  float64
	HP          float64
	MaxHP       float64
	HPFraction  float64
	// Fatigue is the accumulated fatigue level in [0, 1]. Above 0.3 it
	// shaves speed and acceleration.
	Fatigue      float64
	Lane         float64
	Mode         behavior.Mode
	StartDash    bool
	Surging      bool
	FrontBlocked bool
	Rushing      bool
	Finished     bool
	FinishTime   float64
	DNF          bool
	DNFTime      float64
	DNFReason    string
	// ActiveSkills are the skills with an effect still running.
	ActiveSkills []string
	// Activated are the skills that fired on this step.
	Activated []string
}

// Participant returns the entry for id.
func (s Snapshot) Participant(id ParticipantID) (Participant, bool) {
	for _, p := range s.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:         e.tick,
		Elapsed:      e.elapsed,
		Phase:        e.phase,
		State:        e.state,
		RaceFinished: e.state == StateFinished,
		Participants: make([]Participant, 0, len(e.runners)),
	}
	for _, r := range e.ranked() {
		snap.Participants = append(snap.Participants, Participant{
			ID:           r.id,
			Name:         r.profile.Name,
			Gate:         r.profile.Gate,
			Style:        r.profile.Style,
			Rank:         r.rank,
			Distance:     r.distance,
			Speed:        r.speed,
			TargetSpeed:  r.target,
			SpeedFloor:   r.floor,
			HP:           r.hp,
			MaxHP:        r.maxHP,
			HPFraction:   r.hpFraction(),
			Fatigue:      r.fatigue,
			Lane:         r.lane,
			Mode:         r.mode,
			StartDash:    r.startDash,
			Surging:      r.surging,
			FrontBlocked: r.blocked,
			Rushing:      r.rush.active(),
			Finished:     r.finished,
			FinishTime:   r.finishTime,
			DNF:          r.dnf,
			DNFTime:      r.dnfTime,
			DNFReason:    r.dnfReason,
			ActiveSkills: r.loadout.ActiveSkills(),
			Activated:    slices.Clone(r.activated),
		})
	}
	return snap
}

// Result is one line of the final order.
type Result struct {
	Rank       int
	ID         ParticipantID
	Name       string
	Gate       int
	Finished   bool
	FinishTime float64
	DNF        bool
	DNFReason  string
	Distance   float64
}

// Results returns the current order: finishers by finish time, then
// everyone else by distance. It is final once the race is finished.
func (e *Engine) Results() []Result {
	ranked := e.ranked()
	out := make([]Result, len(ranked))
	for i, r := range ranked {
		out[i] = Result{
			Rank:       i + 1,
			ID:         r.id,
			Name:       r.profile.Name,
			Gate:       r.profile.Gate,
			Finished:   r.finished,
			FinishTime: r.finishTime,
			DNF:        r.dnf,
			DNFReason:  r.dnfReason,
			Distance:   r.distance,
		}
	}
	return out
}

// rank stores the new rank of every participant, keeping the previous one
// for pass detection.
func (e *Engine) rank() {
	for i, r := range e.ranked() {
		r.prevRank = r.rank
		r.rank = i + 1
	}
}

// ranked orders participants: finishers by finish time, then the rest by
// distance descending, ties by id.
func (e *Engine) ranked() []*runner {
	out := slices.Clone(e.runners)
	slices.SortStableFunc(out, func(a, b *runner) int {
		switch {
		case a.finished && !b.finished:
			return -1
		case !a.finished && b.finished:
			return 1
		case a.finished && a.finishTime != b.finishTime:
			if a.finishTime < b.finishTime {
				return -1
			}
			return 1
		case !a.finished && a.distance != b.distance:
			if a.distance > b.distance {
				return -1
			}
			return 1
		}
		return int(a.id) - int(b.id)
	})
	return out
}
