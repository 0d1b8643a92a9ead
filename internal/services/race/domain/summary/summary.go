// Package summary aggregates the snapshot stream of a race into a report.
//
// A Recorder only ever sees engine snapshots, so a report can be rebuilt
// from any recorded frame stream.
package summary

import (
	"math"
	"slices"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/engine"
)

// closingLength is the stretch timed for the closing sectional.
const closingLength = 600.0

// ClosingDistance returns the length of the closing sectional for a race of
// the given distance: 600 m, or the last half of races under 1200 m.
func ClosingDistance(distance float64) float64 {
	return math.Min(closingLength, distance/2)
}

// Entry is one participant's line in the report.
type Entry struct {
	ID         engine.ParticipantID
	Name       string
	Rank       int
	Finished   bool
	FinishTime float64
	DNF        bool
	TopSpeed   float64
	// Closing is the time over the closing sectional. HasClosing is false
	// for participants that did not finish.
	Closing    float64
	HasClosing bool
	// MiddleRank is the rank when the race left the MIDDLE phase; zero if
	// the race never got there.
	MiddleRank int
}

// RankGain is the number of places gained from the end of MIDDLE to the
// final order.
func (e Entry) RankGain() int {
	if e.MiddleRank == 0 {
		return 0
	}
	return e.MiddleRank - e.Rank
}

// Report is the aggregated view of a race.
type Report struct {
	Ticks           int
	Elapsed         float64
	ClosingDistance float64
	// Entries are in final rank order.
	Entries []Entry
	// Winner is nil when nobody finished.
	Winner *Entry
	// BestPerformer has the fastest closing sectional among finishers.
	BestPerformer *Entry
	// BiggestGain is nil when nobody gained a place.
	BiggestGain *Entry
}

type track struct {
	entry        Entry
	lastDistance float64
	lastElapsed  float64
	markTime     float64
	markCrossed  bool
}

// Recorder accumulates snapshots of one race.
type Recorder struct {
	mark    float64
	closing float64
	tick    int
	elapsed float64
	tracks  map[engine.ParticipantID]*track
	order   []engine.ParticipantID
}

// NewRecorder returns a recorder for a race of the given distance.
func NewRecorder(distance float64) *Recorder {
	closing := ClosingDistance(distance)
	return &Recorder{
		mark:    distance - closing,
		closing: closing,
		tracks:  make(map[engine.ParticipantID]*track),
	}
}

// Record consumes one snapshot. Snapshots that do not advance the tick
// counter are ignored, so zero steps are not counted twice.
func (r *Recorder) Record(s engine.Snapshot) {
	if s.Tick <= r.tick {
		return
	}
	r.tick = s.Tick
	r.elapsed = s.Elapsed
	r.order = r.order[:0]
	for _, p := range s.Participants {
		r.order = append(r.order, p.ID)
		tr, ok := r.tracks[p.ID]
		if !ok {
			tr = &track{}
			r.tracks[p.ID] = tr
		}
		r.observe(tr, p, s)
	}
}

func (r *Recorder) observe(tr *track, p engine.Participant, s engine.Snapshot) {
	e := &tr.entry
	e.ID = p.ID
	e.Name = p.Name
	e.Rank = p.Rank
	e.Finished = p.Finished
	e.FinishTime = p.FinishTime
	e.DNF = p.DNF
	e.TopSpeed = math.Max(e.TopSpeed, p.Speed)
	if s.Phase <= course.PhaseMiddle {
		e.MiddleRank = p.Rank
	}

	if !tr.markCrossed && p.Distance >= r.mark {
		at := s.Elapsed
		if p.Finished {
			at = p.FinishTime
		}
		tr.markCrossed = true
		tr.markTime = crossing(tr.lastDistance, tr.lastElapsed, p.Distance, at, r.mark)
	}
	if p.Finished && tr.markCrossed && !e.HasClosing {
		e.HasClosing = true
		e.Closing = p.FinishTime - tr.markTime
	}
	tr.lastDistance = p.Distance
	tr.lastElapsed = s.Elapsed
}

// crossing interpolates the time at which a participant moving from d0 at
// t0 to d1 at t1 passed mark.
func crossing(d0, t0, d1, t1, mark float64) float64 {
	if d1 <= d0 {
		return t1
	}
	frac := (mark - d0) / (d1 - d0)
	frac = math.Min(math.Max(frac, 0), 1)
	return t0 + frac*(t1-t0)
}

// Report builds the report from the snapshots recorded so far.
func (r *Recorder) Report() Report {
	rep := Report{
		Ticks:           r.tick,
		Elapsed:         r.elapsed,
		ClosingDistance: r.closing,
		Entries:         make([]Entry, 0, len(r.order)),
	}
	for _, id := range r.order {
		rep.Entries = append(rep.Entries, r.tracks[id].entry)
	}
	slices.SortStableFunc(rep.Entries, func(a, b Entry) int { return a.Rank - b.Rank })

	for i := range rep.Entries {
		e := &rep.Entries[i]
		if e.Finished && rep.Winner == nil {
			rep.Winner = e
		}
		if e.HasClosing && (rep.BestPerformer == nil || e.Closing < rep.BestPerformer.Closing) {
			rep.BestPerformer = e
		}
		if g := e.RankGain(); g > 0 && (rep.BiggestGain == nil || g > rep.BiggestGain.RankGain()) {
			rep.BiggestGain = e
		}
	}
	return rep
}
