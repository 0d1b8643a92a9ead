package summary

import (
	"math"
	"testing"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/engine"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func frame(tick int, elapsed float64, phase course.Phase, ps ...engine.Participant) engine.Snapshot {
	return engine.Snapshot{Tick: tick, Elapsed: elapsed, Phase: phase, Participants: ps}
}

func at(id engine.ParticipantID, rank int, distance, speed float64) engine.Participant {
	return engine.Participant{ID: id, Name: string(rune('A' + id)), Rank: rank, Distance: distance, Speed: speed}
}

func finished(p engine.Participant, when float64) engine.Participant {
	p.Finished = true
	p.FinishTime = when
	return p
}

func TestClosingDistance(t *testing.T) {
	tests := []struct {
		distance float64
		want     float64
	}{
		{distance: 2400, want: 600},
		{distance: 1200, want: 600},
		{distance: 1000, want: 500},
	}
	for _, tt := range tests {
		if got := ClosingDistance(tt.distance); got != tt.want {
			t.Fatalf("ClosingDistance(%v) = %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func TestReport(t *testing.T) {
	rec := NewRecorder(1000)
	rec.Record(frame(1, 10, course.PhaseMiddle, at(1, 1, 450, 18), at(0, 2, 400, 19)))
	rec.Record(frame(2, 20, course.PhaseLate, at(0, 1, 600, 21), at(1, 2, 580, 18.5)))
	rec.Record(frame(3, 30, course.PhaseFinalSpurt, finished(at(0, 1, 1000, 22), 27), at(1, 2, 950, 17)))
	rec.Record(frame(4, 40, course.PhaseFinalSpurt, finished(at(0, 1, 1000, 22), 27), finished(at(1, 2, 1000, 17), 32)))

	rep := rec.Report()
	if rep.Ticks != 4 || rep.Elapsed != 40 {
		t.Fatalf("ticks/elapsed = %d/%v, want 4/40", rep.Ticks, rep.Elapsed)
	}
	if rep.Winner == nil || rep.Winner.ID != 0 {
		t.Fatalf("winner = %+v, want participant 0", rep.Winner)
	}

	a, b := rep.Entries[0], rep.Entries[1]
	if a.TopSpeed != 22 || b.TopSpeed != 18.5 {
		t.Fatalf("top speeds = %v, %v, want 22, 18.5", a.TopSpeed, b.TopSpeed)
	}
	// A crosses 500 m halfway between 400 m at 10 s and 600 m at 20 s.
	if !near(a.Closing, 27-15) {
		t.Fatalf("A closing = %v, want 12", a.Closing)
	}
	if want := 32 - (10 + 10*50.0/130); !near(b.Closing, want) {
		t.Fatalf("B closing = %v, want %v", b.Closing, want)
	}
	if rep.BestPerformer == nil || rep.BestPerformer.ID != 0 {
		t.Fatalf("best performer = %+v, want participant 0", rep.BestPerformer)
	}
	if a.MiddleRank != 2 || a.RankGain() != 1 {
		t.Fatalf("A middle rank/gain = %d/%d, want 2/1", a.MiddleRank, a.RankGain())
	}
	if rep.BiggestGain == nil || rep.BiggestGain.ID != 0 {
		t.Fatalf("biggest gain = %+v, want participant 0", rep.BiggestGain)
	}
}

func TestRecordIgnoresRepeatedTick(t *testing.T) {
	rec := NewRecorder(1000)
	rec.Record(frame(1, 1, course.PhaseStart, at(0, 1, 10, 10)))
	rec.Record(frame(1, 1, course.PhaseStart, at(0, 1, 10, 99)))
	if got := rec.Report().Entries[0].TopSpeed; got != 10 {
		t.Fatalf("top speed = %v, want 10", got)
	}
}

func TestReportWithoutFinishers(t *testing.T) {
	rec := NewRecorder(2000)
	rec.Record(frame(1, 1, course.PhaseStart, at(0, 1, 10, 10), at(1, 2, 9, 9)))
	rep := rec.Report()
	if rep.Winner != nil || rep.BestPerformer != nil || rep.BiggestGain != nil {
		t.Fatalf("report = %+v, want no winner, best performer or gain", rep)
	}
	for _, e := range rep.Entries {
		if e.HasClosing {
			t.Fatalf("%s has a closing sectional without finishing", e.Name)
		}
	}
}

func TestBestPerformerTieGoesToBetterRank(t *testing.T) {
	rec := NewRecorder(1000)
	rec.Record(frame(1, 10, course.PhaseLate, at(0, 1, 500, 20), at(1, 2, 500, 20)))
	rec.Record(frame(2, 40, course.PhaseFinalSpurt, finished(at(0, 1, 1000, 20), 35), finished(at(1, 2, 1000, 20), 35)))
	rep := rec.Report()
	if rep.BestPerformer == nil || rep.BestPerformer.ID != 0 {
		t.Fatalf("best performer = %+v, want rank 1", rep.BestPerformer)
	}
}

func TestReportFromEngine(t *testing.T) {
	cfg := course.Config{Distance: 1600, Course: "kyoto"}
	e, err := engine.New(cfg, engine.WithSeed(3), engine.WithVariance())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	styles := []profile.Style{profile.StyleFrontRunner, profile.StylePaceChaser, profile.StyleLateSurger, profile.StyleEndCloser}
	for i, style := range styles {
		p := profile.Profile{
			Name:  style.String(),
			Gate:  i + 1,
			Style: style,
			Stats: profile.Stats{Speed: 900 + 50*i, Stamina: 800, Power: 800, Guts: 500, Wit: 600},
		}
		if _, err := e.Register(p); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	rec := NewRecorder(cfg.Distance)
	for !e.IsFinished() {
		snap, err := e.Advance(0.1)
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		rec.Record(snap)
	}

	rep := rec.Report()
	results := e.Results()
	if rep.Winner == nil || rep.Winner.ID != results[0].ID {
		t.Fatalf("winner = %+v, want %s", rep.Winner, results[0].Name)
	}
	if len(rep.Entries) != len(results) {
		t.Fatalf("entries = %d, want %d", len(rep.Entries), len(results))
	}
	for i, entry := range rep.Entries {
		if entry.ID != results[i].ID {
			t.Fatalf("entry %d = %s, want %s", i, entry.Name, results[i].Name)
		}
		if !entry.HasClosing || entry.Closing <= 0 {
			t.Fatalf("%s closing = %v", entry.Name, entry.Closing)
		}
		// 600 m cannot take less than 600 / top speed.
		if entry.Closing < 600/entry.TopSpeed-1e-9 {
			t.Fatalf("%s closing %v faster than top speed %v allows", entry.Name, entry.Closing, entry.TopSpeed)
		}
	}
	if rep.BestPerformer == nil {
		t.Fatal("no best performer")
	}
}
