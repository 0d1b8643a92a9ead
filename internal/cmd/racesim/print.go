package racesim

import (
	"io"
	"slices"
	"strconv"

	"github.com/louisbranch/racesim/internal/services/race/app"
	"github.com/louisbranch/racesim/internal/services/race/domain/summary"
	"github.com/louisbranch/racesim/internal/tools/racecard"
	"golang.org/x/text/message"
)

func printOutcome(p *message.Printer, out io.Writer, race *racecard.Race, o app.Outcome) {
	course := race.Config.Course
	if course == "" {
		course = "generic"
	}
	p.Fprintf(out, "%s  %.0f m %s %s (%s)  seed %s\n",
		race.Name, race.Config.Distance, race.Config.Surface, race.Config.Condition, course, strconv.FormatInt(o.Seed, 10))
	if o.RaceID != "" {
		p.Fprintf(out, "race %s", o.RaceID)
		if o.Saved {
			p.Fprintf(out, " (saved)")
		}
		p.Fprintln(out)
	}
	p.Fprintln(out)

	p.Fprintf(out, "%4s  %4s  %-20s  %9s  %9s  %9s  %4s\n", "RANK", "GATE", "NAME", "TIME", "TOP M/S", "CLOSING", "GAIN")
	r := o.Report
	for i, res := range o.Results {
		entry := entryFor(r, res.Name, i)
		finish := "DNF"
		if res.Finished {
			finish = p.Sprintf("%.2fs", res.FinishTime)
		}
		closing := "-"
		if entry.HasClosing {
			closing = p.Sprintf("%.2fs", entry.Closing)
		}
		p.Fprintf(out, "%4d  %4d  %-20s  %9s  %9.2f  %9s  %+4d\n",
			res.Rank, res.Gate, res.Name, finish, entry.TopSpeed, closing, entry.RankGain())
	}
	p.Fprintln(out)
	p.Fprintf(out, "%d ticks, %.2fs simulated\n", o.Ticks, o.Elapsed)
	if r.Winner != nil {
		p.Fprintf(out, "winner: %s\n", r.Winner.Name)
	}
	if r.BestPerformer != nil {
		p.Fprintf(out, "best performer: %s (closing %.0f m in %.2fs)\n", r.BestPerformer.Name, r.ClosingDistance, r.BestPerformer.Closing)
	}
	if r.BiggestGain != nil {
		p.Fprintf(out, "biggest gain: %s (%+d places)\n", r.BiggestGain.Name, r.BiggestGain.RankGain())
	}
}

// entryFor finds the report line of the i-th result.
func entryFor(r summary.Report, name string, i int) summary.Entry {
	if i < len(r.Entries) && r.Entries[i].Name == name {
		return r.Entries[i]
	}
	for _, e := range r.Entries {
		if e.Name == name {
			return e
		}
	}
	return summary.Entry{}
}

func printBatch(p *message.Printer, out io.Writer, name string, outs []app.Outcome) {
	p.Fprintf(out, "%s  %d races\n\n", name, len(outs))
	p.Fprintf(out, "%-20s  %-26s  %-20s  %9s\n", "SEED", "RACE", "WINNER", "TIME")

	wins := make(map[string]int)
	var order []string
	for _, o := range outs {
		winner, finish := "-", "-"
		if w := o.Report.Winner; w != nil {
			winner, finish = w.Name, p.Sprintf("%.2fs", w.FinishTime)
			if wins[w.Name] == 0 {
				order = append(order, w.Name)
			}
			wins[w.Name]++
		}
		p.Fprintf(out, "%-20s  %-26s  %-20s  %9s\n", strconv.FormatInt(o.Seed, 10), o.RaceID, winner, finish)
	}

	slices.SortStableFunc(order, func(a, b string) int { return wins[b] - wins[a] })
	p.Fprintln(out)
	for _, n := range order {
		p.Fprintf(out, "%-20s  %d wins (%.0f%%)\n", n, wins[n], 100*float64(wins[n])/float64(len(outs)))
	}
}
