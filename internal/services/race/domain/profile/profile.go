// Package profile models participant attributes: raw stats, mood, running
// style, aptitude grades, and the effective stats every downstream formula
// consumes.
package profile

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxStat is the upper clamp applied to raw stats.
	MaxStat = 9999
	// SoftCap is the stat value above which gains are halved.
	SoftCap = 1200
)

var (
	// ErrMissingStat indicates a profile omitted one of the five required stats.
	ErrMissingStat = errors.New("missing required stat")
	// ErrInvalidGate indicates a gate number below one.
	ErrInvalidGate = errors.New("gate must be at least 1")
	// ErrUnknownStyle indicates an unrecognized running style name.
	ErrUnknownStyle = errors.New("unknown running style")
	// ErrUnknownMood indicates an unrecognized mood name.
	ErrUnknownMood = errors.New("unknown mood")
	// ErrUnknownGrade indicates an unrecognized aptitude grade.
	ErrUnknownGrade = errors.New("unknown aptitude grade")
)

// StatNames lists the required stats in canonical order.
var StatNames = []string{"speed", "stamina", "power", "guts", "wit"}

// Stats holds the five raw attributes of a participant.
type Stats struct {
	Speed   int
	Stamina int
	Power   int
	Guts    int
	Wit     int
}

// ParseStats builds Stats from named values, failing when any required stat
// is absent. Values are clamped to [0, MaxStat].
func ParseStats(values map[string]int) (Stats, error) {
	var missing []string
	for _, name := range StatNames {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Stats{}, fmt.Errorf("%w: %s", ErrMissingStat, strings.Join(missing, ", "))
	}
	return Stats{
		Speed:   values["speed"],
		Stamina: values["stamina"],
		Power:   values["power"],
		Guts:    values["guts"],
		Wit:     values["wit"],
	}.Clamped(), nil
}

// Clamped returns a copy with every stat clamped to [0, MaxStat].
func (s Stats) Clamped() Stats {
	return Stats{
		Speed:   clampStat(s.Speed),
		Stamina: clampStat(s.Stamina),
		Power:   clampStat(s.Power),
		Guts:    clampStat(s.Guts),
		Wit:     clampStat(s.Wit),
	}
}

// Total returns the sum of all stats.
func (s Stats) Total() int {
	return s.Speed + s.Stamina + s.Power + s.Guts + s.Wit
}

func clampStat(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}

// Profile is the immutable per-race description of a participant.
type Profile struct {
	Name             string
	Stats            Stats
	Style            Style
	Mood             Mood
	DistanceAptitude Grade
	SurfaceAptitude  Grade
	StyleAptitude    Grade
	Gate             int
	Skills           []string
}

// Validate checks the fields that cannot be repaired by clamping.
func (p Profile) Validate() error {
	if p.Gate < 1 {
		return fmt.Errorf("%s: %w", p.Name, ErrInvalidGate)
	}
	if !p.Style.Valid() {
		return fmt.Errorf("%s: %w", p.Name, ErrUnknownStyle)
	}
	if !p.Mood.Valid() {
		return fmt.Errorf("%s: %w", p.Name, ErrUnknownMood)
	}
	for _, g := range []Grade{p.DistanceAptitude, p.SurfaceAptitude, p.StyleAptitude} {
		if !g.Valid() {
			return fmt.Errorf("%s: %w", p.Name, ErrUnknownGrade)
		}
	}
	return nil
}
