package profile

import (
	"fmt"
	"strings"
)

// Style is a participant's running strategy archetype.
type Style int

const (
	StyleFrontRunner Style = iota
	StylePaceChaser
	StyleLateSurger
	StyleEndCloser
)

// ParseStyle accepts long names ("pace_chaser"), short codes ("PC") and
// hyphenated forms.
func ParseStyle(value string) (Style, error) {
	switch normalize(value) {
	case "front_runner", "fr", "front":
		return StyleFrontRunner, nil
	case "pace_chaser", "pc", "pace":
		return StylePaceChaser, nil
	case "late_surger", "ls", "late":
		return StyleLateSurger, nil
	case "end_closer", "ec", "end":
		return StyleEndCloser, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStyle, value)
	}
}

// Valid reports whether s is one of the four styles.
func (s Style) Valid() bool {
	return s >= StyleFrontRunner && s <= StyleEndCloser
}

// Order is the style's running-order rank: front-runners run first.
func (s Style) Order() int {
	return int(s)
}

// String returns the short code for the style.
func (s Style) String() string {
	switch s {
	case StyleFrontRunner:
		return "FR"
	case StylePaceChaser:
		return "PC"
	case StyleLateSurger:
		return "LS"
	case StyleEndCloser:
		return "EC"
	default:
		return "unknown"
	}
}

// Mood scales every effective stat.
type Mood int

const (
	MoodNormal Mood = iota
	MoodAwful
	MoodBad
	MoodGood
	MoodGreat
)

// ParseMood parses a mood name; the empty string is MoodNormal.
func ParseMood(value string) (Mood, error) {
	switch normalize(value) {
	case "", "normal":
		return MoodNormal, nil
	case "awful":
		return MoodAwful, nil
	case "bad":
		return MoodBad, nil
	case "good":
		return MoodGood, nil
	case "great":
		return MoodGreat, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMood, value)
	}
}

// Valid reports whether m is a known mood.
func (m Mood) Valid() bool {
	return m >= MoodNormal && m <= MoodGreat
}

// Factor returns the multiplier applied to effective stats.
func (m Mood) Factor() float64 {
	switch m {
	case MoodAwful:
		return 0.96
	case MoodBad:
		return 0.98
	case MoodGood:
		return 1.02
	case MoodGreat:
		return 1.04
	default:
		return 1.0
	}
}

// String returns the mood name.
func (m Mood) String() string {
	switch m {
	case MoodAwful:
		return "awful"
	case MoodBad:
		return "bad"
	case MoodGood:
		return "good"
	case MoodGreat:
		return "great"
	default:
		return "normal"
	}
}

// Grade is an aptitude letter grade. The zero value is A.
type Grade int

const (
	GradeA Grade = iota
	GradeS
	GradeB
	GradeC
	GradeD
	GradeE
	GradeF
	GradeG
)

// ParseGrade parses a single letter grade; the empty string is GradeA.
func ParseGrade(value string) (Grade, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "A":
		return GradeA, nil
	case "S":
		return GradeS, nil
	case "B":
		return GradeB, nil
	case "C":
		return GradeC, nil
	case "D":
		return GradeD, nil
	case "E":
		return GradeE, nil
	case "F":
		return GradeF, nil
	case "G":
		return GradeG, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownGrade, value)
	}
}

// Valid reports whether g is a known grade.
func (g Grade) Valid() bool {
	return g >= GradeA && g <= GradeG
}

// String returns the letter.
func (g Grade) String() string {
	return [...]string{"A", "S", "B", "C", "D", "E", "F", "G"}[g]
}

// Rows are indexed by Grade: A S B C D E F G.
var (
	distanceSpeedTable = [...]float64{1.0, 1.05, 0.9, 0.8, 0.6, 0.4, 0.2, 0.1}
	distanceAccelTable = [...]float64{1.0, 1.05, 0.9, 0.8, 0.7, 0.5, 0.3, 0.1}
	surfaceAccelTable  = [...]float64{1.0, 1.0, 1.0, 1.0, 1.0, 0.6, 0.5, 0.4}
	surfaceSpeedTable  = [...]float64{1.0, 1.1, 0.85, 0.75, 0.6, 0.4, 0.2, 0.1}
	styleWitTable      = [...]float64{1.0, 1.1, 0.85, 0.75, 0.6, 0.4, 0.2, 0.1}
)

// DistanceSpeed scales the final-leg speed term.
func (g Grade) DistanceSpeed() float64 { return lookup(distanceSpeedTable[:], g) }

// DistanceAccel scales acceleration.
func (g Grade) DistanceAccel() float64 { return lookup(distanceAccelTable[:], g) }

// SurfaceAccel scales acceleration on the race surface.
func (g Grade) SurfaceAccel() float64 { return lookup(surfaceAccelTable[:], g) }

// SurfaceSpeed scales the target speed on the race surface.
func (g Grade) SurfaceSpeed() float64 { return lookup(surfaceSpeedTable[:], g) }

// StyleWit scales wit when rolling wit-driven decisions.
func (g Grade) StyleWit() float64 { return lookup(styleWitTable[:], g) }

func lookup(table []float64, g Grade) float64 {
	if !g.Valid() {
		return 1.0
	}
	return table[g]
}

func normalize(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer("-", "_", " ", "_").Replace(value)
}
