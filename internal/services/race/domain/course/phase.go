package course

// Phase is the global race phase. Phases only move forward.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMiddle
	PhaseLate
	PhaseFinalSpurt
)

// SectionCount is the number of equal-length course sections.
const SectionCount = 24

// PhaseAt returns the phase for a progress fraction in [0, 1], using the
// thresholds 1/6, 4/6 and 5/6.
func PhaseAt(progress float64) Phase {
	switch {
	case progress >= 5.0/6.0:
		return PhaseFinalSpurt
	case progress >= 4.0/6.0:
		return PhaseLate
	case progress >= 1.0/6.0:
		return PhaseMiddle
	default:
		return PhaseStart
	}
}

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "START"
	case PhaseMiddle:
		return "MIDDLE"
	case PhaseLate:
		return "LATE"
	case PhaseFinalSpurt:
		return "FINAL_SPURT"
	default:
		return "UNKNOWN"
	}
}

// ParsePhase parses a phase name in any case, accepting "final" and
// "last_spurt" for FINAL_SPURT.
func ParsePhase(value string) (Phase, bool) {
	switch normalizeName(value) {
	case "start", "early", "opening":
		return PhaseStart, true
	case "middle", "mid":
		return PhaseMiddle, true
	case "late":
		return PhaseLate, true
	case "final_spurt", "final", "last_spurt", "spurt":
		return PhaseFinalSpurt, true
	default:
		return 0, false
	}
}

// Leg groups phases for coefficient tables: LATE and FINAL_SPURT share the
// final leg.
type Leg int

const (
	LegOpening Leg = iota
	LegMiddle
	LegFinal
)

// Leg returns the coefficient leg of the phase.
func (p Phase) Leg() Leg {
	switch p {
	case PhaseStart:
		return LegOpening
	case PhaseMiddle:
		return LegMiddle
	default:
		return LegFinal
	}
}

// SectionAt returns the 1-based section (1..24) for a progress fraction.
func SectionAt(progress float64) int {
	if progress <= 0 {
		return 1
	}
	s := int(progress*SectionCount) + 1
	if s > SectionCount {
		return SectionCount
	}
	return s
}
