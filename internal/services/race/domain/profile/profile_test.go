package profile

import (
	"errors"
	"math"
	"testing"
)

func TestEffective(t *testing.T) {
	tests := []struct {
		name string
		stat int
		mood Mood
		want float64
	}{
		{name: "below cap", stat: 800, mood: MoodNormal, want: 800},
		{name: "at cap", stat: 1200, mood: MoodNormal, want: 1200},
		{name: "above cap halves excess", stat: 1600, mood: MoodNormal, want: 1400},
		{name: "clamped max", stat: 20000, mood: MoodNormal, want: 1200 + (9999-1200)/2.0},
		{name: "negative clamps to zero", stat: -50, mood: MoodGreat, want: 0},
		{name: "great mood", stat: 1000, mood: MoodGreat, want: 1040},
		{name: "awful mood after cap", stat: 1600, mood: MoodAwful, want: 1400 * 0.96},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Effective(tt.stat, tt.mood)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Effective(%d, %s) = %v, want %v", tt.stat, tt.mood, got, tt.want)
			}
		})
	}
}

func TestProfileEffectiveAppliesPenaltyBeforeCap(t *testing.T) {
	p := Profile{Stats: Stats{Speed: 1000, Stamina: 900, Power: 1300, Guts: 500, Wit: 400}}
	eff := p.Effective(Penalty{Speed: 50, Power: 100})
	if eff.Speed != 950 {
		t.Fatalf("speed = %v, want 950", eff.Speed)
	}
	if eff.Power != 1200 {
		t.Fatalf("power = %v, want 1200", eff.Power)
	}
	if eff.Stamina != 900 {
		t.Fatalf("stamina = %v, want 900", eff.Stamina)
	}
}

func TestParseStats(t *testing.T) {
	stats, err := ParseStats(map[string]int{"speed": 10000, "stamina": 1, "power": 2, "guts": -3, "wit": 4})
	if err != nil {
		t.Fatalf("parse stats: %v", err)
	}
	if stats.Speed != MaxStat || stats.Guts != 0 {
		t.Fatalf("stats = %+v, want clamped speed and guts", stats)
	}

	_, err = ParseStats(map[string]int{"speed": 1, "power": 2})
	if !errors.Is(err, ErrMissingStat) {
		t.Fatalf("err = %v, want ErrMissingStat", err)
	}
}

func TestParseTraits(t *testing.T) {
	if s, err := ParseStyle("Pace-Chaser"); err != nil || s != StylePaceChaser {
		t.Fatalf("ParseStyle = %v, %v", s, err)
	}
	if s, err := ParseStyle("EC"); err != nil || s != StyleEndCloser {
		t.Fatalf("ParseStyle(EC) = %v, %v", s, err)
	}
	if _, err := ParseStyle("runaway"); !errors.Is(err, ErrUnknownStyle) {
		t.Fatalf("err = %v, want ErrUnknownStyle", err)
	}
	if m, err := ParseMood(""); err != nil || m != MoodNormal {
		t.Fatalf("ParseMood(\"\") = %v, %v", m, err)
	}
	if g, err := ParseGrade("s"); err != nil || g != GradeS {
		t.Fatalf("ParseGrade(s) = %v, %v", g, err)
	}
	if _, err := ParseGrade("Z"); !errors.Is(err, ErrUnknownGrade) {
		t.Fatalf("err = %v, want ErrUnknownGrade", err)
	}
}

func TestGradeTables(t *testing.T) {
	tests := []struct {
		grade Grade
		speed float64
		accel float64
		wit   float64
	}{
		{GradeS, 1.05, 1.05, 1.1},
		{GradeA, 1.0, 1.0, 1.0},
		{GradeD, 0.6, 0.7, 0.6},
		{GradeG, 0.1, 0.1, 0.1},
	}
	for _, tt := range tests {
		if got := tt.grade.DistanceSpeed(); got != tt.speed {
			t.Fatalf("%s distance speed = %v, want %v", tt.grade, got, tt.speed)
		}
		if got := tt.grade.DistanceAccel(); got != tt.accel {
			t.Fatalf("%s distance accel = %v, want %v", tt.grade, got, tt.accel)
		}
		if got := tt.grade.StyleWit(); got != tt.wit {
			t.Fatalf("%s style wit = %v, want %v", tt.grade, got, tt.wit)
		}
	}
}

func TestStatsTotal(t *testing.T) {
	s := Stats{Speed: 1200, Stamina: 900, Power: 800, Guts: 400, Wit: 700}
	if got := s.Total(); got != 4000 {
		t.Fatalf("Total = %d, want 4000", got)
	}
}

func TestValidate(t *testing.T) {
	p := Profile{Name: "x", Gate: 0}
	if err := p.Validate(); !errors.Is(err, ErrInvalidGate) {
		t.Fatalf("err = %v, want ErrInvalidGate", err)
	}
	p.Gate = 4
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
