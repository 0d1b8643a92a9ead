package physics

import (
	"math"
	"testing"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestTargetSpeedIgnoresSpeedStatBeforeFinalLeg(t *testing.T) {
	slow := Runner{Style: profile.StylePaceChaser, Stats: profile.EffectiveStats{Speed: 100}}
	fast := Runner{Style: profile.StylePaceChaser, Stats: profile.EffectiveStats{Speed: 1200}}
	for _, phase := range []course.Phase{course.PhaseStart, course.PhaseMiddle} {
		if a, b := TargetSpeed(slow, 20, phase), TargetSpeed(fast, 20, phase); a != b {
			t.Fatalf("%s target = %v vs %v, want equal", phase, a, b)
		}
	}
	if got, want := TargetSpeed(slow, 20, course.PhaseMiddle), 20*0.991; !near(got, want) {
		t.Fatalf("middle target = %v, want %v", got, want)
	}
}

func TestTargetSpeedFinalLeg(t *testing.T) {
	r := Runner{
		Style:            profile.StyleEndCloser,
		DistanceAptitude: profile.GradeS,
		Stats:            profile.EffectiveStats{Speed: 800},
	}
	want := 20*1.02 + math.Sqrt(500*800)*1.05*0.002
	if got := TargetSpeed(r, 20, course.PhaseFinalSpurt); !near(got, want) {
		t.Fatalf("final spurt target = %v, want %v", got, want)
	}
	r.SurfaceAptitude = profile.GradeB
	if got := TargetSpeed(r, 20, course.PhaseFinalSpurt); !near(got, want*0.85) {
		t.Fatalf("surface B target = %v, want %v", got, want*0.85)
	}
}

func TestAcceleration(t *testing.T) {
	r := Runner{Style: profile.StyleFrontRunner, Stats: profile.EffectiveStats{Power: 800}}
	flat := Acceleration(r, course.PhaseMiddle, false)
	if want := 0.0006 * math.Sqrt(500*800); !near(flat, want) {
		t.Fatalf("flat accel = %v, want %v", flat, want)
	}
	up := Acceleration(r, course.PhaseMiddle, true)
	if want := 0.0004 * math.Sqrt(500*800); !near(up, want) {
		t.Fatalf("uphill accel = %v, want %v", up, want)
	}
	r.Stats.Power = 0
	if got := Acceleration(r, course.PhaseMiddle, false); got != 0 {
		t.Fatalf("zero power accel = %v, want 0", got)
	}
}

func TestMinSpeed(t *testing.T) {
	if got, want := MinSpeed(20, 800), 17+math.Sqrt(160000)*0.001; !near(got, want) {
		t.Fatalf("MinSpeed = %v, want %v", got, want)
	}
	if got := MinSpeed(20, -10); !near(got, 17) {
		t.Fatalf("MinSpeed negative guts = %v, want 17", got)
	}
}

func TestApproachNeverOvershoots(t *testing.T) {
	tests := []struct {
		name   string
		speed  float64
		target float64
		accel  float64
		decel  float64
		dt     float64
		want   float64
	}{
		{name: "accelerate partial", speed: 10, target: 20, accel: 2, decel: 1, dt: 1, want: 12},
		{name: "accelerate clamps", speed: 19.5, target: 20, accel: 2, decel: 1, dt: 1, want: 20},
		{name: "decelerate partial", speed: 22, target: 20, accel: 2, decel: 0.8, dt: 1, want: 21.2},
		{name: "decelerate clamps", speed: 20.5, target: 20, accel: 2, decel: 1, dt: 1, want: 20},
		{name: "zero dt", speed: 10, target: 20, accel: 2, decel: 1, dt: 0, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Approach(tt.speed, tt.target, tt.accel, tt.decel, tt.dt); !near(got, tt.want) {
				t.Fatalf("Approach = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaxHP(t *testing.T) {
	if got, want := MaxHP(profile.StylePaceChaser, 1000, 1000, 2000), 0.8*0.89*1000+2000; !near(got, want) {
		t.Fatalf("MaxHP = %v, want %v", got, want)
	}
	if got := MaxHP(profile.StyleLateSurger, 0, 0, 2000); got != 2000 {
		t.Fatalf("MaxHP zero stamina = %v, want 2000", got)
	}
	short := MaxHP(profile.StyleLateSurger, 1400, 1600, 2000)
	long := MaxHP(profile.StyleLateSurger, 1400, 1600, 2400)
	if want := (0.8*1400 + 2400) * 1.04; !near(long, want) {
		t.Fatalf("long MaxHP = %v, want %v", long, want)
	}
	if want := 0.8*1400 + 2000; !near(short, want) {
		t.Fatalf("short MaxHP = %v, want %v", short, want)
	}
}

func TestDrain(t *testing.T) {
	if got := Drain(20, 20, 1, 1); !near(got, 20) {
		t.Fatalf("Drain at base speed = %v, want 20", got)
	}
	if got := Drain(23, 20, 1, 0.5); !near(got, 20*225.0/144*0.5) {
		t.Fatalf("Drain fast = %v", got)
	}
	if got := Drain(20, 20, 1, 0); got != 0 {
		t.Fatalf("Drain zero dt = %v, want 0", got)
	}
}

func TestDrainModifiers(t *testing.T) {
	m := DrainModifiers{Phase: course.PhaseMiddle, Guts: 600, Mode: 1.4, Ground: 1.02}
	if got := m.Multiplier(); !near(got, 1.4*1.02) {
		t.Fatalf("middle multiplier = %v, want %v", got, 1.4*1.02)
	}
	m.Phase = course.PhaseLate
	if got, want := m.Multiplier(), GutsModifier(600)*1.4*1.02; !near(got, want) {
		t.Fatalf("late multiplier = %v, want %v", got, want)
	}
	m.StaminaSave = 0.9
	if got, want := m.Multiplier(), GutsModifier(600)*1.4*1.02*0.6; !near(got, want) {
		t.Fatalf("capped save multiplier = %v, want %v", got, want)
	}
}

func TestGutsModifierSafeAtZero(t *testing.T) {
	got := GutsModifier(0)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("GutsModifier(0) = %v, want finite", got)
	}
	if got <= GutsModifier(1000) {
		t.Fatalf("GutsModifier(0) = %v, want larger than at 1000 guts", got)
	}
}
