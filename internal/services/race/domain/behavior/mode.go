// Package behavior selects the single behavior mode a participant runs in
// for one tick and the speed, acceleration and HP modifiers it carries.
//
// Rules are evaluated in a fixed priority order: failing, position keep,
// competition, slope, conservation, limit break. The first eligible rule
// wins. Selection is a pure function of its Input plus the small per-runner
// State that carries timers between ticks; randomness comes from an injected
// Roller.
package behavior

// Mode identifies a behavior regime.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFailing
	ModeSpeedUp
	ModeOvertake
	ModePaceUp
	ModePaceDown
	ModePaceUpEx
	ModeLeadDuel
	ModeCompetitionFight
	ModeSecureLead
	ModeCompeteBeforeSpurt
	ModeUphill
	ModeDownhillAccel
	ModeConservation
	ModeLimitBreak
)

var modeNames = map[Mode]string{
	ModeNormal:             "normal",
	ModeFailing:            "failing",
	ModeSpeedUp:            "speed_up",
	ModeOvertake:           "overtake",
	ModePaceUp:             "pace_up",
	ModePaceDown:           "pace_down",
	ModePaceUpEx:           "pace_up_ex",
	ModeLeadDuel:           "lead_duel",
	ModeCompetitionFight:   "competition_fight",
	ModeSecureLead:         "secure_lead",
	ModeCompeteBeforeSpurt: "compete_before_spurt",
	ModeUphill:             "uphill",
	ModeDownhillAccel:      "downhill_accel",
	ModeConservation:       "conservation",
	ModeLimitBreak:         "limit_break",
}

// String returns the snake_case mode name.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// PositionKeep reports whether the mode belongs to the position-keep family.
func (m Mode) PositionKeep() bool {
	switch m {
	case ModeSpeedUp, ModeOvertake, ModePaceUp, ModePaceDown, ModePaceUpEx:
		return true
	default:
		return false
	}
}

// Result is the selected mode and its modifiers. Target speed becomes
// target × SpeedMult + SpeedAdd; acceleration becomes accel × AccelMult +
// AccelAdd; HP drain is multiplied by HPMult.
type Result struct {
	Mode      Mode
	SpeedMult float64
	SpeedAdd  float64
	AccelMult float64
	AccelAdd  float64
	HPMult    float64
}

func neutral(mode Mode) Result {
	return Result{Mode: mode, SpeedMult: 1, AccelMult: 1, HPMult: 1}
}

// Target applies the speed modifiers to a target speed.
func (r Result) Target(target float64) float64 {
	return target*r.SpeedMult + r.SpeedAdd
}

// Accel applies the acceleration modifiers.
func (r Result) Accel(accel float64) float64 {
	return accel*r.AccelMult + r.AccelAdd
}
