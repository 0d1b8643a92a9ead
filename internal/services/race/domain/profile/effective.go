package profile

// Penalty is subtracted from raw stats before the soft cap. Track surface and
// condition produce one per race.
type Penalty struct {
	Speed int
	Power int
}

// EffectiveStats are the soft-capped, mood-scaled stats used by formulas.
type EffectiveStats struct {
	Speed   float64
	Stamina float64
	Power   float64
	Guts    float64
	Wit     float64
}

// Effective applies the soft cap and mood factor to one raw stat:
//
//	(min(s, 1200) + max(s-1200, 0)/2) × mood
//
// The stat is clamped to [0, MaxStat] first.
func Effective(stat int, mood Mood) float64 {
	s := float64(clampStat(stat))
	capped := s
	if s > SoftCap {
		capped = SoftCap + (s-SoftCap)/2
	}
	return capped * mood.Factor()
}

// Effective returns the profile's effective stats under a ground penalty.
func (p Profile) Effective(pen Penalty) EffectiveStats {
	return EffectiveStats{
		Speed:   Effective(p.Stats.Speed-pen.Speed, p.Mood),
		Stamina: Effective(p.Stats.Stamina, p.Mood),
		Power:   Effective(p.Stats.Power-pen.Power, p.Mood),
		Guts:    Effective(p.Stats.Guts, p.Mood),
		Wit:     Effective(p.Stats.Wit, p.Mood),
	}
}

// ScaledWit returns effective wit scaled by the style aptitude.
func (p Profile) ScaledWit(eff EffectiveStats) float64 {
	return eff.Wit * p.StyleAptitude.StyleWit()
}
