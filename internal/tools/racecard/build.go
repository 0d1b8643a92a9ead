package racecard

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/louisbranch/racesim/internal/services/race/domain/course"
	"github.com/louisbranch/racesim/internal/services/race/domain/profile"
	"github.com/louisbranch/racesim/internal/services/race/domain/skill"
)

// Race is a validated race card, ready to register with an engine.
type Race struct {
	Name   string
	Config course.Config
	// Seed is the card's fixed seed; HasSeed is false when the card leaves
	// the seed to the caller.
	Seed    int64
	HasSeed bool
	// Catalog is the built-in skill catalog extended with the card's skills.
	Catalog  *skill.Catalog
	Entrants []profile.Profile
	// BelowThreshold names the entrants whose stat total is under the
	// card's stat threshold. They still run.
	BelowThreshold []string
}

// Build validates a parsed card.
func Build(card *Card) (*Race, error) {
	if card == nil {
		return nil, fmt.Errorf("%w: empty card", ErrInvalidCard)
	}
	cfg, err := buildConfig(card.Race)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("race: %w", err)
	}
	race := &Race{Name: card.Name, Config: cfg}
	if v, ok := card.Race["seed"]; ok {
		seed, err := integer(v)
		if err != nil {
			return nil, fmt.Errorf("%w: seed: %v", ErrInvalidCard, err)
		}
		race.Seed, race.HasSeed = int64(seed), true
	}

	custom := make([]skill.Skill, 0, len(card.Skills))
	for i, args := range card.Skills {
		s, err := buildSkill(args)
		if err != nil {
			return nil, fmt.Errorf("skill %d: %w", i+1, err)
		}
		custom = append(custom, s)
	}
	race.Catalog, err = skill.Default().With(custom...)
	if err != nil {
		return nil, fmt.Errorf("skills: %w", err)
	}

	if len(card.Entrants) == 0 {
		return nil, fmt.Errorf("%w: no entrants", ErrInvalidCard)
	}
	for i, entrant := range card.Entrants {
		p, err := buildProfile(entrant, i+1)
		if err != nil {
			return nil, fmt.Errorf("entrant %q: %w", entrant.Name, err)
		}
		if _, err := race.Catalog.Resolve(p.Skills); err != nil {
			return nil, fmt.Errorf("entrant %q: %w", entrant.Name, err)
		}
		race.Entrants = append(race.Entrants, p)
		if cfg.StatThreshold > 0 && p.Stats.Total() < cfg.StatThreshold {
			race.BelowThreshold = append(race.BelowThreshold, p.Name)
		}
	}
	return race, nil
}

func buildConfig(args map[string]any) (course.Config, error) {
	var cfg course.Config
	v, ok := args["distance"]
	if !ok {
		return cfg, fmt.Errorf("%w: race distance is required", ErrInvalidCard)
	}
	distance, err := number(v)
	if err != nil {
		return cfg, fmt.Errorf("%w: distance: %v", ErrInvalidCard, err)
	}
	cfg.Distance = distance
	if cfg.Surface, err = course.ParseSurface(text(args["surface"])); err != nil {
		return cfg, err
	}
	if cfg.Condition, err = course.ParseCondition(text(args["condition"])); err != nil {
		return cfg, err
	}
	cfg.Course = text(args["course"])
	if v, ok := args["stat_threshold"]; ok {
		if cfg.StatThreshold, err = integer(v); err != nil {
			return cfg, fmt.Errorf("%w: stat_threshold: %v", ErrInvalidCard, err)
		}
	}
	return cfg, nil
}

func buildProfile(entrant Entrant, index int) (profile.Profile, error) {
	args := entrant.Args
	p := profile.Profile{Name: entrant.Name, Gate: index}
	if strings.TrimSpace(p.Name) == "" {
		return p, fmt.Errorf("%w: entrant name is required", ErrInvalidCard)
	}

	stats := make(map[string]int, len(profile.StatNames))
	for _, name := range profile.StatNames {
		v, ok := args[name]
		if !ok {
			continue
		}
		n, err := integer(v)
		if err != nil {
			return p, fmt.Errorf("%w: %s: %v", ErrInvalidCard, name, err)
		}
		stats[name] = n
	}
	var err error
	if p.Stats, err = profile.ParseStats(stats); err != nil {
		return p, err
	}

	style, ok := args["style"]
	if !ok {
		return p, fmt.Errorf("%w: style is required", ErrInvalidCard)
	}
	if p.Style, err = profile.ParseStyle(text(style)); err != nil {
		return p, err
	}
	if p.Mood, err = profile.ParseMood(text(args["mood"])); err != nil {
		return p, err
	}
	grades := []struct {
		key string
		dst *profile.Grade
	}{
		{"distance_aptitude", &p.DistanceAptitude},
		{"surface_aptitude", &p.SurfaceAptitude},
		{"style_aptitude", &p.StyleAptitude},
	}
	for _, g := range grades {
		if *g.dst, err = profile.ParseGrade(text(args[g.key])); err != nil {
			return p, fmt.Errorf("%s: %w", g.key, err)
		}
	}
	if v, ok := args["gate"]; ok {
		if p.Gate, err = integer(v); err != nil {
			return p, fmt.Errorf("%w: gate: %v", ErrInvalidCard, err)
		}
	}
	if p.Skills, err = stringList(args["skills"]); err != nil {
		return p, fmt.Errorf("%w: skills: %v", ErrInvalidCard, err)
	}
	return p, p.Validate()
}

func buildSkill(args map[string]any) (skill.Skill, error) {
	s := skill.Skill{
		ID:   text(args["id"]),
		Name: text(args["name"]),
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	var err error
	if v, ok := args["rarity"]; ok {
		if s.Rarity, err = skill.ParseRarity(text(v)); err != nil {
			return s, err
		}
	}
	floats := []struct {
		key string
		dst *float64
	}{
		{"chance", &s.Chance},
		{"cooldown", &s.Cooldown},
	}
	for _, f := range floats {
		v, ok := args[f.key]
		if !ok {
			continue
		}
		if *f.dst, err = number(v); err != nil {
			return s, fmt.Errorf("%w: %s: %v", ErrInvalidCard, f.key, err)
		}
	}
	if _, ok := args["chance"]; !ok {
		s.Chance = defaultChance
	}
	s.Inherited, _ = args["inherited"].(bool)

	effects, _ := args["effects"].([]any)
	for i, raw := range effects {
		e, err := buildEffect(raw)
		if err != nil {
			return s, fmt.Errorf("effect %d: %w", i+1, err)
		}
		s.Effects = append(s.Effects, e)
	}
	if conds, ok := args["conditions"].(map[string]any); ok {
		if s.Conditions, err = ParseConditions(conds); err != nil {
			return s, err
		}
	}
	return s, s.Validate()
}

// defaultChance is the activation chance of a card skill that sets none.
const defaultChance = 0.3

func buildEffect(raw any) (skill.Effect, error) {
	args, ok := raw.(map[string]any)
	if !ok {
		return skill.Effect{}, fmt.Errorf("%w: effect must be a table", ErrInvalidCard)
	}
	kind, err := skill.ParseEffectKind(text(args["kind"]))
	if err != nil {
		return skill.Effect{}, err
	}
	e := skill.Effect{Kind: kind}
	if e.Magnitude, err = number(args["magnitude"]); err != nil {
		return e, fmt.Errorf("%w: magnitude: %v", ErrInvalidCard, err)
	}
	if v, ok := args["duration"]; ok {
		if e.Duration, err = number(v); err != nil {
			return e, fmt.Errorf("%w: duration: %v", ErrInvalidCard, err)
		}
	}
	return e, nil
}

// ParseConditions converts a condition table into skill conditions. Keys
// are applied in sorted order so errors are stable.
func ParseConditions(args map[string]any) ([]skill.Condition, error) {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []skill.Condition
	for _, key := range keys {
		c, err := parseCondition(key, args[key])
		if err != nil {
			return nil, fmt.Errorf("condition %s: %w", key, err)
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func parseCondition(key string, v any) (skill.Condition, error) {
	switch key {
	case "phase":
		phase, ok := course.ParsePhase(text(v))
		if !ok {
			return nil, fmt.Errorf("%w: unknown phase %q", ErrInvalidCard, text(v))
		}
		return skill.PhaseIs{Phase: phase}, nil
	case "position":
		pos, err := skill.ParsePosition(text(v))
		return skill.PositionIn{Position: pos}, err
	case "terrain":
		t, err := skill.ParseTerrain(text(v))
		return skill.TerrainIs{Terrain: t}, err
	case "style":
		s, err := profile.ParseStyle(text(v))
		return skill.StyleIs{Style: s}, err
	case "race_type":
		c, err := course.ParseCategory(text(v))
		return skill.RaceTypeIs{Category: c}, err
	case "min_hp":
		f, err := number(v)
		return skill.MinHP{Fraction: f}, err
	case "remaining":
		f, err := number(v)
		return skill.RemainingWithin{Meters: f}, err
	case "corner":
		n, err := integer(v)
		return skill.CornerIs{Number: n}, err
	case "sections":
		bounds, ok := v.([]any)
		if !ok || len(bounds) != 2 {
			return nil, fmt.Errorf("%w: sections must be {from, to}", ErrInvalidCard)
		}
		from, err := integer(bounds[0])
		if err != nil {
			return nil, err
		}
		to, err := integer(bounds[1])
		if err != nil {
			return nil, err
		}
		return skill.SectionRange{From: from, To: to}, nil
	case "second_half", "challenge", "passing", "blocked", "overtaken":
		on, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a boolean", ErrInvalidCard, key)
		}
		if !on {
			return nil, nil
		}
		return flags[key], nil
	default:
		return nil, fmt.Errorf("%w: unknown condition", ErrInvalidCard)
	}
}

var flags = map[string]skill.Condition{
	"second_half": skill.SecondHalf{},
	"challenge":   skill.InChallenge{},
	"passing":     skill.Passing{},
	"blocked":     skill.BlockedAhead{},
	"overtaken":   skill.BeingOvertaken{},
}

func text(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

func number(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("not a finite number: %v", n)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("want a number, got %T", v)
	}
}

func integer(v any) (int, error) {
	f, err := number(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("want an integer, got %v", f)
	}
	return int(f), nil
}

func stringList(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("want a list, got %T", v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("want a skill id, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}
