// Package racecard loads race cards: the configuration, custom skills and
// entrants of one race, written as a Lua script or a YAML document.
//
// A Lua card builds the race through a small DSL and returns it:
//
//	local race = Race.new("Autumn Cup", { distance = 2000, course = "tokyo" })
//	race:skill({ id = "late_charge", effects = { { kind = "speed", magnitude = 0.3, duration = 4 } } })
//	race:entrant("Quiet Step", { style = "LS", speed = 1100, stamina = 800, power = 900, guts = 500, wit = 600 })
//	return race
//
// A YAML card carries the same fields under race, skills and entrants.
package racecard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidCard indicates a race card that cannot describe a race.
var ErrInvalidCard = errors.New("invalid race card")

// Format is the language a card is written in.
type Format string

const (
	FormatLua  Format = "lua"
	FormatYAML Format = "yaml"
)

// FormatOf picks the card format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		return FormatLua, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported extension %q", ErrInvalidCard, filepath.Ext(path))
	}
}

// Source is the raw text of a card. Stored races keep it so they can be
// replayed.
type Source struct {
	Name   string
	Format Format
	Text   string
}

// Read loads a card source from disk.
func Read(path string) (Source, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Source{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read card: %w", err)
	}
	return Source{
		Name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Format: format,
		Text:   string(data),
	}, nil
}

// Card is a parsed race card before validation. Values keep the loosely
// typed shape of the source language.
type Card struct {
	Name     string
	Race     map[string]any
	Skills   []map[string]any
	Entrants []Entrant
}

// Entrant is one participant line of a card.
type Entrant struct {
	Name string
	Args map[string]any
}

// Parse parses src in its format.
func Parse(src Source) (*Card, error) {
	var (
		card *Card
		err  error
	)
	switch src.Format {
	case FormatLua:
		card, err = parseLua(src.Name, src.Text)
	case FormatYAML:
		card, err = parseYAML(src.Text)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidCard, src.Format)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(card.Name) == "" {
		card.Name = src.Name
	}
	return card, nil
}

// Load reads, parses and builds the card at path.
func Load(path string) (*Race, Source, error) {
	src, err := Read(path)
	if err != nil {
		return nil, Source{}, err
	}
	race, err := Compile(src)
	if err != nil {
		return nil, Source{}, fmt.Errorf("%s: %w", path, err)
	}
	return race, src, nil
}

// Compile parses and builds src.
func Compile(src Source) (*Race, error) {
	card, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return Build(card)
}
