// Package course describes the race configuration and the static geometry a
// race runs on: phases, sections, slopes, corners, and lane width.
package course

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidDistance indicates a non-positive race distance.
	ErrInvalidDistance = errors.New("distance must be positive")
	// ErrUnknownCourse indicates a course identifier missing from the catalog.
	ErrUnknownCourse = errors.New("unknown course")
	// ErrUnknownSurface indicates an unrecognized surface name.
	ErrUnknownSurface = errors.New("unknown surface")
	// ErrUnknownCondition indicates an unrecognized track condition name.
	ErrUnknownCondition = errors.New("unknown track condition")
)

// Surface is the racing surface.
type Surface int

const (
	SurfaceTurf Surface = iota
	SurfaceDirt
)

// ParseSurface parses "turf" or "dirt"; the empty string is turf.
func ParseSurface(value string) (Surface, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "turf":
		return SurfaceTurf, nil
	case "dirt":
		return SurfaceDirt, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSurface, value)
	}
}

// String returns the surface name.
func (s Surface) String() string {
	if s == SurfaceDirt {
		return "dirt"
	}
	return "turf"
}

// Condition is the track condition.
type Condition int

const (
	ConditionFirm Condition = iota
	ConditionGood
	ConditionSoft
	ConditionHeavy
)

// ParseCondition parses a track condition name; the empty string is firm.
func ParseCondition(value string) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "firm":
		return ConditionFirm, nil
	case "good":
		return ConditionGood, nil
	case "soft":
		return ConditionSoft, nil
	case "heavy":
		return ConditionHeavy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCondition, value)
	}
}

// String returns the condition name.
func (c Condition) String() string {
	switch c {
	case ConditionGood:
		return "good"
	case ConditionSoft:
		return "soft"
	case ConditionHeavy:
		return "heavy"
	default:
		return "firm"
	}
}

// Config is the immutable race configuration.
type Config struct {
	// Distance is the race length in meters.
	Distance float64
	Surface  Surface
	// Condition is the going on race day.
	Condition Condition
	// Course names a catalogued racecourse. Empty selects a generic flat
	// course with default corners.
	Course string
	// StatThreshold is the minimum total stat for entry. Informational only.
	StatThreshold int
}

// Validate rejects configurations no race can run on.
func (c Config) Validate() error {
	if c.Distance <= 0 || math.IsNaN(c.Distance) || math.IsInf(c.Distance, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidDistance, c.Distance)
	}
	if _, err := lookupCourse(c.Course); err != nil {
		return err
	}
	return nil
}

// BaseSpeed returns the reference speed in m/s for the race distance.
func (c Config) BaseSpeed() float64 {
	return BaseSpeed(c.Distance)
}

// BaseSpeed returns 20 - (distance-2000)/1000.
func BaseSpeed(distance float64) float64 {
	return 20.0 - (distance-2000.0)/1000.0
}

// Category is the race type bucket by distance.
type Category int

const (
	CategorySprint Category = iota
	CategoryMile
	CategoryMedium
	CategoryLong
)

// Category buckets the race distance.
func (c Config) Category() Category {
	switch {
	case c.Distance <= 1400:
		return CategorySprint
	case c.Distance <= 1800:
		return CategoryMile
	case c.Distance <= 2400:
		return CategoryMedium
	default:
		return CategoryLong
	}
}

// ParseCategory parses a race type name.
func ParseCategory(value string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sprint":
		return CategorySprint, nil
	case "mile":
		return CategoryMile, nil
	case "medium":
		return CategoryMedium, nil
	case "long":
		return CategoryLong, nil
	default:
		return 0, fmt.Errorf("unknown race type %q", value)
	}
}

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySprint:
		return "sprint"
	case CategoryMile:
		return "mile"
	case CategoryMedium:
		return "medium"
	default:
		return "long"
	}
}

// Ground returns the stat penalty and HP multiplier for the surface and
// condition.
func (c Config) Ground() Ground {
	return groundTable[c.Surface][c.Condition]
}

// Ground is the effect of surface and condition on participants.
type Ground struct {
	SpeedPenalty int
	PowerPenalty int
	HPMultiplier float64
}

var groundTable = [2][4]Ground{
	SurfaceTurf: {
		ConditionFirm:  {0, 0, 1.0},
		ConditionGood:  {0, 50, 1.0},
		ConditionSoft:  {0, 50, 1.02},
		ConditionHeavy: {50, 50, 1.02},
	},
	SurfaceDirt: {
		ConditionFirm:  {0, 100, 1.0},
		ConditionGood:  {0, 50, 1.0},
		ConditionSoft:  {0, 100, 1.02},
		ConditionHeavy: {50, 100, 1.02},
	},
}
