package course

import (
	"fmt"
	"slices"
	"strings"
)

// Slope is a stretch of the course between Start and End meters with a
// gradient in percent; positive is uphill.
type Slope struct {
	Start   float64
	End     float64
	Percent float64
}

// Corner spans a progress range. Corners are numbered backwards from the
// finish, so 4 is the final corner.
type Corner struct {
	Start  float64
	End    float64
	Number int
}

type courseKey struct {
	distance int
	surface  Surface
}

type racecourse struct {
	maxLane float64
	slopes  map[courseKey][]Slope
	corners map[int][]Corner
}

const defaultMaxLane = 1.2

var defaultCorners = []Corner{{0.15, 0.30, 1}, {0.40, 0.50, 2}, {0.55, 0.65, 3}, {0.75, 0.85, 4}}

// Courses returns the catalogued course identifiers in sorted order.
func Courses() []string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func lookupCourse(id string) (racecourse, error) {
	key := normalizeName(id)
	if key == "" {
		return racecourse{maxLane: defaultMaxLane}, nil
	}
	rc, ok := catalog[key]
	if !ok {
		return racecourse{}, fmt.Errorf("%w: %q", ErrUnknownCourse, id)
	}
	return rc, nil
}

func normalizeName(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer("-", "_", " ", "_").Replace(value)
}

func turf(d int) courseKey { return courseKey{d, SurfaceTurf} }
func dirt(d int) courseKey { return courseKey{d, SurfaceDirt} }

var catalog = map[string]racecourse{
	"tokyo": {
		maxLane: 1.5,
		slopes: map[courseKey][]Slope{
			turf(1400): {{250, 450, 0.5}, {1150, 1350, -0.3}},
			turf(1600): {{300, 500, 0.5}, {1350, 1550, -0.3}},
			turf(1800): {{350, 600, 0.5}, {1500, 1750, -0.3}},
			turf(2000): {{400, 700, 0.5}, {1700, 1950, -0.3}},
			turf(2400): {{500, 900, 0.5}, {1400, 1700, -0.3}, {2100, 2350, 0.4}},
			turf(2500): {{550, 950, 0.5}, {1500, 1800, -0.3}, {2200, 2450, 0.4}},
			turf(3400): {{700, 1100, 0.5}, {1700, 2000, -0.3}, {2800, 3100, 0.5}, {3100, 3350, -0.3}},
			dirt(1600): {{200, 400, 0.3}, {1300, 1550, -0.2}},
			dirt(2100): {{400, 700, 0.4}, {1700, 2000, -0.3}},
		},
		corners: map[int][]Corner{
			1400: {{0.07, 0.21, 1}, {0.71, 0.86, 4}},
			1600: {{0.06, 0.19, 1}, {0.69, 0.84, 4}},
			1800: {{0.06, 0.17, 1}, {0.67, 0.83, 4}},
			2000: {{0.05, 0.15, 1}, {0.25, 0.35, 2}, {0.65, 0.75, 3}, {0.75, 0.85, 4}},
			2300: {{0.04, 0.13, 1}, {0.23, 0.32, 2}, {0.63, 0.72, 3}, {0.72, 0.83, 4}},
			2400: {{0.04, 0.13, 1}, {0.21, 0.30, 2}, {0.62, 0.71, 3}, {0.71, 0.82, 4}},
			2500: {{0.04, 0.12, 1}, {0.20, 0.28, 2}, {0.60, 0.68, 3}, {0.68, 0.80, 4}},
			3400: {{0.03, 0.09, 1}, {0.15, 0.21, 2}, {0.44, 0.50, 3}, {0.56, 0.62, 4}, {0.74, 0.82, 4}},
		},
	},
	"nakayama": {
		maxLane: 1.25,
		slopes: map[courseKey][]Slope{
			turf(1200): {{0, 200, -1.5}, {1025, 1135, 2.0}},
			turf(1600): {{300, 600, -1.5}, {1425, 1535, 2.0}},
			turf(1800): {{1, 36, 2.0}, {125, 325, 1.5}, {425, 825, -1.5}, {1625, 1735, 2.0}},
			turf(2000): {{125, 235, 2.0}, {325, 525, 1.5}, {625, 1025, -1.5}, {1825, 1935, 2.0}},
			turf(2200): {{153, 263, 2.0}, {353, 553, 1.5}, {900, 1200, -1.5}, {2025, 2135, 2.0}},
			turf(2500): {{621, 731, 2.0}, {825, 1025, 1.5}, {1125, 1525, -1.5}, {2325, 2435, 2.0}},
			turf(3600): {
				{40, 150, 2.0}, {240, 440, 1.5}, {540, 940, -1.5}, {1740, 1850, 2.0},
				{1925, 2125, 1.5}, {2225, 2625, -1.5}, {3425, 3535, 2.0},
			},
			dirt(1200): {{175, 350, -1.5}, {1000, 1175, 1.5}},
			dirt(1800): {{100, 275, 1.5}, {350, 525, 1.0}, {775, 950, -1.5}, {1600, 1775, 1.5}},
		},
		corners: map[int][]Corner{
			1200: {{0.08, 0.25, 1}, {0.75, 0.92, 4}},
			1600: {{0.06, 0.19, 1}, {0.31, 0.44, 2}, {0.69, 0.81, 3}, {0.81, 0.94, 4}},
			1800: {{0.06, 0.17, 1}, {0.28, 0.39, 2}, {0.67, 0.78, 3}, {0.78, 0.92, 4}},
			2000: {{0.05, 0.15, 1}, {0.25, 0.35, 2}, {0.65, 0.75, 3}, {0.75, 0.90, 4}},
			2200: {{0.05, 0.14, 1}, {0.23, 0.32, 2}, {0.64, 0.73, 3}, {0.73, 0.88, 4}},
			2500: {{0.04, 0.12, 1}, {0.20, 0.28, 2}, {0.60, 0.68, 3}, {0.68, 0.84, 4}},
			3600: {
				{0.03, 0.08, 1}, {0.14, 0.19, 2}, {0.28, 0.33, 3}, {0.39, 0.44, 4},
				{0.53, 0.58, 1}, {0.64, 0.69, 2}, {0.78, 0.83, 3}, {0.83, 0.92, 4},
			},
		},
	},
	"hanshin": {
		maxLane: 1.3,
		slopes: map[courseKey][]Slope{
			turf(1200): {{100, 300, 0.8}, {900, 1100, -0.5}},
			turf(1400): {{150, 400, 0.8}, {1100, 1350, -0.5}},
			turf(1600): {{200, 500, 0.8}, {1300, 1550, -0.5}},
			turf(1800): {{250, 600, 0.8}, {1500, 1750, -0.5}},
			turf(2000): {{300, 700, 0.8}, {1200, 1500, -0.6}, {1700, 1950, -0.3}},
			turf(2200): {{350, 800, 0.8}, {1300, 1700, -0.6}, {1900, 2150, -0.3}},
			turf(2400): {{400, 900, 0.8}, {1400, 1800, -0.6}, {2100, 2350, -0.3}},
			turf(3000): {{500, 1000, 0.8}, {1600, 2000, -0.6}, {2200, 2600, 0.8}, {2700, 2950, -0.5}},
			dirt(1800): {{200, 500, 0.5}, {1400, 1700, -0.4}},
			dirt(2000): {{300, 600, 0.5}, {1600, 1900, -0.4}},
		},
		corners: map[int][]Corner{
			1200: {{0.08, 0.25, 1}, {0.75, 0.92, 4}},
			1400: {{0.07, 0.21, 1}, {0.36, 0.50, 2}, {0.71, 0.86, 4}},
			1600: {{0.06, 0.19, 1}, {0.31, 0.44, 2}, {0.69, 0.81, 3}, {0.81, 0.94, 4}},
			1800: {{0.06, 0.17, 1}, {0.28, 0.39, 2}, {0.56, 0.67, 3}, {0.78, 0.92, 4}},
			2000: {{0.05, 0.15, 1}, {0.25, 0.35, 2}, {0.50, 0.60, 3}, {0.75, 0.90, 4}},
			2200: {{0.05, 0.14, 1}, {0.23, 0.32, 2}, {0.45, 0.55, 3}, {0.73, 0.88, 4}},
			2400: {{0.04, 0.13, 1}, {0.21, 0.29, 2}, {0.42, 0.50, 3}, {0.71, 0.85, 4}},
			3000: {
				{0.03, 0.10, 1}, {0.17, 0.23, 2}, {0.33, 0.40, 3}, {0.57, 0.63, 4},
				{0.70, 0.76, 3}, {0.83, 0.92, 4},
			},
		},
	},
	"kyoto": {
		maxLane: 1.3,
		slopes: map[courseKey][]Slope{
			turf(1200): {{200, 400, 1.2}, {800, 1000, -0.8}},
			turf(1400): {{250, 500, 1.2}, {1000, 1250, -0.8}},
			turf(1600): {{300, 600, 1.2}, {700, 900, -0.5}, {1200, 1450, -0.8}},
			turf(1800): {{350, 700, 1.2}, {800, 1000, -0.5}, {1400, 1700, -0.8}},
			turf(2000): {{400, 800, 1.2}, {900, 1200, -0.5}, {1600, 1900, -0.8}},
			turf(2200): {{450, 900, 1.2}, {1000, 1400, -0.5}, {1800, 2100, -0.8}},
			turf(2400): {{500, 1000, 1.2}, {1100, 1500, -0.5}, {2000, 2300, -0.8}},
			turf(3000): {{600, 1100, 1.2}, {1200, 1700, -0.5}, {2000, 2500, 1.2}, {2600, 2900, -0.8}},
			turf(3200): {{650, 1200, 1.2}, {1300, 1800, -0.5}, {2100, 2600, 1.2}, {2700, 3100, -0.8}},
			dirt(1800): {{300, 600, 0.8}, {1400, 1700, -0.6}},
			dirt(1900): {{350, 700, 0.8}, {1500, 1800, -0.6}},
		},
		corners: map[int][]Corner{
			1200: {{0.08, 0.25, 1}, {0.75, 0.92, 4}},
			1400: {{0.07, 0.21, 1}, {0.71, 0.86, 4}},
			1600: {{0.06, 0.19, 1}, {0.31, 0.44, 2}, {0.69, 0.81, 3}, {0.81, 0.94, 4}},
			1800: {{0.06, 0.17, 1}, {0.28, 0.39, 2}, {0.67, 0.78, 3}, {0.78, 0.92, 4}},
			2000: {{0.05, 0.15, 1}, {0.25, 0.35, 2}, {0.65, 0.75, 3}, {0.75, 0.90, 4}},
			2200: {{0.05, 0.14, 1}, {0.23, 0.32, 2}, {0.64, 0.73, 3}, {0.73, 0.88, 4}},
			2400: {{0.04, 0.13, 1}, {0.21, 0.29, 2}, {0.62, 0.71, 3}, {0.71, 0.85, 4}},
			3000: {
				{0.03, 0.10, 1}, {0.17, 0.23, 2}, {0.43, 0.50, 3}, {0.57, 0.63, 4},
				{0.77, 0.83, 3}, {0.83, 0.92, 4},
			},
			3200: {
				{0.03, 0.09, 1}, {0.16, 0.22, 2}, {0.41, 0.47, 3}, {0.53, 0.59, 4},
				{0.75, 0.81, 3}, {0.81, 0.91, 4},
			},
		},
	},
	"chukyo": {
		maxLane: 1.2,
		slopes: map[courseKey][]Slope{
			turf(1200): {{100, 300, 0.6}, {900, 1100, -0.4}},
			turf(1400): {{150, 400, 0.6}, {1100, 1350, -0.4}},
			turf(1600): {{200, 500, 0.6}, {1300, 1550, -0.4}},
			turf(1800): {{250, 600, 0.6}, {1500, 1750, -0.4}},
			turf(2000): {{300, 700, 0.6}, {1100, 1400, -0.4}, {1700, 1950, -0.3}},
			turf(2200): {{350, 800, 0.6}, {1200, 1500, -0.4}, {1900, 2150, -0.3}},
			dirt(1800): {{200, 450, 0.4}, {1400, 1700, -0.3}},
			dirt(1900): {{250, 500, 0.4}, {1500, 1800, -0.3}},
		},
		corners: map[int][]Corner{
			1200: {{0.08, 0.25, 1}, {0.75, 0.92, 4}},
			1400: {{0.07, 0.21, 1}, {0.71, 0.86, 4}},
			1600: {{0.06, 0.19, 1}, {0.69, 0.84, 4}},
			1800: {{0.06, 0.17, 1}, {0.28, 0.39, 2}, {0.67, 0.78, 3}, {0.78, 0.92, 4}},
			2000: {{0.05, 0.15, 1}, {0.25, 0.35, 2}, {0.65, 0.75, 3}, {0.75, 0.90, 4}},
			2200: {{0.05, 0.14, 1}, {0.23, 0.32, 2}, {0.64, 0.73, 3}, {0.73, 0.88, 4}},
		},
	},
	"sapporo": {
		maxLane: 1.1,
		slopes: map[courseKey][]Slope{
			turf(1200): {{400, 600, 0.3}, {900, 1100, -0.2}},
			turf(1500): {{500, 750, 0.3}, {1200, 1400, -0.2}},
			turf(1800): {{600, 900, 0.3}, {1500, 1700, -0.2}},
			turf(2000): {{700, 1000, 0.3}, {1700, 1900, -0.2}},
			turf(2600): {{900, 1200, 0.3}, {1600, 1900, -0.2}, {2300, 2500, -0.2}},
		},
		corners: map[int][]Corner{
			1200: {{0.08, 0.25, 1}, {0.42, 0.58, 2}, {0.75, 0.92, 4}},
			1500: {{0.07, 0.20, 1}, {0.33, 0.47, 2}, {0.73, 0.87, 4}},
			1800: {{0.06, 0.17, 1}, {0.28, 0.39, 2}, {0.56, 0.67, 3}, {0.78, 0.92, 4}},
			2000: {{0.05, 0.15, 1}, {0.25, 0.35, 2}, {0.50, 0.60, 3}, {0.75, 0.90, 4}},
			2600: {
				{0.04, 0.12, 1}, {0.19, 0.27, 2}, {0.38, 0.46, 3}, {0.58, 0.65, 4},
				{0.73, 0.80, 3}, {0.80, 0.90, 4},
			},
		},
	},
	"hakodate": {
		maxLane: 1.1,
		slopes: map[courseKey][]Slope{
			turf(1000): {{200, 400, 0.4}, {700, 900, -0.3}},
			turf(1200): {{300, 500, 0.4}, {900, 1100, -0.3}},
			turf(1800): {{500, 800, 0.4}, {1100, 1400, -0.3}, {1500, 1700, -0.2}},
			turf(2000): {{600, 900, 0.4}, {1200, 1500, -0.3}, {1700, 1900, -0.2}},
			turf(2600): {{800, 1100, 0.4}, {1500, 1800, -0.3}, {2300, 2500, -0.2}},
		},
		corners: map[int][]Corner{
			1000: {{0.10, 0.30, 1}, {0.70, 0.90, 4}},
			1200: {{0.08, 0.25, 1}, {0.42, 0.58, 2}, {0.75, 0.92, 4}},
			1700: {{0.06, 0.18, 1}, {0.29, 0.41, 2}, {0.71, 0.82, 3}, {0.82, 0.94, 4}},
			1800: {{0.06, 0.17, 1}, {0.28, 0.39, 2}, {0.67, 0.78, 3}, {0.78, 0.92, 4}},
			2000: {{0.05, 0.15, 1}, {0.25, 0.35, 2}, {0.65, 0.75, 3}, {0.75, 0.90, 4}},
			2600: {
				{0.04, 0.12, 1}, {0.19, 0.27, 2}, {0.38, 0.46, 3}, {0.58, 0.65, 4},
				{0.73, 0.80, 3}, {0.80, 0.90, 4},
			},
		},
	},
	"fukushima": {
		maxLane: 1.2,
		slopes: map[courseKey][]Slope{
			turf(1200): {{200, 450, 0.6}, {850, 1100, -0.4}},
			turf(1800): {{350, 700, 0.6}, {1000, 1300, -0.4}, {1500, 1700, -0.3}},
			turf(2000): {{400, 800, 0.6}, {1100, 1400, -0.4}, {1700, 1900, -0.3}},
			turf(2600): {{600, 1000, 0.6}, {1400, 1700, -0.4}, {1900, 2200, 0.6}, {2300, 2500, -0.4}},
		},
		corners: map[int][]Corner{
			1200: {{0.08, 0.25, 1}, {0.75, 0.92, 4}},
			1700: {{0.06, 0.18, 1}, {0.29, 0.41, 2}, {0.71, 0.82, 3}, {0.82, 0.94, 4}},
			1800: {{0.06, 0.17, 1}, {0.28, 0.39, 2}, {0.67, 0.78, 3}, {0.78, 0.92, 4}},
			2000: {{0.05, 0.15, 1}, {0.25, 0.35, 2}, {0.65, 0.75, 3}, {0.75, 0.90, 4}},
			2600: {
				{0.04, 0.12, 1}, {0.19, 0.27, 2}, {0.38, 0.46, 3}, {0.58, 0.65, 4},
				{0.73, 0.80, 3}, {0.80, 0.90, 4},
			},
		},
	},
	"niigata": {
		maxLane: 1.1,
		slopes: map[courseKey][]Slope{
			turf(1200): {{400, 600, 0.1}, {900, 1100, -0.1}},
			turf(1400): {{500, 750, 0.1}, {1100, 1300, -0.1}},
			turf(1600): {{550, 850, 0.1}, {1300, 1500, -0.1}},
			turf(1800): {{600, 950, 0.1}, {1500, 1700, -0.1}},
			turf(2000): {{700, 1100, 0.1}, {1700, 1900, -0.1}},
			turf(2200): {{800, 1200, 0.1}, {1900, 2100, -0.1}},
			turf(2400): {{900, 1300, 0.1}, {2100, 2300, -0.1}},
		},
		corners: map[int][]Corner{
			1000: {{0.70, 0.90, 4}},
			1200: {{0.67, 0.88, 4}},
			1400: {{0.07, 0.21, 1}, {0.64, 0.86, 4}},
			1600: {{0.06, 0.19, 1}, {0.62, 0.84, 4}},
			1800: {{0.06, 0.17, 1}, {0.61, 0.83, 4}},
			2000: {{0.05, 0.15, 1}, {0.25, 0.35, 2}, {0.60, 0.80, 4}},
			2200: {{0.05, 0.14, 1}, {0.23, 0.32, 2}, {0.59, 0.78, 4}},
		},
	},
	"kokura": {
		maxLane: 1.2,
		slopes: map[courseKey][]Slope{
			turf(1200): {{200, 400, 0.4}, {900, 1100, -0.3}},
			turf(1800): {{350, 650, 0.4}, {900, 1150, -0.3}, {1500, 1700, -0.2}},
			turf(2000): {{400, 750, 0.4}, {1000, 1300, -0.3}, {1700, 1900, -0.2}},
			turf(2600): {{600, 950, 0.4}, {1200, 1500, -0.3}, {1800, 2100, 0.4}, {2300, 2500, -0.3}},
		},
		corners: map[int][]Corner{
			1200: {{0.08, 0.25, 1}, {0.42, 0.58, 2}, {0.75, 0.92, 4}},
			1700: {{0.06, 0.18, 1}, {0.29, 0.41, 2}, {0.71, 0.82, 3}, {0.82, 0.94, 4}},
			1800: {{0.06, 0.17, 1}, {0.28, 0.39, 2}, {0.67, 0.78, 3}, {0.78, 0.92, 4}},
			2000: {{0.05, 0.15, 1}, {0.25, 0.35, 2}, {0.65, 0.75, 3}, {0.75, 0.90, 4}},
			2600: {
				{0.04, 0.12, 1}, {0.19, 0.27, 2}, {0.38, 0.46, 3}, {0.58, 0.65, 4},
				{0.73, 0.80, 3}, {0.80, 0.90, 4},
			},
		},
	},
	"ohi": {
		maxLane: 1.2,
		slopes: map[courseKey][]Slope{
			dirt(1600): {{200, 400, 0.3}, {1300, 1500, -0.2}},
			dirt(1800): {{300, 550, 0.3}, {1500, 1700, -0.2}},
			dirt(2000): {{400, 700, 0.3}, {1000, 1300, -0.2}, {1700, 1900, -0.2}},
			dirt(2400): {{500, 900, 0.3}, {1300, 1600, -0.2}, {2100, 2300, -0.2}},
		},
		corners: map[int][]Corner{
			1200: {{0.08, 0.25, 1}, {0.42, 0.58, 2}, {0.75, 0.92, 4}},
			1400: {{0.07, 0.21, 1}, {0.36, 0.50, 2}, {0.71, 0.86, 4}},
			1600: {{0.06, 0.19, 1}, {0.31, 0.44, 2}, {0.69, 0.81, 3}, {0.81, 0.94, 4}},
			1800: {{0.06, 0.17, 1}, {0.28, 0.39, 2}, {0.56, 0.67, 3}, {0.78, 0.92, 4}},
			2000: {{0.05, 0.15, 1}, {0.25, 0.35, 2}, {0.50, 0.60, 3}, {0.75, 0.90, 4}},
			2100: {{0.05, 0.14, 1}, {0.24, 0.33, 2}, {0.48, 0.57, 3}, {0.76, 0.91, 4}},
		},
	},
}
