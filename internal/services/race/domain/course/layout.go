package course

import "math"

const (
	// CourseWidth is one course width in meters; lanes are measured in it.
	CourseWidth = 11.25
	// HorseLane is one horse's lateral footprint in course widths.
	HorseLane = 1.0 / 18.0
)

// Layout is the resolved geometry of one race: slopes by meter, corners by
// progress, lateral bounds.
type Layout struct {
	Distance float64
	MaxLane  float64
	Slopes   []Slope
	Corners  []Corner
}

// Layout resolves the course geometry for the configuration. Unknown
// distance/surface pairs on a known course run flat with default corners.
func (c Config) Layout() Layout {
	rc, err := lookupCourse(c.Course)
	if err != nil {
		rc = racecourse{maxLane: defaultMaxLane}
	}
	key := courseKey{distance: int(math.Round(c.Distance)), surface: c.Surface}
	corners := rc.corners[key.distance]
	if len(corners) == 0 {
		corners = defaultCorners
	}
	return Layout{
		Distance: c.Distance,
		MaxLane:  rc.maxLane,
		Slopes:   rc.slopes[key],
		Corners:  corners,
	}
}

// Spot describes the terrain under a participant.
type Spot struct {
	// Slope in percent; positive is uphill.
	Slope float64
	// Corner number, 0 on a straight.
	Corner int
	// FinalStraight is true after the last corner.
	FinalStraight bool
}

// Uphill reports a positive gradient.
func (s Spot) Uphill() bool { return s.Slope > 0 }

// Downhill reports a negative gradient.
func (s Spot) Downhill() bool { return s.Slope < 0 }

// Straight reports that no corner is under the participant.
func (s Spot) Straight() bool { return s.Corner == 0 }

// At returns the terrain at a distance along the course.
func (l Layout) At(distance float64) Spot {
	progress := 0.0
	if l.Distance > 0 {
		progress = distance / l.Distance
	}
	spot := Spot{FinalStraight: progress >= l.lastCornerEnd()}
	for _, s := range l.Slopes {
		if distance >= s.Start && distance < s.End {
			spot.Slope = s.Percent
			break
		}
	}
	for _, c := range l.Corners {
		if progress >= c.Start && progress < c.End {
			spot.Corner = c.Number
			break
		}
	}
	return spot
}

func (l Layout) lastCornerEnd() float64 {
	end := 0.0
	for _, c := range l.Corners {
		end = max(end, c.End)
	}
	return end
}

// InitialLane returns the starting lane for a gate: gate × MaxLane / 18,
// clamped to the course.
func (l Layout) InitialLane(gate int) float64 {
	return min(float64(gate)*l.MaxLane/18.0, l.MaxLane)
}
