package domain

import (
	"fmt"
	"math"
)

// Bounds is the longitude/latitude extent of a set of coordinates.
type Bounds struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64
}

// StateMap is everything a renderer needs to draw one state's accidents.
type StateMap struct {
	State  int
	Year   Year
	Bounds Bounds
	Points []Coordinate

	// Skipped counts records of the state without a usable location.
	Skipped int
}

// BuildStateMap filters table to state and collects the valid coordinates.
// It returns ErrInvalidState when the state never occurs in the table. The
// returned map has no points when the state has no located accidents.
func BuildStateMap(table YearTable, state int) (StateMap, error) {
	if !table.HasState(state) {
		return StateMap{}, fmt.Errorf("%w: %d", ErrInvalidState, state)
	}

	m := StateMap{State: state, Year: table.Year}
	for _, rec := range table.FilterState(state) {
		if rec.Location == nil {
			m.Skipped++
			continue
		}
		m.Points = append(m.Points, *rec.Location)
	}
	m.Bounds = boundsOf(m.Points)
	return m, nil
}

// Empty reports whether there is nothing to draw.
func (m StateMap) Empty() bool { return len(m.Points) == 0 }

func boundsOf(points []Coordinate) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinLon: math.Inf(1), MaxLon: math.Inf(-1),
		MinLat: math.Inf(1), MaxLat: math.Inf(-1),
	}
	for _, p := range points {
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
	}
	return b
}
