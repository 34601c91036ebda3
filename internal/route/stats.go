package route

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tdlangland/trackreport/internal/export"
	"github.com/tdlangland/trackreport/internal/geo"
)

// Stats is the aggregate numeric summary over a selection of routes.
// A zero-route selection yields Count 0 with NaN float fields and
// empty bounds; use IsZero to detect it. NaN rather than zero, so an
// empty selection can never be mistaken for zero distance covered.
type Stats struct {
	Count int

	TotalDistance  float64 // meters
	MeanDistance   float64
	MedianDistance float64

	TotalDuration time.Duration
	MeanDuration  time.Duration

	TotalElevationGain float64 // meters

	// Bounds is the union of all per-route bounding regions.
	Bounds geo.Bounds

	// LongestRoute and BiggestClimb identify the route with the
	// greatest distance and the greatest elevation gain.
	LongestRoute string
	BiggestClimb string
}

// IsZero reports whether the stats describe an empty selection.
func (s Stats) IsZero() bool { return s.Count == 0 }

// Stats computes aggregate statistics across all routes matching the
// filter. Calling it twice over an unchanged export yields identical
// results.
func (a *Analyzer) Stats(f export.Filter) (Stats, error) {
	routes, err := a.Routes(f)
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(routes), nil
}

// Aggregate computes aggregate statistics over already-parsed routes.
func Aggregate(routes []Route) Stats {
	if len(routes) == 0 {
		return Stats{
			TotalDistance:      math.NaN(),
			MeanDistance:       math.NaN(),
			MedianDistance:     math.NaN(),
			TotalElevationGain: math.NaN(),
		}
	}

	s := Stats{Count: len(routes)}
	distances := make([]float64, 0, len(routes))

	maxDist := math.Inf(-1)
	maxGain := math.Inf(-1)
	for _, r := range routes {
		distances = append(distances, r.Summary.Distance)
		s.TotalDistance += r.Summary.Distance
		s.TotalDuration += r.Summary.Duration
		s.TotalElevationGain += r.Summary.ElevationGain
		s.Bounds.Union(r.Summary.Bounds)

		if r.Summary.Distance > maxDist {
			maxDist = r.Summary.Distance
			s.LongestRoute = r.Path
		}
		if r.Summary.ElevationGain > maxGain {
			maxGain = r.Summary.ElevationGain
			s.BiggestClimb = r.Path
		}
	}

	s.MeanDistance = stat.Mean(distances, nil)
	sort.Float64s(distances)
	s.MedianDistance = stat.Quantile(0.5, stat.Empirical, distances, nil)
	s.MeanDuration = s.TotalDuration / time.Duration(len(routes))

	return s
}
