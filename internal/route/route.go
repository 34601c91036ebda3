// Package route derives per-route summaries and aggregate statistics
// from an indexed track export.
package route

import (
	"fmt"
	"time"

	"github.com/tdlangland/trackreport/internal/export"
	"github.com/tdlangland/trackreport/internal/geo"
	"github.com/tdlangland/trackreport/internal/gpx"
)

// Route is one track file parsed into points plus its derived summary.
type Route struct {
	Path    string
	Meta    gpx.Metadata
	Points  []gpx.Point
	Summary Summary
}

// Summary holds the derived metrics of a single route.
type Summary struct {
	// Distance is the sum of great-circle distances between
	// consecutive points, in meters.
	Distance float64

	// Duration is the time between the first and last point.
	Duration time.Duration

	// Bounds is the route's bounding region.
	Bounds geo.Bounds

	// Start and End are the first and last recorded points.
	Start gpx.Point
	End   gpx.Point

	// ElevationGain and ElevationLoss are the summed positive and
	// negative elevation deltas, in meters. Loss is non-negative.
	ElevationGain float64
	ElevationLoss float64

	// AvgSpeed is Distance over Duration, in meters per second.
	// Zero when the route has no measurable duration.
	AvgSpeed float64
}

// Summarize computes the summary of an ordered point sequence.
func Summarize(points []gpx.Point) Summary {
	var s Summary
	if len(points) == 0 {
		return s
	}

	s.Start = points[0]
	s.End = points[len(points)-1]
	s.Duration = s.End.Time.Sub(s.Start.Time)

	prevElev := 0.0
	haveElev := false
	for i, pt := range points {
		s.Bounds.Extend(pt.Lat, pt.Lon)
		if i > 0 {
			prev := points[i-1]
			s.Distance += geo.Haversine(prev.Lat, prev.Lon, pt.Lat, pt.Lon)
		}
		if pt.HasElevation {
			if haveElev {
				delta := pt.Elevation - prevElev
				if delta > 0 {
					s.ElevationGain += delta
				} else {
					s.ElevationLoss -= delta
				}
			}
			prevElev = pt.Elevation
			haveElev = true
		}
	}

	if secs := s.Duration.Seconds(); secs > 0 {
		s.AvgSpeed = s.Distance / secs
	}
	return s
}

// Analyzer serves route-level queries over an export. It memoizes
// full parses per file, so repeated Stats or Launches calls over the
// same export parse each file at most once. An Analyzer is not safe
// for concurrent use.
type Analyzer struct {
	export   *export.Export
	cache    map[string]*gpx.Track
	warnings []gpx.Warning
	skipped  map[string]bool
}

// NewAnalyzer creates an analyzer bound to the export.
func NewAnalyzer(e *export.Export) *Analyzer {
	return &Analyzer{
		export:  e,
		cache:   make(map[string]*gpx.Track),
		skipped: make(map[string]bool),
	}
}

// Routes parses every file matching the filter and returns the routes
// in discovery order. In permissive mode unparseable files are skipped
// with a recorded warning; in strict mode the first failure is
// returned.
func (a *Analyzer) Routes(f export.Filter) ([]Route, error) {
	var routes []Route
	for _, tf := range a.export.Select(f) {
		track, err := a.track(tf.Path)
		if err != nil {
			return nil, err
		}
		if track == nil {
			continue
		}
		routes = append(routes, Route{
			Path:    track.Path,
			Meta:    track.Meta,
			Points:  track.Points,
			Summary: Summarize(track.Points),
		})
	}
	return routes, nil
}

// track returns the memoized parse of one file. A nil track with nil
// error means the file was skipped in permissive mode.
func (a *Analyzer) track(path string) (*gpx.Track, error) {
	if t, ok := a.cache[path]; ok {
		return t, nil
	}
	if a.skipped[path] {
		return nil, nil
	}

	t, err := a.export.Parse(path)
	if err != nil {
		if a.export.Strict() {
			return nil, err
		}
		a.skipped[path] = true
		a.warnings = append(a.warnings, gpx.Warning{
			Path:   path,
			Reason: fmt.Sprintf("skipped during aggregation: %v", err),
		})
		return nil, nil
	}

	a.cache[path] = t
	a.warnings = append(a.warnings, t.Warnings...)
	return t, nil
}

// Warnings returns the non-fatal defects accumulated across all
// queries served so far.
func (a *Analyzer) Warnings() []gpx.Warning {
	out := make([]gpx.Warning, len(a.warnings))
	copy(out, a.warnings)
	return out
}
