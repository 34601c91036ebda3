package route

import (
	"fmt"
	"io/fs"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdlangland/trackreport/internal/export"
	"github.com/tdlangland/trackreport/internal/fsutil"
	"github.com/tdlangland/trackreport/internal/geo"
	"github.com/tdlangland/trackreport/internal/gpx"
)

// countingFS records opened paths to prove how often files get parsed.
type countingFS struct {
	fsutil.FileSystem
	opened []string
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opened = append(c.opened, name)
	return c.FileSystem.Open(name)
}

type testPoint struct {
	lat, lon, ele float64
}

func trackDoc(name, activity string, start time.Time, points ...testPoint) string {
	var sb strings.Builder
	sb.WriteString("<gpx>\n")
	fmt.Fprintf(&sb, " <metadata><time>%s</time></metadata>\n", start.Format(time.RFC3339))
	fmt.Fprintf(&sb, " <trk>\n  <name>%s</name>\n  <type>%s</type>\n  <trkseg>\n", name, activity)
	for i, p := range points {
		ts := start.Add(time.Duration(i) * time.Minute)
		fmt.Fprintf(&sb, "   <trkpt lat=\"%.7f\" lon=\"%.7f\"><ele>%f</ele><time>%s</time></trkpt>\n",
			p.lat, p.lon, p.ele, ts.Format(time.RFC3339))
	}
	sb.WriteString("  </trkseg>\n </trk>\n</gpx>\n")
	return sb.String()
}

// openExport writes the given documents into a memory filesystem and
// opens the resulting export.
func openExport(t *testing.T, docs map[string]string) *export.Export {
	t.Helper()
	m := fsutil.NewMemoryFileSystem()
	for path, doc := range docs {
		m.WriteFile(path, []byte(doc))
	}
	e, err := export.Open("export", export.Options{FS: m})
	require.NoError(t, err)
	return e
}

var (
	runStart  = time.Date(2017, 5, 10, 6, 0, 0, 0, time.UTC)
	rideStart = time.Date(2017, 6, 1, 8, 0, 0, 0, time.UTC)
)

// twoFileExport matches the reference scenario: a run whose three
// points form a straight ~1 km path, and a two-point ride.
func twoFileExport(t *testing.T) *export.Export {
	t.Helper()
	return openExport(t, map[string]string{
		"export/20170510-run.gpx": trackDoc("Morning Run", "running", runStart,
			testPoint{52.0, 13.4, 30},
			testPoint{52.0044966, 13.4, 35},
			testPoint{52.0089932, 13.4, 32},
		),
		"export/20170601-ride.gpx": trackDoc("Evening Ride", "cycling", rideStart,
			testPoint{48.85, 2.35, 100},
			testPoint{48.86, 2.36, 120},
		),
	})
}

func TestSummarize(t *testing.T) {
	start := time.Date(2017, 5, 10, 6, 0, 0, 0, time.UTC)
	points := []gpx.Point{
		{Time: start, Lat: 52.0, Lon: 13.4, Elevation: 30, HasElevation: true},
		{Time: start.Add(time.Minute), Lat: 52.0044966, Lon: 13.4, Elevation: 35, HasElevation: true},
		{Time: start.Add(2 * time.Minute), Lat: 52.0089932, Lon: 13.4, Elevation: 32, HasElevation: true},
	}

	s := Summarize(points)
	assert.InDelta(t, 1000, s.Distance, 5, "straight ~1 km path")
	assert.Equal(t, 2*time.Minute, s.Duration)
	assert.Equal(t, 52.0, s.Bounds.MinLat)
	assert.Equal(t, 52.0089932, s.Bounds.MaxLat)
	assert.Equal(t, 5.0, s.ElevationGain)
	assert.Equal(t, 3.0, s.ElevationLoss)
	assert.Equal(t, points[0], s.Start)
	assert.Equal(t, points[2], s.End)
	assert.InDelta(t, s.Distance/120, s.AvgSpeed, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0.0, s.Distance)
	assert.True(t, s.Bounds.IsZero())
}

func TestRoutesTypeFilter(t *testing.T) {
	a := NewAnalyzer(twoFileExport(t))

	routes, err := a.Routes(export.Filter{Types: []gpx.Activity{gpx.ActivityRun}})
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "export/20170510-run.gpx", routes[0].Path)
	assert.Len(t, routes[0].Points, 3)
	assert.InDelta(t, 1000, routes[0].Summary.Distance, 5)
}

func TestStatsScenario(t *testing.T) {
	a := NewAnalyzer(twoFileExport(t))

	s, err := a.Stats(export.Filter{Types: []gpx.Activity{gpx.ActivityRun}})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count)
	assert.InDelta(t, 1000, s.TotalDistance, 5, "run total distance is ~1 km")
	assert.Equal(t, 2*time.Minute, s.TotalDuration)
	assert.Equal(t, "export/20170510-run.gpx", s.LongestRoute)
}

func TestStatsBoundsMatchAllPoints(t *testing.T) {
	e := twoFileExport(t)
	a := NewAnalyzer(e)

	s, err := a.Stats(export.Filter{})
	require.NoError(t, err)

	// The aggregate bounding region must equal the min/max over every
	// point of every selected route.
	sc := e.Points(export.Filter{})
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for sc.Scan() {
		pt := sc.Point()
		minLat = math.Min(minLat, pt.Lat)
		maxLat = math.Max(maxLat, pt.Lat)
		minLon = math.Min(minLon, pt.Lon)
		maxLon = math.Max(maxLon, pt.Lon)
	}
	require.NoError(t, sc.Err())

	assert.Equal(t, minLat, s.Bounds.MinLat)
	assert.Equal(t, maxLat, s.Bounds.MaxLat)
	assert.Equal(t, minLon, s.Bounds.MinLon)
	assert.Equal(t, maxLon, s.Bounds.MaxLon)
}

func TestStatsEmptySelection(t *testing.T) {
	a := NewAnalyzer(twoFileExport(t))

	s, err := a.Stats(export.Filter{Types: []gpx.Activity{gpx.ActivitySwim}})
	require.NoError(t, err)
	assert.True(t, s.IsZero())
	assert.Equal(t, 0, s.Count)
	assert.True(t, math.IsNaN(s.TotalDistance))
	assert.True(t, math.IsNaN(s.MeanDistance))
	assert.True(t, math.IsNaN(s.MedianDistance))
	assert.True(t, s.Bounds.IsZero())
}

func TestStatsIdempotent(t *testing.T) {
	a := NewAnalyzer(twoFileExport(t))

	first, err := a.Stats(export.Filter{})
	require.NoError(t, err)
	second, err := a.Stats(export.Filter{})
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, cmpopts.EquateNaNs(), cmp.AllowUnexported(geo.Bounds{})); diff != "" {
		t.Errorf("stats differ between calls (-first +second):\n%s", diff)
	}
	assert.Len(t, a.Warnings(), 0)
}

func TestAnalyzerParsesEachFileOnce(t *testing.T) {
	// The memo cache must make repeated aggregate queries reuse parses
	// rather than re-reading files.
	m := fsutil.NewMemoryFileSystem()
	m.WriteFile("export/20170510-run.gpx", []byte(trackDoc("Run", "run", runStart,
		testPoint{52.0, 13.4, 30}, testPoint{52.001, 13.4, 31})))

	cfs := &countingFS{FileSystem: m}
	e, err := export.Open("export", export.Options{FS: cfs})
	require.NoError(t, err)

	a := NewAnalyzer(e)
	opens := len(cfs.opened)
	_, err = a.Stats(export.Filter{})
	require.NoError(t, err)
	_, err = a.Launches(export.Filter{}, 0)
	require.NoError(t, err)
	_, err = a.Stats(export.Filter{})
	require.NoError(t, err)

	assert.Equal(t, opens+1, len(cfs.opened), "file parsed exactly once across queries")
}

func TestMedianDistance(t *testing.T) {
	routes := []Route{
		{Path: "a", Summary: Summary{Distance: 1000}},
		{Path: "b", Summary: Summary{Distance: 3000}},
		{Path: "c", Summary: Summary{Distance: 2000}},
	}
	s := Aggregate(routes)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 6000.0, s.TotalDistance)
	assert.Equal(t, 2000.0, s.MeanDistance)
	assert.Equal(t, 2000.0, s.MedianDistance)
	assert.Equal(t, "b", s.LongestRoute)
}
