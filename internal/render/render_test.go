package render

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdlangland/trackreport/internal/gpx"
	"github.com/tdlangland/trackreport/internal/route"
)

func testPoints(n int) []gpx.Point {
	start := time.Date(2017, 5, 10, 6, 0, 0, 0, time.UTC)
	pts := make([]gpx.Point, n)
	for i := range pts {
		pts[i] = gpx.Point{
			Time:         start.Add(time.Duration(i) * time.Minute),
			Lat:          52.0 + float64(i)*0.001,
			Lon:          13.4 + float64(i)*0.0005,
			Elevation:    30 + float64(i%5),
			HasElevation: true,
		}
	}
	return pts
}

func TestWriteHeatmap(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHeatmap(&buf, testPoints(50), HeatmapOptions{Title: "Test Map"})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "Test Map")
	assert.Contains(t, html, "visits")
}

func TestWriteHeatmapNoPoints(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHeatmap(&buf, nil, HeatmapOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no points")
}

func TestWriteHeatmapSinglePoint(t *testing.T) {
	// A degenerate one-point selection must not divide by a zero span.
	var buf bytes.Buffer
	err := WriteHeatmap(&buf, testPoints(1), HeatmapOptions{})
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestSaveProfile(t *testing.T) {
	pts := testPoints(20)
	routes := []route.Route{{
		Path:    "export/20170510-run.gpx",
		Meta:    gpx.Metadata{Name: "Morning Run", Activity: gpx.ActivityRun},
		Points:  pts,
		Summary: route.Summarize(pts),
	}}

	path := filepath.Join(t.TempDir(), "profile.png")
	require.NoError(t, SaveProfile(routes, "", path))
}

func TestSaveProfileNoElevation(t *testing.T) {
	pts := testPoints(5)
	for i := range pts {
		pts[i].HasElevation = false
	}
	routes := []route.Route{{Path: "a.gpx", Points: pts}}

	err := SaveProfile(routes, "", filepath.Join(t.TempDir(), "profile.png"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no routes with elevation data"))
}
