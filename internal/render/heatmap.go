// Package render turns aggregated track data into visual artifacts:
// an HTML heatmap of visited locations and a PNG elevation profile.
// It is the visualization collaborator of the analysis core and holds
// no analysis logic of its own.
package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/tdlangland/trackreport/internal/geo"
	"github.com/tdlangland/trackreport/internal/gpx"
)

// viridis is the color ramp used for visit-count shading.
var viridis = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// HeatmapOptions configures heatmap rendering.
type HeatmapOptions struct {
	// Title heads the chart. Empty means a default title.
	Title string

	// GridBins is the number of bins along the longer bounding-box
	// axis. More bins, finer heat cells. Zero means 400.
	GridBins int
}

// WriteHeatmap bins the points into a regular lat/lon grid and writes
// an HTML scatter chart where each visited cell is shaded by visit
// count. Points come pre-filtered from the aggregation layer.
func WriteHeatmap(w io.Writer, points []gpx.Point, o HeatmapOptions) error {
	if len(points) == 0 {
		return fmt.Errorf("heatmap: no points to render")
	}
	if o.Title == "" {
		o.Title = "Track Heatmap"
	}
	if o.GridBins <= 0 {
		o.GridBins = 400
	}

	var bounds geo.Bounds
	for _, pt := range points {
		bounds.Extend(pt.Lat, pt.Lon)
	}

	latSpan := bounds.MaxLat - bounds.MinLat
	lonSpan := bounds.MaxLon - bounds.MinLon
	span := math.Max(latSpan, lonSpan)
	if span == 0 {
		span = 1e-4 // all points identical; a single cell
	}
	cell := span / float64(o.GridBins)

	// Visit counts per grid cell.
	counts := make(map[[2]int]int)
	for _, pt := range points {
		key := [2]int{
			int((pt.Lat - bounds.MinLat) / cell),
			int((pt.Lon - bounds.MinLon) / cell),
		}
		counts[key]++
	}

	data := make([]opts.ScatterData, 0, len(counts))
	maxCount := 0
	for key, n := range counts {
		lat := bounds.MinLat + (float64(key[0])+0.5)*cell
		lon := bounds.MinLon + (float64(key[1])+0.5)*cell
		data = append(data, opts.ScatterData{Value: []interface{}{lon, lat, n}})
		if n > maxCount {
			maxCount = n
		}
	}

	// Pad the axes slightly so edge cells stay visible.
	latPad := math.Max(latSpan, cell) * 0.05
	lonPad := math.Max(lonSpan, cell) * 0.05

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Theme:     "dark",
			Width:     "1200px",
			Height:    "800px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    o.Title,
			Subtitle: fmt.Sprintf("points=%d cells=%d", len(points), len(data)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Min: bounds.MinLon - lonPad, Max: bounds.MaxLon + lonPad,
			Name: "Longitude", NameLocation: "middle", NameGap: 25,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Min: bounds.MinLat - latPad, Max: bounds.MaxLat + latPad,
			Name: "Latitude", NameLocation: "middle", NameGap: 30,
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxCount),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)

	scatter.AddSeries("visits", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	return scatter.Render(w)
}
