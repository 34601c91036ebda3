// Command trackreport analyses a directory of GPX track files: it
// prints export and route statistics, favorite launch locations, and
// can render a heatmap HTML file and an elevation profile PNG.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tdlangland/trackreport/internal/export"
	"github.com/tdlangland/trackreport/internal/gpx"
	"github.com/tdlangland/trackreport/internal/render"
	"github.com/tdlangland/trackreport/internal/route"
	"github.com/tdlangland/trackreport/internal/units"
)

var (
	dir       = flag.String("dir", "", "Path to the export directory (required)")
	types     = flag.String("types", "", "Comma-separated activity types to include (e.g. run,ride)")
	from      = flag.String("from", "", "Earliest activity date to include (YYYY-MM-DD)")
	to        = flag.String("to", "", "Latest activity date to include (YYYY-MM-DD, inclusive)")
	unit      = flag.String("units", units.KM, "Display units: "+units.GetValidUnitsString())
	recursive = flag.Bool("recursive", false, "Descend into subdirectories")
	strict    = flag.Bool("strict", false, "Fail on the first corrupt file instead of skipping it")
	radius    = flag.Float64("launch-radius", route.DefaultLaunchRadiusMeters, "Launch clustering radius in meters")
	heatmap   = flag.String("heatmap", "", "Write a heatmap HTML file to this path")
	profile   = flag.String("profile", "", "Write an elevation profile PNG to this path")
	showWarns = flag.Bool("warnings", false, "Print accumulated parse warnings")
)

func main() {
	flag.Parse()

	if *dir == "" {
		log.Fatal("-dir is required")
	}
	if !units.IsValid(*unit) {
		log.Fatalf("invalid -units %q, valid values: %s", *unit, units.GetValidUnitsString())
	}

	filter, err := buildFilter(*types, *from, *to)
	if err != nil {
		log.Fatalf("invalid filter: %v", err)
	}

	e, err := export.Open(*dir, export.Options{Recursive: *recursive, Strict: *strict})
	if err != nil {
		log.Fatalf("failed to open export: %v", err)
	}

	fmt.Printf("Export: %s\n", e.Dir())
	fmt.Printf("  files: %d\n", e.FileCount())
	fmt.Printf("  activity types: %s\n", joinActivities(e.ActivityTypes()))
	earliest, latest := e.DateRange()
	fmt.Printf("  date range: %s to %s\n", earliest.Format("2006-01-02"), latest.Format("2006-01-02"))

	a := route.NewAnalyzer(e)

	stats, err := a.Stats(filter)
	if err != nil {
		log.Fatalf("failed to compute route stats: %v", err)
	}

	fmt.Println()
	if stats.IsZero() {
		fmt.Println("No routes match the selection.")
	} else {
		printStats(stats)

		launches, err := a.Launches(filter, *radius)
		if err != nil {
			log.Fatalf("failed to cluster launches: %v", err)
		}
		printLaunches(launches)
	}

	if *heatmap != "" {
		if err := writeHeatmap(e, filter, *heatmap); err != nil {
			log.Fatalf("failed to write heatmap: %v", err)
		}
		log.Printf("wrote heatmap to %s", *heatmap)
	}

	if *profile != "" {
		routes, err := a.Routes(filter)
		if err != nil {
			log.Fatalf("failed to parse routes: %v", err)
		}
		if err := render.SaveProfile(routes, "", *profile); err != nil {
			log.Fatalf("failed to write profile: %v", err)
		}
		log.Printf("wrote elevation profile to %s", *profile)
	}

	if *showWarns {
		for _, w := range e.Warnings() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		for _, w := range a.Warnings() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
	}
}

// buildFilter translates the CLI flags into a selection predicate.
// The -to date is inclusive on the command line; internally the range
// stays half-open by extending the end one day.
func buildFilter(typesCSV, fromStr, toStr string) (export.Filter, error) {
	var f export.Filter

	if typesCSV != "" {
		for _, raw := range strings.Split(typesCSV, ",") {
			f.Types = append(f.Types, gpx.ParseActivity(raw))
		}
	}

	if fromStr != "" || toStr != "" {
		var r export.DateRange
		if fromStr != "" {
			t, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return f, fmt.Errorf("bad -from date %q: %w", fromStr, err)
			}
			r.Start = t.UTC()
		}
		if toStr != "" {
			t, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return f, fmt.Errorf("bad -to date %q: %w", toStr, err)
			}
			r.End = t.UTC().AddDate(0, 0, 1)
		}
		if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
			return f, fmt.Errorf("-to %s is before -from %s", toStr, fromStr)
		}
		f.Ranges = []export.DateRange{r}
	}

	return f, nil
}

func printStats(s route.Stats) {
	fmt.Printf("Routes: %d\n", s.Count)
	fmt.Printf("  total distance:  %s\n", units.FormatDistance(s.TotalDistance, *unit))
	fmt.Printf("  mean distance:   %s\n", units.FormatDistance(s.MeanDistance, *unit))
	fmt.Printf("  median distance: %s\n", units.FormatDistance(s.MedianDistance, *unit))
	fmt.Printf("  total time:      %s\n", units.FormatDuration(s.TotalDuration))
	fmt.Printf("  mean time:       %s\n", units.FormatDuration(s.MeanDuration))
	fmt.Printf("  elevation gain:  %.0f m\n", s.TotalElevationGain)
	fmt.Printf("  bounding region: (%.4f, %.4f) to (%.4f, %.4f)\n",
		s.Bounds.MinLat, s.Bounds.MinLon, s.Bounds.MaxLat, s.Bounds.MaxLon)
	fmt.Printf("  longest route:   %s\n", s.LongestRoute)
	fmt.Printf("  biggest climb:   %s\n", s.BiggestClimb)
}

func printLaunches(clusters []route.LaunchCluster) {
	if len(clusters) == 0 {
		return
	}
	fmt.Println("Favorite launches:")
	max := len(clusters)
	if max > 5 {
		max = 5
	}
	for i := 0; i < max; i++ {
		c := clusters[i]
		fmt.Printf("  %d. (%.5f, %.5f) - %d routes\n", i+1, c.Lat, c.Lon, c.Count)
	}
}

// writeHeatmap streams the selected points and renders them to HTML.
func writeHeatmap(e *export.Export, filter export.Filter, path string) error {
	var points []gpx.Point
	sc := e.Points(filter)
	for sc.Scan() {
		points = append(points, sc.Point())
	}
	if err := sc.Err(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return render.WriteHeatmap(f, points, render.HeatmapOptions{})
}

func joinActivities(types []gpx.Activity) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
