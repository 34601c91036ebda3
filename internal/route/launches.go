package route

import (
	"sort"
	"time"

	"github.com/tdlangland/trackreport/internal/export"
	"github.com/tdlangland/trackreport/internal/geo"
)

// DefaultLaunchRadiusMeters is the proximity threshold for grouping
// launch points; two starts closer than this belong to one cluster.
const DefaultLaunchRadiusMeters = 100.0

// LaunchCluster is a group of routes that start from the same place.
type LaunchCluster struct {
	// Lat and Lon are the centroid of the member launch points.
	Lat float64
	Lon float64

	// Count is the number of member routes.
	Count int

	// Paths are the member routes in discovery order.
	Paths []string

	// seed anchors the cluster at its first member's launch point.
	seedLat float64
	seedLon float64

	// firstStart is the first member's start time, for tie-breaking.
	firstStart time.Time
}

// Launches groups the launch (start) coordinates of all routes
// matching the filter into fixed-radius clusters, ordered by
// descending member count; ties go to the cluster whose first member
// started earliest.
//
// Grouping is greedy and seed-anchored: a launch joins the first
// existing cluster whose seed lies within radiusMeters. Chained
// proximity (A near B, B near C, A far from C) therefore does not
// merge A and C into one cluster. A radius of 0 or less uses
// DefaultLaunchRadiusMeters.
func (a *Analyzer) Launches(f export.Filter, radiusMeters float64) ([]LaunchCluster, error) {
	routes, err := a.Routes(f)
	if err != nil {
		return nil, err
	}
	return ClusterLaunches(routes, radiusMeters), nil
}

// ClusterLaunches groups already-parsed routes by launch point.
func ClusterLaunches(routes []Route, radiusMeters float64) []LaunchCluster {
	if radiusMeters <= 0 {
		radiusMeters = DefaultLaunchRadiusMeters
	}

	var clusters []LaunchCluster
	for _, r := range routes {
		if len(r.Points) == 0 {
			continue
		}
		start := r.Summary.Start

		assigned := false
		for i := range clusters {
			c := &clusters[i]
			if geo.Haversine(start.Lat, start.Lon, c.seedLat, c.seedLon) < radiusMeters {
				c.Lat = (c.Lat*float64(c.Count) + start.Lat) / float64(c.Count+1)
				c.Lon = (c.Lon*float64(c.Count) + start.Lon) / float64(c.Count+1)
				c.Count++
				c.Paths = append(c.Paths, r.Path)
				assigned = true
				break
			}
		}
		if !assigned {
			clusters = append(clusters, LaunchCluster{
				Lat:        start.Lat,
				Lon:        start.Lon,
				Count:      1,
				Paths:      []string{r.Path},
				seedLat:    start.Lat,
				seedLon:    start.Lon,
				firstStart: r.Meta.StartTime,
			})
		}
	}

	// Descending size; ties go to the cluster whose first member
	// started earliest, then to first-occurrence (creation) order via
	// the stable sort.
	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		return clusters[i].firstStart.Before(clusters[j].firstStart)
	})
	return clusters
}
