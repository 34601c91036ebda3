// Package gpx parses GPX track-log files into ordered point sequences
// with activity-level metadata.
//
// Parsing is permissive at the point level: a single malformed track
// point is recorded as a warning on the result instead of failing the
// file. File-level structural defects (unreadable file, malformed
// markup, unparsable header timestamp) fail with a *ParseError.
package gpx

import (
	"fmt"
	"strings"
	"time"
)

// Activity is the normalised activity category of a track file.
type Activity string

// Activity categories. Files with an unrecognised type map to
// ActivityOther; files with no type element at all map to
// ActivityUnknown.
const (
	ActivityRun     Activity = "run"
	ActivityRide    Activity = "ride"
	ActivitySwim    Activity = "swim"
	ActivityWalk    Activity = "walk"
	ActivityHike    Activity = "hike"
	ActivityOther   Activity = "other"
	ActivityUnknown Activity = "unknown"
)

// ParseActivity normalises a raw GPX type string to an Activity.
func ParseActivity(raw string) Activity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return ActivityUnknown
	case "run", "running", "trail run", "trail running":
		return ActivityRun
	case "ride", "bike", "biking", "cycling", "velomobile":
		return ActivityRide
	case "swim", "swimming":
		return ActivitySwim
	case "walk", "walking":
		return ActivityWalk
	case "hike", "hiking":
		return ActivityHike
	default:
		return ActivityOther
	}
}

// Point is one timestamped geographic sample within a track.
type Point struct {
	Time         time.Time
	Lat          float64
	Lon          float64
	Elevation    float64
	HasElevation bool
}

// Metadata is the file-level information a track carries, available
// without parsing the full point sequence.
type Metadata struct {
	Name      string
	Activity  Activity
	StartTime time.Time
}

// Track is a fully parsed track file: ordered points plus metadata and
// any point-level warnings accumulated during the parse.
type Track struct {
	Path     string
	Meta     Metadata
	Points   []Point
	Warnings []Warning
}

// Warning records a non-fatal defect encountered while parsing,
// typically a single track point that had to be excluded.
type Warning struct {
	Path   string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Reason)
}

// ParseError reports a file-level structural defect that makes the
// whole file unusable.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
