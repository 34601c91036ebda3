package export

import (
	"fmt"

	"github.com/tdlangland/trackreport/internal/gpx"
)

// Points returns a lazy scanner over every point in every file whose
// metadata matches the filter, in file-discovery order and, within a
// file, in recording order.
//
// The scanner parses one file at a time; abandoning it early never
// parses files that were never reached, and at most one file is open
// at any moment.
func (e *Export) Points(f Filter) *PointScanner {
	return &PointScanner{
		export:  e,
		files:   e.Select(f),
		curIdx:  -1,
		fileIdx: 0,
	}
}

// PointScanner iterates lazily over aggregated track points, in the
// style of bufio.Scanner:
//
//	sc := export.Points(filter)
//	for sc.Scan() {
//	    pt := sc.Point()
//	    ...
//	}
//	if err := sc.Err(); err != nil { ... }
//
// In permissive mode a file that fails to parse mid-iteration is
// skipped and recorded in Warnings; in strict mode iteration stops and
// Err returns the failure.
type PointScanner struct {
	export   *Export
	files    []TrackFile
	fileIdx  int
	cur      *gpx.Track
	curIdx   int
	err      error
	done     bool
	warnings []gpx.Warning
}

// Scan advances to the next point. It returns false when the sequence
// is exhausted or a fatal error occurred.
func (s *PointScanner) Scan() bool {
	if s.done {
		return false
	}
	for {
		if s.cur != nil {
			s.curIdx++
			if s.curIdx < len(s.cur.Points) {
				return true
			}
			s.cur = nil
		}

		if s.fileIdx >= len(s.files) {
			s.done = true
			return false
		}

		tf := s.files[s.fileIdx]
		s.fileIdx++

		track, err := gpx.ParseFile(s.export.fsys, tf.Path)
		if err != nil {
			if s.export.strict {
				s.err = err
				s.done = true
				return false
			}
			s.warnings = append(s.warnings, gpx.Warning{
				Path:   tf.Path,
				Reason: fmt.Sprintf("skipped during aggregation: %v", err),
			})
			continue
		}

		s.warnings = append(s.warnings, track.Warnings...)
		s.cur = track
		s.curIdx = -1
	}
}

// Point returns the current point. Valid only after a true Scan.
func (s *PointScanner) Point() gpx.Point {
	return s.cur.Points[s.curIdx]
}

// File returns the path of the file the current point came from.
func (s *PointScanner) File() string {
	return s.cur.Path
}

// Err returns the first fatal error encountered, if any.
func (s *PointScanner) Err() error { return s.err }

// Warnings returns the non-fatal defects accumulated so far: skipped
// files (permissive mode) and point-level parse warnings from the
// files visited.
func (s *PointScanner) Warnings() []gpx.Warning {
	out := make([]gpx.Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}
