package export

import (
	"time"

	"github.com/tdlangland/trackreport/internal/gpx"
)

// DateRange is a half-open time interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range. A zero Start or
// End leaves that side unbounded.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && !t.Before(r.End) {
		return false
	}
	return true
}

// Day returns the half-open range covering one calendar day in UTC.
func Day(year int, month time.Month, day int) DateRange {
	start := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return DateRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// Filter is an immutable selection predicate over track-file metadata.
// It is applied before any point data is parsed, so non-matching files
// never pay parse cost. Nil slices mean "no restriction".
type Filter struct {
	// Types restricts to the given activity types.
	Types []gpx.Activity

	// Ranges restricts to files whose start time falls in any range.
	Ranges []DateRange
}

// Matches reports whether the metadata passes the filter.
func (f Filter) Matches(meta gpx.Metadata) bool {
	if f.Types != nil {
		ok := false
		for _, t := range f.Types {
			if meta.Activity == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Ranges != nil {
		ok := false
		for _, r := range f.Ranges {
			if r.Contains(meta.StartTime) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
