// Package export indexes a directory of GPX track files and serves
// filtered, lazily parsed point and metadata queries over it.
//
// Opening an export performs a cheap metadata-only scan: every eligible
// file gets a header parse (activity type, name, start time) but no
// point data is read until an aggregation asks for it.
package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tdlangland/trackreport/internal/fsutil"
	"github.com/tdlangland/trackreport/internal/gpx"
)

// Extension is the file extension recognised during a directory scan.
const Extension = ".gpx"

// Options configures how an export directory is scanned.
type Options struct {
	// Recursive descends into subdirectories. Default is a flat scan.
	Recursive bool

	// Strict turns per-file parse failures into hard errors. The
	// default is permissive: a corrupt file is skipped and recorded as
	// a warning, since bulk exports routinely contain a few bad files.
	Strict bool

	// FS overrides the filesystem, for tests. Nil means the OS.
	FS fsutil.FileSystem
}

// TrackFile is one discovered activity file: its path plus the
// header-level metadata. The path is the file's identity.
type TrackFile struct {
	Path string
	Meta gpx.Metadata
}

// EmptyExportError reports a directory with no usable track files.
// Downstream statistics are meaningless over zero files, so this is a
// hard failure rather than an empty index.
type EmptyExportError struct {
	Dir string
}

func (e *EmptyExportError) Error() string {
	return fmt.Sprintf("export %s contains no usable %s files", e.Dir, Extension)
}

// Export is an indexed track-file directory. It is immutable after
// Open and safe to query repeatedly.
type Export struct {
	dir      string
	fsys     fsutil.FileSystem
	strict   bool
	files    []TrackFile
	warnings []gpx.Warning
}

// Open scans dir for track files and builds the metadata index.
// It returns *EmptyExportError if no usable files are found, and in
// strict mode propagates the first per-file parse failure.
func Open(dir string, opts Options) (*Export, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}

	e := &Export{dir: dir, fsys: fsys, strict: opts.Strict}

	paths, err := discover(fsys, dir, opts.Recursive)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	for _, path := range paths {
		meta, err := gpx.ParseHeader(fsys, path)
		if err != nil {
			if opts.Strict {
				return nil, err
			}
			e.warnings = append(e.warnings, gpx.Warning{
				Path:   path,
				Reason: fmt.Sprintf("skipped during scan: %v", err),
			})
			continue
		}
		e.files = append(e.files, TrackFile{Path: path, Meta: meta})
	}

	if len(e.files) == 0 {
		return nil, &EmptyExportError{Dir: dir}
	}
	return e, nil
}

// discover lists eligible files under dir in deterministic
// (lexicographic, depth-last) order.
func discover(fsys fsutil.FileSystem, dir string, recursive bool) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	var subdirs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			if recursive {
				subdirs = append(subdirs, filepath.Join(dir, name))
			}
			continue
		}
		if strings.EqualFold(filepath.Ext(name), Extension) {
			paths = append(paths, filepath.Join(dir, name))
		}
	}

	for _, sub := range subdirs {
		nested, err := discover(fsys, sub, true)
		if err != nil {
			return nil, err
		}
		paths = append(paths, nested...)
	}
	return paths, nil
}

// Dir returns the directory this export was opened from.
func (e *Export) Dir() string { return e.dir }

// FileCount returns the number of indexed track files.
func (e *Export) FileCount() int { return len(e.files) }

// Files returns the indexed track files in discovery order.
func (e *Export) Files() []TrackFile {
	out := make([]TrackFile, len(e.files))
	copy(out, e.files)
	return out
}

// ActivityTypes returns the distinct activity types present, sorted.
func (e *Export) ActivityTypes() []gpx.Activity {
	seen := make(map[gpx.Activity]bool)
	for _, f := range e.files {
		seen[f.Meta.Activity] = true
	}
	types := make([]gpx.Activity, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// DateRange returns the earliest and latest start timestamps across
// all indexed files.
func (e *Export) DateRange() (earliest, latest time.Time) {
	for _, f := range e.files {
		ts := f.Meta.StartTime
		if ts.IsZero() {
			continue
		}
		if earliest.IsZero() || ts.Before(earliest) {
			earliest = ts
		}
		if latest.IsZero() || ts.After(latest) {
			latest = ts
		}
	}
	return earliest, latest
}

// Warnings returns defects recorded during the scan (files skipped in
// permissive mode). It never includes point-level parse warnings;
// those accumulate on the aggregation that triggered the parse.
func (e *Export) Warnings() []gpx.Warning {
	out := make([]gpx.Warning, len(e.warnings))
	copy(out, e.warnings)
	return out
}

// Strict reports whether the export was opened in strict mode.
func (e *Export) Strict() bool { return e.strict }

// Parse fully parses one file of the export into points. Callers that
// parse repeatedly are expected to memoize; the export itself holds no
// point data.
func (e *Export) Parse(path string) (*gpx.Track, error) {
	return gpx.ParseFile(e.fsys, path)
}

// Select returns the indexed files whose metadata matches the filter,
// in discovery order. No point data is parsed.
func (e *Export) Select(f Filter) []TrackFile {
	var out []TrackFile
	for _, tf := range e.files {
		if f.Matches(tf.Meta) {
			out = append(out, tf)
		}
	}
	return out
}
