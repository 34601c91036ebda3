package gpx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tdlangland/trackreport/internal/fsutil"
	"github.com/tdlangland/trackreport/internal/geo"
)

// ParseFile parses the named GPX file into a Track. The file handle is
// fully consumed and released before ParseFile returns.
func ParseFile(fsys fsutil.FileSystem, path string) (*Track, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse parses GPX markup from r. The path is used only for error and
// warning attribution.
func Parse(r io.Reader, path string) (*Track, error) {
	p := &parser{path: path, full: true}
	if err := p.run(xml.NewDecoder(r)); err != nil {
		return nil, err
	}
	return p.result(), nil
}

// ParseHeader reads only the leading portion of the named file: enough
// to recover the activity type, name, and start time. Parsing stops at
// the end of the first track point, so the cost stays flat regardless
// of how many points the file holds.
func ParseHeader(fsys fsutil.FileSystem, path string) (Metadata, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return Metadata{}, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	p := &parser{path: path}
	if err := p.run(xml.NewDecoder(f)); err != nil {
		return Metadata{}, err
	}
	return p.result().Meta, nil
}

// parser holds the state of one streaming pass over a GPX document.
type parser struct {
	path string
	full bool // false = stop after the header portion

	name      string
	activity  Activity
	hasType   bool
	metaTime  time.Time
	points    []Point
	warnings  []Warning
	pointSeen int
}

func (p *parser) result() *Track {
	meta := Metadata{
		Name:      p.name,
		Activity:  p.activity,
		StartTime: p.metaTime,
	}
	if !p.hasType {
		meta.Activity = ActivityUnknown
	}
	if meta.StartTime.IsZero() && len(p.points) > 0 {
		meta.StartTime = p.points[0].Time
	}
	return &Track{Path: p.path, Meta: meta, Points: p.points, Warnings: p.warnings}
}

func (p *parser) run(dec *xml.Decoder) error {
	// stack tracks the open-element path so name/type/time elements can
	// be attributed to the right parent (trk vs metadata vs trkpt).
	var stack []string

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &ParseError{Path: p.path, Err: fmt.Errorf("malformed markup: %w", err)}
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "trkpt":
				if err := p.parsePoint(dec, el); err != nil {
					return err
				}
				if !p.full {
					// Header parse: the first point (for the start-time
					// fallback) is as deep as we need to go.
					return nil
				}
			case "name":
				if parentIs(stack, "trk") && p.name == "" {
					text, err := collectText(dec)
					if err != nil {
						return &ParseError{Path: p.path, Err: err}
					}
					p.name = strings.TrimSpace(text)
				} else {
					stack = append(stack, el.Name.Local)
				}
			case "type":
				if parentIs(stack, "trk") && !p.hasType {
					text, err := collectText(dec)
					if err != nil {
						return &ParseError{Path: p.path, Err: err}
					}
					p.activity = ParseActivity(text)
					p.hasType = true
				} else {
					stack = append(stack, el.Name.Local)
				}
			case "time":
				if parentIs(stack, "metadata") && p.metaTime.IsZero() {
					text, err := collectText(dec)
					if err != nil {
						return &ParseError{Path: p.path, Err: err}
					}
					ts, err := parseTime(text)
					if err != nil {
						return &ParseError{Path: p.path, Err: fmt.Errorf("unparsable metadata timestamp %q", strings.TrimSpace(text))}
					}
					p.metaTime = ts
				} else {
					stack = append(stack, el.Name.Local)
				}
			default:
				stack = append(stack, el.Name.Local)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

// parsePoint consumes one trkpt element, including its end tag. Points
// with missing or out-of-range coordinates, or an unparsable
// timestamp, become warnings rather than errors.
func (p *parser) parsePoint(dec *xml.Decoder, start xml.StartElement) error {
	p.pointSeen++
	idx := p.pointSeen

	lat, latOK := pointAttr(start, "lat")
	lon, lonOK := pointAttr(start, "lon")

	var (
		pt      Point
		badTime bool
	)

	// Consume children up to the matching end element regardless of
	// whether the point turns out to be valid.
	for {
		tok, err := dec.Token()
		if err != nil {
			return &ParseError{Path: p.path, Err: fmt.Errorf("malformed markup in trkpt %d: %w", idx, err)}
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "ele":
				text, err := collectText(dec)
				if err != nil {
					return &ParseError{Path: p.path, Err: err}
				}
				if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
					pt.Elevation = v
					pt.HasElevation = true
				}
			case "time":
				text, err := collectText(dec)
				if err != nil {
					return &ParseError{Path: p.path, Err: err}
				}
				ts, err := parseTime(text)
				if err != nil {
					badTime = true
				} else {
					pt.Time = ts
				}
			default:
				if err := dec.Skip(); err != nil {
					return &ParseError{Path: p.path, Err: fmt.Errorf("malformed markup in trkpt %d: %w", idx, err)}
				}
			}
		case xml.EndElement:
			if el.Name.Local == "trkpt" {
				switch {
				case !latOK || !lonOK:
					p.warn("trkpt %d: missing coordinate", idx)
				case !geo.ValidCoordinate(lat, lon):
					p.warn("trkpt %d: coordinate out of range (%v, %v)", idx, lat, lon)
				case badTime:
					p.warn("trkpt %d: unparsable timestamp", idx)
				default:
					pt.Lat = lat
					pt.Lon = lon
					p.points = append(p.points, pt)
				}
				return nil
			}
		}
	}
}

func (p *parser) warn(format string, args ...any) {
	p.warnings = append(p.warnings, Warning{
		Path:   p.path,
		Reason: fmt.Sprintf(format, args...),
	})
}

// pointAttr extracts a float attribute from a trkpt start element.
func pointAttr(el xml.StartElement, name string) (float64, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
			if err != nil {
				return 0, false
			}
			return v, true
		}
	}
	return 0, false
}

// collectText reads character data up to and including the end element
// of the element just opened.
func collectText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("malformed markup: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			if depth == 1 {
				sb.Write(t)
			}
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return sb.String(), nil
}

// parseTime accepts the timestamp formats seen in GPX exports:
// RFC 3339 with or without fractional seconds.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parentIs reports whether the innermost open element is the named one.
func parentIs(stack []string, name string) bool {
	return len(stack) > 0 && stack[len(stack)-1] == name
}
