package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tdlangland/trackreport/internal/geo"
	"github.com/tdlangland/trackreport/internal/route"
)

// MaxProfileRoutes caps how many routes one profile chart draws; past
// that, the legend stops being readable.
const MaxProfileRoutes = 12

// SaveProfile writes a PNG elevation profile (elevation over
// cumulative distance) for up to MaxProfileRoutes routes.
// Routes without elevation data are skipped.
func SaveProfile(routes []route.Route, title, path string) error {
	p := plot.New()
	if title == "" {
		title = "Elevation Profile"
	}
	p.Title.Text = title
	p.X.Label.Text = "Distance (km)"
	p.Y.Label.Text = "Elevation (m)"

	drawn := 0
	colors := profileColors(MaxProfileRoutes)
	for _, r := range routes {
		if drawn >= MaxProfileRoutes {
			break
		}

		pts := make(plotter.XYs, 0, len(r.Points))
		cum := 0.0
		for i, pt := range r.Points {
			if i > 0 {
				prev := r.Points[i-1]
				cum += geo.Haversine(prev.Lat, prev.Lon, pt.Lat, pt.Lon)
			}
			if pt.HasElevation {
				pts = append(pts, plotter.XY{X: cum / 1000, Y: pt.Elevation})
			}
		}
		if len(pts) < 2 {
			continue
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("profile line for %s: %w", r.Path, err)
		}
		line.Color = colors[drawn%len(colors)]
		line.Width = vg.Points(1)

		label := r.Meta.Name
		if label == "" {
			label = r.Path
		}
		p.Add(line)
		p.Legend.Add(label, line)
		drawn++
	}

	if drawn == 0 {
		return fmt.Errorf("profile: no routes with elevation data")
	}

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// profileColors creates a palette of distinct colors for route lines.
func profileColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hsvToRGB(hue, 0.75, 0.9)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}
