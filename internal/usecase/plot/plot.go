// Package plot turns a result table into figure data for an external renderer.
package plot

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/kinematics"
	"github.com/kailas-cloud/gaiachat/internal/domain/star"
)

// Plot types.
const (
	HRDiagram     = "hr_diagram"
	SkyMap        = "sky_map"
	VelocityPlot  = "velocity_plot"
	ToomreDiagram = "toomre_diagram"
	ProperMotion  = "proper_motion"
)

// lsrVPhi is the approximate solar azimuthal velocity subtracted in the Toomre diagram.
const lsrVPhi = 220.0

// Point is one scatter point. Color is nil when the figure has no colour scale
// or the row lacks the colour value.
type Point struct {
	SourceID int64    `json:"source_id"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Color    *float64 `json:"color,omitempty"`
}

// Figure is a renderer-agnostic scatter plot.
type Figure struct {
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	XLabel     string  `json:"x_label"`
	YLabel     string  `json:"y_label"`
	ColorLabel string  `json:"color_label,omitempty"`
	InvertY    bool    `json:"invert_y,omitempty"`
	Points     []Point `json:"points"`
	// Skipped counts rows without the values this figure needs.
	Skipped int `json:"skipped"`
}

type builder func(t star.Table) (Figure, error)

var builders = map[string]builder{
	HRDiagram:     hrDiagram,
	SkyMap:        skyMap,
	VelocityPlot:  velocityPlot,
	ToomreDiagram: toomreDiagram,
	ProperMotion:  properMotion,
}

// Types lists the supported plot types in sorted order.
func Types() []string {
	out := make([]string, 0, len(builders))
	for k := range builders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Supported reports whether plotType is known.
func Supported(plotType string) bool {
	_, ok := builders[plotType]
	return ok
}

// Build renders plotType for t. Unknown types and tables lacking the
// required columns return domain.ErrUnsupportedPlot.
func Build(t star.Table, plotType string) (Figure, error) {
	b, ok := builders[plotType]
	if !ok {
		return Figure{}, fmt.Errorf("%w: unknown plot type %q, available: %s",
			domain.ErrUnsupportedPlot, plotType, strings.Join(Types(), ", "))
	}
	return b(t)
}

func requireColumns(t star.Table, plotType string, cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s needs columns %s",
			domain.ErrUnsupportedPlot, plotType, strings.Join(missing, ", "))
	}
	return nil
}

// scatter collects points from rows where xy returns ok.
func scatter(t star.Table, fig Figure, xy func(s *star.Star) (x, y float64, c *float64, ok bool)) Figure {
	fig.Points = make([]Point, 0, t.Len())
	for _, s := range t.Stars() {
		x, y, c, ok := xy(&s)
		if !ok || !finite(x) || !finite(y) {
			fig.Skipped++
			continue
		}
		fig.Points = append(fig.Points, Point{SourceID: s.SourceID, X: x, Y: y, Color: c})
	}
	return fig
}

func hrDiagram(t star.Table) (Figure, error) {
	if err := requireColumns(t, HRDiagram, star.ColBPRP, star.ColGMag); err != nil {
		return Figure{}, err
	}
	absolute := t.HasColumn(star.ColParallax)
	fig := Figure{
		Type:    HRDiagram,
		Title:   "Hertzsprung-Russell Diagram",
		XLabel:  "BP - RP (Color Index)",
		YLabel:  "Apparent G Magnitude",
		InvertY: true,
	}
	if absolute {
		fig.YLabel = "Absolute G Magnitude"
	}
	return scatter(t, fig, func(s *star.Star) (float64, float64, *float64, bool) {
		color, okC := s.BPRP.Get()
		g, okG := s.GMag.Get()
		if !okC || !okG {
			return 0, 0, nil, false
		}
		if !absolute {
			return color, g, nil, true
		}
		p, okP := s.Parallax.Get()
		if !okP {
			return 0, 0, nil, false
		}
		m, ok := kinematics.AbsoluteMagnitude(g, p)
		return color, m, nil, ok
	}), nil
}

func skyMap(t star.Table) (Figure, error) {
	if err := requireColumns(t, SkyMap, star.ColL, star.ColB); err != nil {
		return Figure{}, err
	}
	fig := Figure{
		Type:   SkyMap,
		Title:  "Sky Distribution (Galactic Coordinates)",
		XLabel: "Galactic longitude (deg, increasing left)",
		YLabel: "Galactic latitude (deg)",
	}
	if t.HasColumn(star.ColDistanceKpc) {
		fig.ColorLabel = "Distance (kpc)"
	}
	return scatter(t, fig, func(s *star.Star) (float64, float64, *float64, bool) {
		l, okL := s.L.Get()
		b, okB := s.B.Get()
		if !okL || !okB {
			return 0, 0, nil, false
		}
		if l > 180 {
			l -= 360
		}
		var c *float64
		if v, ok := s.Velocity(); ok {
			c = ptr(v.DistanceKpc)
		}
		return -l, b, c, true
	}), nil
}

func velocityPlot(t star.Table) (Figure, error) {
	if err := requireColumns(t, VelocityPlot, star.ColVR, star.ColVPhi); err != nil {
		return Figure{}, err
	}
	fig := Figure{
		Type:       VelocityPlot,
		Title:      "Galactocentric Velocities",
		XLabel:     "V_R (km/s) - Radial",
		YLabel:     "V_phi (km/s) - Azimuthal",
		ColorLabel: "Total Velocity (km/s)",
	}
	return scatter(t, fig, func(s *star.Star) (float64, float64, *float64, bool) {
		v, ok := s.Velocity()
		if !ok {
			return 0, 0, nil, false
		}
		return v.VR, v.VPhi, ptr(v.Total), true
	}), nil
}

func toomreDiagram(t star.Table) (Figure, error) {
	if err := requireColumns(t, ToomreDiagram, star.ColVR, star.ColVPhi, star.ColVZ); err != nil {
		return Figure{}, err
	}
	fig := Figure{
		Type:   ToomreDiagram,
		Title:  "Toomre Diagram",
		XLabel: "V_phi - V_LSR (km/s)",
		YLabel: "sqrt(V_R^2 + V_z^2) (km/s)",
	}
	return scatter(t, fig, func(s *star.Star) (float64, float64, *float64, bool) {
		v, ok := s.Velocity()
		if !ok {
			return 0, 0, nil, false
		}
		return v.VPhi - lsrVPhi, math.Hypot(v.VR, v.VZ), nil, true
	}), nil
}

func properMotion(t star.Table) (Figure, error) {
	if err := requireColumns(t, ProperMotion, star.ColPMRA, star.ColPMDec); err != nil {
		return Figure{}, err
	}
	fig := Figure{
		Type:       ProperMotion,
		Title:      "Proper Motion Distribution",
		XLabel:     "pmra (mas/yr)",
		YLabel:     "pmdec (mas/yr)",
		ColorLabel: "Total PM (mas/yr)",
	}
	return scatter(t, fig, func(s *star.Star) (float64, float64, *float64, bool) {
		ra, okRA := s.PMRA.Get()
		dec, okDec := s.PMDec.Get()
		if !okRA || !okDec {
			return 0, 0, nil, false
		}
		return ra, dec, ptr(math.Hypot(ra, dec)), true
	}), nil
}

func ptr(v float64) *float64 { return &v }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
