package gaiachat

import (
	"io"

	"github.com/kailas-cloud/gaiachat/internal/domain/population"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	"github.com/kailas-cloud/gaiachat/internal/export"
	"github.com/kailas-cloud/gaiachat/internal/usecase/plot"
)

// Output formats for Result.Write.
const (
	FormatText = export.FormatText
	FormatJSON = export.FormatJSON
	FormatCSV  = export.FormatCSV
)

// Plot types accepted by Result.Plot.
const (
	PlotHRDiagram     = plot.HRDiagram
	PlotSkyMap        = plot.SkyMap
	PlotVelocity      = plot.VelocityPlot
	PlotToomreDiagram = plot.ToomreDiagram
	PlotProperMotion  = plot.ProperMotion
)

// Figure is renderer-agnostic scatter data.
type Figure = plot.Figure

// ConeQuery selects stars with positive parallax within a circle on the sky.
// A nil RadiusDeg searches 1 degree.
type ConeQuery struct {
	RA        float64
	Dec       float64
	RadiusDeg *float64
	Limit     int
}

// SolarQuery selects well-measured stars near the Sun. A nil DistancePc means 100 pc;
// an explicit zero is rejected with ErrInvalidInput.
type SolarQuery struct {
	DistancePc *float64
	Limit      int
}

// HypervelocityQuery selects stars faster than MinVelocityKms.
// Nil fields mean 5 kpc and 300 km/s. MinVelocityKms may be set to 0.
type HypervelocityQuery struct {
	DistanceKpc    *float64
	MinVelocityKms *float64
	Limit          int
}

// Float64 returns a pointer to v, for the optional query fields.
func Float64(v float64) *float64 { return &v }

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// BuildQuery describes an ADQL query assembled from parts.
type BuildQuery struct {
	Columns    []string
	Conditions []string
	OrderBy    string
	Limit      int
}

// Population describes a stream or halo selection.
type Population struct {
	Key         string
	Name        string
	Kind        string
	Aliases     []string
	PreFilter   []string
	Description string
}

func populationFromDomain(c population.Criterion) Population {
	return Population{
		Key:         c.Key,
		Name:        c.Name,
		Kind:        string(c.Kind),
		Aliases:     append([]string(nil), c.Aliases...),
		PreFilter:   append([]string(nil), c.PreFilter...),
		Description: c.Description,
	}
}

// Result is one search outcome: the rows, the ADQL that produced them and a description.
type Result struct {
	r result.Result
}

// Description is a human-readable summary of the search.
func (r Result) Description() string { return r.r.Description() }

// Query is the ADQL sent to the archive.
func (r Result) Query() string { return r.r.Query() }

// Len returns the number of rows.
func (r Result) Len() int { return r.r.RowCount() }

// Columns lists the column names in output order.
func (r Result) Columns() []string { return r.r.Table().Columns() }

// Rows returns every row keyed by column name. Missing values are nil.
func (r Result) Rows() []map[string]any { return r.r.Table().Records() }

// Write renders the result as text, JSON or CSV.
func (r Result) Write(w io.Writer, format string) error {
	return export.Write(w, r.r, format)
}

// Plot builds scatter data for the named plot type.
func (r Result) Plot(plotType string) (Figure, error) {
	return plot.Build(r.r.Table(), plotType)
}
