// Package adql builds the ADQL statements sent to the Gaia archive.
package adql

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/kinematics"
)

// DefaultOrderBy is applied when a query names no ordering.
const DefaultOrderBy = "parallax DESC"

// DefaultTable is the Gaia DR3 source catalog.
const DefaultTable = "gaiadr3.gaia_source"

var (
	identRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	orderByRe = regexp.MustCompile(`(?i)^[A-Za-z_][A-Za-z0-9_]*(\s+(ASC|DESC))?$`)
)

// Limits bounds the TOP clause of every built query.
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits returns the archive defaults.
func DefaultLimits() Limits {
	return Limits{Default: 1000, Max: 10000}
}

// Resolve returns the effective row cap: 0 selects the default, values above
// the maximum are clamped and negative values are rejected.
func (l Limits) Resolve(n int) (int, error) {
	switch {
	case n < 0:
		return 0, domain.Invalidf("limit must not be negative, got %d", n)
	case n == 0:
		return min(l.Default, l.Max), nil
	case n > l.Max:
		return l.Max, nil
	default:
		return n, nil
	}
}

// Float renders v as an ADQL numeric literal.
func Float(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", domain.Invalidf("numeric parameter must be finite, got %v", v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

// ParallaxFloorFromPc converts a distance bound in parsec into a parallax floor in mas.
func ParallaxFloorFromPc(distancePc float64) (float64, error) {
	if !positive(distancePc) {
		return 0, domain.Invalidf("distance_pc must be positive, got %v", distancePc)
	}
	return 1000 / distancePc, nil
}

// ParallaxFloorFromKpc converts a distance bound in kpc into a parallax floor in mas.
func ParallaxFloorFromKpc(distanceKpc float64) (float64, error) {
	if !positive(distanceKpc) {
		return 0, domain.Invalidf("distance_kpc must be positive, got %v", distanceKpc)
	}
	return 1 / distanceKpc, nil
}

// ConeContains renders the ICRS circle containment predicate.
func ConeContains(raDeg, decDeg, radiusDeg float64) (string, error) {
	if !kinematics.ValidSkyPosition(raDeg, decDeg) {
		return "", domain.Invalidf("position must have ra in [0, 360) and dec in [-90, 90], got (%v, %v)", raDeg, decDeg)
	}
	if math.IsNaN(radiusDeg) || radiusDeg <= 0 || radiusDeg > 180 {
		return "", domain.Invalidf("radius must be in (0, 180], got %v", radiusDeg)
	}
	ra, _ := Float(raDeg)
	dec, _ := Float(decDeg)
	r, _ := Float(radiusDeg)
	return "1=CONTAINS(POINT('ICRS', ra, dec), CIRCLE('ICRS', " + ra + ", " + dec + ", " + r + "))", nil
}

// Greater renders "column > value".
func Greater(column string, v float64) (string, error) {
	return compare(column, ">", v)
}

func compare(column, op string, v float64) (string, error) {
	if !identRe.MatchString(column) {
		return "", domain.Invalidf("invalid column %q", column)
	}
	lit, err := Float(v)
	if err != nil {
		return "", err
	}
	return column + " " + op + " " + lit, nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Builder accumulates a SELECT statement. The first error is kept and returned by Build.
type Builder struct {
	columns []string
	table   string
	where   []string
	top     int
	orderBy string
	err     error
}

// Select starts a query over the given columns. No columns selects "*".
func Select(columns ...string) *Builder {
	b := &Builder{table: DefaultTable, orderBy: DefaultOrderBy}
	for _, c := range columns {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if c != "*" && !identRe.MatchString(c) {
			b.fail(domain.Invalidf("invalid column %q", c))
			continue
		}
		b.columns = append(b.columns, c)
	}
	return b
}

// From sets the source table.
func (b *Builder) From(table string) *Builder {
	if !identRe.MatchString(table) {
		b.fail(domain.Invalidf("invalid table %q", table))
		return b
	}
	b.table = table
	return b
}

// Where appends conditions joined with AND. Blank conditions are ignored.
func (b *Builder) Where(conditions ...string) *Builder {
	for _, c := range conditions {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if strings.Contains(c, ";") {
			b.fail(domain.Invalidf("condition must be a single predicate: %q", c))
			continue
		}
		b.where = append(b.where, c)
	}
	return b
}

// WhereErr appends a condition produced by one of the literal helpers.
func (b *Builder) WhereErr(condition string, err error) *Builder {
	if err != nil {
		b.fail(err)
		return b
	}
	return b.Where(condition)
}

// Top requests a row cap; it is resolved against Limits in Build.
func (b *Builder) Top(n int) *Builder {
	b.top = n
	return b
}

// OrderBy sets a column ordering such as "parallax DESC".
func (b *Builder) OrderBy(expr string) *Builder {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		b.orderBy = DefaultOrderBy
		return b
	}
	if !orderByRe.MatchString(expr) {
		b.fail(domain.Invalidf("invalid order by %q", expr))
		return b
	}
	b.orderBy = expr
	return b
}

// OrderByExpr sets an ordering expression produced by this package, such as a proper-motion norm.
func (b *Builder) OrderByExpr(expr string) *Builder {
	b.orderBy = expr
	return b
}

// Build renders the statement with the row cap resolved against l.
func (b *Builder) Build(l Limits) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	top, err := l.Resolve(b.top)
	if err != nil {
		return "", err
	}

	cols := "*"
	if len(b.columns) > 0 {
		cols = strings.Join(b.columns, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT TOP ")
	sb.WriteString(strconv.Itoa(top))
	sb.WriteString(" ")
	sb.WriteString(cols)
	sb.WriteString("\nFROM ")
	sb.WriteString(b.table)
	if len(b.where) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(b.where, "\n  AND "))
	}
	if b.orderBy != "" {
		sb.WriteString("\nORDER BY ")
		sb.WriteString(b.orderBy)
	}
	return sb.String(), nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// ProperMotionNorm is the total proper motion expression in mas/yr.
const ProperMotionNorm = "SQRT(pmra*pmra + pmdec*pmdec)"
