package star

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Table is an ordered set of catalog rows with the column names they were fetched with.
// Methods never modify the receiver; derived tables share no row slice with it.
type Table struct {
	columns []string
	stars   []Star
}

// NewTable copies columns and stars into a new Table.
func NewTable(columns []string, stars []Star) Table {
	return Table{
		columns: append([]string(nil), columns...),
		stars:   append([]Star(nil), stars...),
	}
}

// Columns returns a copy of the column names.
func (t Table) Columns() []string { return append([]string(nil), t.columns...) }

// Stars returns a copy of the rows.
func (t Table) Stars() []Star { return append([]Star(nil), t.stars...) }

// Len returns the row count.
func (t Table) Len() int { return len(t.stars) }

// At returns the i-th row.
func (t Table) At(i int) Star { return t.stars[i] }

// HasColumn reports whether the table carries the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// HasKinematics reports whether the derived velocity columns are attached.
func (t Table) HasKinematics() bool { return t.HasColumn(ColVTotal) }

// Filter returns a new table with the rows for which keep returns true.
func (t Table) Filter(keep func(s *Star) bool) Table {
	out := make([]Star, 0, len(t.stars))
	for i := range t.stars {
		if keep(&t.stars[i]) {
			out = append(out, t.stars[i])
		}
	}
	return Table{columns: t.Columns(), stars: out}
}

// Head returns a new table with at most n rows.
func (t Table) Head(n int) Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.stars) {
		n = len(t.stars)
	}
	return NewTable(t.columns, t.stars[:n])
}

// WithStars returns a table with the same columns and the given rows.
func (t Table) WithStars(stars []Star) Table {
	return NewTable(t.columns, stars)
}

// WithColumns returns a copy whose column list also contains names, appended in order if absent.
func (t Table) WithColumns(names ...string) Table {
	out := NewTable(t.columns, t.stars)
	for _, n := range names {
		if !out.HasColumn(n) {
			out.columns = append(out.columns, n)
		}
	}
	return out
}

// SourceIDs returns the source_id of every row in order.
func (t Table) SourceIDs() []int64 {
	ids := make([]int64, len(t.stars))
	for i := range t.stars {
		ids[i] = t.stars[i].SourceID
	}
	return ids
}

// Value returns the value of col in row i; see Star.Value.
func (t Table) Value(i int, col string) any {
	return t.stars[i].Value(col)
}

// Records renders rows as column->value maps restricted to the table's columns.
func (t Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.stars))
	for i := range t.stars {
		rec := make(map[string]any, len(t.columns))
		for _, c := range t.columns {
			rec[c] = t.stars[i].Value(c)
		}
		out[i] = rec
	}
	return out
}

// FromRows decodes archive rows into a Table. source_id is mandatory; known catalog
// columns become typed measures and everything else is kept in Star.Extra.
func FromRows(columns []string, rows [][]any) (Table, error) {
	names := make([]string, len(columns))
	idIdx := -1
	for i, c := range columns {
		names[i] = normalizeColumn(c)
		if names[i] == ColSourceID {
			idIdx = i
		}
	}
	if idIdx < 0 {
		return Table{}, fmt.Errorf("result has no %s column", ColSourceID)
	}

	stars := make([]Star, len(rows))
	for r, row := range rows {
		if len(row) != len(names) {
			return Table{}, fmt.Errorf("row %d has %d values, want %d", r, len(row), len(names))
		}
		s := &stars[r]
		for i, name := range names {
			v := row[i]
			switch {
			case i == idIdx:
				id, err := toInt64(v)
				if err != nil {
					return Table{}, fmt.Errorf("row %d: %s: %w", r, ColSourceID, err)
				}
				s.SourceID = id
			case IsMeasureColumn(name):
				s.SetMeasure(name, toMeasure(v))
			default:
				if s.Extra == nil {
					s.Extra = make(map[string]any)
				}
				s.Extra[name] = v
			}
		}
	}
	return Table{columns: names, stars: stars}, nil
}

// normalizeColumn lower-cases known catalog columns and leaves others untouched.
func normalizeColumn(c string) string {
	lc := strings.ToLower(strings.TrimSpace(c))
	if lc == ColSourceID || IsMeasureColumn(lc) {
		return lc
	}
	return strings.TrimSpace(c)
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		return x.Int64()
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("non-integer value %v", x)
		}
		return int64(x), nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	case nil:
		return 0, fmt.Errorf("null value")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func toMeasure(v any) Measure {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Missing()
		}
		return Some(f)
	case float64:
		return Some(x)
	case float32:
		return Some(float64(x))
	case int64:
		return Some(float64(x))
	case int:
		return Some(float64(x))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return Missing()
		}
		return Some(f)
	default:
		return Missing()
	}
}
