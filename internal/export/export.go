// Package export renders result tables as CSV, JSON or aligned text.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	"github.com/kailas-cloud/gaiachat/internal/domain/star"
)

// Formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Write renders r in the named format.
func Write(w io.Writer, r result.Result, format string) error {
	switch format {
	case FormatCSV:
		return CSV(w, r.Table())
	case FormatJSON:
		return JSON(w, r)
	case FormatText, "":
		return Text(w, r)
	default:
		return fmt.Errorf("unknown format %q (want text, json or csv)", format)
	}
}

// CSV writes a header row and one row per star. Missing values are empty cells.
func CSV(w io.Writer, t star.Table) error {
	cols := t.Columns()
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(cols))
	for i := 0; i < t.Len(); i++ {
		for j, c := range cols {
			row[j] = Cell(t.Value(i, c))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// JSON writes the description, query and every row.
func JSON(w io.Writer, r result.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Description string           `json:"description"`
		Query       string           `json:"query"`
		RowCount    int              `json:"row_count"`
		Columns     []string         `json:"columns"`
		Rows        []map[string]any `json:"rows"`
	}{
		Description: r.Description(),
		Query:       r.Query(),
		RowCount:    r.RowCount(),
		Columns:     r.Table().Columns(),
		Rows:        r.Table().Records(),
	})
}

// Text writes the description followed by an aligned table.
func Text(w io.Writer, r result.Result) error {
	if _, err := fmt.Fprintf(w, "%s (%d rows)\n\n", r.Description(), r.RowCount()); err != nil {
		return err
	}
	t := r.Table()
	cols := t.Columns()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for j, c := range cols {
		if j > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
	for i := 0; i < t.Len(); i++ {
		for j, c := range cols {
			if j > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, Cell(t.Value(i, c)))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// Cell formats a table value. Floats use the shortest exact representation.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
