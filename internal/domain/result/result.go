// Package result holds the immutable outcome of a catalog query.
package result

import (
	"github.com/kailas-cloud/gaiachat/internal/domain/star"
)

// SampleSize is the number of rows included in a Summary.
const SampleSize = 5

// Result is a query outcome: the table, the executed ADQL and a description.
type Result struct {
	table       star.Table
	query       string
	description string
}

// New creates a Result.
func New(table star.Table, query, description string) Result {
	return Result{table: table, query: query, description: description}
}

// Table returns the result rows.
func (r Result) Table() star.Table { return r.table }

// Query returns the ADQL text that produced the rows.
func (r Result) Query() string { return r.query }

// Description returns the human-readable description.
func (r Result) Description() string { return r.description }

// RowCount is always the number of rows in the table.
func (r Result) RowCount() int { return r.table.Len() }

// Summary is a compact view for tool and chat responses.
type Summary struct {
	RowCount    int              `json:"row_count"`
	Columns     []string         `json:"columns"`
	Description string           `json:"description"`
	Query       string           `json:"query"`
	Sample      []map[string]any `json:"sample"`
}

// Summary returns the row count, columns and up to SampleSize rows.
func (r Result) Summary() Summary {
	return Summary{
		RowCount:    r.RowCount(),
		Columns:     r.table.Columns(),
		Description: r.description,
		Query:       r.query,
		Sample:      r.table.Head(SampleSize).Records(),
	}
}
