// Package pagination implements cursor-based search pagination for the EPC
// open data API: page normalization, continuation decisions, and the
// sequential fetch loop that accumulates pages into a single table.
package pagination

import (
	"encoding/csv"
	"io"
	"strings"
)

// Table is a uniform tabular result set. Columns are in canonical snake_case
// form; every row is aligned with Columns (missing cells are empty strings).
type Table struct {
	Columns []string
	Rows    [][]string
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// Append concatenates another table onto this one, preserving row order.
// The first non-empty table fixes the column order; rows appended later are
// realigned by column name so a schema drift between pages cannot silently
// shift values into the wrong column.
func (t *Table) Append(other *Table) {
	if other == nil || other.Empty() {
		return
	}
	if len(t.Columns) == 0 {
		t.Columns = other.Columns
		t.Rows = append(t.Rows, other.Rows...)
		return
	}

	if columnsEqual(t.Columns, other.Columns) {
		t.Rows = append(t.Rows, other.Rows...)
		return
	}

	index := make(map[string]int, len(other.Columns))
	for i, col := range other.Columns {
		index[col] = i
	}
	for _, row := range other.Rows {
		aligned := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			if j, ok := index[col]; ok && j < len(row) {
				aligned[i] = row[j]
			}
		}
		t.Rows = append(t.Rows, aligned)
	}
}

// Truncate trims the table to at most limit rows, preserving order.
// Upstream rows arrive already ordered, so this is a pure prefix take.
func (t *Table) Truncate(limit int) {
	if limit >= 0 && len(t.Rows) > limit {
		t.Rows = t.Rows[:limit]
	}
}

// WriteCSV writes the table as CSV with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if len(t.Columns) > 0 {
		if err := cw.Write(t.Columns); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ColumnIndex returns the index of a column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

func columnsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CanonicalColumn converts an API column name (hyphenated) to snake_case.
func CanonicalColumn(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
