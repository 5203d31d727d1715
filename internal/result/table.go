package result

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Table is a materialized query result: an ordered column list and rows
// of cells. Cell values use the Go types produced by database/sql when
// scanning SQLite rows: nil, int64, float64, string, bool, []byte,
// time.Time.
type Table struct {
	Columns []string
	Rows    [][]any
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns in the table.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// Clone returns a deep copy of the table. Cell values are copied by
// assignment, which is sufficient for the scalar types a normalized
// table contains.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]any(nil), row...)
	}
	return out
}

// SQLiteTimeFormat is the text form SQLite's datetime() produces.
// Normalized time.Time cells are rendered in this format so results read
// from typed columns compare equal to results computed as text.
const SQLiteTimeFormat = "2006-01-02 15:04:05"

// Normalize returns a copy of the table with driver-level representation
// flattened to a small canonical set of cell types:
//
//   - column names are lowercased and trimmed
//   - []byte cells become NFC-normalized strings
//   - string cells are NFC-normalized
//   - bool cells become int64 0/1 (SQLite has no boolean storage class)
//   - time.Time cells become text in SQLiteTimeFormat (UTC)
//   - integer widths collapse to int64, float32 to float64
//   - nil stays nil (SQL NULL)
//
// Normalize never mutates the receiver.
func (t *Table) Normalize() *Table {
	out := &Table{
		Columns: make([]string, len(t.Columns)),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, col := range t.Columns {
		out.Columns[i] = strings.ToLower(strings.TrimSpace(col))
	}
	for i, row := range t.Rows {
		normRow := make([]any, len(row))
		for j, cell := range row {
			normRow[j] = NormalizeCell(cell)
		}
		out.Rows[i] = normRow
	}
	return out
}

// NormalizeCell flattens a single cell value per the Normalize rules.
func NormalizeCell(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case int64:
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case float64:
		return val
	case float32:
		return float64(val)
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case string:
		return norm.NFC.String(val)
	case []byte:
		return norm.NFC.String(string(val))
	case time.Time:
		return val.UTC().Format(SQLiteTimeFormat)
	default:
		// Unknown driver type: fall back to its string form so the
		// comparator still has something deterministic to work with.
		return fmt.Sprintf("%v", val)
	}
}

// IsNumeric reports whether a normalized cell holds a numeric value.
func IsNumeric(v any) bool {
	switch v.(type) {
	case int64, float64:
		return true
	}
	return false
}

// AsFloat converts a normalized numeric cell to float64.
// The second return is false for non-numeric cells.
func AsFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case float64:
		return val, true
	}
	return 0, false
}
