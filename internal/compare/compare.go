// Package compare decides whether a learner's result set matches the
// reference result set for an exercise.
//
// Matching rules:
//   - column count must match; column names must match case-insensitively
//     unless the exercise ignores names
//   - row count must match
//   - cells match by value class: NULL only equals NULL, numerics compare
//     within a tolerance (int64 and float64 interchangeably), text
//     compares byte-equal after NFC normalization
//   - row order is ignored unless the comparison is order-sensitive; in
//     the insensitive mode both tables are sorted by a canonical row key
//     first, so the reported first mismatch is deterministic
//
// A nil *Diff means the tables match; otherwise the Diff names the first
// point of divergence.
package compare

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/calegray/taxidrill/internal/result"
)

// DefaultTolerance is the numeric comparison tolerance when an exercise
// does not override it.
const DefaultTolerance = 1e-6

// Options controls a comparison.
type Options struct {
	// OrderSensitive requires rows in identical order. Set when the
	// learner's query carries a top-level ORDER BY or the exercise
	// demands ordering.
	OrderSensitive bool

	// Tolerance is the maximum absolute difference under which two
	// numeric cells are equal. Zero or negative selects DefaultTolerance.
	Tolerance float64

	// IgnoreColumnNames skips column-name matching (count still must
	// match). For exercises where the prompt doesn't fix aliases.
	IgnoreColumnNames bool
}

// tolerance resolves the effective tolerance.
func (o Options) tolerance() float64 {
	if o.Tolerance <= 0 {
		return DefaultTolerance
	}
	return o.Tolerance
}

// Kind categorizes where a comparison diverged.
type Kind string

const (
	KindColumnCount Kind = "column_count"
	KindColumnName  Kind = "column_name"
	KindRowCount    Kind = "row_count"
	KindCell        Kind = "cell"
)

// Diff describes the first point of divergence between two tables.
type Diff struct {
	Kind Kind `json:"kind"`

	// Row is the 1-based row index of the first mismatching cell.
	// For order-insensitive comparisons it indexes the canonical row
	// order, not the order the learner's query produced.
	Row int `json:"row,omitempty"`

	// Column is the mismatching column's name (KindCell, KindColumnName).
	Column string `json:"column,omitempty"`

	// Expected and Actual are display renderings of the diverging values.
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// String renders the diff for terminal output.
func (d *Diff) String() string {
	var buf strings.Builder
	switch d.Kind {
	case KindColumnCount:
		fmt.Fprintf(&buf, "Column count mismatch\n")
	case KindColumnName:
		fmt.Fprintf(&buf, "Column %q does not match\n", d.Column)
	case KindRowCount:
		fmt.Fprintf(&buf, "Row count mismatch\n")
	case KindCell:
		fmt.Fprintf(&buf, "First mismatch at row %d, column %q\n", d.Row, d.Column)
	}
	fmt.Fprintf(&buf, "  Expected: %s\n", d.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", d.Actual)
	return buf.String()
}

// Compare normalizes both tables and reports the first divergence, or
// nil if they match under the given options. want is the reference
// result; got is the learner's.
func Compare(want, got *result.Table, opts Options) *Diff {
	w := want.Normalize()
	g := got.Normalize()
	tol := opts.tolerance()

	if len(w.Columns) != len(g.Columns) {
		return &Diff{
			Kind:     KindColumnCount,
			Expected: fmt.Sprintf("%d columns (%s)", len(w.Columns), strings.Join(w.Columns, ", ")),
			Actual:   fmt.Sprintf("%d columns (%s)", len(g.Columns), strings.Join(g.Columns, ", ")),
		}
	}

	if !opts.IgnoreColumnNames {
		for i := range w.Columns {
			// Normalize already lowercased both sides.
			if w.Columns[i] != g.Columns[i] {
				return &Diff{
					Kind:     KindColumnName,
					Column:   g.Columns[i],
					Expected: fmt.Sprintf("column %d named %q", i+1, w.Columns[i]),
					Actual:   fmt.Sprintf("column %d named %q", i+1, g.Columns[i]),
				}
			}
		}
	}

	if len(w.Rows) != len(g.Rows) {
		return &Diff{
			Kind:     KindRowCount,
			Expected: fmt.Sprintf("%d rows", len(w.Rows)),
			Actual:   fmt.Sprintf("%d rows", len(g.Rows)),
		}
	}

	if !opts.OrderSensitive {
		sortRows(w.Rows, tol)
		sortRows(g.Rows, tol)
	}

	for i := range w.Rows {
		for j := range w.Rows[i] {
			if !cellsEqual(w.Rows[i][j], g.Rows[i][j], tol) {
				return &Diff{
					Kind:     KindCell,
					Row:      i + 1,
					Column:   w.Columns[j],
					Expected: result.DisplayCell(w.Rows[i][j]),
					Actual:   result.DisplayCell(g.Rows[i][j]),
				}
			}
		}
	}

	return nil
}

// cellsEqual compares two normalized cells. NULL equals only NULL;
// numerics compare within tol; everything else requires identical
// normalized strings.
func cellsEqual(a, b any, tol float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	af, aNum := result.AsFloat(a)
	bf, bNum := result.AsFloat(b)
	if aNum || bNum {
		if !aNum || !bNum {
			return false
		}
		return math.Abs(af-bf) <= tol
	}

	as, aOK := a.(string)
	bs, bOK := b.(string)
	if aOK && bOK {
		return as == bs
	}

	return false
}

// sortRows orders rows by a canonical key so order-insensitive
// comparison pairs rows deterministically. Numeric cells are quantized
// to the tolerance grid before keying, so two values that compare equal
// sort into the same position.
func sortRows(rows [][]any, tol float64) {
	keys := make([]string, len(rows))
	order := make([]int, len(rows))
	for i, row := range rows {
		keys[i] = rowKey(row, tol)
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return keys[order[x]] < keys[order[y]]
	})

	sorted := make([][]any, len(rows))
	for i, idx := range order {
		sorted[i] = rows[idx]
	}
	copy(rows, sorted)
}

// rowKey builds a deterministic sort key for a row. Cells are tagged by
// value class so NULL, numbers, and text never interleave ambiguously.
func rowKey(row []any, tol float64) string {
	var buf strings.Builder
	for _, cell := range row {
		switch {
		case cell == nil:
			buf.WriteString("0|")
		default:
			if f, ok := result.AsFloat(cell); ok {
				q := math.Round(f / tol)
				buf.WriteString("1|")
				buf.WriteString(strconv.FormatFloat(q, 'g', -1, 64))
			} else {
				buf.WriteString("2|")
				buf.WriteString(result.DisplayCell(cell))
			}
		}
		buf.WriteByte('\x00')
	}
	return buf.String()
}
