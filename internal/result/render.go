package result

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// nullDisplay is how SQL NULL appears in rendered text tables.
const nullDisplay = "NULL"

// RenderText writes the table as an aligned monospace grid:
//
//	zone_name        | trips
//	-----------------+------
//	Midtown Center   | 412
//	Times Square     | 333
//
//	(2 rows)
//
// Intended for terminal output; golden files should use MarshalCanonical.
func RenderText(w io.Writer, t *Table) error {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = len(col)
	}

	cells := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = make([]string, len(row))
		for j, cell := range row {
			s := DisplayCell(cell)
			cells[i][j] = s
			if j < len(widths) && len(s) > widths[j] {
				widths[j] = len(s)
			}
		}
	}

	// Header
	for i, col := range t.Columns {
		if i > 0 {
			if _, err := fmt.Fprint(w, " | "); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%-*s", widths[i], col); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	// Separator
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("-", width)
	}
	if _, err := fmt.Fprintln(w, strings.Join(parts, "-+-")); err != nil {
		return err
	}

	// Rows
	for _, row := range cells {
		for j, cell := range row {
			if j > 0 {
				if _, err := fmt.Fprint(w, " | "); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%-*s", widths[j], cell); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	rowWord := "rows"
	if len(t.Rows) == 1 {
		rowWord = "row"
	}
	_, err := fmt.Fprintf(w, "\n(%d %s)\n", len(t.Rows), rowWord)
	return err
}

// DisplayCell renders a single cell for human-readable output.
func DisplayCell(v any) string {
	switch val := v.(type) {
	case nil:
		return nullDisplay
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
