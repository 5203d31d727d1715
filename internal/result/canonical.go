package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces a deterministic JSON rendering of a table
// for golden-file comparison.
//
// The encoding is fixed:
//
//	{"columns":["a","b"],"rows":[[1,"x"],[2,null]]}
//
// Key properties:
//  1. Field order is fixed (columns, then rows) - no map iteration
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. Floats use the shortest round-trip decimal form; NaN and the
//     infinities are rejected (SQLite cannot produce them from SELECT,
//     but a defect upstream should fail loudly rather than corrupt a
//     golden file)
//  5. SQL NULL encodes as JSON null
func MarshalCanonical(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString(`"columns":[`)
	for i, col := range t.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		colJSON, err := canonicalString(col)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		buf.Write(colJSON)
	}
	buf.WriteString(`],"rows":[`)

	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		for j, cell := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			cellJSON, err := canonicalCell(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i, j, err)
			}
			buf.Write(cellJSON)
		}
		buf.WriteByte(']')
	}

	buf.WriteString(`]}`)
	return buf.Bytes(), nil
}

// canonicalCell marshals a single normalized cell value.
func canonicalCell(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case int64:
		return strconv.AppendInt(nil, val, 10), nil
	case float64:
		return canonicalFloat(val)
	case string:
		return canonicalString(val)
	default:
		return nil, fmt.Errorf("unsupported cell type %T (table not normalized?)", v)
	}
}

// canonicalFloat renders a float with the shortest decimal form that
// round-trips, so the same value always serializes identically.
func canonicalFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float %v is forbidden in canonical JSON", f)
	}
	// Integral floats render with a trailing ".0" marker dropped: 2 not 2.0.
	// strconv 'g' with -1 precision already produces the shortest form.
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// canonicalString produces a JSON string with NFC normalization and
// HTML escaping disabled.
func canonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder appends a trailing newline.
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}
