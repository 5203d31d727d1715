package grader

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalReport renders a report as stable, indented JSON. Used for
// golden comparison and by the CLI's json output.
func MarshalReport(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return buf.Bytes(), nil
}
