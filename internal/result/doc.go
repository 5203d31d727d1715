// Package result provides the in-memory tabular result representation
// shared by the runner, comparator, and CLI renderers.
//
// This package contains types and pure transformations only. All other
// internal packages may import result; result imports nothing internal.
//
// Key design constraints:
//   - Cell values are restricted to what database/sql yields from SQLite:
//     nil, int64, float64, string, bool, []byte, time.Time
//   - Normalize is the single place where driver-level representation
//     quirks (byte slices, bools-as-ints, datetime values) are flattened
//   - Canonical JSON serialization is the ONLY form used for golden files
package result
