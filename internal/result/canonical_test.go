package result

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Basic(t *testing.T) {
	table := &Table{
		Columns: []string{"zone_name", "trips"},
		Rows: [][]any{
			{"Midtown Center", int64(412)},
			{"Times Square", int64(333)},
		},
	}

	got, err := MarshalCanonical(table)
	require.NoError(t, err)
	assert.Equal(t,
		`{"columns":["zone_name","trips"],"rows":[["Midtown Center",412],["Times Square",333]]}`,
		string(got))
}

func TestMarshalCanonical_NullAndFloat(t *testing.T) {
	table := &Table{
		Columns: []string{"avg_tip"},
		Rows: [][]any{
			{nil},
			{3.25},
			{float64(2)},
		},
	}

	got, err := MarshalCanonical(table)
	require.NoError(t, err)
	assert.Equal(t, `{"columns":["avg_tip"],"rows":[[null],[3.25],[2]]}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	table := &Table{
		Columns: []string{"expr"},
		Rows:    [][]any{{"a < b & c > d"}},
	}

	got, err := MarshalCanonical(table)
	require.NoError(t, err)
	assert.Contains(t, string(got), `"a < b & c > d"`)
}

func TestMarshalCanonical_FloatStability(t *testing.T) {
	// Same value must always serialize to the same bytes.
	table := &Table{
		Columns: []string{"f"},
		Rows:    [][]any{{0.1 + 0.2}},
	}

	first, err := MarshalCanonical(table)
	require.NoError(t, err)
	second, err := MarshalCanonical(table)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMarshalCanonical_RejectsNonFinite(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		table := &Table{Columns: []string{"f"}, Rows: [][]any{{bad}}}
		_, err := MarshalCanonical(table)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "forbidden")
	}
}

func TestMarshalCanonical_RejectsUnnormalizedCell(t *testing.T) {
	table := &Table{Columns: []string{"b"}, Rows: [][]any{{[]byte("raw")}}}
	_, err := MarshalCanonical(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not normalized")
}

func TestMarshalCanonical_EmptyTable(t *testing.T) {
	table := &Table{Columns: []string{"n"}}
	got, err := MarshalCanonical(table)
	require.NoError(t, err)
	assert.Equal(t, `{"columns":["n"],"rows":[]}`, string(got))
}
