package result

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ColumnNames(t *testing.T) {
	table := &Table{
		Columns: []string{"Zone_Name", "  BOROUGH ", "trips"},
	}

	got := table.Normalize()
	assert.Equal(t, []string{"zone_name", "borough", "trips"}, got.Columns)
}

func TestNormalize_CellTypes(t *testing.T) {
	ts := time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)

	table := &Table{
		Columns: []string{"a", "b", "c", "d", "e", "f", "g"},
		Rows: [][]any{
			{int64(7), []byte("Tribeca"), true, false, float32(1.5), ts, nil},
		},
	}

	got := table.Normalize()
	require.Len(t, got.Rows, 1)

	row := got.Rows[0]
	assert.Equal(t, int64(7), row[0])
	assert.Equal(t, "Tribeca", row[1])
	assert.Equal(t, int64(1), row[2])
	assert.Equal(t, int64(0), row[3])
	assert.Equal(t, float64(1.5), row[4])
	assert.Equal(t, "2024-01-15 08:30:00", row[5])
	assert.Nil(t, row[6])
}

func TestNormalize_NFCStrings(t *testing.T) {
	// "é" as combining sequence (e + U+0301) must normalize to the
	// precomposed form so text comparison is representation-independent.
	table := &Table{
		Columns: []string{"name"},
		Rows:    [][]any{{"Café"}},
	}

	got := table.Normalize()
	assert.Equal(t, "Café", got.Rows[0][0])
}

func TestNormalize_DoesNotMutateOriginal(t *testing.T) {
	table := &Table{
		Columns: []string{"N"},
		Rows:    [][]any{{[]byte("x")}},
	}

	_ = table.Normalize()

	assert.Equal(t, "N", table.Columns[0])
	assert.Equal(t, []byte("x"), table.Rows[0][0])
}

func TestAsFloat(t *testing.T) {
	f, ok := AsFloat(int64(3))
	require.True(t, ok)
	assert.Equal(t, 3.0, f)

	f, ok = AsFloat(2.5)
	require.True(t, ok)
	assert.Equal(t, 2.5, f)

	_, ok = AsFloat("3")
	assert.False(t, ok)

	_, ok = AsFloat(nil)
	assert.False(t, ok)
}

func TestClone_Independent(t *testing.T) {
	table := &Table{
		Columns: []string{"a"},
		Rows:    [][]any{{int64(1)}},
	}

	clone := table.Clone()
	clone.Columns[0] = "b"
	clone.Rows[0][0] = int64(2)

	assert.Equal(t, "a", table.Columns[0])
	assert.Equal(t, int64(1), table.Rows[0][0])
}
