package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calegray/taxidrill/internal/testutil"
)

func TestRun_SimpleSelect(t *testing.T) {
	db := testutil.OpenFixture(t)
	r := New(db)

	table, stmt, err := r.Run(context.Background(), "SELECT COUNT(*) AS n FROM trips")
	require.NoError(t, err)
	require.NotNil(t, stmt)

	assert.Equal(t, []string{"n"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, int64(testutil.FixtureTripCount), table.Rows[0][0])
	assert.False(t, stmt.HasOrderBy)
}

func TestRun_OrderByReported(t *testing.T) {
	db := testutil.OpenFixture(t)
	r := New(db)

	_, stmt, err := r.Run(context.Background(),
		"SELECT trip_id FROM trips ORDER BY fare_amount DESC")
	require.NoError(t, err)
	assert.True(t, stmt.HasOrderBy)
}

func TestRun_ScansDriverTypes(t *testing.T) {
	db := testutil.OpenFixture(t)
	r := New(db)

	table, _, err := r.Run(context.Background(), `
		SELECT zone_name, location_id, NULL AS missing, 1.5 AS ratio
		FROM zones WHERE location_id = 224
	`)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.Equal(t, "Times Square", row[0])
	assert.Equal(t, int64(224), row[1])
	assert.Nil(t, row[2])
	assert.Equal(t, 1.5, row[3])
}

func TestRun_RejectsWrites(t *testing.T) {
	db := testutil.OpenFixture(t)
	r := New(db)
	ctx := context.Background()

	for _, sql := range []string{
		"DELETE FROM trips",
		"INSERT INTO zones VALUES (999, 'x', 'y', 'z')",
		"SELECT 1; DROP TABLE trips",
	} {
		_, _, err := r.Run(ctx, sql)
		require.Error(t, err, "statement %q must be rejected", sql)
		assert.Equal(t, FailRejected, ClassOf(err))
	}

	// Nothing was written.
	table, _, err := r.Run(ctx, "SELECT COUNT(*) FROM trips")
	require.NoError(t, err)
	assert.Equal(t, int64(testutil.FixtureTripCount), table.Rows[0][0])
}

func TestRun_QueryErrorClass(t *testing.T) {
	db := testutil.OpenFixture(t)
	r := New(db)

	_, _, err := r.Run(context.Background(), "SELECT no_such_column FROM trips")
	require.Error(t, err)
	assert.Equal(t, FailQuery, ClassOf(err))
}

func TestRun_RowCap(t *testing.T) {
	db := testutil.OpenFixture(t)
	r := New(db, WithMaxRows(5))

	_, _, err := r.Run(context.Background(), "SELECT * FROM trips")
	require.Error(t, err)
	assert.Equal(t, FailRowLimit, ClassOf(err))
}

func TestRun_Timeout(t *testing.T) {
	db := testutil.OpenFixture(t)
	r := New(db, WithTimeout(time.Nanosecond))

	_, _, err := r.Run(context.Background(),
		"SELECT COUNT(*) FROM trips a, trips b, trips c, trips d")
	require.Error(t, err)
	assert.Equal(t, FailTimeout, ClassOf(err))
}

func TestRun_ConnectionUsableAfterQueryOnly(t *testing.T) {
	db := testutil.OpenFixture(t)
	r := New(db)
	ctx := context.Background()

	_, _, err := r.Run(ctx, "SELECT 1")
	require.NoError(t, err)

	// query_only must not leak into the pooled connection.
	_, err = db.SQL().ExecContext(ctx,
		"INSERT INTO zones (location_id, zone_name, borough, service_zone) VALUES (900, 'After', 'Queens', 'Boro Zone')")
	require.NoError(t, err)
}

func TestRun_EmptyResult(t *testing.T) {
	db := testutil.OpenFixture(t)
	r := New(db)

	table, _, err := r.Run(context.Background(),
		"SELECT trip_id FROM trips WHERE fare_amount > 1000")
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Equal(t, []string{"trip_id"}, table.Columns)
}
