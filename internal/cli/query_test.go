package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCountsTrips(t *testing.T) {
	dbPath := setupDatabase(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewQueryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "SELECT COUNT(*) AS n FROM trips"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "n")
	assert.Contains(t, output, "300")
	assert.Contains(t, output, "(1 row)")
}

func TestQueryJSONOutput(t *testing.T) {
	dbPath := setupDatabase(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewQueryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "SELECT COUNT(*) AS n FROM trips"})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"n"}, data["columns"])
	assert.Equal(t, []any{[]any{float64(300)}}, data["rows"])
}

func TestQueryFromFile(t *testing.T) {
	dbPath := setupDatabase(t)
	sqlPath := filepath.Join(t.TempDir(), "q.sql")
	require.NoError(t, os.WriteFile(sqlPath, []byte("SELECT COUNT(*) AS zones FROM zones"), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewQueryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--file", sqlPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "zones")
}

func TestQueryRejectsWrites(t *testing.T) {
	dbPath := setupDatabase(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewQueryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "DROP TABLE trips"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeRejected)
}

func TestQuerySQLError(t *testing.T) {
	dbPath := setupDatabase(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewQueryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "SELECT nope FROM trips"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeQuery)
}

func TestQueryRowLimit(t *testing.T) {
	dbPath := setupDatabase(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewQueryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--max-rows", "10", "SELECT * FROM trips"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), ErrCodeRowLimit)
}

func TestQueryMissingDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewQueryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "missing.db"), "SELECT 1"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestQueryNoSQL(t *testing.T) {
	dbPath := setupDatabase(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewQueryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no SQL")
}
