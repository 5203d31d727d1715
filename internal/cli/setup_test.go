package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calegray/taxidrill/internal/dataset"
)

// setupDatabase provisions a small practice database through the setup
// command and returns its path.
func setupDatabase(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "taxi.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--trips", "300", "--seed", "42"})

	require.NoError(t, cmd.Execute(), "setup output: %s", buf.String())
	return dbPath
}

func TestSetupMissingDatabaseFlag(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Contains(t, err.Error(), "db")
}

func TestSetupCreatesDatabase(t *testing.T) {
	dbPath := setupDatabase(t)

	db, err := dataset.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	stats, err := db.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(300), stats.Trips)
	assert.Greater(t, stats.Zones, int64(0))
}

func TestSetupJSONOutput(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "taxi.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--trips", "50"})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(50), data["trips"])
}

func TestSetupInvalidStartDate(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "x.db"), "--start", "January 1st"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --start date")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSetupImportsZonesCSV(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "taxi.db")
	csvPath := filepath.Join(tmpDir, "zones.csv")

	csv := "LocationID,Borough,Zone,service_zone\n" +
		"1,EWR,Newark Airport,EWR\n" +
		"4,Manhattan,Alphabet City,Yellow Zone\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--trips", "20", "--zones", csvPath})

	require.NoError(t, cmd.Execute())

	db, err := dataset.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	stats, err := db.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Zones)
}

func TestSetupHelpText(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSetupCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "practice SQLite database")
	assert.Contains(t, output, "--seed")
	assert.Contains(t, output, "--trips")
}
