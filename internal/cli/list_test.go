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

func TestListEmbeddedWorkbook(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewListCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "first_look")
	assert.Contains(t, output, "count_trips")
	assert.Contains(t, output, "missing_zones")
	assert.Contains(t, output, "zone_cohorts")
}

func TestListJSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewListCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	items, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, items, 16)
}

func TestListCustomWorkbook(t *testing.T) {
	dir := t.TempDir()
	exercise := `
name: only_one
number: 1
title: "The only exercise"
prompt: "p"
reference: "SELECT 1"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "only.yaml"), []byte(exercise), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewListCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--workbook", dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "only_one")
	assert.NotContains(t, buf.String(), "count_trips")
}

func TestListBadWorkbookDir(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewListCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--workbook", filepath.Join(t.TempDir(), "nope")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load workbook")
}
