package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFile_Valid(t *testing.T) {
	path := writeExercise(t, t.TempDir(), "ex.yaml", validExercise)
	assert.Empty(t, ValidateFile(path))
}

func TestValidateFile_Violations(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"wrong type for number", "name: ex\nnumber: three\ntitle: t\nprompt: p\nreference: SELECT 1\n"},
		{"zero number", "name: ex\nnumber: 0\ntitle: t\nprompt: p\nreference: SELECT 1\n"},
		{"unknown field", "name: ex\nnumber: 1\ntitle: t\nprompt: p\nreference: SELECT 1\nbogus: yes\n"},
		{"bad name slug", "name: Not A Slug\nnumber: 1\ntitle: t\nprompt: p\nreference: SELECT 1\n"},
		{"zero tolerance", "name: ex\nnumber: 1\ntitle: t\nprompt: p\nreference: SELECT 1\ntolerance: 0\n"},
		{"missing prompt", "name: ex\nnumber: 1\ntitle: t\nreference: SELECT 1\n"},
		{"writing reference", "name: ex\nnumber: 1\ntitle: t\nprompt: p\nreference: DROP TABLE trips\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeExercise(t, t.TempDir(), "ex.yaml", tc.content)
			errs := ValidateFile(path)
			require.NotEmpty(t, errs)
			assert.Equal(t, path, errs[0].File)
			assert.NotEmpty(t, errs[0].Message)
		})
	}
}

func TestValidateFile_EmptyFile(t *testing.T) {
	path := writeExercise(t, t.TempDir(), "ex.yaml", "")
	errs := ValidateFile(path)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "empty exercise file")
}

func TestValidateFile_NotYAML(t *testing.T) {
	path := writeExercise(t, t.TempDir(), "ex.yaml", "{{{not yaml")
	errs := ValidateFile(path)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "failed to parse YAML")
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writeExercise(t, dir, "good.yaml", validExercise)
	writeExercise(t, dir, "bad.yaml", "name: ex\nnumber: 0\ntitle: t\nprompt: p\nreference: SELECT 1\n")

	errs, err := ValidateDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	for _, e := range errs {
		assert.Contains(t, e.File, "bad.yaml")
	}
}

func TestValidateDir_DuplicateNumbers(t *testing.T) {
	dir := t.TempDir()
	writeExercise(t, dir, "a.yaml", "name: one\nnumber: 1\ntitle: t\nprompt: p\nreference: SELECT 1\n")
	writeExercise(t, dir, "b.yaml", "name: other\nnumber: 1\ntitle: t\nprompt: p\nreference: SELECT 2\n")

	errs, err := ValidateDir(dir)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "share number 1")
}

func TestValidateDir_Empty(t *testing.T) {
	_, err := ValidateDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no exercise files")
}

// Every shipped exercise file must pass the same validation the check
// command applies to user workbooks.
func TestValidateEmbeddedExercises(t *testing.T) {
	entries, err := embeddedFS.ReadDir("exercises")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	dir := t.TempDir()
	for _, entry := range entries {
		data, err := embeddedFS.ReadFile("exercises/" + entry.Name())
		require.NoError(t, err)
		writeExercise(t, dir, entry.Name(), string(data))
	}

	errs, err := ValidateDir(dir)
	require.NoError(t, err)
	assert.Empty(t, errs)
}
