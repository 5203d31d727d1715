package workbook

import (
	"embed"
	"fmt"
	"sort"
)

// The default workbook ships inside the binary so a learner can start
// without checking anything out.
//
//go:embed exercises/*.yaml
var embeddedFS embed.FS

// LoadEmbedded returns the built-in workbook.
// The embedded files are validated at build time by the package tests,
// so errors here indicate a broken binary.
func LoadEmbedded() (*Workbook, error) {
	entries, err := embeddedFS.ReadDir("exercises")
	if err != nil {
		return nil, fmt.Errorf("read embedded workbook: %w", err)
	}

	wb := &Workbook{}
	for _, entry := range entries {
		data, err := embeddedFS.ReadFile("exercises/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded exercise %s: %w", entry.Name(), err)
		}
		ex, err := parseExercise(data)
		if err != nil {
			return nil, fmt.Errorf("embedded exercise %s: %w", entry.Name(), err)
		}
		wb.Exercises = append(wb.Exercises, ex)
	}

	if err := checkDuplicates(wb); err != nil {
		return nil, fmt.Errorf("embedded workbook: %w", err)
	}
	sort.Slice(wb.Exercises, func(i, j int) bool {
		return wb.Exercises[i].Number < wb.Exercises[j].Number
	})
	return wb, nil
}
