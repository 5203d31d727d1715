// Package workbook defines the exercise catalog: YAML exercise files,
// loading and validation, and the embedded default workbook.
//
// # Exercise format
//
// Exercises are YAML files with the following structure:
//
//	name: zone_pickups
//	number: 10
//	title: "Pickups by zone"
//	prompt: |
//	  How many pickups happened in each zone? Show the zone name,
//	  borough, and pickup count.
//	hints:
//	  - "JOIN trips to zones on the pickup location id."
//	topics: [joins, group-by]
//	reference: |
//	  SELECT ...
//	order_matters: false
//	tolerance: 0.01
//
// Unknown fields are rejected at load time (catches typos like
// "hint:" vs "hints:"). The reference SQL must itself pass the
// read-only screen: a workbook that could write to the practice
// database is malformed by definition.
package workbook

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/calegray/taxidrill/internal/sqlcheck"
)

// Exercise is one workbook entry.
type Exercise struct {
	// Name uniquely identifies the exercise (slug, used on the CLI).
	Name string `yaml:"name"`

	// Number orders the exercise within the workbook.
	Number int `yaml:"number"`

	// Title is the short human-readable heading.
	Title string `yaml:"title"`

	// Prompt is the task statement shown to the learner.
	Prompt string `yaml:"prompt"`

	// Hints are revealed on request, in order.
	Hints []string `yaml:"hints,omitempty"`

	// Topics tag the SQL concepts the exercise drills.
	Topics []string `yaml:"topics,omitempty"`

	// Reference is the instructor's answer SQL.
	Reference string `yaml:"reference"`

	// OrderMatters forces order-sensitive comparison when set. When nil,
	// order sensitivity follows the learner's query: a top-level
	// ORDER BY makes their row order part of the answer.
	OrderMatters *bool `yaml:"order_matters,omitempty"`

	// Tolerance overrides the numeric comparison tolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// IgnoreColumnNames relaxes column-name matching for prompts that
	// don't fix aliases.
	IgnoreColumnNames bool `yaml:"ignore_column_names,omitempty"`

	// Notes carry pedagogical commentary (common mistakes, follow-ups).
	Notes string `yaml:"notes,omitempty"`
}

// validName matches exercise slugs.
var validName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Workbook is an ordered exercise collection.
type Workbook struct {
	Exercises []*Exercise
}

// ByName returns the exercise with the given name, or nil.
func (w *Workbook) ByName(name string) *Exercise {
	for _, ex := range w.Exercises {
		if ex.Name == name {
			return ex
		}
	}
	return nil
}

// LoadFile reads and parses a single exercise YAML file.
func LoadFile(path string) (*Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exercise file: %w", err)
	}
	ex, err := parseExercise(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ex, nil
}

// Load reads all exercise files (*.yaml, *.yml) under dir, checks for
// duplicate names and numbers, and returns them ordered by number.
func Load(dir string) (*Workbook, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("workbook directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	paths, err := FindExerciseFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scan workbook directory: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no exercise files found in %s", dir)
	}

	wb := &Workbook{}
	for _, path := range paths {
		ex, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		wb.Exercises = append(wb.Exercises, ex)
	}
	if err := checkDuplicates(wb); err != nil {
		return nil, err
	}

	sort.Slice(wb.Exercises, func(i, j int) bool {
		return wb.Exercises[i].Number < wb.Exercises[j].Number
	})
	return wb, nil
}

// FindExerciseFiles walks dir and returns all YAML file paths, sorted.
func FindExerciseFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// parseExercise decodes one exercise document with strict field checking
// and validates it.
func parseExercise(data []byte) (*Exercise, error) {
	var ex Exercise
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&ex); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateExercise(&ex); err != nil {
		return nil, fmt.Errorf("invalid exercise: %w", err)
	}
	return &ex, nil
}

// validateExercise checks required fields and screens the reference SQL.
func validateExercise(ex *Exercise) error {
	if ex.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validName.MatchString(ex.Name) {
		return fmt.Errorf("name %q must match %s", ex.Name, validName.String())
	}
	if ex.Number <= 0 {
		return fmt.Errorf("number must be positive")
	}
	if ex.Title == "" {
		return fmt.Errorf("title is required")
	}
	if ex.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	if ex.Reference == "" {
		return fmt.Errorf("reference SQL is required")
	}
	if ex.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative")
	}

	if _, err := sqlcheck.Check(ex.Reference); err != nil {
		return fmt.Errorf("reference SQL: %w", err)
	}
	return nil
}

// checkDuplicates rejects workbooks with colliding names or numbers.
func checkDuplicates(wb *Workbook) error {
	names := map[string]bool{}
	numbers := map[int]string{}
	for _, ex := range wb.Exercises {
		if names[ex.Name] {
			return fmt.Errorf("duplicate exercise name %q", ex.Name)
		}
		names[ex.Name] = true
		if prev, ok := numbers[ex.Number]; ok {
			return fmt.Errorf("exercises %q and %q share number %d", prev, ex.Name, ex.Number)
		}
		numbers[ex.Number] = ex.Name
	}
	return nil
}
