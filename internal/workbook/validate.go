package workbook

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError is one schema violation in an exercise file.
type ValidationError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// ValidateFile checks a single exercise YAML file against the embedded
// CUE schema. Returns all violations found, empty for a valid file.
//
// The CUE pass catches structural problems with positions (wrong types,
// out-of-range numbers, unknown fields); LoadFile's Go-side validation
// additionally screens the reference SQL. The check command runs both.
func ValidateFile(path string) []ValidationError {
	data, err := os.ReadFile(path)
	if err != nil {
		return []ValidationError{{File: path, Message: err.Error()}}
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []ValidationError{{File: path, Message: fmt.Sprintf("failed to parse YAML: %v", err)}}
	}
	if doc == nil {
		return []ValidationError{{File: path, Message: "empty exercise file"}}
	}

	ctx := cuecontext.New()
	schemaVal := ctx.CompileString(schemaCUE)
	if err := schemaVal.Err(); err != nil {
		// Embedded schema is compiled into the binary; failing to parse
		// it is a build defect, not a user error.
		return []ValidationError{{File: path, Message: fmt.Sprintf("internal schema error: %v", err)}}
	}

	schema := schemaVal.LookupPath(cue.ParsePath("#Exercise"))
	if !schema.Exists() {
		return []ValidationError{{File: path, Message: "internal schema error: #Exercise not found"}}
	}

	unified := schema.Unify(ctx.Encode(doc))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var out []ValidationError
		for _, e := range cueerrors.Errors(err) {
			out = append(out, ValidationError{File: path, Message: e.Error()})
		}
		return out
	}

	// Structural checks passed; screen the reference SQL too so check
	// reports everything grade would reject.
	if _, err := LoadFile(path); err != nil {
		return []ValidationError{{File: path, Message: err.Error()}}
	}

	return nil
}

// ValidateDir validates every exercise file under dir and the workbook
// as a whole (duplicate names/numbers).
func ValidateDir(dir string) ([]ValidationError, error) {
	paths, err := FindExerciseFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scan workbook directory: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no exercise files found in %s", dir)
	}

	var all []ValidationError
	for _, path := range paths {
		all = append(all, ValidateFile(path)...)
	}

	// Cross-file checks only make sense once individual files parse.
	if len(all) == 0 {
		if _, err := Load(dir); err != nil {
			all = append(all, ValidationError{File: dir, Message: err.Error()})
		}
	}

	return all, nil
}
