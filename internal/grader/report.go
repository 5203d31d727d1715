package grader

import (
	"fmt"
	"strings"
	"time"

	"github.com/calegray/taxidrill/internal/compare"
)

// Verdict is the outcome of grading one attempt.
type Verdict string

const (
	// VerdictPass: the learner's result matches the reference.
	VerdictPass Verdict = "pass"
	// VerdictWrongResults: the query ran but its result diverges.
	VerdictWrongResults Verdict = "wrong_results"
	// VerdictRejected: the statement failed the read-only screen.
	VerdictRejected Verdict = "rejected"
	// VerdictSQLError: SQLite rejected or aborted the statement
	// (syntax errors, unknown columns, timeout, row cap).
	VerdictSQLError Verdict = "sql_error"
)

// Report is the graded outcome of one attempt at one exercise.
type Report struct {
	// AttemptID identifies this grading run.
	AttemptID string `json:"attempt_id"`

	// Exercise is the exercise name the attempt was graded against.
	Exercise string `json:"exercise"`

	Verdict Verdict `json:"verdict"`

	// Message explains rejected and sql_error verdicts.
	Message string `json:"message,omitempty"`

	// Diff names the first divergence for wrong_results verdicts.
	Diff *compare.Diff `json:"diff,omitempty"`

	// Rows is the learner's result row count, when the query ran.
	Rows int `json:"rows,omitempty"`

	// OrderChecked records whether row order was part of the comparison.
	OrderChecked bool `json:"order_checked"`

	// Elapsed is the wall time spent grading the attempt. Excluded from
	// JSON so report snapshots stay byte-stable.
	Elapsed time.Duration `json:"-"`
}

// Passed reports whether the attempt matched the reference.
func (r *Report) Passed() bool {
	return r.Verdict == VerdictPass
}

// String renders the report for terminal output.
func (r *Report) String() string {
	var buf strings.Builder
	switch r.Verdict {
	case VerdictPass:
		fmt.Fprintf(&buf, "PASS %s (%d rows in %s)", r.Exercise, r.Rows, r.Elapsed.Round(time.Millisecond))
	case VerdictWrongResults:
		fmt.Fprintf(&buf, "FAIL %s: wrong results\n%s", r.Exercise, r.Diff.String())
	case VerdictRejected:
		fmt.Fprintf(&buf, "FAIL %s: query rejected\n  %s", r.Exercise, r.Message)
	case VerdictSQLError:
		fmt.Fprintf(&buf, "FAIL %s: query failed\n  %s", r.Exercise, r.Message)
	}
	return buf.String()
}

// Summary aggregates the reports of a multi-exercise grading run.
type Summary struct {
	Reports []*Report `json:"reports"`
	Passed  int       `json:"passed"`
	Total   int       `json:"total"`
}

// String renders the summary footer.
func (s *Summary) String() string {
	return fmt.Sprintf("%d/%d passed", s.Passed, s.Total)
}
