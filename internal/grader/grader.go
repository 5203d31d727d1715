package grader

import (
	"context"
	"fmt"
	"time"

	"github.com/calegray/taxidrill/internal/compare"
	"github.com/calegray/taxidrill/internal/runner"
	"github.com/calegray/taxidrill/internal/workbook"
)

// Grader grades learner SQL against workbook exercises.
type Grader struct {
	run *runner.Runner
	ids AttemptIDGenerator
}

// Option configures a Grader.
type Option func(*Grader)

// WithAttemptIDs overrides the attempt id generator. Tests use a
// FixedGenerator to keep report output deterministic.
func WithAttemptIDs(gen AttemptIDGenerator) Option {
	return func(g *Grader) { g.ids = gen }
}

// New creates a Grader over a runner.
func New(run *runner.Runner, opts ...Option) *Grader {
	g := &Grader{
		run: run,
		ids: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Grade runs the learner's SQL and the exercise reference and compares
// the results. Learner-side failures become a Report verdict; a failing
// reference is an error, because the workbook itself is broken.
func (g *Grader) Grade(ctx context.Context, ex *workbook.Exercise, learnerSQL string) (*Report, error) {
	started := time.Now()
	report := &Report{
		AttemptID: g.ids.Generate(),
		Exercise:  ex.Name,
	}
	defer func() { report.Elapsed = time.Since(started) }()

	got, stmt, err := g.run.Run(ctx, learnerSQL)
	if err != nil {
		switch runner.ClassOf(err) {
		case runner.FailRejected:
			report.Verdict = VerdictRejected
		default:
			report.Verdict = VerdictSQLError
		}
		report.Message = err.Error()
		return report, nil
	}

	want, _, err := g.run.Run(ctx, ex.Reference)
	if err != nil {
		return nil, fmt.Errorf("exercise %s: reference query failed: %w", ex.Name, err)
	}

	// Order matters when the exercise pins it; otherwise a learner who
	// wrote ORDER BY made row order part of their answer.
	orderSensitive := stmt.HasOrderBy
	if ex.OrderMatters != nil {
		orderSensitive = *ex.OrderMatters
	}

	report.Rows = len(got.Rows)
	report.OrderChecked = orderSensitive

	diff := compare.Compare(want, got, compare.Options{
		OrderSensitive:    orderSensitive,
		Tolerance:         ex.Tolerance,
		IgnoreColumnNames: ex.IgnoreColumnNames,
	})
	if diff != nil {
		report.Verdict = VerdictWrongResults
		report.Diff = diff
		return report, nil
	}

	report.Verdict = VerdictPass
	return report, nil
}

// GradeAll grades one answer per exercise. Exercises without an answer
// in the map are skipped; exercises are graded in workbook order.
func (g *Grader) GradeAll(ctx context.Context, wb *workbook.Workbook, answers map[string]string) (*Summary, error) {
	summary := &Summary{}
	for _, ex := range wb.Exercises {
		sqlText, ok := answers[ex.Name]
		if !ok {
			continue
		}
		report, err := g.Grade(ctx, ex, sqlText)
		if err != nil {
			return nil, err
		}
		summary.Reports = append(summary.Reports, report)
		summary.Total++
		if report.Passed() {
			summary.Passed++
		}
	}
	return summary, nil
}
