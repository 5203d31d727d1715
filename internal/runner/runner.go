// Package runner executes screened read-only SQL against the practice
// database and materializes the rows into a result.Table.
//
// Two layers keep learner SQL from writing:
//  1. sqlcheck screens the statement text before execution
//  2. the connection runs with PRAGMA query_only = ON
//
// Every run is bounded by a timeout and a row cap, so a runaway cross
// join fails fast instead of filling memory.
package runner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/calegray/taxidrill/internal/dataset"
	"github.com/calegray/taxidrill/internal/result"
	"github.com/calegray/taxidrill/internal/sqlcheck"
)

// FailureClass categorizes why a run failed. The grader maps classes to
// learner-facing verdicts.
type FailureClass string

const (
	// FailRejected: the statement did not pass the read-only screen.
	FailRejected FailureClass = "rejected"
	// FailQuery: SQLite reported an error executing the statement.
	FailQuery FailureClass = "query_error"
	// FailTimeout: the statement exceeded the run timeout.
	FailTimeout FailureClass = "timeout"
	// FailRowLimit: the statement produced more rows than the cap.
	FailRowLimit FailureClass = "row_limit"
)

// Error is a classified run failure.
type Error struct {
	Class FailureClass
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ClassOf extracts the failure class from an error.
// Returns FailQuery for errors that did not come from the runner.
func ClassOf(err error) FailureClass {
	var runErr *Error
	if errors.As(err, &runErr) {
		return runErr.Class
	}
	return FailQuery
}

// Defaults for run bounds. Workbook queries finish in milliseconds;
// the defaults exist to stop accidental cross joins, not to squeeze
// legitimate answers.
const (
	DefaultTimeout = 10 * time.Second
	DefaultMaxRows = 10000
)

// Runner executes read-only SQL with bounded time and output.
type Runner struct {
	db      *dataset.DB
	timeout time.Duration
	maxRows int
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout overrides the per-run timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// WithMaxRows overrides the row cap.
func WithMaxRows(n int) Option {
	return func(r *Runner) { r.maxRows = n }
}

// New creates a Runner over an open practice database.
func New(db *dataset.DB, opts ...Option) *Runner {
	r := &Runner{
		db:      db,
		timeout: DefaultTimeout,
		maxRows: DefaultMaxRows,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run screens and executes a single read-only statement, returning the
// materialized table and the statement classification (the grader uses
// its HasOrderBy field). Failures are returned as *Error with a class.
func (r *Runner) Run(ctx context.Context, sqlText string) (*result.Table, *sqlcheck.Statement, error) {
	stmt, err := sqlcheck.Check(sqlText)
	if err != nil {
		return nil, nil, &Error{Class: FailRejected, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.db.SQL().Conn(ctx)
	if err != nil {
		return nil, nil, r.classify(ctx, fmt.Errorf("acquire connection: %w", err))
	}
	defer func() {
		// The pool reuses connections; clear query_only so provisioning
		// on the same handle keeps working.
		_, _ = conn.ExecContext(context.Background(), "PRAGMA query_only = OFF")
		conn.Close()
	}()

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, nil, r.classify(ctx, fmt.Errorf("set query_only: %w", err))
	}

	rows, err := conn.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, nil, r.classify(ctx, err)
	}
	defer rows.Close()

	table, err := scanTable(rows, r.maxRows)
	if err != nil {
		return nil, nil, r.classify(ctx, err)
	}

	return table, stmt, nil
}

// classify wraps an execution error with timeout awareness.
func (r *Runner) classify(ctx context.Context, err error) error {
	var runErr *Error
	if errors.As(err, &runErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Class: FailTimeout, Err: fmt.Errorf("query exceeded %v", r.timeout)}
	}
	return &Error{Class: FailQuery, Err: err}
}

// scanTable materializes sql.Rows into a Table, enforcing the row cap.
func scanTable(rows *sql.Rows, maxRows int) (*result.Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}

	table := &result.Table{
		Columns: columns,
		Rows:    [][]any{},
	}

	for rows.Next() {
		if len(table.Rows) >= maxRows {
			return nil, &Error{
				Class: FailRowLimit,
				Err:   fmt.Errorf("result exceeds %d rows", maxRows),
			}
		}

		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(table.Rows)+1, err)
		}

		// The driver may reuse []byte buffers between rows; copy them.
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = append([]byte(nil), b...)
			}
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return table, nil
}
