package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calegray/taxidrill/internal/result"
	"github.com/calegray/taxidrill/internal/runner"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Database string
	File     string
	MaxRows  int
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [sql]",
		Short: "Run read-only SQL against the practice database",
		Long: `Run a single read-only SQL statement and print the result table.

The statement must be a SELECT (or WITH, VALUES, EXPLAIN); anything that
could modify the database is rejected before it runs.

Example:
  taxidrill query --db ./taxi.db "SELECT COUNT(*) FROM trips"
  taxidrill query --db ./taxi.db --file answer.sql`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.File, "file", "", "read the SQL from a file instead of the argument")
	cmd.Flags().IntVar(&opts.MaxRows, "max-rows", runner.DefaultMaxRows, "abort queries returning more rows than this")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// queryResult is the query command's JSON payload.
type queryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func runQuery(opts *QueryOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sqlText, err := readSQL(args, opts.File)
	if err != nil {
		_ = formatter.Error(ErrCodeAnswer, err.Error(), nil)
		return WrapExitError(ExitCommandError, "no SQL to run", err)
	}

	db, err := openDatabase(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	run := runner.New(db, runner.WithMaxRows(opts.MaxRows))
	table, _, err := run.Run(ctx, sqlText)
	if err != nil {
		code := errCodeForRun(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "query failed", err)
	}

	table = table.Normalize()
	if opts.Format == "json" {
		return formatter.Success(queryResult{Columns: table.Columns, Rows: table.Rows})
	}
	return result.RenderText(cmd.OutOrStdout(), table)
}

// readSQL resolves the statement text from the argument, --file, or
// stdin when the argument is "-".
func readSQL(args []string, file string) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", fmt.Errorf("pass the SQL as an argument or via --file, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read SQL file: %w", err)
		}
		return string(data), nil
	case len(args) > 0 && args[0] == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read SQL from stdin: %w", err)
		}
		return string(data), nil
	case len(args) > 0 && strings.TrimSpace(args[0]) != "":
		return args[0], nil
	default:
		return "", fmt.Errorf("no SQL given")
	}
}

// errCodeForRun maps a runner failure class to a CLI error code.
func errCodeForRun(err error) string {
	switch runner.ClassOf(err) {
	case runner.FailRejected:
		return ErrCodeRejected
	case runner.FailTimeout:
		return ErrCodeTimeout
	case runner.FailRowLimit:
		return ErrCodeRowLimit
	default:
		return ErrCodeQuery
	}
}
