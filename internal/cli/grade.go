package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calegray/taxidrill/internal/grader"
	"github.com/calegray/taxidrill/internal/runner"
)

// GradeOptions holds flags for the grade command.
type GradeOptions struct {
	*RootOptions
	Database string
	Workbook string
	SQL      string
	File     string
	All      bool
	Answers  string

	// AttemptIDs allows overriding the attempt id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	AttemptIDs grader.AttemptIDGenerator
}

// NewGradeCommand creates the grade command.
func NewGradeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GradeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "grade [exercise]",
		Short: "Grade an answer against the workbook",
		Long: `Grade an answer against an exercise's reference query.

Both queries run against the same database; results match when they
contain the same rows, with row order checked only when the exercise
pins it or the answer uses ORDER BY. Numeric cells compare within the
exercise's tolerance.

With --all, grades every <exercise>.sql file found in --answers.

Example:
  taxidrill grade zone_pickups --db ./taxi.db --file answer.sql
  taxidrill grade count_trips --db ./taxi.db --sql "SELECT COUNT(*) AS trips FROM trips"
  taxidrill grade --all --db ./taxi.db --answers ./my-answers`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.All {
				if len(args) > 0 {
					return NewExitError(ExitCommandError, "--all grades every exercise; drop the exercise argument")
				}
				return runGradeAll(opts, cmd)
			}
			if len(args) != 1 {
				return NewExitError(ExitCommandError, "name the exercise to grade (or use --all)")
			}
			return runGradeOne(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Workbook, "workbook", "", "directory of exercise files (default: built-in workbook)")
	cmd.Flags().StringVar(&opts.SQL, "sql", "", "the answer SQL")
	cmd.Flags().StringVar(&opts.File, "file", "", "read the answer SQL from a file")
	cmd.Flags().BoolVar(&opts.All, "all", false, "grade every answered exercise in --answers")
	cmd.Flags().StringVar(&opts.Answers, "answers", "", "directory of <exercise>.sql answer files (with --all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func (opts *GradeOptions) newGrader(cmd *cobra.Command) (*grader.Grader, func(), error) {
	db, err := openDatabase(opts.Database)
	if err != nil {
		return nil, nil, err
	}

	var gopts []grader.Option
	if opts.AttemptIDs != nil {
		gopts = append(gopts, grader.WithAttemptIDs(opts.AttemptIDs))
	}
	return grader.New(runner.New(db), gopts...), func() { db.Close() }, nil
}

func runGradeOne(opts *GradeOptions, name string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	wb, err := loadWorkbook(opts.Workbook)
	if err != nil {
		_ = formatter.Error(ErrCodeWorkbook, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load workbook", err)
	}
	ex := wb.ByName(name)
	if ex == nil {
		msg := fmt.Sprintf("no exercise named %q (try: taxidrill list)", name)
		_ = formatter.Error(ErrCodeExercise, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	sqlText, err := readAnswer(opts.SQL, opts.File)
	if err != nil {
		_ = formatter.Error(ErrCodeAnswer, err.Error(), nil)
		return WrapExitError(ExitCommandError, "no answer to grade", err)
	}

	g, closeDB, err := opts.newGrader(cmd)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeDB()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report, err := g.Grade(ctx, ex, sqlText)
	if err != nil {
		_ = formatter.Error(ErrCodeWorkbook, err.Error(), nil)
		return WrapExitError(ExitCommandError, "grading failed", err)
	}

	if err := outputReport(formatter, cmd, report); err != nil {
		return err
	}
	if !report.Passed() {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", report.Exercise, report.Verdict))
	}
	return nil
}

func runGradeAll(opts *GradeOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Answers == "" {
		return NewExitError(ExitCommandError, "--all needs --answers pointing at your answer files")
	}

	wb, err := loadWorkbook(opts.Workbook)
	if err != nil {
		_ = formatter.Error(ErrCodeWorkbook, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load workbook", err)
	}

	answers, err := readAnswerDir(opts.Answers)
	if err != nil {
		_ = formatter.Error(ErrCodeAnswer, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read answers", err)
	}
	if len(answers) == 0 {
		msg := fmt.Sprintf("no <exercise>.sql files found in %s", opts.Answers)
		_ = formatter.Error(ErrCodeAnswer, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	g, closeDB, err := opts.newGrader(cmd)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeDB()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	summary, err := g.GradeAll(ctx, wb, answers)
	if err != nil {
		_ = formatter.Error(ErrCodeWorkbook, err.Error(), nil)
		return WrapExitError(ExitCommandError, "grading failed", err)
	}

	if opts.Format == "json" {
		if err := formatter.Success(summary); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, report := range summary.Reports {
			fmt.Fprintln(w, report.String())
		}
		fmt.Fprintf(w, "\n%s\n", summary.String())
	}

	if summary.Passed < summary.Total {
		return NewExitError(ExitFailure, summary.String())
	}
	return nil
}

// outputReport renders one grading report in the configured format.
func outputReport(formatter *OutputFormatter, cmd *cobra.Command, report *grader.Report) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), report.String())
	return err
}

// readAnswer resolves the answer SQL from --sql, --file, or stdin when
// --file is "-".
func readAnswer(sqlText, file string) (string, error) {
	switch {
	case sqlText != "" && file != "":
		return "", fmt.Errorf("pass the answer via --sql or --file, not both")
	case file == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read answer from stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read answer file: %w", err)
		}
		return string(data), nil
	case strings.TrimSpace(sqlText) != "":
		return sqlText, nil
	default:
		return "", fmt.Errorf("no answer given: use --sql or --file")
	}
}

// readAnswerDir maps exercise names to answer SQL from <name>.sql files.
func readAnswerDir(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read answers directory: %w", err)
	}

	answers := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".sql")
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read answer %s: %w", entry.Name(), err)
		}
		answers[name] = string(data)
	}
	return answers, nil
}
