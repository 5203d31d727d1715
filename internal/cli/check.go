package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calegray/taxidrill/internal/workbook"
)

// CheckResult holds workbook validation results.
type CheckResult struct {
	Valid  bool                       `json:"valid"`
	Errors []workbook.ValidationError `json:"errors,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <workbook-dir>",
		Short: "Validate a workbook directory",
		Long: `Validate every exercise file in a workbook directory.

Each file is checked against the exercise schema (types, ranges,
unknown fields, with positions) and its reference SQL is screened the
same way grade screens answers. Cross-file checks catch duplicate
exercise names and numbers.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	errs, err := workbook.ValidateDir(dir)
	if err != nil {
		_ = formatter.Error(ErrCodeWorkbook, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to scan workbook", err)
	}

	if len(errs) == 0 {
		if opts.Format == "json" {
			return formatter.Success(CheckResult{Valid: true})
		}
		fmt.Fprintln(formatter.Writer, "All exercise files valid")
		return nil
	}

	if opts.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   CheckResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    ErrCodeWorkbook,
				Message: errs[0].Message,
			},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("workbook invalid: %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "Workbook invalid")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
	}
	return NewExitError(ExitFailure, fmt.Sprintf("workbook invalid: %d error(s)", len(errs)))
}
