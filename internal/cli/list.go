package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Workbook string
}

// exerciseSummary is one row of the list command's output.
type exerciseSummary struct {
	Number int      `json:"number"`
	Name   string   `json:"name"`
	Title  string   `json:"title"`
	Topics []string `json:"topics,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workbook exercises",
		Long: `List the exercises in the workbook, in order.

Uses the built-in workbook unless --workbook points at a directory of
exercise YAML files.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Workbook, "workbook", "", "directory of exercise files (default: built-in workbook)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
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

	summaries := make([]exerciseSummary, len(wb.Exercises))
	for i, ex := range wb.Exercises {
		summaries[i] = exerciseSummary{
			Number: ex.Number,
			Name:   ex.Name,
			Title:  ex.Title,
			Topics: ex.Topics,
		}
	}

	if opts.Format == "json" {
		return formatter.Success(summaries)
	}

	w := cmd.OutOrStdout()
	for _, s := range summaries {
		fmt.Fprintf(w, "%2d  %-20s %s", s.Number, s.Name, s.Title)
		if len(s.Topics) > 0 {
			fmt.Fprintf(w, "  [%s]", strings.Join(s.Topics, ", "))
		}
		fmt.Fprintln(w)
	}
	return nil
}
