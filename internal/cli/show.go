package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Workbook string
	Hints    bool
	Answer   bool
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <exercise>",
		Short: "Show one exercise's prompt",
		Long: `Show an exercise's prompt. Hints stay hidden unless --hints is set,
and the reference answer stays hidden unless --answer is set.

Example:
  taxidrill show zone_pickups
  taxidrill show zone_pickups --hints`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Workbook, "workbook", "", "directory of exercise files (default: built-in workbook)")
	cmd.Flags().BoolVar(&opts.Hints, "hints", false, "reveal the exercise's hints")
	cmd.Flags().BoolVar(&opts.Answer, "answer", false, "reveal the reference SQL")

	return cmd
}

// shownExercise is the show command's JSON payload. The reference and
// hints are withheld unless requested.
type shownExercise struct {
	Number    int      `json:"number"`
	Name      string   `json:"name"`
	Title     string   `json:"title"`
	Prompt    string   `json:"prompt"`
	Topics    []string `json:"topics,omitempty"`
	Hints     []string `json:"hints,omitempty"`
	Reference string   `json:"reference,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

func runShow(opts *ShowOptions, name string, cmd *cobra.Command) error {
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

	shown := shownExercise{
		Number: ex.Number,
		Name:   ex.Name,
		Title:  ex.Title,
		Prompt: ex.Prompt,
		Topics: ex.Topics,
	}
	if opts.Hints {
		shown.Hints = ex.Hints
	}
	if opts.Answer {
		shown.Reference = ex.Reference
		shown.Notes = ex.Notes
	}

	if opts.Format == "json" {
		return formatter.Success(shown)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Exercise %d: %s (%s)\n\n", shown.Number, shown.Title, shown.Name)
	fmt.Fprintln(w, strings.TrimRight(shown.Prompt, "\n"))
	if len(shown.Topics) > 0 {
		fmt.Fprintf(w, "\nTopics: %s\n", strings.Join(shown.Topics, ", "))
	}
	if opts.Hints {
		if len(shown.Hints) == 0 {
			fmt.Fprintln(w, "\nNo hints for this one.")
		} else {
			fmt.Fprintln(w, "\nHints:")
			for i, h := range shown.Hints {
				fmt.Fprintf(w, "  %d. %s\n", i+1, h)
			}
		}
	}
	if opts.Answer {
		fmt.Fprintf(w, "\nReference:\n%s\n", strings.TrimRight(shown.Reference, "\n"))
		if shown.Notes != "" {
			fmt.Fprintf(w, "\n%s\n", strings.TrimRight(shown.Notes, "\n"))
		}
	}
	return nil
}
