package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ListedCase is the JSON form of one registered case.
type ListedCase struct {
	Case    string `json:"case"`
	Kind    string `json:"kind"`
	Suite   string `json:"suite"`
	Fixture string `json:"fixture"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the cases a run would execute",
		Long: `Discover fixtures and print the ID of every registered case without
running any subject.

Examples:
  furtest list
  furtest list --filter 'leak/*/*'
  furtest list --skip-leak-check --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	_, plan, err := loadPlan(opts, newLogger(cmd.ErrOrStderr(), opts.Verbose), 0)
	if err != nil {
		return asCommandExit(f, err)
	}

	if opts.Format == "json" {
		cases := make([]ListedCase, 0, plan.Len())
		for _, c := range plan.Cases {
			cases = append(cases, ListedCase{
				Case:    c.ID,
				Kind:    string(c.Kind),
				Suite:   c.Suite,
				Fixture: c.Fixture.Path,
			})
		}
		return f.Success(cases)
	}

	for _, c := range plan.Cases {
		fmt.Fprintln(f.Writer, c.ID)
	}
	f.VerboseLog("%d cases", plan.Len())
	return nil
}
