package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/kerkeslager/fur-infinity/internal/harness"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	Root          string // directory holding the fixtures and subject executables
	Config        string // explicit configuration file; default <root>/furtest.yaml
	Filter        string // glob over case IDs or fixture names
	SkipLeakCheck bool
	Database      string // run history database; empty disables history

	// harnessOptions are appended after the options derived from flags.
	harnessOptions []harness.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the furtest command. Running it without a
// subcommand runs the conformance suite.
//
// extra is applied to every harness the commands create; tests use it to
// substitute fake subjects, clocks and run IDs.
func NewRootCommand(extra ...harness.Option) *cobra.Command {
	opts := &RootOptions{harnessOptions: extra}

	cmd := &cobra.Command{
		Use:   "furtest",
		Short: "Golden-output conformance harness for the fur toolchain",
		Long: `Run the fur toolchain against its fixtures and compare every byte of
stdout and stderr with the recorded expectations.

Without a furtest.yaml the layout is detected: test/integration and
test/scanner when either exists (run through ./fur and ./scanner_test),
else test/ (run through ./fur). Program fixtures are also rerun under
valgrind to check for leaks.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Root, "root", ".", "directory holding the fixtures and subject executables")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "configuration file (default <root>/furtest.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.Filter, "filter", "", "only cases whose ID or fixture name matches this glob")
	cmd.PersistentFlags().BoolVar(&opts.SkipLeakCheck, "skip-leak-check", false, "do not register leak cases")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "SQLite database recording run history")

	configureRun(cmd, opts)

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
