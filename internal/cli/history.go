package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kerkeslager/fur-infinity/internal/harness"
	"github.com/kerkeslager/fur-infinity/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
	RunID string // show failures of this run instead of listing runs
	Last  bool   // show failures of the most recent run
}

// FailureReport is the JSON form of one run's failures.
type FailureReport struct {
	Run      history.Run       `json:"run"`
	Failures []history.Failure `json:"failures"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `Show runs recorded with --db, most recent first, or the cases that did
not pass in one run.

Examples:
  furtest history --db furtest.db
  furtest history --db furtest.db --limit 5 --format json
  furtest history --db furtest.db --last
  furtest history --db furtest.db --run 0190d1e4-6f2a-7c3b-9d1e-2f3a4b5c6d7e`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of runs to show (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show the failures of this run")
	cmd.Flags().BoolVar(&opts.Last, "last", false, "show the failures of the most recent run")
	cmd.MarkFlagsMutuallyExclusive("run", "last")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Database == "" {
		return asCommandExit(f, &commandError{code: ErrCodeDatabase, message: "no database", err: errors.New("--db is required")})
	}

	st, err := history.Open(opts.Database)
	if err != nil {
		return asCommandExit(f, &commandError{code: ErrCodeDatabase, message: "failed to open database", err: err})
	}
	defer st.Close()

	if opts.RunID == "" && !opts.Last {
		runs, err := st.Runs(ctx, opts.Limit)
		if err != nil {
			return asCommandExit(f, &commandError{code: ErrCodeDatabase, message: "failed to list runs", err: err})
		}
		if opts.Format == "json" {
			return f.Success(runs)
		}
		writeRuns(f.Writer, runs)
		return nil
	}

	run, err := findRun(ctx, st, opts.RunID)
	if err != nil {
		return asCommandExit(f, err)
	}
	failures, err := st.Failures(ctx, run.ID)
	if err != nil {
		return asCommandExit(f, &commandError{code: ErrCodeDatabase, message: "failed to read failures", err: err})
	}

	if opts.Format == "json" {
		return f.Success(FailureReport{Run: *run, Failures: failures})
	}
	writeFailures(f.Writer, run, failures)
	return nil
}

// findRun returns the run with the given ID, or the latest run when id is
// empty.
func findRun(ctx context.Context, st *history.Store, id string) (*history.Run, error) {
	if id == "" {
		run, err := st.Latest(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &commandError{code: ErrCodeDatabase, message: "no runs recorded", err: err}
		}
		if err != nil {
			return nil, &commandError{code: ErrCodeDatabase, message: "failed to read latest run", err: err}
		}
		return run, nil
	}

	runs, err := st.Runs(ctx, 0)
	if err != nil {
		return nil, &commandError{code: ErrCodeDatabase, message: "failed to list runs", err: err}
	}
	for i := range runs {
		if runs[i].ID == id {
			return &runs[i], nil
		}
	}
	return nil, &commandError{code: ErrCodeDatabase, message: "unknown run", err: fmt.Errorf("no run %q", id)}
}

func writeRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return
	}
	st := newStyles(w)
	for _, r := range runs {
		mark := st.pass.Render("✓")
		if r.Failed+r.Errored > 0 {
			mark = st.fail.Render("✗")
		}
		fmt.Fprintf(w, "%s %s  %s  %d passed, %d failed, %d errored  %s\n",
			mark, r.ID, r.StartedAt.UTC().Format(time.RFC3339),
			r.Passed, r.Failed, r.Errored,
			st.muted.Render(r.FinishedAt.Sub(r.StartedAt).String()))
	}
}

func writeFailures(w io.Writer, run *history.Run, failures []history.Failure) {
	st := newStyles(w)
	fmt.Fprintf(w, "Run %s (%s)\n", st.bold.Render(run.ID), run.StartedAt.UTC().Format(time.RFC3339))
	if len(failures) == 0 {
		fmt.Fprintln(w, st.pass.Render("✓ All cases passed"))
		return
	}
	for _, fl := range failures {
		mark := st.fail.Render("✗")
		if fl.Status != harness.StatusFail {
			mark = st.errored.Render("!")
		}
		fmt.Fprintf(w, "%s %s\n", mark, fl.CaseID)
		if fl.Message != "" {
			fmt.Fprintf(w, "    %s\n", fl.Message)
		}
	}
}
