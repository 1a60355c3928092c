package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kerkeslager/fur-infinity/internal/harness"
	"github.com/kerkeslager/fur-infinity/internal/history"
	"github.com/kerkeslager/fur-infinity/internal/metrics"
	"github.com/kerkeslager/fur-infinity/internal/oracle"
)

// RunOptions holds the flags only the suite run uses.
type RunOptions struct {
	*RootOptions
	Update      bool
	Timeout     time.Duration
	MetricsFile string
}

// UpdateResult summarizes an --update run.
type UpdateResult struct {
	Recorded []string `json:"recorded"`
	Errored  []string `json:"errored,omitempty"`
}

func configureRun(cmd *cobra.Command, rootOpts *RootOptions) {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd.Example = `  furtest
  furtest --root ../fur --filter 'output/integration/*'
  furtest --skip-leak-check --format json
  furtest --update --filter add
  furtest --db furtest.db --metrics-file /var/lib/node_exporter/furtest.prom

Exit codes:
  0 - All cases passed
  1 - One or more cases failed or errored
  2 - Setup error (configuration, missing fixture directory, duplicate case)`
	cmd.Args = cobra.NoArgs
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSuite(cmd, opts)
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite expectation files from actual output")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "bound on each subject invocation (default: configured, else none)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics for the run to this file")
}

func runSuite(cmd *cobra.Command, opts *RunOptions) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	h, plan, err := loadPlan(opts.RootOptions, logger, opts.Timeout)
	if err != nil {
		return asCommandExit(f, err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Update {
		return runUpdate(ctx, f, h, plan)
	}

	f.VerboseLog("running %d cases under %s", plan.Len(), h.Root())
	report := h.Execute(ctx, plan)

	if opts.Database != "" {
		if err := recordHistory(ctx, opts.Database, h.Root(), report); err != nil {
			return asCommandExit(f, err)
		}
	}
	if opts.MetricsFile != "" {
		m := metrics.New()
		m.Record(report)
		if err := m.WriteTextfile(opts.MetricsFile); err != nil {
			return asCommandExit(f, &commandError{code: ErrCodeMetrics, message: "failed to write metrics", err: err})
		}
	}

	return outputReport(f, report)
}

func recordHistory(ctx context.Context, path, root string, report *harness.Report) error {
	st, err := history.Open(path)
	if err != nil {
		return &commandError{code: ErrCodeDatabase, message: "failed to open database", err: err}
	}
	defer st.Close()

	if err := st.WriteReport(ctx, root, report); err != nil {
		return &commandError{code: ErrCodeDatabase, message: "failed to record run", err: err}
	}
	return nil
}

func outputReport(f *OutputFormatter, report *harness.Report) error {
	notOK := report.Failed + report.Errored
	if f.Format == "json" {
		result := newRunResult(report)
		if notOK == 0 {
			return f.Success(result)
		}
		if err := f.Fail(ErrCodeTestFailed, fmt.Sprintf("%d case(s) did not pass", notOK), result); err != nil {
			return err
		}
	} else {
		writeReport(f.Writer, report, f.Verbose)
	}

	if notOK > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) did not pass", notOK))
	}
	return nil
}

// runUpdate runs the output cases of plan and records what the subjects
// produced as the new expectations. Leak cases are skipped.
func runUpdate(ctx context.Context, f *OutputFormatter, h *harness.Harness, plan *harness.Plan) error {
	report := h.Execute(ctx, &harness.Plan{Root: plan.Root, Cases: plan.Output()})

	var result UpdateResult
	for _, o := range report.Outcomes {
		if o.Status == harness.StatusError {
			result.Errored = append(result.Errored, o.CaseID)
			f.VerboseLog("not recording %s: %v", o.CaseID, o.Err)
			continue
		}
		if err := oracle.Update(h.Root(), o.Fixture, o.Result); err != nil {
			return asCommandExit(f, &commandError{code: ErrCodeUpdate, message: "failed to update expectations", err: err})
		}
		if o.Status == harness.StatusFail {
			result.Recorded = append(result.Recorded, o.Fixture.Path)
		}
	}

	if f.Format == "json" {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		st := newStyles(f.Writer)
		for _, p := range result.Recorded {
			fmt.Fprintf(f.Writer, "%s %s\n", st.pass.Render("recorded"), p)
		}
		for _, id := range result.Errored {
			fmt.Fprintf(f.Writer, "%s %s\n", st.errored.Render("errored"), id)
		}
		fmt.Fprintf(f.Writer, "Updated %d fixture(s), %d unchanged, %d errored\n",
			len(result.Recorded), report.Passed, len(result.Errored))
	}

	if len(result.Errored) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) errored", len(result.Errored)))
	}
	return nil
}
