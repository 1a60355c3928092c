package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/kerkeslager/fur-infinity/internal/harness"
)

// CaseResult is the JSON form of one outcome.
type CaseResult struct {
	Case       string           `json:"case"`
	Kind       harness.Kind     `json:"kind"`
	Suite      string           `json:"suite"`
	Fixture    string           `json:"fixture"`
	Status     harness.Status   `json:"status"`
	Message    string           `json:"message,omitempty"`
	Mismatches []StreamMismatch `json:"mismatches,omitempty"`
	ExitCode   *int             `json:"exit_code,omitempty"`
	DurationMS int64            `json:"duration_ms"`
}

// StreamMismatch is the JSON form of one differing stream.
type StreamMismatch struct {
	Stream        string `json:"stream"`
	Expectation   string `json:"expectation"`
	ExpectedBytes int    `json:"expected_bytes"`
	ActualBytes   int    `json:"actual_bytes"`
	Offset        int    `json:"first_difference"`
	Hint          string `json:"hint,omitempty"`
}

// RunResult is the JSON form of a report.
type RunResult struct {
	RunID   string       `json:"run_id"`
	Cases   []CaseResult `json:"cases"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
	Errored int          `json:"errored"`
	Total   int          `json:"total"`
}

func newRunResult(r *harness.Report) RunResult {
	out := RunResult{
		RunID:   r.RunID,
		Cases:   make([]CaseResult, 0, len(r.Outcomes)),
		Passed:  r.Passed,
		Failed:  r.Failed,
		Errored: r.Errored,
		Total:   r.Total(),
	}
	for _, o := range r.Outcomes {
		c := CaseResult{
			Case:       o.CaseID,
			Kind:       o.Kind,
			Suite:      o.Suite,
			Fixture:    o.Fixture.Path,
			Status:     o.Status,
			Message:    o.Message(),
			DurationMS: o.Duration.Milliseconds(),
		}
		switch {
		case o.Leak != nil:
			code := o.Leak.ExitCode
			c.ExitCode = &code
		case o.Result != nil:
			code := o.Result.ExitCode
			c.ExitCode = &code
		}
		for _, m := range o.Mismatches {
			c.Mismatches = append(c.Mismatches, StreamMismatch{
				Stream:        m.Stream.String(),
				Expectation:   m.Path,
				ExpectedBytes: len(m.Expected),
				ActualBytes:   len(m.Actual),
				Offset:        m.Offset(),
				Hint:          m.Hint(),
			})
		}
		out.Cases = append(out.Cases, c)
	}
	return out
}

// writeReport renders r as text: one line per case, details under each
// case that did not pass, and a summary line.
func writeReport(w io.Writer, r *harness.Report, verbose bool) {
	st := newStyles(w)

	for _, o := range r.Outcomes {
		switch o.Status {
		case harness.StatusPass:
			if verbose {
				fmt.Fprintf(w, "%s %s %s\n", st.pass.Render("✓"), o.CaseID, st.muted.Render(o.Duration.String()))
			} else {
				fmt.Fprintf(w, "%s %s\n", st.pass.Render("✓"), o.CaseID)
			}
		case harness.StatusFail:
			fmt.Fprintf(w, "%s %s\n", st.fail.Render("✗"), o.CaseID)
			writeFailure(w, st, o, verbose)
		default:
			fmt.Fprintf(w, "%s %s\n", st.errored.Render("!"), o.CaseID)
			fmt.Fprintf(w, "    %v\n", o.Err)
		}
	}

	if len(r.Outcomes) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d errored, %d total\n",
		r.Passed, r.Failed, r.Errored, r.Total())
	if r.OK() {
		fmt.Fprintln(w, st.pass.Render("✓ All cases passed"))
	}
}

func writeFailure(w io.Writer, st styles, o *harness.Outcome, verbose bool) {
	if o.Kind == harness.KindLeak {
		fmt.Fprintf(w, "    %s\n", o.Leak)
		return
	}
	for _, m := range o.Mismatches {
		fmt.Fprintf(w, "    %s\n", m.Error())
		if hint := m.Hint(); hint != "" {
			fmt.Fprintf(w, "    %s %s\n", st.muted.Render("hint:"), hint)
		}
		if verbose {
			for _, line := range strings.Split(strings.TrimRight(m.Diff(), "\n"), "\n") {
				fmt.Fprintf(w, "      %s\n", line)
			}
		}
	}
}
