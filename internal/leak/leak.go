// Package leak re-runs fixtures under a memory-instrumentation wrapper and
// checks that the wrapper exits cleanly.
//
// Only the wrapper's exit code is consulted. The wrapped subject's output is
// discarded: this check is about resource hygiene, not output correctness.
package leak

import (
	"context"
	"errors"
	"fmt"

	"github.com/kerkeslager/fur-infinity/internal/fixture"
	"github.com/kerkeslager/fur-infinity/internal/subject"
)

// SentinelExitCode is the exit code the wrapper reserves for errors it
// detected itself, distinct from the subject's own exit codes.
const SentinelExitCode = 42

// Instrumentation is the wrapper command line placed in front of the
// subject executable.
type Instrumentation struct {
	Command string
	Options []string
}

// DefaultInstrumentation returns valgrind memcheck with the option set the
// existing fixtures were recorded against: full leak checking, reachable
// blocks reported, 20-frame stack traces, file-descriptor tracking,
// sentinel exit code and quiet diagnostics.
func DefaultInstrumentation() Instrumentation {
	return Instrumentation{
		Command: "valgrind",
		Options: []string{
			"--tool=memcheck",
			"--leak-check=full",
			"--show-reachable=yes",
			"--num-callers=20",
			"--track-fds=yes",
			fmt.Sprintf("--error-exitcode=%d", SentinelExitCode),
			"-q",
		},
	}
}

// Wrap returns the wrapper's argument list for running executable with args.
func (in Instrumentation) Wrap(executable string, args []string) []string {
	out := make([]string, 0, len(in.Options)+1+len(args))
	out = append(out, in.Options...)
	out = append(out, executable)
	out = append(out, args...)
	return out
}

// Result is the outcome of one instrumented run.
type Result struct {
	ExitCode int
}

// Clean reports whether the wrapper exited 0.
func (r *Result) Clean() bool {
	return r.ExitCode == 0
}

// Flagged reports whether the wrapper exited with the sentinel, meaning it
// detected an error itself rather than the subject failing on its own.
func (r *Result) Flagged() bool {
	return r.ExitCode == SentinelExitCode
}

func (r *Result) String() string {
	switch {
	case r.Clean():
		return "clean"
	case r.Flagged():
		return fmt.Sprintf("instrumentation flagged errors (exit %d)", r.ExitCode)
	case r.ExitCode < 0:
		return "wrapper terminated abnormally"
	default:
		return fmt.Sprintf("wrapper exited %d", r.ExitCode)
	}
}

// Verifier runs fixtures through an instrumentation wrapper.
type Verifier struct {
	// Wrapper invokes Instrumentation.Command. It should discard output.
	Wrapper         subject.Runner
	Instrumentation Instrumentation
}

// NewVerifier returns a Verifier running in through wrapper.
func NewVerifier(wrapper subject.Runner, in Instrumentation) *Verifier {
	return &Verifier{Wrapper: wrapper, Instrumentation: in}
}

// CheckNoLeaks runs f against executable under the wrapper.
//
// A wrapper killed by a signal is a failed result (ExitCode -1), not an
// error. Errors mean the wrapper could not be run at all, or timed out.
func (v *Verifier) CheckNoLeaks(ctx context.Context, f fixture.Fixture, executable string) (*Result, error) {
	res, err := v.Wrapper.Run(ctx, v.Instrumentation.Wrap(executable, f.Arguments()))
	if err != nil {
		var procErr *subject.ProcessError
		if errors.As(err, &procErr) && procErr.Signaled {
			return &Result{ExitCode: -1}, nil
		}
		return nil, fmt.Errorf("leak check %s: %w", f.Path, err)
	}
	return &Result{ExitCode: res.ExitCode}, nil
}
