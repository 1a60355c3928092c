package testutil

import (
	"context"
	"sync"

	"github.com/kerkeslager/fur-infinity/internal/subject"
)

// FakeRunner is a subject.Runner that records every argument list it
// receives and answers from a responder function instead of launching a
// process.
type FakeRunner struct {
	mu      sync.Mutex
	calls   [][]string
	respond func(args []string) (*subject.ProcessResult, error)
}

// NewFakeRunner returns a FakeRunner answering with respond.
// A nil respond produces empty output and exit code 0.
func NewFakeRunner(respond func(args []string) (*subject.ProcessResult, error)) *FakeRunner {
	if respond == nil {
		respond = func([]string) (*subject.ProcessResult, error) {
			return Output("", "", 0), nil
		}
	}
	return &FakeRunner{respond: respond}
}

// Run records args and returns the responder's answer.
func (f *FakeRunner) Run(ctx context.Context, args []string) (*subject.ProcessResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), args...))
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.respond(args)
}

// Calls returns a copy of the recorded argument lists.
func (f *FakeRunner) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Output builds a ProcessResult from string streams.
func Output(stdout, stderr string, exitCode int) *subject.ProcessResult {
	return &subject.ProcessResult{
		Stdout:   []byte(stdout),
		Stderr:   []byte(stderr),
		ExitCode: exitCode,
	}
}

// ByLastArgument answers with the result keyed by the last argument of
// each call (the fixture path, or the scanner source text). Unknown keys
// produce empty output and exit code 0.
func ByLastArgument(results map[string]*subject.ProcessResult) func([]string) (*subject.ProcessResult, error) {
	return func(args []string) (*subject.ProcessResult, error) {
		if len(args) > 0 {
			if r, ok := results[args[len(args)-1]]; ok {
				return r, nil
			}
		}
		return Output("", "", 0), nil
	}
}
