package subject

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ProcessResult is what one subject invocation produced.
type ProcessResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner invokes an executable with the given arguments and blocks until it
// terminates.
//
// A non-zero exit status is reported through ProcessResult.ExitCode, not as
// an error. Errors are reserved for invocations that did not complete
// normally (see ProcessError).
type Runner interface {
	Run(ctx context.Context, args []string) (*ProcessResult, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, args []string) (*ProcessResult, error)

// Run calls f(ctx, args).
func (f RunnerFunc) Run(ctx context.Context, args []string) (*ProcessResult, error) {
	return f(ctx, args)
}

// ProcessError reports an invocation that did not run to a normal exit:
// the executable could not be started, it was killed by a signal, or it
// exceeded the configured timeout.
type ProcessError struct {
	Path     string
	Reason   string
	Signaled bool
	TimedOut bool
	Err      error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Command runs an executable through os/exec.
type Command struct {
	Path string

	// Dir is the working directory of the child. Relative Path values and
	// relative fixture paths are resolved against it.
	Dir string

	// Timeout bounds a single invocation. Zero means no bound.
	Timeout time.Duration

	// DiscardOutput connects both streams to the null device instead of
	// capturing them.
	DiscardOutput bool

	logger *slog.Logger
}

// Option configures a Command.
type Option func(*Command)

// WithDir sets the working directory of the child process.
func WithDir(dir string) Option {
	return func(c *Command) { c.Dir = dir }
}

// WithTimeout bounds each invocation.
func WithTimeout(d time.Duration) Option {
	return func(c *Command) { c.Timeout = d }
}

// WithDiscardedOutput drops the child's stdout and stderr.
func WithDiscardedOutput() Option {
	return func(c *Command) { c.DiscardOutput = true }
}

// WithLogger sets the logger used for per-invocation debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Command) { c.logger = logger }
}

// NewCommand returns a Command for the executable at path.
func NewCommand(path string, opts ...Option) *Command {
	c := &Command{
		Path:   path,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run starts the executable, waits for it to exit and returns its output.
//
// When the child is killed by a signal the partial result is returned
// together with a *ProcessError whose Signaled field is set, so callers that
// care only about the exit status can still inspect it.
func (c *Command) Run(ctx context.Context, args []string) (*ProcessResult, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Dir = c.Dir
	if c.Timeout > 0 {
		// Grandchildren holding the pipes open must not hang Wait after a kill.
		cmd.WaitDelay = time.Second
	}

	var stdout, stderr bytes.Buffer
	if !c.DiscardOutput {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	start := time.Now()
	err := cmd.Run()

	result := &ProcessResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	c.logger.Debug("subject exited",
		"path", c.Path,
		"args", summarize(args),
		"exit_code", result.ExitCode,
		"stdout_bytes", len(result.Stdout),
		"stderr_bytes", len(result.Stderr),
		"duration", time.Since(start),
	)

	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		reason := "canceled"
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			reason = fmt.Sprintf("timed out after %s", c.Timeout)
		}
		return result, &ProcessError{
			Path:     c.Path,
			Reason:   reason,
			TimedOut: errors.Is(ctxErr, context.DeadlineExceeded),
			Err:      ctxErr,
		}
	}

	if errors.Is(err, exec.ErrWaitDelay) {
		return result, &ProcessError{Path: c.Path, Reason: "output still open after exit", Err: err}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == -1 {
			return result, &ProcessError{
				Path:     c.Path,
				Reason:   "terminated abnormally",
				Signaled: true,
				Err:      err,
			}
		}
		return result, nil
	}

	return nil, &ProcessError{Path: c.Path, Reason: "failed to start", Err: err}
}

// summarize shortens long arguments (scanner sources) for log records.
func summarize(args []string) []string {
	const maxLen = 40
	out := make([]string, len(args))
	for i, a := range args {
		a = strings.ReplaceAll(a, "\n", `\n`)
		if len(a) > maxLen {
			a = a[:maxLen] + "..."
		}
		out[i] = a
	}
	return out
}
