package cli

import (
	"errors"
	"log/slog"
	"time"

	"github.com/kerkeslager/fur-infinity/internal/config"
	"github.com/kerkeslager/fur-infinity/internal/harness"
)

// loadPlan resolves the configuration under opts.Root and builds the
// filtered plan. timeout overrides the configured one when positive.
func loadPlan(opts *RootOptions, logger *slog.Logger, timeout time.Duration) (*harness.Harness, *harness.Plan, error) {
	cfg, err := config.Resolve(opts.Root, opts.Config)
	if err != nil {
		return nil, nil, &commandError{code: ErrCodeConfig, message: "failed to load configuration", err: err}
	}
	if cfg.Source != "" {
		logger.Debug("configuration loaded", "file", cfg.Source)
	} else {
		logger.Debug("layout detected", "suites", len(cfg.Suites))
	}

	suites, err := cfg.HarnessSuites()
	if err != nil {
		return nil, nil, &commandError{code: ErrCodeConfig, message: "failed to load configuration", err: err}
	}
	if opts.SkipLeakCheck {
		for i := range suites {
			suites[i].LeakCheck = false
		}
	}

	if timeout <= 0 {
		// Validated when the configuration was parsed.
		timeout, _ = cfg.TimeoutDuration()
	}

	hopts := []harness.Option{
		harness.WithTimeout(timeout),
		harness.WithInstrumentation(cfg.LeakInstrumentation()),
		harness.WithLogger(logger),
	}
	h := harness.New(opts.Root, append(hopts, opts.harnessOptions...)...)

	plan, err := h.Build(suites)
	if err != nil {
		return nil, nil, &commandError{code: ErrCodeSetup, message: "failed to build plan", err: err}
	}

	if opts.Filter != "" {
		plan, err = plan.Filter(opts.Filter)
		if err != nil {
			return nil, nil, &commandError{code: ErrCodeFilter, message: "invalid filter", err: err}
		}
	}
	return h, plan, nil
}

// commandError is a setup failure that still has to be reported in the
// selected output format.
type commandError struct {
	code    string
	message string
	err     error
}

func (e *commandError) Error() string {
	return e.message + ": " + e.err.Error()
}

func (e *commandError) Unwrap() error {
	return e.err
}

// exit converts err to a command-error exit. JSON output also gets the
// error envelope; in text mode the message is left to the caller of
// Execute, which prints it to stderr.
func (e *commandError) exit(f *OutputFormatter) error {
	if f.Format == "json" {
		if writeErr := f.Error(e.code, e.Error(), nil); writeErr != nil {
			return writeErr
		}
	}
	return WrapExitError(ExitCommandError, e.message, e.err)
}

// asCommandExit reports err through f when it is a commandError.
func asCommandExit(f *OutputFormatter, err error) error {
	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		return cmdErr.exit(f)
	}
	return err
}
