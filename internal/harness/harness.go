package harness

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kerkeslager/fur-infinity/internal/fixture"
	"github.com/kerkeslager/fur-infinity/internal/leak"
	"github.com/kerkeslager/fur-infinity/internal/oracle"
	"github.com/kerkeslager/fur-infinity/internal/subject"
)

// IDGenerator produces run IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered run IDs.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RunnerFactory returns the Runner used to invoke one subject executable.
type RunnerFactory func(executable string) subject.Runner

// Harness builds and executes conformance plans rooted at one directory.
//
// All fixture and executable paths are relative to the root, and subjects
// run with the root as their working directory.
type Harness struct {
	root    string
	fsys    fs.FS
	timeout time.Duration

	runners         RunnerFactory
	wrapper         subject.Runner
	instrumentation leak.Instrumentation

	now    func() time.Time
	ids    IDGenerator
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithFS replaces the fixture store. The default is os.DirFS(root).
func WithFS(fsys fs.FS) Option {
	return func(h *Harness) { h.fsys = fsys }
}

// WithTimeout bounds every subject and wrapper invocation.
func WithTimeout(d time.Duration) Option {
	return func(h *Harness) { h.timeout = d }
}

// WithRunnerFactory replaces how subject executables are invoked.
func WithRunnerFactory(f RunnerFactory) Option {
	return func(h *Harness) { h.runners = f }
}

// WithInstrumentation replaces the leak-check wrapper command line.
func WithInstrumentation(in leak.Instrumentation) Option {
	return func(h *Harness) { h.instrumentation = in }
}

// WithWrapper replaces the Runner that invokes the instrumentation command.
func WithWrapper(r subject.Runner) Option {
	return func(h *Harness) { h.wrapper = r }
}

// WithClock sets the time source used for report timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(h *Harness) { h.now = now }
}

// WithIDGenerator sets how run IDs are generated.
func WithIDGenerator(g IDGenerator) Option {
	return func(h *Harness) { h.ids = g }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

// New returns a Harness rooted at root.
func New(root string, opts ...Option) *Harness {
	h := &Harness{
		root:            root,
		instrumentation: leak.DefaultInstrumentation(),
		now:             time.Now,
		ids:             UUIDv7Generator{},
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.fsys == nil {
		h.fsys = os.DirFS(root)
	}
	if h.runners == nil {
		h.runners = func(executable string) subject.Runner {
			return subject.NewCommand(executable,
				subject.WithDir(h.root),
				subject.WithTimeout(h.timeout),
				subject.WithLogger(h.logger),
			)
		}
	}
	if h.wrapper == nil {
		h.wrapper = subject.NewCommand(h.instrumentation.Command,
			subject.WithDir(h.root),
			subject.WithTimeout(h.timeout),
			subject.WithDiscardedOutput(),
			subject.WithLogger(h.logger),
		)
	}
	return h
}

// Root returns the directory fixtures and executables are resolved against.
func (h *Harness) Root() string {
	return h.root
}

// FS returns the fixture store.
func (h *Harness) FS() fs.FS {
	return h.fsys
}

// Build discovers the fixtures of every suite and registers their cases.
//
// Build launches no subprocesses. Any discovery error, invalid suite or
// duplicate case ID aborts the build; a partial plan is never returned.
func (h *Harness) Build(suites []Suite) (*Plan, error) {
	plan := &Plan{Root: h.root}
	seen := make(map[string]string)
	verifier := leak.NewVerifier(h.wrapper, h.instrumentation)

	for _, s := range suites {
		if err := validateSuite(s); err != nil {
			return nil, err
		}

		fixtures, err := fixture.Discover(h.fsys, s.Dir, s.Category)
		if err != nil {
			return nil, &SuiteError{Suite: s.Name, Reason: "discovery failed", Err: err}
		}
		h.logger.Debug("discovered fixtures",
			"suite", s.Name,
			"dir", s.Dir,
			"category", s.Category.String(),
			"count", len(fixtures),
		)

		runner := h.runners(s.Executable)
		for _, f := range fixtures {
			kinds := []Kind{KindOutput}
			if s.LeakCheck {
				kinds = append(kinds, KindLeak)
			}
			for _, kind := range kinds {
				c := h.newCase(s, f, kind, runner, verifier)
				if prev, ok := seen[c.ID]; ok {
					return nil, &DuplicateCaseError{ID: c.ID, First: prev, Second: f.Path}
				}
				seen[c.ID] = f.Path
				plan.Cases = append(plan.Cases, c)
			}
		}
	}

	h.logger.Info("plan built", "suites", len(suites), "cases", len(plan.Cases))
	return plan, nil
}

func validateSuite(s Suite) error {
	switch {
	case s.Name == "":
		return &SuiteError{Suite: s.Dir, Reason: "name is required"}
	case s.Dir == "":
		return &SuiteError{Suite: s.Name, Reason: "dir is required"}
	case s.Executable == "":
		return &SuiteError{Suite: s.Name, Reason: "executable is required"}
	}
	return nil
}

// newCase binds one fixture to the procedure that checks it.
func (h *Harness) newCase(s Suite, f fixture.Fixture, kind Kind, runner subject.Runner, verifier *leak.Verifier) *Case {
	c := &Case{
		ID:      fmt.Sprintf("%s/%s/%s", kind, s.Name, f.Name),
		Suite:   s.Name,
		Kind:    kind,
		Fixture: f,
		now:     h.now,
	}
	switch kind {
	case KindOutput:
		c.check = func(ctx context.Context, o *Outcome) {
			h.checkOutput(ctx, runner, f, o)
		}
	case KindLeak:
		c.check = func(ctx context.Context, o *Outcome) {
			h.checkLeak(ctx, verifier, s.Executable, f, o)
		}
	}
	return c
}

func (h *Harness) checkOutput(ctx context.Context, runner subject.Runner, f fixture.Fixture, o *Outcome) {
	res, err := runner.Run(ctx, f.Arguments())
	if err != nil {
		o.Status = StatusError
		o.Err = err
		o.Result = res
		return
	}
	o.Result = res

	verdict, err := oracle.Check(h.fsys, f, res)
	if err != nil {
		o.Status = StatusError
		o.Err = err
		return
	}
	o.Mismatches = verdict.Mismatches
	if verdict.Pass() {
		o.Status = StatusPass
	} else {
		o.Status = StatusFail
	}
}

func (h *Harness) checkLeak(ctx context.Context, v *leak.Verifier, executable string, f fixture.Fixture, o *Outcome) {
	res, err := v.CheckNoLeaks(ctx, f, executable)
	if err != nil {
		o.Status = StatusError
		o.Err = err
		return
	}
	o.Leak = res
	if res.Clean() {
		o.Status = StatusPass
	} else {
		o.Status = StatusFail
	}
}

// Execute runs every case of plan once, in order, and reports the outcomes.
//
// Cases run even after ctx is done; they then end in StatusError, so the
// report always accounts for every case of the plan.
func (h *Harness) Execute(ctx context.Context, plan *Plan) *Report {
	report := &Report{
		RunID:     h.ids.Generate(),
		StartedAt: h.now(),
		Outcomes:  make([]*Outcome, 0, len(plan.Cases)),
	}

	for _, c := range plan.Cases {
		o := c.Run(ctx)
		report.add(o)

		attrs := []any{"case", c.ID, "fixture", c.Fixture.Path, "status", o.Status}
		switch o.Status {
		case StatusPass:
			h.logger.Debug("case passed", attrs...)
		case StatusFail:
			h.logger.Info("case failed", append(attrs, "reason", o.Message())...)
		default:
			h.logger.Warn("case errored", append(attrs, "error", o.Err)...)
		}
	}

	report.FinishedAt = h.now()
	h.logger.Info("run finished",
		"run_id", report.RunID,
		"passed", report.Passed,
		"failed", report.Failed,
		"errored", report.Errored,
	)
	return report
}
