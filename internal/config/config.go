// Package config decides which fixture suites a run covers.
//
// A root may carry a furtest.yaml describing its suites explicitly:
//
//	suites:
//	  - name: integration
//	    dir: test/integration
//	    category: program
//	    executable: ./fur
//	    leak_check: true
//	  - name: scanner
//	    dir: test/scanner
//	    category: scanner
//	    executable: ./scanner_test
//	instrumentation:
//	  command: valgrind
//	timeout: 30s
//
// Without one, the layout is detected from the directories present (see
// Detect).
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/kerkeslager/fur-infinity/internal/fixture"
	"github.com/kerkeslager/fur-infinity/internal/harness"
	"github.com/kerkeslager/fur-infinity/internal/leak"
)

// FileName is the configuration file looked up at the harness root.
const FileName = "furtest.yaml"

//go:embed schema.cue
var schemaSource string

// Config is the decoded form of furtest.yaml.
type Config struct {
	Suites          []SuiteConfig          `yaml:"suites"`
	Instrumentation *InstrumentationConfig `yaml:"instrumentation,omitempty"`
	Timeout         string                 `yaml:"timeout,omitempty"`

	// Source is the file the configuration was read from, or "" when it was
	// detected from the directory layout.
	Source string `yaml:"-"`
}

// SuiteConfig describes one fixture directory.
type SuiteConfig struct {
	Name       string `yaml:"name"`
	Dir        string `yaml:"dir"`
	Category   string `yaml:"category"`
	Executable string `yaml:"executable"`

	// LeakCheck defaults to true for program suites and false for scanner
	// suites.
	LeakCheck *bool `yaml:"leak_check,omitempty"`
}

// InstrumentationConfig overrides the leak-check wrapper.
type InstrumentationConfig struct {
	Command string   `yaml:"command"`
	Options []string `yaml:"options,omitempty"`
}

// ValidationError reports a configuration that is malformed or violates the
// schema.
type ValidationError struct {
	Source string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration %s: %v", e.Source, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes and validates configuration data. source names the data in
// error messages.
func Parse(source string, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Source: source, Err: errors.New("file is empty")}
		}
		return nil, &ValidationError{Source: source, Err: fmt.Errorf("failed to parse YAML: %w", err)}
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Source: source, Err: fmt.Errorf("failed to parse YAML: %w", err)}
	}
	if err := checkSchema(raw); err != nil {
		return nil, &ValidationError{Source: source, Err: err}
	}

	cfg.Source = source
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func checkSchema(raw map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	v := schema.Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// Validate checks the rules the schema cannot express.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return &ValidationError{Source: c.Source, Err: fmt.Errorf(format, args...)}
	}

	if len(c.Suites) == 0 {
		return invalid("at least one suite is required")
	}
	for i, s := range c.Suites {
		if s.Name == "" {
			return invalid("suites[%d]: name is required", i)
		}
		if s.Dir == "" {
			return invalid("suites[%d]: dir is required", i)
		}
		if s.Executable == "" {
			return invalid("suites[%d]: executable is required", i)
		}
		if _, err := fixture.ParseCategory(s.Category); err != nil {
			return invalid("suites[%d]: %w", i, err)
		}
	}
	if c.Instrumentation != nil && c.Instrumentation.Command == "" {
		return invalid("instrumentation: command is required")
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return invalid("timeout: %w", err)
	}
	return nil
}

// TimeoutDuration returns the per-invocation timeout, zero when unset.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative, got %s", c.Timeout)
	}
	return d, nil
}

// HarnessSuites converts the suite definitions for harness.Build.
func (c *Config) HarnessSuites() ([]harness.Suite, error) {
	suites := make([]harness.Suite, 0, len(c.Suites))
	for _, s := range c.Suites {
		cat, err := fixture.ParseCategory(s.Category)
		if err != nil {
			return nil, &ValidationError{Source: c.Source, Err: fmt.Errorf("suite %q: %w", s.Name, err)}
		}
		leakCheck := cat == fixture.IntegrationProgram
		if s.LeakCheck != nil {
			leakCheck = *s.LeakCheck
		}
		suites = append(suites, harness.Suite{
			Name:       s.Name,
			Dir:        s.Dir,
			Category:   cat,
			Executable: s.Executable,
			LeakCheck:  leakCheck,
		})
	}
	return suites, nil
}

// LeakInstrumentation returns the configured wrapper, falling back to the
// default valgrind command line for anything left unset.
func (c *Config) LeakInstrumentation() leak.Instrumentation {
	in := leak.DefaultInstrumentation()
	if c.Instrumentation == nil {
		return in
	}
	in.Command = c.Instrumentation.Command
	if len(c.Instrumentation.Options) > 0 {
		in.Options = c.Instrumentation.Options
	}
	return in
}

// Resolve returns the configuration for a root directory: the file at path
// when one is given, else furtest.yaml at the root when present, else the
// detected layout.
func Resolve(root, path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	candidate := filepath.Join(root, FileName)
	if _, err := os.Stat(candidate); err == nil {
		return Load(candidate)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	return Detect(os.DirFS(root)), nil
}
