// Package oracle decides pass or fail for an output case by comparing the
// captured streams against the fixture's expectation files.
//
// Comparison is exact-byte equality on each stream independently. No
// trailing-newline trimming, whitespace folding or encoding normalization
// is ever applied: a toolchain change that alters formatting must surface
// as a failure and an explicit fixture update. The diagnostics attached to
// a Mismatch (Diff, Hint) only explain a failure; they never excuse one.
package oracle

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kerkeslager/fur-infinity/internal/fixture"
	"github.com/kerkeslager/fur-infinity/internal/subject"
)

// Verdict is the outcome of checking one process result.
type Verdict struct {
	Fixture  fixture.Fixture
	Expected fixture.Expected

	// Mismatches holds one entry per differing stream, stdout first.
	// Both streams are always evaluated.
	Mismatches []*Mismatch
}

// Pass reports whether both streams matched.
func (v *Verdict) Pass() bool {
	return len(v.Mismatches) == 0
}

// Mismatch returns the mismatch for stream s, or nil if it matched.
func (v *Verdict) Mismatch(s fixture.Stream) *Mismatch {
	for _, m := range v.Mismatches {
		if m.Stream == s {
			return m
		}
	}
	return nil
}

// Check loads the fixture's expectations from fsys and compares them with
// res. The error is non-nil only when an expectation file exists but cannot
// be read.
func Check(fsys fs.FS, f fixture.Fixture, res *subject.ProcessResult) (*Verdict, error) {
	exp, err := fixture.LoadExpected(fsys, f)
	if err != nil {
		return nil, err
	}
	return Compare(f, exp, res), nil
}

// Compare checks res against already loaded expectations.
func Compare(f fixture.Fixture, exp fixture.Expected, res *subject.ProcessResult) *Verdict {
	v := &Verdict{Fixture: f, Expected: exp}

	for _, s := range fixture.Streams {
		want := exp.For(s)
		got := actual(res, s)
		if bytes.Equal(want, got) {
			continue
		}
		v.Mismatches = append(v.Mismatches, &Mismatch{
			Fixture:  f.Path,
			Stream:   s,
			Path:     fixture.ExpectedPath(f, s),
			Expected: want,
			Actual:   got,
		})
	}

	return v
}

func actual(res *subject.ProcessResult, s fixture.Stream) []byte {
	if res == nil {
		return nil
	}
	if s == fixture.Stderr {
		return res.Stderr
	}
	return res.Stdout
}

// Update rewrites the expectation files of f below root from res.
// A stream with output is written to its expectation file; an empty stream
// removes the file, since absence already means "expect nothing".
func Update(root string, f fixture.Fixture, res *subject.ProcessResult) error {
	for _, s := range fixture.Streams {
		p := filepath.Join(root, filepath.FromSlash(fixture.ExpectedPath(f, s)))
		data := actual(res, s)

		if len(data) == 0 {
			if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remove expected %s: %w", s, err)
			}
			continue
		}

		if err := os.WriteFile(p, data, 0644); err != nil {
			return fmt.Errorf("write expected %s: %w", s, err)
		}
	}
	return nil
}
