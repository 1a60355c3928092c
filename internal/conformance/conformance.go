// Package conformance runs a harness plan under go test.
//
// Every case becomes a subtest named by its case ID, so a single fixture
// can be rerun with
//
//	go test ./internal/conformance -run 'TestConformance/output/integration/add$'
//
// Running with -update rewrites the expectation files of output cases from
// the subject's actual output instead of comparing against them.
package conformance

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/kerkeslager/fur-infinity/internal/fixture"
	"github.com/kerkeslager/fur-infinity/internal/harness"
	"github.com/kerkeslager/fur-infinity/internal/subject"
)

// updating reports whether -update was given. The flag is registered by
// goldie.
func updating() bool {
	f := flag.Lookup("update")
	return f != nil && f.Value.String() == "true"
}

// RunTests runs every case of plan as a subtest of t.
func RunTests(t *testing.T, plan *harness.Plan) {
	t.Helper()

	if plan.Len() == 0 {
		t.Log("no conformance cases registered")
		return
	}

	update := updating()
	for _, c := range plan.Cases {
		t.Run(c.ID, func(t *testing.T) {
			if update && c.Kind == harness.KindOutput {
				record(t, plan.Root, c)
				return
			}
			check(t, c.Run(context.Background()))
		})
	}
}

func check(t *testing.T, o *harness.Outcome) {
	t.Helper()

	switch {
	case o.Status == harness.StatusError:
		t.Fatalf("%s: %v", o.Fixture.Path, o.Err)
	case o.Kind == harness.KindLeak:
		assert.Truef(t, o.Leak.Clean(), "%s: %s", o.Fixture.Path, o.Leak)
	default:
		for _, m := range o.Mismatches {
			msg := []any{"%s of %s (%s)", m.Stream, m.Fixture, m.Path}
			if hint := m.Hint(); hint != "" {
				msg = []any{"%s of %s (%s): %s", m.Stream, m.Fixture, m.Path, hint}
			}
			assert.Equal(t, string(m.Expected), string(m.Actual), msg...)
		}
	}
}

// record rewrites the expectation files of one output case. A stream with
// no output has its file removed, since an absent file already means
// "expect nothing".
func record(t *testing.T, root string, c *harness.Case) {
	t.Helper()

	o := c.Run(context.Background())
	if o.Status == harness.StatusError {
		t.Fatalf("%s: %v", c.Fixture.Path, o.Err)
	}

	dir := filepath.Join(root, filepath.FromSlash(c.Fixture.Dir()))
	for _, s := range fixture.Streams {
		data := stream(o.Result, s)
		if len(data) == 0 {
			err := os.Remove(filepath.Join(dir, c.Fixture.Name+"."+s.Suffix()))
			if err != nil && !os.IsNotExist(err) {
				t.Fatalf("remove %s expectation: %v", s, err)
			}
			continue
		}

		g := goldie.New(t,
			goldie.WithFixtureDir(dir),
			goldie.WithNameSuffix("."+s.Suffix()),
		)
		if err := g.Update(t, c.Fixture.Name, data); err != nil {
			t.Fatalf("update %s expectation: %v", s, err)
		}
	}
	t.Logf("recorded %s", c.Fixture.Path)
}

func stream(res *subject.ProcessResult, s fixture.Stream) []byte {
	if s == fixture.Stderr {
		return res.Stderr
	}
	return res.Stdout
}
