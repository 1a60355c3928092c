package harness

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/kerkeslager/fur-infinity/internal/fixture"
)

// Case is one registered check bound to its fixture.
type Case struct {
	ID      string
	Suite   string
	Kind    Kind
	Fixture fixture.Fixture

	check func(ctx context.Context, o *Outcome)
	now   func() time.Time
}

// Run performs the check once and returns its outcome.
func (c *Case) Run(ctx context.Context) *Outcome {
	o := &Outcome{
		CaseID:  c.ID,
		Kind:    c.Kind,
		Suite:   c.Suite,
		Fixture: c.Fixture,
	}
	start := c.now()
	c.check(ctx, o)
	o.Duration = c.now().Sub(start)
	return o
}

// Plan is the ordered list of cases produced by Build.
type Plan struct {
	// Root is the directory the fixture paths of every case are relative to.
	Root  string
	Cases []*Case
}

// Len returns the number of cases.
func (p *Plan) Len() int {
	return len(p.Cases)
}

// Output returns the output cases.
func (p *Plan) Output() []*Case {
	return p.ofKind(KindOutput)
}

// Leak returns the leak cases.
func (p *Plan) Leak() []*Case {
	return p.ofKind(KindLeak)
}

func (p *Plan) ofKind(k Kind) []*Case {
	var out []*Case
	for _, c := range p.Cases {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Filter returns a plan holding the cases selected by pattern, a path.Match
// glob. Patterns containing a slash are matched against the full case ID
// ("output/*/add"); others against the fixture name alone ("add*").
func (p *Plan) Filter(pattern string) (*Plan, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
	}

	out := &Plan{Root: p.Root}
	for _, c := range p.Cases {
		target := c.Fixture.Name
		if strings.Contains(pattern, "/") {
			target = c.ID
		}
		if ok, _ := path.Match(pattern, target); ok {
			out.Cases = append(out.Cases, c)
		}
	}
	return out, nil
}
