package harness

import (
	"fmt"
	"time"

	"github.com/kerkeslager/fur-infinity/internal/fixture"
	"github.com/kerkeslager/fur-infinity/internal/leak"
	"github.com/kerkeslager/fur-infinity/internal/oracle"
	"github.com/kerkeslager/fur-infinity/internal/subject"
)

// Kind distinguishes the two case variants registered per fixture.
type Kind string

const (
	// KindOutput compares the subject's stdout and stderr to the recorded
	// expectations.
	KindOutput Kind = "output"

	// KindLeak reruns the subject under memory instrumentation.
	KindLeak Kind = "leak"
)

// Status is the outcome of one case.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"

	// StatusError means the case could not reach a verdict: the subject did
	// not start, was killed, or timed out, or an expectation file could not
	// be read.
	StatusError Status = "error"
)

// Suite is one fixture directory bound to the executable that consumes it.
type Suite struct {
	Name       string
	Dir        string
	Category   fixture.Category
	Executable string
	LeakCheck  bool
}

// Outcome is the result of running one case.
type Outcome struct {
	CaseID  string          `json:"case"`
	Kind    Kind            `json:"kind"`
	Suite   string          `json:"suite"`
	Fixture fixture.Fixture `json:"-"`
	Status  Status          `json:"status"`

	// Result is the subject output of an output case.
	Result *subject.ProcessResult `json:"-"`

	// Mismatches lists the differing streams of a failed output case.
	Mismatches []*oracle.Mismatch `json:"-"`

	// Leak is the wrapper verdict of a leak case.
	Leak *leak.Result `json:"-"`

	Err      error         `json:"-"`
	Duration time.Duration `json:"duration_ns"`
}

// Passed reports whether the case passed.
func (o *Outcome) Passed() bool {
	return o.Status == StatusPass
}

// Message is a one-line explanation of a non-passing outcome.
func (o *Outcome) Message() string {
	switch o.Status {
	case StatusError:
		return o.Err.Error()
	case StatusFail:
		if o.Kind == KindLeak && o.Leak != nil {
			return o.Leak.String()
		}
		if len(o.Mismatches) == 1 {
			return o.Mismatches[0].Error()
		}
		streams := make([]string, len(o.Mismatches))
		for i, m := range o.Mismatches {
			streams[i] = m.Stream.String()
		}
		return fmt.Sprintf("%s differ from %s", joinAnd(streams), o.Fixture.Name)
	}
	return ""
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	out := items[0]
	for _, it := range items[1 : len(items)-1] {
		out += ", " + it
	}
	return out + " and " + items[len(items)-1]
}

// Report collects the outcomes of one Execute call.
type Report struct {
	RunID      string     `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Outcomes   []*Outcome `json:"outcomes"`
	Passed     int        `json:"passed"`
	Failed     int        `json:"failed"`
	Errored    int        `json:"errored"`
}

// Total is the number of cases that ran.
func (r *Report) Total() int {
	return len(r.Outcomes)
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed == 0 && r.Errored == 0
}

func (r *Report) add(o *Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusPass:
		r.Passed++
	case StatusFail:
		r.Failed++
	default:
		r.Errored++
	}
}
