package oracle

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/unicode/norm"

	"github.com/kerkeslager/fur-infinity/internal/fixture"
)

// Mismatch describes one stream whose bytes differ from its expectation.
type Mismatch struct {
	Fixture  string         // fixture path
	Stream   fixture.Stream // which stream differed
	Path     string         // expectation file (may not exist)
	Expected []byte
	Actual   []byte
}

// Error implements the error interface.
func (m *Mismatch) Error() string {
	return fmt.Sprintf("%s mismatch for %s: expected %d bytes (%s), got %d bytes, first difference at byte %d",
		m.Stream, m.Fixture, len(m.Expected), m.Path, len(m.Actual), m.Offset())
}

// Offset returns the index of the first differing byte.
func (m *Mismatch) Offset() int {
	n := min(len(m.Expected), len(m.Actual))
	for i := 0; i < n; i++ {
		if m.Expected[i] != m.Actual[i] {
			return i
		}
	}
	return n
}

// Diff renders a line-oriented diff of expected (-) against actual (+).
// Lines keep their terminators so newline differences stay visible.
func (m *Mismatch) Diff() string {
	return cmp.Diff(splitLines(m.Expected), splitLines(m.Actual))
}

func splitLines(b []byte) []string {
	if len(b) == 0 {
		return []string{}
	}
	return strings.SplitAfter(string(b), "\n")
}

// Hint names a common cause of the mismatch, or returns "".
func (m *Mismatch) Hint() string {
	exp, act := m.Expected, m.Actual

	switch {
	case len(exp) == 0:
		return fmt.Sprintf("expected no %s output; record it in %s if it is intended", m.Stream, m.Path)
	case len(act) == 0:
		return fmt.Sprintf("subject produced no %s output", m.Stream)
	case bytes.Equal(bytes.TrimRight(exp, "\n"), bytes.TrimRight(act, "\n")):
		return "outputs differ only in trailing newlines"
	case bytes.Equal(crlf(exp), crlf(act)):
		return "outputs differ only in line endings"
	case bytes.Equal(norm.NFC.Bytes(exp), norm.NFC.Bytes(act)):
		return "outputs are canonically equivalent Unicode in different normalization forms"
	}
	return ""
}

func crlf(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}
