package fixture

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// Stream identifies one of the two captured output streams.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Suffix returns the expectation-file suffix for the stream.
func (s Stream) Suffix() string {
	return s.String() + ".txt"
}

// Streams lists both streams in reporting order.
var Streams = []Stream{Stdout, Stderr}

// Expected holds the exact bytes a fixture must produce.
type Expected struct {
	Stdout []byte
	Stderr []byte
}

// For returns the expected bytes of one stream.
func (e Expected) For(s Stream) []byte {
	if s == Stderr {
		return e.Stderr
	}
	return e.Stdout
}

// ExpectedPath returns the expectation file for a fixture's stream:
// the fixture directory, the derived name, a dot, then "stdout.txt" or
// "stderr.txt". The same rule serves both categories:
//
//	test/add.fur               -> test/add.stdout.txt
//	test/scanner/kw.source.txt -> test/scanner/kw.stdout.txt
func ExpectedPath(f Fixture, s Stream) string {
	return path.Join(f.Dir(), f.Name+"."+s.Suffix())
}

// LoadExpected reads both expectation files of a fixture.
// A missing file yields an empty expectation; any other read failure is
// returned.
func LoadExpected(fsys fs.FS, f Fixture) (Expected, error) {
	var exp Expected
	for _, s := range Streams {
		data, err := fs.ReadFile(fsys, ExpectedPath(f, s))
		if errors.Is(err, fs.ErrNotExist) {
			data = []byte{}
		} else if err != nil {
			return Expected{}, fmt.Errorf("read expected %s for %s: %w", s, f.Path, err)
		}
		if s == Stderr {
			exp.Stderr = data
		} else {
			exp.Stdout = data
		}
	}
	return exp, nil
}
