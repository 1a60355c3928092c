package fixture

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"
)

// Fixture is one source input driving one test case.
type Fixture struct {
	Category Category

	// Path is the slash-separated path of the fixture relative to the
	// harness root. Integration subjects receive it verbatim.
	Path string

	// Name is the base file name with the category suffix stripped.
	// It keys the expectation files and names the test case.
	Name string

	// Source is the fixture file content, read once at discovery time.
	Source []byte

	// Digest is the blake3-256 fingerprint of Source, hex encoded.
	Digest string
}

// Dir returns the directory containing the fixture.
func (f Fixture) Dir() string {
	return path.Dir(f.Path)
}

// Arguments returns the argument list handed to the subject executable.
//
// Integration programs are passed by path. Scanner sources are passed by
// content: the scanner subject accepts raw text, not a file reference, so
// the bytes read at discovery time are forwarded without touching the
// file system again.
func (f Fixture) Arguments() []string {
	switch f.Category {
	case ScannerSource:
		return []string{string(f.Source)}
	default:
		return []string{filepath.FromSlash(f.Path)}
	}
}

// Discover lists the fixtures of one category in dir.
//
// Only immediate entries are considered; subdirectories are never walked.
// Entries that are directories, that do not end in the category suffix, or
// that are not regular files are skipped. The result follows directory
// listing order.
//
// A missing or unreadable directory is a *SetupError.
func Discover(fsys fs.FS, dir string, cat Category) ([]Fixture, error) {
	suffix := cat.Suffix()
	if suffix == "" {
		return nil, &SetupError{Dir: dir, Err: fmt.Errorf("unsupported category %v", cat)}
	}

	dir = path.Clean(filepath.ToSlash(dir))
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, &SetupError{Dir: dir, Err: err}
	}

	var fixtures []Fixture
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}

		p := path.Join(dir, entry.Name())
		if !entry.Type().IsRegular() {
			// Symlinks count when they resolve to a regular file.
			info, err := fs.Stat(fsys, p)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}

		name := strings.TrimSuffix(entry.Name(), suffix)
		if name == "" {
			return nil, &SetupError{Dir: dir, Err: fmt.Errorf("fixture %q has an empty name", entry.Name())}
		}

		source, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, &SetupError{Dir: dir, Err: fmt.Errorf("read fixture: %w", err)}
		}

		fixtures = append(fixtures, Fixture{
			Category: cat,
			Path:     p,
			Name:     name,
			Source:   source,
			Digest:   digest(source),
		})
	}

	return fixtures, nil
}

func digest(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
