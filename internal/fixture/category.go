package fixture

import "fmt"

// Category selects how a fixture is discovered and handed to its subject.
type Category int

const (
	// IntegrationProgram fixtures are source files whose path is passed to
	// the toolchain executable.
	IntegrationProgram Category = iota

	// ScannerSource fixtures are text files whose contents are passed as a
	// single argument to the scanner executable.
	ScannerSource
)

// Source suffixes, one per category.
const (
	ProgramSuffix = ".fur"
	ScannerSuffix = ".source.txt"
)

// Suffix returns the file-name suffix that marks a fixture of this category.
func (c Category) Suffix() string {
	switch c {
	case IntegrationProgram:
		return ProgramSuffix
	case ScannerSource:
		return ScannerSuffix
	default:
		return ""
	}
}

func (c Category) String() string {
	switch c {
	case IntegrationProgram:
		return "program"
	case ScannerSource:
		return "scanner"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// ParseCategory maps a configuration name to a Category.
// Both the short names ("program", "scanner") and the long names
// ("integration", "scanner_source") are accepted.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "program", "integration", "integration_program":
		return IntegrationProgram, nil
	case "scanner", "scanner_source":
		return ScannerSource, nil
	default:
		return 0, fmt.Errorf("unknown fixture category %q", s)
	}
}
