package harness

import "fmt"

// DuplicateCaseError reports two fixtures that reduce to the same case ID.
type DuplicateCaseError struct {
	ID     string
	First  string
	Second string
}

func (e *DuplicateCaseError) Error() string {
	return fmt.Sprintf("duplicate case %s: %s and %s reduce to the same name", e.ID, e.First, e.Second)
}

// SuiteError reports a suite definition that cannot be built.
type SuiteError struct {
	Suite  string
	Reason string
	Err    error
}

func (e *SuiteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("suite %q: %s: %v", e.Suite, e.Reason, e.Err)
	}
	return fmt.Sprintf("suite %q: %s", e.Suite, e.Reason)
}

func (e *SuiteError) Unwrap() error {
	return e.Err
}
