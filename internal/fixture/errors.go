package fixture

import "fmt"

// SetupError reports a fixture store that cannot be used at all: a missing
// or unreadable directory, or an unreadable fixture file. It aborts the run
// before any case executes.
type SetupError struct {
	Dir string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("fixture setup %s: %v", e.Dir, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}
