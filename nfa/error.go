package nfa

import "fmt"

// BuildError reports an internal invariant failure during NFA
// construction: the postfix stream did not reduce to exactly one
// fragment, or a state reference escaped the arena. It always
// indicates a defect in the translator or builder, never bad user
// input; pattern errors are caught at parse time as *syntax.Error.
type BuildError struct {
	Message string
	StateID StateID
}

func (e *BuildError) Error() string {
	if e.StateID != InvalidState {
		return fmt.Sprintf("NFA build error at state %d: %s", e.StateID, e.Message)
	}
	return fmt.Sprintf("NFA build error: %s", e.Message)
}

func buildErr(format string, args ...interface{}) *BuildError {
	return &BuildError{Message: fmt.Sprintf(format, args...), StateID: InvalidState}
}
