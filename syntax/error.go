package syntax

import "fmt"

// ErrorCode classifies pattern errors. Every code is user-correctable
// except ErrInternal, which indicates a defect in the translator
// itself and should never be reachable from Parse-validated input.
type ErrorCode string

const (
	ErrUnterminatedGroup  ErrorCode = "missing closing )"
	ErrUnexpectedParen    ErrorCode = "unexpected )"
	ErrUnterminatedClass  ErrorCode = "missing closing ]"
	ErrEmptyClass         ErrorCode = "empty character class"
	ErrInvalidClassRange  ErrorCode = "invalid character class range"
	ErrInvalidEscape      ErrorCode = "invalid escape sequence"
	ErrTrailingBackslash  ErrorCode = "trailing backslash at end of pattern"
	ErrMissingRepeatArg   ErrorCode = "missing argument to repetition operator"
	ErrEmptyAlternate     ErrorCode = "empty alternation branch"
	ErrEmptyGroup         ErrorCode = "empty group"
	ErrInternal           ErrorCode = "internal translator error"
)

// Error is a pattern syntax error. It reports which rule was violated
// and the byte offset in the pattern where the violation was detected.
type Error struct {
	Code    ErrorCode
	Pattern string
	Offset  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("error parsing pattern %q at offset %d: %s", e.Pattern, e.Offset, string(e.Code))
}

// errAt builds an Error for the given pattern offset.
func errAt(code ErrorCode, pattern string, offset int) *Error {
	return &Error{Code: code, Pattern: pattern, Offset: offset}
}
