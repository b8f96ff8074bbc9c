package combinator

import "fmt"

// ParseError is the structured error every combinator returns on
// failure: a message and the source position the failure is anchored
// at. Errors are values, never exceptions — they propagate outward
// through Then/Cons/Consume untouched, and Otherwise decides
// which branch's error (if any) survives.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("at %d: %s", e.Pos, e.Message)
}

// NewParseError constructs a ParseError anchored at pos.
func NewParseError(pos int, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// ProgrammerError marks a misuse of the engine itself — an empty
// literal pattern, or a Lazy combinator used before it is Defined.
// These are invariant violations in the grammar's construction, not
// input errors, so they panic immediately instead of returning a value.
type ProgrammerError struct {
	Message string
}

func (e *ProgrammerError) Error() string {
	return "combinator: " + e.Message
}

func panicProgrammerError(format string, args ...any) {
	panic(&ProgrammerError{Message: fmt.Sprintf(format, args...)})
}
