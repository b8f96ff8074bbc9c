package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lookbusy1344/lc3asm/combinator"
)

// Span is a half-open byte range [Start, End) into the original source,
// reused across lexemes, statements, and diagnostics. It is the same
// type the combinator engine annotates tokens with, so spans flow
// unchanged from AsToken through the lexer and parser.
type Span = combinator.Span

// LineIndex maps byte offsets into source text to 1-based line / 0-based
// column positions via a precomputed line-start table, resolved by
// binary search — the same approach as the reference implementation's
// IndexToPositionConverter, minus its UTF-8 byte-offset table, since
// LC-3 source is restricted to ASCII by the grammar.
type LineIndex struct {
	lineStarts []int
}

// NewLineIndex scans text once and records the byte offset each line
// begins at.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{lineStarts: starts}
}

// Position is a 1-based line, 0-based column pair.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Resolve converts a byte offset into a Position.
func (li *LineIndex) Resolve(offset int) Position {
	idx := sort.Search(len(li.lineStarts), func(i int) bool {
		return li.lineStarts[i] > offset
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return Position{Line: idx + 1, Column: offset - li.lineStarts[idx]}
}

// ErrorKind categorizes a diagnostic by the condition that produced it.
type ErrorKind int

const (
	ErrInvalidLexeme ErrorKind = iota
	ErrUnexpectedToken
	ErrInvalidRegister
	ErrImmediateOutOfRange
	ErrReservedIdentifierAsLabel
	ErrDuplicateLabel
	ErrUndefinedLabel
	ErrOffsetOutOfRange
	ErrAddressOutOfRange
	ErrMissingOrig
	ErrExpectedNewline
	ErrExpectedEndOfFile
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidLexeme:
		return "InvalidLexeme"
	case ErrUnexpectedToken:
		return "UnexpectedToken"
	case ErrInvalidRegister:
		return "InvalidRegister"
	case ErrImmediateOutOfRange:
		return "ImmediateOutOfRange"
	case ErrReservedIdentifierAsLabel:
		return "ReservedIdentifierAsLabel"
	case ErrDuplicateLabel:
		return "DuplicateLabel"
	case ErrUndefinedLabel:
		return "UndefinedLabel"
	case ErrOffsetOutOfRange:
		return "OffsetOutOfRange"
	case ErrAddressOutOfRange:
		return "AddressOutOfRange"
	case ErrMissingOrig:
		return "MissingOrig"
	case ErrExpectedNewline:
		return "ExpectedNewline"
	case ErrExpectedEndOfFile:
		return "ExpectedEndOfFile"
	default:
		return "Unknown"
	}
}

// Error is a plain data diagnostic: a message, a span, and a kind. It
// is always returned as a value, never thrown, matching every
// component boundary in this module.
type Error struct {
	Kind    ErrorKind
	Span    Span
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError constructs an Error anchored at span.
func NewError(kind ErrorKind, span Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// ErrorList accumulates diagnostics from a batch component (the lexer,
// pass 2 of the assembler) that walks its whole input and reports every
// problem instead of stopping at the first.
type ErrorList struct {
	Errors []*Error
}

func (l *ErrorList) Add(e *Error) {
	l.Errors = append(l.Errors, e)
}

func (l *ErrorList) HasErrors() bool {
	return len(l.Errors) > 0
}

func (l *ErrorList) Error() string {
	parts := make([]string, len(l.Errors))
	for i, e := range l.Errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
