package parser

import (
	"strconv"
	"strings"

	"github.com/lookbusy1344/lc3asm/combinator"
)

// Lexeme is the tagged union the lexer produces: Newline, Word, DotWord,
// Integer, StringLit, CharLit, Comment, or InvalidLexeme.
type Lexeme interface {
	lexeme()
}

// Newline represents one or more consecutive line breaks; Count is the
// number of '\n' characters in the run.
type Newline struct{ Count int }

func (Newline) lexeme() {}

// Word is a bare identifier or mnemonic. Equality and hashing are
// case-insensitive, matching the case-insensitive label/mnemonic rules
// used throughout the grammar.
type Word struct{ Text string }

func (Word) lexeme() {}

// Equal compares two words case-insensitively.
func (w Word) Equal(other Word) bool {
	return strings.EqualFold(w.Text, other.Text)
}

// EqualString compares the word against a plain string case-insensitively.
func (w Word) EqualString(s string) bool {
	return strings.EqualFold(w.Text, s)
}

// DotWord is a directive keyword with its leading '.' stripped.
type DotWord struct{ Text string }

func (DotWord) lexeme() {}

// Integer is a numeric literal: its parsed value and the original
// source text it was parsed from.
type Integer struct {
	Value   int
	Literal string
}

func (Integer) lexeme() {}

// StringLit is a quoted string literal with its quotes stripped.
type StringLit struct{ Text string }

func (StringLit) lexeme() {}

// CharLit is a quoted character literal with its quotes stripped.
type CharLit struct{ Text string }

func (CharLit) lexeme() {}

// Comment is a semicolon comment with its leading ';' stripped.
type Comment struct{ Text string }

func (Comment) lexeme() {}

// InvalidLexeme is an unrecognized run of non-whitespace characters.
type InvalidLexeme struct{ Text string }

func (InvalidLexeme) lexeme() {}

// skip characters never emitted between lexemes.
var skipChars = combinator.Regex(`[,\t ]*`)

// Lexeme patterns, tried in first-match-wins order. The integer pattern
// accepts a leading '-' before the digits, since literals are signed, and
// a hex prefix accepts the full hex digit alphabet rather than only
// decimal digits, since real LC-3 sources write constants like xFFFF and
// xF025 that decimal digits alone can't represent.
var (
	newlinePattern = combinator.RegexGroups(`[\n\r][\s\n\r]*`)
	integerPattern = combinator.RegexGroups(`#-?\d+|[xX]-?[0-9a-fA-F]+`)
	dotWordPattern = combinator.RegexGroups(`\.[^\s,]+`)
	stringPattern  = combinator.RegexGroups(`".*"`)
	charPattern    = combinator.RegexGroups(`'.*'`)
	commentPattern = combinator.RegexGroups(`;[^\n\r]*`)
	wordPattern    = combinator.RegexGroups(`[^\d\s,][^\s,]*`)
	invalidPattern = combinator.RegexGroups(`\S+`)
)

func countNewlines(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
		}
	}
	return n
}

func parseIntegerLiteral(text string) int {
	sign := 1
	body := text[1:]
	if len(body) > 0 && body[0] == '-' {
		sign = -1
		body = body[1:]
	}
	base := 10
	if text[0] == 'x' || text[0] == 'X' {
		base = 16
	}
	v, _ := strconv.ParseInt(body, base, 64)
	return sign * int(v)
}

func lexemeCombinator() combinator.Combinator[combinator.StrCursor, Lexeme] {
	newline := combinator.MapValue(newlinePattern, func(g []string) Lexeme {
		return Newline{Count: countNewlines(g[0])}
	})
	integer := combinator.MapValue(integerPattern, func(g []string) Lexeme {
		return Integer{Value: parseIntegerLiteral(g[0]), Literal: g[0]}
	})
	dotWord := combinator.MapValue(dotWordPattern, func(g []string) Lexeme {
		return DotWord{Text: g[0][1:]}
	})
	str := combinator.MapValue(stringPattern, func(g []string) Lexeme {
		return StringLit{Text: g[0][1 : len(g[0])-1]}
	})
	char := combinator.MapValue(charPattern, func(g []string) Lexeme {
		return CharLit{Text: g[0][1 : len(g[0])-1]}
	})
	comment := combinator.MapValue(commentPattern, func(g []string) Lexeme {
		return Comment{Text: g[0][1:]}
	})
	word := combinator.MapValue(wordPattern, func(g []string) Lexeme {
		return Word{Text: g[0]}
	})
	invalid := combinator.MapValue(invalidPattern, func(g []string) Lexeme {
		return InvalidLexeme{Text: g[0]}
	})

	chain := combinator.Otherwise(newline,
		combinator.Otherwise(integer,
			combinator.Otherwise(dotWord,
				combinator.Otherwise(str,
					combinator.Otherwise(char,
						combinator.Otherwise(comment,
							combinator.Otherwise(word, invalid)))))))
	return chain
}

// InvalidSequenceError is returned by Lex when one or more lexemes could
// not be recognized. It carries the complete token sequence, including
// the offending InvalidLexeme tokens, per the lexer's no-partial-output
// contract.
type InvalidSequenceError struct {
	Tokens []combinator.Token[Lexeme]
}

func (e *InvalidSequenceError) Error() string {
	return "there was at least one invalid lexeme"
}

// Lex tokenizes source into a spanned sequence of lexemes. It always
// terminates; if any InvalidLexeme was produced, it returns the full
// token sequence alongside an *InvalidSequenceError instead of silently
// dropping the bad run.
func Lex(source string) ([]combinator.Token[Lexeme], error) {
	item := combinator.Preskip(combinator.AsToken(lexemeCombinator()), skipChars)

	cur := combinator.NewStrCursor(source)
	var tokens []combinator.Token[Lexeme]
	hasInvalid := false

	for {
		afterSkip, _, _ := skipChars.Run(cur)
		if afterSkip.Len() == 0 {
			break
		}
		next, tok, err := item.Run(cur)
		if err != nil {
			// Unreachable in practice: the invalid-lexeme fallback
			// matches any non-empty run of non-whitespace.
			return tokens, NewError(ErrInvalidLexeme, Span{Start: cur.Pos(), End: cur.Pos()}, "lexer stalled: %v", err)
		}
		tokens = append(tokens, tok)
		if _, ok := tok.Value.(InvalidLexeme); ok {
			hasInvalid = true
		}
		cur = next
	}

	if hasInvalid {
		return tokens, &InvalidSequenceError{Tokens: tokens}
	}
	return tokens, nil
}
