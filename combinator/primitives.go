package combinator

import (
	"fmt"
	"regexp"
)

// String matches the literal s at the cursor and advances past it; it
// fails (as a ParseError) if the cursor doesn't start with s. An empty s
// is a programmer error — the combinator could never consume anything
// and could loop forever under Preskip/ParseMany — so it panics at
// construction time instead of at parse time.
func String(s string) Combinator[StrCursor, string] {
	if len(s) == 0 {
		panicProgrammerError("String: pattern must be non-empty")
	}
	return New(fmt.Sprintf("%q", s), func(in StrCursor) (StrCursor, string, error) {
		rest := in.Rest()
		if len(rest) >= len(s) && rest[:len(s)] == s {
			return in.Advance(len(s)), s, nil
		}
		return in, "", NewParseError(in.Pos(), "expected %q", s)
	})
}

// RegexGroups compiles pattern once (anchored at the cursor position)
// and, on each call, attempts a match at the cursor. On success it
// advances by the match length and returns the captured groups; if the
// pattern has no groups, group 0 (the whole match) is returned alone.
func RegexGroups(pattern string) Combinator[StrCursor, []string] {
	if len(pattern) == 0 {
		panicProgrammerError("RegexGroups: pattern must be non-empty")
	}
	re := regexp.MustCompile(`\A(?:` + pattern + `)`)
	name := "r'" + pattern + "'"
	return New(name, func(in StrCursor) (StrCursor, []string, error) {
		rest := in.Rest()
		loc := re.FindStringSubmatchIndex(rest)
		if loc == nil {
			return in, nil, NewParseError(in.Pos(), "expected %s", name)
		}
		groups := re.FindStringSubmatch(rest)
		matchLen := loc[1]
		if len(groups) > 1 {
			return in.Advance(matchLen), groups[1:], nil
		}
		return in.Advance(matchLen), groups[:1], nil
	})
}

// Regex is RegexGroups restricted to the whole match (group 0).
func Regex(pattern string) Combinator[StrCursor, string] {
	if len(pattern) == 0 {
		panicProgrammerError("Regex: pattern must be non-empty")
	}
	re := regexp.MustCompile(`\A(?:` + pattern + `)`)
	name := "r'" + pattern + "'"
	return New(name, func(in StrCursor) (StrCursor, string, error) {
		loc := re.FindStringIndex(in.Rest())
		if loc == nil {
			return in, "", NewParseError(in.Pos(), "expected %s", name)
		}
		return in.Advance(loc[1]), in.Rest()[:loc[1]], nil
	})
}
