package combinator_test

import (
	"strconv"
	"testing"

	c "github.com/lookbusy1344/lc3asm/combinator"
)

func TestStringLiteral(t *testing.T) {
	lit := c.String("ADD")
	next, v, err := lit.Run(c.NewStrCursor("ADD R0"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "ADD" || next.Pos() != 3 {
		t.Fatalf("got %q at %d", v, next.Pos())
	}

	if _, _, err := lit.Run(c.NewStrCursor("AND")); err == nil {
		t.Fatal("expected failure matching AND against \"ADD\"")
	}
}

func TestStringEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic constructing String(\"\")")
		}
	}()
	c.String("")
}

// TestOrderedChoice verifies property 7: (a | b).parse(s) yields a's
// output whenever a succeeds, regardless of whether b would also match.
func TestOrderedChoice(t *testing.T) {
	a := c.MapValue(c.String("x"), func(string) string { return "from-a" })
	b := c.MapValue(c.String("x"), func(string) string { return "from-b" })

	got, err := c.Parse(c.Otherwise(a, b), c.NewStrCursor("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-a" {
		t.Fatalf("expected from-a, got %s", got)
	}
}

func TestOtherwiseFallsThroughOnFailure(t *testing.T) {
	ab := c.Otherwise(c.String("a"), c.String("b"))
	if _, err := c.Parse(ab, c.NewStrCursor("b")); err != nil {
		t.Fatalf("expected b branch to succeed: %v", err)
	}
	if _, err := c.Parse(ab, c.NewStrCursor("c")); err == nil {
		t.Fatal("expected failure, both branches reject 'c'")
	}
}

func TestAsTokenSpanExcludesPostskipAfter(t *testing.T) {
	ws := c.Regex(`[ \t]*`)
	word := c.Regex(`[a-z]+`)

	tok := c.Postskip(c.AsToken(word), ws)
	_, v, err := tok.Run(c.NewStrCursor("abc   "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Span != (c.Span{Start: 0, End: 3}) {
		t.Fatalf("expected span [0,3) excluding trailing skip, got %+v", v.Span)
	}
}

func TestAsTokenSpanIncludesPostskipBefore(t *testing.T) {
	ws := c.Regex(`[ \t]*`)
	word := c.Regex(`[a-z]+`)

	tok := c.AsToken(c.Postskip(word, ws))
	next, v, err := tok.Run(c.NewStrCursor("abc   next"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Span != (c.Span{Start: 0, End: 6}) {
		t.Fatalf("expected span [0,6) including trailing skip, got %+v", v.Span)
	}
	if next.Pos() != 6 {
		t.Fatalf("expected cursor advanced past trailing skip to 6, got %d", next.Pos())
	}
}

func TestLazyUsedBeforeDefinePanics(t *testing.T) {
	l := c.NewLazy[c.StrCursor, string]("undefined")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic using an undefined Lazy")
		}
	}()
	l.Combinator().Run(c.NewStrCursor("x"))
}

// --- Scenario 5: a small arithmetic expression parser over floats,
// built from forward-declared combinators exactly as the engine's
// recursion support is meant to demonstrate. ---

func ws() c.Combinator[c.StrCursor, string] { return c.Regex(`[ \t]*`) }

func sym(s string) c.Combinator[c.StrCursor, string] {
	return c.Postskip(c.Preskip(c.String(s), ws()), ws())
}

func number() c.Combinator[c.StrCursor, float64] {
	return c.Postskip(c.Preskip(c.Map(c.Regex(`[0-9]+(\.[0-9]+)?`), func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}), ws()), ws())
}

func buildExpr() c.Combinator[c.StrCursor, float64] {
	expr := c.NewLazy[c.StrCursor, float64]("expr")
	term := c.NewLazy[c.StrCursor, float64]("term")

	factor := c.Otherwise(
		number(),
		c.MapValue(
			c.Consume(c.Cons(sym("("), expr.Combinator()), sym(")")),
			func(p c.Pair[string, float64]) float64 { return p.Second },
		),
	)

	term.Define(c.Otherwise(
		c.MapValue(c.Cons(c.Consume(factor, sym("*")), term.Combinator()),
			func(p c.Pair[float64, float64]) float64 { return p.First * p.Second }),
		c.Otherwise(
			c.MapValue(c.Cons(c.Consume(factor, sym("/")), term.Combinator()),
				func(p c.Pair[float64, float64]) float64 { return p.First / p.Second }),
			factor,
		),
	))

	expr.Define(c.Otherwise(
		c.MapValue(c.Cons(c.Consume(term.Combinator(), sym("+")), expr.Combinator()),
			func(p c.Pair[float64, float64]) float64 { return p.First + p.Second }),
		c.Otherwise(
			c.MapValue(c.Cons(c.Consume(term.Combinator(), sym("-")), expr.Combinator()),
				func(p c.Pair[float64, float64]) float64 { return p.First - p.Second }),
			term.Combinator(),
		),
	))

	return expr.Combinator()
}

func TestExpressionParser(t *testing.T) {
	expr := buildExpr()

	tests := []struct {
		in   string
		want float64
	}{
		{"12 + 8/2", 16.0},
		{"(1+2)*3", 9.0},
		{"2 * 3 + 4", 10.0},
	}

	for _, tt := range tests {
		got, err := c.Parse(expr, c.NewStrCursor(tt.in))
		if err != nil {
			t.Fatalf("parse(%q): unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpressionParserTrailingInputIsError(t *testing.T) {
	expr := buildExpr()
	if _, err := c.Parse(expr, c.NewStrCursor("1 + 2 )")); err == nil {
		t.Fatal("expected error on unconsumed trailing input")
	}
}
