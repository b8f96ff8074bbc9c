package combinator

// Combinator represents a function from an input cursor to either a new
// cursor advanced past consumed input plus a produced value, or a
// structured error anchored at a source position. Values are immutable
// once constructed and hold no state of their own, so a Combinator may
// be shared freely across goroutines and pipelines.
type Combinator[In Cursor, Out any] struct {
	Name string
	run  func(In) (In, Out, error)
}

// New wraps a raw run function as a named Combinator. It is the
// constructor primitives (String, Regex, and the parser's own
// token-matching primitives) build on.
func New[In Cursor, Out any](name string, run func(In) (In, Out, error)) Combinator[In, Out] {
	return Combinator[In, Out]{Name: name, run: run}
}

// Run executes the combinator against in.
func (c Combinator[In, Out]) Run(in In) (In, Out, error) {
	return c.run(in)
}

// Map applies f to the combinator's output on success. If f returns an
// error, Map yields a ParseError anchored at the cursor position after
// the wrapped combinator ran (not before), per the engine's contract.
func Map[In Cursor, A, B any](c Combinator[In, A], f func(A) (B, error)) Combinator[In, B] {
	return New("mapped("+c.Name+")", func(in In) (In, B, error) {
		var zero B
		next, a, err := c.run(in)
		if err != nil {
			return in, zero, err
		}
		b, err := f(a)
		if err != nil {
			return in, zero, NewParseError(next.Pos(), "%s", err.Error())
		}
		return next, b, nil
	})
}

// MapValue is Map for transforms that cannot fail.
func MapValue[In Cursor, A, B any](c Combinator[In, A], f func(A) B) Combinator[In, B] {
	return Map(c, func(a A) (B, error) { return f(a), nil })
}

// Then requires both combinators to produce a ~string-constrained type
// and concatenates them — the engine's `+` operator. Failure of either
// side propagates verbatim; running out of input between the two sides
// is itself a failure (matching the reference engine's "unexpected end
// of file" check).
func Then[In Cursor, S ~string](a, b Combinator[In, S]) Combinator[In, S] {
	return New("("+a.Name+" + "+b.Name+")", func(in In) (In, S, error) {
		var zero S
		next, av, err := a.run(in)
		if err != nil {
			return in, zero, err
		}
		if next.Len() == 0 {
			return in, zero, NewParseError(next.Pos(), "unexpected end of input")
		}
		next2, bv, err := b.run(next)
		if err != nil {
			return in, zero, err
		}
		return next2, av + bv, nil
	})
}

// Pair is the 2-tuple Cons produces.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Cons runs a then b and pairs their outputs.
func Cons[In Cursor, A, B any](a Combinator[In, A], b Combinator[In, B]) Combinator[In, Pair[A, B]] {
	return New("cons("+a.Name+", "+b.Name+")", func(in In) (In, Pair[A, B], error) {
		var zero Pair[A, B]
		next, av, err := a.run(in)
		if err != nil {
			return in, zero, err
		}
		next2, bv, err := b.run(next)
		if err != nil {
			return in, zero, err
		}
		return next2, Pair[A, B]{First: av, Second: bv}, nil
	})
}

// Consume runs b after a and discards b's value, keeping a's.
func Consume[In Cursor, A, B any](a Combinator[In, A], b Combinator[In, B]) Combinator[In, A] {
	return New("("+a.Name+" << "+b.Name+")", func(in In) (In, A, error) {
		var zero A
		next, av, err := a.run(in)
		if err != nil {
			return in, zero, err
		}
		next2, _, err := b.run(next)
		if err != nil {
			return in, zero, err
		}
		return next2, av, nil
	})
}

// Otherwise tries a; on any failure it re-runs b from the original
// cursor. This is PEG-style ordered choice: no backtracking beyond the
// single retry, no longest-match resolution, and on success of a, b's
// potential success (or failure) is never observed.
func Otherwise[In Cursor, Out any](a, b Combinator[In, Out]) Combinator[In, Out] {
	return New("("+a.Name+" | "+b.Name+")", func(in In) (In, Out, error) {
		next, av, err := a.run(in)
		if err == nil {
			return next, av, nil
		}
		return b.run(in)
	})
}

// Preskip repeatedly applies skip (discarding its output) until it
// fails or stops making progress, then runs c. A skip combinator built
// from a `*`-quantified pattern never fails, so the no-progress check is
// what actually terminates the loop at end of input or on a non-skip
// character.
func Preskip[In Cursor, Out, Skip any](c Combinator[In, Out], skip Combinator[In, Skip]) Combinator[In, Out] {
	return New("preskip("+c.Name+")", func(in In) (In, Out, error) {
		cur := in
		for {
			next, _, err := skip.run(cur)
			if err != nil || next.Pos() == cur.Pos() {
				break
			}
			cur = next
		}
		return c.run(cur)
	})
}

// Postskip runs c, then greedily applies skip (discarding its output)
// until it fails or stops making progress. Attaching Postskip before
// AsToken includes the skipped run in the resulting span; attaching it
// after excludes the run — this ordering distinction is part of the
// public contract.
func Postskip[In Cursor, Out, Skip any](c Combinator[In, Out], skip Combinator[In, Skip]) Combinator[In, Out] {
	return New("postskip("+c.Name+")", func(in In) (In, Out, error) {
		next, ov, err := c.run(in)
		if err != nil {
			return in, ov, err
		}
		cur := next
		for {
			n2, _, err := skip.run(cur)
			if err != nil || n2.Pos() == cur.Pos() {
				break
			}
			cur = n2
		}
		return cur, ov, nil
	})
}

// Token is the span-annotated value As Token produces.
type Token[Out any] struct {
	Value Out
	Span  Span
}

// Span is a half-open range [Start, End) into the original sequence.
type Span struct {
	Start int
	End   int
}

// AsToken captures the cursor span consumed by c. A Postskip already
// attached to c is part of what c consumes, so its skipped run lies
// inside the span; a Postskip wrapped around AsToken's result runs after
// the span is taken and lies outside it.
func AsToken[In Cursor, Out any](c Combinator[In, Out]) Combinator[In, Token[Out]] {
	return New("as_token("+c.Name+")", func(in In) (In, Token[Out], error) {
		start := in.Pos()
		next, ov, err := c.run(in)
		if err != nil {
			return in, Token[Out]{}, err
		}
		return next, Token[Out]{Value: ov, Span: Span{Start: start, End: next.Pos()}}, nil
	})
}

// Parse runs c against in and requires the cursor to reach end of
// input; trailing input is reported as an error.
func Parse[In Cursor, Out any](c Combinator[In, Out], in In) (Out, error) {
	var zero Out
	next, ov, err := c.run(in)
	if err != nil {
		return zero, err
	}
	if next.Len() > 0 {
		return zero, NewParseError(next.Pos(), "expected end of input")
	}
	return ov, nil
}

// ParseMany repeatedly runs c to end of input, collecting outputs.
// Residue that c cannot consume is an error.
func ParseMany[In Cursor, Out any](c Combinator[In, Out], in In) ([]Out, error) {
	var out []Out
	cur := in
	for cur.Len() > 0 {
		next, ov, err := c.run(cur)
		if err != nil {
			return nil, err
		}
		out = append(out, ov)
		cur = next
	}
	return out, nil
}
