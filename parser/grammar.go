package parser

import (
	"strings"

	"github.com/lookbusy1344/lc3asm/combinator"
)

// Cur is the cursor type the grammar is built over: an advancing view
// across the lexer's spanned lexeme stream rather than raw source text.
type Cur = combinator.TokenCursor[combinator.Token[Lexeme]]

// after runs gate then body, keeping only body's value. Used throughout
// the grammar to consume a mnemonic or directive keyword as a gate
// before parsing its operands.
func after[A, B any](gate combinator.Combinator[Cur, A], body combinator.Combinator[Cur, B]) combinator.Combinator[Cur, B] {
	return combinator.MapValue(combinator.Cons(gate, body), func(p combinator.Pair[A, B]) B { return p.Second })
}

// chain folds a sequence of Statement alternatives with Otherwise,
// preserving order: cs[0] is tried first, cs[len(cs)-1] last. The last
// alternative's error is the one that survives if every alternative
// fails, per the engine's "last-tried-branch error wins" contract.
func chain(cs ...combinator.Combinator[Cur, Statement]) combinator.Combinator[Cur, Statement] {
	result := cs[len(cs)-1]
	for i := len(cs) - 2; i >= 0; i-- {
		result = combinator.Otherwise(cs[i], result)
	}
	return result
}

func peekLexeme(in Cur) (Lexeme, combinator.Span, bool) {
	tok, ok := in.Peek()
	if !ok {
		return nil, combinator.Span{}, false
	}
	return tok.Value, tok.Span, true
}

// kw matches a Word lexeme equal to name case-insensitively and
// consumes it, yielding its span.
func kw(name string) combinator.Combinator[Cur, Span] {
	return combinator.New("\""+name+"\"", func(in Cur) (Cur, Span, error) {
		lex, span, ok := peekLexeme(in)
		if !ok {
			return in, Span{}, combinator.NewParseError(in.Pos(), "expected %q, reached end of input", name)
		}
		w, ok := lex.(Word)
		if !ok || !w.EqualString(name) {
			return in, Span{}, combinator.NewParseError(in.Pos(), "expected %q", name)
		}
		return in.Advance(1), span, nil
	})
}

// dotKw matches a DotWord lexeme equal to name case-insensitively.
func dotKw(name string) combinator.Combinator[Cur, Span] {
	return combinator.New("\".\"+"+name, func(in Cur) (Cur, Span, error) {
		lex, span, ok := peekLexeme(in)
		if !ok {
			return in, Span{}, combinator.NewParseError(in.Pos(), "expected .%s, reached end of input", name)
		}
		d, ok := lex.(DotWord)
		if !ok || !strings.EqualFold(d.Text, name) {
			return in, Span{}, combinator.NewParseError(in.Pos(), "expected .%s", name)
		}
		return in.Advance(1), span, nil
	})
}

// register matches a Word lexeme parsing as a register name.
func register() combinator.Combinator[Cur, Register] {
	return combinator.New("register", func(in Cur) (Cur, Register, error) {
		lex, _, ok := peekLexeme(in)
		if !ok {
			return in, Register{}, combinator.NewParseError(in.Pos(), "expected register, reached end of input")
		}
		w, ok := lex.(Word)
		if !ok {
			return in, Register{}, combinator.NewParseError(in.Pos(), "expected register")
		}
		r, err := ParseRegister(w.Text)
		if err != nil {
			return in, Register{}, combinator.NewParseError(in.Pos(), "%s", err.Error())
		}
		return in.Advance(1), r, nil
	})
}

// labelRef matches a Word lexeme as a label reference (used by
// instructions that carry an unresolved target, and by .FILL label).
func labelRef() combinator.Combinator[Cur, Label] {
	return combinator.New("label", func(in Cur) (Cur, Label, error) {
		lex, span, ok := peekLexeme(in)
		if !ok {
			return in, Label{}, combinator.NewParseError(in.Pos(), "expected label, reached end of input")
		}
		w, ok := lex.(Word)
		if !ok {
			return in, Label{}, combinator.NewParseError(in.Pos(), "expected label")
		}
		lbl, err := NewLabel(w.Text)
		if err != nil {
			if pe, ok := err.(*Error); ok {
				pe.Span = span
				return in, Label{}, pe
			}
			return in, Label{}, err
		}
		return in.Advance(1), lbl, nil
	})
}

// imm5, imm6, imm8 match an Integer lexeme and range-check it,
// anchoring any out-of-range failure at the integer token itself.
func imm5() combinator.Combinator[Cur, Imm5] { return immN(5, NewImm5) }
func imm6() combinator.Combinator[Cur, Imm6] { return immN(6, NewImm6) }
func imm8() combinator.Combinator[Cur, Imm8] { return immN(8, NewImm8) }

func immN[T any](bits int, construct func(int) (T, error)) combinator.Combinator[Cur, T] {
	return combinator.New("immediate", func(in Cur) (Cur, T, error) {
		var zero T
		lex, span, ok := peekLexeme(in)
		if !ok {
			return in, zero, combinator.NewParseError(in.Pos(), "expected immediate, reached end of input")
		}
		i, ok := lex.(Integer)
		if !ok {
			return in, zero, combinator.NewParseError(in.Pos(), "expected immediate")
		}
		v, err := construct(i.Value)
		if err != nil {
			return in, zero, NewError(ErrImmediateOutOfRange, span, "%s", err.Error())
		}
		return in.Advance(1), v, nil
	})
}

// integer16 matches an Integer lexeme as a full 16-bit word, used by
// .ORIG and .FILL.
func integer16() combinator.Combinator[Cur, Word16] {
	return combinator.New("16-bit value", func(in Cur) (Cur, Word16, error) {
		lex, span, ok := peekLexeme(in)
		if !ok {
			return in, Word16{}, combinator.NewParseError(in.Pos(), "expected 16-bit value, reached end of input")
		}
		i, ok := lex.(Integer)
		if !ok {
			return in, Word16{}, combinator.NewParseError(in.Pos(), "expected 16-bit value")
		}
		w, err := NewWord16(i.Value)
		if err != nil {
			return in, Word16{}, NewError(ErrImmediateOutOfRange, span, "%s", err.Error())
		}
		return in.Advance(1), w, nil
	})
}

// nonNegInt matches an Integer lexeme whose value is >= 0, used by
// .BLKW's word count.
func nonNegInt() combinator.Combinator[Cur, int] {
	return combinator.New("non-negative integer", func(in Cur) (Cur, int, error) {
		lex, span, ok := peekLexeme(in)
		if !ok {
			return in, 0, combinator.NewParseError(in.Pos(), "expected count, reached end of input")
		}
		i, ok := lex.(Integer)
		if !ok {
			return in, 0, combinator.NewParseError(in.Pos(), "expected count")
		}
		if i.Value < 0 {
			return in, 0, NewError(ErrImmediateOutOfRange, span, ".BLKW count %d must not be negative", i.Value)
		}
		return in.Advance(1), i.Value, nil
	})
}

// stringLit matches a StringLit lexeme, used by .STRINGZ.
func stringLit() combinator.Combinator[Cur, string] {
	return combinator.New("string literal", func(in Cur) (Cur, string, error) {
		lex, _, ok := peekLexeme(in)
		if !ok {
			return in, "", combinator.NewParseError(in.Pos(), "expected string literal, reached end of input")
		}
		s, ok := lex.(StringLit)
		if !ok {
			return in, "", combinator.NewParseError(in.Pos(), "expected string literal")
		}
		return in.Advance(1), s.Text, nil
	})
}

// --- ADD / AND: Reg Reg (Reg | Imm5). ---

func binaryRegOrImm(
	mnemonic string,
	buildReg func(dr, sr1, sr2 Register) Statement,
	buildImm func(dr, sr1 Register, imm Imm5) Statement,
) combinator.Combinator[Cur, Statement] {
	regVariant := combinator.MapValue(
		after(kw(mnemonic), combinator.Cons(register(), combinator.Cons(register(), register()))),
		func(p combinator.Pair[Register, combinator.Pair[Register, Register]]) Statement {
			return buildReg(p.First, p.Second.First, p.Second.Second)
		},
	)
	immVariant := combinator.MapValue(
		after(kw(mnemonic), combinator.Cons(register(), combinator.Cons(register(), imm5()))),
		func(p combinator.Pair[Register, combinator.Pair[Register, Imm5]]) Statement {
			return buildImm(p.First, p.Second.First, p.Second.Second)
		},
	)
	return combinator.Otherwise(regVariant, immVariant)
}

// regLabelInstr builds mnemonic Reg Label instructions (LD, LDI, LEA).
func regLabelInstr(mnemonic string, build func(Register, Label) Statement) combinator.Combinator[Cur, Statement] {
	return combinator.MapValue(
		after(kw(mnemonic), combinator.Cons(register(), labelRef())),
		func(p combinator.Pair[Register, Label]) Statement { return build(p.First, p.Second) },
	)
}

// regRegImm6Instr builds mnemonic Reg Reg Imm6 instructions (LDR, STR).
func regRegImm6Instr(mnemonic string, build func(dr, base Register, off Imm6) Statement) combinator.Combinator[Cur, Statement] {
	return combinator.MapValue(
		after(kw(mnemonic), combinator.Cons(register(), combinator.Cons(register(), imm6()))),
		func(p combinator.Pair[Register, combinator.Pair[Register, Imm6]]) Statement {
			return build(p.First, p.Second.First, p.Second.Second)
		},
	)
}

var namedTrapVectors = map[string]int{
	"GETC": 0x20, "OUT": 0x21, "PUTS": 0x22, "IN": 0x23, "PUTSP": 0x24, "HALT": 0x25,
}

func namedTrap() combinator.Combinator[Cur, Statement] {
	return combinator.New("named trap", func(in Cur) (Cur, Statement, error) {
		lex, _, ok := peekLexeme(in)
		if !ok {
			return in, nil, combinator.NewParseError(in.Pos(), "expected named trap, reached end of input")
		}
		w, ok := lex.(Word)
		if !ok {
			return in, nil, combinator.NewParseError(in.Pos(), "expected named trap")
		}
		vec, known := namedTrapVectors[strings.ToUpper(w.Text)]
		if !known {
			return in, nil, combinator.NewParseError(in.Pos(), "expected named trap")
		}
		imm, _ := NewImm8(vec)
		return in.Advance(1), Trap{Vector: imm}, nil
	})
}

// brInstr matches "BR" followed by any ordered, non-empty subset of
// {n,z,p} (absent ⇒ all three) and a target label. Any trailing
// character after a recognized flag run is an invalid-mnemonic error,
// not a reinterpretation as a label — the stricter of the two readings
// the reference implementation exhibits. It is deliberately the last
// alternative tried in the Instr chain so this error, when it occurs,
// survives as the grammar's final reported error instead of being
// discarded by an earlier alternative's failure.
func brInstr() combinator.Combinator[Cur, Statement] {
	return combinator.New("BR instruction", func(in Cur) (Cur, Statement, error) {
		lex, span, ok := peekLexeme(in)
		if !ok {
			return in, nil, combinator.NewParseError(in.Pos(), "expected BR instruction, reached end of input")
		}
		w, ok := lex.(Word)
		if !ok || len(w.Text) < 2 || !strings.EqualFold(w.Text[:2], "br") {
			return in, nil, combinator.NewParseError(in.Pos(), "expected BR instruction")
		}

		flags := strings.ToLower(w.Text[2:])
		var n, z, p bool
		idx := 0
		if idx < len(flags) && flags[idx] == 'n' {
			n = true
			idx++
		}
		if idx < len(flags) && flags[idx] == 'z' {
			z = true
			idx++
		}
		if idx < len(flags) && flags[idx] == 'p' {
			p = true
			idx++
		}
		if idx != len(flags) {
			return in, nil, NewError(ErrUnexpectedToken, span, "invalid BR condition flags in %q", w.Text)
		}
		if !n && !z && !p {
			n, z, p = true, true, true
		}

		next, label, err := labelRef().Run(in.Advance(1))
		if err != nil {
			return in, nil, err
		}
		return next, Br{N: n, Z: z, P: p, Label: label}, nil
	})
}

func buildInstr() combinator.Combinator[Cur, Statement] {
	addInstr := binaryRegOrImm("ADD",
		func(dr, sr1, sr2 Register) Statement { return Add{DR: dr, SR1: sr1, SR2: sr2} },
		func(dr, sr1 Register, imm Imm5) Statement { return AddImm{DR: dr, SR1: sr1, Imm: imm} },
	)
	andInstr := binaryRegOrImm("AND",
		func(dr, sr1, sr2 Register) Statement { return And{DR: dr, SR1: sr1, SR2: sr2} },
		func(dr, sr1 Register, imm Imm5) Statement { return AndImm{DR: dr, SR1: sr1, Imm: imm} },
	)
	notInstr := combinator.MapValue(
		after(kw("NOT"), combinator.Cons(register(), register())),
		func(p combinator.Pair[Register, Register]) Statement { return Not{DR: p.First, SR: p.Second} },
	)
	jmpInstr := combinator.MapValue(after(kw("JMP"), register()), func(r Register) Statement { return Jmp{Base: r} })
	jsrInstr := combinator.MapValue(after(kw("JSR"), labelRef()), func(l Label) Statement { return Jsr{Label: l} })
	jsrrInstr := combinator.MapValue(after(kw("JSRR"), register()), func(r Register) Statement { return Jsrr{Base: r} })
	ldInstr := regLabelInstr("LD", func(r Register, l Label) Statement { return Ld{DR: r, Label: l} })
	ldiInstr := regLabelInstr("LDI", func(r Register, l Label) Statement { return Ldi{DR: r, Label: l} })
	leaInstr := regLabelInstr("LEA", func(r Register, l Label) Statement { return Lea{DR: r, Label: l} })
	ldrInstr := regRegImm6Instr("LDR", func(dr, base Register, off Imm6) Statement { return Ldr{DR: dr, Base: base, Offset: off} })
	strInstr := regRegImm6Instr("STR", func(sr, base Register, off Imm6) Statement { return Str{SR: sr, Base: base, Offset: off} })
	stInstr := combinator.MapValue(
		after(kw("ST"), combinator.Cons(register(), labelRef())),
		func(p combinator.Pair[Register, Label]) Statement { return St{SR: p.First, Label: p.Second} },
	)
	stiInstr := combinator.MapValue(
		after(kw("STI"), combinator.Cons(register(), labelRef())),
		func(p combinator.Pair[Register, Label]) Statement { return Sti{SR: p.First, Label: p.Second} },
	)
	trapInstr := combinator.Otherwise(
		combinator.MapValue(after(kw("TRAP"), imm8()), func(v Imm8) Statement { return Trap{Vector: v} }),
		namedTrap(),
	)
	retInstr := combinator.MapValue(kw("RET"), func(Span) Statement { return Ret{} })
	rtiInstr := combinator.MapValue(kw("RTI"), func(Span) Statement { return Rti{} })

	return chain(
		addInstr, andInstr, notInstr, jmpInstr, jsrInstr, jsrrInstr,
		ldInstr, ldiInstr, ldrInstr, leaInstr, stInstr, stiInstr, strInstr,
		trapInstr, retInstr, rtiInstr, brInstr(),
	)
}

func buildDirective() combinator.Combinator[Cur, Statement] {
	origDirective := combinator.MapValue(after(dotKw("ORIG"), integer16()), func(w Word16) Statement { return Orig{Addr: w} })
	endDirective := combinator.MapValue(dotKw("END"), func(Span) Statement { return End{} })
	fillDirective := combinator.Otherwise(
		combinator.MapValue(after(dotKw("FILL"), integer16()), func(w Word16) Statement { return Fill{Value: w} }),
		combinator.MapValue(after(dotKw("FILL"), labelRef()), func(l Label) Statement { return Fill{Label: l, HasLabel: true} }),
	)
	blkwDirective := combinator.MapValue(after(dotKw("BLKW"), nonNegInt()), func(n int) Statement { return Blkw{Count: n} })
	stringzDirective := combinator.MapValue(after(dotKw("STRINGZ"), stringLit()), func(s string) Statement { return Stringz{Text: s} })

	return combinator.Otherwise(origDirective,
		combinator.Otherwise(endDirective,
			combinator.Otherwise(fillDirective,
				combinator.Otherwise(blkwDirective, stringzDirective))))
}

func buildStatement() combinator.Combinator[Cur, Statement] {
	return combinator.Otherwise(buildDirective(), buildInstr())
}

func isNewline(l Lexeme) bool {
	_, ok := l.(Newline)
	return ok
}

func isComment(l Lexeme) bool {
	_, ok := l.(Comment)
	return ok
}

// isMnemonicWord reports whether text names an instruction mnemonic or
// trap alias rather than a label. BR's condition-flag suffixes (BRn,
// BRzp, BRnzp, ...) are not individually enumerable, so any word
// starting with "br" is treated as an attempted BR mnemonic and routed
// to brInstr for validation: a BR-prefixed token is never read as a
// label, even if its flag suffix turns out to be invalid.
func isMnemonicWord(text string) bool {
	lower := strings.ToLower(text)
	if reservedWords[lower] {
		return true
	}
	return strings.HasPrefix(lower, "br")
}

// skipBlankLines advances past any standalone Newline lexemes with no
// attached label or statement — a relaxation beyond the literal grammar
// to tolerate blank lines between statements and at the top of a file;
// the lexer already collapses any run of consecutive newlines into one
// token, so this only ever needs to skip at most one token at a time.
func skipBlankLines(cur Cur) Cur {
	for {
		lex, _, ok := peekLexeme(cur)
		if !ok || !isNewline(lex) {
			return cur
		}
		cur = cur.Advance(1)
	}
}

// parseTerminator consumes an optional trailing comment and then
// requires a Newline lexeme or end of input.
func parseTerminator(cur Cur) (Cur, error) {
	lex, _, ok := peekLexeme(cur)
	if ok && isComment(lex) {
		cur = cur.Advance(1)
	}
	if cur.Len() == 0 {
		return cur, nil
	}
	lex, span, ok := peekLexeme(cur)
	if !ok || !isNewline(lex) {
		return cur, NewError(ErrExpectedNewline, span, "expected newline after statement")
	}
	return cur.Advance(1), nil
}

// byteOffset translates a token-stream index (what Cur.Pos() returns)
// into the byte offset of that token in the original source, by
// reading it off the lexeme's own span. An index at or past the end of
// tokens resolves to the byte offset right after the last token, since
// that's the only byte position a trailing cursor can mean.
func byteOffset(tokens []combinator.Token[Lexeme], idx int) int {
	if idx < len(tokens) {
		return tokens[idx].Span.Start
	}
	if len(tokens) == 0 {
		return 0
	}
	return tokens[len(tokens)-1].Span.End
}

// ParseProgram parses a complete token stream into a sequence of Lines.
// It is not a batch component: parsing stops and returns the first
// structural error encountered (only the lexer and pass 2 accumulate
// every error in one run).
func ParseProgram(tokens []combinator.Token[Lexeme]) ([]Line, error) {
	cur := combinator.NewTokenCursor(tokens)
	statement := buildStatement()

	var lines []Line
	var pendingLabels []Label

	cur = skipBlankLines(cur)
	for cur.Len() > 0 {
		start := byteOffset(tokens, cur.Pos())

		lex, _, _ := peekLexeme(cur)
		if w, ok := lex.(Word); ok && !isMnemonicWord(w.Text) {
			afterWord := cur.Advance(1)
			nextLex, _, hasNext := peekLexeme(afterWord)
			bareLabelLine := !hasNext || isNewline(nextLex) || isComment(nextLex)
			if bareLabelLine {
				lbl, err := NewLabel(w.Text)
				if err != nil {
					return lines, err
				}
				pendingLabels = append(pendingLabels, lbl)
				next, err := parseTerminator(afterWord)
				if err != nil {
					return lines, err
				}
				cur = skipBlankLines(next)
				continue
			}

			lbl, err := NewLabel(w.Text)
			if err != nil {
				return lines, err
			}
			pendingLabels = append(pendingLabels, lbl)
			cur = afterWord
		}

		next, stmt, err := statement.Run(cur)
		if err != nil {
			return lines, err
		}
		next, err = parseTerminator(next)
		if err != nil {
			return lines, err
		}

		lines = append(lines, Line{
			Labels: pendingLabels,
			Stmt:   stmt,
			Span:   Span{Start: start, End: byteOffset(tokens, next.Pos())},
		})
		pendingLabels = nil
		cur = skipBlankLines(next)
	}

	return lines, nil
}

// Parse lexes and parses source in one step, the convenience entry
// point the CLI and tests use when they don't need the raw token
// stream.
func Parse(source string) ([]Line, error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}
	return ParseProgram(tokens)
}
