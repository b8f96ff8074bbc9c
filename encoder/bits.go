// Package encoder implements the two-pass LC-3 assembler: pass 1 fixes
// statement addresses and builds the symbol table, pass 2 resolves
// label references and encodes every statement to bit-exact 16-bit
// words.
package encoder

import (
	"github.com/lookbusy1344/lc3asm/parser"
)

func op(code uint16) uint16                         { return code << 12 }
func regField(r parser.Register, shift uint) uint16 { return uint16(r.Number&0x7) << shift }

// pcOffset9/pcOffset11 compute target - (statementAddr + 1), the
// PC-relative displacement every label-referring instruction encodes,
// and range check it against the field width, anchoring any failure at
// span (the whole statement, since the lexeme that names the offending
// label and the instruction's own position are both within it).
func pcOffset9(statementAddr, target int, span parser.Span) (parser.Imm9, error) {
	v, err := parser.NewImm9(target - (statementAddr + 1))
	if err != nil {
		return v, parser.NewError(parser.ErrOffsetOutOfRange, span, "%s", err.Error())
	}
	return v, nil
}

func pcOffset11(statementAddr, target int, span parser.Span) (parser.Imm11, error) {
	v, err := parser.NewImm11(target - (statementAddr + 1))
	if err != nil {
		return v, parser.NewError(parser.ErrOffsetOutOfRange, span, "%s", err.Error())
	}
	return v, nil
}

func resolveLabel(table *parser.SymbolTable, label parser.Label, span parser.Span) (int, error) {
	addr, err := table.Lookup(label)
	if err != nil {
		if pe, ok := err.(*parser.Error); ok {
			pe.Span = span
		}
		return 0, err
	}
	return int(addr.Value), nil
}

// encodeStatement produces the single 16-bit word an instruction
// statement encodes to. Directives (.FILL, .BLKW, .STRINGZ, .ORIG,
// .END) are handled separately by pass 2, since they may emit zero,
// one, or many words.
func encodeStatement(stmt parser.Statement, statementAddr int, span parser.Span, table *parser.SymbolTable) (uint16, error) {
	switch s := stmt.(type) {
	case parser.Add:
		return op(0x1) | regField(s.DR, 9) | regField(s.SR1, 6) | regField(s.SR2, 0), nil
	case parser.AddImm:
		return op(0x1) | regField(s.DR, 9) | regField(s.SR1, 6) | (1 << 5) | s.Imm.Bits(), nil
	case parser.And:
		return op(0x5) | regField(s.DR, 9) | regField(s.SR1, 6) | regField(s.SR2, 0), nil
	case parser.AndImm:
		return op(0x5) | regField(s.DR, 9) | regField(s.SR1, 6) | (1 << 5) | s.Imm.Bits(), nil
	case parser.Not:
		return op(0x9) | regField(s.DR, 9) | regField(s.SR, 6) | 0x3F, nil
	case parser.Jmp:
		return op(0xC) | regField(s.Base, 6), nil
	case parser.Ret:
		return op(0xC) | regField(parser.Register{Number: 7}, 6), nil
	case parser.Jsrr:
		return op(0x4) | regField(s.Base, 6), nil
	case parser.Rti:
		return op(0x8), nil
	case parser.Trap:
		return op(0xF) | s.Vector.Bits(), nil

	case parser.Ldr:
		return op(0x6) | regField(s.DR, 9) | regField(s.Base, 6) | s.Offset.Bits(), nil
	case parser.Str:
		return op(0x7) | regField(s.SR, 9) | regField(s.Base, 6) | s.Offset.Bits(), nil

	case parser.Lea:
		return labelOffset9(0xE, s.DR, s.Label, statementAddr, span, table)
	case parser.Ld:
		return labelOffset9(0x2, s.DR, s.Label, statementAddr, span, table)
	case parser.Ldi:
		return labelOffset9(0xA, s.DR, s.Label, statementAddr, span, table)
	case parser.St:
		return labelOffset9(0x3, s.SR, s.Label, statementAddr, span, table)
	case parser.Sti:
		return labelOffset9(0xB, s.SR, s.Label, statementAddr, span, table)

	case parser.Jsr:
		target, err := resolveLabel(table, s.Label, span)
		if err != nil {
			return 0, err
		}
		offset, err := pcOffset11(statementAddr, target, span)
		if err != nil {
			return 0, err
		}
		return op(0x4) | (1 << 11) | offset.Bits(), nil

	case parser.Br:
		target, err := resolveLabel(table, s.Label, span)
		if err != nil {
			return 0, err
		}
		offset, err := pcOffset9(statementAddr, target, span)
		if err != nil {
			return 0, err
		}
		var flags uint16
		if s.N {
			flags |= 1 << 11
		}
		if s.Z {
			flags |= 1 << 10
		}
		if s.P {
			flags |= 1 << 9
		}
		return op(0x0) | flags | offset.Bits(), nil

	default:
		return 0, parser.NewError(parser.ErrUnexpectedToken, span, "statement has no machine encoding")
	}
}

func labelOffset9(opcode uint16, r parser.Register, label parser.Label, statementAddr int, span parser.Span, table *parser.SymbolTable) (uint16, error) {
	target, err := resolveLabel(table, label, span)
	if err != nil {
		return 0, err
	}
	offset, err := pcOffset9(statementAddr, target, span)
	if err != nil {
		return 0, err
	}
	return op(opcode) | regField(r, 9) | offset.Bits(), nil
}
