package tools

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/lc3asm/parser"
)

// FormatStyle selects a column layout for Formatter.
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // Label, mnemonic, and operands in fixed columns
	FormatCompact                     // Minimal whitespace, single space between fields
	FormatExpanded                    // Wider columns for readability
)

// FormatOptions controls the formatter's column layout.
type FormatOptions struct {
	Style             FormatStyle
	MnemonicColumn    int  // Column the mnemonic starts at when a label precedes it
	OperandColumn     int  // Column operands start at
	AlignOperands     bool // Pad to OperandColumn rather than a single separating space
	UppercaseMnemonic bool
}

// DefaultFormatOptions returns the formatter's default layout.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:             FormatDefault,
		MnemonicColumn:    8,
		OperandColumn:     16,
		AlignOperands:     true,
		UppercaseMnemonic: true,
	}
}

// CompactFormatOptions returns a layout with no column alignment.
func CompactFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatCompact
	opts.AlignOperands = false
	return opts
}

// ExpandedFormatOptions returns a layout with wider columns.
func ExpandedFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatExpanded
	opts.MnemonicColumn = 12
	opts.OperandColumn = 28
	return opts
}

// Formatter re-renders parsed LC-3 source into a column-aligned
// canonical layout. It works from the parsed statement stream, not the
// original text, so it normalizes whitespace, operand spacing, and
// mnemonic case; it does not preserve comments, since the parser
// discards them once a line's terminator is consumed.
type Formatter struct {
	options *FormatOptions
}

// NewFormatter creates a Formatter. A nil options uses
// DefaultFormatOptions.
func NewFormatter(options *FormatOptions) *Formatter {
	if options == nil {
		options = DefaultFormatOptions()
	}
	return &Formatter{options: options}
}

// Format parses source and renders it back out in the formatter's
// layout, one line of output per parsed Line plus one more for each
// label beyond the first on that Line.
func (f *Formatter) Format(source string) (string, error) {
	lines, err := parser.Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}

	var out strings.Builder
	for _, line := range lines {
		f.formatLine(&out, line)
	}
	return out.String(), nil
}

func (f *Formatter) formatLine(out *strings.Builder, line parser.Line) {
	for i, lbl := range line.Labels {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(lbl.Text)
		out.WriteString(":")
	}
	if len(line.Labels) > 0 && f.options.Style != FormatCompact {
		f.padTo(out, lineLen(out), f.options.MnemonicColumn)
	} else if len(line.Labels) > 0 {
		out.WriteString(" ")
	}

	mnemonic, operands := renderStatement(line.Stmt)
	if f.options.UppercaseMnemonic {
		mnemonic = strings.ToUpper(mnemonic)
		if br, ok := line.Stmt.(parser.Br); ok {
			mnemonic = "BR" + brFlags(br)
		}
	}
	if len(line.Labels) == 0 && f.options.Style != FormatCompact {
		f.padTo(out, 0, f.options.MnemonicColumn)
	}
	out.WriteString(mnemonic)

	if operands != "" {
		if f.options.AlignOperands && f.options.Style != FormatCompact {
			f.padTo(out, lineLen(out), f.options.OperandColumn)
		} else {
			out.WriteString(" ")
		}
		out.WriteString(operands)
	}
	out.WriteString("\n")
}

// lineLen returns the length of text written since the last newline.
func lineLen(out *strings.Builder) int {
	s := out.String()
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return len(s) - idx - 1
	}
	return len(s)
}

func (f *Formatter) padTo(out *strings.Builder, current, column int) {
	if current >= column {
		out.WriteString(" ")
		return
	}
	out.WriteString(strings.Repeat(" ", column-current))
}

func reg(r parser.Register) string { return fmt.Sprintf("R%d", r.Number) }

// renderStatement returns a statement's mnemonic and comma-joined
// operand text.
func renderStatement(stmt parser.Statement) (string, string) {
	switch s := stmt.(type) {
	case parser.Add:
		return "ADD", fmt.Sprintf("%s, %s, %s", reg(s.DR), reg(s.SR1), reg(s.SR2))
	case parser.AddImm:
		return "ADD", fmt.Sprintf("%s, %s, #%d", reg(s.DR), reg(s.SR1), s.Imm.Value)
	case parser.And:
		return "AND", fmt.Sprintf("%s, %s, %s", reg(s.DR), reg(s.SR1), reg(s.SR2))
	case parser.AndImm:
		return "AND", fmt.Sprintf("%s, %s, #%d", reg(s.DR), reg(s.SR1), s.Imm.Value)
	case parser.Not:
		return "NOT", fmt.Sprintf("%s, %s", reg(s.DR), reg(s.SR))
	case parser.Jmp:
		return "JMP", reg(s.Base)
	case parser.Jsrr:
		return "JSRR", reg(s.Base)
	case parser.Jsr:
		return "JSR", s.Label.Text
	case parser.Ldr:
		return "LDR", fmt.Sprintf("%s, %s, #%d", reg(s.DR), reg(s.Base), s.Offset.Value)
	case parser.Str:
		return "STR", fmt.Sprintf("%s, %s, #%d", reg(s.SR), reg(s.Base), s.Offset.Value)
	case parser.Ret:
		return "RET", ""
	case parser.Rti:
		return "RTI", ""
	case parser.Trap:
		return "TRAP", fmt.Sprintf("x%02X", s.Vector.Value)
	case parser.Lea:
		return "LEA", fmt.Sprintf("%s, %s", reg(s.DR), s.Label.Text)
	case parser.Ld:
		return "LD", fmt.Sprintf("%s, %s", reg(s.DR), s.Label.Text)
	case parser.Ldi:
		return "LDI", fmt.Sprintf("%s, %s", reg(s.DR), s.Label.Text)
	case parser.St:
		return "ST", fmt.Sprintf("%s, %s", reg(s.SR), s.Label.Text)
	case parser.Sti:
		return "STI", fmt.Sprintf("%s, %s", reg(s.SR), s.Label.Text)
	case parser.Br:
		return "BR" + brFlags(s), s.Label.Text
	case parser.Orig:
		return ".ORIG", fmt.Sprintf("x%04X", s.Addr.Value)
	case parser.End:
		return ".END", ""
	case parser.Fill:
		if s.HasLabel {
			return ".FILL", s.Label.Text
		}
		return ".FILL", fmt.Sprintf("#%d", s.Value.Value)
	case parser.Blkw:
		return ".BLKW", fmt.Sprintf("#%d", s.Count)
	case parser.Stringz:
		return ".STRINGZ", fmt.Sprintf("%q", s.Text)
	default:
		return fmt.Sprintf("%T", s), ""
	}
}

// brFlags renders the n/z/p suffix, omitted entirely when all three
// flags are set (the canonical spelling of a bare BR).
func brFlags(b parser.Br) string {
	if b.N && b.Z && b.P {
		return ""
	}
	var sb strings.Builder
	if b.N {
		sb.WriteString("n")
	}
	if b.Z {
		sb.WriteString("z")
	}
	if b.P {
		sb.WriteString("p")
	}
	return sb.String()
}

// FormatString is a convenience wrapper that formats source with
// DefaultFormatOptions.
func FormatString(source string) (string, error) {
	return NewFormatter(DefaultFormatOptions()).Format(source)
}

// FormatStringWithStyle formats source under the named style.
func FormatStringWithStyle(source string, style FormatStyle) (string, error) {
	var options *FormatOptions
	switch style {
	case FormatCompact:
		options = CompactFormatOptions()
	case FormatExpanded:
		options = ExpandedFormatOptions()
	default:
		options = DefaultFormatOptions()
	}
	return NewFormatter(options).Format(source)
}
