package encoder

import (
	"github.com/lookbusy1344/lc3asm/parser"
)

// runPass2 walks the address-planned lines and encodes every statement
// to one or more 16-bit words. Unlike the parser, this does not
// short-circuit: every line is visited and every error collected, so a
// single assemble call can report more than one problem.
func runPass2(lines []parser.Line, addresses []parser.Address, table *parser.SymbolTable) ([]uint16, error) {
	endIdx := len(lines)
	for i, line := range lines {
		if _, ok := line.Stmt.(parser.End); ok {
			endIdx = i
			break
		}
	}

	var errs parser.ErrorList
	var words []uint16

	for i := 0; i < endIdx; i++ {
		line := lines[i]
		if _, ok := line.Stmt.(parser.Orig); ok {
			continue
		}

		switch s := line.Stmt.(type) {
		case parser.Blkw:
			for k := 0; k < s.Count; k++ {
				words = append(words, 0)
			}
		case parser.Stringz:
			for _, ch := range []byte(s.Text) {
				words = append(words, uint16(ch))
			}
			words = append(words, 0)
		case parser.Fill:
			if s.HasLabel {
				addr, err := table.Lookup(s.Label)
				if err != nil {
					if pe, ok := err.(*parser.Error); ok {
						pe.Span = line.Span
						errs.Add(pe)
					}
					words = append(words, 0)
					continue
				}
				words = append(words, addr.Value)
			} else {
				words = append(words, s.Value.Bits())
			}
		default:
			word, err := encodeStatement(line.Stmt, int(addresses[i].Value), line.Span, table)
			if err != nil {
				if pe, ok := err.(*parser.Error); ok {
					errs.Add(pe)
				} else {
					errs.Add(parser.NewError(parser.ErrUnexpectedToken, line.Span, "%s", err.Error()))
				}
				words = append(words, 0)
				continue
			}
			words = append(words, word)
		}
	}

	if errs.HasErrors() {
		return nil, &errs
	}
	return words, nil
}
