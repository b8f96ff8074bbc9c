package encoder

import (
	"github.com/lookbusy1344/lc3asm/config"
	"github.com/lookbusy1344/lc3asm/parser"
)

// statementSize returns the number of 16-bit words a statement occupies
// once laid down.
func statementSize(stmt parser.Statement) int {
	switch s := stmt.(type) {
	case parser.Orig:
		return 0
	case parser.End:
		return 0
	case parser.Blkw:
		return s.Count
	case parser.Stringz:
		return len(s.Text) + 1
	default:
		return 1
	}
}

// runPass1 assigns an address to every line (parallel to the input
// slice) and builds the symbol table from each line's label
// definitions. The first line must be .ORIG; an address that would
// overflow past the configured top of memory is reported at the
// offending line.
func runPass1(lines []parser.Line, cfg *config.Config) ([]parser.Address, *parser.SymbolTable, error) {
	if len(lines) == 0 {
		return nil, nil, parser.NewError(parser.ErrMissingOrig, parser.Span{}, "empty program: expected .ORIG")
	}

	first := lines[0]
	orig, ok := first.Stmt.(parser.Orig)
	if !ok {
		return nil, nil, parser.NewError(parser.ErrMissingOrig, first.Span, "first statement must be .ORIG")
	}

	minUser := int(cfg.Memory.MinUserAddress)
	maxAddr := int(cfg.Memory.MaxAddress)

	curAddr := int(orig.Addr.Value)
	if _, err := parser.NewUserAddress(curAddr, minUser, maxAddr); err != nil {
		return nil, nil, err
	}

	addresses := make([]parser.Address, len(lines))
	table := parser.NewSymbolTable()

	originAddr, _ := parser.NewSystemAddress(curAddr)
	addresses[0] = originAddr
	for _, lbl := range first.Labels {
		if err := table.Define(lbl, originAddr, first.Span); err != nil {
			return nil, nil, err
		}
	}

	for i := 1; i < len(lines); i++ {
		line := lines[i]

		addr, err := parser.NewSystemAddress(curAddr)
		if err != nil {
			return nil, nil, err
		}
		addresses[i] = addr

		for _, lbl := range line.Labels {
			if err := table.Define(lbl, addr, line.Span); err != nil {
				return nil, nil, err
			}
		}

		if _, isEnd := line.Stmt.(parser.End); isEnd {
			break
		}

		size := statementSize(line.Stmt)
		curAddr += size
		if size > 0 && curAddr-1 > maxAddr {
			return nil, nil, parser.NewError(parser.ErrAddressOutOfRange, line.Span, "program exceeds top of memory (address %#x)", curAddr-1)
		}
	}

	return addresses, table, nil
}
