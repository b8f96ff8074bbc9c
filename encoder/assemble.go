package encoder

import (
	"github.com/lookbusy1344/lc3asm/config"
	"github.com/lookbusy1344/lc3asm/parser"
)

// Assemble translates source into a flat big-endian byte stream: the
// origin word followed by the encoded body.
func Assemble(source string, cfg *config.Config) ([]byte, error) {
	lines, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}

	addresses, table, err := runPass1(lines, cfg)
	if err != nil {
		return nil, err
	}

	words, err := runPass2(lines, addresses, table)
	if err != nil {
		return nil, err
	}

	origin, ok := lines[0].Stmt.(parser.Orig)
	if !ok {
		return nil, parser.NewError(parser.ErrMissingOrig, lines[0].Span, "first statement must be .ORIG")
	}

	out := make([]byte, 0, (len(words)+1)*2)
	out = appendBigEndian(out, origin.Addr.Bits())
	for _, w := range words {
		out = appendBigEndian(out, w)
	}
	return out, nil
}

func appendBigEndian(buf []byte, w uint16) []byte {
	return append(buf, byte(w>>8), byte(w&0xFF))
}

// PreAssemble runs only through pass 1, returning the parsed program
// and its symbol table without encoding. Primarily useful for tests
// and tooling that need to inspect the address plan without caring
// about the final byte stream.
func PreAssemble(source string, cfg *config.Config) ([]parser.Line, *parser.SymbolTable, error) {
	lines, err := parser.Parse(source)
	if err != nil {
		return nil, nil, err
	}
	_, table, err := runPass1(lines, cfg)
	if err != nil {
		return nil, nil, err
	}
	return lines, table, nil
}
