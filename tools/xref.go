package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lookbusy1344/lc3asm/parser"
)

// ReferenceType indicates how a symbol is used at a reference site.
type ReferenceType int

const (
	RefDefinition ReferenceType = iota // Label definition
	RefBranch                          // BR target
	RefCall                            // JSR target
	RefLoad                            // LD/LDI source
	RefStore                           // ST/STI destination
	RefData                            // LEA or .FILL pointer
)

func (r ReferenceType) String() string {
	switch r {
	case RefDefinition:
		return "definition"
	case RefBranch:
		return "branch"
	case RefCall:
		return "call"
	case RefLoad:
		return "load"
	case RefStore:
		return "store"
	case RefData:
		return "data"
	default:
		return "unknown"
	}
}

// Reference is a single use of a symbol at a source position.
type Reference struct {
	Type ReferenceType
	Line int
}

// Symbol collects everything known about one label: where it was
// defined and every place it's referenced.
type Symbol struct {
	Name        string
	Definition  *Reference
	References  []*Reference
	IsFunction  bool // referenced at least once via JSR
	IsDataLabel bool // defined on a .FILL/.BLKW/.STRINGZ line rather than an instruction
}

// XRefGenerator builds a label cross-reference from parsed source.
type XRefGenerator struct {
	index   *parser.LineIndex
	symbols map[string]*Symbol
}

// NewXRefGenerator creates an empty cross-reference generator.
func NewXRefGenerator() *XRefGenerator {
	return &XRefGenerator{symbols: make(map[string]*Symbol)}
}

// Generate parses source and populates the symbol table. The returned
// map is keyed by the lowercased label text, matching label lookups'
// case-insensitive semantics elsewhere in the assembler; each Symbol's
// Name keeps the spelling the label was first seen with (definitions are
// collected before references).
func (x *XRefGenerator) Generate(source string) (map[string]*Symbol, error) {
	x.index = parser.NewLineIndex(source)

	lines, err := parser.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	x.collectDefinitions(lines)
	x.collectReferences(lines)
	x.analyzeCallGraph()

	return x.symbols, nil
}

func (x *XRefGenerator) lineOf(span parser.Span) int {
	return x.index.Resolve(span.Start).Line
}

func (x *XRefGenerator) symbol(name string) *Symbol {
	key := strings.ToLower(name)
	sym, exists := x.symbols[key]
	if !exists {
		sym = &Symbol{Name: name}
		x.symbols[key] = sym
	}
	return sym
}

func isDataDirective(stmt parser.Statement) bool {
	switch stmt.(type) {
	case parser.Blkw, parser.Stringz, parser.Fill:
		return true
	}
	return false
}

func (x *XRefGenerator) collectDefinitions(lines []parser.Line) {
	for _, line := range lines {
		for _, lbl := range line.Labels {
			sym := x.symbol(lbl.Text)
			if sym.Definition == nil {
				sym.Definition = &Reference{Type: RefDefinition, Line: x.lineOf(line.Span)}
			}
			if isDataDirective(line.Stmt) {
				sym.IsDataLabel = true
			}
		}
	}
}

func (x *XRefGenerator) collectReferences(lines []parser.Line) {
	for _, line := range lines {
		lbl, refType, ok := referenceIn(line.Stmt)
		if !ok {
			continue
		}
		sym := x.symbol(lbl.Text)
		sym.References = append(sym.References, &Reference{Type: refType, Line: x.lineOf(line.Span)})
	}
}

// referenceIn extracts the label a statement references and how, if any.
func referenceIn(stmt parser.Statement) (parser.Label, ReferenceType, bool) {
	switch s := stmt.(type) {
	case parser.Br:
		return s.Label, RefBranch, true
	case parser.Jsr:
		return s.Label, RefCall, true
	case parser.Lea:
		return s.Label, RefData, true
	case parser.Ld:
		return s.Label, RefLoad, true
	case parser.Ldi:
		return s.Label, RefLoad, true
	case parser.St:
		return s.Label, RefStore, true
	case parser.Sti:
		return s.Label, RefStore, true
	case parser.Fill:
		if s.HasLabel {
			return s.Label, RefData, true
		}
	}
	return parser.Label{}, 0, false
}

func (x *XRefGenerator) analyzeCallGraph() {
	for _, sym := range x.symbols {
		for _, ref := range sym.References {
			if ref.Type == RefCall {
				sym.IsFunction = true
				break
			}
		}
	}
}

// GetSymbols returns every symbol found.
func (x *XRefGenerator) GetSymbols() map[string]*Symbol { return x.symbols }

// GetSymbol looks up one symbol by name, case-insensitively.
func (x *XRefGenerator) GetSymbol(name string) (*Symbol, bool) {
	sym, ok := x.symbols[strings.ToLower(name)]
	return sym, ok
}

func sortedSymbols(symbols map[string]*Symbol) []*Symbol {
	out := make([]*Symbol, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetFunctions returns every symbol called at least once via JSR.
func (x *XRefGenerator) GetFunctions() []*Symbol {
	var functions []*Symbol
	for _, sym := range sortedSymbols(x.symbols) {
		if sym.IsFunction {
			functions = append(functions, sym)
		}
	}
	return functions
}

// GetUndefinedSymbols returns every referenced symbol with no
// definition anywhere in the program.
func (x *XRefGenerator) GetUndefinedSymbols() []*Symbol {
	var undefined []*Symbol
	for _, sym := range sortedSymbols(x.symbols) {
		if sym.Definition == nil && len(sym.References) > 0 {
			undefined = append(undefined, sym)
		}
	}
	return undefined
}

// GetUnusedSymbols returns every defined symbol with no references.
func (x *XRefGenerator) GetUnusedSymbols() []*Symbol {
	var unused []*Symbol
	for _, sym := range sortedSymbols(x.symbols) {
		if sym.Definition != nil && len(sym.References) == 0 {
			unused = append(unused, sym)
		}
	}
	return unused
}

// XRefReport renders a symbol table as a human-readable text report.
type XRefReport struct {
	symbols []*Symbol
}

// NewXRefReport builds a report over symbols, sorted by name.
func NewXRefReport(symbols map[string]*Symbol) *XRefReport {
	return &XRefReport{symbols: sortedSymbols(symbols)}
}

func (r *XRefReport) String() string {
	var sb strings.Builder

	sb.WriteString("Symbol Cross-Reference\n")
	sb.WriteString("======================\n\n")

	for _, sym := range r.symbols {
		sb.WriteString(fmt.Sprintf("%-30s", sym.Name))
		switch {
		case sym.IsFunction:
			sb.WriteString(" [function]")
		case sym.IsDataLabel:
			sb.WriteString(" [data]")
		default:
			sb.WriteString(" [label]")
		}
		sb.WriteString("\n")

		if sym.Definition != nil {
			sb.WriteString(fmt.Sprintf("  Defined:     line %d\n", sym.Definition.Line))
		} else {
			sb.WriteString("  Defined:     (undefined)\n")
		}

		if len(sym.References) == 0 {
			sb.WriteString("  Referenced:  (never)\n")
		} else {
			sb.WriteString(fmt.Sprintf("  Referenced:  %d time(s)\n", len(sym.References)))

			byType := make(map[ReferenceType][]*Reference)
			for _, ref := range sym.References {
				byType[ref.Type] = append(byType[ref.Type], ref)
			}
			for _, refType := range []ReferenceType{RefCall, RefBranch, RefLoad, RefStore, RefData} {
				refs := byType[refType]
				if len(refs) == 0 {
					continue
				}
				lineNums := make([]string, len(refs))
				for i, ref := range refs {
					lineNums[i] = fmt.Sprintf("%d", ref.Line)
				}
				sb.WriteString(fmt.Sprintf("    %-10s: line(s) %s\n", refType.String(), strings.Join(lineNums, ", ")))
			}
		}
		sb.WriteString("\n")
	}

	var defined, undefined, unused, functions int
	for _, sym := range r.symbols {
		if sym.Definition != nil {
			defined++
		} else {
			undefined++
		}
		if len(sym.References) == 0 {
			unused++
		}
		if sym.IsFunction {
			functions++
		}
	}

	sb.WriteString("Summary\n")
	sb.WriteString("=======\n")
	sb.WriteString(fmt.Sprintf("Total symbols:     %d\n", len(r.symbols)))
	sb.WriteString(fmt.Sprintf("Defined:           %d\n", defined))
	sb.WriteString(fmt.Sprintf("Undefined:         %d\n", undefined))
	sb.WriteString(fmt.Sprintf("Unused:            %d\n", unused))
	sb.WriteString(fmt.Sprintf("Functions:         %d\n", functions))

	return sb.String()
}

// GenerateXRef is a convenience wrapper that parses source and renders
// its cross-reference report in one call.
func GenerateXRef(source string) (string, error) {
	gen := NewXRefGenerator()
	symbols, err := gen.Generate(source)
	if err != nil {
		return "", err
	}
	return NewXRefReport(symbols).String(), nil
}
