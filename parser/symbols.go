package parser

import (
	"sort"
	"strings"
)

// reservedWords are mnemonics and the trap aliases; a label may not
// collide with any of them case-insensitively.
var reservedWords = map[string]bool{
	"add": true, "and": true, "br": true, "jmp": true, "jsr": true,
	"jsrr": true, "ld": true, "ldi": true, "ldr": true, "lea": true,
	"not": true, "ret": true, "rti": true, "st": true, "sti": true,
	"str": true, "trap": true, "puts": true, "out": true, "getc": true,
	"in": true, "putsp": true, "halt": true,
}

// Label is a non-empty identifier compared case-insensitively.
type Label struct{ Text string }

// NewLabel validates text is not a reserved mnemonic or trap alias.
func NewLabel(text string) (Label, error) {
	if len(text) == 0 {
		return Label{}, NewError(ErrReservedIdentifierAsLabel, Span{}, "label may not be empty")
	}
	if reservedWords[strings.ToLower(text)] {
		return Label{}, NewError(ErrReservedIdentifierAsLabel, Span{}, "%q is a reserved mnemonic and cannot be used as a label", text)
	}
	return Label{Text: text}, nil
}

func (l Label) key() string { return strings.ToLower(l.Text) }

// Equal compares two labels case-insensitively.
func (l Label) Equal(other Label) bool {
	return l.key() == other.key()
}

// Address is a 16-bit address, constructed either unconstrained
// (system) or bounded to the user program region.
type Address struct{ Value uint16 }

// NewSystemAddress accepts any 16-bit value.
func NewSystemAddress(v int) (Address, error) {
	if v < 0 || v > 0xFFFF {
		return Address{}, NewError(ErrAddressOutOfRange, Span{}, "address %#x is not a valid 16-bit address", v)
	}
	return Address{Value: uint16(v)}, nil
}

// NewUserAddress accepts v only if it falls within [minUser, max].
func NewUserAddress(v, minUser, max int) (Address, error) {
	if v < minUser || v > max {
		return Address{}, NewError(ErrAddressOutOfRange, Span{}, "address %#x lies outside the user program region [%#x, %#x]", v, minUser, max)
	}
	return Address{Value: uint16(v)}, nil
}

// SymbolTable maps case-insensitive labels to addresses, built
// exclusively during pass 1 and read-only afterward.
type SymbolTable struct {
	entries map[string]Address
	labels  map[string]Label
	spans   map[string]Span
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		entries: make(map[string]Address),
		labels:  make(map[string]Label),
		spans:   make(map[string]Span),
	}
}

// Define binds label to addr, anchored at span for diagnostics. It
// fails with ErrDuplicateLabel if the label (case-insensitively) is
// already bound.
func (t *SymbolTable) Define(label Label, addr Address, span Span) error {
	key := label.key()
	if _, exists := t.entries[key]; exists {
		return NewError(ErrDuplicateLabel, span, "label %q is already defined", label.Text)
	}
	t.entries[key] = addr
	t.labels[key] = label
	t.spans[key] = span
	return nil
}

// Lookup resolves label to its bound address.
func (t *SymbolTable) Lookup(label Label) (Address, error) {
	addr, ok := t.entries[label.key()]
	if !ok {
		return Address{}, NewError(ErrUndefinedLabel, Span{}, "undefined label %q", label.Text)
	}
	return addr, nil
}

// SymbolEntry pairs a label's original spelling with its bound address,
// for callers that need to enumerate the whole table (symbol dumps,
// the TUI inspector).
type SymbolEntry struct {
	Label Label
	Addr  Address
}

// All returns every bound label in its original spelling, sorted by
// address, for display purposes.
func (t *SymbolTable) All() []SymbolEntry {
	out := make([]SymbolEntry, 0, len(t.entries))
	for key, addr := range t.entries {
		out = append(out, SymbolEntry{Label: t.labels[key], Addr: addr})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr.Value < out[j].Addr.Value })
	return out
}
