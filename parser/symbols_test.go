package parser_test

import (
	"testing"

	"github.com/lookbusy1344/lc3asm/parser"
)

// TestCaseInsensitiveLabelEquality covers property 3.
func TestCaseInsensitiveLabelEquality(t *testing.T) {
	table := parser.NewSymbolTable()
	a, err := parser.NewLabel("Loop")
	if err != nil {
		t.Fatal(err)
	}
	addr, err := parser.NewSystemAddress(0x3000)
	if err != nil {
		t.Fatal(err)
	}
	if err := table.Define(a, addr, parser.Span{}); err != nil {
		t.Fatalf("first definition should succeed: %v", err)
	}

	b, err := parser.NewLabel("LOOP")
	if err != nil {
		t.Fatal(err)
	}
	if err := table.Define(b, addr, parser.Span{}); err == nil {
		t.Fatal("expected duplicate-label error for case-insensitive collision")
	}
}

func TestSymbolTableLookupUndefined(t *testing.T) {
	table := parser.NewSymbolTable()
	lbl, err := parser.NewLabel("missing")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := table.Lookup(lbl); err == nil {
		t.Fatal("expected undefined-label error")
	}
}

func TestNewLabelRejectsReservedMnemonic(t *testing.T) {
	for _, name := range []string{"add", "ADD", "Trap", "puts"} {
		if _, err := parser.NewLabel(name); err == nil {
			t.Errorf("NewLabel(%q): expected reserved-mnemonic error", name)
		}
	}
}

func TestUserAddressBounds(t *testing.T) {
	if _, err := parser.NewUserAddress(0x2FFF, 0x3000, 0xFFFF); err == nil {
		t.Error("expected error below user floor")
	}
	if _, err := parser.NewUserAddress(0x3000, 0x3000, 0xFFFF); err != nil {
		t.Errorf("floor address should be valid: %v", err)
	}
}
