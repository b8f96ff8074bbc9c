package parser_test

import (
	"testing"

	"github.com/lookbusy1344/lc3asm/parser"
)

// TestNBitGuard covers property 6: construction succeeds iff
// -2^(n-1) <= v < 2^(n-1).
func TestNBitGuard(t *testing.T) {
	if _, err := parser.NewImm5(15); err != nil {
		t.Errorf("15 should fit Imm5: %v", err)
	}
	if _, err := parser.NewImm5(-16); err != nil {
		t.Errorf("-16 should fit Imm5: %v", err)
	}
	if _, err := parser.NewImm5(16); err == nil {
		t.Error("16 should not fit Imm5")
	}
	if _, err := parser.NewImm5(-17); err == nil {
		t.Error("-17 should not fit Imm5")
	}

	if _, err := parser.NewImm9(255); err != nil {
		t.Errorf("255 should fit Imm9: %v", err)
	}
	if _, err := parser.NewImm9(256); err == nil {
		t.Error("256 should not fit Imm9")
	}
	if _, err := parser.NewImm9(-256); err != nil {
		t.Errorf("-256 should fit Imm9: %v", err)
	}

	if _, err := parser.NewImm11(1023); err != nil {
		t.Errorf("1023 should fit Imm11: %v", err)
	}
	if _, err := parser.NewImm11(1024); err == nil {
		t.Error("1024 should not fit Imm11")
	}
}

func TestImmBitsTwosComplement(t *testing.T) {
	v, err := parser.NewImm5(-1)
	if err != nil {
		t.Fatal(err)
	}
	if v.Bits() != 0x1F {
		t.Errorf("got %#x, want 0x1f", v.Bits())
	}

	w, err := parser.NewImm9(-1)
	if err != nil {
		t.Fatal(err)
	}
	if w.Bits() != 0x1FF {
		t.Errorf("got %#x, want 0x1ff", w.Bits())
	}
}

func TestWord16Range(t *testing.T) {
	if _, err := parser.NewWord16(0xFFFF); err != nil {
		t.Errorf("0xffff should fit: %v", err)
	}
	if _, err := parser.NewWord16(-32768); err != nil {
		t.Errorf("-32768 should fit: %v", err)
	}
	if _, err := parser.NewWord16(70000); err == nil {
		t.Error("70000 should not fit 16 bits")
	}
}
