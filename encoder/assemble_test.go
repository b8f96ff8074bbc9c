package encoder_test

import (
	"testing"

	"github.com/lookbusy1344/lc3asm/config"
	"github.com/lookbusy1344/lc3asm/encoder"
	"github.com/lookbusy1344/lc3asm/parser"
)

const helloWorld = ".ORIG x3000\n" +
	"LEA R0, msg\n" +
	"PUTS\n" +
	"HALT\n" +
	"msg .STRINGZ \"Hi\"\n" +
	".END\n"

// TestAssembleHelloWorld covers scenario 2.
func TestAssembleHelloWorld(t *testing.T) {
	cfg := config.DefaultConfig()
	bytes, err := encoder.Assemble(helloWorld, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{
		0x30, 0x00,
		0xE0, 0x02,
		0xF0, 0x22,
		0xF0, 0x25,
		0x00, 0x48,
		0x00, 0x69,
		0x00, 0x00,
	}

	if len(bytes) != len(want) {
		t.Fatalf("got %d bytes, want %d: % x", len(bytes), len(want), bytes)
	}
	for i := range want {
		if bytes[i] != want[i] {
			t.Errorf("byte %d: got %#x, want %#x (full: % x)", i, bytes[i], want[i], bytes)
		}
	}
}

// TestDuplicateLabel covers scenario 3: the error must be anchored at
// the byte offset of the second "foo", not merely report that a
// collision occurred.
func TestDuplicateLabel(t *testing.T) {
	source := ".ORIG x3000\n" +
		"foo .FILL #0\n" +
		"foo .FILL #1\n" +
		".END\n"

	cfg := config.DefaultConfig()
	_, err := encoder.Assemble(source, cfg)
	if err == nil {
		t.Fatal("expected a duplicate-label error")
	}
	pe, ok := err.(*parser.Error)
	if !ok {
		t.Fatalf("expected *parser.Error, got %T: %v", err, err)
	}
	if pe.Kind != parser.ErrDuplicateLabel {
		t.Fatalf("expected ErrDuplicateLabel, got %s", pe.Kind)
	}
	const secondFooOffset = len(".ORIG x3000\n") + len("foo .FILL #0\n")
	if pe.Span.Start != secondFooOffset {
		t.Errorf("error anchored at byte %d, want %d (the second \"foo\")", pe.Span.Start, secondFooOffset)
	}
}

// TestOffsetOutOfRange covers scenario 4: LEA to a label 300 words
// past the instruction exceeds the 9-bit signed PC-offset field.
func TestOffsetOutOfRange(t *testing.T) {
	source := ".ORIG x3000\nLEA R0, far\n.BLKW #299\nfar .FILL #0\n.END\n"

	cfg := config.DefaultConfig()
	_, err := encoder.Assemble(source, cfg)
	if err == nil {
		t.Fatal("expected an offset-out-of-range error")
	}
}

// TestBitExactRoundTrip covers property 4: encoding a label-free
// program and decoding each word reproduces the original operands.
func TestBitExactRoundTrip(t *testing.T) {
	source := ".ORIG x3000\nADD R1, R2, R3\nAND R4, R5, #7\nNOT R0, R1\n.END\n"
	cfg := config.DefaultConfig()
	bytes, err := encoder.Assemble(source, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// skip the 2-byte origin word
	body := bytes[2:]
	words := make([]uint16, 0, len(body)/2)
	for i := 0; i < len(body); i += 2 {
		words = append(words, uint16(body[i])<<8|uint16(body[i+1]))
	}

	if len(words) != 3 {
		t.Fatalf("expected 3 encoded words, got %d", len(words))
	}
	// ADD R1, R2, R3: opcode 0001, DR=001, SR1=010, 0, 00, SR2=011
	if words[0] != 0x1283 {
		t.Errorf("ADD R1,R2,R3: got %#04x, want %#04x", words[0], 0x1283)
	}
	// AND R4, R5, #7 (imm): opcode 0101, DR=100, SR1=101, 1, 00111
	if words[1] != 0x5967 {
		t.Errorf("AND R4,R5,#7: got %#04x, want %#04x", words[1], 0x5967)
	}
	// NOT R0, R1: opcode 1001, DR=000, SR=001, 111111
	if words[2] != 0x907F {
		t.Errorf("NOT R0,R1: got %#04x, want %#04x", words[2], 0x907F)
	}
}

// TestPreAssembleExposesSymbolTable ensures PreAssemble surfaces the
// address plan without requiring a full encode.
func TestPreAssembleExposesSymbolTable(t *testing.T) {
	source := ".ORIG x3000\nloop ADD R0, R0, #1\nBR loop\n.END\n"
	cfg := config.DefaultConfig()
	lines, table, err := encoder.PreAssemble(source, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) == 0 {
		t.Fatal("expected at least one parsed line")
	}
	if table == nil {
		t.Fatal("expected a non-nil symbol table")
	}
}

func TestMissingOrigIsError(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := encoder.Assemble("ADD R0, R0, R0\n.END\n", cfg); err == nil {
		t.Fatal("expected MissingOrig error")
	}
}
