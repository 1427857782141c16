package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user-none/go-dramsim/dram"
)

func TestWriterFormatsValidationLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	cmd := dram.Command{Kind: dram.ACTIVATE, Addr: dram.Address{Channel: 0, Rank: 1, BankGroup: 2, Bank: 3, Row: 40, Column: 5}}
	if err := w.WriteCommand(42, cmd); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}
	w.Flush()

	got := buf.String()
	want := "42       activate 0 1 2 3 40 5\n"
	if got != want {
		t.Errorf("WriteCommand output = %q, want %q", got, want)
	}
}

func TestReadFileParsesAddressesAndDirections(t *testing.T) {
	input := strings.NewReader("# comment\n0x100 r\n200 w\n\n")
	txns, err := ReadFile(input)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("len(txns) = %d, want 2", len(txns))
	}
	if txns[0].Addr != 0x100 || txns[0].IsWrite {
		t.Errorf("txns[0] = %+v, want {Addr:0x100 IsWrite:false}", txns[0])
	}
	if txns[1].Addr != 200 || !txns[1].IsWrite {
		t.Errorf("txns[1] = %+v, want {Addr:200 IsWrite:true}", txns[1])
	}
}

func TestReadFileRejectsMalformedLine(t *testing.T) {
	input := strings.NewReader("100 r w\n")
	if _, err := ReadFile(input); err == nil {
		t.Fatalf("expected an error for a malformed trace line")
	}
}

func TestRandomGeneratorStaysInBounds(t *testing.T) {
	gen := NewRandomGenerator(1, 1<<20, 0.5)
	for i := 0; i < 1000; i++ {
		txn := gen.Next()
		if txn.Addr >= 1<<20 {
			t.Fatalf("generated address %d out of bounds", txn.Addr)
		}
	}
}
