// Package trace writes the stable validation-trace format and supplies
// transaction sources (a trace file or a random generator) a CLI front
// end can drive a dram.MemorySystem from.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/user-none/go-dramsim/dram"
)

// Writer emits one line per issued command in the format spec'd for
// validation traces: "<clk> <cmd_name> <channel> <rank> <bankgroup>
// <bank> <row> <column>", clk left-justified to 8 columns, every
// address field decimal.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w for validation-trace output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteCommand appends one trace line for cmd issued at cycle clk.
func (tw *Writer) WriteCommand(clk uint64, cmd dram.Command) error {
	_, err := fmt.Fprintf(tw.w, "%-8d %s %d %d %d %d %d %d\n",
		clk, cmd.Kind.String(),
		cmd.Addr.Channel, cmd.Addr.Rank, cmd.Addr.BankGroup, cmd.Addr.Bank, cmd.Addr.Row, cmd.Addr.Column)
	return err
}

// Flush flushes any buffered output.
func (tw *Writer) Flush() error {
	return tw.w.Flush()
}

// TraceCommand implements dram.CommandTracer, wiring a Writer directly
// into a dram.MemorySystem/Controller via SetTracer. A write failure
// here means the validation-output file itself went bad (disk full,
// closed pipe); per spec §7 that is fail-fast, not recoverable.
func (tw *Writer) TraceCommand(clk uint64, cmd dram.Command) {
	if err := tw.WriteCommand(clk, cmd); err != nil {
		dram.Abort("trace: writing validation line: %v", err)
	}
}

// Transaction is one host-issued memory access read from a trace file
// or produced by a generator: a physical address and a direction.
type Transaction struct {
	Addr    uint64
	IsWrite bool
}

// ReadFile parses a simple two-field trace file: one "<hex-or-decimal
// address> <r|w>" transaction per line. Blank lines and lines starting
// with '#' are skipped. A malformed line is a fatal error: trace
// replay must not silently drop or misinterpret input (spec §7).
func ReadFile(r io.Reader) ([]Transaction, error) {
	var txns []Transaction
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("trace: line %d: expected \"<addr> <r|w>\", got %q", lineNo, line)
		}
		var addr uint64
		var err error
		if strings.HasPrefix(fields[0], "0x") {
			addr, err = strconv.ParseUint(fields[0][2:], 16, 64)
		} else {
			addr, err = strconv.ParseUint(fields[0], 10, 64)
		}
		if err != nil {
			return nil, fmt.Errorf("trace: line %d: bad address %q: %w", lineNo, fields[0], err)
		}
		var isWrite bool
		switch fields[1] {
		case "r", "R", "read":
			isWrite = false
		case "w", "W", "write":
			isWrite = true
		default:
			return nil, fmt.Errorf("trace: line %d: unknown access kind %q", lineNo, fields[1])
		}
		txns = append(txns, Transaction{Addr: addr, IsWrite: isWrite})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	return txns, nil
}

// RandomGenerator produces an endless stream of uniformly random
// addresses within [0, spaceBytes) and a configurable write fraction,
// for exercising a dram.MemorySystem without a trace file.
type RandomGenerator struct {
	rng          *rand.Rand
	spaceBytes   uint64
	writeFraction float64
}

// NewRandomGenerator builds a generator seeded by seed.
func NewRandomGenerator(seed int64, spaceBytes uint64, writeFraction float64) *RandomGenerator {
	return &RandomGenerator{
		rng:           rand.New(rand.NewSource(seed)),
		spaceBytes:    spaceBytes,
		writeFraction: writeFraction,
	}
}

// Next returns one random transaction.
func (g *RandomGenerator) Next() Transaction {
	return Transaction{
		Addr:    g.rng.Uint64() % g.spaceBytes,
		IsWrite: g.rng.Float64() < g.writeFraction,
	}
}
