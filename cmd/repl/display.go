package main

import (
	"fmt"
	"strings"

	"github.com/go-rv32i/repl/pkg/interp"
	"github.com/go-rv32i/repl/pkg/rv32i"
)

// formatDelta renders what one instruction changed, in the spirit of the
// teacher's Disassemble-style one-line-per-change reporting.
func formatDelta(d rv32i.StateDelta) string {
	var parts []string
	for _, rc := range d.RegisterChanges {
		parts = append(parts, fmt.Sprintf("%s: 0x%08X -> 0x%08X", rc.Reg, rc.Old, rc.New))
	}
	for _, cc := range d.CSRChanges {
		name := fmt.Sprintf("csr[0x%03X]", cc.Addr)
		if n, ok := rv32i.CSRName(cc.Addr); ok {
			name = n
		}
		parts = append(parts, fmt.Sprintf("%s: 0x%08X -> 0x%08X", name, cc.Old, cc.New))
	}
	for _, md := range d.MemoryChanges {
		parts = append(parts, fmt.Sprintf("mem[0x%08X..0x%08X]: % X -> % X", md.Addr, md.Addr+uint32(len(md.NewData)), md.OldData, md.NewData))
	}
	parts = append(parts, fmt.Sprintf("pc: 0x%08X -> 0x%08X", d.PCChange.Old, d.PCChange.New))
	summary := strings.Join(parts, ", ")
	if d.Mnemonic == "" {
		return summary
	}
	return fmt.Sprintf("%s: %s", d.Mnemonic, summary)
}

// formatRegisters dumps all 32 general-purpose registers plus PC, four
// per line, ABI-named.
func formatRegisters(cpu *rv32i.CPU) string {
	var b strings.Builder
	for i := 0; i < rv32i.NumRegisters; i++ {
		reg := rv32i.Register(i)
		fmt.Fprintf(&b, "%-5s 0x%08X", reg, cpu.GetRegister(reg))
		if i%4 == 3 {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
	}
	fmt.Fprintf(&b, "\n%-5s 0x%08X\n", "pc", cpu.PC())
	return b.String()
}

// formatMemory hex-dumps length bytes of memory starting at addr, 16
// bytes per line.
func formatMemory(cpu *rv32i.CPU, addr, length uint32) (string, error) {
	if uint64(addr)+uint64(length) > uint64(cpu.MemorySize()) {
		return "", fmt.Errorf("display: range [0x%X, 0x%X) exceeds memory size 0x%X", addr, addr+length, cpu.MemorySize())
	}
	var b strings.Builder
	for off := uint32(0); off < length; off += 16 {
		n := length - off
		if n > 16 {
			n = 16
		}
		data, err := cpu.ReadMemory(addr+off, n)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "0x%08X  % X\n", addr+off, data)
	}
	return b.String(), nil
}

// formatBatchResult joins the history-facing summary for a possibly
// multi-clause batch result.
func formatBatchResult(deltas []rv32i.StateDelta) string {
	lines := make([]string, len(deltas))
	for i, d := range deltas {
		lines[i] = formatDelta(d)
	}
	return strings.Join(lines, "\n")
}

// describeBatchError renders a *interp.BatchError with its clause index,
// falling back to the plain error message for anything else.
func describeBatchError(err error) string {
	var be *interp.BatchError
	if ok := asBatchError(err, &be); ok {
		return fmt.Sprintf("clause %d: %s", be.Clause, be.Err.Error())
	}
	return err.Error()
}

func asBatchError(err error, target **interp.BatchError) bool {
	be, ok := err.(*interp.BatchError)
	if ok {
		*target = be
	}
	return ok
}
