// Package rv32i implements the RV32I base integer ISA plus the Zicsr
// extension: register state, instruction formats, instruction and
// pseudo-instruction tagged unions, CSR file, and the executor that
// turns an Instruction into a StateDelta.
package rv32i

import (
	"errors"
	"strings"
)

var errBadRegisterSuffix = errors.New("rv32i: bad register suffix")

// Register names one of the 32 general-purpose integer registers or PC.
// X0 is wired to zero by CPU.SetRegister; Register itself is just an index.
type Register uint8

// The general-purpose registers, plus PC as a 33rd pseudo-register used
// only where the instruction formats explicitly allow it (JALR's implicit
// destination).
const (
	X0 Register = iota
	X1
	X2
	X3
	X4
	X5
	X6
	X7
	X8
	X9
	X10
	X11
	X12
	X13
	X14
	X15
	X16
	X17
	X18
	X19
	X20
	X21
	X22
	X23
	X24
	X25
	X26
	X27
	X28
	X29
	X30
	X31
	PC
)

// NumRegisters is the number of addressable general-purpose registers
// (X0..X31); PC is tracked separately by CPU.
const NumRegisters = 32

// abiNames maps the standard calling-convention nicknames to register
// indices. fp is an alias for s0.
var abiNames = map[string]Register{
	"ZERO": X0,
	"RA":   X1,
	"SP":   X2,
	"GP":   X3,
	"TP":   X4,
	"T0":   X5,
	"T1":   X6,
	"T2":   X7,
	"S0":   X8,
	"FP":   X8,
	"S1":   X9,
	"A0":   X10,
	"A1":   X11,
	"A2":   X12,
	"A3":   X13,
	"A4":   X14,
	"A5":   X15,
	"A6":   X16,
	"A7":   X17,
	"S2":   X18,
	"S3":   X19,
	"S4":   X20,
	"S5":   X21,
	"S6":   X22,
	"S7":   X23,
	"S8":   X24,
	"S9":   X25,
	"S10":  X26,
	"S11":  X27,
	"T3":   X28,
	"T4":   X29,
	"T5":   X30,
	"T6":   X31,
}

// ParseRegister resolves a register token, which must already be uppercase.
// Accepts "PC", "X0".."X31", and any ABI alias. ok is false if name does not
// name a register.
func ParseRegister(name string) (reg Register, ok bool) {
	if name == "PC" {
		return PC, true
	}
	if strings.HasPrefix(name, "X") && len(name) > 1 {
		n, err := parseDecimalUint(name[1:])
		if err == nil && n < NumRegisters {
			return Register(n), true
		}
		return 0, false
	}
	reg, ok = abiNames[name]
	return reg, ok
}

// parseDecimalUint parses an unsigned decimal register suffix without
// pulling in strconv's full numeric grammar (no sign, no base prefixes).
func parseDecimalUint(s string) (uint32, error) {
	if s == "" {
		return 0, errBadRegisterSuffix
	}
	var n uint32
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errBadRegisterSuffix
		}
		n = n*10 + uint32(c-'0')
	}
	return n, nil
}

// String renders a register using its ABI name (zero, ra, sp, ...; pc).
func (r Register) String() string {
	if r == PC {
		return "pc"
	}
	if int(r) < len(registerDisplayNames) {
		return registerDisplayNames[r]
	}
	return "x?"
}

var registerDisplayNames = [NumRegisters]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}
