package rv32i

import (
	"fmt"

	"github.com/go-rv32i/repl/pkg/immediate"
)

// PseudoOp names one assembler-convenience mnemonic that expands to one
// or more real instructions.
type PseudoOp uint8

const (
	PseudoMV PseudoOp = iota
	PseudoNOT
	PseudoSEQZ
	PseudoSNEZ
	PseudoJ
	PseudoJR
	PseudoRET
	PseudoLI
)

var pseudoMnemonics = map[PseudoOp]string{
	PseudoMV: "MV", PseudoNOT: "NOT", PseudoSEQZ: "SEQZ", PseudoSNEZ: "SNEZ",
	PseudoJ: "J", PseudoJR: "JR", PseudoRET: "RET", PseudoLI: "LI",
}

var pseudoMnemonicToOp = func() map[string]PseudoOp {
	m := make(map[string]PseudoOp, len(pseudoMnemonics))
	for op, name := range pseudoMnemonics {
		m[name] = op
	}
	return m
}()

// PseudoOpByMnemonic resolves an uppercase mnemonic to its PseudoOp.
func PseudoOpByMnemonic(name string) (op PseudoOp, ok bool) {
	op, ok = pseudoMnemonicToOp[name]
	return op, ok
}

// PseudoMnemonics returns every pseudo-instruction mnemonic, used by
// fuzzy-suggestion.
func PseudoMnemonics() []string {
	out := make([]string, 0, len(pseudoMnemonics))
	for _, name := range pseudoMnemonics {
		out = append(out, name)
	}
	return out
}

// PseudoInstruction is a tagged union over the eight pseudo-instructions.
// Rd/Rs hold register operands where applicable; Value holds J's byte
// offset or LI's 32-bit immediate as plain int32 (not an Immediate, since
// LI's operand is a full 32-bit value before expansion). J's offset is
// checked for evenness and range by Expand, not by the parser.
type PseudoInstruction struct {
	Op    PseudoOp
	Rd    Register
	Rs    Register
	Value int32
}

// Mnemonic returns the pseudo-instruction's canonical uppercase name.
func (p PseudoInstruction) Mnemonic() string {
	return pseudoMnemonics[p.Op]
}

// Expand deterministically lowers a pseudo-instruction into 1-2 real
// instructions, per the expansion rules each mnemonic documents below.
func (p PseudoInstruction) Expand() ([]Instruction, error) {
	switch p.Op {
	case PseudoMV:
		return []Instruction{iType(OpADDI, p.Rd, p.Rs, 0, 12)}, nil

	case PseudoNOT:
		return []Instruction{iType(OpXORI, p.Rd, p.Rs, -1, 12)}, nil

	case PseudoSEQZ:
		return []Instruction{iType(OpSLTIU, p.Rd, p.Rs, 1, 12)}, nil

	case PseudoSNEZ:
		return []Instruction{{Op: OpSLTU, Rd: p.Rd, Rs1: X0, Rs2: p.Rs}}, nil

	case PseudoJ:
		// off must be even; the J-format Immediate stores off/2, matching
		// JAL's encoding in the executor and validator.
		if p.Value%2 != 0 {
			return nil, fmt.Errorf("%w: J offset %d is not even", immediate.ErrOutOfRange, p.Value)
		}
		imm := immediate.New(20)
		if err := imm.SetSigned(p.Value / 2); err != nil {
			return nil, err
		}
		return []Instruction{{Op: OpJAL, Rd: X0, Imm: imm}}, nil

	case PseudoJR:
		return []Instruction{iType(OpJALR, X0, p.Rs, 0, 12)}, nil

	case PseudoRET:
		return []Instruction{iType(OpJALR, X0, X1, 0, 12)}, nil

	case PseudoLI:
		return expandLI(p.Rd, p.Value)

	default:
		return nil, fmt.Errorf("rv32i: unknown pseudo-instruction op %d", p.Op)
	}
}

// iType builds an I-format Instruction, panicking only on a programmer
// error (a width/value combination Expand never produces).
func iType(op Op, rd, rs1 Register, value int32, bits uint8) Instruction {
	imm := immediate.New(bits)
	if err := imm.SetSigned(value); err != nil {
		panic(fmt.Sprintf("rv32i: iType invariant violated: %v", err))
	}
	return Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: imm}
}

// expandLI implements LI's two-shape expansion: a 12-bit value fits in a
// single ADDI; anything larger needs LUI for the upper 20 bits, optionally
// followed by ADDI to add a nonzero lower 12 bits.
func expandLI(rd Register, imm int32) ([]Instruction, error) {
	if imm >= -2048 && imm <= 2047 {
		return []Instruction{iType(OpADDI, rd, X0, imm, 12)}, nil
	}

	lower := signExtend12(imm & 0xFFF)
	upper := (imm - lower) >> 12
	upper &= 0xFFFFF // mask to 20 bits

	upperImm := immediate.New(20)
	if err := upperImm.SetUnsigned(uint32(upper)); err != nil {
		return nil, err
	}
	instrs := []Instruction{{Op: OpLUI, Rd: rd, Imm: upperImm}}

	if lower != 0 {
		instrs = append(instrs, iType(OpADDI, rd, rd, lower, 12))
	}
	return instrs, nil
}

// signExtend12 sign-extends the low 12 bits of v into a full int32.
func signExtend12(v int32) int32 {
	v &= 0xFFF
	if v&0x800 != 0 {
		v |= ^0xFFF
	}
	return v
}
