package asm

import (
	"fmt"

	"github.com/go-rv32i/repl/pkg/immediate"
	"github.com/go-rv32i/repl/pkg/rv32i"
)

// formKind names one of the operand shapes spec's operand validator
// distinguishes; every hardware Op maps to exactly one.
type formKind uint8

const (
	formR formKind = iota
	formIArith
	formIShift
	formLoad
	formStore
	formBranch
	formUpper
	formJAL
	formJALR
	formSystem
	formCSRReg
	formCSRImm
)

var opForm = map[rv32i.Op]formKind{
	rv32i.OpADD: formR, rv32i.OpSUB: formR, rv32i.OpAND: formR, rv32i.OpOR: formR, rv32i.OpXOR: formR,
	rv32i.OpSLL: formR, rv32i.OpSRL: formR, rv32i.OpSRA: formR, rv32i.OpSLT: formR, rv32i.OpSLTU: formR,

	rv32i.OpADDI: formIArith, rv32i.OpANDI: formIArith, rv32i.OpORI: formIArith,
	rv32i.OpXORI: formIArith, rv32i.OpSLTI: formIArith, rv32i.OpSLTIU: formIArith,

	rv32i.OpSLLI: formIShift, rv32i.OpSRLI: formIShift, rv32i.OpSRAI: formIShift,

	rv32i.OpLB: formLoad, rv32i.OpLBU: formLoad, rv32i.OpLH: formLoad,
	rv32i.OpLHU: formLoad, rv32i.OpLW: formLoad,

	rv32i.OpSB: formStore, rv32i.OpSH: formStore, rv32i.OpSW: formStore,

	rv32i.OpBEQ: formBranch, rv32i.OpBNE: formBranch, rv32i.OpBLT: formBranch,
	rv32i.OpBGE: formBranch, rv32i.OpBLTU: formBranch, rv32i.OpBGEU: formBranch,

	rv32i.OpJAL:  formJAL,
	rv32i.OpJALR: formJALR,

	rv32i.OpLUI: formUpper, rv32i.OpAUIPC: formUpper,

	rv32i.OpFENCE: formSystem, rv32i.OpECALL: formSystem, rv32i.OpEBREAK: formSystem, rv32i.OpNOP: formSystem,

	rv32i.OpCSRRW: formCSRReg, rv32i.OpCSRRS: formCSRReg, rv32i.OpCSRRC: formCSRReg,
	rv32i.OpCSRRWI: formCSRImm, rv32i.OpCSRRSI: formCSRImm, rv32i.OpCSRRCI: formCSRImm,
}

// build dispatches to the per-form builder for op, given the tokens
// following the mnemonic.
func build(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	switch opForm[op] {
	case formR:
		return buildR(mnemonic, op, operands)
	case formIArith:
		return buildIArith(mnemonic, op, operands)
	case formIShift:
		return buildIShift(mnemonic, op, operands)
	case formLoad:
		return buildLoad(mnemonic, op, operands)
	case formStore:
		return buildStore(mnemonic, op, operands)
	case formBranch:
		return buildBranch(mnemonic, op, operands)
	case formUpper:
		return buildUpper(mnemonic, op, operands)
	case formJAL:
		return buildJAL(mnemonic, op, operands)
	case formJALR:
		return buildJALR(mnemonic, op, operands)
	case formSystem:
		return buildSystem(mnemonic, op, operands)
	case formCSRReg:
		return buildCSRReg(mnemonic, op, operands)
	case formCSRImm:
		return buildCSRImm(mnemonic, op, operands)
	default:
		return rv32i.Instruction{}, fmt.Errorf("asm: no builder for op %d", op)
	}
}

func tokenRegister(tok Token) (rv32i.Register, bool) {
	if tok.Kind != TokRegister {
		return 0, false
	}
	return tok.Reg, true
}

func tokenNumber(tok Token) (int32, bool) {
	if tok.Kind != TokNumber {
		return 0, false
	}
	return tok.Value, true
}

func requireRegister(mnemonic string, tok Token, allowPC bool) (rv32i.Register, error) {
	reg, ok := tokenRegister(tok)
	if !ok {
		return 0, newInvalidRegister(tok.Raw)
	}
	if !allowPC && reg == rv32i.PC {
		return 0, newInvalidRegister("pc")
	}
	return reg, nil
}

// buildR handles ADD/SUB/AND/OR/XOR/SLL/SRL/SRA/SLT/SLTU: rd, rs1, rs2.
func buildR(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	if len(operands) != 3 {
		return rv32i.Instruction{}, newWrongArgumentCount(mnemonic, "3 registers", len(operands))
	}
	rd, err := requireRegister(mnemonic, operands[0], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	rs1, err := requireRegister(mnemonic, operands[1], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	rs2, err := requireRegister(mnemonic, operands[2], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	return rv32i.Instruction{Op: op, Rd: rd, Rs1: rs1, Rs2: rs2}, nil
}

// buildIArith handles ADDI/ANDI/ORI/XORI/SLTI/SLTIU: rd, rs1, imm12.
func buildIArith(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	if len(operands) != 3 {
		return rv32i.Instruction{}, newWrongArgumentCount(mnemonic, "2 registers and an immediate", len(operands))
	}
	rd, err := requireRegister(mnemonic, operands[0], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	rs1, err := requireRegister(mnemonic, operands[1], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	val, ok := tokenNumber(operands[2])
	if !ok {
		return rv32i.Instruction{}, newInvalidRegister(operands[2].Raw)
	}
	imm := immediate.New(12)
	if err := imm.SetSigned(val); err != nil {
		return rv32i.Instruction{}, newImmediateOutOfRange(mnemonic, val, imm.SignedMin(), imm.SignedMax())
	}
	return rv32i.Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: imm}, nil
}

// buildIShift handles SLLI/SRLI/SRAI: rd, rs1, shamt in [0, 31].
func buildIShift(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	if len(operands) != 3 {
		return rv32i.Instruction{}, newWrongArgumentCount(mnemonic, "2 registers and a shift amount", len(operands))
	}
	rd, err := requireRegister(mnemonic, operands[0], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	rs1, err := requireRegister(mnemonic, operands[1], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	val, ok := tokenNumber(operands[2])
	if !ok {
		return rv32i.Instruction{}, newInvalidRegister(operands[2].Raw)
	}
	if val < 0 || val > 31 {
		return rv32i.Instruction{}, newImmediateOutOfRange(mnemonic, val, 0, 31)
	}
	imm := immediate.New(12)
	if err := imm.SetUnsigned(uint32(val)); err != nil {
		return rv32i.Instruction{}, newImmediateOutOfRange(mnemonic, val, 0, 31)
	}
	return rv32i.Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: imm}, nil
}

// buildLoad handles LB/LBU/LH/LHU/LW, accepting both "rd, off(base)" and
// the legacy "rd, base, off".
func buildLoad(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	rd, err := requireOperandRegister(mnemonic, operands, 0)
	if err != nil {
		return rv32i.Instruction{}, err
	}

	var base rv32i.Register
	var off int32
	switch len(operands) {
	case 2:
		if operands[1].Kind != TokOffsetRegister {
			return rv32i.Instruction{}, newSyntaxError(fmt.Sprintf("%s expects off(base) as its second operand", mnemonic))
		}
		if operands[1].Reg == rv32i.PC {
			return rv32i.Instruction{}, newInvalidRegister("pc")
		}
		base, off = operands[1].Reg, operands[1].Offset
	case 3:
		base, err = requireRegister(mnemonic, operands[1], false)
		if err != nil {
			return rv32i.Instruction{}, err
		}
		var ok bool
		off, ok = tokenNumber(operands[2])
		if !ok {
			return rv32i.Instruction{}, newInvalidRegister(operands[2].Raw)
		}
	default:
		return rv32i.Instruction{}, newWrongArgumentCount(mnemonic, "rd, off(base) or rd, base, off", len(operands))
	}

	imm := immediate.New(12)
	if err := imm.SetSigned(off); err != nil {
		return rv32i.Instruction{}, newImmediateOutOfRange(mnemonic, off, imm.SignedMin(), imm.SignedMax())
	}
	return rv32i.Instruction{Op: op, Rd: rd, Rs1: base, Imm: imm}, nil
}

// buildStore handles SB/SH/SW, accepting both "rs2, off(base)" and the
// legacy "base, rs2, off".
func buildStore(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	var base, src rv32i.Register
	var off int32
	var err error

	switch len(operands) {
	case 2:
		src, err = requireRegister(mnemonic, operands[0], false)
		if err != nil {
			return rv32i.Instruction{}, err
		}
		if operands[1].Kind != TokOffsetRegister {
			return rv32i.Instruction{}, newSyntaxError(fmt.Sprintf("%s expects off(base) as its second operand", mnemonic))
		}
		if operands[1].Reg == rv32i.PC {
			return rv32i.Instruction{}, newInvalidRegister("pc")
		}
		base, off = operands[1].Reg, operands[1].Offset
	case 3:
		base, err = requireRegister(mnemonic, operands[0], false)
		if err != nil {
			return rv32i.Instruction{}, err
		}
		src, err = requireRegister(mnemonic, operands[1], false)
		if err != nil {
			return rv32i.Instruction{}, err
		}
		var ok bool
		off, ok = tokenNumber(operands[2])
		if !ok {
			return rv32i.Instruction{}, newInvalidRegister(operands[2].Raw)
		}
	default:
		return rv32i.Instruction{}, newWrongArgumentCount(mnemonic, "rs2, off(base) or base, rs2, off", len(operands))
	}

	imm := immediate.New(12)
	if err := imm.SetSigned(off); err != nil {
		return rv32i.Instruction{}, newImmediateOutOfRange(mnemonic, off, imm.SignedMin(), imm.SignedMax())
	}
	return rv32i.Instruction{Op: op, Rs1: base, Rs2: src, Imm: imm}, nil
}

// buildBranch handles BEQ/BNE/BLT/BGE/BLTU/BGEU: rs1, rs2, offset; offset
// must be even and within [-4096, 4094]. The stored Immediate holds
// offset/2, matching the executor's PC + imm*2 branch-target semantics.
func buildBranch(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	if len(operands) != 3 {
		return rv32i.Instruction{}, newWrongArgumentCount(mnemonic, "2 registers and a branch offset", len(operands))
	}
	rs1, err := requireRegister(mnemonic, operands[0], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	rs2, err := requireRegister(mnemonic, operands[1], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	off, ok := tokenNumber(operands[2])
	if !ok {
		return rv32i.Instruction{}, newInvalidRegister(operands[2].Raw)
	}
	if off%2 != 0 {
		return rv32i.Instruction{}, newSyntaxError(fmt.Sprintf("%s offset %d must be even (halfword-aligned)", mnemonic, off))
	}
	if off < -4096 || off > 4094 {
		return rv32i.Instruction{}, newImmediateOutOfRange(mnemonic, off, -4096, 4094)
	}
	imm := immediate.New(12)
	if err := imm.SetSigned(off / 2); err != nil {
		return rv32i.Instruction{}, newImmediateOutOfRange(mnemonic, off, -4096, 4094)
	}
	return rv32i.Instruction{Op: op, Rs1: rs1, Rs2: rs2, Imm: imm}, nil
}

// buildUpper handles LUI/AUIPC: rd, imm20.
func buildUpper(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	if len(operands) != 2 {
		return rv32i.Instruction{}, newWrongArgumentCount(mnemonic, "a register and a 20-bit immediate", len(operands))
	}
	rd, err := requireRegister(mnemonic, operands[0], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	val, ok := tokenNumber(operands[1])
	if !ok {
		return rv32i.Instruction{}, newInvalidRegister(operands[1].Raw)
	}
	imm := immediate.New(20)
	if err := imm.SetSigned(val); err != nil {
		return rv32i.Instruction{}, newImmediateOutOfRange(mnemonic, val, imm.SignedMin(), imm.SignedMax())
	}
	return rv32i.Instruction{Op: op, Rd: rd, Imm: imm}, nil
}

// buildJAL handles JAL: rd, offset; offset must be even and within
// [-1048576, 1048574]. The stored Immediate holds offset/2.
func buildJAL(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	if len(operands) != 2 {
		return rv32i.Instruction{}, newWrongArgumentCount(mnemonic, "a link register and a jump offset", len(operands))
	}
	rd, err := requireRegister(mnemonic, operands[0], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	off, ok := tokenNumber(operands[1])
	if !ok {
		return rv32i.Instruction{}, newInvalidRegister(operands[1].Raw)
	}
	if off%2 != 0 {
		return rv32i.Instruction{}, newSyntaxError(fmt.Sprintf("%s offset %d must be even (halfword-aligned)", mnemonic, off))
	}
	if off < -1048576 || off > 1048574 {
		return rv32i.Instruction{}, newImmediateOutOfRange(mnemonic, off, -1048576, 1048574)
	}
	imm := immediate.New(20)
	if err := imm.SetSigned(off / 2); err != nil {
		return rv32i.Instruction{}, newImmediateOutOfRange(mnemonic, off, -1048576, 1048574)
	}
	return rv32i.Instruction{Op: op, Rd: rd, Imm: imm}, nil
}

// buildJALR handles JALR: rd, rs1, imm12; rs1 is not PC, rd may be X0 or
// any non-PC register.
func buildJALR(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	if len(operands) != 3 {
		return rv32i.Instruction{}, newWrongArgumentCount(mnemonic, "a link register, a base register, and an offset", len(operands))
	}
	rd, err := requireRegister(mnemonic, operands[0], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	rs1, err := requireRegister(mnemonic, operands[1], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	val, ok := tokenNumber(operands[2])
	if !ok {
		return rv32i.Instruction{}, newInvalidRegister(operands[2].Raw)
	}
	imm := immediate.New(12)
	if err := imm.SetSigned(val); err != nil {
		return rv32i.Instruction{}, newImmediateOutOfRange(mnemonic, val, imm.SignedMin(), imm.SignedMax())
	}
	return rv32i.Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: imm}, nil
}

// buildSystem handles FENCE/ECALL/EBREAK: no operands.
func buildSystem(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	if len(operands) != 0 {
		return rv32i.Instruction{}, newWrongArgumentCount(mnemonic, "no operands", len(operands))
	}
	return rv32i.Instruction{Op: op}, nil
}

// buildCSRReg handles CSRRW/CSRRS/CSRRC: rd, csr12, rs1.
func buildCSRReg(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	if len(operands) != 3 {
		return rv32i.Instruction{}, newWrongArgumentCount(mnemonic, "a register, a CSR address, and a register", len(operands))
	}
	rd, err := requireRegister(mnemonic, operands[0], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	csrAddr, err := requireCSRAddr(mnemonic, operands[1])
	if err != nil {
		return rv32i.Instruction{}, err
	}
	rs1, err := requireRegister(mnemonic, operands[2], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	return rv32i.Instruction{Op: op, Rd: rd, Rs1: rs1, CSRAddr: csrAddr}, nil
}

// buildCSRImm handles CSRRWI/CSRRSI/CSRRCI: rd, csr12, uimm5.
func buildCSRImm(mnemonic string, op rv32i.Op, operands []Token) (rv32i.Instruction, error) {
	if len(operands) != 3 {
		return rv32i.Instruction{}, newWrongArgumentCount(mnemonic, "a register, a CSR address, and a 5-bit immediate", len(operands))
	}
	rd, err := requireRegister(mnemonic, operands[0], false)
	if err != nil {
		return rv32i.Instruction{}, err
	}
	csrAddr, err := requireCSRAddr(mnemonic, operands[1])
	if err != nil {
		return rv32i.Instruction{}, err
	}
	uimm, ok := tokenNumber(operands[2])
	if !ok {
		return rv32i.Instruction{}, newInvalidRegister(operands[2].Raw)
	}
	if uimm < 0 || uimm > 31 {
		return rv32i.Instruction{}, newImmediateOutOfRange(mnemonic, uimm, 0, 31)
	}
	return rv32i.NewCSRImmInstruction(op, rd, csrAddr, uint32(uimm)), nil
}

func requireCSRAddr(mnemonic string, tok Token) (uint16, error) {
	val, ok := tokenNumber(tok)
	if !ok {
		return 0, newInvalidRegister(tok.Raw)
	}
	if val < 0 || val > 4095 {
		return 0, newImmediateOutOfRange(mnemonic, val, 0, 4095)
	}
	return uint16(val), nil
}

func requireOperandRegister(mnemonic string, operands []Token, index int) (rv32i.Register, error) {
	if index >= len(operands) {
		return 0, newWrongArgumentCount(mnemonic, "more operands", len(operands))
	}
	return requireRegister(mnemonic, operands[index], false)
}
