package rv32i

import "github.com/go-rv32i/repl/pkg/immediate"

// Op names one RV32I or Zicsr instruction variant, or NOP.
type Op uint8

// The full recognized mnemonic set. Order matches no particular encoding;
// these are never serialized, only switched on.
const (
	OpNOP Op = iota

	// R-type
	OpADD
	OpSUB
	OpAND
	OpOR
	OpXOR
	OpSLL
	OpSRL
	OpSRA
	OpSLT
	OpSLTU

	// I-type arithmetic/logic
	OpADDI
	OpANDI
	OpORI
	OpXORI
	OpSLTI
	OpSLTIU

	// I-type shift
	OpSLLI
	OpSRLI
	OpSRAI

	// I-type loads
	OpLB
	OpLBU
	OpLH
	OpLHU
	OpLW

	// S-type stores
	OpSB
	OpSH
	OpSW

	// B-type
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// J-type / JALR
	OpJAL
	OpJALR

	// U-type
	OpLUI
	OpAUIPC

	// System
	OpFENCE
	OpECALL
	OpEBREAK

	// Zicsr
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI
)

var mnemonics = map[Op]string{
	OpNOP:    "NOP",
	OpADD:    "ADD", OpSUB: "SUB", OpAND: "AND", OpOR: "OR", OpXOR: "XOR",
	OpSLL: "SLL", OpSRL: "SRL", OpSRA: "SRA", OpSLT: "SLT", OpSLTU: "SLTU",
	OpADDI: "ADDI", OpANDI: "ANDI", OpORI: "ORI", OpXORI: "XORI",
	OpSLTI: "SLTI", OpSLTIU: "SLTIU",
	OpSLLI: "SLLI", OpSRLI: "SRLI", OpSRAI: "SRAI",
	OpLB: "LB", OpLBU: "LBU", OpLH: "LH", OpLHU: "LHU", OpLW: "LW",
	OpSB: "SB", OpSH: "SH", OpSW: "SW",
	OpBEQ: "BEQ", OpBNE: "BNE", OpBLT: "BLT", OpBGE: "BGE", OpBLTU: "BLTU", OpBGEU: "BGEU",
	OpJAL: "JAL", OpJALR: "JALR",
	OpLUI: "LUI", OpAUIPC: "AUIPC",
	OpFENCE: "FENCE", OpECALL: "ECALL", OpEBREAK: "EBREAK",
	OpCSRRW: "CSRRW", OpCSRRS: "CSRRS", OpCSRRC: "CSRRC",
	OpCSRRWI: "CSRRWI", OpCSRRSI: "CSRRSI", OpCSRRCI: "CSRRCI",
}

// mnemonicToOp is the reverse of mnemonics, built once at init time; used
// by the parser and by fuzzy-suggestion.
var mnemonicToOp = func() map[string]Op {
	m := make(map[string]Op, len(mnemonics))
	for op, name := range mnemonics {
		m[name] = op
	}
	return m
}()

// OpByMnemonic resolves an uppercase mnemonic to its Op. ok is false for
// pseudo-instruction mnemonics and unknown words.
func OpByMnemonic(name string) (op Op, ok bool) {
	op, ok = mnemonicToOp[name]
	return op, ok
}

// Mnemonics returns every hardware mnemonic recognized by OpByMnemonic,
// used by fuzzy-suggestion to compute edit distances.
func Mnemonics() []string {
	out := make([]string, 0, len(mnemonics))
	for _, name := range mnemonics {
		out = append(out, name)
	}
	return out
}

// EncodedLength is the fixed instruction width in bytes: every RV32I
// instruction occupies one 32-bit word. Used only to advance PC; no
// instruction is ever serialized to a binary encoding.
const EncodedLength = 4

// Instruction is a decoded RV32I or Zicsr instruction: one flat record
// rather than a separate struct per R/I/S/B/U/J format, since every
// hardware mnemonic needs at most two source registers, one destination
// register, and one immediate. One flat record serves as the tagged
// union's payload and Op is the tag. CSRRWI/CSRRSI/CSRRCI store their
// 5-bit unsigned immediate in Rs1 as a register index (see CSRUimm).
type Instruction struct {
	Op       Op
	Rd       Register
	Rs1      Register
	Rs2      Register
	Imm      immediate.Immediate
	CSRAddr  uint16 // valid only for CSRRW/CSRRS/CSRRC/CSRRWI/CSRRSI/CSRRCI
	isCSRImm bool   // true for the *I variants: Rs1 carries a uimm5, not a register
}

// Mnemonic returns the instruction's canonical uppercase name, used by
// interpreter-level history labeling.
func (in Instruction) Mnemonic() string {
	return mnemonics[in.Op]
}

// CSRUimm returns the 5-bit immediate encoded in Rs1 for a CSRRWI/CSRRSI/
// CSRRCI instruction. Callers must not treat Rs1 as a register reference
// for these three ops.
func (in Instruction) CSRUimm() uint32 {
	return uint32(in.Rs1) & 0x1F
}

// IsCSRImmediateForm reports whether Rs1 carries a uimm5 rather than a
// register reference.
func (in Instruction) IsCSRImmediateForm() bool {
	return in.isCSRImm
}

// NewCSRImmInstruction builds a CSRRWI/CSRRSI/CSRRCI instruction, encoding
// uimm in the Rs1 slot as the spec's CSR-immediate-encoding note requires.
func NewCSRImmInstruction(op Op, rd Register, csrAddr uint16, uimm uint32) Instruction {
	return Instruction{
		Op:       op,
		Rd:       rd,
		Rs1:      Register(uimm & 0x1F),
		CSRAddr:  csrAddr,
		isCSRImm: true,
	}
}
