package asm

import (
	"fmt"
	"strings"

	"github.com/go-rv32i/repl/pkg/rv32i"
)

// Parse turns one input line into the hardware instruction(s) it denotes:
// a single Instruction for a hardware mnemonic, or the 1-2 instructions a
// pseudo-instruction expands to. REPL commands (lines starting with "/")
// and bare register-inspection tokens (a lone register name, with nothing
// else on the line) are rejected here as syntax errors so the caller can
// route them to the REPL's own command dispatch instead.
func Parse(line string) ([]rv32i.Instruction, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, newSyntaxError("empty input")
	}
	if strings.HasPrefix(trimmed, "/") {
		return nil, newSyntaxError("REPL commands are not assembly instructions")
	}

	words := Normalize(trimmed)
	if len(words) == 0 {
		return nil, newSyntaxError("empty input")
	}
	if len(words) == 1 {
		if _, ok := rv32i.ParseRegister(words[0]); ok {
			return nil, newSyntaxError("a bare register name is not an instruction; use the REPL's register-inspection command instead")
		}
	}

	tokens := Tokenize(words)
	head, operands := tokens[0], tokens[1:]

	switch head.Kind {
	case TokInstruction:
		in, err := build(head.Raw, head.Op, operands)
		if err != nil {
			return nil, err
		}
		return []rv32i.Instruction{in}, nil
	case TokPseudoInstruction:
		return parsePseudo(head, operands)
	default:
		return nil, newUnknownInstruction(head.Raw, Suggest(head.Raw))
	}
}

// parsePseudo builds the PseudoInstruction denoted by head and its
// operands, then expands it into its 1-2 underlying hardware instructions.
func parsePseudo(head Token, operands []Token) ([]rv32i.Instruction, error) {
	mnemonic := head.Raw
	pin, err := buildPseudo(mnemonic, head.PseudoOp, operands)
	if err != nil {
		return nil, err
	}
	instrs, err := pin.Expand()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pin.Mnemonic(), err)
	}
	return instrs, nil
}

// buildPseudo validates operands for each pseudo-instruction shape and
// constructs the PseudoInstruction to expand. Shapes mirror pseudo.go's
// Expand switch: MV/NOT/SEQZ/SNEZ take rd, rs; RET takes nothing; J takes
// an offset; JR takes a single register; LI takes rd, value.
func buildPseudo(mnemonic string, op rv32i.PseudoOp, operands []Token) (rv32i.PseudoInstruction, error) {
	switch op {
	case rv32i.PseudoMV, rv32i.PseudoNOT, rv32i.PseudoSEQZ, rv32i.PseudoSNEZ:
		if len(operands) != 2 {
			return rv32i.PseudoInstruction{}, newWrongArgumentCount(mnemonic, "2 registers", len(operands))
		}
		rd, err := requireRegister(mnemonic, operands[0], false)
		if err != nil {
			return rv32i.PseudoInstruction{}, err
		}
		rs, err := requireRegister(mnemonic, operands[1], false)
		if err != nil {
			return rv32i.PseudoInstruction{}, err
		}
		return rv32i.PseudoInstruction{Op: op, Rd: rd, Rs: rs}, nil

	case rv32i.PseudoJ:
		if len(operands) != 1 {
			return rv32i.PseudoInstruction{}, newWrongArgumentCount(mnemonic, "a jump offset", len(operands))
		}
		val, ok := tokenNumber(operands[0])
		if !ok {
			return rv32i.PseudoInstruction{}, newInvalidRegister(operands[0].Raw)
		}
		return rv32i.PseudoInstruction{Op: op, Value: val}, nil

	case rv32i.PseudoJR:
		if len(operands) != 1 {
			return rv32i.PseudoInstruction{}, newWrongArgumentCount(mnemonic, "a register", len(operands))
		}
		rs, err := requireRegister(mnemonic, operands[0], false)
		if err != nil {
			return rv32i.PseudoInstruction{}, err
		}
		return rv32i.PseudoInstruction{Op: op, Rs: rs}, nil

	case rv32i.PseudoRET:
		if len(operands) != 0 {
			return rv32i.PseudoInstruction{}, newWrongArgumentCount(mnemonic, "no operands", len(operands))
		}
		return rv32i.PseudoInstruction{Op: op}, nil

	case rv32i.PseudoLI:
		if len(operands) != 2 {
			return rv32i.PseudoInstruction{}, newWrongArgumentCount(mnemonic, "a register and a value", len(operands))
		}
		rd, err := requireRegister(mnemonic, operands[0], false)
		if err != nil {
			return rv32i.PseudoInstruction{}, err
		}
		val, ok := tokenNumber(operands[1])
		if !ok {
			return rv32i.PseudoInstruction{}, newInvalidRegister(operands[1].Raw)
		}
		return rv32i.PseudoInstruction{Op: op, Rd: rd, Value: val}, nil

	default:
		return rv32i.PseudoInstruction{}, newSyntaxError("unrecognized pseudo-instruction")
	}
}
