package asm

import (
	"strconv"
	"strings"

	"github.com/go-rv32i/repl/pkg/rv32i"
)

// Normalize trims the line, uppercases it, treats commas as whitespace,
// and rejoins any "N(REG)" token that whitespace split across multiple
// words (e.g. "100( X1 )") into one word, by scanning forward from an
// unmatched "(" until a word containing ")" is found.
func Normalize(line string) []string {
	line = strings.ToUpper(strings.TrimSpace(line))
	line = strings.ReplaceAll(line, ",", " ")
	raw := strings.Fields(line)

	words := make([]string, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		w := raw[i]
		if strings.Contains(w, "(") && !strings.Contains(w, ")") {
			joined := w
			i++
			for i < len(raw) {
				joined += raw[i]
				if strings.Contains(raw[i], ")") {
					break
				}
				i++
			}
			words = append(words, joined)
			continue
		}
		words = append(words, w)
	}
	return words
}

// TokenKind discriminates the six shapes a normalized word can take.
type TokenKind uint8

const (
	TokOffsetRegister TokenKind = iota
	TokInstruction
	TokPseudoInstruction
	TokRegister
	TokNumber
	TokUnknown
)

// Token is the classified form of one normalized word. CSR symbolic
// names classify as TokNumber (their 12-bit address), since every
// operand slot that accepts a CSR name also accepts a literal number.
type Token struct {
	Kind     TokenKind
	Raw      string
	Offset   int32       // TokOffsetRegister
	Reg      rv32i.Register // TokOffsetRegister, TokRegister
	Op       rv32i.Op       // TokInstruction
	PseudoOp rv32i.PseudoOp // TokPseudoInstruction
	Value    int32       // TokNumber
}

// Tokenize classifies every normalized word per the parser's dispatch
// order: offset(register), instruction mnemonic, pseudo-instruction
// mnemonic, CSR symbolic name, register name, number literal.
func Tokenize(words []string) []Token {
	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = classify(w)
	}
	return tokens
}

func classify(word string) Token {
	if tok, ok := classifyOffsetRegister(word); ok {
		return tok
	}
	if op, ok := rv32i.OpByMnemonic(word); ok {
		return Token{Kind: TokInstruction, Raw: word, Op: op}
	}
	if op, ok := rv32i.PseudoOpByMnemonic(word); ok {
		return Token{Kind: TokPseudoInstruction, Raw: word, PseudoOp: op}
	}
	if addr, ok := rv32i.CSRAddrByName(word); ok {
		return Token{Kind: TokNumber, Raw: word, Value: int32(addr)}
	}
	if reg, ok := rv32i.ParseRegister(word); ok {
		return Token{Kind: TokRegister, Raw: word, Reg: reg}
	}
	if value, ok := parseNumber(word); ok {
		return Token{Kind: TokNumber, Raw: word, Value: value}
	}
	return Token{Kind: TokUnknown, Raw: word}
}

// classifyOffsetRegister recognizes "N(REG)" as a single token.
func classifyOffsetRegister(word string) (Token, bool) {
	open := strings.IndexByte(word, '(')
	if open <= 0 || !strings.HasSuffix(word, ")") {
		return Token{}, false
	}
	numPart := word[:open]
	regPart := word[open+1 : len(word)-1]

	offset, ok := parseNumber(numPart)
	if !ok {
		return Token{}, false
	}
	reg, ok := rv32i.ParseRegister(regPart)
	if !ok {
		return Token{}, false
	}
	return Token{Kind: TokOffsetRegister, Raw: word, Offset: offset, Reg: reg}, true
}

// parseNumber parses a decimal, "0X"-prefixed hex, or "0B"-prefixed
// binary literal, with an optional leading "-", into a 32-bit value.
func parseNumber(word string) (int32, bool) {
	if word == "" {
		return 0, false
	}
	negative := false
	s := word
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	var (
		u   uint64
		err error
	)
	switch {
	case strings.HasPrefix(s, "0X"):
		u, err = strconv.ParseUint(s[2:], 16, 32)
	case strings.HasPrefix(s, "0B"):
		u, err = strconv.ParseUint(s[2:], 2, 32)
	default:
		u, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, false
	}
	v := int32(uint32(u))
	if negative {
		v = -v
	}
	return v, true
}
