package asm

import (
	"sort"
	"strings"

	"github.com/go-rv32i/repl/pkg/rv32i"
)

// maxSuggestionDistance bounds how far a word may be from a known
// mnemonic before it is no longer considered a plausible typo.
const maxSuggestionDistance = 3

// foreignMnemonicHints maps common non-RISC-V assembly mnemonics to a
// didactic RISC-V equivalent, overriding whatever the Levenshtein
// distance would otherwise suggest.
var foreignMnemonicHints = map[string]string{
	"JUMP":   "JAL or J",
	"MOV":    "MV or ADDI",
	"LOAD":   "LW, LH, or LB",
	"STORE":  "SW, SH, or SB",
	"BRANCH": "BEQ, BNE, BLT, BGE, BLTU, or BGEU",
	"RETURN": "RET",
	"PUSH":   "SW with a manually adjusted stack pointer (no hardware PUSH)",
	"POP":    "LW with a manually adjusted stack pointer (no hardware POP)",
	"CALL":   "JAL with a link register (no hardware CALL)",
	"CMP":    "SLT, SLTU, BEQ, or BNE",
}

// Suggest returns a hint for an unrecognized first word: the foreign-
// mnemonic table takes priority; otherwise the closest known mnemonic(s)
// within maxSuggestionDistance, joined with " or " when tied. Returns ""
// when nothing is close enough to be useful.
func Suggest(word string) string {
	if hint, ok := foreignMnemonicHints[word]; ok {
		return hint
	}

	known := append(rv32i.Mnemonics(), rv32i.PseudoMnemonics()...)
	best := maxSuggestionDistance + 1
	var closest []string
	for _, name := range known {
		d := levenshtein(word, name)
		switch {
		case d < best:
			best = d
			closest = []string{name}
		case d == best:
			closest = append(closest, name)
		}
	}
	if best > maxSuggestionDistance || len(closest) == 0 {
		return ""
	}
	sort.Strings(closest)
	return strings.Join(closest, " or ")
}

// levenshtein computes case-sensitive edit distance via the classic
// dynamic-programming table; callers pass already-uppercased strings.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	rows, cols := len(ra)+1, len(rb)+1

	prev := make([]int, cols)
	curr := make([]int, cols)
	for j := 0; j < cols; j++ {
		prev[j] = j
	}

	for i := 1; i < rows; i++ {
		curr[0] = i
		for j := 1; j < cols; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[cols-1]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
