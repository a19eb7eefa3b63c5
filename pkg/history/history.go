// Package history implements the bounded, position-tracked undo/redo
// sequence of rv32i.StateDelta entries that backs the REPL's
// previous_state/next_state navigation.
package history

import (
	"errors"

	"github.com/go-rv32i/repl/pkg/rv32i"
)

// DefaultBound is the default maximum number of retained entries.
const DefaultBound = 1000

// ErrAtBeginning is returned when GetPreviousDelta is called with nothing
// left to undo.
var ErrAtBeginning = errors.New("history: at beginning")

// ErrAtEnd is returned when GetNextDelta is called with nothing left to
// redo.
var ErrAtEnd = errors.New("history: at end")

// History is a bounded ordered sequence of StateDelta with a cursor pos
// that names the boundary between applied and unapplied deltas:
// pos == len means "caught up to the latest state." A bound of 0 disables
// recording entirely (Record becomes a no-op).
type History struct {
	bound   int
	entries []rv32i.StateDelta
	pos     int
}

// New constructs a History with the given bound. A non-positive bound
// disables recording.
func New(bound int) *History {
	if bound < 0 {
		bound = 0
	}
	return &History{bound: bound}
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Pos returns the current cursor position.
func (h *History) Pos() int {
	return h.pos
}

// Record appends delta, truncating any "future" (entries past pos) first
// so a new execution after undo branches the history rather than
// resurrecting a stale redo path. If recording pushes the sequence past
// its bound, the oldest entry is dropped and pos is clamped to match.
func (h *History) Record(delta rv32i.StateDelta) {
	if h.bound == 0 {
		return
	}
	if h.pos < len(h.entries) {
		h.entries = h.entries[:h.pos]
	}
	h.entries = append(h.entries, delta)
	if len(h.entries) > h.bound {
		h.entries = h.entries[1:]
		if h.pos > len(h.entries) {
			h.pos = len(h.entries)
		}
	}
	h.pos = len(h.entries)
}

// GetPreviousDelta decrements pos and returns the delta now at pos, or
// ErrAtBeginning if pos is already 0.
func (h *History) GetPreviousDelta() (rv32i.StateDelta, error) {
	if h.pos == 0 {
		return rv32i.StateDelta{}, ErrAtBeginning
	}
	h.pos--
	return h.entries[h.pos], nil
}

// GetNextDelta returns the delta at pos and increments pos, or ErrAtEnd if
// pos has caught up to len.
func (h *History) GetNextDelta() (rv32i.StateDelta, error) {
	if h.pos == len(h.entries) {
		return rv32i.StateDelta{}, ErrAtEnd
	}
	delta := h.entries[h.pos]
	h.pos++
	return delta, nil
}

// Clear empties the sequence and resets pos to 0.
func (h *History) Clear() {
	h.entries = nil
	h.pos = 0
}
