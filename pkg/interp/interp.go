// Package interp wires the parser, the CPU, and the history navigator
// into the single facade the REPL front end drives.
package interp

import (
	"errors"
	"strings"

	"github.com/go-rv32i/repl/pkg/asm"
	"github.com/go-rv32i/repl/pkg/history"
	"github.com/go-rv32i/repl/pkg/rv32i"
)

// Config configures Interpreter construction.
type Config struct {
	// MemorySize is forwarded to rv32i.NewCPU; 0 means its default.
	MemorySize uint32
	// HistoryBound is forwarded to history.New; 0 disables recording.
	HistoryBound int
}

// Interpreter holds one CPU and one History, and is the only thing a
// front end needs to drive a session: parse a line, execute it, step
// backward and forward through what happened.
type Interpreter struct {
	cpu     *rv32i.CPU
	history *history.History
}

// New constructs an Interpreter per cfg.
func New(cfg Config) (*Interpreter, error) {
	cpu, err := rv32i.NewCPU(rv32i.Config{MemorySize: cfg.MemorySize})
	if err != nil {
		return nil, err
	}
	return &Interpreter{cpu: cpu, history: history.New(cfg.HistoryBound)}, nil
}

// CPU exposes the underlying CPU for read-only state inspection (register
// dump, memory dump, CSR dump); all mutation must go through Interpreter.
func (in *Interpreter) CPU() *rv32i.CPU {
	return in.cpu
}

// Execute runs one already-decoded instruction, records the resulting
// delta in history, and returns it. A trap leaves state and history
// unchanged.
func (in *Interpreter) Execute(instr rv32i.Instruction) (rv32i.StateDelta, error) {
	delta, err := in.cpu.Execute(instr)
	if err != nil {
		return rv32i.StateDelta{}, err
	}
	in.history.Record(delta)
	return delta, nil
}

// Interpret parses one line and executes the instruction(s) it denotes,
// in order. A hardware mnemonic yields exactly one executed instruction;
// a pseudo-instruction yields 1-2, each recorded in history separately.
// The returned deltas concatenate for display as a human-readable change
// summary; they are not a single atomic unit for navigation purposes.
func (in *Interpreter) Interpret(line string) ([]rv32i.StateDelta, error) {
	instrs, err := asm.Parse(line)
	if err != nil {
		return nil, err
	}
	deltas := make([]rv32i.StateDelta, 0, len(instrs))
	for _, instr := range instrs {
		delta, err := in.Execute(instr)
		if err != nil {
			return deltas, err
		}
		deltas = append(deltas, delta)
	}
	return deltas, nil
}

// BatchError wraps a clause-level failure from InterpretBatch with the
// 0-indexed clause position that failed, so a front end can point at the
// offending part of a ";"-separated batch.
type BatchError struct {
	Clause int
	Err    error
}

func (e *BatchError) Error() string {
	return e.Err.Error()
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// InterpretBatch splits line on ";" and interprets each non-empty clause
// in order, stopping at the first error and returning everything executed
// so far alongside a *BatchError naming which 0-indexed clause failed.
func (in *Interpreter) InterpretBatch(line string) ([]rv32i.StateDelta, error) {
	var all []rv32i.StateDelta
	clause := 0
	for _, segment := range strings.Split(line, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		deltas, err := in.Interpret(segment)
		all = append(all, deltas...)
		if err != nil {
			return all, &BatchError{Clause: clause, Err: err}
		}
		clause++
	}
	return all, nil
}

// PreviousState undoes the most recently applied delta, returning the
// resulting observed StateDelta (describing the rollback itself).
func (in *Interpreter) PreviousState() (rv32i.StateDelta, error) {
	delta, err := in.history.GetPreviousDelta()
	if err != nil {
		if errors.Is(err, history.ErrAtBeginning) {
			return rv32i.StateDelta{}, ErrAtBeginning
		}
		return rv32i.StateDelta{}, err
	}
	return in.cpu.Apply(delta.ToReverseModify())
}

// NextState redoes the next delta, symmetric with PreviousState.
func (in *Interpreter) NextState() (rv32i.StateDelta, error) {
	delta, err := in.history.GetNextDelta()
	if err != nil {
		if errors.Is(err, history.ErrAtEnd) {
			return rv32i.StateDelta{}, ErrAtEnd
		}
		return rv32i.StateDelta{}, err
	}
	return in.cpu.Apply(delta.ToForwardModify())
}

// Reset returns the CPU to its initial state and clears history.
func (in *Interpreter) Reset() {
	in.cpu.Reset()
	in.history.Clear()
}
