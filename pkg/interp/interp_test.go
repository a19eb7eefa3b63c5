package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-rv32i/repl/pkg/history"
	"github.com/go-rv32i/repl/pkg/rv32i"
)

func newInterp(t *testing.T) *Interpreter {
	t.Helper()
	in, err := New(Config{HistoryBound: history.DefaultBound})
	require.NoError(t, err)
	return in
}

func TestInterpretE1AndUndoAll(t *testing.T) {
	in := newInterp(t)
	for _, line := range []string{"ADDI x1, x0, 10", "ADDI x2, x0, 20", "ADD x3, x1, x2"} {
		_, err := in.Interpret(line)
		require.NoError(t, err)
	}
	assert.Equal(t, uint32(30), in.CPU().GetRegister(rv32i.Register(3)))
	assert.Equal(t, uint32(12), in.CPU().PC())

	_, err := in.PreviousState()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), in.CPU().GetRegister(rv32i.Register(3)))
	assert.Equal(t, uint32(8), in.CPU().PC())

	_, err = in.PreviousState()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), in.CPU().GetRegister(rv32i.Register(2)))
	assert.Equal(t, uint32(4), in.CPU().PC())

	_, err = in.PreviousState()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), in.CPU().GetRegister(rv32i.Register(1)))
	assert.Equal(t, uint32(0), in.CPU().PC())

	_, err = in.PreviousState()
	assert.ErrorIs(t, err, ErrAtBeginning)
}

func TestInterpretE2MemoryRoundTrip(t *testing.T) {
	in := newInterp(t)
	for _, line := range []string{"ADDI x1, x0, 1024", "LI x2, 0xABCD", "SW x2, 0(x1)", "LW x3, 0(x1)"} {
		_, err := in.Interpret(line)
		require.NoError(t, err)
	}
	assert.Equal(t, uint32(1024), in.CPU().GetRegister(rv32i.Register(1)))
	assert.Equal(t, uint32(0xABCD), in.CPU().GetRegister(rv32i.Register(2)))
	assert.Equal(t, uint32(0xABCD), in.CPU().GetRegister(rv32i.Register(3)))

	_, err := in.PreviousState()
	require.NoError(t, err)
	_, err = in.PreviousState()
	require.NoError(t, err)

	_, err = in.Interpret("LW x4, 0(x1)")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), in.CPU().GetRegister(rv32i.Register(4)))
}

func TestInterpretE4MisalignedJumpTrapLeavesStateUnchanged(t *testing.T) {
	in := newInterp(t)
	_, err := in.Interpret("ADDI x1, x0, 0x103")
	require.NoError(t, err)

	pcBefore := in.CPU().PC()
	_, err = in.Interpret("JALR x0, x1, 0")
	require.Error(t, err)
	var cpuErr *rv32i.CpuError
	require.ErrorAs(t, err, &cpuErr)
	assert.Equal(t, rv32i.MisalignedJump, cpuErr.Kind)
	assert.Equal(t, uint32(0x102), cpuErr.Addr)
	assert.Equal(t, pcBefore, in.CPU().PC())

	_, err = in.PreviousState()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), in.CPU().GetRegister(rv32i.Register(1)))
	_, err = in.PreviousState()
	assert.ErrorIs(t, err, ErrAtBeginning)
}

func TestInterpretE5CSRAtomicSwap(t *testing.T) {
	in := newInterp(t)
	_, err := in.Interpret("LI x10, 0x55555555")
	require.NoError(t, err)
	_, err = in.CPU().Apply(rv32i.Modify{CSRChanges: []rv32i.CSRValue{{Addr: rv32i.CSRMscratch, Value: 0xAAAAAAAA}}})
	require.NoError(t, err)

	_, err = in.Interpret("CSRRW x10, MSCRATCH, x10")
	require.NoError(t, err)

	assert.Equal(t, uint32(0xAAAAAAAA), in.CPU().GetRegister(rv32i.Register(10)))
	assert.Equal(t, uint32(0x55555555), in.CPU().CSR().Get(rv32i.CSRMscratch))
}

func TestInterpretE6LIExpansionRecordsTwoHistoryEntries(t *testing.T) {
	in := newInterp(t)
	_, err := in.Interpret("LI x1, 0x12345")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345), in.CPU().GetRegister(rv32i.Register(1)))

	_, err = in.PreviousState()
	require.NoError(t, err)
	_, err = in.PreviousState()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), in.CPU().GetRegister(rv32i.Register(1)))

	_, err = in.PreviousState()
	assert.ErrorIs(t, err, ErrAtBeginning)
}

func TestInterpretBatchSplitsOnSemicolon(t *testing.T) {
	in := newInterp(t)
	_, err := in.InterpretBatch("ADDI x1, x0, 1; ADDI x2, x0, 2; ADD x3, x1, x2")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), in.CPU().GetRegister(rv32i.Register(3)))
}

func TestResetClearsStateAndHistory(t *testing.T) {
	in := newInterp(t)
	_, err := in.Interpret("ADDI x1, x0, 10")
	require.NoError(t, err)
	in.Reset()
	assert.Equal(t, uint32(0), in.CPU().GetRegister(rv32i.Register(1)))
	_, err = in.PreviousState()
	assert.ErrorIs(t, err, ErrAtBeginning)
}
