package rv32i

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandMV(t *testing.T) {
	instrs, err := PseudoInstruction{Op: PseudoMV, Rd: X1, Rs: X2}.Expand()
	require.NoError(t, err)
	require.Len(t, instrs, 1)
	assert.Equal(t, OpADDI, instrs[0].Op)
	assert.Equal(t, int32(0), instrs[0].Imm.AsI32())
}

func TestExpandSNEZ(t *testing.T) {
	instrs, err := PseudoInstruction{Op: PseudoSNEZ, Rd: X1, Rs: X2}.Expand()
	require.NoError(t, err)
	require.Len(t, instrs, 1)
	assert.Equal(t, Instruction{Op: OpSLTU, Rd: X1, Rs1: X0, Rs2: X2}, instrs[0])
}

func TestExpandJ(t *testing.T) {
	instrs, err := PseudoInstruction{Op: PseudoJ, Value: 100}.Expand()
	require.NoError(t, err)
	require.Len(t, instrs, 1)
	assert.Equal(t, OpJAL, instrs[0].Op)
	assert.Equal(t, X0, instrs[0].Rd)
	assert.Equal(t, int32(50), instrs[0].Imm.AsI32())
}

func TestExpandJOddOffsetErrors(t *testing.T) {
	_, err := PseudoInstruction{Op: PseudoJ, Value: 101}.Expand()
	require.Error(t, err)
}

func TestExpandLISmallFitsInOneADDI(t *testing.T) {
	instrs, err := PseudoInstruction{Op: PseudoLI, Rd: X1, Value: 2047}.Expand()
	require.NoError(t, err)
	require.Len(t, instrs, 1)
	assert.Equal(t, OpADDI, instrs[0].Op)
}

func TestExpandLILargeValueE6(t *testing.T) {
	instrs, err := PseudoInstruction{Op: PseudoLI, Rd: X1, Value: 0x12345}.Expand()
	require.NoError(t, err)
	require.Len(t, instrs, 2)
	assert.Equal(t, OpLUI, instrs[0].Op)
	assert.Equal(t, uint32(0x12), instrs[0].Imm.AsU32())
	assert.Equal(t, OpADDI, instrs[1].Op)
	assert.Equal(t, int32(0x345), instrs[1].Imm.AsI32())

	cpu, err := NewCPU(Config{})
	require.NoError(t, err)
	for _, in := range instrs {
		_, err := cpu.Execute(in)
		require.NoError(t, err)
	}
	assert.Equal(t, uint32(0x12345), cpu.GetRegister(X1))
}

func TestExpandLINoLowerInstructionWhenLowerIsZero(t *testing.T) {
	instrs, err := PseudoInstruction{Op: PseudoLI, Rd: X1, Value: 0x12000}.Expand()
	require.NoError(t, err)
	require.Len(t, instrs, 1)
	assert.Equal(t, OpLUI, instrs[0].Op)
}
