package rv32i

import (
	"errors"
	"testing"

	"github.com/go-rv32i/repl/pkg/immediate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCPU(t *testing.T) *CPU {
	t.Helper()
	cpu, err := NewCPU(Config{})
	require.NoError(t, err)
	return cpu
}

func addi(rd, rs1 Register, value int32) Instruction {
	imm := immediate.New(12)
	if err := imm.SetSigned(value); err != nil {
		panic(err)
	}
	return Instruction{Op: OpADDI, Rd: rd, Rs1: rs1, Imm: imm}
}

func TestExecuteBasicArithmetic(t *testing.T) {
	cpu := newTestCPU(t)

	_, err := cpu.Execute(addi(X1, X0, 10))
	require.NoError(t, err)
	_, err = cpu.Execute(addi(X2, X0, 20))
	require.NoError(t, err)
	d, err := cpu.Execute(Instruction{Op: OpADD, Rd: X3, Rs1: X1, Rs2: X2})
	require.NoError(t, err)

	assert.Equal(t, uint32(10), cpu.GetRegister(X1))
	assert.Equal(t, uint32(20), cpu.GetRegister(X2))
	assert.Equal(t, uint32(30), cpu.GetRegister(X3))
	assert.Equal(t, uint32(12), cpu.PC())
	assert.Equal(t, []RegisterChange{{Reg: X3, Old: 0, New: 30}}, d.RegisterChanges)
	assert.Equal(t, "ADD", d.Mnemonic)
}

func TestExecuteDeltaCarriesMnemonicApplyDoesNot(t *testing.T) {
	cpu := newTestCPU(t)

	d, err := cpu.Execute(addi(X1, X0, 5))
	require.NoError(t, err)
	assert.Equal(t, "ADDI", d.Mnemonic)

	reverted, err := cpu.Apply(d.ToReverseModify())
	require.NoError(t, err)
	assert.Equal(t, "", reverted.Mnemonic)
}

func TestExecuteDeltaRoundTrip(t *testing.T) {
	cpu := newTestCPU(t)
	d, err := cpu.Execute(addi(X1, X0, 10))
	require.NoError(t, err)

	_, err = cpu.Apply(d.ToReverseModify())
	require.NoError(t, err)
	assert.Equal(t, uint32(0), cpu.GetRegister(X1))
	assert.Equal(t, uint32(0), cpu.PC())

	_, err = cpu.Apply(d.ToForwardModify())
	require.NoError(t, err)
	assert.Equal(t, uint32(10), cpu.GetRegister(X1))
	assert.Equal(t, uint32(4), cpu.PC())
}

func TestExecuteX0NeverChanges(t *testing.T) {
	cpu := newTestCPU(t)
	d, err := cpu.Execute(addi(X0, X0, 5))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), cpu.GetRegister(X0))
	assert.Empty(t, d.RegisterChanges)
}

func TestExecuteXORISignExtendedNegativeOne(t *testing.T) {
	cpu := newTestCPU(t)
	imm := immediate.New(12)
	require.NoError(t, imm.SetSigned(-1))
	_, err := cpu.Execute(Instruction{Op: OpXORI, Rd: X1, Rs1: X0, Imm: imm})
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFFF), cpu.GetRegister(X1))
}

func TestExecuteMemoryRoundTrip(t *testing.T) {
	cpu := newTestCPU(t)

	_, err := cpu.Execute(addi(X1, X0, 1024))
	require.NoError(t, err)

	// x2 <- 0xABCD; built with LUI+ADDI exactly as LI would expand it,
	// since 0xABCD is out of ADDI's 12-bit signed range.
	upper := immediate.New(20)
	require.NoError(t, upper.SetUnsigned(0xB))
	_, err = cpu.Execute(Instruction{Op: OpLUI, Rd: X2, Imm: upper})
	require.NoError(t, err)
	_, err = cpu.Execute(addi(X2, X2, -0x433))
	require.NoError(t, err)
	require.Equal(t, uint32(0xABCD), cpu.GetRegister(X2))

	swImm := immediate.New(12)
	require.NoError(t, swImm.SetSigned(0))
	_, err = cpu.Execute(Instruction{Op: OpSW, Rs1: X1, Rs2: X2, Imm: swImm})
	require.NoError(t, err)

	lwDelta, err := cpu.Execute(Instruction{Op: OpLW, Rd: X3, Rs1: X1, Imm: swImm})
	require.NoError(t, err)
	assert.Equal(t, uint32(0xABCD), cpu.GetRegister(X3))

	_, err = cpu.Apply(lwDelta.ToReverseModify())
	require.NoError(t, err)
	assert.Equal(t, uint32(0), cpu.GetRegister(X3))
}

func TestExecuteMisalignedJumpTrap(t *testing.T) {
	cpu := newTestCPU(t)
	_, err := cpu.Execute(addi(X1, X0, 0x103))
	require.NoError(t, err)

	imm := immediate.New(12)
	require.NoError(t, imm.SetSigned(0))
	before := cpu.PC()
	_, err = cpu.Execute(Instruction{Op: OpJALR, Rd: X0, Rs1: X1, Imm: imm})
	require.Error(t, err)

	var cpuErr *CpuError
	require.True(t, errors.As(err, &cpuErr))
	assert.Equal(t, MisalignedJump, cpuErr.Kind)
	assert.Equal(t, uint32(0x102), cpuErr.Addr)
	assert.True(t, errors.Is(err, ErrMisalignedJump))
	assert.Equal(t, before, cpu.PC())
}

func TestExecuteCSRAtomicSwap(t *testing.T) {
	cpu := newTestCPU(t)
	// seed mscratch and x10 directly via Apply (the privileged path).
	_, err := cpu.Apply(Modify{
		RegisterChanges: []RegisterValue{{Reg: X10, Value: 0x55555555}},
		CSRChanges:      []CSRValue{{Addr: CSRMscratch, Value: 0xAAAAAAAA}},
	})
	require.NoError(t, err)

	_, err = cpu.Execute(Instruction{Op: OpCSRRW, Rd: X10, Rs1: X10, CSRAddr: CSRMscratch})
	require.NoError(t, err)

	assert.Equal(t, uint32(0xAAAAAAAA), cpu.GetRegister(X10))
	assert.Equal(t, uint32(0x55555555), cpu.CSR().Get(CSRMscratch))
}

func TestExecuteCSRWriteToReadOnlyTraps(t *testing.T) {
	cpu := newTestCPU(t)
	_, err := cpu.Execute(Instruction{Op: OpCSRRWI, Rd: X1, CSRAddr: CSRCycle, Rs1: Register(1)})
	require.Error(t, err)
	var cpuErr *CpuError
	require.True(t, errors.As(err, &cpuErr))
	assert.Equal(t, IllegalInstruction, cpuErr.Kind)
}

func TestExecuteCSRRSWithZeroRs1DoesNotTrapOnReadOnly(t *testing.T) {
	cpu := newTestCPU(t)
	_, err := cpu.Execute(Instruction{Op: OpCSRRS, Rd: X1, CSRAddr: CSRCycle, Rs1: X0})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), cpu.GetRegister(X1))
}

func TestExecuteLoadOutOfRangeTraps(t *testing.T) {
	cpu := newTestCPU(t)

	zeroImm := immediate.New(12)
	require.NoError(t, zeroImm.SetSigned(0))

	// x0 + 0 = address 0, in-range for the default 1 MiB memory.
	_, err := cpu.Execute(Instruction{Op: OpLW, Rd: X1, Rs1: X0, Imm: zeroImm})
	require.NoError(t, err)

	// Force rs1 far beyond memory via Apply (bypassing the 12-bit
	// immediate's narrow range) to exercise the AccessViolation path.
	_, err = cpu.Apply(Modify{RegisterChanges: []RegisterValue{{Reg: X2, Value: cpu.MemorySize() + 100}}})
	require.NoError(t, err)
	_, err = cpu.Execute(Instruction{Op: OpLW, Rd: X3, Rs1: X2, Imm: zeroImm})
	require.Error(t, err)
	var cpuErr *CpuError
	require.True(t, errors.As(err, &cpuErr))
	assert.Equal(t, AccessViolation, cpuErr.Kind)
}
