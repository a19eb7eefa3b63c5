package rv32i

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSRAddrByName(t *testing.T) {
	addr, ok := CSRAddrByName("MSCRATCH")
	assert.True(t, ok)
	assert.Equal(t, CSRMscratch, addr)
}

func TestCSRNameReverseLookup(t *testing.T) {
	name, ok := CSRName(CSRMstatus)
	assert.True(t, ok)
	assert.Equal(t, "MSTATUS", name)

	_, ok = CSRName(0x999)
	assert.False(t, ok)
}

func TestCSRFileInitialValues(t *testing.T) {
	f := NewCSRFile()
	assert.Equal(t, uint32(0x0000_1800), f.Get(CSRMstatus))
	assert.Equal(t, uint32(0x4000_0100), f.Get(CSRMisa))
	assert.True(t, f.ReadOnly(CSRCycle))
	assert.False(t, f.ReadOnly(CSRMscratch))
	assert.True(t, f.Present(CSRMtvec))
	assert.False(t, f.Present(0x999))
}

func TestCSRFileMstatusWARLMask(t *testing.T) {
	f := NewCSRFile()
	f.set(CSRMstatus, 0xFFFFFFFF)
	// Only bits within 0x1888 may change; the rest keep their reset value.
	assert.Equal(t, uint32(0x0000_1800)&^mstatusWARLMask|mstatusWARLMask, f.Get(CSRMstatus))
}

func TestCSRFileResetRestoresInitialValues(t *testing.T) {
	f := NewCSRFile()
	f.set(CSRMscratch, 0x1234)
	f.reset()
	assert.Equal(t, uint32(0), f.Get(CSRMscratch))
}
