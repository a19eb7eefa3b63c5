package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-rv32i/repl/pkg/rv32i"
)

func delta(pcOld, pcNew uint32) rv32i.StateDelta {
	return rv32i.StateDelta{PCChange: rv32i.PCChange{Old: pcOld, New: pcNew}}
}

func TestRecordAndNavigateBackAndForth(t *testing.T) {
	h := New(DefaultBound)
	h.Record(delta(0, 4))
	h.Record(delta(4, 8))
	h.Record(delta(8, 12))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 3, h.Pos())

	d, err := h.GetPreviousDelta()
	require.NoError(t, err)
	assert.Equal(t, uint32(8), d.PCChange.Old)

	d, err = h.GetPreviousDelta()
	require.NoError(t, err)
	assert.Equal(t, uint32(4), d.PCChange.Old)

	d, err = h.GetPreviousDelta()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), d.PCChange.Old)

	_, err = h.GetPreviousDelta()
	assert.ErrorIs(t, err, ErrAtBeginning)

	d, err = h.GetNextDelta()
	require.NoError(t, err)
	assert.Equal(t, uint32(4), d.PCChange.New)
}

func TestRecordTruncatesFutureOnBranch(t *testing.T) {
	h := New(DefaultBound)
	h.Record(delta(0, 4))
	h.Record(delta(4, 8))
	_, err := h.GetPreviousDelta()
	require.NoError(t, err)

	h.Record(delta(4, 100))
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 2, h.Pos())

	_, err = h.GetNextDelta()
	assert.ErrorIs(t, err, ErrAtEnd)
}

func TestRecordDropsOldestOnOverflow(t *testing.T) {
	h := New(2)
	h.Record(delta(0, 4))
	h.Record(delta(4, 8))
	h.Record(delta(8, 12))
	require.Equal(t, 2, h.Len())

	d, err := h.GetPreviousDelta()
	require.NoError(t, err)
	assert.Equal(t, uint32(8), d.PCChange.Old)

	d, err = h.GetPreviousDelta()
	require.NoError(t, err)
	assert.Equal(t, uint32(4), d.PCChange.Old)

	_, err = h.GetPreviousDelta()
	assert.ErrorIs(t, err, ErrAtBeginning)
}

func TestZeroBoundDisablesRecording(t *testing.T) {
	h := New(0)
	h.Record(delta(0, 4))
	assert.Equal(t, 0, h.Len())
	_, err := h.GetPreviousDelta()
	assert.ErrorIs(t, err, ErrAtBeginning)
}

func TestClearResetsSequenceAndPosition(t *testing.T) {
	h := New(DefaultBound)
	h.Record(delta(0, 4))
	h.Record(delta(4, 8))
	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 0, h.Pos())
}
