package immediate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSignedRoundTrip(t *testing.T) {
	cases := []struct {
		bits  uint8
		value int32
	}{
		{5, 15}, {5, -16}, {5, 0},
		{12, 2047}, {12, -2048}, {12, -1},
		{20, 524287}, {20, -524288},
	}
	for _, c := range cases {
		im := New(c.bits)
		require.NoError(t, im.SetSigned(c.value))
		assert.Equal(t, c.value, im.AsI32())
	}
}

func TestSetSignedNegativeOneSignExtends(t *testing.T) {
	im := New(12)
	require.NoError(t, im.SetSigned(-1))
	assert.Equal(t, uint32(0xFFFFFFFF), im.AsU32())
}

func TestSetUnsignedMaxSignExtends(t *testing.T) {
	im := New(12)
	require.NoError(t, im.SetUnsigned(0xFFF))
	assert.Equal(t, uint32(0xFFFFFFFF), im.AsU32())
}

func TestSetSignedOutOfRange(t *testing.T) {
	im := New(5)
	err := im.SetSigned(16)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	err = im.SetSigned(-17)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestSetUnsignedOutOfRange(t *testing.T) {
	im := New(5)
	err := im.SetUnsigned(32)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestBounds(t *testing.T) {
	im := New(12)
	assert.Equal(t, int32(2047), im.SignedMax())
	assert.Equal(t, int32(-2048), im.SignedMin())
	assert.Equal(t, uint32(4095), im.UnsignedMax())
}
