package rv32i

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRegisterNumeric(t *testing.T) {
	reg, ok := ParseRegister("X5")
	assert.True(t, ok)
	assert.Equal(t, X5, reg)
}

func TestParseRegisterABI(t *testing.T) {
	cases := map[string]Register{
		"ZERO": X0, "RA": X1, "SP": X2, "FP": X8, "S0": X8, "A0": X10, "T6": X31,
	}
	for name, want := range cases {
		reg, ok := ParseRegister(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, reg, name)
	}
}

func TestParseRegisterPC(t *testing.T) {
	reg, ok := ParseRegister("PC")
	assert.True(t, ok)
	assert.Equal(t, PC, reg)
}

func TestParseRegisterUnknown(t *testing.T) {
	_, ok := ParseRegister("NOTAREG")
	assert.False(t, ok)

	_, ok = ParseRegister("X32")
	assert.False(t, ok)
}

func TestRegisterString(t *testing.T) {
	assert.Equal(t, "zero", X0.String())
	assert.Equal(t, "sp", X2.String())
	assert.Equal(t, "pc", PC.String())
}
