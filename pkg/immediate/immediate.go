// Package immediate implements fixed-width signed/unsigned immediate values
// as used by the I/S/B/U/J instruction formats.
//
// A value is always stored as a 32-bit pattern, sign-extended from its
// configured width. This lets callers read either the raw bit pattern
// (AsU32) or the signed interpretation (AsI32) without re-deriving the
// extension at read time.
package immediate

import (
	"errors"
	"fmt"
)

// ErrOutOfRange indicates that a value does not fit in the configured width.
var ErrOutOfRange = errors.New("immediate: value out of range")

// Immediate is a width-bits value stored sign-extended to 32 bits.
type Immediate struct {
	value uint32
	bits  uint8
}

// New returns a zero-valued Immediate of the given bit width.
func New(bits uint8) Immediate {
	return Immediate{bits: bits}
}

// Bits returns the configured width.
func (im Immediate) Bits() uint8 {
	return im.bits
}

// extendSign replicates bit (bits-1) of value into bits bits..31.
func (im *Immediate) extendSign(value uint32) {
	topBit := uint32(1) << (im.bits - 1)
	if value&topBit != 0 {
		extension := ^uint32(0) << (im.bits - 1)
		im.value = value | extension
	} else {
		im.value = value
	}
}

// SetUnsigned stores value, which must satisfy 0 <= value <= UnsignedMax().
func (im *Immediate) SetUnsigned(value uint32) error {
	if value > im.UnsignedMax() {
		return fmt.Errorf("%w: unsigned value %d too big for %d bits", ErrOutOfRange, value, im.bits)
	}
	im.extendSign(value)
	return nil
}

// SetSigned stores value, which must satisfy SignedMin() <= value <= SignedMax().
func (im *Immediate) SetSigned(value int32) error {
	if value > im.SignedMax() {
		return fmt.Errorf("%w: signed value %d too big for %d bits", ErrOutOfRange, value, im.bits)
	}
	if value < im.SignedMin() {
		return fmt.Errorf("%w: signed value %d too small for %d bits", ErrOutOfRange, value, im.bits)
	}
	im.extendSign(uint32(value))
	return nil
}

// AsU32 returns the stored 32-bit pattern.
func (im Immediate) AsU32() uint32 {
	return im.value
}

// AsI32 returns the stored pattern reinterpreted as signed.
func (im Immediate) AsI32() int32 {
	return int32(im.value)
}

// UnsignedMax returns 2^bits - 1.
func (im Immediate) UnsignedMax() uint32 {
	return (uint32(1) << im.bits) - 1
}

// SignedMax returns 2^(bits-1) - 1.
func (im Immediate) SignedMax() int32 {
	return (int32(1) << (im.bits - 1)) - 1
}

// SignedMin returns -(2^(bits-1)).
func (im Immediate) SignedMin() int32 {
	return -(int32(1) << (im.bits - 1))
}
