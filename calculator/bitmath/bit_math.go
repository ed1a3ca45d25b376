package bitmath

import (
	"errors"
	"math/big"
	"math/bits"
)

// ErrInputIsZero is returned when a function requires a non-zero input but
// receives zero.
var ErrInputIsZero = errors.New("input must be greater than zero")

// MostSignificantBit returns the index of the most significant set bit of x,
// where the least significant bit is index 0. It satisfies
// x >= 2**msb(x) and x < 2**(msb(x)+1).
func MostSignificantBit(x *big.Int) (uint, error) {
	if x == nil || x.Sign() <= 0 {
		return 0, ErrInputIsZero
	}
	// BitLen is the number of bits needed to represent x, so the MSB index
	// is always one less.
	return uint(x.BitLen() - 1), nil
}

// LeastSignificantBit returns the index of the least significant set bit of
// x. It satisfies (x & 2**lsb(x)) != 0.
func LeastSignificantBit(x *big.Int) (uint, error) {
	if x == nil || x.Sign() <= 0 {
		return 0, ErrInputIsZero
	}
	for i, word := range x.Bits() {
		if word != 0 {
			return uint(i*bits.UintSize + bits.TrailingZeros(uint(word))), nil
		}
	}
	// Unreachable: x > 0 guarantees a set bit.
	return 0, ErrInputIsZero
}
