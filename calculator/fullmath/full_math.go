// Package fullmath implements the multiply-then-divide primitives every
// price and liquidity computation in the calculator routes through. big.Int
// arithmetic is unbounded, so the double-width intermediate of the on-chain
// FullMath library is safe by construction here; what this package preserves
// is the rounding contract: callers choose floor or ceiling explicitly, and
// the two differ by at most one unit.
package fullmath

import "math/big"

var (
	one = big.NewInt(1)

	// maxUint256Mask masks results to the EVM's 256-bit word.
	maxUint256Mask = new(big.Int).Sub(new(big.Int).Lsh(one, 256), one)
)

// MulDiv returns floor(a * b / denominator). The denominator must be
// non-zero; a zero denominator is a caller bug and panics.
func MulDiv(a, b, denominator *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Div(product, denominator)
}

// MulDivRoundingUp returns ceil(a * b / denominator): the floor result plus
// one unit whenever the division was inexact.
func MulDivRoundingUp(a, b, denominator *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	quotient, rem := new(big.Int).QuoRem(product, denominator, new(big.Int))
	if rem.Sign() != 0 {
		quotient.Add(quotient, one)
	}
	return quotient
}

// DivRoundingUp returns ceil(a / denominator).
func DivRoundingUp(a, denominator *big.Int) *big.Int {
	quotient, rem := new(big.Int).QuoRem(a, denominator, new(big.Int))
	if rem.Sign() != 0 {
		quotient.Add(quotient, one)
	}
	return quotient
}

// AddWrapped returns (a + b) mod 2^256, matching EVM unsigned addition.
// Overflow wraps; it never traps or promotes.
func AddWrapped(a, b *big.Int) *big.Int {
	sum := new(big.Int).Add(a, b)
	return sum.And(sum, maxUint256Mask)
}

// MulWrapped returns (a * b) mod 2^256, matching EVM unsigned multiplication.
func MulWrapped(a, b *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.And(product, maxUint256Mask)
}
