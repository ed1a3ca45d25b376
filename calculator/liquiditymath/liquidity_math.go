package liquiditymath

import (
	"errors"
	"math/big"
)

var (
	// maxUint128 is the largest value pool liquidity may take (2^128 - 1).
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	ErrLiquidityOverflow  = errors.New("liquidity overflow")
	ErrLiquidityUnderflow = errors.New("liquidity underflow")
)

// AddDelta applies a signed liquidity delta to an unsigned uint128 liquidity
// value. Underflow is the recoverable "insufficient liquidity" signal the
// swap loop prunes on; overflow indicates corrupt tick data.
func AddDelta(x, y *big.Int) (*big.Int, error) {
	result := new(big.Int).Add(x, y)
	if result.Sign() < 0 {
		return nil, ErrLiquidityUnderflow
	}
	if result.Cmp(maxUint128) > 0 {
		return nil, ErrLiquidityOverflow
	}
	return result, nil
}
