package liquiditymath

import (
	"math/big"

	"github.com/defiquote/clmm-go/calculator/fullmath"
)

var q96 = new(big.Int).Lsh(big.NewInt(1), 96)

// MaxLiquidityForAmount0 returns the most liquidity amount0 of token0 can
// back across the price range [sqrtRatioAX96, sqrtRatioBX96]. It uses the
// on-chain imprecise intermediate, which is what mint amounts are quoted
// against.
func MaxLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0 *big.Int) *big.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	intermediate := fullmath.MulDiv(sqrtRatioAX96, sqrtRatioBX96, q96)
	return fullmath.MulDiv(amount0, intermediate, new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

// MaxLiquidityForAmount1 returns the most liquidity amount1 of token1 can
// back across the price range.
func MaxLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1 *big.Int) *big.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	return fullmath.MulDiv(amount1, q96, new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

// MaxLiquidityForAmounts returns the most liquidity both amounts can back at
// the current price: only token0 matters below the range, only token1 above
// it, and the binding (smaller) side inside it.
func MaxLiquidityForAmounts(sqrtRatioCurrentX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *big.Int) *big.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	if sqrtRatioCurrentX96.Cmp(sqrtRatioAX96) <= 0 {
		return MaxLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0)
	}
	if sqrtRatioCurrentX96.Cmp(sqrtRatioBX96) < 0 {
		liquidity0 := MaxLiquidityForAmount0(sqrtRatioCurrentX96, sqrtRatioBX96, amount0)
		liquidity1 := MaxLiquidityForAmount1(sqrtRatioAX96, sqrtRatioCurrentX96, amount1)
		if liquidity0.Cmp(liquidity1) < 0 {
			return liquidity0
		}
		return liquidity1
	}
	return MaxLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1)
}
