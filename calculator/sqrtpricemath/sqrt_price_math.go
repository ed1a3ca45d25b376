// Package sqrtpricemath solves the closed-form relations between sqrt
// prices, liquidity and token amounts at constant liquidity. Every function
// follows one rounding rule: amounts the trader must pay round up, amounts
// the trader receives round down. Flipping a direction silently favors the
// trader and is a correctness bug, not a tuning knob.
package sqrtpricemath

import (
	"errors"
	"math/big"

	"github.com/defiquote/clmm-go/calculator/fullmath"
)

var (
	// Q96 is the Q64.96 fixed-point scale.
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)
	// resolution is the number of fractional bits in the Q96 format.
	resolution = uint(96)

	// maxUint256 bounds the intermediates that would overflow the EVM's
	// 256-bit word; crossing it switches formulas exactly where the
	// on-chain library does.
	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	ErrLiquidityZero      = errors.New("liquidity must be greater than zero")
	ErrSqrtPriceZero      = errors.New("sqrt price must be greater than zero")
	ErrAmountExceedsPrice = errors.New("amount out exceeds available price range")
)

// EncodeSqrtRatioX96 returns sqrt(amount1/amount0) in Q64.96, the sqrt-price
// corresponding to a reserve ratio.
func EncodeSqrtRatioX96(amount1, amount0 *big.Int) *big.Int {
	ratioX192 := new(big.Int).Lsh(amount1, 192)
	ratioX192.Div(ratioX192, amount0)
	return ratioX192.Sqrt(ratioX192)
}

// GetAmount0Delta returns the amount of token0 required to move the price
// between the two sqrt bounds at the given liquidity. Bounds are normalized
// so order does not matter; roundUp selects the payer (ceiling) or receiver
// (floor) contract.
func GetAmount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) (*big.Int, error) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	if sqrtRatioAX96.Sign() <= 0 {
		return nil, ErrSqrtPriceZero
	}

	numerator1 := new(big.Int).Lsh(liquidity, resolution)
	numerator2 := new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)

	if roundUp {
		term := fullmath.MulDivRoundingUp(numerator1, numerator2, sqrtRatioBX96)
		return fullmath.DivRoundingUp(term, sqrtRatioAX96), nil
	}
	term := fullmath.MulDiv(numerator1, numerator2, sqrtRatioBX96)
	return term.Div(term, sqrtRatioAX96), nil
}

// GetAmount1Delta returns the amount of token1 required to move the price
// between the two sqrt bounds at the given liquidity.
func GetAmount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) *big.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	diff := new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)
	if roundUp {
		return fullmath.MulDivRoundingUp(liquidity, diff, Q96)
	}
	return fullmath.MulDiv(liquidity, diff, Q96)
}

// GetNextSqrtPriceFromInput solves for the price after spending exactly
// amountIn of the input token. Price and liquidity must be strictly
// positive; a violation indicates caller misuse, not a market condition.
func GetNextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *big.Int, zeroForOne bool) (*big.Int, error) {
	if sqrtPX96.Sign() <= 0 {
		return nil, ErrSqrtPriceZero
	}
	if liquidity.Sign() <= 0 {
		return nil, ErrLiquidityZero
	}
	if zeroForOne {
		return getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountIn, true)
	}
	return getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput solves for the price after withdrawing exactly
// amountOut of the output token.
func GetNextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut *big.Int, zeroForOne bool) (*big.Int, error) {
	if sqrtPX96.Sign() <= 0 {
		return nil, ErrSqrtPriceZero
	}
	if liquidity.Sign() <= 0 {
		return nil, ErrLiquidityZero
	}
	if zeroForOne {
		return getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountOut, false)
	}
	return getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountOut, false)
}

// getNextSqrtPriceFromAmount0RoundingUp rounds up so the computed price is
// never past the true one: moving down (add) never undershoots, moving up
// (remove) never overshoots.
func getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amount *big.Int, add bool) (*big.Int, error) {
	if amount.Sign() == 0 {
		return new(big.Int).Set(sqrtPX96), nil
	}

	numerator1 := new(big.Int).Lsh(liquidity, resolution)
	product := new(big.Int).Mul(amount, sqrtPX96)

	if add {
		denominator := new(big.Int).Add(numerator1, product)
		// The precise formula only applies while product and denominator fit
		// in the 256-bit word the contract computes them in.
		if product.Cmp(maxUint256) <= 0 && denominator.Cmp(maxUint256) <= 0 {
			return fullmath.MulDivRoundingUp(numerator1, sqrtPX96, denominator), nil
		}
		// Overflow-safe fallback, identical to the on-chain one:
		// liquidity / (liquidity/sqrtP + amount), rounded up.
		denominator = new(big.Int).Div(numerator1, sqrtPX96)
		denominator.Add(denominator, amount)
		return fullmath.DivRoundingUp(numerator1, denominator), nil
	}

	if product.Cmp(maxUint256) > 0 || numerator1.Cmp(product) <= 0 {
		return nil, ErrAmountExceedsPrice
	}
	denominator := new(big.Int).Sub(numerator1, product)
	return fullmath.MulDivRoundingUp(numerator1, sqrtPX96, denominator), nil
}

// getNextSqrtPriceFromAmount1RoundingDown rounds down, the mirror-image
// direction of the amount0 variant.
func getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amount *big.Int, add bool) (*big.Int, error) {
	if add {
		quotient := fullmath.MulDiv(amount, Q96, liquidity)
		return quotient.Add(sqrtPX96, quotient), nil
	}

	quotient := fullmath.MulDivRoundingUp(amount, Q96, liquidity)
	if sqrtPX96.Cmp(quotient) <= 0 {
		return nil, ErrAmountExceedsPrice
	}
	return quotient.Sub(sqrtPX96, quotient), nil
}
