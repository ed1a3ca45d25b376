// Package swapmath simulates one swap step at constant liquidity within a
// single tick range, fee inclusive. The pool-level loop calls ComputeSwapStep
// repeatedly until the requested amount is exhausted or a price limit is hit.
package swapmath

import (
	"math/big"

	"github.com/defiquote/clmm-go/calculator/fullmath"
	"github.com/defiquote/clmm-go/calculator/sqrtpricemath"
)

// feeDenominator is 100% in hundredths of a bip (1,000,000 ppm).
var feeDenominator = big.NewInt(1_000_000)

// StepResult is the outcome of a single constant-liquidity swap step. All
// amounts are non-negative.
type StepResult struct {
	SqrtRatioNextX96 *big.Int
	AmountIn         *big.Int
	AmountOut        *big.Int
	FeeAmount        *big.Int
}

// ComputeSwapStep moves the price from sqrtRatioCurrentX96 toward
// sqrtRatioTargetX96 (next tick boundary or caller limit, whichever is
// nearer) at the given liquidity. amountRemaining is signed: positive means
// exact-input remaining, negative exact-output remaining. feePips is the fee
// in hundredths of a bip.
//
// Amounts are recomputed at the resulting price rather than the target so
// rounding error never compounds across steps. When the target is not
// reached on exact input, the fee is whatever input the price move did not
// consume; otherwise it is amountIn * fee / (1e6 - fee), rounded up.
func ComputeSwapStep(
	sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining *big.Int,
	feePips uint64,
) (StepResult, error) {
	zeroForOne := sqrtRatioCurrentX96.Cmp(sqrtRatioTargetX96) >= 0
	exactIn := amountRemaining.Sign() >= 0
	fee := new(big.Int).SetUint64(feePips)
	feeComplement := new(big.Int).Sub(feeDenominator, fee)

	var (
		step StepResult
		err  error
	)

	if exactIn {
		amountRemainingLessFee := fullmath.MulDiv(amountRemaining, feeComplement, feeDenominator)
		if zeroForOne {
			step.AmountIn, err = sqrtpricemath.GetAmount0Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, true)
			if err != nil {
				return StepResult{}, err
			}
		} else {
			step.AmountIn = sqrtpricemath.GetAmount1Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, true)
		}

		if amountRemainingLessFee.Cmp(step.AmountIn) >= 0 {
			step.SqrtRatioNextX96 = new(big.Int).Set(sqrtRatioTargetX96)
		} else {
			step.SqrtRatioNextX96, err = sqrtpricemath.GetNextSqrtPriceFromInput(sqrtRatioCurrentX96, liquidity, amountRemainingLessFee, zeroForOne)
			if err != nil {
				return StepResult{}, err
			}
		}
	} else {
		amountRemainingAbs := new(big.Int).Neg(amountRemaining)
		if zeroForOne {
			step.AmountOut = sqrtpricemath.GetAmount1Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, false)
		} else {
			step.AmountOut, err = sqrtpricemath.GetAmount0Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, false)
			if err != nil {
				return StepResult{}, err
			}
		}

		if amountRemainingAbs.Cmp(step.AmountOut) >= 0 {
			step.SqrtRatioNextX96 = new(big.Int).Set(sqrtRatioTargetX96)
		} else {
			step.SqrtRatioNextX96, err = sqrtpricemath.GetNextSqrtPriceFromOutput(sqrtRatioCurrentX96, liquidity, amountRemainingAbs, zeroForOne)
			if err != nil {
				return StepResult{}, err
			}
		}
	}

	reachedTarget := sqrtRatioTargetX96.Cmp(step.SqrtRatioNextX96) == 0

	// Recompute the actual amounts at the price we actually reached.
	if zeroForOne {
		if !(reachedTarget && exactIn) {
			step.AmountIn, err = sqrtpricemath.GetAmount0Delta(step.SqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, true)
			if err != nil {
				return StepResult{}, err
			}
		}
		if !(reachedTarget && !exactIn) {
			step.AmountOut = sqrtpricemath.GetAmount1Delta(step.SqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, false)
		}
	} else {
		if !(reachedTarget && exactIn) {
			step.AmountIn = sqrtpricemath.GetAmount1Delta(sqrtRatioCurrentX96, step.SqrtRatioNextX96, liquidity, true)
		}
		if !(reachedTarget && !exactIn) {
			step.AmountOut, err = sqrtpricemath.GetAmount0Delta(sqrtRatioCurrentX96, step.SqrtRatioNextX96, liquidity, false)
			if err != nil {
				return StepResult{}, err
			}
		}
	}

	// Cap the output at the exact-output request so a receiver is never
	// overpaid by a rounding unit.
	if !exactIn {
		amountRemainingAbs := new(big.Int).Neg(amountRemaining)
		if step.AmountOut.Cmp(amountRemainingAbs) > 0 {
			step.AmountOut = amountRemainingAbs
		}
	}

	if exactIn && !reachedTarget {
		// The price limit cut the step short: the remainder of the input is
		// collected as fee.
		step.FeeAmount = new(big.Int).Sub(amountRemaining, step.AmountIn)
	} else {
		step.FeeAmount = fullmath.MulDivRoundingUp(step.AmountIn, fee, feeComplement)
	}

	return step, nil
}
