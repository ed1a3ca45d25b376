// Package pool models one concentrated-liquidity pool as an immutable
// snapshot and quotes swaps against it by walking tick-range segments. Every
// quoting operation returns a new Pool reflecting post-trade state; nothing
// mutates in place, so concurrent quoting against one snapshot needs no
// coordination.
package pool

import (
	"errors"
	"math/big"
	"sync"

	"github.com/defiquote/clmm-go/calculator/liquiditymath"
	"github.com/defiquote/clmm-go/calculator/swapmath"
	"github.com/defiquote/clmm-go/calculator/ticklist"
	"github.com/defiquote/clmm-go/calculator/tickmath"
	"github.com/defiquote/clmm-go/entities"
)

var (
	ErrInvalidFee            = errors.New("invalid fee tier")
	ErrTokenNotInvolved      = errors.New("token is not part of this pool")
	ErrPriceOutOfTickRange   = errors.New("sqrt price inconsistent with current tick")
	ErrInvalidPriceLimit     = errors.New("price limit out of range for swap direction")
	ErrSpacingMismatch       = errors.New("tick list spacing does not match fee tier")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for requested amount")

	q192 = new(big.Int).Lsh(big.NewInt(1), 192)
)

// Pool is a read-only snapshot of one pool's swap-relevant state. Token0 and
// Token1 are canonically ordered at construction; all internal math is
// token0/token1-relative.
type Pool struct {
	Token0       entities.Token
	Token1       entities.Token
	Fee          entities.FeeTier
	SqrtRatioX96 *big.Int
	Liquidity    *big.Int
	TickCurrent  int
	Ticks        *ticklist.List

	priceOnce   sync.Once
	token0Price entities.Price
	token1Price entities.Price
}

// New canonicalizes the token pair and validates the snapshot: the fee tier
// must be known, the tick list spacing must match it, and sqrtRatioX96 must
// lie within the ratio band of tickCurrent. Validation failures are
// integration bugs, never market conditions.
func New(
	tokenA, tokenB entities.Token,
	fee entities.FeeTier,
	sqrtRatioX96 *big.Int,
	liquidity *big.Int,
	tickCurrent int,
	ticks *ticklist.List,
) (*Pool, error) {
	spacing, err := fee.TickSpacing()
	if err != nil {
		return nil, ErrInvalidFee
	}
	if ticks != nil && ticks.TickSpacing() != spacing {
		return nil, ErrSpacingMismatch
	}

	aFirst, err := tokenA.Wrapped().SortsBefore(tokenB.Wrapped())
	if err != nil {
		return nil, err
	}
	token0, token1 := tokenA.Wrapped(), tokenB.Wrapped()
	if !aFirst {
		token0, token1 = token1, token0
	}

	ratioAtTick, err := tickmath.GetSqrtRatioAtTick(tickCurrent)
	if err != nil {
		return nil, err
	}
	ratioAtNextTick, err := tickmath.GetSqrtRatioAtTick(tickCurrent + 1)
	if err != nil {
		return nil, err
	}
	if sqrtRatioX96.Cmp(ratioAtTick) < 0 || sqrtRatioX96.Cmp(ratioAtNextTick) > 0 {
		return nil, ErrPriceOutOfTickRange
	}

	return &Pool{
		Token0:       token0,
		Token1:       token1,
		Fee:          fee,
		SqrtRatioX96: new(big.Int).Set(sqrtRatioX96),
		Liquidity:    new(big.Int).Set(liquidity),
		TickCurrent:  tickCurrent,
		Ticks:        ticks,
	}, nil
}

// TickSpacing returns the spacing bound to the pool's fee tier.
func (p *Pool) TickSpacing() int {
	spacing, _ := p.Fee.TickSpacing()
	return spacing
}

// ChainID returns the chain both pool tokens live on.
func (p *Pool) ChainID() uint64 { return p.Token0.ChainID }

// InvolvesToken reports whether the token is one of the pool's pair.
func (p *Pool) InvolvesToken(token entities.Token) bool {
	wrapped := token.Wrapped()
	return p.Token0.Equal(wrapped) || p.Token1.Equal(wrapped)
}

func (p *Pool) computePrices() {
	ratioSquared := new(big.Int).Mul(p.SqrtRatioX96, p.SqrtRatioX96)
	p.token0Price = entities.NewPriceFromFraction(p.Token0, p.Token1, entities.NewFraction(ratioSquared, q192))
	p.token1Price = entities.NewPriceFromFraction(p.Token1, p.Token0, entities.NewFraction(q192, ratioSquared))
}

// Token0Price returns the pool's current mid price of token0 in token1.
// Cached on first access; safe under concurrent readers.
func (p *Pool) Token0Price() entities.Price {
	p.priceOnce.Do(p.computePrices)
	return p.token0Price
}

// Token1Price returns the pool's current mid price of token1 in token0.
func (p *Pool) Token1Price() entities.Price {
	p.priceOnce.Do(p.computePrices)
	return p.token1Price
}

// PriceOf returns the mid price of the given pool token in terms of the
// other one.
func (p *Pool) PriceOf(token entities.Token) (entities.Price, error) {
	if !p.InvolvesToken(token) {
		return entities.Price{}, ErrTokenNotInvolved
	}
	if p.Token0.Equal(token.Wrapped()) {
		return p.Token0Price(), nil
	}
	return p.Token1Price(), nil
}

// swapResult carries the post-swap pool coordinates alongside the computed
// counter-amount.
type swapResult struct {
	amountCalculated *big.Int
	amountRemaining  *big.Int
	sqrtRatioX96     *big.Int
	liquidity        *big.Int
	tickCurrent      int
}

// swap runs the swap loop: repeated single-step simulations across
// word-bounded tick segments, crossing initialized ticks by applying their
// signed liquidity delta (negated when moving down), until amountSpecified
// is consumed or sqrtPriceLimitX96 is reached. amountSpecified is positive
// for exact input, negative for exact output. A nil limit means the extreme
// ratio for the direction.
func (p *Pool) swap(zeroForOne bool, amountSpecified, sqrtPriceLimitX96 *big.Int) (swapResult, error) {
	// A pool without tick data cannot fill anything; treat it like an
	// exhausted range so callers can prune it instead of crashing.
	if p.Ticks == nil || p.Ticks.Len() == 0 {
		return swapResult{}, ErrInsufficientLiquidity
	}
	if sqrtPriceLimitX96 == nil {
		if zeroForOne {
			sqrtPriceLimitX96 = new(big.Int).Add(tickmath.MIN_SQRT_RATIO, big.NewInt(1))
		} else {
			sqrtPriceLimitX96 = new(big.Int).Sub(tickmath.MAX_SQRT_RATIO, big.NewInt(1))
		}
	}

	// The limit must lie strictly between the current price and the extreme
	// boundary for the chosen direction; anything else is caller error.
	if zeroForOne {
		if sqrtPriceLimitX96.Cmp(tickmath.MIN_SQRT_RATIO) <= 0 || sqrtPriceLimitX96.Cmp(p.SqrtRatioX96) >= 0 {
			return swapResult{}, ErrInvalidPriceLimit
		}
	} else {
		if sqrtPriceLimitX96.Cmp(tickmath.MAX_SQRT_RATIO) >= 0 || sqrtPriceLimitX96.Cmp(p.SqrtRatioX96) <= 0 {
			return swapResult{}, ErrInvalidPriceLimit
		}
	}

	exactInput := amountSpecified.Sign() >= 0

	state := swapResult{
		amountCalculated: new(big.Int),
		amountRemaining:  new(big.Int).Set(amountSpecified),
		sqrtRatioX96:     new(big.Int).Set(p.SqrtRatioX96),
		liquidity:        new(big.Int).Set(p.Liquidity),
		tickCurrent:      p.TickCurrent,
	}

	for state.amountRemaining.Sign() != 0 && state.sqrtRatioX96.Cmp(sqrtPriceLimitX96) != 0 {
		sqrtRatioStartX96 := new(big.Int).Set(state.sqrtRatioX96)
		remainingStart := new(big.Int).Set(state.amountRemaining)

		tickNext, initialized := p.Ticks.NextInitializedTickWithinOneWord(state.tickCurrent, zeroForOne)
		if tickNext < tickmath.MIN_TICK {
			tickNext = tickmath.MIN_TICK
		} else if tickNext > tickmath.MAX_TICK {
			tickNext = tickmath.MAX_TICK
		}

		sqrtRatioNextTickX96, err := tickmath.GetSqrtRatioAtTick(tickNext)
		if err != nil {
			return swapResult{}, err
		}

		targetRatio := sqrtRatioNextTickX96
		if zeroForOne {
			if sqrtRatioNextTickX96.Cmp(sqrtPriceLimitX96) < 0 {
				targetRatio = sqrtPriceLimitX96
			}
		} else {
			if sqrtRatioNextTickX96.Cmp(sqrtPriceLimitX96) > 0 {
				targetRatio = sqrtPriceLimitX96
			}
		}

		step, err := swapmath.ComputeSwapStep(state.sqrtRatioX96, targetRatio, state.liquidity, state.amountRemaining, uint64(p.Fee))
		if err != nil {
			return swapResult{}, err
		}
		state.sqrtRatioX96 = step.SqrtRatioNextX96

		if exactInput {
			consumed := new(big.Int).Add(step.AmountIn, step.FeeAmount)
			state.amountRemaining.Sub(state.amountRemaining, consumed)
			state.amountCalculated.Add(state.amountCalculated, step.AmountOut)
		} else {
			state.amountRemaining.Add(state.amountRemaining, step.AmountOut)
			paid := new(big.Int).Add(step.AmountIn, step.FeeAmount)
			state.amountCalculated.Add(state.amountCalculated, paid)
		}

		if state.sqrtRatioX96.Cmp(sqrtRatioNextTickX96) == 0 {
			// Reached the segment boundary: apply the tick's liquidity delta
			// only when the boundary is a real initialized tick, not a
			// bitmap word edge.
			if initialized {
				crossed, err := p.Ticks.Get(tickNext)
				if err != nil {
					return swapResult{}, err
				}
				liquidityNet := crossed.LiquidityNet
				if zeroForOne {
					liquidityNet = new(big.Int).Neg(liquidityNet)
				}
				state.liquidity, err = liquiditymath.AddDelta(state.liquidity, liquidityNet)
				if err != nil {
					if errors.Is(err, liquiditymath.ErrLiquidityUnderflow) {
						return swapResult{}, ErrInsufficientLiquidity
					}
					return swapResult{}, err
				}
			}
			if zeroForOne {
				state.tickCurrent = tickNext - 1
			} else {
				state.tickCurrent = tickNext
			}
		} else if state.sqrtRatioX96.Cmp(sqrtRatioStartX96) != 0 {
			state.tickCurrent, err = tickmath.GetTickAtSqrtRatio(state.sqrtRatioX96)
			if err != nil {
				return swapResult{}, err
			}
		} else if state.amountRemaining.Cmp(remainingStart) == 0 {
			// No boundary reached, no price movement, no amount consumed:
			// the tick range is exhausted; bail out instead of spinning.
			return swapResult{}, ErrInsufficientLiquidity
		}
	}

	return state, nil
}

func (p *Pool) sibling(state swapResult) (*Pool, error) {
	return &Pool{
		Token0:       p.Token0,
		Token1:       p.Token1,
		Fee:          p.Fee,
		SqrtRatioX96: state.sqrtRatioX96,
		Liquidity:    state.liquidity,
		TickCurrent:  state.tickCurrent,
		Ticks:        p.Ticks,
	}, nil
}

// GetOutputAmount quotes an exact-input swap: it returns the output amount
// for inputAmount and the sibling Pool reflecting post-trade state. The
// receiver is never mutated. ErrInsufficientLiquidity reports that the
// pool's tick range cannot absorb the full input.
func (p *Pool) GetOutputAmount(inputAmount entities.CurrencyAmount, sqrtPriceLimitX96 *big.Int) (entities.CurrencyAmount, *Pool, error) {
	if !p.InvolvesToken(inputAmount.Token) {
		return entities.CurrencyAmount{}, nil, ErrTokenNotInvolved
	}
	zeroForOne := inputAmount.Token.Wrapped().Equal(p.Token0)

	state, err := p.swap(zeroForOne, inputAmount.Amount, sqrtPriceLimitX96)
	if err != nil {
		return entities.CurrencyAmount{}, nil, err
	}
	if sqrtPriceLimitX96 == nil && state.amountRemaining.Sign() != 0 {
		return entities.CurrencyAmount{}, nil, ErrInsufficientLiquidity
	}

	outputToken := p.Token1
	if !zeroForOne {
		outputToken = p.Token0
	}
	next, err := p.sibling(state)
	if err != nil {
		return entities.CurrencyAmount{}, nil, err
	}
	return entities.CurrencyAmount{Token: outputToken, Amount: state.amountCalculated}, next, nil
}

// GetInputAmount quotes an exact-output swap: the input amount required to
// withdraw outputAmount, plus the post-trade sibling Pool.
func (p *Pool) GetInputAmount(outputAmount entities.CurrencyAmount, sqrtPriceLimitX96 *big.Int) (entities.CurrencyAmount, *Pool, error) {
	if !p.InvolvesToken(outputAmount.Token) {
		return entities.CurrencyAmount{}, nil, ErrTokenNotInvolved
	}
	zeroForOne := outputAmount.Token.Wrapped().Equal(p.Token1)

	state, err := p.swap(zeroForOne, new(big.Int).Neg(outputAmount.Amount), sqrtPriceLimitX96)
	if err != nil {
		return entities.CurrencyAmount{}, nil, err
	}
	if sqrtPriceLimitX96 == nil && state.amountRemaining.Sign() != 0 {
		return entities.CurrencyAmount{}, nil, ErrInsufficientLiquidity
	}

	inputToken := p.Token0
	if !zeroForOne {
		inputToken = p.Token1
	}
	next, err := p.sibling(state)
	if err != nil {
		return entities.CurrencyAmount{}, nil, err
	}
	return entities.CurrencyAmount{Token: inputToken, Amount: state.amountCalculated}, next, nil
}
