// Package position accounts for liquidity-provider shares: the token amounts
// a position currently represents, the amounts required to mint it, and the
// slippage-bounded worst-case variants of both.
package position

import (
	"errors"
	"math/big"
	"sync"

	"github.com/defiquote/clmm-go/calculator/liquiditymath"
	"github.com/defiquote/clmm-go/calculator/sqrtpricemath"
	"github.com/defiquote/clmm-go/calculator/tickmath"
	"github.com/defiquote/clmm-go/entities"
	"github.com/defiquote/clmm-go/pool"
)

var (
	ErrTickOrder     = errors.New("tickLower must be below tickUpper")
	ErrTickAlignment = errors.New("position ticks must be multiples of the pool tick spacing")
	ErrTickBounds    = errors.New("position ticks out of tick bounds")
)

// Amounts pairs the token0 and token1 quantities of a position operation.
type Amounts struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

// Position is an immutable claim on a pool's liquidity within a tick range.
type Position struct {
	Pool      *pool.Pool
	TickLower int
	TickUpper int
	Liquidity *big.Int

	burnOnce    sync.Once
	burnAmounts Amounts
	burnErr     error
	mintOnce    sync.Once
	mintAmounts Amounts
	mintErr     error
}

// New validates the tick range against the pool's spacing and the global
// tick bounds.
func New(p *pool.Pool, tickLower, tickUpper int, liquidity *big.Int) (*Position, error) {
	if tickLower >= tickUpper {
		return nil, ErrTickOrder
	}
	spacing := p.TickSpacing()
	if tickLower%spacing != 0 || tickUpper%spacing != 0 {
		return nil, ErrTickAlignment
	}
	if tickLower < tickmath.MIN_TICK || tickUpper > tickmath.MAX_TICK {
		return nil, ErrTickBounds
	}
	return &Position{
		Pool:      p,
		TickLower: tickLower,
		TickUpper: tickUpper,
		Liquidity: new(big.Int).Set(liquidity),
	}, nil
}

// FromAmounts computes the maximum liquidity the given amounts can back over
// the tick range at the pool's current price and returns the corresponding
// position.
func FromAmounts(p *pool.Pool, tickLower, tickUpper int, amount0, amount1 *big.Int) (*Position, error) {
	sqrtRatioLower, err := tickmath.GetSqrtRatioAtTick(tickLower)
	if err != nil {
		return nil, err
	}
	sqrtRatioUpper, err := tickmath.GetSqrtRatioAtTick(tickUpper)
	if err != nil {
		return nil, err
	}
	liquidity := liquiditymath.MaxLiquidityForAmounts(p.SqrtRatioX96, sqrtRatioLower, sqrtRatioUpper, amount0, amount1)
	return New(p, tickLower, tickUpper, liquidity)
}

// rangeRatios returns the sqrt ratios at the position's bounds.
func (pos *Position) rangeRatios() (lower, upper *big.Int, err error) {
	lower, err = tickmath.GetSqrtRatioAtTick(pos.TickLower)
	if err != nil {
		return nil, nil, err
	}
	upper, err = tickmath.GetSqrtRatioAtTick(pos.TickUpper)
	if err != nil {
		return nil, nil, err
	}
	return lower, upper, nil
}

// amounts is the three-way range split shared by burn and mint accounting.
// roundUp selects the mint contract (amounts required must never be
// under-estimated); burn values round down.
func (pos *Position) amounts(roundUp bool) (Amounts, error) {
	lower, upper, err := pos.rangeRatios()
	if err != nil {
		return Amounts{}, err
	}

	zero := new(big.Int)
	switch {
	case pos.Pool.TickCurrent < pos.TickLower:
		// Entirely above the current price: the position is all token0.
		amount0, err := sqrtpricemath.GetAmount0Delta(lower, upper, pos.Liquidity, roundUp)
		if err != nil {
			return Amounts{}, err
		}
		return Amounts{Amount0: amount0, Amount1: zero}, nil
	case pos.Pool.TickCurrent < pos.TickUpper:
		amount0, err := sqrtpricemath.GetAmount0Delta(pos.Pool.SqrtRatioX96, upper, pos.Liquidity, roundUp)
		if err != nil {
			return Amounts{}, err
		}
		amount1 := sqrtpricemath.GetAmount1Delta(lower, pos.Pool.SqrtRatioX96, pos.Liquidity, roundUp)
		return Amounts{Amount0: amount0, Amount1: amount1}, nil
	default:
		// Entirely below the current price: the position is all token1.
		amount1 := sqrtpricemath.GetAmount1Delta(lower, upper, pos.Liquidity, roundUp)
		return Amounts{Amount0: zero, Amount1: amount1}, nil
	}
}

// BurnAmounts returns the token amounts the position is currently worth if
// burned, rounded down. Cached after first access; the pool reference is
// immutable so recomputation is idempotent.
func (pos *Position) BurnAmounts() (Amounts, error) {
	pos.burnOnce.Do(func() {
		pos.burnAmounts, pos.burnErr = pos.amounts(false)
	})
	if pos.burnErr != nil {
		return Amounts{}, pos.burnErr
	}
	return pos.burnAmounts, nil
}

// Amount0 returns the token0 value of the position at the pool's current
// price.
func (pos *Position) Amount0() (*big.Int, error) {
	amounts, err := pos.BurnAmounts()
	if err != nil {
		return nil, err
	}
	return amounts.Amount0, nil
}

// Amount1 returns the token1 value of the position at the pool's current
// price.
func (pos *Position) Amount1() (*big.Int, error) {
	amounts, err := pos.BurnAmounts()
	if err != nil {
		return nil, err
	}
	return amounts.Amount1, nil
}

// MintAmounts returns the amounts required to mint the position's liquidity
// exactly, rounded up.
func (pos *Position) MintAmounts() (Amounts, error) {
	pos.mintOnce.Do(func() {
		pos.mintAmounts, pos.mintErr = pos.amounts(true)
	})
	if pos.mintErr != nil {
		return Amounts{}, pos.mintErr
	}
	return pos.mintAmounts, nil
}

// RatiosAfterSlippage widens the pool's current price into a band by the
// given tolerance and clamps it to the valid sqrt-ratio domain. The band's
// edges parameterize the worst-case counterfactual pools below.
func (pos *Position) RatiosAfterSlippage(tolerance entities.Percent) (sqrtRatioLowerX96, sqrtRatioUpperX96 *big.Int) {
	one := entities.FractionFromInt(1)
	price := pos.Pool.Token0Price().Fraction()

	priceLower := price.Mul(one.Sub(tolerance.Fraction))
	priceUpper := price.Mul(one.Add(tolerance.Fraction))

	sqrtRatioLowerX96 = sqrtpricemath.EncodeSqrtRatioX96(priceLower.Numerator, priceLower.Denominator)
	if sqrtRatioLowerX96.Cmp(tickmath.MIN_SQRT_RATIO) <= 0 {
		sqrtRatioLowerX96 = new(big.Int).Add(tickmath.MIN_SQRT_RATIO, big.NewInt(1))
	}
	sqrtRatioUpperX96 = sqrtpricemath.EncodeSqrtRatioX96(priceUpper.Numerator, priceUpper.Denominator)
	if sqrtRatioUpperX96.Cmp(tickmath.MAX_SQRT_RATIO) >= 0 {
		sqrtRatioUpperX96 = new(big.Int).Sub(tickmath.MAX_SQRT_RATIO, big.NewInt(1))
	}
	return sqrtRatioLowerX96, sqrtRatioUpperX96
}

// counterfactualPool rebuilds the position's pool at a shifted price with no
// tick data; slippage accounting never swaps against it.
func (pos *Position) counterfactualPool(sqrtRatioX96 *big.Int) (*pool.Pool, error) {
	tick, err := tickmath.GetTickAtSqrtRatio(sqrtRatioX96)
	if err != nil {
		return nil, err
	}
	return pool.New(pos.Pool.Token0, pos.Pool.Token1, pos.Pool.Fee, sqrtRatioX96, new(big.Int), tick, nil)
}

// MintAmountsWithSlippage returns the amounts to demand as minimums when
// minting, assuming the price moves by up to the tolerance before execution.
// The asymmetry is deliberate: amount0 comes from the upper-price pool and
// amount1 from the lower-price pool, each the smaller of the pair. Inverting
// the selection would produce bounds too generous to the liquidity provider.
func (pos *Position) MintAmountsWithSlippage(tolerance entities.Percent) (Amounts, error) {
	sqrtRatioLower, sqrtRatioUpper := pos.RatiosAfterSlippage(tolerance)

	poolLower, err := pos.counterfactualPool(sqrtRatioLower)
	if err != nil {
		return Amounts{}, err
	}
	poolUpper, err := pos.counterfactualPool(sqrtRatioUpper)
	if err != nil {
		return Amounts{}, err
	}

	// The liquidity that would actually be created at the current price.
	current, err := pos.MintAmounts()
	if err != nil {
		return Amounts{}, err
	}
	created, err := FromAmounts(pos.Pool, pos.TickLower, pos.TickUpper, current.Amount0, current.Amount1)
	if err != nil {
		return Amounts{}, err
	}

	atUpper, err := (&Position{Pool: poolUpper, TickLower: pos.TickLower, TickUpper: pos.TickUpper, Liquidity: created.Liquidity}).MintAmounts()
	if err != nil {
		return Amounts{}, err
	}
	atLower, err := (&Position{Pool: poolLower, TickLower: pos.TickLower, TickUpper: pos.TickUpper, Liquidity: created.Liquidity}).MintAmounts()
	if err != nil {
		return Amounts{}, err
	}
	return Amounts{Amount0: atUpper.Amount0, Amount1: atLower.Amount1}, nil
}

// BurnAmountsWithSlippage returns the smallest amounts the position is
// guaranteed to yield on burn if the price moves by up to the tolerance,
// with the same asymmetric pool selection as minting.
func (pos *Position) BurnAmountsWithSlippage(tolerance entities.Percent) (Amounts, error) {
	sqrtRatioLower, sqrtRatioUpper := pos.RatiosAfterSlippage(tolerance)

	poolLower, err := pos.counterfactualPool(sqrtRatioLower)
	if err != nil {
		return Amounts{}, err
	}
	poolUpper, err := pos.counterfactualPool(sqrtRatioUpper)
	if err != nil {
		return Amounts{}, err
	}

	atUpper, err := (&Position{Pool: poolUpper, TickLower: pos.TickLower, TickUpper: pos.TickUpper, Liquidity: pos.Liquidity}).BurnAmounts()
	if err != nil {
		return Amounts{}, err
	}
	atLower, err := (&Position{Pool: poolLower, TickLower: pos.TickLower, TickUpper: pos.TickUpper, Liquidity: pos.Liquidity}).BurnAmounts()
	if err != nil {
		return Amounts{}, err
	}
	return Amounts{Amount0: atUpper.Amount0, Amount1: atLower.Amount1}, nil
}
