package position

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defiquote/clmm-go/entities"
	"github.com/defiquote/clmm-go/pool"
)

var (
	tokenA = entities.NewToken(1, common.HexToAddress("0x0000000000000000000000000000000000000001"), 18, "TKA", "Token A")
	tokenB = entities.NewToken(1, common.HexToAddress("0x0000000000000000000000000000000000000002"), 18, "TKB", "Token B")

	// sqrt price at tick 0.
	sqrtRatioX96AtZero = new(big.Int).Lsh(big.NewInt(1), 96)
)

func newTestPool(t *testing.T) *pool.Pool {
	t.Helper()
	p, err := pool.New(tokenA, tokenB, entities.FeeMedium, sqrtRatioX96AtZero, big.NewInt(1_000_000_000_000), 0, nil)
	require.NoError(t, err)
	return p
}

func TestNew_Validation(t *testing.T) {
	p := newTestPool(t)
	liquidity := big.NewInt(1000)

	_, err := New(p, 120, 60, liquidity)
	assert.ErrorIs(t, err, ErrTickOrder)

	_, err = New(p, 60, 60, liquidity)
	assert.ErrorIs(t, err, ErrTickOrder)

	_, err = New(p, -50, 60, liquidity)
	assert.ErrorIs(t, err, ErrTickAlignment)

	_, err = New(p, -887280, 60, liquidity)
	assert.ErrorIs(t, err, ErrTickBounds)

	pos, err := New(p, -60, 60, liquidity)
	require.NoError(t, err)
	assert.Equal(t, liquidity, pos.Liquidity)
}

func TestAmounts_ErrorIsSticky(t *testing.T) {
	p := newTestPool(t)
	pos, err := New(p, -60, 60, big.NewInt(1000))
	require.NoError(t, err)

	// The tick fields are exported; corrupt one past the valid range so the
	// first amounts computation fails.
	pos.TickUpper = 900_060

	_, err = pos.MintAmounts()
	require.Error(t, err)

	// Repeat calls must keep returning the failure instead of a zero-value
	// result from the consumed cache.
	_, err = pos.MintAmounts()
	assert.Error(t, err)

	_, err = pos.BurnAmounts()
	require.Error(t, err)
	_, err = pos.BurnAmounts()
	assert.Error(t, err)
}

func TestAmounts_RangeSplit(t *testing.T) {
	p := newTestPool(t)
	liquidity := big.NewInt(1_000_000_000)

	t.Run("range above current price is all token0", func(t *testing.T) {
		pos, err := New(p, 60, 120, liquidity)
		require.NoError(t, err)

		amount0, err := pos.Amount0()
		require.NoError(t, err)
		amount1, err := pos.Amount1()
		require.NoError(t, err)

		assert.Positive(t, amount0.Sign())
		assert.Zero(t, amount1.Sign())
	})

	t.Run("range below current price is all token1", func(t *testing.T) {
		pos, err := New(p, -120, -60, liquidity)
		require.NoError(t, err)

		amount0, err := pos.Amount0()
		require.NoError(t, err)
		amount1, err := pos.Amount1()
		require.NoError(t, err)

		assert.Zero(t, amount0.Sign())
		assert.Positive(t, amount1.Sign())
	})

	t.Run("range straddling current price holds both", func(t *testing.T) {
		pos, err := New(p, -60, 60, liquidity)
		require.NoError(t, err)

		amount0, err := pos.Amount0()
		require.NoError(t, err)
		amount1, err := pos.Amount1()
		require.NoError(t, err)

		assert.Positive(t, amount0.Sign())
		assert.Positive(t, amount1.Sign())
	})
}

// Mint amounts round in the pool's favor, burn amounts in the pool's favor
// too, so mint >= burn per token and they differ by at most one unit.
func TestMintVersusBurnRounding(t *testing.T) {
	p := newTestPool(t)
	pos, err := New(p, -60, 60, big.NewInt(1_000_000_000))
	require.NoError(t, err)

	mint, err := pos.MintAmounts()
	require.NoError(t, err)
	burn, err := pos.BurnAmounts()
	require.NoError(t, err)

	one := big.NewInt(1)
	for _, pair := range []struct {
		name       string
		mint, burn *big.Int
	}{
		{"amount0", mint.Amount0, burn.Amount0},
		{"amount1", mint.Amount1, burn.Amount1},
	} {
		diff := new(big.Int).Sub(pair.mint, pair.burn)
		assert.GreaterOrEqual(t, diff.Sign(), 0, "%s: mint must not be below burn", pair.name)
		assert.LessOrEqual(t, diff.Cmp(one), 0, "%s: rounding gap above one unit", pair.name)
	}
}

func TestFromAmounts_RoundTrip(t *testing.T) {
	p := newTestPool(t)
	pos, err := New(p, -60, 60, big.NewInt(1_000_000_000))
	require.NoError(t, err)

	mint, err := pos.MintAmounts()
	require.NoError(t, err)

	// Rebuilding from the rounded-up mint amounts must recover at least the
	// original liquidity and never exceed it by meaningful slack.
	rebuilt, err := FromAmounts(p, -60, 60, mint.Amount0, mint.Amount1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rebuilt.Liquidity.Cmp(pos.Liquidity), 0)
}

func TestRatiosAfterSlippage_Clamped(t *testing.T) {
	p := newTestPool(t)
	pos, err := New(p, -60, 60, big.NewInt(1000))
	require.NoError(t, err)

	// A 100% tolerance pushes the lower bound to zero price; it must clamp
	// to just inside the valid sqrt-ratio domain.
	lower, upper := pos.RatiosAfterSlippage(entities.NewPercent(big.NewInt(1), big.NewInt(1)))
	assert.Positive(t, lower.Sign())
	assert.Negative(t, lower.Cmp(upper))

	// Zero tolerance keeps both bounds at the current price.
	lower, upper = pos.RatiosAfterSlippage(entities.NewPercent(big.NewInt(0), big.NewInt(1)))
	assert.Zero(t, lower.Cmp(upper))
	assert.Zero(t, lower.Cmp(p.SqrtRatioX96))
}

func TestMintAmountsWithSlippage_OutOfRange(t *testing.T) {
	p := newTestPool(t)
	pos, err := New(p, 60, 120, big.NewInt(1_000_000_000))
	require.NoError(t, err)

	mint, err := pos.MintAmounts()
	require.NoError(t, err)

	// 0.1% tolerance keeps both counterfactual prices below the range, so
	// the full-range token0 amount is price-independent and the recomputed
	// liquidity rounds up: the bound never demands less than plain minting.
	bounded, err := pos.MintAmountsWithSlippage(entities.PercentFromBips(10))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, bounded.Amount0.Cmp(mint.Amount0), 0)
	assert.Zero(t, bounded.Amount1.Sign())
	assert.Zero(t, mint.Amount1.Sign())
}

func TestBurnAmountsWithSlippage_InRange(t *testing.T) {
	p := newTestPool(t)
	pos, err := New(p, -600, 600, big.NewInt(1_000_000_000))
	require.NoError(t, err)

	burn, err := pos.BurnAmounts()
	require.NoError(t, err)

	bounded, err := pos.BurnAmountsWithSlippage(entities.PercentFromBips(50))
	require.NoError(t, err)

	// Each bound comes from the adverse-direction pool, so neither token's
	// guaranteed amount can exceed the unperturbed burn value.
	assert.LessOrEqual(t, bounded.Amount0.Cmp(burn.Amount0), 0)
	assert.LessOrEqual(t, bounded.Amount1.Cmp(burn.Amount1), 0)
}
