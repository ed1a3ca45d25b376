package liquiditymath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDelta(t *testing.T) {
	testCases := []struct {
		name     string
		x, y     *big.Int
		expected *big.Int
		err      error
	}{
		{"add", big.NewInt(100), big.NewInt(50), big.NewInt(150), nil},
		{"remove", big.NewInt(100), big.NewInt(-50), big.NewInt(50), nil},
		{"remove all", big.NewInt(100), big.NewInt(-100), big.NewInt(0), nil},
		{"underflow", big.NewInt(100), big.NewInt(-101), nil, ErrLiquidityUnderflow},
		{"overflow", maxUint128, big.NewInt(1), nil, ErrLiquidityOverflow},
		{"at the ceiling", new(big.Int).Sub(maxUint128, big.NewInt(1)), big.NewInt(1), new(big.Int).Set(maxUint128), nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := AddDelta(tc.x, tc.y)
			if tc.err != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.err)
			} else {
				require.NoError(t, err)
				assert.Zero(t, tc.expected.Cmp(result))
			}
		})
	}
}

func TestAddDeltaDoesNotMutate(t *testing.T) {
	x := big.NewInt(100)
	y := big.NewInt(-40)
	_, err := AddDelta(x, y)
	require.NoError(t, err)
	assert.Zero(t, big.NewInt(100).Cmp(x))
	assert.Zero(t, big.NewInt(-40).Cmp(y))
}

func TestMaxLiquidityForAmounts(t *testing.T) {
	q96 := new(big.Int).Lsh(big.NewInt(1), 96)
	// sqrt prices at roughly 1:1, and a band around it.
	sqrtLower := new(big.Int).Div(new(big.Int).Mul(q96, big.NewInt(99)), big.NewInt(100))
	sqrtUpper := new(big.Int).Div(new(big.Int).Mul(q96, big.NewInt(101)), big.NewInt(100))

	amount0 := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	amount1 := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	t.Run("below the range only token0 binds", func(t *testing.T) {
		current := new(big.Int).Div(new(big.Int).Mul(q96, big.NewInt(90)), big.NewInt(100))
		got := MaxLiquidityForAmounts(current, sqrtLower, sqrtUpper, amount0, big.NewInt(0))
		want := MaxLiquidityForAmount0(sqrtLower, sqrtUpper, amount0)
		assert.Zero(t, want.Cmp(got))
		assert.True(t, got.Sign() > 0)
	})

	t.Run("above the range only token1 binds", func(t *testing.T) {
		current := new(big.Int).Div(new(big.Int).Mul(q96, big.NewInt(110)), big.NewInt(100))
		got := MaxLiquidityForAmounts(current, sqrtLower, sqrtUpper, big.NewInt(0), amount1)
		want := MaxLiquidityForAmount1(sqrtLower, sqrtUpper, amount1)
		assert.Zero(t, want.Cmp(got))
		assert.True(t, got.Sign() > 0)
	})

	t.Run("inside the range the smaller side binds", func(t *testing.T) {
		got := MaxLiquidityForAmounts(q96, sqrtLower, sqrtUpper, amount0, amount1)
		liquidity0 := MaxLiquidityForAmount0(q96, sqrtUpper, amount0)
		liquidity1 := MaxLiquidityForAmount1(sqrtLower, q96, amount1)

		want := liquidity0
		if liquidity1.Cmp(liquidity0) < 0 {
			want = liquidity1
		}
		assert.Zero(t, want.Cmp(got))
	})

	t.Run("bound order does not matter", func(t *testing.T) {
		forward := MaxLiquidityForAmounts(q96, sqrtLower, sqrtUpper, amount0, amount1)
		backward := MaxLiquidityForAmounts(q96, sqrtUpper, sqrtLower, amount0, amount1)
		assert.Zero(t, forward.Cmp(backward))
	})

	t.Run("starving one side inside the range starves liquidity", func(t *testing.T) {
		got := MaxLiquidityForAmounts(q96, sqrtLower, sqrtUpper, amount0, big.NewInt(1))
		full := MaxLiquidityForAmounts(q96, sqrtLower, sqrtUpper, amount0, amount1)
		assert.True(t, got.Cmp(full) < 0)
	})
}
