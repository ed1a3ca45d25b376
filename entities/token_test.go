package entities

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addrA = common.HexToAddress("0x0000000000000000000000000000000000000001")
	addrB = common.HexToAddress("0x0000000000000000000000000000000000000002")
	addrC = common.HexToAddress("0x0000000000000000000000000000000000000003")
)

func TestTokenEqual(t *testing.T) {
	a := NewToken(1, addrA, 18, "A", "Token A")
	sameIdentity := NewToken(1, addrA, 6, "A'", "Renamed")
	otherChain := NewToken(10, addrA, 18, "A", "Token A")
	otherAddr := NewToken(1, addrB, 18, "B", "Token B")

	assert.True(t, a.Equal(sameIdentity), "decimals and names do not affect identity")
	assert.False(t, a.Equal(otherChain))
	assert.False(t, a.Equal(otherAddr))
}

func TestTokenSortsBefore(t *testing.T) {
	a := NewToken(1, addrA, 18, "A", "")
	b := NewToken(1, addrB, 18, "B", "")

	first, err := a.SortsBefore(b)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := b.SortsBefore(a)
	require.NoError(t, err)
	assert.False(t, second)

	t.Run("different chains", func(t *testing.T) {
		other := NewToken(10, addrB, 18, "B", "")
		_, err := a.SortsBefore(other)
		assert.ErrorIs(t, err, ErrDifferentChains)
	})

	t.Run("same address", func(t *testing.T) {
		_, err := a.SortsBefore(a)
		assert.ErrorIs(t, err, ErrSameAddress)
	})
}

func TestNativeTokenWrapped(t *testing.T) {
	weth := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	native := NewNativeToken(1, weth, 18, "ETH", "Ether")
	erc20 := NewToken(1, weth, 18, "WETH", "Wrapped Ether")

	assert.True(t, native.IsNative)
	wrapped := native.Wrapped()
	assert.False(t, wrapped.IsNative)
	assert.True(t, wrapped.Equal(erc20))

	// Wrapping an ERC-20 is the identity.
	assert.Equal(t, erc20, erc20.Wrapped())
}

func TestFeeTierTickSpacing(t *testing.T) {
	testCases := []struct {
		fee     FeeTier
		spacing int
	}{
		{FeeLowest, 1},
		{FeeLow, 10},
		{FeeMedium, 60},
		{FeeHigh, 200},
	}

	for _, tc := range testCases {
		spacing, err := tc.fee.TickSpacing()
		require.NoError(t, err)
		assert.Equal(t, tc.spacing, spacing)
		assert.True(t, tc.fee.Valid())
	}

	t.Run("unknown tier", func(t *testing.T) {
		_, err := FeeTier(1234).TickSpacing()
		assert.ErrorIs(t, err, ErrUnknownFeeTier)
		assert.False(t, FeeTier(1234).Valid())
	})
}
