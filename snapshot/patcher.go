package snapshot

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// copyTickState creates a deep copy of a TickState, ensuring the *big.Int
// pointers are new.
func copyTickState(t TickState) TickState {
	out := t
	out.LiquidityGross = new(big.Int).Set(t.LiquidityGross)
	out.LiquidityNet = new(big.Int).Set(t.LiquidityNet)
	return out
}

// deepCopyPoolState creates a PoolState with its own memory for every
// pointer field, including the nested tick slice. Patching must never alias
// the previous snapshot's allocations.
func deepCopyPoolState(s PoolState) PoolState {
	out := s
	out.SqrtPriceX96 = new(big.Int).Set(s.SqrtPriceX96)
	out.Liquidity = new(big.Int).Set(s.Liquidity)
	if s.Ticks != nil {
		ticks := make([]TickState, len(s.Ticks))
		for i, t := range s.Ticks {
			ticks[i] = copyTickState(t)
		}
		out.Ticks = ticks
	}
	return out
}

// Patch constructs the next snapshot by applying a diff to the previous one.
// The previous snapshot is left untouched.
func Patch(prev []PoolState, diff StateDiff) ([]PoolState, error) {
	next := make(map[common.Address]PoolState, len(prev))
	for _, s := range prev {
		next[s.ID()] = deepCopyPoolState(s)
	}

	for _, id := range diff.Deletions {
		delete(next, id)
	}
	for _, s := range diff.Updates {
		next[s.ID()] = deepCopyPoolState(s)
	}
	for _, s := range diff.Additions {
		next[s.ID()] = deepCopyPoolState(s)
	}

	out := make([]PoolState, 0, len(next))
	for _, s := range next {
		out = append(out, s)
	}
	return out, nil
}
