package snapshot

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// StateDiff summarizes how a set of pool states changed between two
// snapshots, keyed by pool address.
type StateDiff struct {
	Additions []PoolState      `json:"additions,omitempty"`
	Updates   []PoolState      `json:"updates,omitempty"`
	Deletions []common.Address `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d StateDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

// poolChanged compares the swap-relevant fields of two states of the same
// pool. Tick comparison is order-insensitive.
func poolChanged(old, new PoolState) bool {
	if old.Tick != new.Tick {
		return true
	}
	if old.SqrtPriceX96.Cmp(new.SqrtPriceX96) != 0 {
		return true
	}
	if old.Liquidity.Cmp(new.Liquidity) != 0 {
		return true
	}

	if len(old.Ticks) != len(new.Ticks) {
		return true
	}

	oldTicks := make([]TickState, len(old.Ticks))
	copy(oldTicks, old.Ticks)
	sort.Slice(oldTicks, func(i, j int) bool { return oldTicks[i].Index < oldTicks[j].Index })

	newTicks := make([]TickState, len(new.Ticks))
	copy(newTicks, new.Ticks)
	sort.Slice(newTicks, func(i, j int) bool { return newTicks[i].Index < newTicks[j].Index })

	for i := range oldTicks {
		if oldTicks[i].Index != newTicks[i].Index {
			return true
		}
		if oldTicks[i].LiquidityNet.Cmp(newTicks[i].LiquidityNet) != 0 {
			return true
		}
		if oldTicks[i].LiquidityGross.Cmp(newTicks[i].LiquidityGross) != 0 {
			return true
		}
	}

	return false
}

// Diff calculates the difference between two snapshots of pool state. Maps
// keyed by pool address keep the lookups O(1) on average.
func Diff(old, new []PoolState) StateDiff {
	oldByID := make(map[common.Address]PoolState, len(old))
	for _, s := range old {
		oldByID[s.ID()] = s
	}
	newByID := make(map[common.Address]PoolState, len(new))
	for _, s := range new {
		newByID[s.ID()] = s
	}

	var additions []PoolState
	var updates []PoolState
	var deletions []common.Address

	for id, newState := range newByID {
		oldState, exists := oldByID[id]
		if !exists {
			additions = append(additions, newState)
			continue
		}
		if poolChanged(oldState, newState) {
			updates = append(updates, newState)
		}
	}

	for id := range oldByID {
		if _, exists := newByID[id]; !exists {
			deletions = append(deletions, id)
		}
	}

	return StateDiff{
		Additions: additions,
		Updates:   updates,
		Deletions: deletions,
	}
}
