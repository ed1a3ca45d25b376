// Package ticklist holds the sorted sparse set of initialized ticks for one
// pool and answers the "next initialized tick" queries the swap loop walks.
// A List is validated once at construction and immutable afterwards.
package ticklist

import (
	"errors"
	"math/big"
	"sort"
)

var (
	ErrEmptyList       = errors.New("tick list must not be empty")
	ErrInvalidSpacing  = errors.New("tick spacing must be greater than zero")
	ErrUnsortedTicks   = errors.New("ticks must be sorted strictly ascending by index")
	ErrMisalignedTick  = errors.New("tick index not a multiple of the tick spacing")
	ErrNetLiquidity    = errors.New("tick net liquidity does not sum to zero")
	ErrTickNotFound    = errors.New("tick not initialized")
	ErrBelowSmallest   = errors.New("tick is below the smallest initialized tick")
)

// Tick is one initialized tick: the total liquidity referencing it and the
// signed delta applied to in-range liquidity when price crosses it upward.
type Tick struct {
	Index          int      `json:"index"`
	LiquidityGross *big.Int `json:"liquidityGross"`
	LiquidityNet   *big.Int `json:"liquidityNet"`
}

// List is an immutable, index-sorted collection of initialized ticks,
// validated at construction: strictly ascending, spacing-aligned, and with
// net liquidity summing to zero (liquidity added at a lower tick must be
// exactly removed at its paired upper tick).
type List struct {
	ticks       []Tick
	tickSpacing int
}

// New validates and builds a tick list. The input slice is copied; a
// validation failure is a data-integrity bug in the caller's snapshot, not a
// runtime condition.
func New(ticks []Tick, tickSpacing int) (*List, error) {
	if tickSpacing <= 0 {
		return nil, ErrInvalidSpacing
	}
	if len(ticks) == 0 {
		return nil, ErrEmptyList
	}

	netSum := new(big.Int)
	for i, tick := range ticks {
		if tick.Index%tickSpacing != 0 {
			return nil, ErrMisalignedTick
		}
		if i > 0 && ticks[i-1].Index >= tick.Index {
			return nil, ErrUnsortedTicks
		}
		netSum.Add(netSum, tick.LiquidityNet)
	}
	if netSum.Sign() != 0 {
		return nil, ErrNetLiquidity
	}

	copied := make([]Tick, len(ticks))
	copy(copied, ticks)
	return &List{ticks: copied, tickSpacing: tickSpacing}, nil
}

// Len returns the number of initialized ticks.
func (l *List) Len() int { return len(l.ticks) }

// All returns a copy of the initialized ticks in ascending index order.
func (l *List) All() []Tick {
	out := make([]Tick, len(l.ticks))
	copy(out, l.ticks)
	return out
}

// TickSpacing returns the spacing the list was validated against.
func (l *List) TickSpacing() int { return l.tickSpacing }

// IsBelowSmallest reports whether tick is below every initialized tick.
func (l *List) IsBelowSmallest(tick int) bool {
	return tick < l.ticks[0].Index
}

// IsAtOrAboveLargest reports whether tick is at or above the largest
// initialized tick.
func (l *List) IsAtOrAboveLargest(tick int) bool {
	return tick >= l.ticks[len(l.ticks)-1].Index
}

// Get returns the tick initialized at exactly the given index.
func (l *List) Get(index int) (Tick, error) {
	i := sort.Search(len(l.ticks), func(i int) bool {
		return l.ticks[i].Index >= index
	})
	if i == len(l.ticks) || l.ticks[i].Index != index {
		return Tick{}, ErrTickNotFound
	}
	return l.ticks[i], nil
}

// findAtOrBelow returns the index into l.ticks of the largest initialized
// tick at or below the query. Callers must rule out IsBelowSmallest first.
func (l *List) findAtOrBelow(tick int) int {
	// Smallest i with ticks[i].Index > tick; the answer sits just before it.
	i := sort.Search(len(l.ticks), func(i int) bool {
		return l.ticks[i].Index > tick
	})
	return i - 1
}

// NextInitializedTick returns the closest initialized tick at-or-below
// (lte=true) or strictly-above (lte=false) the query tick.
func (l *List) NextInitializedTick(tick int, lte bool) (Tick, error) {
	if lte {
		if l.IsBelowSmallest(tick) {
			return Tick{}, ErrBelowSmallest
		}
		if l.IsAtOrAboveLargest(tick) {
			return l.ticks[len(l.ticks)-1], nil
		}
		return l.ticks[l.findAtOrBelow(tick)], nil
	}

	if l.IsAtOrAboveLargest(tick) {
		return Tick{}, ErrTickNotFound
	}
	if l.IsBelowSmallest(tick) {
		return l.ticks[0], nil
	}
	return l.ticks[l.findAtOrBelow(tick)+1], nil
}

// NextInitializedTickWithinOneWord answers the swap loop's bounded search:
// the next initialized tick in the given direction, clamped to the
// 256-spacing-unit bitmap word containing the query (mirroring the on-chain
// gas-bounded search). The boolean reports whether the returned index is a
// truly initialized tick; a false means the word boundary was hit and no
// liquidity delta applies there.
func (l *List) NextInitializedTickWithinOneWord(tick int, lte bool) (int, bool) {
	compressed := floorDiv(tick, l.tickSpacing)

	if lte {
		wordPos := compressed >> 8
		minimum := (wordPos << 8) * l.tickSpacing
		if l.IsBelowSmallest(tick) {
			return minimum, false
		}
		index := l.ticks[l.findAtOrBelow(tick)].Index
		if index < minimum {
			return minimum, false
		}
		return index, true
	}

	wordPos := (compressed + 1) >> 8
	maximum := (((wordPos + 1) << 8) - 1) * l.tickSpacing
	if l.IsAtOrAboveLargest(tick) {
		return maximum, false
	}
	var index int
	if l.IsBelowSmallest(tick) {
		index = l.ticks[0].Index
	} else {
		index = l.ticks[l.findAtOrBelow(tick)+1].Index
	}
	if index > maximum {
		return maximum, false
	}
	return index, true
}

// floorDiv divides rounding toward negative infinity, matching the tick
// compression of the on-chain bitmap.
func floorDiv(x, y int) int {
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q
}
