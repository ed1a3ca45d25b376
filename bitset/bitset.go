// Package bitset provides a flat word-backed bit set. The router's path
// search uses it to mark candidate pools already spent on a partial route,
// cloning the set at every branch point.
package bitset

import "fmt"

// BitSet is a fixed-capacity bit vector backed by 64-bit words.
type BitSet []uint64

// New returns a BitSet able to hold n bits, all clear.
func New(n uint64) BitSet {
	words := (n + 63) / 64
	return make(BitSet, words)
}

// IsSet reports whether the bit at index is set.
func (b BitSet) IsSet(index uint64) bool {
	mask := uint64(1) << (index % 64)
	return (b[index/64] & mask) != 0
}

// Set sets the bit at index.
func (b BitSet) Set(index uint64) {
	b[index/64] |= uint64(1) << (index % 64)
}

// Unset clears the bit at index.
func (b BitSet) Unset(index uint64) {
	b[index/64] &^= uint64(1) << (index % 64)
}

// Clear zeroes every bit in place.
func (b BitSet) Clear() {
	for i := range b {
		b[i] = 0
	}
}

// Clone returns an independent copy of the set.
func (b BitSet) Clone() BitSet {
	out := make(BitSet, len(b))
	copy(out, b)
	return out
}

// SetFrom overwrites the set with the contents of o. Both sets must have
// the same capacity.
func (b BitSet) SetFrom(o BitSet) {
	if len(b) != len(o) {
		panic(fmt.Sprintf("bitsets must be same size: got %d vs %d", len(b), len(o)))
	}
	copy(b, o)
}
