package entities

import "errors"

var ErrUnknownFeeTier = errors.New("unknown fee tier")

// FeeTier is a pool fee in hundredths of a basis point (1e-6 units).
type FeeTier uint64

const (
	FeeLowest FeeTier = 100
	FeeLow    FeeTier = 500
	FeeMedium FeeTier = 3000
	FeeHigh   FeeTier = 10000
)

// tickSpacings binds every supported fee tier to its fixed tick spacing. Any
// tick used in a pool of a given fee must be an exact multiple of this value.
var tickSpacings = map[FeeTier]int{
	FeeLowest: 1,
	FeeLow:    10,
	FeeMedium: 60,
	FeeHigh:   200,
}

// TickSpacing returns the tick spacing bound to the fee tier.
func (f FeeTier) TickSpacing() (int, error) {
	spacing, ok := tickSpacings[f]
	if !ok {
		return 0, ErrUnknownFeeTier
	}
	return spacing, nil
}

// Valid reports whether the fee tier is one of the deployed tiers.
func (f FeeTier) Valid() bool {
	_, ok := tickSpacings[f]
	return ok
}
