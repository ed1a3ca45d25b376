package entities

import "math/big"

var oneHundred = FractionFromInt(100)

// Percent is a Fraction interpreted as a percentage. A Percent of 1/100 is
// one percent. It is used for slippage tolerances and price impact.
type Percent struct {
	Fraction
}

// NewPercent constructs numerator/denominator as a percentage.
func NewPercent(numerator, denominator *big.Int) Percent {
	return Percent{NewFraction(numerator, denominator)}
}

// PercentFromBips constructs a Percent from basis points (1 bip = 0.01%).
func PercentFromBips(bips int64) Percent {
	return Percent{NewFraction(big.NewInt(bips), big.NewInt(10_000))}
}

// Add returns p + other as a Percent.
func (p Percent) Add(other Percent) Percent {
	return Percent{p.Fraction.Add(other.Fraction)}
}

// Sub returns p - other as a Percent.
func (p Percent) Sub(other Percent) Percent {
	return Percent{p.Fraction.Sub(other.Fraction)}
}

// ToSignificant returns the percentage scaled by 100 as a Fraction, i.e. the
// human-readable magnitude ("0.3" for a 3/1000 Percent).
func (p Percent) ToSignificant() Fraction {
	return p.Fraction.Mul(oneHundred)
}
