package entities

import (
	"math/big"
)

// Fraction is an exact rational number backed by arbitrary-precision
// integers. All derived prices and percentages in this library are Fractions;
// floating point never enters the math.
type Fraction struct {
	Numerator   *big.Int
	Denominator *big.Int
}

// NewFraction constructs a fraction. A nil denominator means 1.
func NewFraction(numerator, denominator *big.Int) Fraction {
	if denominator == nil {
		denominator = big.NewInt(1)
	}
	return Fraction{
		Numerator:   new(big.Int).Set(numerator),
		Denominator: new(big.Int).Set(denominator),
	}
}

// FractionFromInt constructs the fraction n/1 from a machine integer.
func FractionFromInt(n int64) Fraction {
	return Fraction{Numerator: big.NewInt(n), Denominator: big.NewInt(1)}
}

// Add returns f + other.
func (f Fraction) Add(other Fraction) Fraction {
	if f.Denominator.Cmp(other.Denominator) == 0 {
		return Fraction{
			Numerator:   new(big.Int).Add(f.Numerator, other.Numerator),
			Denominator: new(big.Int).Set(f.Denominator),
		}
	}
	num := new(big.Int).Mul(f.Numerator, other.Denominator)
	num.Add(num, new(big.Int).Mul(other.Numerator, f.Denominator))
	return Fraction{
		Numerator:   num,
		Denominator: new(big.Int).Mul(f.Denominator, other.Denominator),
	}
}

// Sub returns f - other.
func (f Fraction) Sub(other Fraction) Fraction {
	if f.Denominator.Cmp(other.Denominator) == 0 {
		return Fraction{
			Numerator:   new(big.Int).Sub(f.Numerator, other.Numerator),
			Denominator: new(big.Int).Set(f.Denominator),
		}
	}
	num := new(big.Int).Mul(f.Numerator, other.Denominator)
	num.Sub(num, new(big.Int).Mul(other.Numerator, f.Denominator))
	return Fraction{
		Numerator:   num,
		Denominator: new(big.Int).Mul(f.Denominator, other.Denominator),
	}
}

// Mul returns f * other.
func (f Fraction) Mul(other Fraction) Fraction {
	return Fraction{
		Numerator:   new(big.Int).Mul(f.Numerator, other.Numerator),
		Denominator: new(big.Int).Mul(f.Denominator, other.Denominator),
	}
}

// Div returns f / other.
func (f Fraction) Div(other Fraction) Fraction {
	return Fraction{
		Numerator:   new(big.Int).Mul(f.Numerator, other.Denominator),
		Denominator: new(big.Int).Mul(f.Denominator, other.Numerator),
	}
}

// Invert returns 1 / f.
func (f Fraction) Invert() Fraction {
	return Fraction{
		Numerator:   new(big.Int).Set(f.Denominator),
		Denominator: new(big.Int).Set(f.Numerator),
	}
}

// Cmp compares f to other, returning -1, 0 or +1. Cross-multiplication keeps
// the comparison exact regardless of denominator signs.
func (f Fraction) Cmp(other Fraction) int {
	left := new(big.Int).Mul(f.Numerator, other.Denominator)
	right := new(big.Int).Mul(other.Numerator, f.Denominator)
	// Flip the comparison when the cross-multiplied denominators differ in sign.
	if new(big.Int).Mul(f.Denominator, other.Denominator).Sign() < 0 {
		return right.Cmp(left)
	}
	return left.Cmp(right)
}

// LessThan reports f < other.
func (f Fraction) LessThan(other Fraction) bool { return f.Cmp(other) < 0 }

// GreaterThan reports f > other.
func (f Fraction) GreaterThan(other Fraction) bool { return f.Cmp(other) > 0 }

// EqualTo reports f == other as rationals.
func (f Fraction) EqualTo(other Fraction) bool { return f.Cmp(other) == 0 }

// Quotient returns the integer part of the fraction (floor division toward zero).
func (f Fraction) Quotient() *big.Int {
	return new(big.Int).Quo(f.Numerator, f.Denominator)
}

// Remainder returns the fractional remainder after Quotient.
func (f Fraction) Remainder() Fraction {
	return Fraction{
		Numerator:   new(big.Int).Rem(f.Numerator, f.Denominator),
		Denominator: new(big.Int).Set(f.Denominator),
	}
}
