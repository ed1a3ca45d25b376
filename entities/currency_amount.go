package entities

import (
	"errors"
	"math/big"
)

var ErrCurrencyMismatch = errors.New("currency mismatch")

// CurrencyAmount pairs a token with a raw integer amount in the token's
// smallest unit. Arithmetic between amounts of different tokens is a caller
// bug and fails loudly.
type CurrencyAmount struct {
	Token  Token
	Amount *big.Int
}

// NewCurrencyAmount constructs an amount of the given token. The raw value is
// copied; callers keep ownership of the input.
func NewCurrencyAmount(token Token, raw *big.Int) CurrencyAmount {
	return CurrencyAmount{Token: token, Amount: new(big.Int).Set(raw)}
}

// Add returns a + other. Both amounts must be of the same token.
func (a CurrencyAmount) Add(other CurrencyAmount) (CurrencyAmount, error) {
	if !a.Token.Equal(other.Token) {
		return CurrencyAmount{}, ErrCurrencyMismatch
	}
	return CurrencyAmount{Token: a.Token, Amount: new(big.Int).Add(a.Amount, other.Amount)}, nil
}

// Sub returns a - other. Both amounts must be of the same token.
func (a CurrencyAmount) Sub(other CurrencyAmount) (CurrencyAmount, error) {
	if !a.Token.Equal(other.Token) {
		return CurrencyAmount{}, ErrCurrencyMismatch
	}
	return CurrencyAmount{Token: a.Token, Amount: new(big.Int).Sub(a.Amount, other.Amount)}, nil
}

// AsFraction returns the raw amount over the token's decimal scale, an exact
// rational representation of the human-readable amount.
func (a CurrencyAmount) AsFraction() Fraction {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(a.Token.Decimals)), nil)
	return NewFraction(a.Amount, scale)
}
