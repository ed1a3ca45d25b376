package entities

import "math/big"

// Price expresses an exchange rate as the exact ratio between a quote-token
// amount and a base-token amount: one unit of Base buys
// QuoteAmount/BaseAmount units of Quote (in raw smallest units).
type Price struct {
	Base  Token
	Quote Token
	// value is quoteAmount/baseAmount in raw units.
	value Fraction
}

// NewPrice constructs the price of base denominated in quote from raw
// amounts: baseAmount of base trades for quoteAmount of quote.
func NewPrice(base, quote Token, baseAmount, quoteAmount *big.Int) Price {
	return Price{
		Base:  base,
		Quote: quote,
		value: NewFraction(quoteAmount, baseAmount),
	}
}

// NewPriceFromFraction constructs a price directly from a raw-unit fraction.
func NewPriceFromFraction(base, quote Token, value Fraction) Price {
	return Price{Base: base, Quote: quote, value: value}
}

// Fraction returns the raw-unit quote/base ratio.
func (p Price) Fraction() Fraction { return p.value }

// Invert returns the price of quote denominated in base.
func (p Price) Invert() Price {
	return Price{Base: p.Quote, Quote: p.Base, value: p.value.Invert()}
}

// Mul chains two prices: (A in B) * (B in C) = A in C. The intermediate
// currencies must line up.
func (p Price) Mul(other Price) (Price, error) {
	if !p.Quote.Equal(other.Base) {
		return Price{}, ErrCurrencyMismatch
	}
	return Price{
		Base:  p.Base,
		Quote: other.Quote,
		value: p.value.Mul(other.value),
	}, nil
}

// QuoteAmount converts an amount of the base token into the quote token at
// this price, truncating toward zero.
func (p Price) QuoteAmount(amount CurrencyAmount) (CurrencyAmount, error) {
	if !amount.Token.Equal(p.Base) {
		return CurrencyAmount{}, ErrCurrencyMismatch
	}
	result := p.value.Mul(NewFraction(amount.Amount, nil))
	return CurrencyAmount{Token: p.Quote, Amount: result.Quotient()}, nil
}
