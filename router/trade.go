package router

import (
	"errors"

	"github.com/defiquote/clmm-go/entities"
)

var (
	ErrWrongTradeAmount   = errors.New("trade amount currency does not match the route endpoint")
	ErrIncomparableTrades = errors.New("trades with different endpoint currencies cannot be ordered")
	ErrNegativeSlippage   = errors.New("slippage tolerance must not be negative")
	ErrZeroQuote          = errors.New("mid price quote truncates to zero")
)

// TradeType selects which side of a trade is held fixed.
type TradeType int

const (
	ExactInput TradeType = iota
	ExactOutput
)

func (t TradeType) String() string {
	switch t {
	case ExactInput:
		return "exactInput"
	case ExactOutput:
		return "exactOutput"
	default:
		return "unknown"
	}
}

// Trade is a fully simulated swap along one route. Immutable after
// construction.
type Trade struct {
	Route        *Route
	Type         TradeType
	InputAmount  entities.CurrencyAmount
	OutputAmount entities.CurrencyAmount
}

// FromRoute simulates the route hop by hop for the given fixed amount:
// forward for an exact input, backward for an exact output. A hop failing
// with insufficient liquidity surfaces as pool.ErrInsufficientLiquidity so
// search callers can prune the branch.
func FromRoute(route *Route, amount entities.CurrencyAmount, tradeType TradeType) (*Trade, error) {
	var inputAmount, outputAmount entities.CurrencyAmount

	switch tradeType {
	case ExactInput:
		if !amount.Token.Wrapped().Equal(route.Input.Wrapped()) {
			return nil, ErrWrongTradeAmount
		}
		running := entities.NewCurrencyAmount(amount.Token.Wrapped(), amount.Amount)
		for _, p := range route.Pools {
			next, _, err := p.GetOutputAmount(running, nil)
			if err != nil {
				return nil, err
			}
			running = next
		}
		inputAmount = entities.NewCurrencyAmount(route.Input, amount.Amount)
		outputAmount = entities.NewCurrencyAmount(route.Output, running.Amount)
	case ExactOutput:
		if !amount.Token.Wrapped().Equal(route.Output.Wrapped()) {
			return nil, ErrWrongTradeAmount
		}
		running := entities.NewCurrencyAmount(amount.Token.Wrapped(), amount.Amount)
		for i := len(route.Pools) - 1; i >= 0; i-- {
			prev, _, err := route.Pools[i].GetInputAmount(running, nil)
			if err != nil {
				return nil, err
			}
			running = prev
		}
		inputAmount = entities.NewCurrencyAmount(route.Input, running.Amount)
		outputAmount = entities.NewCurrencyAmount(route.Output, amount.Amount)
	default:
		return nil, errors.New("unknown trade type")
	}

	return &Trade{
		Route:        route,
		Type:         tradeType,
		InputAmount:  inputAmount,
		OutputAmount: outputAmount,
	}, nil
}

// ExecutionPrice returns the realized output-per-input price of the trade.
func (t *Trade) ExecutionPrice() entities.Price {
	return entities.NewPrice(t.InputAmount.Token, t.OutputAmount.Token, t.InputAmount.Amount, t.OutputAmount.Amount)
}

// PriceImpact returns how far the realized price falls short of the route's
// pre-trade mid price, as a fraction of the mid-price output.
func (t *Trade) PriceImpact() (entities.Percent, error) {
	mid, err := t.Route.MidPrice()
	if err != nil {
		return entities.Percent{}, err
	}
	quoted, err := mid.QuoteAmount(entities.NewCurrencyAmount(t.InputAmount.Token.Wrapped(), t.InputAmount.Amount))
	if err != nil {
		return entities.Percent{}, err
	}
	if quoted.Amount.Sign() == 0 {
		return entities.Percent{}, ErrZeroQuote
	}
	quotedFraction := entities.NewFraction(quoted.Amount, nil)
	shortfall := quotedFraction.Sub(entities.NewFraction(t.OutputAmount.Amount, nil))
	return entities.Percent{Fraction: shortfall.Div(quotedFraction)}, nil
}

// MinimumAmountOut returns the least output the trade should be allowed to
// settle for under the given slippage tolerance. For an exact-output trade
// the output is already fixed.
func (t *Trade) MinimumAmountOut(tolerance entities.Percent) (entities.CurrencyAmount, error) {
	if tolerance.Fraction.Numerator.Sign() < 0 {
		return entities.CurrencyAmount{}, ErrNegativeSlippage
	}
	if t.Type == ExactOutput {
		return t.OutputAmount, nil
	}
	one := entities.FractionFromInt(1)
	adjusted := one.Add(tolerance.Fraction).
		Invert().
		Mul(entities.NewFraction(t.OutputAmount.Amount, nil)).
		Quotient()
	return entities.NewCurrencyAmount(t.OutputAmount.Token, adjusted), nil
}

// MaximumAmountIn returns the most input the trade should be allowed to
// spend under the given slippage tolerance. For an exact-input trade the
// input is already fixed.
func (t *Trade) MaximumAmountIn(tolerance entities.Percent) (entities.CurrencyAmount, error) {
	if tolerance.Fraction.Numerator.Sign() < 0 {
		return entities.CurrencyAmount{}, ErrNegativeSlippage
	}
	if t.Type == ExactInput {
		return t.InputAmount, nil
	}
	one := entities.FractionFromInt(1)
	adjusted := one.Add(tolerance.Fraction).
		Mul(entities.NewFraction(t.InputAmount.Amount, nil)).
		Quotient()
	return entities.NewCurrencyAmount(t.InputAmount.Token, adjusted), nil
}

// WorstExecutionPrice returns the execution price implied by the slippage
// bounds rather than the simulated amounts.
func (t *Trade) WorstExecutionPrice(tolerance entities.Percent) (entities.Price, error) {
	maxIn, err := t.MaximumAmountIn(tolerance)
	if err != nil {
		return entities.Price{}, err
	}
	minOut, err := t.MinimumAmountOut(tolerance)
	if err != nil {
		return entities.Price{}, err
	}
	return entities.NewPrice(t.InputAmount.Token, t.OutputAmount.Token, maxIn.Amount, minOut.Amount), nil
}

// CompareTrades imposes the ordering best-trade search maintains: strictly
// more output first, then strictly less input, then fewer hops. Both trades
// must share input and output currencies. Returns a negative value when a
// ranks ahead of b.
func CompareTrades(a, b *Trade) (int, error) {
	if !a.InputAmount.Token.Equal(b.InputAmount.Token) || !a.OutputAmount.Token.Equal(b.OutputAmount.Token) {
		return 0, ErrIncomparableTrades
	}
	if c := b.OutputAmount.Amount.Cmp(a.OutputAmount.Amount); c != 0 {
		return c, nil
	}
	if c := a.InputAmount.Amount.Cmp(b.InputAmount.Amount); c != 0 {
		return c, nil
	}
	return len(a.Route.TokenPath) - len(b.Route.TokenPath), nil
}
