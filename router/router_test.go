package router

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defiquote/clmm-go/calculator/ticklist"
	"github.com/defiquote/clmm-go/calculator/tickmath"
	"github.com/defiquote/clmm-go/entities"
	"github.com/defiquote/clmm-go/pool"
	"github.com/defiquote/clmm-go/snapshot"
)

var (
	tokenA = entities.NewToken(1, common.HexToAddress("0x000000000000000000000000000000000000000A"), 18, "TKA", "Token A")
	tokenB = entities.NewToken(1, common.HexToAddress("0x000000000000000000000000000000000000000B"), 18, "TKB", "Token B")
	tokenC = entities.NewToken(1, common.HexToAddress("0x000000000000000000000000000000000000000C"), 18, "TKC", "Token C")

	sqrtRatioX96AtZero = new(big.Int).Lsh(big.NewInt(1), 96)
)

// fullRangePool builds a pool at tick 0 whose whole liquidity sits in one
// full-width range.
func fullRangePool(t *testing.T, tokenX, tokenY entities.Token, fee entities.FeeTier, liquidity int64) *pool.Pool {
	t.Helper()
	spacing, err := fee.TickSpacing()
	require.NoError(t, err)
	minTick := (-887272 / spacing) * spacing
	maxTick := (887272 / spacing) * spacing

	l := big.NewInt(liquidity)
	ticks, err := ticklist.New([]ticklist.Tick{
		{Index: minTick, LiquidityGross: l, LiquidityNet: l},
		{Index: maxTick, LiquidityGross: l, LiquidityNet: new(big.Int).Neg(l)},
	}, spacing)
	require.NoError(t, err)

	p, err := pool.New(tokenX, tokenY, fee, sqrtRatioX96AtZero, l, 0, ticks)
	require.NoError(t, err)
	return p
}

func newTestSearcher(t *testing.T) *Searcher {
	t.Helper()
	s, err := NewSearcher(&SearcherConfig{
		Registry: prometheus.NewRegistry(),
		Logger:   discardLogger{},
	})
	require.NoError(t, err)
	return s
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}

func TestNewRoute_Validation(t *testing.T) {
	ab := fullRangePool(t, tokenA, tokenB, entities.FeeMedium, 1_000_000_000_000)
	bc := fullRangePool(t, tokenB, tokenC, entities.FeeMedium, 1_000_000_000_000)

	_, err := NewRoute(nil, tokenA, tokenB)
	assert.ErrorIs(t, err, ErrEmptyRoute)

	_, err = NewRoute([]*pool.Pool{ab}, tokenC, tokenB)
	assert.ErrorIs(t, err, ErrInputNotInPool)

	_, err = NewRoute([]*pool.Pool{ab}, tokenA, tokenC)
	assert.ErrorIs(t, err, ErrOutputNotInPool)

	// B is consumed by the first hop, so a second A-B hop cannot connect.
	ab2 := fullRangePool(t, tokenA, tokenB, entities.FeeHigh, 1_000_000_000_000)
	_, err = NewRoute([]*pool.Pool{ab, ab2, bc}, tokenA, tokenC)
	assert.ErrorIs(t, err, ErrBrokenPath)

	otherChainToken := entities.NewToken(10, tokenC.Address, 18, "TKC", "Token C")
	otherChainPeer := entities.NewToken(10, tokenB.Address, 18, "TKB", "Token B")
	foreign := fullRangePool(t, otherChainToken, otherChainPeer, entities.FeeMedium, 1_000_000_000_000)
	_, err = NewRoute([]*pool.Pool{ab, foreign}, tokenA, otherChainToken)
	assert.ErrorIs(t, err, ErrChainMismatch)

	route, err := NewRoute([]*pool.Pool{ab, bc}, tokenA, tokenC)
	require.NoError(t, err)
	assert.Len(t, route.TokenPath, 3)
	assert.True(t, route.TokenPath[1].Equal(tokenB))
}

func TestRouteMidPrice(t *testing.T) {
	ab := fullRangePool(t, tokenA, tokenB, entities.FeeMedium, 1_000_000_000_000)
	bc := fullRangePool(t, tokenB, tokenC, entities.FeeMedium, 1_000_000_000_000)

	route, err := NewRoute([]*pool.Pool{ab, bc}, tokenA, tokenC)
	require.NoError(t, err)

	// Both pools sit at tick 0, so the chained mid price is exactly one.
	mid, err := route.MidPrice()
	require.NoError(t, err)
	assert.True(t, mid.Base.Equal(tokenA))
	assert.True(t, mid.Quote.Equal(tokenC))
	assert.Zero(t, mid.Fraction().Quotient().Cmp(big.NewInt(1)))
}

func TestFromRoute_ExactInput(t *testing.T) {
	ab := fullRangePool(t, tokenA, tokenB, entities.FeeMedium, 1_000_000_000_000)
	route, err := NewRoute([]*pool.Pool{ab}, tokenA, tokenB)
	require.NoError(t, err)

	amountIn := entities.NewCurrencyAmount(tokenA, big.NewInt(1_000_000))
	trade, err := FromRoute(route, amountIn, ExactInput)
	require.NoError(t, err)

	assert.Equal(t, ExactInput, trade.Type)
	assert.Zero(t, trade.InputAmount.Amount.Cmp(amountIn.Amount))
	// Fees guarantee strictly less out than in at a price of one.
	assert.Negative(t, trade.OutputAmount.Amount.Cmp(amountIn.Amount))
	assert.Positive(t, trade.OutputAmount.Amount.Sign())

	// The trade direction is fixed by the route.
	_, err = FromRoute(route, entities.NewCurrencyAmount(tokenB, big.NewInt(1_000_000)), ExactInput)
	assert.ErrorIs(t, err, ErrWrongTradeAmount)
}

func TestFromRoute_ExactOutput(t *testing.T) {
	ab := fullRangePool(t, tokenA, tokenB, entities.FeeMedium, 1_000_000_000_000)
	route, err := NewRoute([]*pool.Pool{ab}, tokenA, tokenB)
	require.NoError(t, err)

	amountOut := entities.NewCurrencyAmount(tokenB, big.NewInt(1_000_000))
	trade, err := FromRoute(route, amountOut, ExactOutput)
	require.NoError(t, err)

	assert.Equal(t, ExactOutput, trade.Type)
	assert.Zero(t, trade.OutputAmount.Amount.Cmp(amountOut.Amount))
	assert.Positive(t, trade.InputAmount.Amount.Cmp(amountOut.Amount))

	_, err = FromRoute(route, entities.NewCurrencyAmount(tokenA, big.NewInt(1_000_000)), ExactOutput)
	assert.ErrorIs(t, err, ErrWrongTradeAmount)
}

func TestPriceImpact(t *testing.T) {
	ab := fullRangePool(t, tokenA, tokenB, entities.FeeMedium, 1_000_000_000_000)
	route, err := NewRoute([]*pool.Pool{ab}, tokenA, tokenB)
	require.NoError(t, err)

	trade, err := FromRoute(route, entities.NewCurrencyAmount(tokenA, big.NewInt(1_000_000)), ExactInput)
	require.NoError(t, err)

	impact, err := trade.PriceImpact()
	require.NoError(t, err)
	// At least the 0.3% fee, and sane for this pool depth.
	assert.True(t, impact.Fraction.GreaterThan(entities.NewFraction(big.NewInt(2), big.NewInt(1000))))
	assert.True(t, impact.Fraction.LessThan(entities.NewFraction(big.NewInt(1), big.NewInt(10))))
}

func TestPriceImpact_ZeroQuote(t *testing.T) {
	// At a deeply negative tick the mid price truncates any modest input to
	// zero quoted output, which would make the impact a division by zero.
	spacing, err := entities.FeeMedium.TickSpacing()
	require.NoError(t, err)
	minTick := (-887272 / spacing) * spacing
	maxTick := (887272 / spacing) * spacing
	l := big.NewInt(1_000_000_000_000)
	ticks, err := ticklist.New([]ticklist.Tick{
		{Index: minTick, LiquidityGross: l, LiquidityNet: l},
		{Index: maxTick, LiquidityGross: l, LiquidityNet: new(big.Int).Neg(l)},
	}, spacing)
	require.NoError(t, err)

	ratio, err := tickmath.GetSqrtRatioAtTick(-600_000)
	require.NoError(t, err)
	p, err := pool.New(tokenA, tokenB, entities.FeeMedium, ratio, l, -600_000, ticks)
	require.NoError(t, err)

	route, err := NewRoute([]*pool.Pool{p}, tokenA, tokenB)
	require.NoError(t, err)
	trade, err := FromRoute(route, entities.NewCurrencyAmount(tokenA, big.NewInt(1_000_000)), ExactInput)
	require.NoError(t, err)

	_, err = trade.PriceImpact()
	assert.ErrorIs(t, err, ErrZeroQuote)
}

func TestSlippageBounds(t *testing.T) {
	ab := fullRangePool(t, tokenA, tokenB, entities.FeeMedium, 1_000_000_000_000)
	route, err := NewRoute([]*pool.Pool{ab}, tokenA, tokenB)
	require.NoError(t, err)

	trade, err := FromRoute(route, entities.NewCurrencyAmount(tokenA, big.NewInt(1_000_000)), ExactInput)
	require.NoError(t, err)

	_, err = trade.MinimumAmountOut(entities.NewPercent(big.NewInt(-1), big.NewInt(100)))
	assert.ErrorIs(t, err, ErrNegativeSlippage)

	zero, err := trade.MinimumAmountOut(entities.PercentFromBips(0))
	require.NoError(t, err)
	assert.Zero(t, zero.Amount.Cmp(trade.OutputAmount.Amount))

	bounded, err := trade.MinimumAmountOut(entities.PercentFromBips(100))
	require.NoError(t, err)
	assert.Negative(t, bounded.Amount.Cmp(trade.OutputAmount.Amount))

	// Exact input fixes the spend regardless of tolerance.
	maxIn, err := trade.MaximumAmountIn(entities.PercentFromBips(100))
	require.NoError(t, err)
	assert.Zero(t, maxIn.Amount.Cmp(trade.InputAmount.Amount))
}

func TestCompareTrades(t *testing.T) {
	ab := fullRangePool(t, tokenA, tokenB, entities.FeeMedium, 1_000_000_000_000)
	cb := fullRangePool(t, tokenC, tokenB, entities.FeeMedium, 1_000_000_000_000)

	routeAB, err := NewRoute([]*pool.Pool{ab}, tokenA, tokenB)
	require.NoError(t, err)
	routeCB, err := NewRoute([]*pool.Pool{cb}, tokenC, tokenB)
	require.NoError(t, err)

	small, err := FromRoute(routeAB, entities.NewCurrencyAmount(tokenA, big.NewInt(1_000)), ExactInput)
	require.NoError(t, err)
	large, err := FromRoute(routeAB, entities.NewCurrencyAmount(tokenA, big.NewInt(1_000_000)), ExactInput)
	require.NoError(t, err)
	foreign, err := FromRoute(routeCB, entities.NewCurrencyAmount(tokenC, big.NewInt(1_000)), ExactInput)
	require.NoError(t, err)

	_, err = CompareTrades(small, foreign)
	assert.ErrorIs(t, err, ErrIncomparableTrades)

	// More output ranks ahead even though it also spends more input.
	c, err := CompareTrades(large, small)
	require.NoError(t, err)
	assert.Negative(t, c)
}

func TestBestTradeExactIn_PrefersBetterPath(t *testing.T) {
	// Direct A-B pool burdened with a 1% fee; the A-C-B detour pays 0.01%
	// twice over much deeper liquidity, so it nets more output.
	direct := fullRangePool(t, tokenA, tokenB, entities.FeeHigh, 1_000_000_000)
	ac := fullRangePool(t, tokenA, tokenC, entities.FeeLowest, 1_000_000_000_000)
	cb := fullRangePool(t, tokenC, tokenB, entities.FeeLowest, 1_000_000_000_000)

	s := newTestSearcher(t)
	amountIn := entities.NewCurrencyAmount(tokenA, big.NewInt(1_000_000))
	trades, err := s.BestTradeExactIn([]*pool.Pool{direct, ac, cb}, amountIn, tokenB, SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, trades)

	assert.Len(t, trades[0].Route.Pools, 2, "two-hop route should win")
	require.Len(t, trades, 2)
	assert.Positive(t, trades[0].OutputAmount.Amount.Cmp(trades[1].OutputAmount.Amount))
}

func TestBestTradeExactIn_PrunesInsufficientLiquidity(t *testing.T) {
	// The shallow pool cannot absorb the input; the search must skip it and
	// still report the viable route.
	shallow := fullRangePool(t, tokenA, tokenB, entities.FeeMedium, 10)
	deep := fullRangePool(t, tokenA, tokenC, entities.FeeMedium, 1_000_000_000_000)
	cb := fullRangePool(t, tokenC, tokenB, entities.FeeMedium, 1_000_000_000_000)

	s := newTestSearcher(t)
	amountIn := entities.NewCurrencyAmount(tokenA, big.NewInt(1_000_000_000))
	trades, err := s.BestTradeExactIn([]*pool.Pool{shallow, deep, cb}, amountIn, tokenB, SearchOptions{})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Len(t, trades[0].Route.Pools, 2)
}

func TestBestTradeExactIn_SkipsPoolWithoutTicks(t *testing.T) {
	// Snapshots can carry pools whose tick set is empty. Such a pool fills
	// nothing; the search must prune it and still report the viable route.
	drained, err := snapshot.BuildPool(snapshot.PoolState{
		Token0:       snapshot.TokenState{ChainID: 1, Address: tokenA.Address, Decimals: 18, Symbol: "TKA", Name: "Token A"},
		Token1:       snapshot.TokenState{ChainID: 1, Address: tokenB.Address, Decimals: 18, Symbol: "TKB", Name: "Token B"},
		Fee:          3000,
		Tick:         0,
		SqrtPriceX96: new(big.Int).Set(sqrtRatioX96AtZero),
		Liquidity:    new(big.Int),
	})
	require.NoError(t, err)

	deep := fullRangePool(t, tokenA, tokenC, entities.FeeMedium, 1_000_000_000_000)
	cb := fullRangePool(t, tokenC, tokenB, entities.FeeMedium, 1_000_000_000_000)

	s := newTestSearcher(t)
	amountIn := entities.NewCurrencyAmount(tokenA, big.NewInt(1_000_000))
	trades, err := s.BestTradeExactIn([]*pool.Pool{drained, deep, cb}, amountIn, tokenB, SearchOptions{})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Len(t, trades[0].Route.Pools, 2)
}

func TestBestTradeExactIn_RespectsMaxHops(t *testing.T) {
	ac := fullRangePool(t, tokenA, tokenC, entities.FeeLowest, 1_000_000_000_000)
	cb := fullRangePool(t, tokenC, tokenB, entities.FeeLowest, 1_000_000_000_000)

	s := newTestSearcher(t)
	amountIn := entities.NewCurrencyAmount(tokenA, big.NewInt(1_000_000))
	trades, err := s.BestTradeExactIn([]*pool.Pool{ac, cb}, amountIn, tokenB, SearchOptions{MaxHops: 1})
	require.NoError(t, err)
	assert.Empty(t, trades, "only a two-hop path exists")
}

func TestBestTradeExactOut(t *testing.T) {
	direct := fullRangePool(t, tokenA, tokenB, entities.FeeHigh, 1_000_000_000)
	ac := fullRangePool(t, tokenA, tokenC, entities.FeeLowest, 1_000_000_000_000)
	cb := fullRangePool(t, tokenC, tokenB, entities.FeeLowest, 1_000_000_000_000)

	s := newTestSearcher(t)
	amountOut := entities.NewCurrencyAmount(tokenB, big.NewInt(1_000_000))
	trades, err := s.BestTradeExactOut([]*pool.Pool{direct, ac, cb}, tokenA, amountOut, SearchOptions{})
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, ExactOutput, trades[0].Type)
	assert.Len(t, trades[0].Route.Pools, 2, "cheaper two-hop input should win")
	assert.Negative(t, trades[0].InputAmount.Amount.Cmp(trades[1].InputAmount.Amount))
	for _, trade := range trades {
		assert.Zero(t, trade.OutputAmount.Amount.Cmp(amountOut.Amount))
	}
}

// Quoting is pure: repeating the same search over the same snapshot must
// produce identical results.
func TestSearchIsIdempotent(t *testing.T) {
	direct := fullRangePool(t, tokenA, tokenB, entities.FeeHigh, 1_000_000_000)
	ac := fullRangePool(t, tokenA, tokenC, entities.FeeLowest, 1_000_000_000_000)
	cb := fullRangePool(t, tokenC, tokenB, entities.FeeLowest, 1_000_000_000_000)
	pools := []*pool.Pool{direct, ac, cb}

	s := newTestSearcher(t)
	amountIn := entities.NewCurrencyAmount(tokenA, big.NewInt(1_000_000))

	first, err := s.BestTradeExactIn(pools, amountIn, tokenB, SearchOptions{})
	require.NoError(t, err)
	second, err := s.BestTradeExactIn(pools, amountIn, tokenB, SearchOptions{})
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Zero(t, first[i].OutputAmount.Amount.Cmp(second[i].OutputAmount.Amount))
		assert.Equal(t, len(first[i].Route.Pools), len(second[i].Route.Pools))
	}
}
