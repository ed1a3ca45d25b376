package router

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/defiquote/clmm-go/bitset"
	"github.com/defiquote/clmm-go/entities"
	"github.com/defiquote/clmm-go/pool"
)

const (
	DefaultMaxHops       = 3
	DefaultMaxNumResults = 3
)

// Logger defines a standard interface for structured, leveled logging.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SearcherConfig holds the dependencies of a Searcher.
type SearcherConfig struct {
	Registry prometheus.Registerer
	Logger   Logger
}

// validate checks if the configuration is valid, ensuring required dependencies are present.
func (c *SearcherConfig) validate() error {
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// SearchOptions bounds one best-trade search. Zero values take the package
// defaults.
type SearchOptions struct {
	// MaxHops caps the number of pools per route.
	MaxHops int
	// MaxNumResults caps the size of the returned trade list.
	MaxNumResults int
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.MaxHops <= 0 {
		o.MaxHops = DefaultMaxHops
	}
	if o.MaxNumResults <= 0 {
		o.MaxNumResults = DefaultMaxNumResults
	}
	return o
}

// Searcher runs best-trade searches over candidate pool sets. Safe for
// concurrent use: every search works on its own state.
type Searcher struct {
	metrics *Metrics
	logger  Logger
}

// NewSearcher constructs a Searcher from a configuration, returning an error
// if the config is invalid.
func NewSearcher(cfg *SearcherConfig) (*Searcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Searcher{
		metrics: NewMetrics(cfg.Registry),
		logger:  cfg.Logger,
	}, nil
}

// frame is one partial path on the search worklist.
type frame struct {
	path   []*pool.Pool
	amount entities.CurrencyAmount
	used   bitset.BitSet
	hops   int
}

// BestTradeExactIn explores the candidate pools for routes spending exactly
// amountIn for currencyOut, returning up to MaxNumResults trades ordered
// best first. Branches that fail a hop for insufficient liquidity are pruned,
// never fatal. The search is greedy branch-and-bound over single routes; it
// does not split an amount across parallel paths.
func (s *Searcher) BestTradeExactIn(pools []*pool.Pool, amountIn entities.CurrencyAmount, currencyOut entities.Token, opts SearchOptions) ([]*Trade, error) {
	opts = opts.withDefaults()
	timer := prometheus.NewTimer(s.metrics.searchDuration.WithLabelValues(ExactInput.String()))
	defer timer.ObserveDuration()

	wrappedOut := currencyOut.Wrapped()
	start := entities.NewCurrencyAmount(amountIn.Token.Wrapped(), amountIn.Amount)

	best := make([]*Trade, 0, opts.MaxNumResults)
	stack := []frame{{amount: start, used: bitset.New(uint64(len(pools))), hops: opts.MaxHops}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i, candidate := range pools {
			if f.used.IsSet(uint64(i)) || !candidate.InvolvesToken(f.amount.Token) {
				continue
			}
			s.metrics.branchesExplored.WithLabelValues(ExactInput.String()).Inc()

			out, _, err := candidate.GetOutputAmount(f.amount, nil)
			if errors.Is(err, pool.ErrInsufficientLiquidity) {
				s.metrics.branchesPruned.WithLabelValues(ExactInput.String()).Inc()
				continue
			}
			if err != nil {
				return nil, err
			}

			path := appendPath(f.path, candidate)
			if out.Token.Equal(wrappedOut) {
				route, err := NewRoute(path, amountIn.Token, currencyOut)
				if err != nil {
					return nil, err
				}
				trade, err := FromRoute(route, amountIn, ExactInput)
				if err != nil {
					return nil, err
				}
				best, err = insertSorted(best, trade, opts.MaxNumResults)
				if err != nil {
					return nil, err
				}
				s.metrics.tradesFound.WithLabelValues(ExactInput.String()).Inc()
				continue
			}
			if f.hops > 1 {
				used := f.used.Clone()
				used.Set(uint64(i))
				stack = append(stack, frame{path: path, amount: out, used: used, hops: f.hops - 1})
			}
		}
	}

	s.logger.Debug("best trade exact-in search finished",
		"candidate_pools", len(pools),
		"results", len(best),
		"max_hops", opts.MaxHops,
	)
	return best, nil
}

// BestTradeExactOut explores the candidate pools backward from the desired
// amountOut toward currencyIn, returning up to MaxNumResults trades ordered
// best first (least input).
func (s *Searcher) BestTradeExactOut(pools []*pool.Pool, currencyIn entities.Token, amountOut entities.CurrencyAmount, opts SearchOptions) ([]*Trade, error) {
	opts = opts.withDefaults()
	timer := prometheus.NewTimer(s.metrics.searchDuration.WithLabelValues(ExactOutput.String()))
	defer timer.ObserveDuration()

	wrappedIn := currencyIn.Wrapped()
	start := entities.NewCurrencyAmount(amountOut.Token.Wrapped(), amountOut.Amount)

	best := make([]*Trade, 0, opts.MaxNumResults)
	stack := []frame{{amount: start, used: bitset.New(uint64(len(pools))), hops: opts.MaxHops}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i, candidate := range pools {
			if f.used.IsSet(uint64(i)) || !candidate.InvolvesToken(f.amount.Token) {
				continue
			}
			s.metrics.branchesExplored.WithLabelValues(ExactOutput.String()).Inc()

			in, _, err := candidate.GetInputAmount(f.amount, nil)
			if errors.Is(err, pool.ErrInsufficientLiquidity) {
				s.metrics.branchesPruned.WithLabelValues(ExactOutput.String()).Inc()
				continue
			}
			if err != nil {
				return nil, err
			}

			// Paths grow from the output end backward.
			path := prependPath(f.path, candidate)
			if in.Token.Equal(wrappedIn) {
				route, err := NewRoute(path, currencyIn, amountOut.Token)
				if err != nil {
					return nil, err
				}
				trade, err := FromRoute(route, amountOut, ExactOutput)
				if err != nil {
					return nil, err
				}
				best, err = insertSorted(best, trade, opts.MaxNumResults)
				if err != nil {
					return nil, err
				}
				s.metrics.tradesFound.WithLabelValues(ExactOutput.String()).Inc()
				continue
			}
			if f.hops > 1 {
				used := f.used.Clone()
				used.Set(uint64(i))
				stack = append(stack, frame{path: path, amount: in, used: used, hops: f.hops - 1})
			}
		}
	}

	s.logger.Debug("best trade exact-out search finished",
		"candidate_pools", len(pools),
		"results", len(best),
		"max_hops", opts.MaxHops,
	)
	return best, nil
}

// appendPath copies before appending so sibling frames never share a
// backing array.
func appendPath(path []*pool.Pool, p *pool.Pool) []*pool.Pool {
	out := make([]*pool.Pool, len(path)+1)
	copy(out, path)
	out[len(path)] = p
	return out
}

func prependPath(path []*pool.Pool, p *pool.Pool) []*pool.Pool {
	out := make([]*pool.Pool, len(path)+1)
	out[0] = p
	copy(out[1:], path)
	return out
}

// insertSorted places the trade into the best-first list, evicting the worst
// entry when the capacity is exceeded.
func insertSorted(trades []*Trade, trade *Trade, capacity int) ([]*Trade, error) {
	pos := len(trades)
	for i, existing := range trades {
		c, err := CompareTrades(trade, existing)
		if err != nil {
			return nil, err
		}
		if c < 0 {
			pos = i
			break
		}
	}
	trades = append(trades, nil)
	copy(trades[pos+1:], trades[pos:])
	trades[pos] = trade
	if len(trades) > capacity {
		trades = trades[:capacity]
	}
	return trades, nil
}
