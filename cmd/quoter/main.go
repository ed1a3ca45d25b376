// Command quoter loads a pool snapshot, searches it for the best routes
// between two tokens, and prints the ranked quotes as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/defiquote/clmm-go/entities"
	"github.com/defiquote/clmm-go/pool"
	"github.com/defiquote/clmm-go/router"
	"github.com/defiquote/clmm-go/snapshot"
)

// quoteView is the JSON shape of one reported route.
type quoteView struct {
	Path        []string `json:"path"`
	Fees        []uint64 `json:"fees"`
	AmountIn    *big.Int `json:"amountIn"`
	AmountOut   *big.Int `json:"amountOut"`
	MinimumOut  *big.Int `json:"minimumOut"`
	MaximumIn   *big.Int `json:"maximumIn"`
	PriceImpact string   `json:"priceImpact"`
	PoolAddrs   []string `json:"pools"`
}

func main() {
	rootLogHandler := slog.NewJSONHandler(os.Stderr, nil)
	rootLogger := slog.New(rootLogHandler)
	fail := func() {
		os.Exit(1)
	}

	prometheusRegistry := prometheus.DefaultRegisterer
	cfg, err := loadConfig()
	if err != nil {
		rootLogger.Error("Failed to load configuration", "error", err)
		fail()
	}

	states, err := loadSnapshot(cfg.SnapshotPath)
	if err != nil {
		rootLogger.Error("Failed to load snapshot", "path", cfg.SnapshotPath, "error", err)
		fail()
	}

	pools := make([]*pool.Pool, 0, len(states))
	for _, state := range states {
		p, err := snapshot.BuildPool(state)
		if err != nil {
			rootLogger.Error("Failed to build pool from snapshot", "pool", state.ID(), "error", err)
			fail()
		}
		pools = append(pools, p)
	}

	tokenIn, err := findToken(pools, cfg.InputSymbol)
	if err != nil {
		rootLogger.Error("Input token not present in snapshot", "symbol", cfg.InputSymbol, "error", err)
		fail()
	}
	tokenOut, err := findToken(pools, cfg.OutputSymbol)
	if err != nil {
		rootLogger.Error("Output token not present in snapshot", "symbol", cfg.OutputSymbol, "error", err)
		fail()
	}

	amount, ok := new(big.Int).SetString(cfg.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		rootLogger.Error("Amount must be a positive decimal integer", "amount", cfg.Amount)
		fail()
	}

	searcher, err := router.NewSearcher(&router.SearcherConfig{
		Registry: prometheusRegistry,
		Logger:   rootLogger.With("component", "router"),
	})
	if err != nil {
		rootLogger.Error("Failed to initialize searcher", "error", err)
		fail()
	}

	opts := router.SearchOptions{MaxHops: cfg.MaxHops, MaxNumResults: cfg.MaxNumResults}
	var trades []*router.Trade
	if cfg.ExactOutput {
		trades, err = searcher.BestTradeExactOut(pools, tokenIn, entities.NewCurrencyAmount(tokenOut, amount), opts)
	} else {
		trades, err = searcher.BestTradeExactIn(pools, entities.NewCurrencyAmount(tokenIn, amount), tokenOut, opts)
	}
	if err != nil {
		rootLogger.Error("Best-trade search failed", "error", err)
		fail()
	}
	if len(trades) == 0 {
		rootLogger.Warn("No viable route for the requested amount",
			"in", cfg.InputSymbol, "out", cfg.OutputSymbol, "amount", cfg.Amount)
		fail()
	}

	tolerance := entities.PercentFromBips(cfg.ToleranceBips)
	views := make([]quoteView, 0, len(trades))
	for _, trade := range trades {
		view, err := renderQuote(trade, tolerance)
		if err != nil {
			rootLogger.Error("Failed to render quote", "error", err)
			fail()
		}
		views = append(views, view)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(views); err != nil {
		rootLogger.Error("Failed to encode quotes", "error", err)
		fail()
	}
}

func loadSnapshot(path string) ([]snapshot.PoolState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var states []snapshot.PoolState
	if err := json.Unmarshal(raw, &states); err != nil {
		return nil, err
	}
	return states, nil
}

// findToken resolves a symbol against the snapshot's token universe.
func findToken(pools []*pool.Pool, symbol string) (entities.Token, error) {
	for _, p := range pools {
		if p.Token0.Symbol == symbol {
			return p.Token0, nil
		}
		if p.Token1.Symbol == symbol {
			return p.Token1, nil
		}
	}
	return entities.Token{}, fmt.Errorf("token %q not found in any pool", symbol)
}

func renderQuote(trade *router.Trade, tolerance entities.Percent) (quoteView, error) {
	impact, err := trade.PriceImpact()
	if err != nil {
		return quoteView{}, err
	}
	minOut, err := trade.MinimumAmountOut(tolerance)
	if err != nil {
		return quoteView{}, err
	}
	maxIn, err := trade.MaximumAmountIn(tolerance)
	if err != nil {
		return quoteView{}, err
	}

	path := make([]string, len(trade.Route.TokenPath))
	for i, token := range trade.Route.TokenPath {
		path[i] = token.Symbol
	}
	fees := make([]uint64, len(trade.Route.Pools))
	addrs := make([]string, len(trade.Route.Pools))
	for i, p := range trade.Route.Pools {
		fees[i] = uint64(p.Fee)
		addr, err := p.Address()
		if err != nil {
			return quoteView{}, err
		}
		addrs[i] = addr.Hex()
	}

	// Render the impact with four decimal places of percent.
	scaled := impact.ToSignificant().Mul(entities.FractionFromInt(10_000)).Quotient()
	impactText := fmt.Sprintf("%s.%04d%%", new(big.Int).Div(scaled, big.NewInt(10_000)), new(big.Int).Mod(scaled, big.NewInt(10_000)))

	return quoteView{
		Path:        path,
		Fees:        fees,
		AmountIn:    trade.InputAmount.Amount,
		AmountOut:   trade.OutputAmount.Amount,
		MinimumOut:  minOut.Amount,
		MaximumIn:   maxIn.Amount,
		PriceImpact: impactText,
		PoolAddrs:   addrs,
	}, nil
}
