package main

import (
	"errors"
	"flag"
	"fmt"
)

// QuoterConfig holds every knob of one quoting run.
type QuoterConfig struct {
	SnapshotPath  string
	InputSymbol   string
	OutputSymbol  string
	Amount        string
	ExactOutput   bool
	MaxHops       int
	MaxNumResults int
	ToleranceBips int64
}

func (c *QuoterConfig) validate() error {
	if c.SnapshotPath == "" {
		return errors.New("config: a snapshot file is required")
	}
	if c.InputSymbol == "" || c.OutputSymbol == "" {
		return errors.New("config: both input and output token symbols are required")
	}
	if c.InputSymbol == c.OutputSymbol {
		return errors.New("config: input and output tokens must differ")
	}
	if c.Amount == "" {
		return errors.New("config: an amount is required")
	}
	if c.MaxHops <= 0 || c.MaxNumResults <= 0 {
		return fmt.Errorf("config: maxHops (%d) and maxResults (%d) must be positive", c.MaxHops, c.MaxNumResults)
	}
	if c.ToleranceBips < 0 {
		return errors.New("config: slippage tolerance must not be negative")
	}
	return nil
}

func loadConfig() (*QuoterConfig, error) {
	cfg := &QuoterConfig{}
	flag.StringVar(&cfg.SnapshotPath, "snapshot", "", "Path to the pool snapshot JSON file.")
	flag.StringVar(&cfg.InputSymbol, "in", "", "Symbol of the token to spend.")
	flag.StringVar(&cfg.OutputSymbol, "out", "", "Symbol of the token to receive.")
	flag.StringVar(&cfg.Amount, "amount", "", "Raw token amount (smallest units).")
	flag.BoolVar(&cfg.ExactOutput, "exact-out", false, "Treat the amount as the desired output instead of the input.")
	flag.IntVar(&cfg.MaxHops, "max-hops", 3, "Maximum pools per route.")
	flag.IntVar(&cfg.MaxNumResults, "max-results", 3, "Maximum number of routes to report.")
	flag.Int64Var(&cfg.ToleranceBips, "tolerance-bips", 50, "Slippage tolerance in basis points.")
	flag.Parse()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
