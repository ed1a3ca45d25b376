// Package router models multi-hop swap paths over pool snapshots and
// searches a candidate pool set for the best route for a given amount.
package router

import (
	"errors"
	"sync"

	"github.com/defiquote/clmm-go/entities"
	"github.com/defiquote/clmm-go/pool"
)

var (
	ErrEmptyRoute      = errors.New("route must contain at least one pool")
	ErrChainMismatch   = errors.New("route pools must share one chain id")
	ErrInputNotInPool  = errors.New("first pool does not involve the input token")
	ErrOutputNotInPool = errors.New("last pool does not involve the output token")
	ErrBrokenPath      = errors.New("consecutive pools do not share a token")
)

// Route is an ordered path of pools from an input token to an output token.
// Immutable after construction.
type Route struct {
	Pools []*pool.Pool
	// TokenPath holds the wrapped tokens traversed, input first, one entry
	// per pool boundary.
	TokenPath []entities.Token
	Input     entities.Token
	Output    entities.Token

	midOnce     sync.Once
	midPrice    entities.Price
	midPriceErr error
}

// NewRoute validates that the pools form a connected path on one chain from
// input to output. Validation failures mean the caller assembled a bad path,
// not that the market moved.
func NewRoute(pools []*pool.Pool, input, output entities.Token) (*Route, error) {
	if len(pools) == 0 {
		return nil, ErrEmptyRoute
	}
	chainID := pools[0].ChainID()
	for _, p := range pools[1:] {
		if p.ChainID() != chainID {
			return nil, ErrChainMismatch
		}
	}
	wrappedIn := input.Wrapped()
	wrappedOut := output.Wrapped()
	if !pools[0].InvolvesToken(wrappedIn) {
		return nil, ErrInputNotInPool
	}
	if !pools[len(pools)-1].InvolvesToken(wrappedOut) {
		return nil, ErrOutputNotInPool
	}

	tokenPath := make([]entities.Token, 0, len(pools)+1)
	tokenPath = append(tokenPath, wrappedIn)
	current := wrappedIn
	for _, p := range pools {
		if !p.InvolvesToken(current) {
			return nil, ErrBrokenPath
		}
		if current.Equal(p.Token0) {
			current = p.Token1
		} else {
			current = p.Token0
		}
		tokenPath = append(tokenPath, current)
	}
	if !current.Equal(wrappedOut) {
		return nil, ErrBrokenPath
	}

	return &Route{
		Pools:     pools,
		TokenPath: tokenPath,
		Input:     input,
		Output:    output,
	}, nil
}

// ChainID returns the chain every pool on the route lives on.
func (r *Route) ChainID() uint64 { return r.Pools[0].ChainID() }

// MidPrice returns the pre-trade spot price of the route's output in terms
// of its input, chained across every hop. Cached after first access; safe
// under concurrent readers.
func (r *Route) MidPrice() (entities.Price, error) {
	r.midOnce.Do(func() {
		price, err := r.Pools[0].PriceOf(r.TokenPath[0])
		if err != nil {
			r.midPriceErr = err
			return
		}
		for i, p := range r.Pools[1:] {
			next, err := p.PriceOf(r.TokenPath[i+1])
			if err != nil {
				r.midPriceErr = err
				return
			}
			price, err = price.Mul(next)
			if err != nil {
				r.midPriceErr = err
				return
			}
		}
		r.midPrice = price
	})
	return r.midPrice, r.midPriceErr
}
