// Package snapshot defines the JSON wire view of pool state and the
// diff/patch cycle that keeps a client-side snapshot in sync with a state
// feed. It is the bridge between serialized pool data and the live Pool
// model.
package snapshot

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defiquote/clmm-go/calculator/ticklist"
	"github.com/defiquote/clmm-go/entities"
	"github.com/defiquote/clmm-go/pool"
)

var ErrNilAmount = errors.New("snapshot numeric fields must not be nil")

// TokenState is the wire view of a token.
type TokenState struct {
	ChainID  uint64         `json:"chainId"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
}

// TickState is the wire view of one initialized tick. Presence of the entry
// implicitly means the tick is initialized.
type TickState struct {
	Index          int      `json:"index"`
	LiquidityGross *big.Int `json:"liquidityGross"`
	LiquidityNet   *big.Int `json:"liquidityNet"`
}

// PoolState is the wire view of one pool: the minimal slot data plus the
// initialized tick set.
type PoolState struct {
	Token0       TokenState  `json:"token0"`
	Token1       TokenState  `json:"token1"`
	Fee          uint64      `json:"fee"`
	Tick         int         `json:"tick"`
	SqrtPriceX96 *big.Int    `json:"sqrtPriceX96"`
	Liquidity    *big.Int    `json:"liquidity"`
	Ticks        []TickState `json:"ticks"`
}

// ID derives the pool's canonical on-chain address, which keys the
// diff/patch cycle.
func (s PoolState) ID() common.Address {
	a := token(s.Token0)
	b := token(s.Token1)
	addr, err := pool.AddressFor(pool.DefaultFactoryAddress, pool.PoolInitCodeHash, a, b, entities.FeeTier(s.Fee))
	if err != nil {
		return common.Address{}
	}
	return addr
}

func token(s TokenState) entities.Token {
	return entities.NewToken(s.ChainID, s.Address, s.Decimals, s.Symbol, s.Name)
}

// BuildPool turns the wire view into a live Pool, validating the tick set
// against the fee tier's spacing.
func BuildPool(s PoolState) (*pool.Pool, error) {
	if s.SqrtPriceX96 == nil || s.Liquidity == nil {
		return nil, ErrNilAmount
	}
	fee := entities.FeeTier(s.Fee)
	spacing, err := fee.TickSpacing()
	if err != nil {
		return nil, err
	}

	var ticks *ticklist.List
	if len(s.Ticks) > 0 {
		entries := make([]ticklist.Tick, len(s.Ticks))
		for i, t := range s.Ticks {
			if t.LiquidityGross == nil || t.LiquidityNet == nil {
				return nil, ErrNilAmount
			}
			entries[i] = ticklist.Tick{
				Index:          t.Index,
				LiquidityGross: t.LiquidityGross,
				LiquidityNet:   t.LiquidityNet,
			}
		}
		ticks, err = ticklist.New(entries, spacing)
		if err != nil {
			return nil, err
		}
	}

	return pool.New(token(s.Token0), token(s.Token1), fee, s.SqrtPriceX96, s.Liquidity, s.Tick, ticks)
}

// StateOf renders a live Pool back into its wire view, for example to
// persist a post-simulation snapshot.
func StateOf(p *pool.Pool) PoolState {
	s := PoolState{
		Token0:       tokenState(p.Token0),
		Token1:       tokenState(p.Token1),
		Fee:          uint64(p.Fee),
		Tick:         p.TickCurrent,
		SqrtPriceX96: new(big.Int).Set(p.SqrtRatioX96),
		Liquidity:    new(big.Int).Set(p.Liquidity),
	}
	if p.Ticks != nil {
		s.Ticks = make([]TickState, 0, p.Ticks.Len())
		for _, t := range p.Ticks.All() {
			s.Ticks = append(s.Ticks, TickState{
				Index:          t.Index,
				LiquidityGross: new(big.Int).Set(t.LiquidityGross),
				LiquidityNet:   new(big.Int).Set(t.LiquidityNet),
			})
		}
	}
	return s
}

func tokenState(t entities.Token) TokenState {
	return TokenState{
		ChainID:  t.ChainID,
		Address:  t.Address,
		Decimals: t.Decimals,
		Symbol:   t.Symbol,
		Name:     t.Name,
	}
}
