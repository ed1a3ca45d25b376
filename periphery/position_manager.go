package periphery

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defiquote/clmm-go/entities"
	"github.com/defiquote/clmm-go/pool"
	"github.com/defiquote/clmm-go/position"
)

var (
	ErrZeroLiquidityAdd = errors.New("cannot add a position with zero liquidity")
	ErrNothingToRemove  = errors.New("liquidity percentage to remove rounds to zero")
)

// AddOptions configures minting a new position or topping up an existing one.
type AddOptions struct {
	SlippageTolerance entities.Percent
	Deadline          *big.Int
	// Recipient owns the minted NFT. Required when TokenID is nil.
	Recipient common.Address
	// TokenID selects increaseLiquidity on an existing position instead of
	// minting a new one.
	TokenID *big.Int
	// CreatePool prepends pool creation and initialization.
	CreatePool bool
	// NativeToken, when set, pays that side of the pair with call value.
	// Its wrapped form must be one of the pool tokens.
	NativeToken  *entities.Token
	Token0Permit *PermitOptions
	Token1Permit *PermitOptions
}

// RemoveOptions configures winding a position down.
type RemoveOptions struct {
	SlippageTolerance entities.Percent
	Deadline          *big.Int
	TokenID           *big.Int
	// LiquidityPercentage selects how much of the position to withdraw.
	LiquidityPercentage entities.Percent
	// BurnToken destroys the NFT after a full withdrawal.
	BurnToken bool
	Recipient common.Address
}

// CollectOptions configures sweeping accrued fees.
type CollectOptions struct {
	TokenID   *big.Int
	Recipient common.Address
}

type mintParams struct {
	Token0         common.Address
	Token1         common.Address
	Fee            *big.Int
	TickLower      *big.Int
	TickUpper      *big.Int
	Amount0Desired *big.Int
	Amount1Desired *big.Int
	Amount0Min     *big.Int
	Amount1Min     *big.Int
	Recipient      common.Address
	Deadline       *big.Int
}

type increaseLiquidityParams struct {
	TokenId        *big.Int
	Amount0Desired *big.Int
	Amount1Desired *big.Int
	Amount0Min     *big.Int
	Amount1Min     *big.Int
	Deadline       *big.Int
}

type decreaseLiquidityParams struct {
	TokenId    *big.Int
	Liquidity  *big.Int
	Amount0Min *big.Int
	Amount1Min *big.Int
	Deadline   *big.Int
}

type collectParams struct {
	TokenId    *big.Int
	Recipient  common.Address
	Amount0Max *big.Int
	Amount1Max *big.Int
}

// CreateCallParameters formats pool creation and price initialization.
func CreateCallParameters(p *pool.Pool) (MethodParameters, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return MethodParameters{}, err
	}
	calldata, err := parsed.Pack("createAndInitializePoolIfNecessary",
		p.Token0.Address,
		p.Token1.Address,
		new(big.Int).SetUint64(uint64(p.Fee)),
		p.SqrtRatioX96,
	)
	if err != nil {
		return MethodParameters{}, err
	}
	return MethodParameters{Calldata: calldata, Value: new(big.Int)}, nil
}

// AddCallParameters formats a mint or an increaseLiquidity for the position,
// with amounts from the unperturbed mint math and minimums from the
// slippage-bounded variant.
func AddCallParameters(pos *position.Position, options AddOptions) (MethodParameters, error) {
	if options.Deadline == nil {
		return MethodParameters{}, ErrNoDeadline
	}
	if pos.Liquidity.Sign() <= 0 {
		return MethodParameters{}, ErrZeroLiquidityAdd
	}
	parsed, err := PositionManagerABI()
	if err != nil {
		return MethodParameters{}, err
	}

	desired, err := pos.MintAmounts()
	if err != nil {
		return MethodParameters{}, err
	}
	minimums, err := pos.MintAmountsWithSlippage(options.SlippageTolerance)
	if err != nil {
		return MethodParameters{}, err
	}

	var calldatas [][]byte
	if options.Token0Permit != nil {
		permit, err := encodeSelfPermit(parsed, pos.Pool.Token0, options.Token0Permit)
		if err != nil {
			return MethodParameters{}, err
		}
		calldatas = append(calldatas, permit)
	}
	if options.Token1Permit != nil {
		permit, err := encodeSelfPermit(parsed, pos.Pool.Token1, options.Token1Permit)
		if err != nil {
			return MethodParameters{}, err
		}
		calldatas = append(calldatas, permit)
	}

	if options.CreatePool {
		create, err := CreateCallParameters(pos.Pool)
		if err != nil {
			return MethodParameters{}, err
		}
		calldatas = append(calldatas, create.Calldata)
	}

	var call []byte
	if options.TokenID == nil {
		if options.Recipient == zeroAddress {
			return MethodParameters{}, ErrNoRecipient
		}
		call, err = parsed.Pack("mint", mintParams{
			Token0:         pos.Pool.Token0.Address,
			Token1:         pos.Pool.Token1.Address,
			Fee:            new(big.Int).SetUint64(uint64(pos.Pool.Fee)),
			TickLower:      big.NewInt(int64(pos.TickLower)),
			TickUpper:      big.NewInt(int64(pos.TickUpper)),
			Amount0Desired: desired.Amount0,
			Amount1Desired: desired.Amount1,
			Amount0Min:     minimums.Amount0,
			Amount1Min:     minimums.Amount1,
			Recipient:      options.Recipient,
			Deadline:       options.Deadline,
		})
	} else {
		call, err = parsed.Pack("increaseLiquidity", increaseLiquidityParams{
			TokenId:        options.TokenID,
			Amount0Desired: desired.Amount0,
			Amount1Desired: desired.Amount1,
			Amount0Min:     minimums.Amount0,
			Amount1Min:     minimums.Amount1,
			Deadline:       options.Deadline,
		})
	}
	if err != nil {
		return MethodParameters{}, err
	}
	calldatas = append(calldatas, call)

	value := new(big.Int)
	if options.NativeToken != nil {
		wrapped := options.NativeToken.Wrapped()
		switch {
		case wrapped.Equal(pos.Pool.Token0):
			value.Set(desired.Amount0)
		case wrapped.Equal(pos.Pool.Token1):
			value.Set(desired.Amount1)
		default:
			return MethodParameters{}, ErrNativeNotOnRoute
		}
		refund, err := parsed.Pack("refundETH")
		if err != nil {
			return MethodParameters{}, err
		}
		calldatas = append(calldatas, refund)
	}

	calldata, err := EncodeMulticall(calldatas)
	if err != nil {
		return MethodParameters{}, err
	}
	return MethodParameters{Calldata: calldata, Value: value}, nil
}

// RemoveCallParameters formats a decreaseLiquidity plus fee collection, and
// optionally burns the NFT after a full exit.
func RemoveCallParameters(pos *position.Position, options RemoveOptions) (MethodParameters, error) {
	if options.Deadline == nil {
		return MethodParameters{}, ErrNoDeadline
	}
	if options.Recipient == zeroAddress {
		return MethodParameters{}, ErrNoRecipient
	}
	parsed, err := PositionManagerABI()
	if err != nil {
		return MethodParameters{}, err
	}

	removed := options.LiquidityPercentage.Fraction.
		Mul(entities.NewFraction(pos.Liquidity, nil)).
		Quotient()
	if removed.Sign() <= 0 {
		return MethodParameters{}, ErrNothingToRemove
	}

	partial, err := position.New(pos.Pool, pos.TickLower, pos.TickUpper, removed)
	if err != nil {
		return MethodParameters{}, err
	}
	minimums, err := partial.BurnAmountsWithSlippage(options.SlippageTolerance)
	if err != nil {
		return MethodParameters{}, err
	}

	var calldatas [][]byte
	decrease, err := parsed.Pack("decreaseLiquidity", decreaseLiquidityParams{
		TokenId:    options.TokenID,
		Liquidity:  removed,
		Amount0Min: minimums.Amount0,
		Amount1Min: minimums.Amount1,
		Deadline:   options.Deadline,
	})
	if err != nil {
		return MethodParameters{}, err
	}
	calldatas = append(calldatas, decrease)

	collect, err := parsed.Pack("collect", collectParams{
		TokenId:    options.TokenID,
		Recipient:  options.Recipient,
		Amount0Max: maxUint128,
		Amount1Max: maxUint128,
	})
	if err != nil {
		return MethodParameters{}, err
	}
	calldatas = append(calldatas, collect)

	fullExit := removed.Cmp(pos.Liquidity) == 0
	if options.BurnToken {
		if !fullExit {
			return MethodParameters{}, errors.New("cannot burn the position token while liquidity remains")
		}
		burn, err := parsed.Pack("burn", options.TokenID)
		if err != nil {
			return MethodParameters{}, err
		}
		calldatas = append(calldatas, burn)
	}

	calldata, err := EncodeMulticall(calldatas)
	if err != nil {
		return MethodParameters{}, err
	}
	return MethodParameters{Calldata: calldata, Value: new(big.Int)}, nil
}

// CollectCallParameters formats a fee sweep for the position token.
func CollectCallParameters(options CollectOptions) (MethodParameters, error) {
	if options.Recipient == zeroAddress {
		return MethodParameters{}, ErrNoRecipient
	}
	parsed, err := PositionManagerABI()
	if err != nil {
		return MethodParameters{}, err
	}
	calldata, err := parsed.Pack("collect", collectParams{
		TokenId:    options.TokenID,
		Recipient:  options.Recipient,
		Amount0Max: maxUint128,
		Amount1Max: maxUint128,
	})
	if err != nil {
		return MethodParameters{}, err
	}
	return MethodParameters{Calldata: calldata, Value: new(big.Int)}, nil
}
