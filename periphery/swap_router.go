package periphery

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defiquote/clmm-go/entities"
	"github.com/defiquote/clmm-go/router"
)

// SwapOptions configures the formatting of one swap transaction.
type SwapOptions struct {
	// SlippageTolerance bounds how much worse than the simulated amounts the
	// on-chain execution may settle.
	SlippageTolerance entities.Percent
	// Recipient receives the swap output.
	Recipient common.Address
	// Deadline is the unix timestamp after which the transaction reverts.
	Deadline *big.Int
	// SqrtPriceLimitX96 optionally bounds the pool price for single-hop
	// swaps. Ignored for multi-hop routes.
	SqrtPriceLimitX96 *big.Int
	// InputTokenPermit, when set, prepends a selfPermit call so the router
	// can spend the input token without a prior approval transaction.
	InputTokenPermit *PermitOptions
}

type exactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

type exactInputParams struct {
	Path             []byte
	Recipient        common.Address
	Deadline         *big.Int
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

type exactOutputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountOut         *big.Int
	AmountInMaximum   *big.Int
	SqrtPriceLimitX96 *big.Int
}

type exactOutputParams struct {
	Path            []byte
	Recipient       common.Address
	Deadline        *big.Int
	AmountOut       *big.Int
	AmountInMaximum *big.Int
}

// SwapCallParameters formats a simulated trade into router calldata plus the
// native value to attach. Native input funds the call value; native output
// routes the swap to the router itself and appends an unwrap call.
func SwapCallParameters(trade *router.Trade, options SwapOptions) (MethodParameters, error) {
	if options.Deadline == nil {
		return MethodParameters{}, ErrNoDeadline
	}
	parsed, err := SwapRouterABI()
	if err != nil {
		return MethodParameters{}, err
	}

	amountIn, err := trade.MaximumAmountIn(options.SlippageTolerance)
	if err != nil {
		return MethodParameters{}, err
	}
	amountOut, err := trade.MinimumAmountOut(options.SlippageTolerance)
	if err != nil {
		return MethodParameters{}, err
	}

	inputIsNative := trade.Route.Input.IsNative
	outputIsNative := trade.Route.Output.IsNative

	// With a native output the router must hold the wrapped output itself
	// before unwrapping, so the swap's recipient is the router.
	swapRecipient := options.Recipient
	if outputIsNative {
		swapRecipient = zeroAddress
	}

	var calldatas [][]byte

	if options.InputTokenPermit != nil {
		permit, err := encodeSelfPermit(parsed, trade.Route.Input, options.InputTokenPermit)
		if err != nil {
			return MethodParameters{}, err
		}
		calldatas = append(calldatas, permit)
	}

	singleHop := len(trade.Route.Pools) == 1
	priceLimit := options.SqrtPriceLimitX96
	if priceLimit == nil {
		priceLimit = new(big.Int)
	}

	var swapData []byte
	switch {
	case trade.Type == router.ExactInput && singleHop:
		swapData, err = parsed.Pack("exactInputSingle", exactInputSingleParams{
			TokenIn:           trade.Route.TokenPath[0].Address,
			TokenOut:          trade.Route.TokenPath[1].Address,
			Fee:               new(big.Int).SetUint64(uint64(trade.Route.Pools[0].Fee)),
			Recipient:         swapRecipient,
			Deadline:          options.Deadline,
			AmountIn:          amountIn.Amount,
			AmountOutMinimum:  amountOut.Amount,
			SqrtPriceLimitX96: priceLimit,
		})
	case trade.Type == router.ExactInput:
		swapData, err = parsed.Pack("exactInput", exactInputParams{
			Path:             EncodePath(trade.Route, false),
			Recipient:        swapRecipient,
			Deadline:         options.Deadline,
			AmountIn:         amountIn.Amount,
			AmountOutMinimum: amountOut.Amount,
		})
	case singleHop:
		swapData, err = parsed.Pack("exactOutputSingle", exactOutputSingleParams{
			TokenIn:           trade.Route.TokenPath[0].Address,
			TokenOut:          trade.Route.TokenPath[1].Address,
			Fee:               new(big.Int).SetUint64(uint64(trade.Route.Pools[0].Fee)),
			Recipient:         swapRecipient,
			Deadline:          options.Deadline,
			AmountOut:         amountOut.Amount,
			AmountInMaximum:   amountIn.Amount,
			SqrtPriceLimitX96: priceLimit,
		})
	default:
		swapData, err = parsed.Pack("exactOutput", exactOutputParams{
			Path:            EncodePath(trade.Route, true),
			Recipient:       swapRecipient,
			Deadline:        options.Deadline,
			AmountOut:       amountOut.Amount,
			AmountInMaximum: amountIn.Amount,
		})
	}
	if err != nil {
		return MethodParameters{}, err
	}
	calldatas = append(calldatas, swapData)

	if outputIsNative {
		unwrap, err := parsed.Pack("unwrapWETH9", amountOut.Amount, options.Recipient)
		if err != nil {
			return MethodParameters{}, err
		}
		calldatas = append(calldatas, unwrap)
	}
	// Exact-output native spends may leave surplus wrapped value with the
	// router; hand it back.
	if inputIsNative && trade.Type == router.ExactOutput {
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

	value := new(big.Int)
	if inputIsNative {
		value.Set(amountIn.Amount)
	}
	return MethodParameters{Calldata: calldata, Value: value}, nil
}
