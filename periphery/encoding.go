package periphery

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/defiquote/clmm-go/entities"
	"github.com/defiquote/clmm-go/router"
)

var (
	ErrNoDeadline       = errors.New("a deadline is required")
	ErrNoRecipient      = errors.New("a recipient is required")
	ErrBadPermit        = errors.New("permit options carry neither an amount nor a nonce")
	ErrNativeNotOnRoute = errors.New("native value requires the wrapped native token on the route boundary")
)

// MethodParameters is the transaction payload a caller submits: the encoded
// calldata and the native-currency value to attach.
type MethodParameters struct {
	Calldata []byte   `json:"calldata"`
	Value    *big.Int `json:"value"`
}

// EncodePath packs a route into the router's path format: 20-byte token,
// 3-byte fee, 20-byte token, repeating. exactOutput routes are encoded from
// the output end backward.
func EncodePath(route *router.Route, exactOutput bool) []byte {
	n := len(route.Pools)
	path := make([]byte, 0, 20+23*n)

	tokens := route.TokenPath
	if exactOutput {
		path = append(path, tokens[n].Address.Bytes()...)
		for i := n - 1; i >= 0; i-- {
			path = append(path, feeBytes(route.Pools[i].Fee)...)
			path = append(path, tokens[i].Address.Bytes()...)
		}
		return path
	}

	path = append(path, tokens[0].Address.Bytes()...)
	for i, p := range route.Pools {
		path = append(path, feeBytes(p.Fee)...)
		path = append(path, tokens[i+1].Address.Bytes()...)
	}
	return path
}

// feeBytes renders a fee tier as the 3-byte big-endian uint24 the path
// format uses.
func feeBytes(fee entities.FeeTier) []byte {
	return []byte{byte(fee >> 16), byte(fee >> 8), byte(fee)}
}

// EncodeMulticall wraps multiple encoded calls into one multicall payload.
// A single call passes through unwrapped.
func EncodeMulticall(calldatas [][]byte) ([]byte, error) {
	if len(calldatas) == 1 {
		return calldatas[0], nil
	}
	routerABI, err := SwapRouterABI()
	if err != nil {
		return nil, err
	}
	return routerABI.Pack("multicall", calldatas)
}

// PermitOptions carries an EIP-2612 (Amount set) or DAI-style (Nonce set)
// signed approval to prepend to a call sequence.
type PermitOptions struct {
	V        uint8
	R        [32]byte
	S        [32]byte
	Deadline *big.Int
	// Amount selects standard selfPermit.
	Amount *big.Int
	// Nonce selects selfPermitAllowed.
	Nonce *big.Int
}

// encodeSelfPermit formats one permit against the given contract ABI. Both
// the swap router and the position manager expose the same selfPermit
// surface, so the encoder is shared.
func encodeSelfPermit(parsed abi.ABI, token entities.Token, options *PermitOptions) ([]byte, error) {
	address := token.Wrapped().Address
	switch {
	case options.Amount != nil:
		return parsed.Pack("selfPermit", address, options.Amount, options.Deadline, options.V, options.R, options.S)
	case options.Nonce != nil:
		return parsed.Pack("selfPermitAllowed", address, options.Nonce, options.Deadline, options.V, options.R, options.S)
	default:
		return nil, ErrBadPermit
	}
}

// maxUint128 caps collect amounts, matching the contract sentinel for
// "collect everything".
var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

var zeroAddress = common.Address{}
