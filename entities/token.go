package entities

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrDifferentChains = errors.New("tokens are on different chains")
	ErrSameAddress     = errors.New("tokens have the same address")
)

// Token is a chain-scoped fungible asset identity. It is an immutable value
// type: two Tokens are interchangeable iff they agree on (ChainID, Address).
type Token struct {
	ChainID  uint64         `json:"chainId"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Symbol   string         `json:"symbol,omitempty"`
	Name     string         `json:"name,omitempty"`

	// IsNative marks the chain's native asset. Native tokens carry the
	// address of their wrapped representation so that pool math, which only
	// ever sees ERC-20s, stays uniform.
	IsNative bool `json:"isNative,omitempty"`
}

// NewToken constructs an ERC-20 token.
func NewToken(chainID uint64, address common.Address, decimals uint8, symbol, name string) Token {
	return Token{
		ChainID:  chainID,
		Address:  address,
		Decimals: decimals,
		Symbol:   symbol,
		Name:     name,
	}
}

// NewNativeToken constructs the chain's native asset. wrapped is the address
// of the canonical wrapped ERC-20 (e.g. WETH9 on Ethereum mainnet).
func NewNativeToken(chainID uint64, wrapped common.Address, decimals uint8, symbol, name string) Token {
	return Token{
		ChainID:  chainID,
		Address:  wrapped,
		Decimals: decimals,
		Symbol:   symbol,
		Name:     name,
		IsNative: true,
	}
}

// Wrapped returns the ERC-20 form of the token. For ERC-20s it is the token
// itself; for the native asset it is the wrapped representation.
func (t Token) Wrapped() Token {
	if !t.IsNative {
		return t
	}
	wrapped := t
	wrapped.IsNative = false
	return wrapped
}

// Equal reports whether two tokens identify the same asset.
// common.Address is already checksum-normalized, so a byte compare suffices.
func (t Token) Equal(other Token) bool {
	return t.ChainID == other.ChainID && t.Address == other.Address
}

// SortsBefore reports whether t precedes other in the canonical token0/token1
// ordering. The order is bytewise over addresses and must stay consistent
// everywhere: pool address derivation and price direction both depend on it.
func (t Token) SortsBefore(other Token) (bool, error) {
	if t.ChainID != other.ChainID {
		return false, ErrDifferentChains
	}
	cmp := bytes.Compare(t.Address.Bytes(), other.Address.Bytes())
	if cmp == 0 {
		return false, ErrSameAddress
	}
	return cmp < 0, nil
}
