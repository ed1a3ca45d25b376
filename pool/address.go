package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/defiquote/clmm-go/entities"
)

var (
	// DefaultFactoryAddress is the canonical mainnet factory.
	DefaultFactoryAddress = common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")

	// PoolInitCodeHash is the keccak256 of the pool creation bytecode the
	// factory deploys with.
	PoolInitCodeHash = common.HexToHash("0xe34f199b19b2b4f47f68442619d555527d244f78a3297ea89325f843f87b8b54")
)

// AddressFor derives the deterministic CREATE2 pool address for a token pair
// and fee tier. The pair is canonicalized first, so argument order does not
// matter. The derivation depends on SortsBefore being consistent everywhere.
func AddressFor(factory common.Address, initCodeHash common.Hash, tokenA, tokenB entities.Token, fee entities.FeeTier) (common.Address, error) {
	aFirst, err := tokenA.Wrapped().SortsBefore(tokenB.Wrapped())
	if err != nil {
		return common.Address{}, err
	}
	token0, token1 := tokenA.Wrapped(), tokenB.Wrapped()
	if !aFirst {
		token0, token1 = token1, token0
	}

	// abi.encode(token0, token1, fee): three left-padded 32-byte words.
	encoded := make([]byte, 0, 96)
	encoded = append(encoded, common.LeftPadBytes(token0.Address.Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(token1.Address.Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(new(big.Int).SetUint64(uint64(fee)).Bytes(), 32)...)
	salt := crypto.Keccak256Hash(encoded)

	return crypto.CreateAddress2(factory, salt, initCodeHash.Bytes()), nil
}

// Address derives the pool's canonical address under the default factory.
func (p *Pool) Address() (common.Address, error) {
	return AddressFor(DefaultFactoryAddress, PoolInitCodeHash, p.Token0, p.Token1, p.Fee)
}
