package tickmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/defiquote/clmm-go/calculator/bitmath"
)

var (
	// MIN_TICK is the minimum tick that may be passed to GetSqrtRatioAtTick.
	MIN_TICK = -887272
	// MAX_TICK is the maximum tick that may be passed to GetSqrtRatioAtTick.
	MAX_TICK = 887272

	// MIN_SQRT_RATIO is the sqrt ratio at MIN_TICK, the smallest value
	// GetSqrtRatioAtTick can return.
	MIN_SQRT_RATIO = big.NewInt(4295128739)
	// MAX_SQRT_RATIO is the sqrt ratio at MAX_TICK, the largest value
	// GetSqrtRatioAtTick can return.
	MAX_SQRT_RATIO, _ = new(big.Int).SetString("1461446703485210103287273052203988822378723970342", 10)

	ErrTickOutOfBounds      = errors.New("tick out of bounds")
	ErrSqrtPriceOutOfBounds = errors.New("sqrt price out of bounds")

	one        = uint256.NewInt(1)
	maxUint256 = uint256.MustFromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))

	// ratioConstants[0] and [1] seed the ladder for odd/even ticks; the rest
	// are sqrt(1.0001^2^i) in UQ128.128 for i = 1..19, consumed by the
	// binary-exponentiation loop. The final entry masks the 32 bits dropped
	// when rescaling to Q96.
	ratioConstants = [22]*uint256.Int{
		hexConstant("0xfffcb933bd6fad37aa2d162d1a594001"),  // sqrt(1.0001^1)
		hexConstant("0x100000000000000000000000000000000"), // 1 in UQ128.128
		hexConstant("0xfff97272373d413259a46990580e213a"),  // sqrt(1.0001^2)
		hexConstant("0xfff2e50f5f656932ef12357cf3c7fdcc"),  // sqrt(1.0001^4)
		hexConstant("0xffe5caca7e10e4e61c3624eaa0941cd0"),  // sqrt(1.0001^8)
		hexConstant("0xffcb9843d60f6159c9db58835c926644"),  // sqrt(1.0001^16)
		hexConstant("0xff973b41fa98c081472e6896dfb254c0"),  // sqrt(1.0001^32)
		hexConstant("0xff2ea16466c96a3843ec78b326b52861"),  // sqrt(1.0001^64)
		hexConstant("0xfe5dee046a99a2a811c461f1969c3053"),  // sqrt(1.0001^128)
		hexConstant("0xfcbe86c7900a88aedcffc83b479aa3a4"),  // sqrt(1.0001^256)
		hexConstant("0xf987a7253ac413176f2b074cf7815e54"),  // sqrt(1.0001^512)
		hexConstant("0xf3392b0822b70005940c7a398e4b70f3"),  // sqrt(1.0001^1024)
		hexConstant("0xe7159475a2c29b7443b29c7fa6e889d9"),  // sqrt(1.0001^2048)
		hexConstant("0xd097f3bdfd2022b8845ad8f792aa5825"),  // sqrt(1.0001^4096)
		hexConstant("0xa9f746462d870fdf8a65dc1f90e061e5"),  // sqrt(1.0001^8192)
		hexConstant("0x70d869a156d2a1b890bb3df62baf32f7"),  // sqrt(1.0001^16384)
		hexConstant("0x31be135f97d08fd981231505542fcfa6"),  // sqrt(1.0001^32768)
		hexConstant("0x9aa508b5b7a84e1c677de54f3e99bc9"),   // sqrt(1.0001^65536)
		hexConstant("0x5d6af8dedb81196699c329225ee604"),    // sqrt(1.0001^131072)
		hexConstant("0x2216e584f5fa1ea926041bedfe98"),      // sqrt(1.0001^262144)
		hexConstant("0x48a170391f7dc42444e8fa2"),           // sqrt(1.0001^524288)
		hexConstant("0xffffffff"),                          // rounding mask
	}

	// Constants for the binary-logarithm inverse.
	logSqrt10001Multiplier, _ = new(big.Int).SetString("255738958999603826347141", 10)
	tickLowOffset, _          = new(big.Int).SetString("3402992956809132418596140100660247210", 10)
	tickHiOffset, _           = new(big.Int).SetString("291339464771989622907027621153398088495", 10)
)

func hexConstant(s string) *uint256.Int {
	n, err := uint256.FromHex(s)
	if err != nil {
		panic(err)
	}
	return n
}

// GetSqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96 as a Q64.96 value.
// It walks the fixed ladder of precomputed UQ128.128 constants, one multiply
// per set bit of |tick|, reciprocates for positive ticks, and rescales to
// Q96 rounding up on any dropped bits.
func GetSqrtRatioAtTick(tick int) (*big.Int, error) {
	if tick < MIN_TICK || tick > MAX_TICK {
		return nil, ErrTickOutOfBounds
	}

	absTick := tick
	if tick < 0 {
		absTick = -tick
	}

	ratio := new(uint256.Int)
	if absTick&0x1 != 0 {
		ratio.Set(ratioConstants[0])
	} else {
		ratio.Set(ratioConstants[1])
	}
	for i := 2; i < 21; i++ {
		if absTick&(1<<(i-1)) != 0 {
			ratio.Mul(ratio, ratioConstants[i]).Rsh(ratio, 128)
		}
	}

	// The ladder computes the ratio for a negative tick; positive ticks are
	// its reciprocal.
	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Rescale UQ128.128 -> Q64.96, rounding up so the round trip with
	// GetTickAtSqrtRatio stays exact.
	rem := new(uint256.Int).And(ratio, ratioConstants[21])
	ratio.Rsh(ratio, 32)
	if !rem.IsZero() {
		ratio.Add(ratio, one)
	}
	return ratio.ToBig(), nil
}

// GetTickAtSqrtRatio returns the greatest tick whose ratio is at most
// sqrtPriceX96. It extracts the most significant bit of the ratio, refines
// the binary logarithm through 14 squarings, derives the two candidate ticks
// the approximation allows, and disambiguates by re-deriving the ratio at
// the upper candidate.
func GetTickAtSqrtRatio(sqrtPriceX96 *big.Int) (int, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Cmp(MIN_SQRT_RATIO) < 0 || sqrtPriceX96.Cmp(MAX_SQRT_RATIO) >= 0 {
		return 0, ErrSqrtPriceOutOfBounds
	}

	ratio := new(big.Int).Lsh(sqrtPriceX96, 32)
	msb, err := bitmath.MostSignificantBit(ratio)
	if err != nil {
		return 0, err
	}

	// Normalize r into [2^127, 2^128).
	r := new(big.Int)
	if msb >= 128 {
		r.Rsh(ratio, msb-127)
	} else {
		r.Lsh(ratio, 127-msb)
	}

	// log2 is a signed Q64.64 approximation of log2(ratio / 2^128).
	log2 := big.NewInt(int64(msb) - 128)
	log2.Lsh(log2, 64)

	for i := 0; i < 14; i++ {
		r.Mul(r, r).Rsh(r, 127)
		f := new(big.Int).Rsh(r, 128) // 0 or 1
		if f.Sign() != 0 {
			log2.Add(log2, new(big.Int).Lsh(f, uint(63-i)))
			r.Rsh(r, 1)
		}
	}

	logSqrt10001 := new(big.Int).Mul(log2, logSqrt10001Multiplier)

	// Rsh on a negative big.Int is an arithmetic shift, matching the signed
	// shift of the reference formula.
	tickLow := new(big.Int).Sub(logSqrt10001, tickLowOffset)
	tickLow.Rsh(tickLow, 128)
	tickHi := new(big.Int).Add(logSqrt10001, tickHiOffset)
	tickHi.Rsh(tickHi, 128)

	low, hi := int(tickLow.Int64()), int(tickHi.Int64())
	if low == hi {
		return low, nil
	}

	ratioAtHi, err := GetSqrtRatioAtTick(hi)
	if err != nil {
		return 0, err
	}
	if ratioAtHi.Cmp(sqrtPriceX96) <= 0 {
		return hi, nil
	}
	return low, nil
}
