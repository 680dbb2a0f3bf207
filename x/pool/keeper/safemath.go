package keeper

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// maxBitLen matches the bound enforced by math.Int.
const maxBitLen = math.MaxBitLen

func fromBig(result *big.Int, op string) (math.Int, error) {
	if result.BitLen() > maxBitLen {
		return math.Int{}, types.ErrOverflow.Wrapf("%s result exceeds %d bits", op, maxBitLen)
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeAdd adds two math.Int values with overflow checking
func SafeAdd(a, b math.Int) (math.Int, error) {
	return fromBig(new(big.Int).Add(a.BigInt(), b.BigInt()), "addition")
}

// SafeSub subtracts b from a; a negative result is an underflow.
func SafeSub(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, types.ErrOverflow.Wrapf("underflow: cannot subtract %s from %s", b, a)
	}
	return a.Sub(b), nil
}

// SafeMul multiplies two math.Int values with overflow checking
func SafeMul(a, b math.Int) (math.Int, error) {
	if a.IsZero() || b.IsZero() {
		return math.ZeroInt(), nil
	}
	return fromBig(new(big.Int).Mul(a.BigInt(), b.BigInt()), "multiplication")
}

// SafeQuo divides two math.Int values with division by zero checking
func SafeQuo(a, b math.Int) (math.Int, error) {
	if b.IsZero() {
		return math.Int{}, types.ErrDivisionByZero.Wrapf("%s / 0", a)
	}
	return a.Quo(b), nil
}

// SafeMulDiv computes floor(a * b / c). The product is held at full precision,
// only the quotient has to fit in a math.Int.
func SafeMulDiv(a, b, c math.Int) (math.Int, error) {
	if c.IsZero() {
		return math.Int{}, types.ErrDivisionByZero.Wrapf("%s * %s / 0", a, b)
	}

	intermediate := new(big.Int).Mul(a.BigInt(), b.BigInt())
	return fromBig(intermediate.Quo(intermediate, c.BigInt()), "mul-div")
}
