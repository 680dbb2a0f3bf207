package keeper

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/paw-chain/pairpool/x/pool/types"
)

var (
	feeNumerator   = math.NewInt(types.FeeNumerator)
	feeDenominator = math.NewInt(types.FeeDenominator)
	decPrecision   = math.LegacyOneDec().BigInt()
)

// ApplySwapFee returns the part of amountIn that is priced after the 0.3% fee.
func ApplySwapFee(amountIn math.Int) (math.Int, error) {
	return SafeMulDiv(amountIn, feeNumerator, feeDenominator)
}

// CalculateSwapOutput returns the constant-product output for amountIn:
//
//	out = reserveOut * amountInWithFee / (reserveIn + amountInWithFee)
//
// The result is always strictly below reserveOut.
func CalculateSwapOutput(amountIn, reserveIn, reserveOut math.Int) (math.Int, error) {
	if amountIn.IsNegative() || reserveIn.IsNegative() || reserveOut.IsNegative() {
		return math.Int{}, types.ErrInvalidAmount.Wrap("negative swap operand")
	}

	amountInWithFee, err := ApplySwapFee(amountIn)
	if err != nil {
		return math.Int{}, err
	}
	denominator, err := SafeAdd(reserveIn, amountInWithFee)
	if err != nil {
		return math.Int{}, err
	}

	return SafeMulDiv(reserveOut, amountInWithFee, denominator)
}

// OracleCeiling returns floor(amountIn * price), the most a swap may pay out
// at the reference price.
func OracleCeiling(amountIn math.Int, price math.LegacyDec) (math.Int, error) {
	if price.IsNil() || !price.IsPositive() {
		return math.Int{}, types.ErrOracleUnavailable.Wrapf("reference price %s is not positive", price)
	}
	product := new(big.Int).Mul(amountIn.BigInt(), price.BigInt())
	return fromBig(product.Quo(product, decPrecision), "oracle ceiling")
}

// CalculateShares returns the shares minted for a deposit of (realA, realB).
// The first deposit mints realA + realB; later ones are priced by asset A.
func CalculateShares(realA, realB, reserveA, totalShares math.Int) (math.Int, error) {
	if totalShares.IsZero() {
		return SafeAdd(realA, realB)
	}
	return SafeMulDiv(realA, totalShares, reserveA)
}

// CalculateRedemption returns the assets owed for burning shares.
func CalculateRedemption(shares, reserveA, reserveB, totalShares math.Int) (math.Int, math.Int, error) {
	if totalShares.IsZero() {
		return math.Int{}, math.Int{}, types.ErrNoLiquidity
	}
	if shares.GT(totalShares) {
		return math.Int{}, math.Int{}, types.ErrInsufficientShares.Wrapf("%s exceeds supply %s", shares, totalShares)
	}

	amountA, err := SafeMulDiv(shares, reserveA, totalShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	amountB, err := SafeMulDiv(shares, reserveB, totalShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return amountA, amountB, nil
}
