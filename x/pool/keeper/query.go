package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// Read-only queries. They are not fenced by the reentrancy guard and may be
// called from inside ledger or oracle callbacks.

// Reserves returns (ReserveA, ReserveB).
func (k Keeper) Reserves(ctx context.Context) (math.Int, math.Int, error) {
	pool, err := k.GetPool(ctx)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return pool.ReserveA, pool.ReserveB, nil
}

// SpotPrice returns reserveOut / reserveIn for a sale of assetIn.
func (k Keeper) SpotPrice(ctx context.Context, assetIn string) (math.LegacyDec, error) {
	pool, err := k.GetPool(ctx)
	if err != nil {
		return math.LegacyDec{}, err
	}

	reserveIn, reserveOut, err := pool.ReservesFor(assetIn)
	if err != nil {
		return math.LegacyDec{}, err
	}
	if reserveIn.IsZero() {
		return math.LegacyDec{}, types.ErrInsufficientLiquidity.Wrapf("no %s reserve", assetIn)
	}

	return math.LegacyNewDecFromInt(reserveOut).QuoInt(reserveIn), nil
}

// QuoteSwap prices a swap against current reserves without consulting the
// oracle or moving assets.
func (k Keeper) QuoteSwap(ctx context.Context, assetIn string, amountIn math.Int) (math.Int, error) {
	pool, err := k.GetPool(ctx)
	if err != nil {
		return math.Int{}, err
	}

	reserveIn, reserveOut, err := pool.ReservesFor(assetIn)
	if err != nil {
		return math.Int{}, err
	}
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return math.Int{}, types.ErrInvalidAmount.Wrap("amount in must be positive")
	}
	if reserveOut.IsZero() {
		return math.Int{}, types.ErrInsufficientLiquidity
	}

	return CalculateSwapOutput(amountIn, reserveIn, reserveOut)
}

// QuoteRemoveLiquidity returns what burning shares would pay out now.
func (k Keeper) QuoteRemoveLiquidity(ctx context.Context, shares math.Int) (math.Int, math.Int, error) {
	if shares.IsNil() || !shares.IsPositive() {
		return math.Int{}, math.Int{}, types.ErrInvalidAmount.Wrap("shares must be positive")
	}

	pool, err := k.GetPool(ctx)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return CalculateRedemption(shares, pool.ReserveA, pool.ReserveB, pool.TotalShares)
}
