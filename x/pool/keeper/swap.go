package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// Swap sells amountIn of assetIn for the other asset.
//
// The input is pulled first and the measured inflow is priced, so an asset
// that takes a fee on transfer pays for its own fee. The output must be at
// least minAmountOut, both as computed and as measured at the trader, and may
// not exceed amountIn valued at the oracle TWAP.
func (k Keeper) Swap(ctx context.Context, trader sdk.AccAddress, assetIn string, amountIn, minAmountOut math.Int) (math.Int, error) {
	var amountOut math.Int
	err := k.WithReentrancyGuard(ctx, "swap", func(ctx sdk.Context) error {
		var execErr error
		amountOut, execErr = k.swap(ctx, trader, assetIn, amountIn, minAmountOut)
		return execErr
	})

	k.metrics.recordSwap(assetIn, err)
	if err != nil {
		return math.Int{}, err
	}
	return amountOut, nil
}

func (k Keeper) swap(ctx sdk.Context, trader sdk.AccAddress, assetIn string, amountIn, minAmountOut math.Int) (math.Int, error) {
	pool, err := k.GetPool(ctx)
	if err != nil {
		return math.Int{}, err
	}

	reserveIn, reserveOut, err := pool.ReservesFor(assetIn)
	if err != nil {
		return math.Int{}, err
	}
	assetOut, err := pool.Counterpart(assetIn)
	if err != nil {
		return math.Int{}, err
	}
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return math.Int{}, types.ErrInvalidAmount.Wrap("amount in must be positive")
	}
	if minAmountOut.IsNil() || minAmountOut.IsNegative() {
		return math.Int{}, types.ErrInvalidAmount.Wrap("minimum amount out cannot be negative")
	}
	if err := k.validateAccount(trader, "trader"); err != nil {
		return math.Int{}, err
	}
	if reserveOut.IsZero() {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrapf("no %s reserve", assetOut)
	}

	price, err := k.referencePrice(ctx, assetIn, assetOut)
	if err != nil {
		return math.Int{}, err
	}

	ledgerIn, err := k.ledgerFor(assetIn)
	if err != nil {
		return math.Int{}, err
	}
	ledgerOut, err := k.ledgerFor(assetOut)
	if err != nil {
		return math.Int{}, err
	}

	realIn, err := k.pullFrom(ctx, ledgerIn, trader, amountIn)
	if err != nil {
		return math.Int{}, err
	}
	if !realIn.IsPositive() {
		return math.Int{}, types.ErrInvalidAmount.Wrapf("pool received no %s", assetIn)
	}

	expectedOut, err := CalculateSwapOutput(realIn, reserveIn, reserveOut)
	if err != nil {
		return math.Int{}, err
	}
	if !expectedOut.IsPositive() {
		return math.Int{}, types.ErrInvalidAmount.Wrapf("%s%s buys nothing", realIn, assetIn)
	}
	if expectedOut.LT(minAmountOut) {
		return math.Int{}, types.ErrSlippageExceeded.Wrapf("expected %s%s, minimum %s", expectedOut, assetOut, minAmountOut)
	}

	ceiling, err := OracleCeiling(realIn, price)
	if err != nil {
		return math.Int{}, err
	}
	if expectedOut.GT(ceiling) {
		k.Logger(ctx).Error("swap output above oracle ceiling",
			"asset_in", assetIn,
			"amount_in", realIn.String(),
			"amount_out", expectedOut.String(),
			"ceiling", ceiling.String(),
			"twap", price.String(),
		)
		return math.Int{}, types.ErrPriceManipulationDetected.Wrapf(
			"output %s%s exceeds %s at TWAP %s", expectedOut, assetOut, ceiling, price,
		)
	}

	paid, err := k.pushTo(ctx, ledgerOut, trader, expectedOut)
	if err != nil {
		return math.Int{}, err
	}
	if paid.Received.LT(minAmountOut) {
		return math.Int{}, types.ErrSlippageExceeded.Wrapf("received %s%s, minimum %s", paid.Received, assetOut, minAmountOut)
	}

	newReserveIn, err := SafeAdd(reserveIn, realIn)
	if err != nil {
		return math.Int{}, err
	}
	newReserveOut, err := SafeSub(reserveOut, paid.Outflow)
	if err != nil {
		return math.Int{}, types.ErrLedgerMismatch.Wrapf("pool paid %s%s from a reserve of %s", paid.Outflow, assetOut, reserveOut)
	}
	if assetIn == pool.DenomA {
		pool.ReserveA, pool.ReserveB = newReserveIn, newReserveOut
	} else {
		pool.ReserveB, pool.ReserveA = newReserveIn, newReserveOut
	}
	if err := k.setPool(ctx, pool); err != nil {
		return math.Int{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeSwap,
			sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
			sdk.NewAttribute(types.AttributeKeyAssetIn, assetIn),
			sdk.NewAttribute(types.AttributeKeyAmountIn, realIn.String()),
			sdk.NewAttribute(types.AttributeKeyAmountOut, expectedOut.String()),
		),
	)
	k.metrics.addSwapVolume(assetIn, realIn)

	k.Logger(ctx).Debug("swap executed",
		"trader", trader.String(),
		"asset_in", assetIn,
		"amount_in", realIn.String(),
		"amount_out", expectedOut.String(),
	)

	return expectedOut, nil
}
