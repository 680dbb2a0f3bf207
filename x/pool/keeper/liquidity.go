package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// AddLiquidity deposits amountA and amountB from provider and mints shares.
//
// Shares are priced from the amounts the pool actually received. The first
// deposit mints realA + realB; later deposits mint realA * TotalShares /
// ReserveA.
func (k Keeper) AddLiquidity(ctx context.Context, provider sdk.AccAddress, amountA, amountB math.Int) (math.Int, error) {
	var shares math.Int
	err := k.WithReentrancyGuard(ctx, "add_liquidity", func(ctx sdk.Context) error {
		var execErr error
		shares, execErr = k.addLiquidity(ctx, provider, amountA, amountB)
		return execErr
	})

	k.metrics.recordLiquidityOp("add_liquidity", err)
	if err != nil {
		return math.Int{}, err
	}
	return shares, nil
}

func (k Keeper) addLiquidity(ctx sdk.Context, provider sdk.AccAddress, amountA, amountB math.Int) (math.Int, error) {
	if amountA.IsNil() || amountB.IsNil() || !amountA.IsPositive() || !amountB.IsPositive() {
		return math.Int{}, types.ErrInvalidAmount.Wrapf("deposit amounts must be positive, got (%s, %s)", amountA, amountB)
	}
	if err := k.validateAccount(provider, "provider"); err != nil {
		return math.Int{}, err
	}

	pool, err := k.GetPool(ctx)
	if err != nil {
		return math.Int{}, err
	}

	realA, err := k.pullFrom(ctx, k.ledgerA, provider, amountA)
	if err != nil {
		return math.Int{}, err
	}
	realB, err := k.pullFrom(ctx, k.ledgerB, provider, amountB)
	if err != nil {
		return math.Int{}, err
	}
	if !realA.IsPositive() || !realB.IsPositive() {
		return math.Int{}, types.ErrInvalidAmount.Wrapf("pool received (%s, %s)", realA, realB)
	}

	shares, err := CalculateShares(realA, realB, pool.ReserveA, pool.TotalShares)
	if err != nil {
		return math.Int{}, err
	}
	if !shares.IsPositive() {
		return math.Int{}, types.ErrInvalidAmount.Wrapf("deposit of (%s, %s) mints no shares", realA, realB)
	}

	if pool.ReserveA, err = SafeAdd(pool.ReserveA, realA); err != nil {
		return math.Int{}, err
	}
	if pool.ReserveB, err = SafeAdd(pool.ReserveB, realB); err != nil {
		return math.Int{}, err
	}
	if err := k.mintShares(ctx, &pool, provider, shares); err != nil {
		return math.Int{}, err
	}
	if err := k.setPool(ctx, pool); err != nil {
		return math.Int{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLiquidityAdded,
			sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
			sdk.NewAttribute(types.AttributeKeyAmountA, realA.String()),
			sdk.NewAttribute(types.AttributeKeyAmountB, realB.String()),
			sdk.NewAttribute(types.AttributeKeyShares, shares.String()),
		),
	)

	k.Logger(ctx).Debug("liquidity added",
		"provider", provider.String(),
		"amount_a", realA.String(),
		"amount_b", realB.String(),
		"shares", shares.String(),
	)

	return shares, nil
}

// RemoveLiquidity burns shares and pays the provider its proportional part
// of both reserves.
func (k Keeper) RemoveLiquidity(ctx context.Context, provider sdk.AccAddress, shares math.Int) (math.Int, math.Int, error) {
	var amountA, amountB math.Int
	err := k.WithReentrancyGuard(ctx, "remove_liquidity", func(ctx sdk.Context) error {
		var execErr error
		amountA, amountB, execErr = k.removeLiquidity(ctx, provider, shares)
		return execErr
	})

	k.metrics.recordLiquidityOp("remove_liquidity", err)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return amountA, amountB, nil
}

func (k Keeper) removeLiquidity(ctx sdk.Context, provider sdk.AccAddress, shares math.Int) (math.Int, math.Int, error) {
	if shares.IsNil() || !shares.IsPositive() {
		return math.Int{}, math.Int{}, types.ErrInvalidAmount.Wrap("shares must be positive")
	}
	if err := k.validateAccount(provider, "provider"); err != nil {
		return math.Int{}, math.Int{}, err
	}

	pool, err := k.GetPool(ctx)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	balance, err := k.ShareBalance(ctx, provider)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if balance.LT(shares) {
		return math.Int{}, math.Int{}, types.ErrInsufficientShares.Wrapf("have %s, need %s", balance, shares)
	}
	if pool.TotalShares.IsZero() {
		return math.Int{}, math.Int{}, types.ErrNoLiquidity
	}

	amountA, amountB, err := CalculateRedemption(shares, pool.ReserveA, pool.ReserveB, pool.TotalShares)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if amountA.IsZero() && amountB.IsZero() {
		return math.Int{}, math.Int{}, types.ErrInvalidAmount.Wrapf("%s shares redeem nothing", shares)
	}

	// State is settled before any asset leaves the pool.
	if err := k.burnShares(ctx, &pool, provider, shares); err != nil {
		return math.Int{}, math.Int{}, err
	}
	if pool.ReserveA, err = SafeSub(pool.ReserveA, amountA); err != nil {
		return math.Int{}, math.Int{}, err
	}
	if pool.ReserveB, err = SafeSub(pool.ReserveB, amountB); err != nil {
		return math.Int{}, math.Int{}, err
	}
	if err := k.setPool(ctx, pool); err != nil {
		return math.Int{}, math.Int{}, err
	}

	if err := k.payExact(ctx, k.ledgerA, provider, amountA); err != nil {
		return math.Int{}, math.Int{}, err
	}
	if err := k.payExact(ctx, k.ledgerB, provider, amountB); err != nil {
		return math.Int{}, math.Int{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLiquidityRemoved,
			sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
			sdk.NewAttribute(types.AttributeKeyAmountA, amountA.String()),
			sdk.NewAttribute(types.AttributeKeyAmountB, amountB.String()),
			sdk.NewAttribute(types.AttributeKeyShares, shares.String()),
		),
	)

	k.Logger(ctx).Debug("liquidity removed",
		"provider", provider.String(),
		"amount_a", amountA.String(),
		"amount_b", amountB.String(),
		"shares", shares.String(),
	)

	return amountA, amountB, nil
}

// payExact sends amount out of the pool and requires the pool's balance to
// drop by exactly amount, keeping reserves equal to holdings.
func (k Keeper) payExact(ctx sdk.Context, ledger types.AssetLedger, to sdk.AccAddress, amount math.Int) error {
	if amount.IsZero() {
		return nil
	}

	paid, err := k.pushTo(ctx, ledger, to, amount)
	if err != nil {
		return err
	}
	if !paid.Outflow.Equal(amount) {
		k.Logger(ctx).Error("pool outflow does not match payout",
			"denom", ledger.Denom(),
			"expected", amount.String(),
			"measured", paid.Outflow.String(),
		)
		return types.ErrLedgerMismatch.Wrapf("%s: pool paid %s, expected %s", ledger.Denom(), paid.Outflow, amount)
	}
	return nil
}
