package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// ShareBalance returns the LP shares held by provider.
func (k Keeper) ShareBalance(ctx context.Context, provider sdk.AccAddress) (math.Int, error) {
	bz := k.getStore(ctx).Get(ShareKey(provider))
	if bz == nil {
		return math.ZeroInt(), nil
	}

	var shares math.Int
	if err := shares.Unmarshal(bz); err != nil {
		return math.Int{}, types.ErrInvalidPoolState.Wrapf("decode shares of %s: %v", provider, err)
	}
	return shares, nil
}

// TotalShares returns the pool's share supply, zero before initialisation.
func (k Keeper) TotalShares(ctx context.Context) (math.Int, error) {
	pool, err := k.GetPool(ctx)
	if err != nil {
		if errors.Is(err, types.ErrPoolNotFound) {
			return math.ZeroInt(), nil
		}
		return math.Int{}, err
	}
	return pool.TotalShares, nil
}

// AllShares returns every non-zero share balance in address order.
func (k Keeper) AllShares(ctx context.Context) ([]types.ShareRecord, error) {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), ShareKeyPrefix)
	defer iter.Close()

	records := []types.ShareRecord{}
	for ; iter.Valid(); iter.Next() {
		var shares math.Int
		if err := shares.Unmarshal(iter.Value()); err != nil {
			return nil, types.ErrInvalidPoolState.Wrapf("decode share record: %v", err)
		}
		records = append(records, types.ShareRecord{
			Provider: ProviderFromShareKey(iter.Key()).String(),
			Shares:   shares,
		})
	}
	return records, nil
}

// setShareBalance stores a balance, deleting the entry when it reaches zero.
func (k Keeper) setShareBalance(ctx context.Context, provider sdk.AccAddress, shares math.Int) error {
	store := k.getStore(ctx)
	if shares.IsZero() {
		store.Delete(ShareKey(provider))
		return nil
	}

	bz, err := shares.Marshal()
	if err != nil {
		return types.ErrInvalidPoolState.Wrapf("encode shares: %v", err)
	}
	store.Set(ShareKey(provider), bz)
	return nil
}

// mintShares credits shares to provider and grows the supply in pool. The
// caller persists pool.
func (k Keeper) mintShares(ctx context.Context, pool *types.Pool, provider sdk.AccAddress, shares math.Int) error {
	balance, err := k.ShareBalance(ctx, provider)
	if err != nil {
		return err
	}
	newBalance, err := SafeAdd(balance, shares)
	if err != nil {
		return err
	}
	newTotal, err := SafeAdd(pool.TotalShares, shares)
	if err != nil {
		return err
	}

	if err := k.setShareBalance(ctx, provider, newBalance); err != nil {
		return err
	}
	pool.TotalShares = newTotal
	return nil
}

// burnShares debits shares from provider and shrinks the supply in pool. The
// caller persists pool.
func (k Keeper) burnShares(ctx context.Context, pool *types.Pool, provider sdk.AccAddress, shares math.Int) error {
	balance, err := k.ShareBalance(ctx, provider)
	if err != nil {
		return err
	}
	if balance.LT(shares) {
		return types.ErrInsufficientShares.Wrapf("have %s, need %s", balance, shares)
	}
	newTotal, err := SafeSub(pool.TotalShares, shares)
	if err != nil {
		return types.ErrInvalidPoolState.Wrapf("share supply %s below burn of %s", pool.TotalShares, shares)
	}

	if err := k.setShareBalance(ctx, provider, balance.Sub(shares)); err != nil {
		return err
	}
	pool.TotalShares = newTotal
	return nil
}

// TransferShares moves LP shares between holders.
func (k Keeper) TransferShares(ctx context.Context, from, to sdk.AccAddress, amount math.Int) error {
	err := k.WithReentrancyGuard(ctx, "transfer_shares", func(ctx sdk.Context) error {
		if amount.IsNil() || !amount.IsPositive() {
			return types.ErrInvalidAmount.Wrap("share amount must be positive")
		}
		if err := k.validateAccount(from, "sender"); err != nil {
			return err
		}
		if err := k.validateAccount(to, "recipient"); err != nil {
			return err
		}
		if from.Equals(to) {
			return types.ErrInvalidAddress.Wrap("sender and recipient are the same account")
		}
		if !k.HasPool(ctx) {
			return types.ErrPoolNotFound
		}

		fromBalance, err := k.ShareBalance(ctx, from)
		if err != nil {
			return err
		}
		if fromBalance.LT(amount) {
			return types.ErrInsufficientShares.Wrapf("have %s, need %s", fromBalance, amount)
		}
		toBalance, err := k.ShareBalance(ctx, to)
		if err != nil {
			return err
		}
		newTo, err := SafeAdd(toBalance, amount)
		if err != nil {
			return err
		}

		if err := k.setShareBalance(ctx, from, fromBalance.Sub(amount)); err != nil {
			return err
		}
		if err := k.setShareBalance(ctx, to, newTo); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeSharesTransferred,
				sdk.NewAttribute(types.AttributeKeySender, from.String()),
				sdk.NewAttribute(types.AttributeKeyRecipient, to.String()),
				sdk.NewAttribute(types.AttributeKeyShares, amount.String()),
			),
		)
		return nil
	})

	k.metrics.recordLiquidityOp("transfer_shares", err)
	return err
}
