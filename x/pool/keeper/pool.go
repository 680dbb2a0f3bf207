package keeper

import (
	"context"
	"encoding/json"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// HasPool reports whether the pool has been initialised.
func (k Keeper) HasPool(ctx context.Context) bool {
	return k.getStore(ctx).Has(PoolKey)
}

// GetPool returns the pool state.
func (k Keeper) GetPool(ctx context.Context) (types.Pool, error) {
	bz := k.getStore(ctx).Get(PoolKey)
	if bz == nil {
		return types.Pool{}, types.ErrPoolNotFound
	}

	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return types.Pool{}, types.ErrInvalidPoolState.Wrapf("decode pool: %v", err)
	}
	return pool, nil
}

// setPool validates and stores the pool state.
func (k Keeper) setPool(ctx context.Context, pool types.Pool) error {
	if err := pool.Validate(); err != nil {
		return err
	}

	bz, err := json.Marshal(pool)
	if err != nil {
		return types.ErrInvalidPoolState.Wrapf("encode pool: %v", err)
	}

	k.getStore(ctx).Set(PoolKey, bz)
	k.metrics.observePool(pool)
	return nil
}

// InitPool creates the empty pool for the keeper's two ledgers.
func (k Keeper) InitPool(ctx context.Context) (types.Pool, error) {
	if k.HasPool(ctx) {
		return types.Pool{}, types.ErrPoolAlreadyExists
	}

	pool := types.NewPool(k.ledgerA.Denom(), k.ledgerB.Denom())
	if err := k.setPool(ctx, pool); err != nil {
		return types.Pool{}, err
	}

	k.Logger(ctx).Info("pool initialised", "pair", pool.PairID(), "address", k.PoolAddress().String())
	return pool, nil
}
