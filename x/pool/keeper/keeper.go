package keeper

import (
	"context"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// Keeper of the pool store
type Keeper struct {
	storeKey storetypes.StoreKey
	ledgerA  types.AssetLedger
	ledgerB  types.AssetLedger
	oracle   types.PriceOracle

	// shared by value copies of the keeper
	guard   *ReentrancyGuard
	metrics *PoolMetrics
}

// NewKeeper creates a new pool Keeper instance. ledgerA and ledgerB are the
// transfer mechanisms of the two pooled assets; their denominations become the
// pool's DenomA and DenomB.
func NewKeeper(
	key storetypes.StoreKey,
	ledgerA types.AssetLedger,
	ledgerB types.AssetLedger,
	oracle types.PriceOracle,
) *Keeper {
	return &Keeper{
		storeKey: key,
		ledgerA:  ledgerA,
		ledgerB:  ledgerB,
		oracle:   oracle,
		guard:    NewReentrancyGuard(),
		metrics:  NewPoolMetrics(),
	}
}

// getStore returns the KVStore for the pool module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.KVStore(k.storeKey)
}

// GetStoreKey returns the pool module's store key.
func (k Keeper) GetStoreKey() storetypes.StoreKey {
	return k.storeKey
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.Logger().With("module", "x/"+types.ModuleName)
}

// PoolAddress returns the account holding the pool's assets.
func (k Keeper) PoolAddress() sdk.AccAddress {
	return types.PoolAddress()
}

// ledgerFor returns the ledger that moves denom.
func (k Keeper) ledgerFor(denom string) (types.AssetLedger, error) {
	switch denom {
	case k.ledgerA.Denom():
		return k.ledgerA, nil
	case k.ledgerB.Denom():
		return k.ledgerB, nil
	default:
		return nil, types.ErrInvalidToken.Wrapf("no ledger for %s", denom)
	}
}
