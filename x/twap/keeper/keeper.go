package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/paw-chain/pairpool/x/twap/types"
)

// SnapshotKeyPrefix is the prefix for price snapshots
var SnapshotKeyPrefix = []byte{0x01}

// Keeper stores price snapshots and serves time-weighted averages over them.
type Keeper struct {
	storeKey storetypes.StoreKey
	window   time.Duration
}

// NewKeeper creates a TWAP keeper averaging over window.
func NewKeeper(key storetypes.StoreKey, window time.Duration) *Keeper {
	if window <= 0 {
		panic(types.ErrInvalidWindow.Wrapf("%s", window))
	}
	return &Keeper{storeKey: key, window: window}
}

// Window returns the lookback window.
func (k Keeper) Window() time.Duration { return k.window }

func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

func pairPrefix(base, quote string) []byte {
	key := append([]byte{}, SnapshotKeyPrefix...)
	key = append(key, address.MustLengthPrefix([]byte(base))...)
	return append(key, address.MustLengthPrefix([]byte(quote))...)
}

// SnapshotKey returns the store key of the snapshot of base/quote at blockTime.
// Keys of one pair sort by time.
func SnapshotKey(base, quote string, blockTime int64) []byte {
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(blockTime))
	return append(pairPrefix(base, quote), ts...)
}

// RecordPrice stores price for base/quote at the current block time. A second
// record in the same second replaces the first.
func (k Keeper) RecordPrice(ctx context.Context, base, quote string, price sdkmath.LegacyDec) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	snapshot := types.PriceSnapshot{
		Base:      base,
		Quote:     quote,
		Price:     price,
		BlockTime: sdkCtx.BlockTime().Unix(),
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}
	if snapshot.BlockTime < 0 {
		return types.ErrInvalidPrice.Wrap("block time before epoch")
	}

	bz, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	k.getStore(ctx).Set(SnapshotKey(base, quote, snapshot.BlockTime), bz)

	k.Logger(ctx).Debug("price recorded", "base", base, "quote", quote, "price", price.String())
	return nil
}

// IterateSnapshots walks the snapshots of base/quote in time order until cb
// returns true.
func (k Keeper) IterateSnapshots(ctx context.Context, base, quote string, cb func(types.PriceSnapshot) bool) error {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), pairPrefix(base, quote))
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		var snapshot types.PriceSnapshot
		if err := json.Unmarshal(iter.Value(), &snapshot); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		if cb(snapshot) {
			return nil
		}
	}
	return nil
}
