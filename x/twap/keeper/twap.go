package keeper

import (
	"context"
	"errors"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pairpool/x/twap/types"
)

// GetTWAP returns the time-weighted average price of assetIn in units of
// assetOut over the window ending at the current block time. When only the
// reverse pair has been recorded the inverse of its TWAP is returned.
func (k Keeper) GetTWAP(ctx context.Context, assetIn, assetOut string) (sdkmath.LegacyDec, error) {
	if err := types.ValidatePair(assetIn, assetOut); err != nil {
		return sdkmath.LegacyDec{}, err
	}

	twap, err := k.CalculateTWAP(ctx, assetIn, assetOut)
	if err == nil {
		return twap, nil
	}
	if !errors.Is(err, types.ErrPriceNotFound) {
		return sdkmath.LegacyDec{}, err
	}

	inverse, invErr := k.CalculateTWAP(ctx, assetOut, assetIn)
	if invErr != nil {
		return sdkmath.LegacyDec{}, err
	}
	return sdkmath.LegacyOneDec().Quo(inverse), nil
}

// CalculateTWAP weights each snapshot's price by how long it was current
// inside the window. The newest snapshot older than the window counts from
// the window start, so a pair that has not moved recently still has a price.
func (k Keeper) CalculateTWAP(ctx context.Context, base, quote string) (sdkmath.LegacyDec, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()
	windowStart := now - int64(k.window.Seconds())

	var (
		carry     *types.PriceSnapshot
		snapshots []types.PriceSnapshot
	)
	err := k.IterateSnapshots(ctx, base, quote, func(s types.PriceSnapshot) bool {
		switch {
		case s.BlockTime > now:
			return true
		case s.BlockTime < windowStart:
			snap := s
			carry = &snap
		default:
			snapshots = append(snapshots, s)
		}
		return false
	})
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}

	if carry != nil && (len(snapshots) == 0 || snapshots[0].BlockTime > windowStart) {
		carry.BlockTime = windowStart
		snapshots = append([]types.PriceSnapshot{*carry}, snapshots...)
	}
	if len(snapshots) == 0 {
		return sdkmath.LegacyDec{}, types.ErrPriceNotFound.Wrapf("no %s/%s snapshots", base, quote)
	}

	totalWeightedPrice := sdkmath.LegacyZeroDec()
	totalTime := int64(0)

	for i := 0; i < len(snapshots)-1; i++ {
		timeDelta := snapshots[i+1].BlockTime - snapshots[i].BlockTime
		if timeDelta <= 0 {
			continue
		}
		totalWeightedPrice = totalWeightedPrice.Add(snapshots[i].Price.MulInt64(timeDelta))
		totalTime += timeDelta
	}

	last := snapshots[len(snapshots)-1]
	if lastTimeDelta := now - last.BlockTime; lastTimeDelta > 0 {
		totalWeightedPrice = totalWeightedPrice.Add(last.Price.MulInt64(lastTimeDelta))
		totalTime += lastTimeDelta
	}

	// all snapshots recorded in the current second
	if totalTime == 0 {
		sumPrices := sdkmath.LegacyZeroDec()
		for _, snapshot := range snapshots {
			sumPrices = sumPrices.Add(snapshot.Price)
		}
		return sumPrices.QuoInt64(int64(len(snapshots))), nil
	}

	return totalWeightedPrice.QuoInt64(totalTime), nil
}

// Prune deletes snapshots that no longer affect any TWAP: everything older
// than the window except the newest such snapshot per pair. It returns the
// number of deleted entries.
func (k Keeper) Prune(ctx context.Context) (int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	windowStart := sdkCtx.BlockTime().Unix() - int64(k.window.Seconds())
	store := k.getStore(ctx)

	// stale keys per pair in time order
	stale := map[string][][]byte{}
	var pairs []string

	iter := storetypes.KVStorePrefixIterator(store, SnapshotKeyPrefix)
	for ; iter.Valid(); iter.Next() {
		key := iter.Key()
		pair := string(key[:len(key)-8])
		blockTime := int64(sdk.BigEndianToUint64(key[len(key)-8:]))
		if blockTime >= windowStart {
			continue
		}
		if _, ok := stale[pair]; !ok {
			pairs = append(pairs, pair)
		}
		stale[pair] = append(stale[pair], append([]byte{}, key...))
	}
	iter.Close()

	deleted := 0
	for _, pair := range pairs {
		keys := stale[pair]
		for _, key := range keys[:len(keys)-1] {
			store.Delete(key)
			deleted++
		}
	}

	if deleted > 0 {
		k.Logger(ctx).Debug("pruned price snapshots", "count", deleted)
	}
	return deleted, nil
}
