package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pairpool/x/twap/keeper"
	"github.com/paw-chain/pairpool/x/twap/types"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func setupTWAP(t *testing.T, window time.Duration) (*keeper.Keeper, sdk.Context) {
	t.Helper()

	key := storetypes.NewKVStoreKey(types.StoreKey)
	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(key, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Time: start}, false, log.NewNopLogger())
	return keeper.NewKeeper(key, window), ctx
}

func at(ctx sdk.Context, offset time.Duration) sdk.Context {
	return ctx.WithBlockTime(start.Add(offset))
}

func dec(s string) sdkmath.LegacyDec {
	return sdkmath.LegacyMustNewDecFromStr(s)
}

func TestGetTWAP_SingleSnapshot(t *testing.T) {
	k, ctx := setupTWAP(t, time.Hour)

	require.NoError(t, k.RecordPrice(ctx, "atoken", "btoken", dec("2")))

	twap, err := k.GetTWAP(at(ctx, time.Minute), "atoken", "btoken")
	require.NoError(t, err)
	require.True(t, twap.Equal(dec("2")), twap.String())

	// same-second query averages the snapshots of that second
	twap, err = k.GetTWAP(ctx, "atoken", "btoken")
	require.NoError(t, err)
	require.True(t, twap.Equal(dec("2")), twap.String())
}

func TestGetTWAP_TimeWeighted(t *testing.T) {
	k, ctx := setupTWAP(t, time.Hour)

	require.NoError(t, k.RecordPrice(ctx, "atoken", "btoken", dec("2")))
	require.NoError(t, k.RecordPrice(at(ctx, 30*time.Minute), "atoken", "btoken", dec("4")))

	// 2 for 30 minutes, 4 for 10 minutes
	twap, err := k.GetTWAP(at(ctx, 40*time.Minute), "atoken", "btoken")
	require.NoError(t, err)
	require.True(t, twap.Equal(dec("2.5")), twap.String())
}

func TestGetTWAP_StaleSnapshotCarriedIntoWindow(t *testing.T) {
	k, ctx := setupTWAP(t, 10*time.Minute)

	require.NoError(t, k.RecordPrice(ctx, "atoken", "btoken", dec("1")))
	require.NoError(t, k.RecordPrice(at(ctx, 55*time.Minute), "atoken", "btoken", dec("3")))

	// window [50m, 60m]: 1 for 5 minutes, 3 for 5 minutes
	twap, err := k.GetTWAP(at(ctx, time.Hour), "atoken", "btoken")
	require.NoError(t, err)
	require.True(t, twap.Equal(dec("2")), twap.String())

	// only the stale snapshot left in range
	twap, err = k.GetTWAP(at(ctx, 20*time.Minute), "atoken", "btoken")
	require.NoError(t, err)
	require.True(t, twap.Equal(dec("1")), twap.String())
}

func TestGetTWAP_InverseFallback(t *testing.T) {
	k, ctx := setupTWAP(t, time.Hour)

	require.NoError(t, k.RecordPrice(ctx, "atoken", "btoken", dec("4")))

	twap, err := k.GetTWAP(at(ctx, time.Minute), "btoken", "atoken")
	require.NoError(t, err)
	require.True(t, twap.Equal(dec("0.25")), twap.String())
}

func TestGetTWAP_Errors(t *testing.T) {
	k, ctx := setupTWAP(t, time.Hour)

	_, err := k.GetTWAP(ctx, "atoken", "btoken")
	require.ErrorIs(t, err, types.ErrPriceNotFound)

	_, err = k.GetTWAP(ctx, "atoken", "atoken")
	require.ErrorIs(t, err, types.ErrInvalidPair)

	// snapshots from the future are ignored
	require.NoError(t, k.RecordPrice(at(ctx, time.Hour), "atoken", "btoken", dec("1")))
	_, err = k.GetTWAP(ctx, "atoken", "btoken")
	require.ErrorIs(t, err, types.ErrPriceNotFound)
}

func TestRecordPrice_Validation(t *testing.T) {
	k, ctx := setupTWAP(t, time.Hour)

	require.ErrorIs(t, k.RecordPrice(ctx, "atoken", "btoken", sdkmath.LegacyZeroDec()), types.ErrInvalidPrice)
	require.ErrorIs(t, k.RecordPrice(ctx, "atoken", "btoken", dec("-1")), types.ErrInvalidPrice)
	require.ErrorIs(t, k.RecordPrice(ctx, "atoken", "atoken", dec("1")), types.ErrInvalidPair)
	require.ErrorIs(t, k.RecordPrice(ctx, "", "btoken", dec("1")), types.ErrInvalidPair)
}

func TestPrune(t *testing.T) {
	k, ctx := setupTWAP(t, 10*time.Minute)

	for i, p := range []string{"1", "2", "3", "4"} {
		require.NoError(t, k.RecordPrice(at(ctx, time.Duration(i)*time.Minute), "atoken", "btoken", dec(p)))
	}
	require.NoError(t, k.RecordPrice(at(ctx, 15*time.Minute), "atoken", "btoken", dec("5")))
	require.NoError(t, k.RecordPrice(ctx, "ctoken", "btoken", dec("7")))

	now := at(ctx, 20*time.Minute)
	before, err := k.GetTWAP(now, "atoken", "btoken")
	require.NoError(t, err)

	// atoken keeps 3m (newest stale) and 15m; ctoken keeps its only snapshot
	deleted, err := k.Prune(now)
	require.NoError(t, err)
	require.Equal(t, 3, deleted)

	after, err := k.GetTWAP(now, "atoken", "btoken")
	require.NoError(t, err)
	require.True(t, before.Equal(after), "%s != %s", before, after)

	_, err = k.GetTWAP(now, "ctoken", "btoken")
	require.NoError(t, err)

	deleted, err = k.Prune(now)
	require.NoError(t, err)
	require.Zero(t, deleted)
}

func TestNewKeeperRejectsEmptyWindow(t *testing.T) {
	require.Panics(t, func() { keeper.NewKeeper(storetypes.NewKVStoreKey("x"), 0) })
}
