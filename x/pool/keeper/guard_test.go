package keeper_test

import (
	"context"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pairpool/testutil/keeper"
	"github.com/paw-chain/pairpool/x/pool/keeper"
	"github.com/paw-chain/pairpool/x/pool/types"
)

func TestReentrancyGuard_LockUnlock(t *testing.T) {
	g := keeper.NewReentrancyGuard()

	require.NoError(t, g.Lock("pool"))
	require.True(t, g.Locked("pool"))
	require.ErrorIs(t, g.Lock("pool"), types.ErrReentrancyDetected)

	// independent keys do not interfere
	require.NoError(t, g.Lock("other"))

	g.Unlock("pool")
	require.False(t, g.Locked("pool"))
	require.NoError(t, g.Lock("pool"))
}

// A malicious asset re-enters the pool from inside its transfer.
func TestReentrancy_LedgerCallbackRejected(t *testing.T) {
	env := keepertest.PoolKeeper(t)
	seedPool(t, env)
	require.NoError(t, env.Fund(bob, 100, 0))
	require.NoError(t, env.Fund(carol, 50, 50))

	var (
		nestedErrs   []error
		seenReserves []math.Int
	)
	env.LedgerA.SetTransferHook(func(ctx context.Context, _, _ sdk.AccAddress, _ math.Int) {
		_, err := env.Keeper.AddLiquidity(ctx, carol, math.NewInt(50), math.NewInt(50))
		nestedErrs = append(nestedErrs, err)

		// reads stay available and see the pre-swap reserves
		a, _, err := env.Keeper.Reserves(ctx)
		require.NoError(t, err)
		seenReserves = append(seenReserves, a)
	})

	out, err := env.Keeper.Swap(env.Ctx, bob, keepertest.DenomA, math.NewInt(100), math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, int64(180), out.Int64())

	require.Len(t, nestedErrs, 1)
	require.ErrorIs(t, nestedErrs[0], types.ErrReentrancyDetected)
	require.Equal(t, int64(1000), seenReserves[0].Int64())

	requireReserves(t, env, 1100, 1820)
	requireShares(t, env, carol, 0)
	require.Len(t, env.EventsOfType(types.EventTypeSwap), 1)
	require.Empty(t, env.EventsOfType(types.EventTypeLiquidityAdded))
	requireInvariants(t, env)
}

func TestReentrancy_OracleCallbackRejected(t *testing.T) {
	env := keepertest.PoolKeeper(t)
	seedPool(t, env)
	require.NoError(t, env.Fund(bob, 100, 0))

	var nestedErr error
	env.Oracle.SetHook(func(ctx context.Context) {
		_, _, nestedErr = env.Keeper.RemoveLiquidity(ctx, alice, math.NewInt(1500))
	})

	_, err := env.Keeper.Swap(env.Ctx, bob, keepertest.DenomA, math.NewInt(100), math.ZeroInt())
	require.NoError(t, err)
	require.ErrorIs(t, nestedErr, types.ErrReentrancyDetected)

	requireShares(t, env, alice, 3000)
	requireReserves(t, env, 1100, 1820)
}

func TestReentrancy_EveryMutationIsFenced(t *testing.T) {
	env := keepertest.PoolKeeper(t)
	seedPool(t, env)
	require.NoError(t, env.Fund(bob, 100, 0))

	nested := map[string]func(ctx context.Context) error{
		"add": func(ctx context.Context) error {
			_, err := env.Keeper.AddLiquidity(ctx, alice, math.NewInt(1), math.NewInt(1))
			return err
		},
		"remove": func(ctx context.Context) error {
			_, _, err := env.Keeper.RemoveLiquidity(ctx, alice, math.NewInt(3))
			return err
		},
		"swap": func(ctx context.Context) error {
			_, err := env.Keeper.Swap(ctx, alice, keepertest.DenomB, math.NewInt(10), math.ZeroInt())
			return err
		},
		"transfer": func(ctx context.Context) error {
			return env.Keeper.TransferShares(ctx, alice, carol, math.NewInt(1))
		},
		"skim": func(ctx context.Context) error {
			_, _, err := env.Keeper.Skim(ctx, carol)
			return err
		},
	}

	errs := map[string]error{}
	env.Oracle.SetHook(func(ctx context.Context) {
		for name, call := range nested {
			errs[name] = call(ctx)
		}
	})

	_, err := env.Keeper.Swap(env.Ctx, bob, keepertest.DenomA, math.NewInt(100), math.ZeroInt())
	require.NoError(t, err)

	require.Len(t, errs, len(nested))
	for name, err := range errs {
		require.ErrorIs(t, err, types.ErrReentrancyDetected, name)
	}
}

func TestReentrancy_LockReleasedAfterPanic(t *testing.T) {
	env := keepertest.PoolKeeper(t)
	seedPool(t, env)
	require.NoError(t, env.Fund(bob, 200, 0))

	env.Oracle.SetHook(func(context.Context) { panic("oracle exploded") })
	require.Panics(t, func() {
		_, _ = env.Keeper.Swap(env.Ctx, bob, keepertest.DenomA, math.NewInt(100), math.ZeroInt())
	})
	require.False(t, env.Keeper.IsBusy(env.Ctx))
	requireReserves(t, env, 1000, 2000)

	env.Oracle.SetHook(nil)
	_, err := env.Keeper.Swap(env.Ctx, bob, keepertest.DenomA, math.NewInt(100), math.ZeroInt())
	require.NoError(t, err)
}

func TestReentrancy_LockReleasedAfterError(t *testing.T) {
	env := keepertest.PoolKeeper(t)
	seedPool(t, env)

	_, _, err := env.Keeper.RemoveLiquidity(env.Ctx, alice, math.NewInt(10_000))
	require.ErrorIs(t, err, types.ErrInsufficientShares)
	require.False(t, env.Keeper.IsBusy(env.Ctx))

	_, _, err = env.Keeper.RemoveLiquidity(env.Ctx, alice, math.NewInt(300))
	require.NoError(t, err)
}

func TestReentrancy_StoreMarkerBlocksMutation(t *testing.T) {
	env := keepertest.PoolKeeper(t)
	seedPool(t, env)

	store := env.Ctx.KVStore(env.Keeper.GetStoreKey())
	store.Set(keeper.ReentrancyLockKey("pool"), []byte{0x01})
	require.True(t, env.Keeper.IsBusy(env.Ctx))

	_, _, err := env.Keeper.RemoveLiquidity(env.Ctx, alice, math.NewInt(300))
	require.ErrorIs(t, err, types.ErrReentrancyDetected)

	// the in-memory lock taken before the store check is released again
	store.Delete(keeper.ReentrancyLockKey("pool"))
	require.False(t, env.Keeper.IsBusy(env.Ctx))
	_, _, err = env.Keeper.RemoveLiquidity(env.Ctx, alice, math.NewInt(300))
	require.NoError(t, err)
}
