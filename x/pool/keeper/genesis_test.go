package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pairpool/testutil/keeper"
	"github.com/paw-chain/pairpool/x/pool/types"
)

func TestGenesis_RoundTrip(t *testing.T) {
	env := keepertest.PoolKeeper(t)
	seedPool(t, env)
	require.NoError(t, env.Keeper.TransferShares(env.Ctx, alice, bob, math.NewInt(1200)))

	exported, err := env.Keeper.ExportGenesis(env.Ctx)
	require.NoError(t, err)
	require.NoError(t, exported.Validate())
	require.NotNil(t, exported.Pool)
	require.Len(t, exported.Shares, 2)

	fresh, err := keepertest.NewPoolEnvWithConfig(keepertest.PoolEnvConfig{SkipInitPool: true})
	require.NoError(t, err)
	require.NoError(t, fresh.Keeper.InitGenesis(fresh.Ctx, *exported))

	reexported, err := fresh.Keeper.ExportGenesis(fresh.Ctx)
	require.NoError(t, err)
	require.Equal(t, exported.Pool.PairID(), reexported.Pool.PairID())
	require.True(t, exported.Pool.ReserveA.Equal(reexported.Pool.ReserveA))
	require.True(t, exported.Pool.ReserveB.Equal(reexported.Pool.ReserveB))
	require.True(t, exported.Pool.TotalShares.Equal(reexported.Pool.TotalShares))
	require.Len(t, reexported.Shares, len(exported.Shares))
	for i := range exported.Shares {
		require.Equal(t, exported.Shares[i].Provider, reexported.Shares[i].Provider)
		require.True(t, exported.Shares[i].Shares.Equal(reexported.Shares[i].Shares))
	}

	requireShares(t, fresh, bob, 1200)
}

func TestGenesis_DefaultLeavesPoolUninitialised(t *testing.T) {
	env, err := keepertest.NewPoolEnvWithConfig(keepertest.PoolEnvConfig{SkipInitPool: true})
	require.NoError(t, err)

	require.NoError(t, env.Keeper.InitGenesis(env.Ctx, *types.DefaultGenesis()))
	require.False(t, env.Keeper.HasPool(env.Ctx))

	exported, err := env.Keeper.ExportGenesis(env.Ctx)
	require.NoError(t, err)
	require.Nil(t, exported.Pool)
	require.Empty(t, exported.Shares)
}

func TestGenesis_Rejections(t *testing.T) {
	t.Run("denoms differ from ledgers", func(t *testing.T) {
		env, err := keepertest.NewPoolEnvWithConfig(keepertest.PoolEnvConfig{SkipInitPool: true})
		require.NoError(t, err)

		pool := types.NewPool("xtoken", "ytoken")
		err = env.Keeper.InitGenesis(env.Ctx, types.GenesisState{Pool: &pool, Shares: []types.ShareRecord{}})
		require.Error(t, err)
	})

	t.Run("pool already present", func(t *testing.T) {
		env := keepertest.PoolKeeper(t)

		pool := types.NewPool(keepertest.DenomA, keepertest.DenomB)
		err := env.Keeper.InitGenesis(env.Ctx, types.GenesisState{Pool: &pool, Shares: []types.ShareRecord{}})
		require.ErrorIs(t, err, types.ErrPoolAlreadyExists)
	})

	t.Run("invalid state", func(t *testing.T) {
		env, err := keepertest.NewPoolEnvWithConfig(keepertest.PoolEnvConfig{SkipInitPool: true})
		require.NoError(t, err)

		pool := types.NewPool(keepertest.DenomA, keepertest.DenomB)
		pool.TotalShares = math.NewInt(10)
		err = env.Keeper.InitGenesis(env.Ctx, types.GenesisState{Pool: &pool})
		require.Error(t, err)
	})
}
