package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pairpool/testutil/keeper"
	"github.com/paw-chain/pairpool/x/pool/keeper"
)

var (
	alice = keepertest.TestAddr("alice")
	bob   = keepertest.TestAddr("bob")
	carol = keepertest.TestAddr("carol")
)

// seedPool funds alice and deposits (1000, 2000), then prices A at 2 B.
func seedPool(t *testing.T, env *keepertest.PoolEnv) {
	t.Helper()

	require.NoError(t, env.Fund(alice, 1000, 2000))
	shares, err := env.Keeper.AddLiquidity(env.Ctx, alice, math.NewInt(1000), math.NewInt(2000))
	require.NoError(t, err)
	require.True(t, shares.IsPositive())

	env.Oracle.SetPrice(keepertest.DenomA, keepertest.DenomB, math.LegacyNewDec(2))
	env.ResetEvents()
}

func requireReserves(t *testing.T, env *keepertest.PoolEnv, reserveA, reserveB int64) {
	t.Helper()

	a, b, err := env.Keeper.Reserves(env.Ctx)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(reserveA).String(), a.String(), "reserve A")
	require.Equal(t, math.NewInt(reserveB).String(), b.String(), "reserve B")
}

func requireInvariants(t *testing.T, env *keepertest.PoolEnv) {
	t.Helper()

	msg, broken := keeper.AllInvariants(*env.Keeper)(env.Ctx)
	require.False(t, broken, msg)
}

func requireShares(t *testing.T, env *keepertest.PoolEnv, holder sdk.AccAddress, expected int64) {
	t.Helper()

	shares, err := env.Keeper.ShareBalance(env.Ctx, holder)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(expected).String(), shares.String())
}
