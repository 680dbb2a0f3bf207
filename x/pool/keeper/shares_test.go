package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pairpool/testutil/keeper"
	"github.com/paw-chain/pairpool/x/pool/types"
)

func TestTransferShares(t *testing.T) {
	env := keepertest.PoolKeeper(t)
	seedPool(t, env)

	require.NoError(t, env.Keeper.TransferShares(env.Ctx, alice, bob, math.NewInt(1000)))
	requireShares(t, env, alice, 2000)
	requireShares(t, env, bob, 1000)
	require.Len(t, env.EventsOfType(types.EventTypeSharesTransferred), 1)

	// the recipient can redeem what it received
	amountA, amountB, err := env.Keeper.RemoveLiquidity(env.Ctx, bob, math.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, int64(333), amountA.Int64())
	require.Equal(t, int64(666), amountB.Int64())
	requireInvariants(t, env)
}

func TestTransferShares_WholeBalanceDeletesEntry(t *testing.T) {
	env := keepertest.PoolKeeper(t)
	seedPool(t, env)

	require.NoError(t, env.Keeper.TransferShares(env.Ctx, alice, bob, math.NewInt(3000)))

	records, err := env.Keeper.AllShares(env.Ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, bob.String(), records[0].Provider)
	require.Equal(t, int64(3000), records[0].Shares.Int64())
}

func TestTransferShares_Errors(t *testing.T) {
	tests := []struct {
		name   string
		from   []byte
		to     []byte
		amount math.Int
		err    error
	}{
		{"zero amount", alice, bob, math.ZeroInt(), types.ErrInvalidAmount},
		{"negative amount", alice, bob, math.NewInt(-1), types.ErrInvalidAmount},
		{"more than held", alice, bob, math.NewInt(3001), types.ErrInsufficientShares},
		{"sender holds nothing", carol, bob, math.NewInt(1), types.ErrInsufficientShares},
		{"self transfer", alice, alice, math.NewInt(1), types.ErrInvalidAddress},
		{"empty recipient", alice, nil, math.NewInt(1), types.ErrInvalidAddress},
		{"to pool account", alice, types.PoolAddress(), math.NewInt(1), types.ErrInvalidAddress},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := keepertest.PoolKeeper(t)
			seedPool(t, env)

			err := env.Keeper.TransferShares(env.Ctx, tc.from, tc.to, tc.amount)
			require.ErrorIs(t, err, tc.err)
			requireShares(t, env, alice, 3000)
			require.Empty(t, env.EventsOfType(types.EventTypeSharesTransferred))
		})
	}
}
