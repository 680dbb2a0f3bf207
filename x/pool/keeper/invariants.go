package keeper

import (
	"errors"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// RegisterInvariants registers all pool invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "conservation", ConservationInvariant(k))
	ir.RegisterRoute(types.ModuleName, "share-supply", ShareSupplyInvariant(k))
	ir.RegisterRoute(types.ModuleName, "positive-reserves", PositiveReservesInvariant(k))
}

// AllInvariants runs all invariants of the pool module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := ConservationInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		res, stop = ShareSupplyInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		return PositiveReservesInvariant(k)(ctx)
	}
}

// ConservationInvariant checks that reserves equal the pool account's ledger
// balances. Run it after Skim when out-of-band donations are possible.
func ConservationInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		pool, err := k.GetPool(ctx)
		if err != nil {
			return noPool(ctx, "conservation", err)
		}

		var (
			msg   string
			count int
		)

		balanceA := k.ledgerA.BalanceOf(ctx, k.PoolAddress())
		balanceB := k.ledgerB.BalanceOf(ctx, k.PoolAddress())

		if !balanceA.Equal(pool.ReserveA) {
			count++
			msg += fmt.Sprintf("reserve %s %s != pool balance %s\n", pool.DenomA, pool.ReserveA, balanceA)
		}
		if !balanceB.Equal(pool.ReserveB) {
			count++
			msg += fmt.Sprintf("reserve %s %s != pool balance %s\n", pool.DenomB, pool.ReserveB, balanceB)
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "conservation",
			fmt.Sprintf("found %d reserves out of balance\n%s", count, msg),
		), broken
	}
}

// ShareSupplyInvariant checks that provider balances sum to TotalShares
func ShareSupplyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		pool, err := k.GetPool(ctx)
		if err != nil {
			return noPool(ctx, "share-supply", err)
		}

		records, err := k.AllShares(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "share-supply", err.Error()), true
		}

		sum := math.ZeroInt()
		for _, rec := range records {
			sum = sum.Add(rec.Shares)
		}

		broken := !sum.Equal(pool.TotalShares)
		return sdk.FormatInvariant(
			types.ModuleName, "share-supply",
			fmt.Sprintf("%d providers hold %s shares, total shares %s", len(records), sum, pool.TotalShares),
		), broken
	}
}

// PositiveReservesInvariant checks that outstanding shares are backed by both
// assets and nothing is negative.
func PositiveReservesInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		pool, err := k.GetPool(ctx)
		if err != nil {
			return noPool(ctx, "positive-reserves", err)
		}

		if err := pool.Validate(); err != nil {
			return sdk.FormatInvariant(types.ModuleName, "positive-reserves", err.Error()), true
		}

		return sdk.FormatInvariant(
			types.ModuleName, "positive-reserves",
			fmt.Sprintf("reserves (%s, %s) back %s shares", pool.ReserveA, pool.ReserveB, pool.TotalShares),
		), false
	}
}

// noPool treats a missing pool as trivially sound and anything else as broken.
func noPool(_ sdk.Context, route string, err error) (string, bool) {
	if errors.Is(err, types.ErrPoolNotFound) {
		return sdk.FormatInvariant(types.ModuleName, route, "pool not initialised"), false
	}
	return sdk.FormatInvariant(types.ModuleName, route, err.Error()), true
}
