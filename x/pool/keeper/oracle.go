package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// referencePrice fetches the oracle TWAP for assetIn -> assetOut. The oracle
// is an external call: it runs inside the caller's guard and any callback it
// makes into the pool is rejected.
func (k Keeper) referencePrice(ctx sdk.Context, assetIn, assetOut string) (math.LegacyDec, error) {
	if k.oracle == nil {
		return math.LegacyDec{}, types.ErrOracleUnavailable.Wrap("no price oracle configured")
	}

	price, err := k.oracle.GetTWAP(ctx, assetIn, assetOut)
	if err != nil {
		return math.LegacyDec{}, types.ErrOracleUnavailable.Wrapf("%s/%s: %v", assetIn, assetOut, err)
	}
	if price.IsNil() || !price.IsPositive() {
		return math.LegacyDec{}, types.ErrOracleUnavailable.Wrapf("%s/%s: non-positive TWAP %s", assetIn, assetOut, price)
	}

	return price, nil
}
