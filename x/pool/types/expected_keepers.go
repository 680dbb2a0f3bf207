package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// AssetLedger is the transfer mechanism of one pooled asset.
//
// Transfers may deliver less than the requested amount (fee-on-transfer
// assets). The pool never trusts the requested amount and always re-measures
// balances around a transfer.
type AssetLedger interface {
	Denom() string
	BalanceOf(ctx context.Context, holder sdk.AccAddress) math.Int

	// TransferFrom pulls funds from a holder that authorized the pool.
	TransferFrom(ctx context.Context, from, to sdk.AccAddress, amount math.Int) error

	// Transfer pays out of the pool's own account.
	Transfer(ctx context.Context, from, to sdk.AccAddress, amount math.Int) error
}

// PriceOracle supplies the time-weighted reference price used by the
// manipulation check. The returned price is units of assetOut per unit of
// assetIn.
type PriceOracle interface {
	GetTWAP(ctx context.Context, assetIn, assetOut string) (math.LegacyDec, error)
}
