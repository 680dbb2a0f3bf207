package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// pullFrom transfers amount from holder into the pool and returns what the pool
// actually received.
func (k Keeper) pullFrom(ctx sdk.Context, ledger types.AssetLedger, holder sdk.AccAddress, amount math.Int) (math.Int, error) {
	poolAddr := k.PoolAddress()
	before := ledger.BalanceOf(ctx, poolAddr)

	if err := ledger.TransferFrom(ctx, holder, poolAddr, amount); err != nil {
		return math.Int{}, types.ErrTransferFailed.Wrapf("pull %s%s from %s: %v", amount, ledger.Denom(), holder, err)
	}

	after := ledger.BalanceOf(ctx, poolAddr)
	received, err := SafeSub(after, before)
	if err != nil {
		return math.Int{}, types.ErrLedgerMismatch.Wrapf(
			"pool %s balance fell from %s to %s during transfer-in", ledger.Denom(), before, after,
		)
	}

	return received, nil
}

// payout is the measured effect of a transfer out of the pool.
type payout struct {
	// Outflow is the decrease of the pool's balance.
	Outflow math.Int
	// Received is the increase of the recipient's balance.
	Received math.Int
}

// pushTo transfers amount from the pool to recipient and measures both sides.
func (k Keeper) pushTo(ctx sdk.Context, ledger types.AssetLedger, recipient sdk.AccAddress, amount math.Int) (payout, error) {
	poolAddr := k.PoolAddress()
	poolBefore := ledger.BalanceOf(ctx, poolAddr)
	recipientBefore := ledger.BalanceOf(ctx, recipient)

	if err := ledger.Transfer(ctx, poolAddr, recipient, amount); err != nil {
		return payout{}, types.ErrTransferFailed.Wrapf("pay %s%s to %s: %v", amount, ledger.Denom(), recipient, err)
	}

	poolAfter := ledger.BalanceOf(ctx, poolAddr)
	recipientAfter := ledger.BalanceOf(ctx, recipient)

	outflow, err := SafeSub(poolBefore, poolAfter)
	if err != nil {
		return payout{}, types.ErrLedgerMismatch.Wrapf(
			"pool %s balance rose from %s to %s during transfer-out", ledger.Denom(), poolBefore, poolAfter,
		)
	}
	received, err := SafeSub(recipientAfter, recipientBefore)
	if err != nil {
		return payout{}, types.ErrLedgerMismatch.Wrapf(
			"recipient %s balance fell from %s to %s during transfer-out", ledger.Denom(), recipientBefore, recipientAfter,
		)
	}

	return payout{Outflow: outflow, Received: received}, nil
}

// validateAccount rejects empty addresses and the pool's own account.
func (k Keeper) validateAccount(addr sdk.AccAddress, role string) error {
	if err := sdk.VerifyAddressFormat(addr); err != nil {
		return types.ErrInvalidAddress.Wrapf("%s: %v", role, err)
	}
	if addr.Equals(k.PoolAddress()) {
		return types.ErrInvalidAddress.Wrapf("%s cannot be the pool account", role)
	}
	return nil
}
