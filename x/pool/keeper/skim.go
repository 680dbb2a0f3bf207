package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// Skim sends whatever the pool account holds above its reserves, for example
// direct donations, to recipient. Reserves are unchanged.
func (k Keeper) Skim(ctx context.Context, recipient sdk.AccAddress) (math.Int, math.Int, error) {
	var excessA, excessB math.Int
	err := k.WithReentrancyGuard(ctx, "skim", func(ctx sdk.Context) error {
		if err := k.validateAccount(recipient, "recipient"); err != nil {
			return err
		}

		pool, err := k.GetPool(ctx)
		if err != nil {
			return err
		}

		if excessA, err = k.excess(ctx, k.ledgerA, pool.ReserveA); err != nil {
			return err
		}
		if excessB, err = k.excess(ctx, k.ledgerB, pool.ReserveB); err != nil {
			return err
		}

		if err := k.payExact(ctx, k.ledgerA, recipient, excessA); err != nil {
			return err
		}
		if err := k.payExact(ctx, k.ledgerB, recipient, excessB); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeSkim,
				sdk.NewAttribute(types.AttributeKeyRecipient, recipient.String()),
				sdk.NewAttribute(types.AttributeKeyAmountA, excessA.String()),
				sdk.NewAttribute(types.AttributeKeyAmountB, excessB.String()),
			),
		)
		return nil
	})

	k.metrics.recordLiquidityOp("skim", err)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return excessA, excessB, nil
}

// excess returns holdings above reserve. Holdings below reserve mean the
// ledger lost pool funds and cannot be skimmed.
func (k Keeper) excess(ctx sdk.Context, ledger types.AssetLedger, reserve math.Int) (math.Int, error) {
	balance := ledger.BalanceOf(ctx, k.PoolAddress())
	surplus, err := SafeSub(balance, reserve)
	if err != nil {
		return math.Int{}, types.ErrLedgerMismatch.Wrapf("%s balance %s below reserve %s", ledger.Denom(), balance, reserve)
	}
	return surplus, nil
}
