package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/paw-chain/pairpool/x/ledger/types"
)

// InitGenesis loads the ledger's balances. The supply is set to their sum.
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return err
	}
	if genState.Denom != k.denom {
		return fmt.Errorf("genesis denom %s does not match ledger denom %s", genState.Denom, k.denom)
	}
	if !k.Supply(ctx).IsZero() {
		return fmt.Errorf("ledger %s already has a supply", k.denom)
	}

	for _, b := range genState.Balances {
		holder := sdk.MustAccAddressFromBech32(b.Address)
		k.setInt(ctx, k.balanceKey(holder), b.Amount)
	}
	k.setInt(ctx, k.supplyKey(), genState.Total())
	return nil
}

// ExportGenesis returns every non-zero balance of the ledger's denom.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	genState := types.DefaultGenesis(k.denom)

	err := k.IterateBalances(ctx, func(holder sdk.AccAddress, amount math.Int) bool {
		genState.Balances = append(genState.Balances, types.Balance{
			Address: holder.String(),
			Amount:  amount,
		})
		return false
	})
	if err != nil {
		return nil, err
	}
	return genState, nil
}

// IterateBalances calls cb for each holder in key order until cb returns true.
func (k Keeper) IterateBalances(ctx context.Context, cb func(holder sdk.AccAddress, amount math.Int) bool) error {
	prefix := append([]byte{}, BalanceKeyPrefix...)
	prefix = append(prefix, address.MustLengthPrefix([]byte(k.denom))...)

	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		rest := iterator.Key()[len(prefix):]
		if len(rest) == 0 || int(rest[0]) != len(rest)-1 {
			return fmt.Errorf("malformed balance key %X", iterator.Key())
		}

		var amount math.Int
		if err := amount.Unmarshal(iterator.Value()); err != nil {
			return fmt.Errorf("decode balance: %w", err)
		}
		if cb(sdk.AccAddress(rest[1:]), amount) {
			break
		}
	}
	return nil
}
