package keeper

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// InitGenesis initializes the pool module's state from a provided genesis state.
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return fmt.Errorf("invalid genesis state: %w", err)
	}
	if genState.Pool == nil {
		return nil
	}

	pool := *genState.Pool
	if pool.DenomA != k.ledgerA.Denom() || pool.DenomB != k.ledgerB.Denom() {
		return fmt.Errorf("genesis pool %s does not match ledgers %s/%s", pool.PairID(), k.ledgerA.Denom(), k.ledgerB.Denom())
	}
	if k.HasPool(ctx) {
		return types.ErrPoolAlreadyExists
	}

	if err := k.setPool(ctx, pool); err != nil {
		return fmt.Errorf("failed to set pool: %w", err)
	}
	for _, rec := range genState.Shares {
		provider, err := sdk.AccAddressFromBech32(rec.Provider)
		if err != nil {
			return fmt.Errorf("invalid provider %s: %w", rec.Provider, err)
		}
		if err := k.setShareBalance(ctx, provider, rec.Shares); err != nil {
			return fmt.Errorf("failed to set shares for %s: %w", rec.Provider, err)
		}
	}

	return nil
}

// ExportGenesis returns the pool module's exported genesis.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	genesis := types.DefaultGenesis()

	pool, err := k.GetPool(ctx)
	if err != nil {
		if errors.Is(err, types.ErrPoolNotFound) {
			return genesis, nil
		}
		return nil, err
	}
	genesis.Pool = &pool

	shares, err := k.AllShares(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export shares: %w", err)
	}
	genesis.Shares = shares

	return genesis, nil
}
