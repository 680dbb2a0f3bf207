package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ShareRecord is a provider's share balance as exported in genesis.
type ShareRecord struct {
	Provider string   `json:"provider" yaml:"provider"`
	Shares   math.Int `json:"shares" yaml:"shares"`
}

// GenesisState defines the pool module's genesis state.
type GenesisState struct {
	Pool   *Pool         `json:"pool,omitempty" yaml:"pool,omitempty"`
	Shares []ShareRecord `json:"shares" yaml:"shares"`
}

// DefaultGenesis returns the default genesis state: no pool yet.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Shares: []ShareRecord{},
	}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if gs.Pool == nil {
		if len(gs.Shares) > 0 {
			return fmt.Errorf("share records present without a pool")
		}
		return nil
	}

	if err := gs.Pool.Validate(); err != nil {
		return fmt.Errorf("invalid pool: %w", err)
	}

	seen := make(map[string]struct{}, len(gs.Shares))
	sum := math.ZeroInt()
	for i, rec := range gs.Shares {
		if _, err := sdk.AccAddressFromBech32(rec.Provider); err != nil {
			return fmt.Errorf("share record %d: invalid provider %q: %w", i, rec.Provider, err)
		}
		if _, dup := seen[rec.Provider]; dup {
			return fmt.Errorf("share record %d: duplicate provider %s", i, rec.Provider)
		}
		seen[rec.Provider] = struct{}{}

		if rec.Shares.IsNil() || !rec.Shares.IsPositive() {
			return fmt.Errorf("share record %d: shares must be positive", i)
		}
		sum = sum.Add(rec.Shares)
	}

	if !sum.Equal(gs.Pool.TotalShares) {
		return fmt.Errorf("share records sum to %s, pool total shares is %s", sum, gs.Pool.TotalShares)
	}

	return nil
}
