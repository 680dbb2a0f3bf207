package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Balance is one account's holding of a denom.
type Balance struct {
	Address string   `json:"address" yaml:"address"`
	Amount  math.Int `json:"amount" yaml:"amount"`
}

// GenesisState holds the balances of a single denom.
type GenesisState struct {
	Denom    string    `json:"denom" yaml:"denom"`
	Balances []Balance `json:"balances" yaml:"balances"`
}

// DefaultGenesis returns an empty ledger for denom.
func DefaultGenesis(denom string) *GenesisState {
	return &GenesisState{
		Denom:    denom,
		Balances: []Balance{},
	}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if err := sdk.ValidateDenom(gs.Denom); err != nil {
		return fmt.Errorf("invalid denom: %w", err)
	}

	seen := make(map[string]bool, len(gs.Balances))
	for i, b := range gs.Balances {
		if _, err := sdk.AccAddressFromBech32(b.Address); err != nil {
			return fmt.Errorf("balance %d: invalid address %q: %w", i, b.Address, err)
		}
		if seen[b.Address] {
			return fmt.Errorf("balance %d: duplicate address %s", i, b.Address)
		}
		seen[b.Address] = true

		if b.Amount.IsNil() || !b.Amount.IsPositive() {
			return fmt.Errorf("balance %d: amount must be positive", i)
		}
	}
	return nil
}

// Total sums all balances.
func (gs GenesisState) Total() math.Int {
	total := math.ZeroInt()
	for _, b := range gs.Balances {
		total = total.Add(b.Amount)
	}
	return total
}
