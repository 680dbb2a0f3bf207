package app

import (
	"encoding/json"
	"fmt"

	ledgertypes "github.com/paw-chain/pairpool/x/ledger/types"
	pooltypes "github.com/paw-chain/pairpool/x/pool/types"
)

// GenesisState is the application state keyed by module name.
type GenesisState map[string]json.RawMessage

// NewDefaultGenesisState returns empty ledgers for both denoms and an
// uninitialised pool. New creates the pool when genesis leaves it out.
func NewDefaultGenesisState(cfg Config) GenesisState {
	genesis := make(GenesisState)

	genesis[ledgertypes.ModuleName] = mustMarshalJSON([]ledgertypes.GenesisState{
		*ledgertypes.DefaultGenesis(cfg.DenomA),
		*ledgertypes.DefaultGenesis(cfg.DenomB),
	})
	genesis[pooltypes.ModuleName] = mustMarshalJSON(pooltypes.DefaultGenesis())

	return genesis
}

// ledgerGenesis decodes the ledger section, returning it keyed by denom.
func (gs GenesisState) ledgerGenesis() (map[string]ledgertypes.GenesisState, error) {
	out := make(map[string]ledgertypes.GenesisState)
	bz, ok := gs[ledgertypes.ModuleName]
	if !ok {
		return out, nil
	}

	var ledgers []ledgertypes.GenesisState
	if err := json.Unmarshal(bz, &ledgers); err != nil {
		return nil, fmt.Errorf("decode %s genesis: %w", ledgertypes.ModuleName, err)
	}
	for _, l := range ledgers {
		if _, dup := out[l.Denom]; dup {
			return nil, fmt.Errorf("duplicate ledger genesis for %s", l.Denom)
		}
		out[l.Denom] = l
	}
	return out, nil
}

// poolGenesis decodes the pool section, defaulting when it is absent.
func (gs GenesisState) poolGenesis() (pooltypes.GenesisState, error) {
	bz, ok := gs[pooltypes.ModuleName]
	if !ok {
		return *pooltypes.DefaultGenesis(), nil
	}

	var genState pooltypes.GenesisState
	if err := json.Unmarshal(bz, &genState); err != nil {
		return pooltypes.GenesisState{}, fmt.Errorf("decode %s genesis: %w", pooltypes.ModuleName, err)
	}
	return genState, nil
}

func mustMarshalJSON(v interface{}) json.RawMessage {
	bz, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bz
}
