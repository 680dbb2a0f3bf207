package app

import (
	"fmt"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"

	ledgertypes "github.com/paw-chain/pairpool/x/ledger/types"
	twaptypes "github.com/paw-chain/pairpool/x/twap/types"
)

const (
	// DefaultDenomA is the first asset of the default pair.
	DefaultDenomA = "atoken"
	// DefaultDenomB is the second asset of the default pair.
	DefaultDenomB = "btoken"
)

// Config selects the pair, the ledgers' transfer fees and the oracle window.
type Config struct {
	DenomA       string
	DenomB       string
	FeeBpsA      uint32
	FeeBpsB      uint32
	OracleWindow time.Duration
}

// DefaultConfig returns a fee-free atoken/btoken pool with a 30 minute TWAP.
func DefaultConfig() Config {
	return Config{
		DenomA:       DefaultDenomA,
		DenomB:       DefaultDenomB,
		OracleWindow: twaptypes.DefaultWindow,
	}
}

// Validate checks the configuration before any keeper is built.
func (c Config) Validate() error {
	if err := sdk.ValidateDenom(c.DenomA); err != nil {
		return fmt.Errorf("denom a: %w", err)
	}
	if err := sdk.ValidateDenom(c.DenomB); err != nil {
		return fmt.Errorf("denom b: %w", err)
	}
	if c.DenomA == c.DenomB {
		return fmt.Errorf("pool needs two distinct denoms, got %s twice", c.DenomA)
	}
	if err := ledgertypes.ValidateFeeBps(c.FeeBpsA); err != nil {
		return fmt.Errorf("denom a: %w", err)
	}
	if err := ledgertypes.ValidateFeeBps(c.FeeBpsB); err != nil {
		return fmt.Errorf("denom b: %w", err)
	}
	if c.OracleWindow <= 0 {
		return fmt.Errorf("oracle window must be positive, got %s", c.OracleWindow)
	}
	return nil
}

const (
	// Bech32PrefixAccAddr defines the Bech32 prefix of an account's address
	Bech32PrefixAccAddr = "pair"
	// Bech32PrefixAccPub defines the Bech32 prefix of an account's public key
	Bech32PrefixAccPub = "pairpub"
)

// SetAddressPrefixes installs the pairpool account prefixes in the global SDK
// config. Call it once, before any address is rendered.
func SetAddressPrefixes() {
	config := sdk.GetConfig()
	config.SetBech32PrefixForAccount(Bech32PrefixAccAddr, Bech32PrefixAccPub)
	config.Seal()
}
