package types

import "time"

const (
	// ModuleName defines the module name
	ModuleName = "twap"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// DefaultWindow is the TWAP lookback used when none is configured.
	DefaultWindow = 30 * time.Minute
)
