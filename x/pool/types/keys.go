package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	// ModuleName defines the module name
	ModuleName = "pool"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

// Swap fee is a fixed 0.3%: amountInWithFee = amountIn * FeeNumerator / FeeDenominator.
const (
	FeeNumerator   = int64(997)
	FeeDenominator = int64(1000)
)

// PoolAddress returns the account that holds the pool's reserves on both ledgers.
func PoolAddress() sdk.AccAddress {
	return sdk.AccAddress(address.Module(ModuleName))
}
