package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

var (
	// PoolKey is the key of the singleton pool state
	PoolKey = []byte{0x01}

	// ShareKeyPrefix is the prefix for provider share balances
	ShareKeyPrefix = []byte{0x02}

	// ReentrancyLockKeyPrefix is the prefix for reentrancy protection locks
	ReentrancyLockKeyPrefix = []byte{0x03}
)

// ShareKey returns the store key for a provider's share balance
func ShareKey(provider sdk.AccAddress) []byte {
	key := make([]byte, 0, len(ShareKeyPrefix)+1+len(provider))
	key = append(key, ShareKeyPrefix...)
	return append(key, address.MustLengthPrefix(provider)...)
}

// ProviderFromShareKey extracts the provider address from a share key.
func ProviderFromShareKey(key []byte) sdk.AccAddress {
	// prefix | len | addr
	return sdk.AccAddress(key[len(ShareKeyPrefix)+1:])
}

// ReentrancyLockKey returns the store key for a reentrancy lock
func ReentrancyLockKey(lockID string) []byte {
	key := make([]byte, 0, len(ReentrancyLockKeyPrefix)+len(lockID))
	key = append(key, ReentrancyLockKeyPrefix...)
	return append(key, []byte(lockID)...)
}
