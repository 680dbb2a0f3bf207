package types

import (
	"fmt"
)

const (
	// ModuleName defines the module name
	ModuleName = "ledger"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// MaxFeeBps is a transfer fee of 100%.
	MaxFeeBps = uint32(10_000)
)

// ValidateFeeBps checks a transfer fee expressed in basis points.
func ValidateFeeBps(feeBps uint32) error {
	if feeBps > MaxFeeBps {
		return ErrInvalidFee.Wrapf("fee %d bps exceeds %d", feeBps, MaxFeeBps)
	}
	return nil
}

// FeeLabel renders a fee for logs and CLI output.
func FeeLabel(feeBps uint32) string {
	return fmt.Sprintf("%d.%02d%%", feeBps/100, feeBps%100)
}
