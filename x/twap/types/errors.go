package types

import (
	sdkerrors "cosmossdk.io/errors"
)

// x/twap module sentinel errors
var (
	ErrPriceNotFound = sdkerrors.Register(ModuleName, 2, "price not found")
	ErrInvalidPrice  = sdkerrors.Register(ModuleName, 3, "invalid price")
	ErrInvalidPair   = sdkerrors.Register(ModuleName, 4, "invalid asset pair")
	ErrInvalidWindow = sdkerrors.Register(ModuleName, 5, "invalid TWAP window")
)
