package types

import (
	sdkerrors "cosmossdk.io/errors"
)

// x/ledger module sentinel errors
var (
	ErrInvalidAmount     = sdkerrors.Register(ModuleName, 2, "invalid amount")
	ErrInsufficientFunds = sdkerrors.Register(ModuleName, 3, "insufficient funds")
	ErrInvalidAddress    = sdkerrors.Register(ModuleName, 4, "invalid address")
	ErrInvalidFee        = sdkerrors.Register(ModuleName, 5, "invalid transfer fee")
)
