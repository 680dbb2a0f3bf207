package types

import (
	"errors"

	sdkerrors "cosmossdk.io/errors"
)

// Pool module sentinel errors
var (
	// Caller input errors
	ErrInvalidAmount      = sdkerrors.Register(ModuleName, 2, "invalid amount")
	ErrInvalidToken       = sdkerrors.Register(ModuleName, 3, "invalid token")
	ErrInvalidAddress     = sdkerrors.Register(ModuleName, 4, "invalid address")
	ErrInsufficientShares = sdkerrors.Register(ModuleName, 5, "insufficient liquidity shares")

	// Liquidity errors
	ErrInsufficientLiquidity = sdkerrors.Register(ModuleName, 6, "insufficient liquidity")
	ErrNoLiquidity           = sdkerrors.Register(ModuleName, 7, "pool has no liquidity")

	// Trade protection errors
	ErrSlippageExceeded          = sdkerrors.Register(ModuleName, 8, "slippage exceeded")
	ErrPriceManipulationDetected = sdkerrors.Register(ModuleName, 9, "price manipulation detected")
	ErrOracleUnavailable         = sdkerrors.Register(ModuleName, 10, "reference price unavailable")

	// Guard errors
	ErrReentrancyDetected = sdkerrors.Register(ModuleName, 11, "reentrancy detected")
	ErrLedgerMismatch     = sdkerrors.Register(ModuleName, 12, "ledger delivered an unexpected amount")
	ErrTransferFailed     = sdkerrors.Register(ModuleName, 13, "asset transfer failed")

	// Arithmetic errors
	ErrOverflow       = sdkerrors.Register(ModuleName, 14, "arithmetic overflow")
	ErrDivisionByZero = sdkerrors.Register(ModuleName, 15, "division by zero")

	// State errors
	ErrInvalidPoolState  = sdkerrors.Register(ModuleName, 16, "invalid pool state")
	ErrPoolNotFound      = sdkerrors.Register(ModuleName, 17, "pool not found")
	ErrPoolAlreadyExists = sdkerrors.Register(ModuleName, 18, "pool already exists")
)

// ErrorWithRecovery wraps an error with recovery suggestions
type ErrorWithRecovery struct {
	Err      error
	Recovery string
}

func (e *ErrorWithRecovery) Error() string {
	return e.Err.Error()
}

func (e *ErrorWithRecovery) Unwrap() error {
	return e.Err
}

// RecoverySuggestions provides actionable recovery steps for each error type
var RecoverySuggestions = map[error]string{
	ErrInvalidAmount:      "Amounts must be strictly positive and large enough to move at least one base unit after fees and rounding.",
	ErrInvalidToken:       "The input asset must be one of the pool's two denominations. Query the pool to list them.",
	ErrInvalidAddress:     "Provide a non-empty account address that is not the pool's own account.",
	ErrInsufficientShares: "Requested shares exceed your balance. Query your share balance and retry with a smaller amount.",

	ErrInsufficientLiquidity: "The output side of the pool is empty. Wait for liquidity to be added.",
	ErrNoLiquidity:           "No shares have been issued yet. Add liquidity before withdrawing.",

	ErrSlippageExceeded:          "The trade would return less than your minimum. Lower min_amount_out or retry after reserves move.",
	ErrPriceManipulationDetected: "Pool price diverges from the reference TWAP. Retry later once arbitrage restores the pool price.",
	ErrOracleUnavailable:         "The reference price oracle returned no usable price. Wait for the next price observation.",

	ErrReentrancyDetected: "Another pool operation is in progress. Resubmit after it completes; nested calls from transfer or oracle callbacks are always rejected.",
	ErrLedgerMismatch:     "The asset ledger moved a different amount than requested. The operation was rolled back; check the asset's transfer semantics.",
	ErrTransferFailed:     "The asset ledger rejected the transfer. Check balances and retry.",

	ErrOverflow:       "Amounts exceed the 256-bit arithmetic range. Use smaller amounts.",
	ErrDivisionByZero: "A pricing denominator was zero. The pool is likely empty on one side.",

	ErrInvalidPoolState: "CRITICAL: pool state failed validation. Run invariants and inspect exported genesis.",
}

// WrapWithRecovery wraps an error with recovery suggestion
func WrapWithRecovery(err error, msg string, args ...interface{}) error {
	wrapped := sdkerrors.Wrapf(err, msg, args...)

	if suggestion, ok := RecoverySuggestions[err]; ok {
		return &ErrorWithRecovery{
			Err:      wrapped,
			Recovery: suggestion,
		}
	}

	return wrapped
}

// GetRecoverySuggestion returns the recovery suggestion for an error
func GetRecoverySuggestion(err error) string {
	for _, candidate := range recoveryOrder {
		if errors.Is(err, candidate) {
			return RecoverySuggestions[candidate]
		}
	}

	return "No recovery suggestion available. Check error message for details."
}

// recoveryOrder fixes lookup order so GetRecoverySuggestion is deterministic.
var recoveryOrder = []error{
	ErrReentrancyDetected,
	ErrPriceManipulationDetected,
	ErrSlippageExceeded,
	ErrOracleUnavailable,
	ErrInsufficientShares,
	ErrInsufficientLiquidity,
	ErrNoLiquidity,
	ErrInvalidToken,
	ErrInvalidAddress,
	ErrInvalidAmount,
	ErrLedgerMismatch,
	ErrTransferFailed,
	ErrOverflow,
	ErrDivisionByZero,
	ErrInvalidPoolState,
}
