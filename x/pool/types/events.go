package types

// Event types for the pool module
const (
	EventTypeLiquidityAdded    = "liquidity_added"
	EventTypeLiquidityRemoved  = "liquidity_removed"
	EventTypeSwap              = "swap"
	EventTypeSharesTransferred = "shares_transferred"
	EventTypeSkim              = "skim"
)

// Event attribute keys
const (
	AttributeKeyProvider  = "provider"
	AttributeKeyTrader    = "trader"
	AttributeKeySender    = "sender"
	AttributeKeyRecipient = "recipient"
	AttributeKeyAssetIn   = "asset_in"
	AttributeKeyAssetOut  = "asset_out"
	AttributeKeyAmountIn  = "amount_in"
	AttributeKeyAmountOut = "amount_out"
	AttributeKeyAmountA   = "amount_a"
	AttributeKeyAmountB   = "amount_b"
	AttributeKeyShares    = "shares"
	AttributeKeyReserveA  = "reserve_a"
	AttributeKeyReserveB  = "reserve_b"
)
