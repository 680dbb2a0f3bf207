package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// PriceSnapshot is one recorded price of Base in units of Quote.
type PriceSnapshot struct {
	Base      string         `json:"base"`
	Quote     string         `json:"quote"`
	Price     math.LegacyDec `json:"price"`
	BlockTime int64          `json:"block_time"`
}

// ValidatePair checks that base and quote are distinct valid denoms.
func ValidatePair(base, quote string) error {
	if err := sdk.ValidateDenom(base); err != nil {
		return ErrInvalidPair.Wrapf("base: %v", err)
	}
	if err := sdk.ValidateDenom(quote); err != nil {
		return ErrInvalidPair.Wrapf("quote: %v", err)
	}
	if base == quote {
		return ErrInvalidPair.Wrapf("%s priced in itself", base)
	}
	return nil
}

// Validate performs stateless validation of a snapshot.
func (s PriceSnapshot) Validate() error {
	if err := ValidatePair(s.Base, s.Quote); err != nil {
		return err
	}
	if s.Price.IsNil() || !s.Price.IsPositive() {
		return ErrInvalidPrice.Wrapf("price must be positive, got %s", s.Price)
	}
	return nil
}
