package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Pool is the pool's accounting state. It is stored as JSON.
type Pool struct {
	DenomA      string   `json:"denom_a" yaml:"denom_a"`
	DenomB      string   `json:"denom_b" yaml:"denom_b"`
	ReserveA    math.Int `json:"reserve_a" yaml:"reserve_a"`
	ReserveB    math.Int `json:"reserve_b" yaml:"reserve_b"`
	TotalShares math.Int `json:"total_shares" yaml:"total_shares"`
}

// NewPool returns an empty pool for the given pair.
func NewPool(denomA, denomB string) Pool {
	return Pool{
		DenomA:      denomA,
		DenomB:      denomB,
		ReserveA:    math.ZeroInt(),
		ReserveB:    math.ZeroInt(),
		TotalShares: math.ZeroInt(),
	}
}

// ValidateDenoms checks both denominations are well formed and distinct.
func ValidateDenoms(denomA, denomB string) error {
	if err := sdk.ValidateDenom(denomA); err != nil {
		return ErrInvalidToken.Wrapf("denom A: %v", err)
	}
	if err := sdk.ValidateDenom(denomB); err != nil {
		return ErrInvalidToken.Wrapf("denom B: %v", err)
	}
	if denomA == denomB {
		return ErrInvalidToken.Wrapf("pool assets must differ, got %s twice", denomA)
	}
	return nil
}

// Validate performs stateless validation of the pool and its core invariant.
func (p Pool) Validate() error {
	if err := ValidateDenoms(p.DenomA, p.DenomB); err != nil {
		return err
	}

	if p.ReserveA.IsNil() || p.ReserveB.IsNil() || p.TotalShares.IsNil() {
		return ErrInvalidPoolState.Wrap("nil reserve or share supply")
	}
	if p.ReserveA.IsNegative() {
		return ErrInvalidPoolState.Wrapf("negative reserve A: %s", p.ReserveA)
	}
	if p.ReserveB.IsNegative() {
		return ErrInvalidPoolState.Wrapf("negative reserve B: %s", p.ReserveB)
	}
	if p.TotalShares.IsNegative() {
		return ErrInvalidPoolState.Wrapf("negative total shares: %s", p.TotalShares)
	}

	// Issued shares must always be backed by both assets.
	if p.TotalShares.IsPositive() && (!p.ReserveA.IsPositive() || !p.ReserveB.IsPositive()) {
		return ErrInvalidPoolState.Wrapf(
			"pool has %s shares but reserves (%s, %s)",
			p.TotalShares, p.ReserveA, p.ReserveB,
		)
	}

	return nil
}

// HasDenom reports whether denom is one of the pool's assets.
func (p Pool) HasDenom(denom string) bool {
	return denom == p.DenomA || denom == p.DenomB
}

// Counterpart returns the other asset of the pair.
func (p Pool) Counterpart(denom string) (string, error) {
	switch denom {
	case p.DenomA:
		return p.DenomB, nil
	case p.DenomB:
		return p.DenomA, nil
	default:
		return "", ErrInvalidToken.Wrapf("%s is not traded by pool %s", denom, p.PairID())
	}
}

// ReservesFor returns (reserveIn, reserveOut) for a swap that sells assetIn.
func (p Pool) ReservesFor(assetIn string) (math.Int, math.Int, error) {
	switch assetIn {
	case p.DenomA:
		return p.ReserveA, p.ReserveB, nil
	case p.DenomB:
		return p.ReserveB, p.ReserveA, nil
	default:
		return math.Int{}, math.Int{}, ErrInvalidToken.Wrapf("%s is not traded by pool %s", assetIn, p.PairID())
	}
}

// PairID returns a stable identifier for the pair.
func (p Pool) PairID() string {
	return fmt.Sprintf("%s/%s", p.DenomA, p.DenomB)
}
