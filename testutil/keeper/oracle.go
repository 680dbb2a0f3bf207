package keeper

import (
	"context"
	"fmt"
	"sync"

	"cosmossdk.io/math"
)

// MockOracle is a settable price source. Setting a price for a pair also sets
// the inverse price for the reverse direction.
type MockOracle struct {
	mu     sync.Mutex
	prices map[string]math.LegacyDec
	err    error
	hook   func(ctx context.Context)
	calls  int
}

// NewMockOracle returns an oracle with no prices.
func NewMockOracle() *MockOracle {
	return &MockOracle{prices: make(map[string]math.LegacyDec)}
}

func pairKey(assetIn, assetOut string) string {
	return assetIn + "/" + assetOut
}

// SetPrice sets the price of assetIn in units of assetOut.
func (o *MockOracle) SetPrice(assetIn, assetOut string, price math.LegacyDec) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices[pairKey(assetIn, assetOut)] = price
	if price.IsPositive() {
		o.prices[pairKey(assetOut, assetIn)] = math.LegacyOneDec().Quo(price)
	}
}

// SetError makes every query fail with err until cleared with nil.
func (o *MockOracle) SetError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

// SetHook installs a callback run on every query before the price is returned.
func (o *MockOracle) SetHook(hook func(ctx context.Context)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hook = hook
}

// Calls returns the number of queries served.
func (o *MockOracle) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

// GetTWAP implements the pool's PriceOracle.
func (o *MockOracle) GetTWAP(ctx context.Context, assetIn, assetOut string) (math.LegacyDec, error) {
	o.mu.Lock()
	o.calls++
	hook := o.hook
	err := o.err
	price, ok := o.prices[pairKey(assetIn, assetOut)]
	o.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if err != nil {
		return math.LegacyDec{}, err
	}
	if !ok {
		return math.LegacyDec{}, fmt.Errorf("no price for %s/%s", assetIn, assetOut)
	}
	return price, nil
}
