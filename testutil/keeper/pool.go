package keeper

import (
	"fmt"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
	"github.com/stretchr/testify/require"

	ledgerkeeper "github.com/paw-chain/pairpool/x/ledger/keeper"
	ledgertypes "github.com/paw-chain/pairpool/x/ledger/types"
	poolkeeper "github.com/paw-chain/pairpool/x/pool/keeper"
	pooltypes "github.com/paw-chain/pairpool/x/pool/types"
	twapkeeper "github.com/paw-chain/pairpool/x/twap/keeper"
	twaptypes "github.com/paw-chain/pairpool/x/twap/types"
)

const (
	DenomA = "atoken"
	DenomB = "btoken"
)

// GenesisTime is the block time of every fixture context.
var GenesisTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// PoolEnvConfig tunes the fixture's ledgers.
type PoolEnvConfig struct {
	FeeBpsA uint32
	FeeBpsB uint32

	// SkipInitPool leaves the pool store empty, e.g. for genesis import.
	SkipInitPool bool
}

// PoolEnv is an initialised pool with its two ledgers, a mock oracle and a
// TWAP keeper on a shared in-memory store.
type PoolEnv struct {
	Ctx     sdk.Context
	Keeper  *poolkeeper.Keeper
	LedgerA *ledgerkeeper.Keeper
	LedgerB *ledgerkeeper.Keeper
	Oracle  *MockOracle
	TWAP    *twapkeeper.Keeper
}

// NewPoolEnv builds a fixture without fee-on-transfer. It reports errors
// instead of failing a test so property-based tests can use it.
func NewPoolEnv() (*PoolEnv, error) {
	return NewPoolEnvWithConfig(PoolEnvConfig{})
}

// NewPoolEnvWithConfig builds a fixture with the given ledger fees.
func NewPoolEnvWithConfig(cfg PoolEnvConfig) (*PoolEnv, error) {
	poolKey := storetypes.NewKVStoreKey(pooltypes.StoreKey)
	ledgerKey := storetypes.NewKVStoreKey(ledgertypes.StoreKey)
	twapKey := storetypes.NewKVStoreKey(twaptypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(poolKey, storetypes.StoreTypeIAVL, nil)
	stateStore.MountStoreWithDB(ledgerKey, storetypes.StoreTypeIAVL, nil)
	stateStore.MountStoreWithDB(twapKey, storetypes.StoreTypeIAVL, nil)
	if err := stateStore.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("load stores: %w", err)
	}

	ledgerA := ledgerkeeper.NewKeeper(ledgerKey, DenomA, cfg.FeeBpsA)
	ledgerB := ledgerkeeper.NewKeeper(ledgerKey, DenomB, cfg.FeeBpsB)
	oracle := NewMockOracle()

	k := poolkeeper.NewKeeper(poolKey, ledgerA, ledgerB, oracle)

	header := cmtproto.Header{Height: 1, Time: GenesisTime}
	ctx := sdk.NewContext(stateStore, header, false, log.NewNopLogger())

	if !cfg.SkipInitPool {
		if _, err := k.InitPool(ctx); err != nil {
			return nil, fmt.Errorf("init pool: %w", err)
		}
	}

	return &PoolEnv{
		Ctx:     ctx,
		Keeper:  k,
		LedgerA: ledgerA,
		LedgerB: ledgerB,
		Oracle:  oracle,
		TWAP:    twapkeeper.NewKeeper(twapKey, twaptypes.DefaultWindow),
	}, nil
}

// PoolKeeper creates a test pool fixture, failing t on setup errors
func PoolKeeper(t testing.TB) *PoolEnv {
	env, err := NewPoolEnv()
	require.NoError(t, err)
	return env
}

// PoolKeeperWithFees creates a fixture whose ledgers burn the given fees.
func PoolKeeperWithFees(t testing.TB, feeBpsA, feeBpsB uint32) *PoolEnv {
	env, err := NewPoolEnvWithConfig(PoolEnvConfig{FeeBpsA: feeBpsA, FeeBpsB: feeBpsB})
	require.NoError(t, err)
	return env
}

// TestAddr derives a deterministic account address from name.
func TestAddr(name string) sdk.AccAddress {
	return sdk.AccAddress(address.Module("pairpool-test", []byte(name)))
}

// Fund mints both assets to addr.
func (e *PoolEnv) Fund(addr sdk.AccAddress, amountA, amountB int64) error {
	if amountA > 0 {
		if err := e.LedgerA.Mint(e.Ctx, addr, math.NewInt(amountA)); err != nil {
			return err
		}
	}
	if amountB > 0 {
		if err := e.LedgerB.Mint(e.Ctx, addr, math.NewInt(amountB)); err != nil {
			return err
		}
	}
	return nil
}

// Balances returns addr's holdings of both assets.
func (e *PoolEnv) Balances(addr sdk.AccAddress) (math.Int, math.Int) {
	return e.LedgerA.BalanceOf(e.Ctx, addr), e.LedgerB.BalanceOf(e.Ctx, addr)
}

// PoolBalances returns the pool account's holdings of both assets.
func (e *PoolEnv) PoolBalances() (math.Int, math.Int) {
	return e.Balances(pooltypes.PoolAddress())
}

// ResetEvents gives the context a fresh event manager.
func (e *PoolEnv) ResetEvents() {
	e.Ctx = e.Ctx.WithEventManager(sdk.NewEventManager())
}

// EventsOfType returns the emitted events of type eventType.
func (e *PoolEnv) EventsOfType(eventType string) []sdk.Event {
	var out []sdk.Event
	for _, ev := range e.Ctx.EventManager().Events() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}
