// Package app wires the pair pool, its two asset ledgers and the TWAP oracle
// onto a single commit multi-store.
//
// Every state change runs through Execute, which applies it as the next block:
// the change is made on a cached context, written only when it succeeds, and
// committed. Reads go through Query against a throwaway cache of the latest
// committed state.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pairpool/app/telemetry"
	ledgerkeeper "github.com/paw-chain/pairpool/x/ledger/keeper"
	ledgertypes "github.com/paw-chain/pairpool/x/ledger/types"
	poolkeeper "github.com/paw-chain/pairpool/x/pool/keeper"
	pooltypes "github.com/paw-chain/pairpool/x/pool/types"
	twapkeeper "github.com/paw-chain/pairpool/x/twap/keeper"
	twaptypes "github.com/paw-chain/pairpool/x/twap/types"
)

// ErrUnknownDenom is returned for a denom that is not one of the pool's assets.
var ErrUnknownDenom = errors.New("unknown denom")

// App is the pair pool application.
type App struct {
	logger log.Logger
	config Config
	clock  func() time.Time

	mu            sync.RWMutex
	db            dbm.DB
	cms           storetypes.CommitMultiStore
	height        int64
	lastBlockTime time.Time

	keys map[string]*storetypes.KVStoreKey

	LedgerA    *ledgerkeeper.Keeper
	LedgerB    *ledgerkeeper.Keeper
	TWAPKeeper *twapkeeper.Keeper
	PoolKeeper *poolkeeper.Keeper
}

// Option customises an App.
type Option func(*App)

// WithClock replaces time.Now as the source of block times.
func WithClock(clock func() time.Time) Option {
	return func(app *App) {
		app.clock = clock
	}
}

// New builds the application on db. A fresh database is initialised from
// genesis, or from the default genesis when genesis is nil; an existing one
// resumes from its last commit.
func New(logger log.Logger, db dbm.DB, cfg Config, genesis GenesisState, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &App{
		logger: logger.With("module", "app"),
		config: cfg,
		clock:  time.Now,
		db:     db,
		keys:   storetypes.NewKVStoreKeys(pooltypes.StoreKey, ledgertypes.StoreKey, twaptypes.StoreKey),
	}
	for _, opt := range opts {
		opt(app)
	}

	app.cms = store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	for _, key := range app.keys {
		app.cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := app.cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("load stores: %w", err)
	}

	app.LedgerA = ledgerkeeper.NewKeeper(app.keys[ledgertypes.StoreKey], cfg.DenomA, cfg.FeeBpsA)
	app.LedgerB = ledgerkeeper.NewKeeper(app.keys[ledgertypes.StoreKey], cfg.DenomB, cfg.FeeBpsB)
	app.TWAPKeeper = twapkeeper.NewKeeper(app.keys[twaptypes.StoreKey], cfg.OracleWindow)
	app.PoolKeeper = poolkeeper.NewKeeper(app.keys[pooltypes.StoreKey], app.LedgerA, app.LedgerB, app.TWAPKeeper)

	app.height = app.cms.LastCommitID().Version
	if app.height > 0 {
		app.logger.Info("resuming from committed state", "height", app.height)
		return app, nil
	}

	if genesis == nil {
		genesis = NewDefaultGenesisState(cfg)
	}
	if _, err := app.Execute(func(ctx sdk.Context) error {
		return app.initChain(ctx, genesis)
	}); err != nil {
		return nil, fmt.Errorf("init chain: %w", err)
	}
	return app, nil
}

func (app *App) initChain(ctx sdk.Context, genesis GenesisState) error {
	ledgers, err := genesis.ledgerGenesis()
	if err != nil {
		return err
	}
	for _, ledger := range []*ledgerkeeper.Keeper{app.LedgerA, app.LedgerB} {
		genState, ok := ledgers[ledger.Denom()]
		if !ok {
			continue
		}
		if err := ledger.InitGenesis(ctx, genState); err != nil {
			return fmt.Errorf("ledger %s: %w", ledger.Denom(), err)
		}
		delete(ledgers, ledger.Denom())
	}
	for denom := range ledgers {
		return fmt.Errorf("ledger genesis for %s: %w", denom, ErrUnknownDenom)
	}

	poolGenesis, err := genesis.poolGenesis()
	if err != nil {
		return err
	}
	if err := app.PoolKeeper.InitGenesis(ctx, poolGenesis); err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	if !app.PoolKeeper.HasPool(ctx) {
		if _, err := app.PoolKeeper.InitPool(ctx); err != nil {
			return fmt.Errorf("pool: %w", err)
		}
	}

	if msg, broken := poolkeeper.AllInvariants(*app.PoolKeeper)(ctx); broken {
		return fmt.Errorf("genesis breaks pool invariants: %s", msg)
	}

	app.logger.Info("chain initialised",
		"pair", fmt.Sprintf("%s/%s", app.config.DenomA, app.config.DenomB),
		"fee_a", ledgertypes.FeeLabel(app.config.FeeBpsA),
		"fee_b", ledgertypes.FeeLabel(app.config.FeeBpsB),
		"oracle_window", app.config.OracleWindow,
	)
	return nil
}

// Config returns the configuration the app was built with.
func (app *App) Config() Config {
	return app.config
}

// Height returns the last committed block height.
func (app *App) Height() int64 {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.height
}

// LastBlockTime returns the block time of the last commit.
func (app *App) LastBlockTime() time.Time {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.lastBlockTime
}

// Ledger returns the ledger keeper of denom.
func (app *App) Ledger(denom string) (*ledgerkeeper.Keeper, error) {
	switch denom {
	case app.LedgerA.Denom():
		return app.LedgerA, nil
	case app.LedgerB.Denom():
		return app.LedgerB, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDenom, denom)
	}
}

func (app *App) newContext(ms storetypes.MultiStore, height int64, blockTime time.Time) sdk.Context {
	header := cmtproto.Header{Height: height, Time: blockTime}
	return sdk.NewContext(ms, header, false, app.logger)
}

// Execute runs fn as the next block and commits its writes. When fn fails
// nothing is written, no block is committed and the error is returned as is.
// Executions are serialized. The returned events are those fn emitted.
func (app *App) Execute(fn func(ctx sdk.Context) error) (sdk.Events, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	ctx := app.newContext(app.cms, app.height+1, app.clock().UTC())
	spanCtx, span := telemetry.StartBlockSpan(context.Background(), ctx.BlockHeight())
	ctx = ctx.WithContext(spanCtx)

	cacheCtx, write := ctx.CacheContext()
	if err := fn(cacheCtx); err != nil {
		telemetry.EndBlockSpan(span, 0, err)
		return nil, err
	}

	if _, err := app.TWAPKeeper.Prune(cacheCtx); err != nil {
		err = fmt.Errorf("prune price snapshots: %w", err)
		telemetry.EndBlockSpan(span, 0, err)
		return nil, err
	}

	write()
	commitID := app.cms.Commit()
	app.height = commitID.Version
	app.lastBlockTime = ctx.BlockTime()

	events := ctx.EventManager().Events()
	telemetry.EndBlockSpan(span, len(events), nil)
	return events, nil
}

// Query runs fn against the latest committed state. Writes made by fn are
// discarded.
func (app *App) Query(fn func(ctx sdk.Context) error) error {
	app.mu.RLock()
	defer app.mu.RUnlock()

	ctx := app.newContext(app.cms.CacheMultiStore(), app.height, app.clock().UTC())
	return fn(ctx)
}

// CheckInvariants runs every pool invariant against the committed state.
func (app *App) CheckInvariants() (msg string, broken bool) {
	_ = app.Query(func(ctx sdk.Context) error {
		msg, broken = poolkeeper.AllInvariants(*app.PoolKeeper)(ctx)
		return nil
	})
	return msg, broken
}

// PoolBusy reports whether the committed state carries a reentrancy marker.
// A healthy app never commits one.
func (app *App) PoolBusy() bool {
	var busy bool
	_ = app.Query(func(ctx sdk.Context) error {
		busy = app.PoolKeeper.IsBusy(ctx)
		return nil
	})
	return busy
}

// ExportGenesis exports the ledgers and the pool. Price snapshots are not
// exported; the oracle is repopulated by its feeders.
func (app *App) ExportGenesis() (GenesisState, error) {
	genesis := make(GenesisState)
	err := app.Query(func(ctx sdk.Context) error {
		var ledgers []ledgertypes.GenesisState
		for _, ledger := range []*ledgerkeeper.Keeper{app.LedgerA, app.LedgerB} {
			genState, err := ledger.ExportGenesis(ctx)
			if err != nil {
				return fmt.Errorf("ledger %s: %w", ledger.Denom(), err)
			}
			ledgers = append(ledgers, *genState)
		}
		genesis[ledgertypes.ModuleName] = mustMarshalJSON(ledgers)

		poolGenesis, err := app.PoolKeeper.ExportGenesis(ctx)
		if err != nil {
			return fmt.Errorf("pool: %w", err)
		}
		genesis[pooltypes.ModuleName] = mustMarshalJSON(poolGenesis)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return genesis, nil
}

// Close releases the underlying database.
func (app *App) Close() error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.db.Close()
}
